package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulavirtual/internal/api/auth"
	"github.com/aulavirtual/pkg/models"
)

func newHandlerFixture(t *testing.T) (*Handlers, *fakeConversationRepo) {
	t.Helper()
	repo := newFakeConversationRepo()
	for id := int64(1); id <= 4; id++ {
		repo.users[id] = true
	}
	service := newTestService(repo, &fakeMessageRepo{}, &fakePublisher{})
	return NewHandlers(service), repo
}

func doRequest(t *testing.T, handler echo.HandlerFunc, method, path, body string, principal *models.User, pathParam ...string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(string(auth.UserContextKey), principal)

	if len(pathParam) == 2 {
		c.SetParamNames(pathParam[0])
		c.SetParamValues(pathParam[1])
	}

	return rec, handler(c)
}

func httpError(t *testing.T, err error) *echo.HTTPError {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he
}

func TestIndexHandler(t *testing.T) {
	handlers, repo := newHandlerFixture(t)
	principal := &models.User{ID: 1}

	t.Run("EmptyStateMessage", func(t *testing.T) {
		rec, err := doRequest(t, handlers.Index, http.MethodGet, "/chat", "", principal)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "No has creado conversaciones.", body["message"])
	})

	t.Run("ListsConversations", func(t *testing.T) {
		_, err := repo.CreateWithParticipants(context.Background(), []int64{1, 2})
		require.NoError(t, err)

		rec, err := doRequest(t, handlers.Index, http.MethodGet, "/chat", "", principal)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Conversaciones []models.Conversacion `json:"conversaciones"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Len(t, body.Conversaciones, 1)
	})
}

func TestListHandlerEmptyStateMessage(t *testing.T) {
	handlers, _ := newHandlerFixture(t)

	rec, err := doRequest(t, handlers.List, http.MethodGet, "/chat/conversaciones", "", &models.User{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "No tienes conversaciones. ¡Crea una nueva!", body["message"])
}

func TestShowHandlerErrors(t *testing.T) {
	handlers, repo := newHandlerFixture(t)
	created, err := repo.CreateWithParticipants(context.Background(), []int64{1, 2})
	require.NoError(t, err)

	t.Run("NotFound", func(t *testing.T) {
		_, err := doRequest(t, handlers.Show, http.MethodGet, "/chat/9999", "",
			&models.User{ID: 1}, "conversacion", "9999")
		he := httpError(t, err)
		assert.Equal(t, http.StatusNotFound, he.Code)
		assert.Equal(t, "La conversación no existe.", he.Message)
	})

	t.Run("NonNumericIDIsNotFound", func(t *testing.T) {
		_, err := doRequest(t, handlers.Show, http.MethodGet, "/chat/abc", "",
			&models.User{ID: 1}, "conversacion", "abc")
		he := httpError(t, err)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})

	t.Run("Forbidden", func(t *testing.T) {
		_, err := doRequest(t, handlers.Show, http.MethodGet, "/chat/1", "",
			&models.User{ID: 3}, "conversacion", strconv.FormatInt(created.ID, 10))
		he := httpError(t, err)
		assert.Equal(t, http.StatusForbidden, he.Code)
		assert.Equal(t, "No tienes permiso para ver esta conversación.", he.Message)
	})

	t.Run("MemberGetsConversation", func(t *testing.T) {
		rec, err := doRequest(t, handlers.Show, http.MethodGet, "/chat/1", "",
			&models.User{ID: 1}, "conversacion", strconv.FormatInt(created.ID, 10))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Conversacion models.Conversacion `json:"conversacion"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, created.ID, body.Conversacion.ID)
	})
}

func TestSendMessageHandler(t *testing.T) {
	handlers, repo := newHandlerFixture(t)
	created, err := repo.CreateWithParticipants(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	convID := strconv.FormatInt(created.ID, 10)

	t.Run("ForbiddenForNonMember", func(t *testing.T) {
		_, err := doRequest(t, handlers.SendMessage, http.MethodPost, "/chat/1/enviar-mensaje",
			`{"mensaje":"hola","estado":1}`, &models.User{ID: 3}, "conversacion", convID)
		he := httpError(t, err)
		assert.Equal(t, http.StatusForbidden, he.Code)
		assert.Equal(t, "No tienes permiso para enviar mensajes en esta conversación.", he.Message)
	})

	t.Run("MissingBodyIsUnprocessable", func(t *testing.T) {
		_, err := doRequest(t, handlers.SendMessage, http.MethodPost, "/chat/1/enviar-mensaje",
			`{"estado":1}`, &models.User{ID: 1}, "conversacion", convID)
		he := httpError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, he.Code)
	})

	t.Run("MemberSendsMessage", func(t *testing.T) {
		rec, err := doRequest(t, handlers.SendMessage, http.MethodPost, "/chat/1/enviar-mensaje",
			`{"mensaje":"hola","estado":1}`, &models.User{ID: 1}, "conversacion", convID)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Conversacion models.Conversacion `json:"conversacion"`
			Mensaje      models.Mensaje      `json:"mensaje"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "hola", body.Mensaje.Contenido)
		assert.Equal(t, created.ID, body.Conversacion.ID)
	})
}

func TestCreateConversationHandler(t *testing.T) {
	handlers, repo := newHandlerFixture(t)
	principal := &models.User{ID: 1}

	t.Run("Success", func(t *testing.T) {
		rec, err := doRequest(t, handlers.Create, http.MethodPost, "/chat/conversaciones/crear",
			`{"usuarios":[2,3]}`, principal)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Message      string              `json:"message"`
			Conversacion models.Conversacion `json:"conversacion"`
			Usuario      *models.UserProfile `json:"usuario"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Conversación creada exitosamente.", body.Message)
		require.NotNil(t, body.Usuario)
		assert.Equal(t, principal.ID, body.Usuario.ID)
		assert.Len(t, repo.participants[body.Conversacion.ID], 2)
	})

	t.Run("FewerThanTwoUsersIsUnprocessable", func(t *testing.T) {
		_, err := doRequest(t, handlers.Create, http.MethodPost, "/chat/conversaciones/crear",
			`{"usuarios":[2]}`, principal)
		he := httpError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, he.Code)
	})

	t.Run("UnknownUserIsUnprocessable", func(t *testing.T) {
		_, err := doRequest(t, handlers.Create, http.MethodPost, "/chat/conversaciones/crear",
			`{"usuarios":[2,999]}`, principal)
		he := httpError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, he.Code)
	})
}
