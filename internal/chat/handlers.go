package chat

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aulavirtual/internal/api/auth"
	"github.com/aulavirtual/internal/validation"
)

// Handlers exposes the chat service over HTTP
type Handlers struct {
	service *Service
}

// NewHandlers creates the chat handlers
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// SendMessageRequest is the body of POST /chat/:conversacion/enviar-mensaje
type SendMessageRequest struct {
	Mensaje string `json:"mensaje" validate:"required"`
	Estado  int    `json:"estado"`
}

// CreateConversationRequest is the body of POST /chat/conversaciones/crear
type CreateConversationRequest struct {
	Usuarios []int64 `json:"usuarios" validate:"required,min=2"`
}

// Index lists the principal's conversations (GET /chat)
func (h *Handlers) Index(c echo.Context) error {
	user := auth.MustGetUser(c)

	conversations, any, err := h.service.ListConversations(c.Request().Context(), user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al cargar las conversaciones.")
	}

	if !any {
		return c.JSON(http.StatusOK, map[string]string{
			"message": "No has creado conversaciones.",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"conversaciones": conversations,
	})
}

// List returns the principal's conversations for the chat picker
// (GET /chat/conversaciones). Same data as Index, different empty-state hint.
func (h *Handlers) List(c echo.Context) error {
	user := auth.MustGetUser(c)

	conversations, any, err := h.service.ListConversations(c.Request().Context(), user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al cargar las conversaciones.")
	}

	if !any {
		return c.JSON(http.StatusOK, map[string]string{
			"message": "No tienes conversaciones. ¡Crea una nueva!",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"conversaciones": conversations,
	})
}

// Show returns one conversation with its messages and participants
// (GET /chat/:conversacion)
func (h *Handlers) Show(c echo.Context) error {
	user := auth.MustGetUser(c)

	conversationID, err := conversationParam(c)
	if err != nil {
		return err
	}

	conversation, err := h.service.GetConversation(c.Request().Context(), user, conversationID)
	if err != nil {
		switch err {
		case ErrConversationNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "La conversación no existe.")
		case ErrNotParticipant:
			return echo.NewHTTPError(http.StatusForbidden, "No tienes permiso para ver esta conversación.")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Error al cargar la conversación.")
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"conversacion": conversation,
	})
}

// SendMessage appends a message to a conversation
// (POST /chat/:conversacion/enviar-mensaje)
func (h *Handlers) SendMessage(c echo.Context) error {
	user := auth.MustGetUser(c)

	conversationID, err := conversationParam(c)
	if err != nil {
		return err
	}

	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Solicitud inválida")
	}
	if err := validation.Struct(req); err != nil {
		return validation.HTTPError("Error al enviar el mensaje.", err)
	}

	conversation, message, err := h.service.SendMessage(c.Request().Context(), user, conversationID, req.Mensaje, req.Estado)
	if err != nil {
		switch err {
		case ErrConversationNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "La conversación no existe.")
		case ErrNotParticipant:
			return echo.NewHTTPError(http.StatusForbidden, "No tienes permiso para enviar mensajes en esta conversación.")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Error al enviar el mensaje.")
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"conversacion": conversation,
		"mensaje":      message,
	})
}

// Create creates a conversation with the given participants
// (POST /chat/conversaciones/crear)
func (h *Handlers) Create(c echo.Context) error {
	user := auth.MustGetUser(c)

	var req CreateConversationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Solicitud inválida")
	}
	if err := validation.Struct(req); err != nil {
		return validation.HTTPError("Error al crear la conversación.", err)
	}

	conversation, profile, err := h.service.CreateConversation(c.Request().Context(), user, req.Usuarios)
	if err != nil {
		if err == ErrInvalidParticipants {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
				"message": "Error al crear la conversación.",
				"errors":  []string{"Se requieren al menos dos usuarios existentes y distintos."},
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error al crear la conversación.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":      "Conversación creada exitosamente.",
		"conversacion": conversation,
		"usuario":      profile,
	})
}

func conversationParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("conversacion"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound, "La conversación no existe.")
	}
	return id, nil
}
