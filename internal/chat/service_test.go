package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulavirtual/pkg/models"
)

// In-memory fakes backing the service tests

type fakeConversationRepo struct {
	conversations map[int64]*models.Conversacion
	participants  map[int64][]int64 // conversation id -> user ids
	users         map[int64]bool
	nextID        int64
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		conversations: make(map[int64]*models.Conversacion),
		participants:  make(map[int64][]int64),
		users:         make(map[int64]bool),
		nextID:        1,
	}
}

func (f *fakeConversationRepo) Exists(_ context.Context, conversationID int64) (bool, error) {
	_, ok := f.conversations[conversationID]
	return ok, nil
}

func (f *fakeConversationRepo) IsParticipant(_ context.Context, conversationID, userID int64) (bool, error) {
	for _, id := range f.participants[conversationID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeConversationRepo) ListForUser(_ context.Context, userID int64) ([]models.Conversacion, error) {
	var out []models.Conversacion
	for convID, userIDs := range f.participants {
		for _, id := range userIDs {
			if id == userID {
				out = append(out, *f.conversations[convID])
				break
			}
		}
	}
	return out, nil
}

func (f *fakeConversationRepo) GetWithRelations(_ context.Context, conversationID int64) (*models.Conversacion, error) {
	conv, ok := f.conversations[conversationID]
	if !ok {
		return nil, ErrConversationNotFound
	}
	copied := *conv
	for _, userID := range f.participants[conversationID] {
		copied.Participantes = append(copied.Participantes, models.Participante{
			ConversacionID: conversationID,
			UserID:         userID,
			User:           &models.User{ID: userID},
		})
	}
	return &copied, nil
}

func (f *fakeConversationRepo) CreateWithParticipants(_ context.Context, userIDs []int64) (*models.Conversacion, error) {
	for _, id := range userIDs {
		if !f.users[id] {
			return nil, ErrUnknownUser
		}
	}

	conv := &models.Conversacion{
		ID:        f.nextID,
		Estado:    models.ConversacionEstadoActiva,
		TipoID:    models.ConversacionTipoDefault,
		CreatedAt: time.Now(),
	}
	f.nextID++
	f.conversations[conv.ID] = conv
	f.participants[conv.ID] = append([]int64(nil), userIDs...)
	return conv, nil
}

type fakeMessageRepo struct {
	messages []models.Mensaje
	nextID   int64
}

func (f *fakeMessageRepo) Create(_ context.Context, conversationID, authorID int64, body string, estado int) (*models.Mensaje, error) {
	f.nextID++
	m := models.Mensaje{
		ID:             f.nextID,
		Contenido:      body,
		Estado:         estado,
		ConversacionID: conversationID,
		AutorID:        authorID,
		CreatedAt:      time.Now(),
	}
	f.messages = append(f.messages, m)
	return &m, nil
}

type fakeDirectory struct{}

func (fakeDirectory) ProfileWithRelations(_ context.Context, userID int64) (*models.UserProfile, error) {
	return &models.UserProfile{User: models.User{ID: userID}}, nil
}

type publishedEvent struct {
	Event   string
	Channel string
	Payload string
}

type fakePublisher struct {
	events []publishedEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, event, channel, payload string) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, publishedEvent{Event: event, Channel: channel, Payload: payload})
	return nil
}

func newTestService(repo *fakeConversationRepo, msgs *fakeMessageRepo, pub *fakePublisher) *Service {
	return NewService(repo, msgs, fakeDirectory{}, pub, "chat-room")
}

func TestListConversations(t *testing.T) {
	ctx := context.Background()
	repo := newFakeConversationRepo()
	repo.users[1] = true
	repo.users[2] = true
	service := newTestService(repo, &fakeMessageRepo{}, &fakePublisher{})

	principal := &models.User{ID: 1}

	t.Run("EmptySetIsSignaledNotFailed", func(t *testing.T) {
		conversations, any, err := service.ListConversations(ctx, principal)
		require.NoError(t, err)
		assert.False(t, any)
		assert.Empty(t, conversations)
	})

	t.Run("ReturnsOnlyMemberConversations", func(t *testing.T) {
		_, err := repo.CreateWithParticipants(ctx, []int64{1, 2})
		require.NoError(t, err)
		_, err = repo.CreateWithParticipants(ctx, []int64{2, 2})
		require.NoError(t, err)

		conversations, any, err := service.ListConversations(ctx, principal)
		require.NoError(t, err)
		assert.True(t, any)
		assert.Len(t, conversations, 1)
	})
}

func TestGetConversationAuthorization(t *testing.T) {
	ctx := context.Background()
	repo := newFakeConversationRepo()
	repo.users[1] = true
	repo.users[2] = true
	repo.users[3] = true
	service := newTestService(repo, &fakeMessageRepo{}, &fakePublisher{})

	created, err := repo.CreateWithParticipants(ctx, []int64{1, 2})
	require.NoError(t, err)

	t.Run("MissingConversationIsNotFoundEvenForNonMember", func(t *testing.T) {
		// Existence is checked before membership, so an outsider probing a
		// missing id learns only that it does not exist.
		_, err := service.GetConversation(ctx, &models.User{ID: 3}, 9999)
		assert.ErrorIs(t, err, ErrConversationNotFound)
	})

	t.Run("NonMemberIsForbidden", func(t *testing.T) {
		_, err := service.GetConversation(ctx, &models.User{ID: 3}, created.ID)
		assert.ErrorIs(t, err, ErrNotParticipant)
	})

	t.Run("MemberGetsHydratedConversation", func(t *testing.T) {
		conv, err := service.GetConversation(ctx, &models.User{ID: 1}, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, conv.ID)
		assert.Len(t, conv.Participantes, 2)
	})
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()

	setup := func(pub *fakePublisher) (*Service, *fakeConversationRepo, *fakeMessageRepo, *models.Conversacion) {
		repo := newFakeConversationRepo()
		repo.users[1] = true
		repo.users[2] = true
		msgs := &fakeMessageRepo{}
		service := newTestService(repo, msgs, pub)
		created, err := repo.CreateWithParticipants(ctx, []int64{1, 2})
		require.NoError(t, err)
		return service, repo, msgs, created
	}

	t.Run("PersistsVerbatimAndBroadcasts", func(t *testing.T) {
		pub := &fakePublisher{}
		service, _, msgs, created := setup(pub)

		body := "  hola!  <b>tal cual</b>  "
		_, message, err := service.SendMessage(ctx, &models.User{ID: 1}, created.ID, body, 1)
		require.NoError(t, err)

		assert.Equal(t, body, message.Contenido)
		assert.Equal(t, int64(1), message.AutorID)
		require.Len(t, msgs.messages, 1)

		want := []publishedEvent{{Event: EventMessageSaved, Channel: "chat-room", Payload: PayloadMessageSaved}}
		if diff := cmp.Diff(want, pub.events); diff != "" {
			t.Errorf("published events mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("PublishFailureDoesNotAbortMessage", func(t *testing.T) {
		pub := &fakePublisher{err: errors.New("queue down")}
		service, _, msgs, created := setup(pub)

		_, message, err := service.SendMessage(ctx, &models.User{ID: 1}, created.ID, "hola", 1)
		require.NoError(t, err)
		assert.NotNil(t, message)
		assert.Len(t, msgs.messages, 1)
	})

	t.Run("NonMemberCannotSend", func(t *testing.T) {
		pub := &fakePublisher{}
		service, _, msgs, created := setup(pub)

		_, _, err := service.SendMessage(ctx, &models.User{ID: 99}, created.ID, "hola", 1)
		assert.ErrorIs(t, err, ErrNotParticipant)
		assert.Empty(t, msgs.messages)
		assert.Empty(t, pub.events)
	})

	t.Run("MissingConversationIsNotFound", func(t *testing.T) {
		pub := &fakePublisher{}
		service, _, _, _ := setup(pub)

		_, _, err := service.SendMessage(ctx, &models.User{ID: 1}, 424242, "hola", 1)
		assert.ErrorIs(t, err, ErrConversationNotFound)
	})
}

func TestCreateConversation(t *testing.T) {
	ctx := context.Background()

	setup := func() (*Service, *fakeConversationRepo) {
		repo := newFakeConversationRepo()
		for id := int64(1); id <= 4; id++ {
			repo.users[id] = true
		}
		return newTestService(repo, &fakeMessageRepo{}, &fakePublisher{}), repo
	}

	t.Run("CreatesWithExactParticipantSet", func(t *testing.T) {
		service, repo := setup()

		conv, profile, err := service.CreateConversation(ctx, &models.User{ID: 1}, []int64{2, 3})
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.Equal(t, int64(1), profile.ID)
		assert.Equal(t, []int64{2, 3}, repo.participants[conv.ID])
	})

	t.Run("CreatorIsNotAddedImplicitly", func(t *testing.T) {
		service, repo := setup()

		conv, _, err := service.CreateConversation(ctx, &models.User{ID: 1}, []int64{2, 3})
		require.NoError(t, err)
		assert.NotContains(t, repo.participants[conv.ID], int64(1))
	})

	t.Run("DuplicatesCollapsePreservingOrder", func(t *testing.T) {
		service, repo := setup()

		conv, _, err := service.CreateConversation(ctx, &models.User{ID: 1}, []int64{3, 2, 3, 2, 4})
		require.NoError(t, err)
		assert.Equal(t, []int64{3, 2, 4}, repo.participants[conv.ID])
	})

	t.Run("FewerThanTwoDistinctIsRejected", func(t *testing.T) {
		service, repo := setup()

		_, _, err := service.CreateConversation(ctx, &models.User{ID: 1}, []int64{2, 2, 2})
		assert.ErrorIs(t, err, ErrInvalidParticipants)
		assert.Empty(t, repo.conversations)
	})

	t.Run("UnknownUserRejectsWholeRequest", func(t *testing.T) {
		service, repo := setup()

		_, _, err := service.CreateConversation(ctx, &models.User{ID: 1}, []int64{2, 999})
		assert.ErrorIs(t, err, ErrInvalidParticipants)
		assert.Empty(t, repo.conversations, "nothing should be persisted when any participant is unknown")
	})
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []int64{5, 3, 1}, dedupe([]int64{5, 3, 5, 1, 3}))
	assert.Empty(t, dedupe(nil))
}
