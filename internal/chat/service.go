package chat

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/aulavirtual/pkg/models"
)

// Event name and payload broadcast after a message is persisted. The payload
// is a static marker, not the message content; subscribers re-fetch through
// the authorized endpoints.
const (
	EventMessageSaved   = "mensaje-guardado"
	PayloadMessageSaved = "mensaje"
)

// Service enforces that only conversation participants can read or write a
// conversation's messages, and coordinates message creation with the
// outbound broadcast.
type Service struct {
	conversations ConversationRepository
	messages      MessageRepository
	users         UserDirectory
	publisher     Publisher
	channel       string
}

// NewService creates a chat service. channel is the logical broadcast
// channel notifications are published to.
func NewService(conversations ConversationRepository, messages MessageRepository, users UserDirectory, publisher Publisher, channel string) *Service {
	return &Service{
		conversations: conversations,
		messages:      messages,
		users:         users,
		publisher:     publisher,
		channel:       channel,
	}
}

// ListConversations returns every conversation the principal participates
// in, with messages loaded. The boolean is false when the principal has no
// conversations at all; that is a signal for the caller, not an error.
func (s *Service) ListConversations(ctx context.Context, principal *models.User) ([]models.Conversacion, bool, error) {
	conversations, err := s.conversations.ListForUser(ctx, principal.ID)
	if err != nil {
		return nil, false, fmt.Errorf("list conversations for user %d: %w", principal.ID, err)
	}

	if len(conversations) == 0 {
		return []models.Conversacion{}, false, nil
	}

	return conversations, true, nil
}

// GetConversation returns one conversation with messages (+author) and
// participants (+user). Fails with ErrConversationNotFound if the id is
// absent and ErrNotParticipant if the principal has no membership row.
func (s *Service) GetConversation(ctx context.Context, principal *models.User, conversationID int64) (*models.Conversacion, error) {
	if err := s.authorize(ctx, principal, conversationID); err != nil {
		return nil, err
	}

	conversation, err := s.conversations.GetWithRelations(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load conversation %d: %w", conversationID, err)
	}

	return conversation, nil
}

// SendMessage appends a message authored by the principal, reloads the
// conversation aggregate and broadcasts the message-saved event. The body is
// stored verbatim; estado is a caller-supplied marker. A broadcast failure
// never aborts the persisted message: it is logged and dropped.
func (s *Service) SendMessage(ctx context.Context, principal *models.User, conversationID int64, body string, estado int) (*models.Conversacion, *models.Mensaje, error) {
	if err := s.authorize(ctx, principal, conversationID); err != nil {
		return nil, nil, err
	}

	message, err := s.messages.Create(ctx, conversationID, principal.ID, body, estado)
	if err != nil {
		return nil, nil, fmt.Errorf("create message in conversation %d: %w", conversationID, err)
	}

	conversation, err := s.conversations.GetWithRelations(ctx, conversationID)
	if err != nil {
		return nil, nil, fmt.Errorf("reload conversation %d: %w", conversationID, err)
	}

	if err := s.publisher.Publish(ctx, EventMessageSaved, s.channel, PayloadMessageSaved); err != nil {
		log.Error().Err(err).
			Int64("conversacion", conversationID).
			Str("event", EventMessageSaved).
			Msg("broadcast publish failed; message already persisted")
	}

	return conversation, message, nil
}

// CreateConversation creates a conversation whose participant set is exactly
// the given user ids, in order. Requires at least two distinct existing
// users; the principal is only a participant if present in userIDs. Returns
// the hydrated conversation and the creator's profile with its enrolled
// courses, comments and conversations.
func (s *Service) CreateConversation(ctx context.Context, principal *models.User, userIDs []int64) (*models.Conversacion, *models.UserProfile, error) {
	distinct := dedupe(userIDs)
	if len(distinct) < 2 {
		return nil, nil, ErrInvalidParticipants
	}

	created, err := s.conversations.CreateWithParticipants(ctx, distinct)
	if err != nil {
		if err == ErrUnknownUser {
			return nil, nil, ErrInvalidParticipants
		}
		return nil, nil, fmt.Errorf("create conversation: %w", err)
	}

	conversation, err := s.conversations.GetWithRelations(ctx, created.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load conversation %d: %w", created.ID, err)
	}

	profile, err := s.users.ProfileWithRelations(ctx, principal.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load profile for user %d: %w", principal.ID, err)
	}

	return conversation, profile, nil
}

// authorize re-evaluates conversation membership on every call; there is no
// session-level caching of the participant check.
func (s *Service) authorize(ctx context.Context, principal *models.User, conversationID int64) error {
	exists, err := s.conversations.Exists(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("check conversation %d: %w", conversationID, err)
	}
	if !exists {
		return ErrConversationNotFound
	}

	isParticipant, err := s.conversations.IsParticipant(ctx, conversationID, principal.ID)
	if err != nil {
		return fmt.Errorf("check membership of user %d in conversation %d: %w", principal.ID, conversationID, err)
	}
	if !isParticipant {
		return ErrNotParticipant
	}

	return nil
}

// dedupe keeps the first occurrence of each id, preserving order
func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
