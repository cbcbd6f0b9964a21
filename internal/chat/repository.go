package chat

import (
	"context"

	"github.com/aulavirtual/pkg/models"
)

// ConversationRepository provides access to conversations and participant
// membership. Each method loads exactly the join shape its caller needs.
type ConversationRepository interface {
	// Exists reports whether the conversation id is present
	Exists(ctx context.Context, conversationID int64) (bool, error)

	// IsParticipant reports whether a participant row binds userID to
	// conversationID
	IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error)

	// ListForUser returns every conversation the user participates in, each
	// with its messages loaded
	ListForUser(ctx context.Context, userID int64) ([]models.Conversacion, error)

	// GetWithRelations returns one conversation hydrated with
	// messages (+author) and participants (+user)
	GetWithRelations(ctx context.Context, conversationID int64) (*models.Conversacion, error)

	// CreateWithParticipants atomically creates a conversation plus one
	// participant row per user id, in slice order. Returns ErrUnknownUser if
	// any id does not reference an existing user; in that case nothing is
	// persisted.
	CreateWithParticipants(ctx context.Context, userIDs []int64) (*models.Conversacion, error)
}

// MessageRepository appends messages to a conversation. Messages are
// immutable once created.
type MessageRepository interface {
	Create(ctx context.Context, conversationID, authorID int64, body string, estado int) (*models.Mensaje, error)
}

// UserDirectory resolves user existence and profile aggregates owned by the
// users module.
type UserDirectory interface {
	ProfileWithRelations(ctx context.Context, userID int64) (*models.UserProfile, error)
}

// Publisher broadcasts a named event to a logical channel. Implementations
// are fire-and-forget: no acknowledgment or retry is visible to the caller.
type Publisher interface {
	Publish(ctx context.Context, event, channel, payload string) error
}
