package chat

import (
	"errors"
)

// Errors surfaced by the chat service. Handlers map these to HTTP statuses.
var (
	// ErrNotParticipant means the principal has no participant row binding it
	// to the conversation. Re-checked on every read and write.
	ErrNotParticipant = errors.New("principal is not a participant of the conversation")

	// ErrConversationNotFound means the referenced conversation id does not exist
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrInvalidParticipants means the creation payload did not reference at
	// least two distinct existing users
	ErrInvalidParticipants = errors.New("conversation requires at least two distinct existing users")

	// ErrUnknownUser means one of the requested participant ids does not exist
	ErrUnknownUser = errors.New("participant user does not exist")
)
