package event

import (
	"dm-lab/domain/messaging"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is anything published on a conversation-scoped channel.
type DomainEvent interface {
	Conversation() uuid.UUID
	OccurredAt() time.Time
}

// MessageCreated is emitted once a message, and its attachment if any, is durably stored.
// It is a hint for live subscribers, not a source of truth.
type MessageCreated struct {
	Message messaging.Message
}

func (m MessageCreated) Conversation() uuid.UUID {
	return m.Message.ConversationID
}

func (m MessageCreated) OccurredAt() time.Time {
	return m.Message.CreatedAt
}
