package messaging

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	MaxTextLength = 4000
	MinLimit      = 1
	MaxLimit      = 50
)

// Message is immutable once stored. ID is assigned by the store, strictly
// increasing, and is the ordering key: CreatedAt may collide.
type Message struct {
	ID             uint64
	ConversationID uuid.UUID
	SenderID       string
	Text           string
	CreatedAt      time.Time
	Attachments    []AttachmentMeta
}

// AttachmentMeta describes an attachment without its payload.
type AttachmentMeta struct {
	ID             uint64
	MessageID      uint64
	ConversationID uuid.UUID
	Name           string
	MediaType      string
	SizeBytes      int64
}

// Attachment is the downloadable form.
type Attachment struct {
	AttachmentMeta
	Payload []byte
}

// ClampLimit bounds a requested window size to [MinLimit, MaxLimit].
func ClampLimit(limit int) int {
	return lo.Clamp(limit, MinLimit, MaxLimit)
}
