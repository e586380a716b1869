package server

import (
	"dm-lab/domain/messaging"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// JSON field names follow what the web client already reads.

type DirectConversationView struct {
	ConversationID uuid.UUID `json:"conversationId"`
}

type ConversationView struct {
	ConversationID     uuid.UUID `json:"conversationId"`
	OtherUserID        string    `json:"otherUserId"`
	OtherName          string    `json:"otherName"`
	OtherRole          string    `json:"otherRole"`
	OtherAvatarURL     *string   `json:"otherAvatarUrl"`
	LastMessagePreview string    `json:"lastMessagePreview"`
}

type AttachmentView struct {
	ID           uint64 `json:"id"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
	SizeBytes    int64  `json:"sizeBytes"`
}

type MessageView struct {
	ID          uint64           `json:"id"`
	SenderID    string           `json:"senderId"`
	Content     string           `json:"content"`
	CreatedAt   time.Time        `json:"createdAt"`
	Attachments []AttachmentView `json:"attachments"`
}

type ErrorView struct {
	Error string `json:"error"`
}

func toConversationViews(summaries []messaging.ConversationSummary) []ConversationView {
	return lo.Map(summaries, func(s messaging.ConversationSummary, _ int) ConversationView {
		return ConversationView{
			ConversationID:     s.ConversationID,
			OtherUserID:        s.CounterpartID,
			OtherName:          s.Counterpart.DisplayName,
			OtherRole:          s.Counterpart.Role,
			OtherAvatarURL:     lo.EmptyableToPtr(s.Counterpart.AvatarURL),
			LastMessagePreview: s.Preview,
		}
	})
}

func toMessageViews(messages []messaging.Message) []MessageView {
	return lo.Map(messages, func(m messaging.Message, _ int) MessageView {
		return toMessageView(m)
	})
}

func toMessageView(m messaging.Message) MessageView {
	return MessageView{
		ID:        m.ID,
		SenderID:  m.SenderID,
		Content:   m.Text,
		CreatedAt: m.CreatedAt,
		Attachments: lo.Map(m.Attachments, func(a messaging.AttachmentMeta, _ int) AttachmentView {
			return AttachmentView{ID: a.ID, OriginalName: a.Name, MimeType: a.MediaType, SizeBytes: a.SizeBytes}
		}),
	}
}
