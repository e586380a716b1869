package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RecordView is a human readable rendering of a raw key/value pair,
// used by the inspection page and the inspect command.
type RecordView struct {
	Kind   string
	Entity string
	At     time.Time
	Detail string
}

// Describe decodes any key written by the repositories. Unknown or
// corrupted records are reported as RAW with their size.
func Describe(key string, val []byte) RecordView {
	raw := RecordView{Kind: "RAW", Entity: key, Detail: fmt.Sprintf("%d bytes", len(val))}
	switch {
	case strings.HasPrefix(key, conversationPrefix):
		id, err := uuid.Parse(strings.TrimPrefix(key, conversationPrefix))
		if err != nil {
			return raw
		}
		c, err := decodeConversation(id, val)
		if err != nil {
			return raw
		}
		return RecordView{Kind: "CONVERSATION", Entity: id.String(), At: c.LastActivity, Detail: "created " + c.CreatedAt.Format(time.RFC3339)}
	case strings.HasPrefix(key, pairPrefix):
		id, err := uuid.FromBytes(val)
		if err != nil {
			return raw
		}
		return RecordView{Kind: "PAIR", Entity: strings.TrimPrefix(key, pairPrefix), Detail: id.String()}
	case strings.HasPrefix(key, memberPrefix):
		id, err := uuid.Parse(strings.SplitN(strings.TrimPrefix(key, memberPrefix), ":", 2)[0])
		if err != nil {
			return raw
		}
		m, err := decodeMembership(id, lastSegment([]byte(key)), val)
		if err != nil {
			return raw
		}
		view := RecordView{Kind: "MEMBER", Entity: m.ParticipantID, Detail: "visible in " + id.String()}
		if m.Hidden() {
			view.At = *m.HiddenSince
			view.Detail = "hidden in " + id.String()
		}
		return view
	case strings.HasPrefix(key, inboxPrefix):
		return RecordView{Kind: "INBOX", Entity: strings.TrimPrefix(key, inboxPrefix)}
	case strings.HasPrefix(key, messagePrefix):
		m, err := decodeMessage(val)
		if err != nil {
			return raw
		}
		detail := fmt.Sprintf("%s: %s", m.SenderID, m.Text)
		if m.AttachmentID != 0 {
			detail += fmt.Sprintf(" [attachment %d]", m.AttachmentID)
		}
		return RecordView{Kind: "MESSAGE", Entity: fmt.Sprintf("%s#%d", m.ConversationID, m.ID), At: m.CreatedAt, Detail: detail}
	case strings.HasPrefix(key, attachmentPrefix):
		a, err := decodeAttachment(val)
		if err != nil {
			return raw
		}
		return RecordView{Kind: "ATTACHMENT", Entity: fmt.Sprintf("%d", a.ID), Detail: fmt.Sprintf("%s (%s, %d bytes) on message %d", a.Name, a.MediaType, a.SizeBytes, a.MessageID)}
	case strings.HasPrefix(key, blobPrefix):
		return RecordView{Kind: "BLOB", Entity: strings.TrimPrefix(key, blobPrefix), Detail: fmt.Sprintf("%d bytes", len(val))}
	case strings.HasPrefix(key, profilePrefix):
		participantID := strings.TrimPrefix(key, profilePrefix)
		p, err := decodeProfile(participantID, val)
		if err != nil {
			return raw
		}
		return RecordView{Kind: "PROFILE", Entity: participantID, Detail: strings.TrimSpace(p.DisplayName + " " + p.Role)}
	default:
		return raw
	}
}
