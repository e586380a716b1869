package storage

import (
	"dm-lab/domain/messaging"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

// Records are stored as protobuf wire messages. Field numbers are part of
// the on-disk format: never reuse or renumber them.

const (
	conversationCreatedAt    protowire.Number = 1
	conversationLastActivity protowire.Number = 2

	membershipHiddenSince protowire.Number = 1
	membershipLastRead    protowire.Number = 2

	messageID             protowire.Number = 1
	messageConversationID protowire.Number = 2
	messageSenderID       protowire.Number = 3
	messageText           protowire.Number = 4
	messageCreatedAt      protowire.Number = 5
	messageAttachmentID   protowire.Number = 6

	attachmentID             protowire.Number = 1
	attachmentMessageID      protowire.Number = 2
	attachmentConversationID protowire.Number = 3
	attachmentName           protowire.Number = 4
	attachmentMediaType      protowire.Number = 5
	attachmentSize           protowire.Number = 6

	profileDisplayName protowire.Number = 1
	profileRole        protowire.Number = 2
	profileAvatarURL   protowire.Number = 3
)

type wireWriter struct {
	buf []byte
}

func (w *wireWriter) uint(num protowire.Number, v uint64) {
	w.buf = protowire.AppendTag(w.buf, num, protowire.VarintType)
	w.buf = protowire.AppendVarint(w.buf, v)
}

func (w *wireWriter) time(num protowire.Number, t time.Time) {
	w.uint(num, uint64(t.UnixNano()))
}

func (w *wireWriter) bytes(num protowire.Number, v []byte) {
	w.buf = protowire.AppendTag(w.buf, num, protowire.BytesType)
	w.buf = protowire.AppendBytes(w.buf, v)
}

func (w *wireWriter) string(num protowire.Number, v string) {
	if v == "" {
		return
	}
	w.buf = protowire.AppendTag(w.buf, num, protowire.BytesType)
	w.buf = protowire.AppendString(w.buf, v)
}

// fieldVisitor consumes the value of one field and returns the number of bytes read.
type fieldVisitor func(num protowire.Number, typ protowire.Type, b []byte) int

// readFields walks a wire message. Unknown fields are skipped by the visitor
// through protowire.ConsumeFieldValue.
func readFields(b []byte, visit fieldVisitor) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		m := visit(num, typ, b)
		if m < 0 {
			return protowire.ParseError(m)
		}
		b = b[m:]
	}
	return nil
}

func consumeUint(b []byte, dst *uint64) int {
	v, n := protowire.ConsumeVarint(b)
	*dst = v
	return n
}

func consumeTime(b []byte, dst *time.Time) int {
	v, n := protowire.ConsumeVarint(b)
	*dst = time.Unix(0, int64(v)).UTC()
	return n
}

func consumeString(b []byte, dst *string) int {
	v, n := protowire.ConsumeString(b)
	*dst = v
	return n
}

func consumeUUID(b []byte, dst *uuid.UUID) int {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n
	}
	id, err := uuid.FromBytes(v)
	if err != nil {
		return -1
	}
	*dst = id
	return n
}

func encodeConversation(c messaging.Conversation) []byte {
	var w wireWriter
	w.time(conversationCreatedAt, c.CreatedAt)
	w.time(conversationLastActivity, c.LastActivity)
	return w.buf
}

func decodeConversation(id uuid.UUID, b []byte) (messaging.Conversation, error) {
	c := messaging.Conversation{ID: id}
	err := readFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case conversationCreatedAt:
			return consumeTime(b, &c.CreatedAt)
		case conversationLastActivity:
			return consumeTime(b, &c.LastActivity)
		default:
			return protowire.ConsumeFieldValue(num, typ, b)
		}
	})
	if err != nil {
		return messaging.Conversation{}, fmt.Errorf("decode conversation %s: %w", id, err)
	}
	return c, nil
}

func encodeMembership(m messaging.Membership) []byte {
	var w wireWriter
	if m.HiddenSince != nil {
		w.time(membershipHiddenSince, *m.HiddenSince)
	}
	if m.LastReadMessageID != nil {
		w.uint(membershipLastRead, *m.LastReadMessageID)
	}
	return w.buf
}

func decodeMembership(conversationID uuid.UUID, participantID string, b []byte) (messaging.Membership, error) {
	m := messaging.Membership{ConversationID: conversationID, ParticipantID: participantID}
	err := readFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case membershipHiddenSince:
			var at time.Time
			n := consumeTime(b, &at)
			m.HiddenSince = &at
			return n
		case membershipLastRead:
			var id uint64
			n := consumeUint(b, &id)
			m.LastReadMessageID = &id
			return n
		default:
			return protowire.ConsumeFieldValue(num, typ, b)
		}
	})
	if err != nil {
		return messaging.Membership{}, fmt.Errorf("decode membership %s/%s: %w", conversationID, participantID, err)
	}
	return m, nil
}

// messageRecord is a message as persisted: attachments are referenced by id.
type messageRecord struct {
	ID             uint64
	ConversationID uuid.UUID
	SenderID       string
	Text           string
	CreatedAt      time.Time
	AttachmentID   uint64
}

func encodeMessage(m messageRecord) []byte {
	var w wireWriter
	w.uint(messageID, m.ID)
	w.bytes(messageConversationID, m.ConversationID[:])
	w.string(messageSenderID, m.SenderID)
	w.string(messageText, m.Text)
	w.time(messageCreatedAt, m.CreatedAt)
	if m.AttachmentID != 0 {
		w.uint(messageAttachmentID, m.AttachmentID)
	}
	return w.buf
}

func decodeMessage(b []byte) (messageRecord, error) {
	var m messageRecord
	err := readFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case messageID:
			return consumeUint(b, &m.ID)
		case messageConversationID:
			return consumeUUID(b, &m.ConversationID)
		case messageSenderID:
			return consumeString(b, &m.SenderID)
		case messageText:
			return consumeString(b, &m.Text)
		case messageCreatedAt:
			return consumeTime(b, &m.CreatedAt)
		case messageAttachmentID:
			return consumeUint(b, &m.AttachmentID)
		default:
			return protowire.ConsumeFieldValue(num, typ, b)
		}
	})
	if err != nil {
		return messageRecord{}, fmt.Errorf("decode message: %w", err)
	}
	return m, nil
}

func encodeAttachment(a messaging.AttachmentMeta) []byte {
	var w wireWriter
	w.uint(attachmentID, a.ID)
	w.uint(attachmentMessageID, a.MessageID)
	w.bytes(attachmentConversationID, a.ConversationID[:])
	w.string(attachmentName, a.Name)
	w.string(attachmentMediaType, a.MediaType)
	w.uint(attachmentSize, uint64(a.SizeBytes))
	return w.buf
}

func decodeAttachment(b []byte) (messaging.AttachmentMeta, error) {
	var a messaging.AttachmentMeta
	var size uint64
	err := readFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case attachmentID:
			return consumeUint(b, &a.ID)
		case attachmentMessageID:
			return consumeUint(b, &a.MessageID)
		case attachmentConversationID:
			return consumeUUID(b, &a.ConversationID)
		case attachmentName:
			return consumeString(b, &a.Name)
		case attachmentMediaType:
			return consumeString(b, &a.MediaType)
		case attachmentSize:
			return consumeUint(b, &size)
		default:
			return protowire.ConsumeFieldValue(num, typ, b)
		}
	})
	if err != nil {
		return messaging.AttachmentMeta{}, fmt.Errorf("decode attachment: %w", err)
	}
	a.SizeBytes = int64(size)
	return a, nil
}

func encodeProfile(p messaging.Profile) []byte {
	var w wireWriter
	w.string(profileDisplayName, p.DisplayName)
	w.string(profileRole, p.Role)
	w.string(profileAvatarURL, p.AvatarURL)
	return w.buf
}

func decodeProfile(participantID string, b []byte) (messaging.Profile, error) {
	p := messaging.Profile{ParticipantID: participantID}
	err := readFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case profileDisplayName:
			return consumeString(b, &p.DisplayName)
		case profileRole:
			return consumeString(b, &p.Role)
		case profileAvatarURL:
			return consumeString(b, &p.AvatarURL)
		default:
			return protowire.ConsumeFieldValue(num, typ, b)
		}
	})
	if err != nil {
		return messaging.Profile{}, fmt.Errorf("decode profile %s: %w", participantID, err)
	}
	return p, nil
}
