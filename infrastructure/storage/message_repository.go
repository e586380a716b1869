//go:generate go run go.uber.org/mock/mockgen -source=message_repository.go -destination=../../mocks/mock_message_repository.go -package=mocks
package storage

import (
	"dm-lab/domain/messaging"
	"dm-lab/errors"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// sequenceBandwidth is the number of ids leased from disk at once.
// Leased ids that were never used are lost on restart, which only creates gaps.
const sequenceBandwidth = 100

type IMessageRepository interface {
	Append(conversationID uuid.UUID, senderID, text string, attachment *messaging.PendingAttachment) (messaging.Message, error)
	Latest(conversationID uuid.UUID, limit int) ([]messaging.Message, error)
	GetMessages(conversationID uuid.UUID, ids []uint64) ([]messaging.Message, error)
}

type MessageRepository struct {
	db          *badger.DB
	log         *slog.Logger
	now         func() time.Time
	locks       *conversationLocks
	messages    *badger.Sequence
	attachments *badger.Sequence
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) (*MessageRepository, error) {
	messages, err := db.GetSequence([]byte(messageSequenceKey), sequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("message sequence: %w", err)
	}
	attachments, err := db.GetSequence([]byte(attachmentSequenceKey), sequenceBandwidth)
	if err != nil {
		_ = messages.Release()
		return nil, fmt.Errorf("attachment sequence: %w", err)
	}
	return &MessageRepository{
		db:          db,
		log:         log,
		now:         utcNow,
		locks:       newConversationLocks(),
		messages:    messages,
		attachments: attachments,
	}, nil
}

// Close gives the unused leased ids back. It must run before the database is closed.
func (r *MessageRepository) Close() error {
	return stderrors.Join(r.messages.Release(), r.attachments.Release())
}

// Append stores a message, its optional attachment and the new lastActivity
// of the conversation in a single transaction: either everything is visible
// or nothing is.
// Writers of the same conversation are serialized so that ids are committed
// in the order they are allocated. Ids come from a global sequence: they
// strictly increase within a conversation but are not contiguous.
func (r *MessageRepository) Append(conversationID uuid.UUID, senderID, text string, attachment *messaging.PendingAttachment) (messaging.Message, error) {
	unlock := r.locks.Lock(conversationID)
	defer unlock()

	// Checked outside the update: hide and reopen rewrite the membership row
	// and must not conflict with a send.
	err := r.db.View(func(txn *badger.Txn) error {
		if _, err := getConversation(txn, conversationID); err != nil {
			return err
		}
		_, err := getMembership(txn, conversationID, senderID)
		return err
	})
	if err != nil {
		return messaging.Message{}, err
	}

	id, err := nextID(r.messages)
	if err != nil {
		return messaging.Message{}, fmt.Errorf("allocate message id: %w", err)
	}
	record := messageRecord{
		ID:             id,
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		CreatedAt:      r.now(),
	}
	message := toMessage(record)

	var meta *messaging.AttachmentMeta
	if attachment != nil {
		attachmentID, err := nextID(r.attachments)
		if err != nil {
			return messaging.Message{}, fmt.Errorf("allocate attachment id: %w", err)
		}
		record.AttachmentID = attachmentID
		meta = &messaging.AttachmentMeta{
			ID:             attachmentID,
			MessageID:      id,
			ConversationID: conversationID,
			Name:           attachment.Name,
			MediaType:      attachment.MediaType,
			SizeBytes:      attachment.SizeBytes(),
		}
		message.Attachments = []messaging.AttachmentMeta{*meta}
	}

	err = updateWithRetry(r.db, func(txn *badger.Txn) error {
		conversation, err := getConversation(txn, conversationID)
		if err != nil {
			return err
		}
		if err := txn.Set(messageKey(conversationID, id), encodeMessage(record)); err != nil {
			return err
		}
		if meta != nil {
			if err := txn.Set(attachmentKey(meta.ID), encodeAttachment(*meta)); err != nil {
				return err
			}
			if err := txn.Set(blobKey(meta.ID), attachment.Payload); err != nil {
				return err
			}
		}
		conversation.LastActivity = record.CreatedAt
		return putConversation(txn, conversation)
	})
	if err != nil {
		return messaging.Message{}, err
	}
	r.log.Debug("Message appended", "conversation_id", conversationID, "message_id", id, "with_attachment", meta != nil)
	return message, nil
}

// Latest returns the newest messages of a conversation, newest first.
// The window is clamped to [1, 50].
func (r *MessageRepository) Latest(conversationID uuid.UUID, limit int) ([]messaging.Message, error) {
	limit = messaging.ClampLimit(limit)
	var messages []messaging.Message
	err := r.db.View(func(txn *badger.Txn) error {
		records, err := latestMessages(txn, conversationID, limit)
		if err != nil {
			return err
		}
		messages, err = withAttachments(txn, records)
		return err
	})
	return messages, err
}

// GetMessages loads the given ids of one conversation, in the order given.
// Unknown ids are skipped.
func (r *MessageRepository) GetMessages(conversationID uuid.UUID, ids []uint64) ([]messaging.Message, error) {
	var messages []messaging.Message
	err := r.db.View(func(txn *badger.Txn) error {
		records := make([]messageRecord, 0, len(ids))
		for _, id := range lo.Uniq(ids) {
			record, err := getMessage(txn, conversationID, id)
			if stderrors.Is(err, errors.ErrMessageNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		var err error
		messages, err = withAttachments(txn, records)
		return err
	})
	return messages, err
}

func withAttachments(txn *badger.Txn, records []messageRecord) ([]messaging.Message, error) {
	messages := make([]messaging.Message, 0, len(records))
	for _, record := range records {
		message := toMessage(record)
		if record.AttachmentID != 0 {
			meta, err := getAttachmentMeta(txn, record.AttachmentID)
			if err != nil {
				return nil, err
			}
			message.Attachments = []messaging.AttachmentMeta{meta}
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func toMessage(record messageRecord) messaging.Message {
	return messaging.Message{
		ID:             record.ID,
		ConversationID: record.ConversationID,
		SenderID:       record.SenderID,
		Text:           record.Text,
		CreatedAt:      record.CreatedAt,
		Attachments:    []messaging.AttachmentMeta{},
	}
}

// nextID skips zero, which marks "no attachment" in message records.
func nextID(seq *badger.Sequence) (uint64, error) {
	n, err := seq.Next()
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}
