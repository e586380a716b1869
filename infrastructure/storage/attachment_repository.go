//go:generate go run go.uber.org/mock/mockgen -source=attachment_repository.go -destination=../../mocks/mock_attachment_repository.go -package=mocks
package storage

import (
	"dm-lab/domain/messaging"
	"dm-lab/errors"
	stderrors "errors"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// IAttachmentRepository reads attachments. They are only ever written by
// MessageRepository.Append, together with their message.
type IAttachmentRepository interface {
	GetAttachment(id uint64) (messaging.AttachmentMeta, error)
	GetPayload(id uint64) ([]byte, error)
}

type AttachmentRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewAttachmentRepository(db *badger.DB, log *slog.Logger) *AttachmentRepository {
	return &AttachmentRepository{db: db, log: log}
}

// GetAttachment returns the metadata, which names the owning conversation.
// Callers check membership on it before loading the payload.
func (r *AttachmentRepository) GetAttachment(id uint64) (messaging.AttachmentMeta, error) {
	var meta messaging.AttachmentMeta
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		meta, err = getAttachmentMeta(txn, id)
		return err
	})
	return meta, err
}

func (r *AttachmentRepository) GetPayload(id uint64) ([]byte, error) {
	var payload []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blobKey(id))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrAttachmentNotFound
		}
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	r.log.Debug("Attachment payload loaded", "attachment_id", id, "size_bytes", len(payload))
	return payload, nil
}

func getAttachmentMeta(txn *badger.Txn, id uint64) (messaging.AttachmentMeta, error) {
	item, err := txn.Get(attachmentKey(id))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return messaging.AttachmentMeta{}, errors.ErrAttachmentNotFound
	}
	if err != nil {
		return messaging.AttachmentMeta{}, err
	}
	var meta messaging.AttachmentMeta
	err = item.Value(func(val []byte) error {
		meta, err = decodeAttachment(val)
		return err
	})
	return meta, err
}
