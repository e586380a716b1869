package storage

import (
	"dm-lab/domain/messaging"
	"dm-lab/errors"
	stderrors "errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Helpers shared by the repositories. They all work inside a caller-owned transaction.

func getConversation(txn *badger.Txn, id uuid.UUID) (messaging.Conversation, error) {
	item, err := txn.Get(conversationKey(id))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return messaging.Conversation{}, errors.ErrConversationNotFound
	}
	if err != nil {
		return messaging.Conversation{}, err
	}
	var conversation messaging.Conversation
	err = item.Value(func(val []byte) error {
		conversation, err = decodeConversation(id, val)
		return err
	})
	return conversation, err
}

func putConversation(txn *badger.Txn, c messaging.Conversation) error {
	return txn.Set(conversationKey(c.ID), encodeConversation(c))
}

// getMembership fails with ErrNotMember when the row is missing: an unknown
// conversation and a foreign one look the same from outside.
func getMembership(txn *badger.Txn, conversationID uuid.UUID, participantID string) (messaging.Membership, error) {
	item, err := txn.Get(memberKey(conversationID, participantID))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return messaging.Membership{}, errors.ErrNotMember
	}
	if err != nil {
		return messaging.Membership{}, err
	}
	var membership messaging.Membership
	err = item.Value(func(val []byte) error {
		membership, err = decodeMembership(conversationID, participantID, val)
		return err
	})
	return membership, err
}

func putMembership(txn *badger.Txn, m messaging.Membership) error {
	return txn.Set(memberKey(m.ConversationID, m.ParticipantID), encodeMembership(m))
}

// counterpartOf returns the other member of a direct conversation.
func counterpartOf(txn *badger.Txn, conversationID uuid.UUID, participantID string) (string, error) {
	prefix := memberPrefixFor(conversationID)
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if other := lastSegment(it.Item().Key()); other != participantID {
			return other, nil
		}
	}
	return "", fmt.Errorf("conversation %s has no counterpart for %s", conversationID, participantID)
}

// latestMessages walks a conversation backwards from its highest id.
func latestMessages(txn *badger.Txn, conversationID uuid.UUID, limit int) ([]messageRecord, error) {
	prefix := messagePrefixFor(conversationID)
	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	opts.Prefix = prefix
	opts.PrefetchSize = limit
	it := txn.NewIterator(opts)
	defer it.Close()

	records := make([]messageRecord, 0, limit)
	for it.Seek(seekLast(prefix)); it.ValidForPrefix(prefix) && len(records) < limit; it.Next() {
		err := it.Item().Value(func(val []byte) error {
			record, err := decodeMessage(val)
			if err != nil {
				return err
			}
			records = append(records, record)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}

func getMessage(txn *badger.Txn, conversationID uuid.UUID, id uint64) (messageRecord, error) {
	item, err := txn.Get(messageKey(conversationID, id))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return messageRecord{}, errors.ErrMessageNotFound
	}
	if err != nil {
		return messageRecord{}, err
	}
	var record messageRecord
	err = item.Value(func(val []byte) error {
		record, err = decodeMessage(val)
		return err
	})
	return record, err
}

// updateWithRetry runs a single-row read-modify-write, retrying once on a
// concurrent commit of the same keys.
func updateWithRetry(db *badger.DB, fn func(txn *badger.Txn) error) error {
	err := db.Update(fn)
	if stderrors.Is(err, badger.ErrConflict) {
		err = db.Update(fn)
	}
	if stderrors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: %v", errors.ErrStorageConflict, err)
	}
	return err
}
