//go:generate go run go.uber.org/mock/mockgen -source=conversation_repository.go -destination=../../mocks/mock_conversation_repository.go -package=mocks
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
)

// maxCreateAttempts bounds GetOrCreateDirect: the first attempt may lose a
// creation race, the second one reads the winner's pair index.
const maxCreateAttempts = 2

type IConversationRepository interface {
	GetOrCreateDirect(me, other string) (messaging.Conversation, bool, error)
	GetConversation(id uuid.UUID) (messaging.Conversation, error)
}

type ConversationRepository struct {
	db  *badger.DB
	log *slog.Logger
	now func() time.Time
}

func NewConversationRepository(db *badger.DB, log *slog.Logger) *ConversationRepository {
	return &ConversationRepository{db: db, log: log, now: utcNow}
}

// GetOrCreateDirect resolves the single conversation of an unordered pair.
// The pair index "pair:{low}:{high}" is read and written inside the same
// transaction: when two callers create the same pair concurrently, badger
// rejects the second commit with ErrConflict and that caller re-reads the
// index instead of failing. The returned flag reports whether this call created it.
func (r *ConversationRepository) GetOrCreateDirect(me, other string) (messaging.Conversation, bool, error) {
	if me == other {
		return messaging.Conversation{}, false, errors.ErrSelfConversation
	}
	var lastErr error
	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		conversation, created, err := r.getOrCreate(me, other)
		if err == nil {
			if created {
				r.log.Info("Direct conversation created", "conversation_id", conversation.ID, "participant_id", me, "counterpart_id", other)
			}
			return conversation, created, nil
		}
		if !stderrors.Is(err, badger.ErrConflict) {
			return messaging.Conversation{}, false, err
		}
		r.log.Debug("Concurrent creation of the same pair, fetching the winner", "participant_id", me, "counterpart_id", other, "attempt", attempt)
		lastErr = err
	}
	return messaging.Conversation{}, false, fmt.Errorf("%w: %v", errors.ErrStorageConflict, lastErr)
}

func (r *ConversationRepository) getOrCreate(me, other string) (messaging.Conversation, bool, error) {
	var existing uuid.UUID
	var conversation messaging.Conversation
	created := false

	err := r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(pairKey(me, other))
		switch {
		case err == nil:
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if existing, err = uuid.FromBytes(raw); err != nil {
				return fmt.Errorf("corrupted pair index for %s/%s: %w", me, other, err)
			}
			return unhide(txn, existing, me)
		case stderrors.Is(err, badger.ErrKeyNotFound):
			now := r.now()
			conversation = messaging.Conversation{ID: uuid.New(), CreatedAt: now, LastActivity: now}
			created = true
			return createDirect(txn, conversation, me, other)
		default:
			return err
		}
	})
	if err != nil || created {
		return conversation, created, err
	}
	// Read outside the write transaction: lastActivity moves with every
	// message and must not turn a concurrent send into a conflict here.
	conversation, err = r.GetConversation(existing)
	return conversation, false, err
}

func (r *ConversationRepository) GetConversation(id uuid.UUID) (messaging.Conversation, error) {
	var conversation messaging.Conversation
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		conversation, err = getConversation(txn, id)
		return err
	})
	return conversation, err
}

// createDirect writes a conversation with both memberships visible.
func createDirect(txn *badger.Txn, c messaging.Conversation, me, other string) error {
	if err := txn.Set(pairKey(me, other), c.ID[:]); err != nil {
		return err
	}
	if err := putConversation(txn, c); err != nil {
		return err
	}
	for _, participantID := range []string{me, other} {
		if err := putMembership(txn, messaging.Membership{ConversationID: c.ID, ParticipantID: participantID}); err != nil {
			return err
		}
		if err := txn.Set(inboxKey(participantID, c.ID), nil); err != nil {
			return err
		}
	}
	return nil
}

// unhide clears hiddenSince on the caller's own membership only.
func unhide(txn *badger.Txn, conversationID uuid.UUID, participantID string) error {
	membership, err := getMembership(txn, conversationID, participantID)
	if err != nil {
		return err
	}
	if !membership.Hidden() {
		return nil
	}
	membership.HiddenSince = nil
	return putMembership(txn, membership)
}

func utcNow() time.Time {
	return time.Now().UTC()
}
