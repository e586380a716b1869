//go:generate go run go.uber.org/mock/mockgen -source=membership_repository.go -destination=../../mocks/mock_membership_repository.go -package=mocks
package storage

import (
	"dm-lab/domain/messaging"
	"log/slog"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMembershipRepository interface {
	ListVisible(participantID string) ([]messaging.InboxEntry, error)
	Hide(conversationID uuid.UUID, participantID string) error
	EnsureMember(conversationID uuid.UUID, participantID string) (messaging.Membership, error)
}

type MembershipRepository struct {
	db  *badger.DB
	log *slog.Logger
	now func() time.Time
}

func NewMembershipRepository(db *badger.DB, log *slog.Logger) *MembershipRepository {
	return &MembershipRepository{db: db, log: log, now: utcNow}
}

// EnsureMember is the access gate of every conversation-scoped operation.
// A hidden membership still grants access: hiding only affects the inbox.
func (r *MembershipRepository) EnsureMember(conversationID uuid.UUID, participantID string) (messaging.Membership, error) {
	var membership messaging.Membership
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		membership, err = getMembership(txn, conversationID, participantID)
		return err
	})
	return membership, err
}

// Hide sets hiddenSince on the caller's membership. Hiding twice keeps the first timestamp.
func (r *MembershipRepository) Hide(conversationID uuid.UUID, participantID string) error {
	err := updateWithRetry(r.db, func(txn *badger.Txn) error {
		membership, err := getMembership(txn, conversationID, participantID)
		if err != nil {
			return err
		}
		if membership.Hidden() {
			return nil
		}
		now := r.now()
		membership.HiddenSince = &now
		return putMembership(txn, membership)
	})
	if err != nil {
		return err
	}
	r.log.Debug("Conversation hidden", "conversation_id", conversationID, "participant_id", participantID)
	return nil
}

// ListVisible returns the inbox of a participant, most recent activity first.
// Conversations with the same lastActivity are ordered by id to keep the listing stable.
func (r *MembershipRepository) ListVisible(participantID string) ([]messaging.InboxEntry, error) {
	var entries []messaging.InboxEntry
	err := r.db.View(func(txn *badger.Txn) error {
		ids, err := inboxOf(txn, participantID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			membership, err := getMembership(txn, id, participantID)
			if err != nil {
				return err
			}
			if membership.Hidden() {
				continue
			}
			entry, err := inboxEntry(txn, id, participantID)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].LastActivity.Equal(entries[j].LastActivity) {
			return entries[i].LastActivity.After(entries[j].LastActivity)
		}
		return entries[i].ConversationID.String() < entries[j].ConversationID.String()
	})
	return entries, nil
}

func inboxOf(txn *badger.Txn, participantID string) ([]uuid.UUID, error) {
	prefix := inboxPrefixFor(participantID)
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []uuid.UUID
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		id, err := parseConversationSegment(it.Item().Key())
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func inboxEntry(txn *badger.Txn, conversationID uuid.UUID, participantID string) (messaging.InboxEntry, error) {
	conversation, err := getConversation(txn, conversationID)
	if err != nil {
		return messaging.InboxEntry{}, err
	}
	counterpartID, err := counterpartOf(txn, conversationID, participantID)
	if err != nil {
		return messaging.InboxEntry{}, err
	}
	last, err := latestMessages(txn, conversationID, 1)
	if err != nil {
		return messaging.InboxEntry{}, err
	}
	entry := messaging.InboxEntry{
		ConversationID: conversationID,
		CounterpartID:  counterpartID,
		LastActivity:   conversation.LastActivity,
	}
	if len(last) > 0 {
		entry.Preview = last[0].Text
	}
	return entry, nil
}
