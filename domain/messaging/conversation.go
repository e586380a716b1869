// Package messaging holds the direct-messaging model: conversations between
// exactly two participants, per-participant memberships, immutable messages
// and their optional PDF attachment.
// No storage, network or transport logic belongs here.
package messaging

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Conversation is the single thread shared by an unordered pair of participants.
type Conversation struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	LastActivity time.Time
}

// Membership is one participant's private view of a conversation.
// HiddenSince is the per-side soft delete marker, nil while visible.
// LastReadMessageID is reserved and carries no behaviour yet.
type Membership struct {
	ConversationID    uuid.UUID
	ParticipantID     string
	HiddenSince       *time.Time
	LastReadMessageID *uint64
}

func (m Membership) Hidden() bool {
	return m.HiddenSince != nil
}

// Pair returns both participant ids in canonical (sorted) order.
// The same unordered pair always yields the same result.
func Pair(a, b string) (string, string) {
	ids := []string{a, b}
	sort.Strings(ids)
	return ids[0], ids[1]
}

// InboxEntry is a visible membership joined with what the inbox needs to render it.
type InboxEntry struct {
	ConversationID uuid.UUID
	CounterpartID  string
	LastActivity   time.Time
	Preview        string
}

// Profile is what the participant directory knows about someone.
type Profile struct {
	ParticipantID string
	DisplayName   string
	Role          string
	AvatarURL     string
}

// ConversationSummary is an inbox entry enriched with the counterpart profile.
type ConversationSummary struct {
	InboxEntry
	Counterpart Profile
}
