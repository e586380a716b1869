package storage

import (
	"dm-lab/errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestMembershipRepository_ListVisible_Orders_By_Last_Activity(t *testing.T) {
	req := require.New(t)
	_, repos := setupRepositories(t)

	// Given three conversations for alice, the oldest one receiving the latest message
	withBob, _, err := repos.conversations.GetOrCreateDirect("alice", "bob")
	req.NoError(err)
	withCarol, _, err := repos.conversations.GetOrCreateDirect("alice", "carol")
	req.NoError(err)
	withDan, _, err := repos.conversations.GetOrCreateDirect("dan", "alice")
	req.NoError(err)

	base := time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC)
	repos.messages.now = func() time.Time { return base }
	_, err = repos.messages.Append(withCarol.ID, "carol", "first", nil)
	req.NoError(err)
	repos.messages.now = func() time.Time { return base.Add(time.Minute) }
	_, err = repos.messages.Append(withBob.ID, "bob", "second", nil)
	req.NoError(err)
	repos.messages.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = repos.messages.Append(withBob.ID, "alice", "third", nil)
	req.NoError(err)

	// When alice lists her inbox
	inbox, err := repos.memberships.ListVisible("alice")
	req.NoError(err)

	// Then the conversation without messages keeps its creation time, which is now
	// more recent than the seeded timestamps
	req.Len(inbox, 3)
	req.Equal(withDan.ID, inbox[0].ConversationID)
	req.Equal("dan", inbox[0].CounterpartID)
	req.Empty(inbox[0].Preview)

	req.Equal(withBob.ID, inbox[1].ConversationID)
	req.Equal("bob", inbox[1].CounterpartID)
	req.Equal("third", inbox[1].Preview)

	req.Equal(withCarol.ID, inbox[2].ConversationID)
	req.Equal("carol", inbox[2].CounterpartID)
	req.Equal("first", inbox[2].Preview)
}

func TestMembershipRepository_Hide_Is_Per_Participant(t *testing.T) {
	req := require.New(t)
	_, repos := setupRepositories(t)

	conversation, _, err := repos.conversations.GetOrCreateDirect("alice", "bob")
	req.NoError(err)
	_, err = repos.messages.Append(conversation.ID, "bob", "hello", nil)
	req.NoError(err)

	// When alice hides it, twice
	req.NoError(repos.memberships.Hide(conversation.ID, "alice"))
	first, err := repos.memberships.EnsureMember(conversation.ID, "alice")
	req.NoError(err)
	req.NoError(repos.memberships.Hide(conversation.ID, "alice"))
	second, err := repos.memberships.EnsureMember(conversation.ID, "alice")
	req.NoError(err)

	// Then the first hiding time is kept
	req.True(first.HiddenSince.Equal(*second.HiddenSince))

	// And only alice's inbox is affected
	aliceInbox, err := repos.memberships.ListVisible("alice")
	req.NoError(err)
	req.Empty(aliceInbox)
	bobInbox, err := repos.memberships.ListVisible("bob")
	req.NoError(err)
	req.Len(bobInbox, 1)

	// And the history is untouched
	messages, err := repos.messages.Latest(conversation.ID, 10)
	req.NoError(err)
	req.Len(messages, 1)
}

func TestMembershipRepository_Hidden_Member_Keeps_Access(t *testing.T) {
	req := require.New(t)
	_, repos := setupRepositories(t)

	conversation, _, err := repos.conversations.GetOrCreateDirect("alice", "bob")
	req.NoError(err)
	req.NoError(repos.memberships.Hide(conversation.ID, "alice"))

	_, err = repos.memberships.EnsureMember(conversation.ID, "alice")
	req.NoError(err)
	_, err = repos.messages.Append(conversation.ID, "alice", "still here", nil)
	req.NoError(err)
}

func TestMembershipRepository_Outsiders_Are_Forbidden(t *testing.T) {
	req := require.New(t)
	_, repos := setupRepositories(t)

	conversation, _, err := repos.conversations.GetOrCreateDirect("alice", "bob")
	req.NoError(err)

	_, err = repos.memberships.EnsureMember(conversation.ID, "mallory")
	req.ErrorIs(err, errors.ErrNotMember)

	// An unknown conversation is indistinguishable from a foreign one
	_, err = repos.memberships.EnsureMember(uuid.New(), "mallory")
	req.ErrorIs(err, errors.ErrNotMember)

	err = repos.memberships.Hide(conversation.ID, "mallory")
	req.ErrorIs(err, errors.ErrForbidden)
}
