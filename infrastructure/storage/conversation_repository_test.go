package storage

import (
	"dm-lab/errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestConversationRepository_Rejects_Self_Conversation(t *testing.T) {
	req := require.New(t)
	_, repos := setupRepositories(t)

	_, _, err := repos.conversations.GetOrCreateDirect("alice", "alice")

	req.ErrorIs(err, errors.ErrSelfConversation)
	req.ErrorIs(err, errors.ErrInvalidRequest)
}

func TestConversationRepository_Creates_Once_Per_Unordered_Pair(t *testing.T) {
	req := require.New(t)
	_, repos := setupRepositories(t)

	// Given a conversation created by alice
	first, created, err := repos.conversations.GetOrCreateDirect("alice", "bob")
	req.NoError(err)
	req.True(created)
	req.Equal(first.CreatedAt, first.LastActivity)

	// When bob asks for the same pair from his side
	second, created, err := repos.conversations.GetOrCreateDirect("bob", "alice")
	req.NoError(err)

	// Then the same conversation is returned
	req.False(created)
	req.Equal(first.ID, second.ID)
	req.True(first.CreatedAt.Equal(second.CreatedAt))

	// And both memberships exist and are visible
	for _, p := range []string{"alice", "bob"} {
		membership, err := repos.memberships.EnsureMember(first.ID, p)
		req.NoError(err)
		req.False(membership.Hidden())
		req.Nil(membership.LastReadMessageID)
	}
}

func TestConversationRepository_Concurrent_Callers_Converge(t *testing.T) {
	req := require.New(t)
	_, repos := setupRepositories(t)

	const callers = 32
	ids := make([]uuid.UUID, callers)
	errs := make([]error, callers)
	start := make(chan struct{})
	var wg sync.WaitGroup

	// Given half of the callers on each side of the pair
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			me, other := "alice", "bob"
			if i%2 == 1 {
				me, other = other, me
			}
			<-start
			conversation, _, err := repos.conversations.GetOrCreateDirect(me, other)
			ids[i], errs[i] = conversation.ID, err
		}(i)
	}

	// When they all race
	close(start)
	wg.Wait()

	// Then nobody saw an error and everyone got the same conversation
	for _, err := range errs {
		req.NoError(err)
	}
	req.Len(lo.Uniq(ids), 1)

	inbox, err := repos.memberships.ListVisible("alice")
	req.NoError(err)
	req.Len(inbox, 1)
	req.Equal(ids[0], inbox[0].ConversationID)
}

func TestConversationRepository_Distinct_Pairs_Get_Distinct_Conversations(t *testing.T) {
	req := require.New(t)
	_, repos := setupRepositories(t)

	ab, _, err := repos.conversations.GetOrCreateDirect("alice", "bob")
	req.NoError(err)
	ac, _, err := repos.conversations.GetOrCreateDirect("alice", "carol")
	req.NoError(err)

	req.NotEqual(ab.ID, ac.ID)
	_, err = repos.memberships.EnsureMember(ab.ID, "carol")
	req.ErrorIs(err, errors.ErrForbidden)
}

func TestConversationRepository_Unhides_Only_The_Caller(t *testing.T) {
	req := require.New(t)
	_, repos := setupRepositories(t)

	// Given a conversation hidden by both participants
	conversation, _, err := repos.conversations.GetOrCreateDirect("alice", "bob")
	req.NoError(err)
	req.NoError(repos.memberships.Hide(conversation.ID, "alice"))
	req.NoError(repos.memberships.Hide(conversation.ID, "bob"))

	// When alice resolves the pair again
	again, created, err := repos.conversations.GetOrCreateDirect("alice", "bob")
	req.NoError(err)

	// Then the conversation is reused and visible again for alice only
	req.False(created)
	req.Equal(conversation.ID, again.ID)
	alice, err := repos.memberships.EnsureMember(conversation.ID, "alice")
	req.NoError(err)
	req.False(alice.Hidden())
	bob, err := repos.memberships.EnsureMember(conversation.ID, "bob")
	req.NoError(err)
	req.True(bob.Hidden())
}

func TestConversationRepository_GetConversation_Unknown(t *testing.T) {
	req := require.New(t)
	_, repos := setupRepositories(t)

	_, err := repos.conversations.GetConversation(uuid.New())

	req.ErrorIs(err, errors.ErrNotFound)
}
