package storage

import (
	"sync"

	"github.com/google/uuid"
)

// conversationLocks serializes writers of a single conversation so that id
// allocation order and commit order agree. Distinct conversations never share a lock.
type conversationLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func newConversationLocks() *conversationLocks {
	return &conversationLocks{locks: make(map[uuid.UUID]*refLock)}
}

// Lock blocks until the conversation is free and returns the matching unlock.
func (c *conversationLocks) Lock(id uuid.UUID) func() {
	c.mu.Lock()
	l, ok := c.locks[id]
	if !ok {
		l = &refLock{}
		c.locks[id] = l
	}
	l.refs++
	c.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		c.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.locks, id)
		}
		c.mu.Unlock()
	}
}
