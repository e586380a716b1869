package runtime

import (
	"dm-lab/contract"
	"sync"

	"github.com/google/uuid"
)

type Registry struct {
	mu            sync.RWMutex
	subscriptions map[string]contract.EventSink     // map subscription -> Sink
	conversations map[uuid.UUID]map[string]struct{} // map conversation to subscriptions
}

func NewRegistry() *Registry {
	return &Registry{
		subscriptions: make(map[string]contract.EventSink),
		conversations: make(map[uuid.UUID]map[string]struct{}),
	}
}

// GetSinksForConversation returns the live subscribers of a conversation.
// A participant with several open connections has one subscription each.
// Returns nil if nobody listens.
func (r *Registry) GetSinksForConversation(conversationID uuid.UUID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subscribers, ok := r.conversations[conversationID]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for subscriptionID := range subscribers {
		if sink, exists := r.subscriptions[subscriptionID]; exists {
			activeSinks = append(activeSinks, sink)
		}
	}
	return activeSinks
}

// Subscribe binds a sink to a conversation-scoped channel.
// Subscribing again with the same id replaces the sink.
func (r *Registry) Subscribe(subscriptionID string, conversationID uuid.UUID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subscriptions[subscriptionID] = sink

	if _, ok := r.conversations[conversationID]; !ok {
		r.conversations[conversationID] = make(map[string]struct{})
	}
	r.conversations[conversationID][subscriptionID] = struct{}{}
}

// Unsubscribe removes the subscription and drops the conversation entry
// once its last subscriber is gone.
func (r *Registry) Unsubscribe(subscriptionID string, conversationID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.subscriptions, subscriptionID)

	if subscribers, ok := r.conversations[conversationID]; ok {
		delete(subscribers, subscriptionID)
		if len(subscribers) == 0 {
			delete(r.conversations, conversationID)
		}
	}
}

// Count returns the number of live subscriptions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subscriptions)
}
