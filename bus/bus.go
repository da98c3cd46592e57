// Package bus implements the per-game live fan-out of state and event
// updates to connected subscribers.
package bus

import "sync"

// Message is one push frame delivered to subscribers.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Subscriber receives messages for one game. A Send error marks the
// subscriber stale and removes it from the group.
type Subscriber interface {
	Send(msg Message) error
}

// Bus multicasts messages to the currently connected subscribers of each
// game. A single mutex serializes all subscriber-set mutation across games;
// delivery happens outside the critical section so a slow subscriber on one
// game cannot stall registration changes on another. Groups with zero
// subscribers are discarded.
type Bus struct {
	mu     sync.Mutex
	groups map[string]map[Subscriber]struct{}
}

// New creates an empty bus. One instance is shared process-wide and torn
// down with the server.
func New() *Bus {
	return &Bus{groups: make(map[string]map[Subscriber]struct{})}
}

// Subscribe registers a subscriber for a game.
func (b *Bus) Subscribe(gameID string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	group := b.groups[gameID]
	if group == nil {
		group = make(map[Subscriber]struct{})
		b.groups[gameID] = group
	}
	group[sub] = struct{}{}
}

// Unsubscribe removes a subscriber; the group is dropped when it empties.
func (b *Bus) Unsubscribe(gameID string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(gameID, sub)
}

// Broadcast delivers msg to every current subscriber of the game.
// Subscribers whose Send fails are pruned without aborting delivery to the
// rest. A subscriber that disconnects concurrently may or may not receive
// the message.
func (b *Bus) Broadcast(gameID string, msg Message) {
	b.mu.Lock()
	targets := make([]Subscriber, 0, len(b.groups[gameID]))
	for sub := range b.groups[gameID] {
		targets = append(targets, sub)
	}
	b.mu.Unlock()

	var stale []Subscriber
	for _, sub := range targets {
		if err := sub.Send(msg); err != nil {
			stale = append(stale, sub)
		}
	}

	if len(stale) > 0 {
		b.mu.Lock()
		for _, sub := range stale {
			b.removeLocked(gameID, sub)
		}
		b.mu.Unlock()
	}
}

// SubscriberCount reports the current group size for a game.
func (b *Bus) SubscriberCount(gameID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.groups[gameID])
}

// Groups reports how many games currently have subscribers.
func (b *Bus) Groups() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.groups)
}

func (b *Bus) removeLocked(gameID string, sub Subscriber) {
	group := b.groups[gameID]
	if group == nil {
		return
	}
	delete(group, sub)
	if len(group) == 0 {
		delete(b.groups, gameID)
	}
}
