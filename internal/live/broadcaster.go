package live

import (
	"sync"
	"sync/atomic"
	"time"
)

const subscriberBuffer = 64

// Update kinds.
const (
	KindPanel  = "panel"
	KindMap    = "map"
	KindStatus = "status"
)

// Update tells a browser what changed. Panel updates carry the new markup;
// map updates only signal that /api/map has a new snapshot.
type Update struct {
	Kind   string    `json:"kind"`
	Panel  string    `json:"panel,omitempty"`
	HTML   string    `json:"html,omitempty"`
	Stream string    `json:"stream,omitempty"`
	Error  string    `json:"error,omitempty"`
	At     time.Time `json:"at"`
}

// Broadcaster fans updates out to subscribers. Slow subscribers miss updates
// rather than block the publisher.
type Broadcaster struct {
	subscribers map[uint64]chan Update
	nextID      atomic.Uint64
	dropped     atomic.Uint64
	mu          sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan Update),
	}
}

func (b *Broadcaster) Subscribe() (uint64, <-chan Update) {
	id := b.nextID.Add(1)
	ch := make(chan Update, subscriberBuffer)

	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

// Publish stamps u if needed and delivers it to every subscriber with room.
func (b *Broadcaster) Publish(u Update) {
	if u.At.IsZero() {
		u.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- u:
		default:
			b.dropped.Add(1)
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Dropped counts updates skipped because a subscriber's buffer was full.
func (b *Broadcaster) Dropped() uint64 { return b.dropped.Load() }

// Close closes all subscriber channels so readers exit.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
