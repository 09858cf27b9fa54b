package transcript

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/tutorstack/tutorcore/pkg/jsontime"
)

// DefaultCapacity is the board capacity used when none is configured.
const DefaultCapacity = 500

// Board is a bounded, ordered, in-memory store of transcript items with a
// publish/subscribe interface. When capacity is exceeded the oldest item is
// evicted, so memory stays bounded regardless of session length.
//
// The board uses head and tail counters over a fixed slice, so eviction is
// a pointer bump rather than a copy.
type Board struct {
	logger *slog.Logger

	mu      sync.Mutex
	items   []Item
	head    int64
	tail    int64
	nextSeq int64
	subs    map[string]func(Item)
}

// New creates a Board with the given capacity. Non-positive capacities use
// DefaultCapacity.
func New(capacity int, logger *slog.Logger) *Board {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Board{
		logger: logger,
		items:  make([]Item, capacity),
		subs:   make(map[string]func(Item)),
	}
}

// Capacity returns the configured capacity.
func (b *Board) Capacity() int {
	return len(b.items)
}

// Add assigns the next sequence position, an ID and a timestamp to item,
// appends it, evicts the oldest item if capacity is exceeded, and notifies
// all current subscribers. It returns the stored item.
//
// Notification is synchronous but isolated: a panicking subscriber is logged
// and removed without affecting delivery to the others.
func (b *Board) Add(item Item) Item {
	b.mu.Lock()
	item.ID = "ti_" + uuid.NewString()[:8]
	item.Seq = b.nextSeq
	b.nextSeq++
	if item.Time.IsZero() {
		item.Time = jsontime.Now()
	}

	b.items[b.tail%int64(len(b.items))] = item
	b.tail++
	if b.tail-b.head > int64(len(b.items)) {
		b.head++
	}

	type sub struct {
		id string
		fn func(Item)
	}
	notify := make([]sub, 0, len(b.subs))
	for id, fn := range b.subs {
		notify = append(notify, sub{id, fn})
	}
	b.mu.Unlock()

	for _, s := range notify {
		b.deliver(s.id, s.fn, item)
	}
	return item
}

// deliver calls one subscriber, converting a panic into removal.
func (b *Board) deliver(id string, fn func(Item), item Item) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("transcript: subscriber panicked, removing",
				"subscriber", id, "panic", r)
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		}
	}()
	fn(item)
}

// NextSeq returns the sequence position the next added item will receive.
// Positions are never reused, so a consumer can snapshot NextSeq and later
// select exactly the items added after that point.
func (b *Board) NextSeq() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nextSeq
}

// Len returns the number of retained items.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int(b.tail - b.head)
}

// Filter selects items in Items snapshots.
type Filter func(*Item) bool

// WithKind keeps only items of the given kind.
func WithKind(k Kind) Filter {
	return func(it *Item) bool { return it.Kind == k }
}

// WithSpeaker keeps only items from the given speaker.
func WithSpeaker(speaker string) Filter {
	return func(it *Item) bool { return it.Speaker == speaker }
}

// Items returns a snapshot of retained items in ascending sequence order,
// keeping only items that pass every filter.
func (b *Board) Items(filters ...Filter) []Item {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Item, 0, b.tail-b.head)
next:
	for i := b.head; i < b.tail; i++ {
		it := b.items[i%int64(len(b.items))]
		for _, f := range filters {
			if !f(&it) {
				continue next
			}
		}
		out = append(out, it)
	}
	return out
}

// Subscription is a handle to a registered subscriber.
type Subscription struct {
	id    string
	board *Board
}

// ID returns the subscriber handle.
func (s *Subscription) ID() string {
	return s.id
}

// Cancel removes the subscriber. Calling Cancel more than once is safe.
func (s *Subscription) Cancel() {
	s.board.mu.Lock()
	defer s.board.mu.Unlock()
	delete(s.board.subs, s.id)
}

// Subscribe registers fn to be called with every item added after this call.
// Registration is O(1).
func (b *Board) Subscribe(fn func(Item)) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := "sub_" + uuid.NewString()[:8]
	b.subs[id] = fn
	return &Subscription{id: id, board: b}
}

// Subscribers returns the number of registered subscribers.
func (b *Board) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
