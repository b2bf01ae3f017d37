package toast

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultLifetime is used when Publish is called without WithLifetime.
const DefaultLifetime = 3000 * time.Millisecond

type entry struct {
	timer Timer
	msg   Message
}

// Bus holds the active messages and fans out events to subscribers.
// It is safe for concurrent use. Subscribers are called outside the lock.
type Bus struct {
	clock       Clock
	newID       func() string
	subscribers map[uint64]func(Event)
	index       map[string]*entry
	order       []*entry
	lifetime    time.Duration
	nextSub     uint64
	mu          sync.Mutex
	closed      bool
}

// Option configures a Bus.
type Option func(*Bus)

// WithDefaultLifetime sets the lifetime used when a publisher does not give one.
func WithDefaultLifetime(d time.Duration) Option {
	return func(b *Bus) {
		b.lifetime = d
	}
}

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(b *Bus) {
		if c != nil {
			b.clock = c
		}
	}
}

// WithIDGenerator replaces the message id generator.
func WithIDGenerator(fn func() string) Option {
	return func(b *Bus) {
		if fn != nil {
			b.newID = fn
		}
	}
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		clock:       systemClock{},
		newID:       uuid.NewString,
		subscribers: make(map[uint64]func(Event)),
		index:       make(map[string]*entry),
		lifetime:    DefaultLifetime,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// PublishOption customizes a single message.
type PublishOption func(*Message)

// WithLifetime overrides the message lifetime. Zero or negative keeps the
// message until it is dismissed.
func WithLifetime(d time.Duration) PublishOption {
	return func(m *Message) {
		m.Lifetime = d
	}
}

// WithID sets an explicit message id.
func WithID(id string) PublishOption {
	return func(m *Message) {
		if id != "" {
			m.ID = id
		}
	}
}

// Publish appends a message to the active set and returns its id.
// Publishing an id that is already active replaces nothing and returns the
// existing id. After Close, Publish returns an empty id.
func (b *Bus) Publish(text string, cat Category, opts ...PublishOption) string {
	msg := Message{
		Text:     text,
		Category: ParseCategory(string(cat)),
		Lifetime: b.lifetime,
	}
	for _, opt := range opts {
		opt(&msg)
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ""
	}
	if msg.ID == "" {
		msg.ID = b.newID()
	}
	if _, ok := b.index[msg.ID]; ok {
		b.mu.Unlock()
		return msg.ID
	}
	msg.CreatedAt = b.clock.Now()

	e := &entry{msg: msg}
	b.index[msg.ID] = e
	b.order = append(b.order, e)
	if !msg.Sticky() {
		id := msg.ID
		e.timer = b.clock.AfterFunc(msg.Lifetime, func() { b.remove(id, Expired) })
	}
	subs := b.snapshot()
	b.mu.Unlock()

	emit(subs, Event{Kind: Published, Message: msg})
	return msg.ID
}

// Dismiss removes a message early. Unknown or already removed ids are ignored.
func (b *Bus) Dismiss(id string) {
	b.remove(id, Dismissed)
}

// Active returns the active messages, oldest first.
func (b *Bus) Active() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Message, len(b.order))
	for i, e := range b.order {
		out[i] = e.msg
	}
	return out
}

// Len returns the number of active messages.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.order)
}

// Subscribe registers a display surface and returns a function removing it.
func (b *Bus) Subscribe(fn func(Event)) func() {
	if fn == nil {
		return func() {}
	}

	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subscribers[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subscribers, id)
		b.mu.Unlock()
	}
}

// Close stops all pending expiry timers and drops the active set.
// Subscribers are not notified. Close is idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, e := range b.order {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	b.order = nil
	clear(b.index)
	clear(b.subscribers)
}

func (b *Bus) remove(id string, kind EventKind) {
	b.mu.Lock()
	e, ok := b.index[id]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.index, id)
	b.order = slices.DeleteFunc(b.order, func(x *entry) bool { return x == e })
	if e.timer != nil && kind != Expired {
		e.timer.Stop()
	}
	subs := b.snapshot()
	b.mu.Unlock()

	emit(subs, Event{Kind: kind, Message: e.msg})
}

// snapshot returns subscribers in registration order.
// Caller must hold the mutex.
func (b *Bus) snapshot() []func(Event) {
	ids := make([]uint64, 0, len(b.subscribers))
	for id := range b.subscribers {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]func(Event), len(ids))
	for i, id := range ids {
		out[i] = b.subscribers[id]
	}
	return out
}

func emit(subs []func(Event), ev Event) {
	for _, fn := range subs {
		fn(ev)
	}
}
