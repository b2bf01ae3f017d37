package toast

import (
	"context"
	"sync"
	"time"

	"github.com/royalton/portal/pkg/cache"
)

// DefaultIdleTimeout is how long a keyed bus survives without access.
const DefaultIdleTimeout = 30 * time.Minute

// Hub owns one Bus per key, typically per browser session, so each visitor
// sees only the messages published for them. Idle buses are closed unless
// a subscriber registered through Subscribe is still attached.
type Hub struct {
	buses *cache.Memory[*Bus]
	opts  []Option
	idle  time.Duration
	mu    sync.Mutex

	// pins is guarded by pinMu, which is never held while taking mu.
	pins    map[string]*pin
	closing bool
	pinMu   sync.Mutex
}

type pin struct {
	bus  *Bus
	refs int
}

// NewHub creates a hub whose buses are built with opts.
func NewHub(idle time.Duration, opts ...Option) *Hub {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	h := &Hub{
		buses: cache.NewMemory[*Bus](
			cache.WithDefaultTTL(idle),
			cache.WithCleanupInterval(idle/2),
		),
		opts: opts,
		idle: idle,
		pins: make(map[string]*pin),
	}
	h.buses.SetEvictCallback(h.evicted)
	return h
}

// Bus returns the bus for key, creating it on first use.
// Every call extends the bus lifetime by the idle timeout.
func (h *Hub) Bus(key string) *Bus {
	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := context.Background()
	b, err := h.buses.Get(ctx, key)
	if err != nil {
		if b = h.pinned(key); b == nil {
			b = New(h.opts...)
		}
	}
	// Set only fails after Close; the bus still works, it is just untracked.
	_ = h.buses.Set(ctx, key, b, h.idle)
	return b
}

// Subscribe attaches fn to the bus for key and keeps that bus alive past
// the idle timeout until the returned function is called.
func (h *Hub) Subscribe(key string, fn func(Event)) (*Bus, func()) {
	b := h.Bus(key)

	h.pinMu.Lock()
	p := h.pins[key]
	if p == nil || p.bus != b {
		p = &pin{bus: b}
		h.pins[key] = p
	}
	p.refs++
	h.pinMu.Unlock()

	unsubscribe := b.Subscribe(fn)
	var once sync.Once
	return b, func() {
		once.Do(func() {
			unsubscribe()
			h.pinMu.Lock()
			p.refs--
			if p.refs == 0 && h.pins[key] == p {
				delete(h.pins, key)
			}
			h.pinMu.Unlock()
		})
	}
}

// Drop closes and forgets the bus for key, for example on sign-out.
func (h *Hub) Drop(key string) {
	h.pinMu.Lock()
	delete(h.pins, key)
	h.pinMu.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()

	_ = h.buses.Delete(context.Background(), key)
}

// Close closes every bus and stops the idle janitor.
func (h *Hub) Close() {
	h.pinMu.Lock()
	h.closing = true
	clear(h.pins)
	h.pinMu.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()

	_ = h.buses.Clear(context.Background())
	_ = h.buses.Close()
}

func (h *Hub) pinned(key string) *Bus {
	h.pinMu.Lock()
	defer h.pinMu.Unlock()

	if p := h.pins[key]; p != nil {
		return p.bus
	}
	return nil
}

// evicted runs outside the cache lock. A pinned bus goes straight back in.
func (h *Hub) evicted(key string, b *Bus) {
	h.pinMu.Lock()
	p := h.pins[key]
	keep := !h.closing && p != nil && p.bus == b
	h.pinMu.Unlock()

	if keep {
		_ = h.buses.Set(context.Background(), key, b, h.idle)
		return
	}
	b.Close()
}
