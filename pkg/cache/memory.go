package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type item[V any] struct {
	expiresAt time.Time
	value     V
	key       string
}

func (it *item[V]) expired(now time.Time) bool {
	return !it.expiresAt.IsZero() && now.After(it.expiresAt)
}

type evicted[V any] struct {
	key   string
	value V
}

// Memory is an in-process cache with TTL expiry and optional LRU bound.
// The evict callback runs after the internal lock is released, so it may
// call back into the cache.
type Memory[V any] struct {
	opts    *memoryOptions
	index   map[string]*list.Element
	lru     *list.List
	onEvict func(key string, value V)
	done    chan struct{}
	mu      sync.Mutex
	closed  bool
}

// NewMemory creates a Memory cache and starts its sweeper when a cleanup
// interval is configured. Call Close to stop it.
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	o := defaultMemoryOptions()
	for _, opt := range opts {
		opt(o)
	}

	m := &Memory[V]{
		opts:  o,
		index: make(map[string]*list.Element),
		lru:   list.New(),
		done:  make(chan struct{}),
	}
	if o.cleanupInterval > 0 {
		go m.sweepLoop(o.cleanupInterval)
	}
	return m
}

// SetEvictCallback registers fn for every removal: expiry, LRU pressure,
// Delete and Clear. Overwriting a key with Set is not a removal.
func (m *Memory[V]) SetEvictCallback(fn func(key string, value V)) {
	m.mu.Lock()
	m.onEvict = fn
	m.mu.Unlock()
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	var zero V

	m.mu.Lock()
	el, ok := m.index[key]
	if !ok {
		m.mu.Unlock()
		return zero, ErrNotFound
	}
	it := el.Value.(*item[V])
	if it.expired(m.opts.now()) {
		gone := m.unlink(el)
		fn := m.onEvict
		m.mu.Unlock()
		m.notify(fn, gone)
		return zero, ErrNotFound
	}
	m.lru.MoveToFront(el)
	v := it.value
	m.mu.Unlock()
	return v, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}

	if ttl == 0 {
		ttl = m.opts.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.opts.now().Add(ttl)
	}

	if el, ok := m.index[key]; ok {
		it := el.Value.(*item[V])
		it.value, it.expiresAt = value, expiresAt
		m.lru.MoveToFront(el)
		m.mu.Unlock()
		return nil
	}

	var gone []evicted[V]
	if m.opts.maxEntries > 0 && len(m.index) >= m.opts.maxEntries {
		if back := m.lru.Back(); back != nil {
			gone = m.unlink(back)
		}
	}
	m.index[key] = m.lru.PushFront(&item[V]{key: key, value: value, expiresAt: expiresAt})
	fn := m.onEvict
	m.mu.Unlock()

	m.notify(fn, gone)
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	var gone []evicted[V]
	if el, ok := m.index[key]; ok {
		gone = m.unlink(el)
	}
	fn := m.onEvict
	m.mu.Unlock()

	m.notify(fn, gone)
	return nil
}

func (m *Memory[V]) Has(ctx context.Context, key string) (bool, error) {
	if _, err := m.Get(ctx, key); err != nil {
		return false, nil
	}
	return true, nil
}

// Len reports the number of stored entries, expired ones included until swept.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.index)
}

func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	gone := make([]evicted[V], 0, len(m.index))
	for el := m.lru.Back(); el != nil; el = el.Prev() {
		it := el.Value.(*item[V])
		gone = append(gone, evicted[V]{key: it.key, value: it.value})
	}
	m.index = make(map[string]*list.Element)
	m.lru.Init()
	fn := m.onEvict
	m.mu.Unlock()

	m.notify(fn, gone)
	return nil
}

// Close stops the sweeper. It is idempotent and keeps stored entries readable.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

func (m *Memory[V]) sweepLoop(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-t.C:
			m.sweep()
		}
	}
}

func (m *Memory[V]) sweep() {
	m.mu.Lock()
	now := m.opts.now()
	var gone []evicted[V]
	for el := m.lru.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*item[V]).expired(now) {
			gone = append(gone, m.unlink(el)...)
		}
		el = prev
	}
	fn := m.onEvict
	m.mu.Unlock()

	m.notify(fn, gone)
}

// unlink must be called with mu held.
func (m *Memory[V]) unlink(el *list.Element) []evicted[V] {
	it := m.lru.Remove(el).(*item[V])
	delete(m.index, it.key)
	return []evicted[V]{{key: it.key, value: it.value}}
}

func (m *Memory[V]) notify(fn func(string, V), gone []evicted[V]) {
	if fn == nil {
		return
	}
	for _, e := range gone {
		fn(e.key, e.value)
	}
}

var _ Cache[any] = (*Memory[any])(nil)
