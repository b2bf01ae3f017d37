package navigation

import (
	"slices"
	"sync"
)

// Router keeps the match for the current history location up to date.
// It re-evaluates the table on every history change and never polls.
type Router[T any] struct {
	table       *Table[T]
	history     *History
	unsubscribe func()
	listeners   []func(Match[T])
	current     Match[T]
	mu          sync.RWMutex
}

// NewRouter binds a table to a history and evaluates the initial location.
func NewRouter[T any](table *Table[T], history *History) *Router[T] {
	r := &Router[T]{
		table:   table,
		history: history,
	}
	r.current = table.match(history.Current())
	r.unsubscribe = history.Subscribe(r.evaluate)
	return r
}

// Current returns the match for the current location.
func (r *Router[T]) Current() Match[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Navigate pushes target onto the underlying history.
func (r *Router[T]) Navigate(target string) {
	r.history.Push(target)
}

// OnChange registers a listener called with each new match.
// Listeners cannot be removed; they live as long as the router.
func (r *Router[T]) OnChange(fn func(Match[T])) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// Close detaches the router from the history. Close is idempotent.
func (r *Router[T]) Close() {
	r.mu.Lock()
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// evaluate matches the history's current location rather than the notified
// one: observers run outside the history lock, so notifications for
// concurrent pushes can arrive out of order.
func (r *Router[T]) evaluate(Location) {
	r.mu.Lock()
	m := r.table.match(r.history.Current())
	r.current = m
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(m)
	}
}

var _ Navigator = (*Router[any])(nil)
