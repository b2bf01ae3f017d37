package navigation

import (
	"slices"
	"sync"
)

// Observer is called after every location change.
type Observer func(Location)

// Navigator changes the current location.
type Navigator interface {
	Navigate(target string)
}

// History is a back/forward stack of locations.
// It is safe for concurrent use. Observers run on the goroutine that caused
// the change, after the lock is released.
type History struct {
	observers map[uint64]Observer
	entries   []Location
	cursor    int
	nextID    uint64
	mu        sync.Mutex
}

// NewHistory creates a history whose only entry is the initial target.
func NewHistory(initial string) *History {
	return &History{
		entries:   []Location{ParseLocation(initial)},
		observers: make(map[uint64]Observer),
	}
}

// Current returns the location at the cursor.
func (h *History) Current() Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.cursor]
}

// Push adds a new entry after the cursor, discarding forward entries, and
// notifies observers. Pushing the current location still adds an entry.
func (h *History) Push(target string) {
	loc := ParseLocation(target)

	h.mu.Lock()
	h.entries = append(h.entries[:h.cursor+1], loc)
	h.cursor = len(h.entries) - 1
	observers := h.snapshot()
	h.mu.Unlock()

	notify(observers, loc)
}

// Navigate implements Navigator.
func (h *History) Navigate(target string) {
	h.Push(target)
}

// Replace overwrites the current entry and notifies observers.
func (h *History) Replace(target string) {
	loc := ParseLocation(target)

	h.mu.Lock()
	h.entries[h.cursor] = loc
	observers := h.snapshot()
	h.mu.Unlock()

	notify(observers, loc)
}

// Back moves the cursor one entry back. It returns false and does nothing
// when already at the oldest entry.
func (h *History) Back() bool {
	return h.move(-1)
}

// Forward moves the cursor one entry forward. It returns false and does
// nothing when already at the newest entry.
func (h *History) Forward() bool {
	return h.move(1)
}

// Len returns the number of entries, including forward entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Entries returns a copy of all entries, oldest first.
func (h *History) Entries() []Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.entries)
}

// Subscribe registers an observer and returns a function that removes it.
// The returned function is safe to call more than once.
func (h *History) Subscribe(fn Observer) func() {
	if fn == nil {
		return func() {}
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.observers[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.observers, id)
		h.mu.Unlock()
	}
}

func (h *History) move(delta int) bool {
	h.mu.Lock()
	next := h.cursor + delta
	if next < 0 || next >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.cursor = next
	loc := h.entries[next]
	observers := h.snapshot()
	h.mu.Unlock()

	notify(observers, loc)
	return true
}

// snapshot returns observers in registration order.
// Caller must hold the mutex.
func (h *History) snapshot() []Observer {
	ids := make([]uint64, 0, len(h.observers))
	for id := range h.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]Observer, len(ids))
	for i, id := range ids {
		out[i] = h.observers[id]
	}
	return out
}

func notify(observers []Observer, loc Location) {
	for _, fn := range observers {
		fn(loc)
	}
}

var _ Navigator = (*History)(nil)
