// Package window keeps time-bounded sample buffers for the live session.
package window

import (
	"sort"
)

// Window holds items ordered by non-decreasing time and drops them from the
// front once they fall out of the horizon. It is not safe for concurrent use.
type Window[T any] struct {
	horizon float64
	at      func(T) float64
	items   []T
}

// New creates a window that retains items whose time is within horizon
// seconds of the latest prune instant.
func New[T any](horizon float64, at func(T) float64) *Window[T] {
	return &Window[T]{horizon: horizon, at: at}
}

// Append adds v and prunes against its timestamp. Items older than the last
// one are rejected with ErrOutOfOrder.
func (w *Window[T]) Append(v T) error {
	t := w.at(v)
	if n := len(w.items); n > 0 && t < w.at(w.items[n-1]) {
		return ErrOutOfOrder
	}
	w.items = append(w.items, v)
	w.Prune(t)
	return nil
}

// Prune drops every item with time < now - horizon.
func (w *Window[T]) Prune(now float64) {
	cut := w.index(now - w.horizon)
	if cut == 0 {
		return
	}
	if cut > cap(w.items)/2 {
		// Reallocate so the dropped prefix can be collected.
		w.items = append(make([]T, 0, len(w.items)-cut), w.items[cut:]...)
		return
	}
	w.items = w.items[cut:]
}

// Since returns a copy of the items with time >= cutoff.
func (w *Window[T]) Since(cutoff float64) []T {
	i := w.index(cutoff)
	out := make([]T, len(w.items)-i)
	copy(out, w.items[i:])
	return out
}

// Items returns a copy of every retained item.
func (w *Window[T]) Items() []T {
	return w.Since(negInf)
}

// Last returns the newest item.
func (w *Window[T]) Last() (T, bool) {
	var zero T
	if len(w.items) == 0 {
		return zero, false
	}
	return w.items[len(w.items)-1], true
}

// Len is the number of retained items.
func (w *Window[T]) Len() int { return len(w.items) }

// index is the first position whose time is >= cutoff.
func (w *Window[T]) index(cutoff float64) int {
	return sort.Search(len(w.items), func(i int) bool { return w.at(w.items[i]) >= cutoff })
}
