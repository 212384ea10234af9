// Package engine provides a lazily-initialized, process-wide handle for
// expensive inference backends. The first Acquire pays the initialization
// cost; later callers reuse the handle until Release.
package engine

import (
	"sync"
	"sync/atomic"
)

// Holder owns one optional value of type T. The value lives behind an atomic
// pointer so the loaded fast path never races with Release; the mutex
// serializes initialization and release. The pointed-to value is immutable
// once published.
type Holder[T any] struct {
	mu  sync.Mutex
	val atomic.Pointer[T]
}

// Acquire returns the held value, initializing it via init on first use.
// Initialization failures leave the holder empty so a later call can retry.
func (h *Holder[T]) Acquire(init func() (T, error)) (T, error) {
	if p := h.val.Load(); p != nil {
		return *p, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if p := h.val.Load(); p != nil {
		return *p, nil
	}

	val, err := init()
	if err != nil {
		var zero T
		return zero, err
	}
	h.val.Store(&val)
	return val, nil
}

// Loaded reports whether the value is currently initialized.
func (h *Holder[T]) Loaded() bool {
	return h.val.Load() != nil
}

// Release drops the held value, calling close on it first when provided.
// A released holder re-initializes on the next Acquire.
func (h *Holder[T]) Release(close func(T)) {
	h.mu.Lock()
	defer h.mu.Unlock()

	p := h.val.Swap(nil)
	if p == nil {
		return
	}
	if close != nil {
		close(*p)
	}
}
