// Package live provides the live-query subscription layer over persisted
// collections. A Feed pushes a full-collection snapshot to every subscriber
// whenever the collection changes, mirroring the behavior of a document
// database's snapshot listeners.
//
// Cancellation is synchronous: once Handle.Cancel returns, the subscriber's
// callback will not be invoked again, even if a publish was racing the
// cancel. Callers rely on this to switch chat threads without rendering a
// stale snapshot from the previous subscription.
package live

import (
	"context"
	"sync"
)

// Loader reads the current contents of a collection. Feeds call it on every
// publish so subscribers always observe a full, fresh snapshot.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Feed fans full-collection snapshots out to subscribers. The zero value is
// not usable; construct with NewFeed.
type Feed[T any] struct {
	mu   sync.Mutex
	load Loader[T]
	subs map[*Handle]func([]T)
	last []T
	// seeded reports whether at least one publish has happened, so late
	// subscribers can be primed with the latest snapshot.
	seeded bool
}

// Handle identifies one subscription.
//
// Cancel and snapshot delivery serialize on the handle's mutex: a delivery in
// flight when Cancel is called completes first, and no delivery starts after
// Cancel returns. Because of that, a snapshot callback must not cancel its
// own handle.
type Handle struct {
	feed canceller
	mu   sync.Mutex
	done bool
}

type canceller interface{ detach(h *Handle) }

// NewFeed returns a Feed over the given loader.
func NewFeed[T any](load Loader[T]) *Feed[T] {
	return &Feed[T]{load: load, subs: make(map[*Handle]func([]T))}
}

// Subscribe registers onSnapshot and returns its cancellation handle. If the
// feed has already published, the subscriber is immediately primed with the
// most recent snapshot before Subscribe returns.
func (f *Feed[T]) Subscribe(onSnapshot func([]T)) *Handle {
	h := &Handle{feed: f}

	f.mu.Lock()
	f.subs[h] = onSnapshot
	prime := f.seeded
	last := f.last
	f.mu.Unlock()

	if prime {
		h.deliver(func() { onSnapshot(last) })
	}
	return h
}

// Publish re-reads the collection and delivers the snapshot to every live
// subscriber. Delivery happens on the caller's goroutine, which serializes
// snapshot handling the same way an event loop would. The load error is
// returned so writers can log it; subscribers are not notified on failure.
func (f *Feed[T]) Publish(ctx context.Context) error {
	items, err := f.load(ctx)
	if err != nil {
		return err
	}

	type target struct {
		h  *Handle
		fn func([]T)
	}

	f.mu.Lock()
	f.last = items
	f.seeded = true
	targets := make([]target, 0, len(f.subs))
	for h, fn := range f.subs {
		targets = append(targets, target{h, fn})
	}
	f.mu.Unlock()

	for _, t := range targets {
		fn := t.fn
		t.h.deliver(func() { fn(items) })
	}
	return nil
}

// detach removes the handle's subscription under the feed lock.
func (f *Feed[T]) detach(h *Handle) {
	f.mu.Lock()
	delete(f.subs, h)
	f.mu.Unlock()
}

// deliver invokes fn unless the handle has been cancelled. Holding the handle
// mutex across the callback is what makes Cancel a hard barrier.
func (h *Handle) deliver(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done {
		return
	}
	fn()
}

// Cancel detaches the subscription. It is idempotent and safe to call from
// any goroutine except the handle's own snapshot callback; once it returns,
// no further snapshots are delivered.
func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	h.mu.Lock()
	done := h.done
	h.done = true
	h.mu.Unlock()
	if done {
		return
	}
	h.feed.detach(h)
}
