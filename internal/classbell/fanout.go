package classbell

import (
	"sync"
	"sync/atomic"

	"github.com/colonyops/classbell/internal/core/notify"
)

// Subscriber receives the full list of a user's notifications, most recent
// first, after every change. The slice is shared between subscribers of the
// same delivery and must be treated as read-only.
//
// Delivery holds the user's lock, so a Subscriber must not call MarkRead,
// Delete or any other mutating Store method for the same user synchronously.
type Subscriber func(records []notify.Record)

type subscription struct {
	fn     Subscriber
	active atomic.Bool
}

// fanout is a per-user registry of subscribers.
type fanout struct {
	mu   sync.Mutex
	subs map[string][]*subscription
}

func newFanout() *fanout {
	return &fanout{subs: make(map[string][]*subscription)}
}

// subscribe registers fn for userID and returns an idempotent unsubscribe.
func (f *fanout) subscribe(userID string, fn Subscriber) func() {
	sub := &subscription{fn: fn}
	sub.active.Store(true)

	f.mu.Lock()
	f.subs[userID] = append(f.subs[userID], sub)
	f.mu.Unlock()

	return func() {
		if !sub.active.Swap(false) {
			return
		}

		f.mu.Lock()
		defer f.mu.Unlock()

		subs := f.subs[userID]
		for i, s := range subs {
			if s == sub {
				f.subs[userID] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(f.subs[userID]) == 0 {
			delete(f.subs, userID)
		}
	}
}

// publish calls every active subscriber of userID with snapshot. A
// subscriber removed while an earlier one runs is skipped.
func (f *fanout) publish(userID string, snapshot []notify.Record) {
	f.mu.Lock()
	subs := make([]*subscription, len(f.subs[userID]))
	copy(subs, f.subs[userID])
	f.mu.Unlock()

	for _, sub := range subs {
		if sub.active.Load() {
			sub.fn(snapshot)
		}
	}
}

func (f *fanout) count(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[userID])
}
