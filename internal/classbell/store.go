// Package classbell is the lesson reminder and notification engine: a bounded
// per-user notification log with live subscribers, the factory that turns
// domain events into notifications, and the poller that warns about lessons
// that are about to start.
package classbell

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/classbell/internal/core/notify"
	"github.com/colonyops/classbell/pkg/randid"
)

var (
	// ErrMissingUser is returned when an operation names no user.
	ErrMissingUser = errors.New("user id is required")
	// ErrInvalidKind is returned when a draft carries a kind outside the closed set.
	ErrInvalidKind = errors.New("invalid notification kind")
)

// Store is the per-user bounded notification log. The in-memory view is
// authoritative for the running process; every change is written through to
// the Persister and then delivered to the user's subscribers.
//
// Each user is an independent partition with its own lock, so operations on
// one user run to completion without observing another operation's partial
// state. Subscribers must not mutate the store synchronously from inside the
// callback.
type Store struct {
	persister notify.Persister
	capacity  int
	now       func() time.Time
	log       zerolog.Logger
	fanout    *fanout

	mu         sync.Mutex
	partitions map[string]*partition
}

type partition struct {
	// deliver orders fanout so subscribers see snapshots in mutation order.
	deliver sync.Mutex

	mu      sync.Mutex
	loaded  bool
	records []notify.Record
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithCapacity overrides the per-user capacity. Values below 1 are ignored.
func WithCapacity(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithClock sets the time source used for CreatedAt and ids.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) { s.log = log }
}

// NewStore creates a store that persists through p.
func NewStore(p notify.Persister, opts ...StoreOption) *Store {
	s := &Store{
		persister:  p,
		capacity:   notify.MaxNotifications,
		now:        time.Now,
		log:        zerolog.Nop(),
		fanout:     newFanout(),
		partitions: make(map[string]*partition),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capacity returns the maximum number of records kept per user.
func (s *Store) Capacity() int {
	return s.capacity
}

// Append stores a new unread record built from d at the head of the user's
// list, evicting the oldest records beyond capacity. A *notify.PersistenceError
// means the record exists in memory and was delivered to subscribers but is
// not durable.
func (s *Store) Append(ctx context.Context, userID string, d notify.Draft) (notify.Record, error) {
	if userID == "" {
		return notify.Record{}, ErrMissingUser
	}
	if !d.Kind.IsValid() {
		return notify.Record{}, fmt.Errorf("%w: %q", ErrInvalidKind, d.Kind)
	}

	var rec notify.Record
	err := s.mutate(ctx, userID, "append", func(records []notify.Record) ([]notify.Record, bool) {
		createdAt := s.now().UTC()
		rec = notify.Record{
			ID:        newRecordID(createdAt, records),
			UserID:    userID,
			Kind:      d.Kind,
			Title:     d.Title,
			Message:   d.Message,
			Payload:   d.Payload,
			CreatedAt: createdAt,
		}

		next := make([]notify.Record, 0, min(len(records)+1, s.capacity))
		next = append(next, rec)
		next = append(next, records...)
		if len(next) > s.capacity {
			next = next[:s.capacity]
		}
		return next, true
	})

	return rec, err
}

// List returns the user's records, most recent first. It never fails:
// missing, unreadable or corrupt persisted data reads as an empty list.
func (s *Store) List(ctx context.Context, userID string) []notify.Record {
	p := s.partition(userID)
	p.mu.Lock()
	defer p.mu.Unlock()

	s.ensureLoaded(ctx, userID, p)
	return slices.Clone(p.records)
}

// UnreadCount returns the number of unread records, derived from the list.
func (s *Store) UnreadCount(ctx context.Context, userID string) int {
	p := s.partition(userID)
	p.mu.Lock()
	defer p.mu.Unlock()

	s.ensureLoaded(ctx, userID, p)
	return notify.UnreadCount(p.records)
}

// MarkRead marks one record as read. Unknown ids and already-read records
// are a no-op.
func (s *Store) MarkRead(ctx context.Context, userID, id string) error {
	return s.mutate(ctx, userID, "mark-read", func(records []notify.Record) ([]notify.Record, bool) {
		i := slices.IndexFunc(records, func(r notify.Record) bool { return r.ID == id })
		if i < 0 || records[i].Read {
			return records, false
		}
		next := slices.Clone(records)
		next[i].Read = true
		return next, true
	})
}

// MarkAllRead marks every record of the user as read.
func (s *Store) MarkAllRead(ctx context.Context, userID string) error {
	return s.mutate(ctx, userID, "mark-all-read", func(records []notify.Record) ([]notify.Record, bool) {
		if notify.UnreadCount(records) == 0 {
			return records, false
		}
		next := slices.Clone(records)
		for i := range next {
			next[i].Read = true
		}
		return next, true
	})
}

// Delete removes one record. Unknown ids are a no-op.
func (s *Store) Delete(ctx context.Context, userID, id string) error {
	return s.mutate(ctx, userID, "delete", func(records []notify.Record) ([]notify.Record, bool) {
		i := slices.IndexFunc(records, func(r notify.Record) bool { return r.ID == id })
		if i < 0 {
			return records, false
		}
		return slices.Delete(slices.Clone(records), i, i+1), true
	})
}

// Clear removes every record of the user.
func (s *Store) Clear(ctx context.Context, userID string) error {
	return s.mutate(ctx, userID, "clear", func(records []notify.Record) ([]notify.Record, bool) {
		if len(records) == 0 {
			return records, false
		}
		return []notify.Record{}, true
	})
}

// Subscribe registers fn to receive the user's list after every change and
// returns a function that stops delivery. Unsubscribing is immediate and
// idempotent.
//
// fn runs while the user's delivery lock is held. Calling a mutating method
// for the same user from inside fn deadlocks; hand the snapshot to another
// goroutine instead, as SubscribeLatest does.
func (s *Store) Subscribe(userID string, fn Subscriber) (unsubscribe func()) {
	return s.fanout.subscribe(userID, fn)
}

// SubscribeLatest subscribes to userID through a channel that holds only the
// newest undelivered snapshot. A slow reader skips intermediate lists. The
// returned function unsubscribes.
func (s *Store) SubscribeLatest(userID string) (<-chan []notify.Record, func()) {
	updates := make(chan []notify.Record, 1)
	unsubscribe := s.fanout.subscribe(userID, func(records []notify.Record) {
		for {
			select {
			case updates <- records:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	return updates, unsubscribe
}

// Subscribers returns the number of live subscribers for userID.
func (s *Store) Subscribers(userID string) int {
	return s.fanout.count(userID)
}

// Reload re-reads the user's persisted list, replacing the in-memory view and
// notifying subscribers when it differs. Used when another process wrote the
// same log. Corrupt or unreadable data leaves the in-memory view untouched.
func (s *Store) Reload(ctx context.Context, userID string) (bool, error) {
	p := s.partition(userID)
	p.deliver.Lock()
	defer p.deliver.Unlock()

	p.mu.Lock()
	data, err := s.persister.Load(ctx, userID)
	if err != nil {
		p.mu.Unlock()
		return false, fmt.Errorf("reload notifications for %s: %w", userID, err)
	}
	records, err := notify.Decode(userID, data)
	if err != nil {
		p.mu.Unlock()
		return false, err
	}
	records = s.trim(records)
	if p.loaded && sameRecords(p.records, records) {
		p.mu.Unlock()
		return false, nil
	}

	p.records = records
	p.loaded = true
	snapshot := slices.Clone(records)
	p.mu.Unlock()

	s.fanout.publish(userID, snapshot)
	return true, nil
}

// mutate applies fn to the user's list under the partition lock. When fn
// reports a change the new list is persisted and then delivered to
// subscribers whether or not persistence succeeded.
func (s *Store) mutate(ctx context.Context, userID, op string, fn func([]notify.Record) ([]notify.Record, bool)) error {
	if userID == "" {
		return ErrMissingUser
	}

	p := s.partition(userID)
	p.deliver.Lock()
	defer p.deliver.Unlock()

	p.mu.Lock()
	s.ensureLoaded(ctx, userID, p)

	next, changed := fn(p.records)
	if !changed {
		p.mu.Unlock()
		return nil
	}

	p.records = next
	err := s.persist(ctx, userID, op, next)
	snapshot := slices.Clone(next)
	p.mu.Unlock()

	s.fanout.publish(userID, snapshot)
	return err
}

func (s *Store) persist(ctx context.Context, userID, op string, records []notify.Record) error {
	data, err := notify.Encode(records)
	if err == nil {
		err = s.persister.Save(ctx, userID, data)
	}
	if err != nil {
		perr := &notify.PersistenceError{UserID: userID, Op: op, Err: err}
		s.log.Error().Err(err).Str("user_id", userID).Str("op", op).Msg("notification log not persisted")
		return perr
	}
	return nil
}

// ensureLoaded reads the persisted list once per partition. p.mu must be held.
func (s *Store) ensureLoaded(ctx context.Context, userID string, p *partition) {
	if p.loaded {
		return
	}
	p.loaded = true
	p.records = []notify.Record{}

	data, err := s.persister.Load(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("notification log unreadable, starting empty")
		return
	}

	records, err := notify.Decode(userID, data)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("discarding corrupt notification log")
		return
	}
	p.records = s.trim(records)
}

// trim drops the oldest records beyond capacity. Another process sharing the
// log may have written it with a larger capacity.
func (s *Store) trim(records []notify.Record) []notify.Record {
	if len(records) > s.capacity {
		return records[:s.capacity]
	}
	return records
}

func (s *Store) partition(userID string) *partition {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.partitions[userID]
	if !ok {
		p = &partition{}
		s.partitions[userID] = p
	}
	return p
}

// newRecordID returns "<unix millis>-<random>" that is not used by records.
func newRecordID(at time.Time, records []notify.Record) string {
	for {
		id := fmt.Sprintf("%d-%s", at.UnixMilli(), randid.Generate(6))
		if !slices.ContainsFunc(records, func(r notify.Record) bool { return r.ID == id }) {
			return id
		}
	}
}

func sameRecords(a, b []notify.Record) bool {
	return slices.EqualFunc(a, b, func(x, y notify.Record) bool {
		return x.ID == y.ID && x.Read == y.Read
	})
}
