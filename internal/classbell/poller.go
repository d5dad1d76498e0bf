package classbell

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/classbell/internal/core/lesson"
	"github.com/colonyops/classbell/internal/core/notify"
)

const (
	// DefaultPollInterval is how often upcoming lessons are checked.
	DefaultPollInterval = 60 * time.Second
	// DefaultLeadTime is how far ahead of the start a lesson becomes eligible.
	DefaultLeadTime = 10 * time.Minute
)

// StartingSoonNotifier emits the "lesson starting soon" notification.
type StartingSoonNotifier interface {
	NotifyLessonStartingSoon(ctx context.Context, ev notify.LessonStartingSoonEvent) (notify.Record, error)
}

// Poller periodically asks the lesson registry for a user's upcoming lessons
// and emits one reminder per lesson that starts within the lead time.
type Poller struct {
	userID   string
	registry lesson.Registry
	notifier StartingSoonNotifier
	tracker  *Tracker
	now      func() time.Time
	interval time.Duration
	leadTime time.Duration
	log      zerolog.Logger

	scanMu sync.Mutex
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

func WithPollInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithLeadTime(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.leadTime = d
		}
	}
}

func WithPollerClock(now func() time.Time) PollerOption {
	return func(p *Poller) {
		if now != nil {
			p.now = now
		}
	}
}

func WithPollerLogger(log zerolog.Logger) PollerOption {
	return func(p *Poller) { p.log = log }
}

// NewPoller creates a poller for userID. A nil tracker gets a fresh one.
func NewPoller(userID string, registry lesson.Registry, notifier StartingSoonNotifier, tracker *Tracker, opts ...PollerOption) *Poller {
	if tracker == nil {
		tracker = NewTracker()
	}
	p := &Poller{
		userID:   userID,
		registry: registry,
		notifier: notifier,
		tracker:  tracker,
		now:      time.Now,
		interval: DefaultPollInterval,
		leadTime: DefaultLeadTime,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Tracker returns the set of lessons already reminded about.
func (p *Poller) Tracker() *Tracker {
	return p.tracker
}

// Scan runs one pass over the user's upcoming lessons and returns the number
// of reminders emitted. A registry failure is returned and nothing is
// emitted; a failure for one lesson is logged and the pass continues.
func (p *Poller) Scan(ctx context.Context) (int, error) {
	p.scanMu.Lock()
	defer p.scanMu.Unlock()

	lessons, err := p.registry.ListUpcoming(ctx, p.userID)
	if err != nil {
		return 0, fmt.Errorf("list upcoming lessons: %w", err)
	}

	now := p.now()
	emitted := 0
	for _, l := range lessons {
		if ctx.Err() != nil {
			return emitted, ctx.Err()
		}
		if !l.State.Upcoming() || p.tracker.Seen(l.ID) {
			continue
		}

		until := l.ScheduledAt.Sub(now)
		if until <= 0 || until > p.leadTime {
			continue
		}

		ev := notify.LessonStartingSoonEvent{
			UserID:      p.userID,
			LessonID:    l.ID,
			Topic:       l.Topic,
			MinutesLeft: minutesLeft(until),
		}

		_, err := p.notifier.NotifyLessonStartingSoon(ctx, ev)
		var perr *notify.PersistenceError
		switch {
		case err == nil:
		case errors.As(err, &perr):
			// Stored in memory and delivered; only durability failed.
			p.log.Warn().Ctx(ctx).Err(err).Str("lesson_id", l.ID).Msg("reminder not persisted")
		default:
			p.log.Error().Ctx(ctx).Err(err).Str("lesson_id", l.ID).Msg("reminder failed")
			continue
		}

		p.tracker.Mark(l.ID)
		emitted++
	}

	return emitted, nil
}

// Start runs an immediate scan followed by one scan per interval until ctx is
// done or the returned handle is stopped.
func (p *Poller) Start(ctx context.Context) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)

		if ctx.Err() != nil {
			return
		}
		p.tick(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// A tick may be ready together with cancellation.
				if ctx.Err() != nil {
					return
				}
				p.tick(ctx)
			}
		}
	}()

	return h
}

func (p *Poller) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Ctx(ctx).Interface("panic", r).Msg("lesson scan panicked")
		}
	}()

	n, err := p.Scan(ctx)
	switch {
	case err != nil && ctx.Err() != nil:
		return
	case err != nil:
		p.log.Warn().Ctx(ctx).Err(err).Msg("lesson scan failed")
	case n > 0:
		p.log.Debug().Ctx(ctx).Int("emitted", n).Msg("lesson reminders emitted")
	}
}

// Handle controls a running poller.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop cancels the poller and waits for the in-flight scan, if any, to
// return. No scan starts after Stop returns. Safe to call more than once.
func (h *Handle) Stop() {
	if h == nil {
		return
	}
	h.once.Do(h.cancel)
	<-h.done
}

// Done is closed when the polling loop has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// minutesLeft rounds up so a lesson 9m30s away reads as 10 minutes.
func minutesLeft(d time.Duration) int {
	return int(math.Ceil(d.Minutes()))
}
