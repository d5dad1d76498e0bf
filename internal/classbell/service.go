package classbell

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colonyops/classbell/internal/core/lesson"
	"github.com/colonyops/classbell/internal/core/logging"
)

// ServiceOptions configures the reminder behavior of a Service.
type ServiceOptions struct {
	PollInterval time.Duration
	LeadTime     time.Duration
	Clock        func() time.Time
}

// Service owns the engine for one process: the store, the factory and the
// lesson registry. At most one user session is active at a time.
type Service struct {
	store    *Store
	factory  *Factory
	registry lesson.Registry
	opts     ServiceOptions
	log      zerolog.Logger

	mu      sync.Mutex
	session *Session
}

// NewService creates a service with no active session.
func NewService(store *Store, factory *Factory, registry lesson.Registry, opts ServiceOptions, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		factory:  factory,
		registry: registry,
		opts:     opts,
		log:      log,
	}
}

// Store returns the notification store.
func (s *Service) Store() *Store {
	return s.store
}

// Factory returns the notification factory.
func (s *Service) Factory() *Factory {
	return s.factory
}

// Registry returns the lesson registry the pollers read.
func (s *Service) Registry() lesson.Registry {
	return s.registry
}

// Session is one user's login: a fresh proximity tracker and a running
// poller. Ending the session stops the poller and forgets the tracker.
type Session struct {
	ID        string
	UserID    string
	StartedAt time.Time

	poller *Poller
	handle *Handle
}

// Tracker returns the lessons already reminded about in this session.
func (s *Session) Tracker() *Tracker {
	return s.poller.Tracker()
}

// Poller returns the session's poller.
func (s *Session) Poller() *Poller {
	return s.poller
}

func (s *Session) stop() {
	s.handle.Stop()
	s.poller.Tracker().Reset()
}

// Activate ends any active session and starts a new one for userID. The
// poller scans once immediately and then on every interval until the
// session is deactivated or ctx is done.
func (s *Service) Activate(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	if s.registry == nil {
		return nil, errors.New("no lesson registry configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		s.session.stop()
		s.session = nil
	}

	id := uuid.NewString()
	ctx = logging.WithSessionID(logging.WithUserID(ctx, userID), id)

	now := time.Now
	if s.opts.Clock != nil {
		now = s.opts.Clock
	}

	poller := NewPoller(userID, s.registry, s.factory, NewTracker(),
		WithPollInterval(s.opts.PollInterval),
		WithLeadTime(s.opts.LeadTime),
		WithPollerClock(now),
		WithPollerLogger(logging.With(s.log, "poller")),
	)

	sess := &Session{
		ID:        id,
		UserID:    userID,
		StartedAt: now().UTC(),
		poller:    poller,
	}
	sess.handle = poller.Start(ctx)
	s.session = sess

	s.log.Info().Ctx(ctx).Msg("session activated")
	return sess, nil
}

// Deactivate ends the active session, if any. No reminder scan runs after
// it returns.
func (s *Service) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return
	}
	s.session.stop()
	s.log.Info().Str("user_id", s.session.UserID).Str("session_id", s.session.ID).Msg("session deactivated")
	s.session = nil
}

// Session returns the active session or nil.
func (s *Service) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}
