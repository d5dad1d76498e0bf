package classbell

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/classbell/internal/core/lesson"
)

func newTestService(t *testing.T, lessons ...lesson.Lesson) (*Service, *fakeRegistry) {
	t.Helper()
	clock := newFakeClock(epoch, 0)
	store := NewStore(newMemPersister(), WithClock(clock.Now))
	registry := &fakeRegistry{lessons: lessons}
	svc := NewService(store, NewFactory(store, nil), registry, ServiceOptions{
		PollInterval: time.Hour,
		Clock:        clock.Now,
	}, zerolog.Nop())
	t.Cleanup(svc.Deactivate)
	return svc, registry
}

func TestService_Activate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, upcoming("l1", 5*time.Minute))

	assert.Nil(t, svc.Session())

	sess, err := svc.Activate(ctx, "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "u1", sess.UserID)
	assert.Same(t, sess, svc.Session())

	require.Eventually(t, func() bool {
		return sess.Tracker().Seen("l1")
	}, time.Second, 5*time.Millisecond)
	assert.Len(t, svc.Store().List(ctx, "u1"), 1)
}

func TestService_ActivateRequiresUser(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Activate(context.Background(), "")
	require.ErrorIs(t, err, ErrMissingUser)
}

func TestService_NewSessionNotifiesAgain(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, upcoming("l1", 5*time.Minute))

	first, err := svc.Activate(ctx, "u1")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return first.Tracker().Seen("l1") }, time.Second, 5*time.Millisecond)

	svc.Deactivate()
	assert.Nil(t, svc.Session())
	assert.Empty(t, first.Tracker().IDs(), "deactivation clears the tracker")

	second, err := svc.Activate(ctx, "u1")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	require.Eventually(t, func() bool {
		return len(startingSoon(svc.Store().List(ctx, "u1"))) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestService_SwitchUserStopsPreviousPoller(t *testing.T) {
	ctx := context.Background()
	svc, registry := newTestService(t)

	first, err := svc.Activate(ctx, "u1")
	require.NoError(t, err)

	second, err := svc.Activate(ctx, "u2")
	require.NoError(t, err)

	select {
	case <-first.handle.Done():
	default:
		t.Fatal("previous session poller still running")
	}
	assert.Equal(t, "u2", svc.Session().UserID)
	assert.Same(t, second, svc.Session())

	require.Eventually(t, func() bool {
		return registry.calls.Load() >= 1
	}, time.Second, 5*time.Millisecond)
}
