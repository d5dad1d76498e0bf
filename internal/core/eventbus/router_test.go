package eventbus_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/classbell/internal/core/eventbus"
	"github.com/colonyops/classbell/internal/core/eventbus/testbus"
	"github.com/colonyops/classbell/internal/core/notify"
)

type call struct {
	kind   notify.Kind
	userID string
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []call
	err   error
}

func (n *recordingNotifier) add(kind notify.Kind, userID string) (notify.Record, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, call{kind: kind, userID: userID})
	return notify.Record{ID: "n-1", UserID: userID, Kind: kind}, n.err
}

func (n *recordingNotifier) snapshot() []call {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]call(nil), n.calls...)
}

func (n *recordingNotifier) NotifyPaymentConfirmed(_ context.Context, ev notify.PaymentConfirmedEvent) (notify.Record, error) {
	return n.add(notify.KindPaymentConfirmed, ev.UserID)
}

func (n *recordingNotifier) NotifyLessonReserved(_ context.Context, ev notify.LessonReservedEvent) (notify.Record, error) {
	return n.add(notify.KindLessonReserved, ev.UserID)
}

func (n *recordingNotifier) NotifyLessonCancelled(_ context.Context, ev notify.LessonCancelledEvent) (notify.Record, error) {
	return n.add(notify.KindLessonCancelled, ev.UserID)
}

func (n *recordingNotifier) NotifyLessonCompleted(_ context.Context, ev notify.LessonCompletedEvent) (notify.Record, error) {
	return n.add(notify.KindLessonCompleted, ev.UserID)
}

func (n *recordingNotifier) NotifyNewMessage(_ context.Context, ev notify.NewMessageEvent) (notify.Record, error) {
	return n.add(notify.KindNewMessage, ev.UserID)
}

func (n *recordingNotifier) NotifyProfileUpdated(_ context.Context, ev notify.ProfileUpdatedEvent) (notify.Record, error) {
	return n.add(notify.KindProfileUpdated, ev.UserID)
}

func (n *recordingNotifier) NotifyNewRating(_ context.Context, ev notify.NewRatingEvent) (notify.Record, error) {
	return n.add(notify.KindNewRating, ev.UserID)
}

func (n *recordingNotifier) NotifyMilestone(_ context.Context, ev notify.MilestoneEvent) (notify.Record, error) {
	return n.add(notify.KindMilestone, ev.UserID)
}

func waitForCalls(t *testing.T, n *recordingNotifier, want int) []call {
	t.Helper()
	var got []call
	require.Eventually(t, func() bool {
		got = n.snapshot()
		return len(got) >= want
	}, time.Second, 5*time.Millisecond)
	return got
}

func TestNotificationRouter_RoutesEveryEvent(t *testing.T) {
	tests := []struct {
		name    string
		publish func(tb *testbus.Bus)
		want    notify.Kind
	}{
		{"payment", func(tb *testbus.Bus) { tb.PublishPaymentConfirmed(notify.PaymentConfirmedEvent{UserID: "u1"}) }, notify.KindPaymentConfirmed},
		{"reserved", func(tb *testbus.Bus) { tb.PublishLessonReserved(notify.LessonReservedEvent{UserID: "u1"}) }, notify.KindLessonReserved},
		{"cancelled", func(tb *testbus.Bus) { tb.PublishLessonCancelled(notify.LessonCancelledEvent{UserID: "u1"}) }, notify.KindLessonCancelled},
		{"completed", func(tb *testbus.Bus) { tb.PublishLessonCompleted(notify.LessonCompletedEvent{UserID: "u1"}) }, notify.KindLessonCompleted},
		{"message", func(tb *testbus.Bus) { tb.PublishMessageReceived(notify.NewMessageEvent{UserID: "u1"}) }, notify.KindNewMessage},
		{"profile", func(tb *testbus.Bus) { tb.PublishProfileUpdated(notify.ProfileUpdatedEvent{UserID: "u1"}) }, notify.KindProfileUpdated},
		{"rating", func(tb *testbus.Bus) { tb.PublishRatingReceived(notify.NewRatingEvent{UserID: "u1"}) }, notify.KindNewRating},
		{"milestone", func(tb *testbus.Bus) { tb.PublishMilestoneReached(notify.MilestoneEvent{UserID: "u1"}) }, notify.KindMilestone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := testbus.New(t)
			n := &recordingNotifier{}
			eventbus.NewNotificationRouter(tb.EventBus, n, zerolog.Nop()).Register()

			tt.publish(tb)

			calls := waitForCalls(t, n, 1)
			require.Len(t, calls, 1)
			assert.Equal(t, tt.want, calls[0].kind)
			assert.Equal(t, "u1", calls[0].userID)
		})
	}
}

func TestNotificationRouter_ErrorsDoNotStopRouting(t *testing.T) {
	tb := testbus.New(t)
	n := &recordingNotifier{err: errors.New("store closed")}
	eventbus.NewNotificationRouter(tb.EventBus, n, zerolog.Nop()).Register()

	tb.PublishMessageReceived(notify.NewMessageEvent{UserID: "u1"})
	tb.PublishMessageReceived(notify.NewMessageEvent{UserID: "u2"})

	calls := waitForCalls(t, n, 2)
	assert.Equal(t, "u2", calls[1].userID)
}

func TestNotificationRouter_NilSafe(t *testing.T) {
	var r *eventbus.NotificationRouter
	assert.NotPanics(t, r.Register)
	assert.NotPanics(t, eventbus.NewNotificationRouter(nil, nil, zerolog.Nop()).Register)
}
