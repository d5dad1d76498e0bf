package eventbus_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/classbell/internal/core/eventbus"
	"github.com/colonyops/classbell/internal/core/notify"
)

func startBus(t *testing.T, buffer int) *eventbus.EventBus {
	t.Helper()
	bus := eventbus.New(buffer)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Start(ctx)
	return bus
}

func TestEventBus_DeliversTypedPayload(t *testing.T) {
	bus := startBus(t, 8)

	got := make(chan notify.LessonCompletedEvent, 1)
	bus.SubscribeLessonCompleted(func(p notify.LessonCompletedEvent) { got <- p })

	bus.PublishLessonCompleted(notify.LessonCompletedEvent{UserID: "u1", LessonID: "l-1"})

	select {
	case p := <-got:
		assert.Equal(t, "l-1", p.LessonID)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestEventBus_DropsWhenFull(t *testing.T) {
	// Not started: nothing drains the buffer.
	bus := eventbus.New(1)

	var dropped atomic.Int32
	bus.OnDrop(func(eventbus.Event, any) { dropped.Add(1) })

	bus.PublishProfileUpdated(notify.ProfileUpdatedEvent{UserID: "u1"})
	bus.PublishProfileUpdated(notify.ProfileUpdatedEvent{UserID: "u1"})
	bus.PublishProfileUpdated(notify.ProfileUpdatedEvent{UserID: "u1"})

	assert.Equal(t, int32(2), dropped.Load())
}

func TestEventBus_PanicDoesNotStopDispatch(t *testing.T) {
	bus := startBus(t, 8)

	var (
		mu       sync.Mutex
		panicked []eventbus.Event
	)
	bus.OnPanic(func(e eventbus.Event, _ any, _ any) {
		mu.Lock()
		panicked = append(panicked, e)
		mu.Unlock()
	})

	got := make(chan struct{}, 1)
	bus.SubscribeRatingReceived(func(notify.NewRatingEvent) { panic("boom") })
	bus.SubscribeRatingReceived(func(notify.NewRatingEvent) { got <- struct{}{} })

	bus.PublishRatingReceived(notify.NewRatingEvent{UserID: "u1", Rating: 5})

	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatal("second subscriber not reached")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []eventbus.Event{eventbus.EventRatingReceived}, panicked)
}

func TestEventBus_PublishJSON(t *testing.T) {
	bus := startBus(t, 8)

	got := make(chan notify.PaymentConfirmedEvent, 1)
	bus.SubscribePaymentConfirmed(func(p notify.PaymentConfirmedEvent) { got <- p })

	err := bus.PublishJSON(eventbus.EventPaymentConfirmed, []byte(`{"userId":"u1","lessonId":"l-9","amount":{"amount":45000,"currency":"COP"},"scheduledAt":"2026-03-14T15:00:00Z"}`))
	require.NoError(t, err)

	select {
	case p := <-got:
		assert.Equal(t, "l-9", p.LessonID)
		assert.InDelta(t, 45000, p.Amount.Amount, 0.001)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestEventBus_PublishJSON_Errors(t *testing.T) {
	bus := eventbus.New(8)

	require.Error(t, bus.PublishJSON("lesson.teleported", []byte(`{}`)))
	require.Error(t, bus.PublishJSON(eventbus.EventMessageReceived, []byte(`{"userId":`)))
}

func TestEvents_CoversEveryPublishableEvent(t *testing.T) {
	bus := eventbus.New(len(eventbus.Events()))

	for event := range eventbus.Events() {
		assert.NoError(t, bus.PublishJSON(event, []byte(`{"userId":"u1"}`)), event)
	}
}
