package eventbus

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/colonyops/classbell/internal/core/notify"
)

// Notifier turns domain events into stored notifications.
type Notifier interface {
	NotifyPaymentConfirmed(ctx context.Context, ev notify.PaymentConfirmedEvent) (notify.Record, error)
	NotifyLessonReserved(ctx context.Context, ev notify.LessonReservedEvent) (notify.Record, error)
	NotifyLessonCancelled(ctx context.Context, ev notify.LessonCancelledEvent) (notify.Record, error)
	NotifyLessonCompleted(ctx context.Context, ev notify.LessonCompletedEvent) (notify.Record, error)
	NotifyNewMessage(ctx context.Context, ev notify.NewMessageEvent) (notify.Record, error)
	NotifyProfileUpdated(ctx context.Context, ev notify.ProfileUpdatedEvent) (notify.Record, error)
	NotifyNewRating(ctx context.Context, ev notify.NewRatingEvent) (notify.Record, error)
	NotifyMilestone(ctx context.Context, ev notify.MilestoneEvent) (notify.Record, error)
}

// NotificationRouter maps domain events on the bus to Notifier calls.
type NotificationRouter struct {
	bus      *EventBus
	notifier Notifier
	log      zerolog.Logger
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus, notifier Notifier, log zerolog.Logger) *NotificationRouter {
	return &NotificationRouter{bus: bus, notifier: notifier, log: log}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil || r.notifier == nil {
		return
	}

	ctx := context.Background()

	r.bus.SubscribePaymentConfirmed(func(p notify.PaymentConfirmedEvent) {
		r.handle(EventPaymentConfirmed, p.UserID)(r.notifier.NotifyPaymentConfirmed(ctx, p))
	})
	r.bus.SubscribeLessonReserved(func(p notify.LessonReservedEvent) {
		r.handle(EventLessonReserved, p.UserID)(r.notifier.NotifyLessonReserved(ctx, p))
	})
	r.bus.SubscribeLessonCancelled(func(p notify.LessonCancelledEvent) {
		r.handle(EventLessonCancelled, p.UserID)(r.notifier.NotifyLessonCancelled(ctx, p))
	})
	r.bus.SubscribeLessonCompleted(func(p notify.LessonCompletedEvent) {
		r.handle(EventLessonCompleted, p.UserID)(r.notifier.NotifyLessonCompleted(ctx, p))
	})
	r.bus.SubscribeMessageReceived(func(p notify.NewMessageEvent) {
		r.handle(EventMessageReceived, p.UserID)(r.notifier.NotifyNewMessage(ctx, p))
	})
	r.bus.SubscribeProfileUpdated(func(p notify.ProfileUpdatedEvent) {
		r.handle(EventProfileUpdated, p.UserID)(r.notifier.NotifyProfileUpdated(ctx, p))
	})
	r.bus.SubscribeRatingReceived(func(p notify.NewRatingEvent) {
		r.handle(EventRatingReceived, p.UserID)(r.notifier.NotifyNewRating(ctx, p))
	})
	r.bus.SubscribeMilestoneReached(func(p notify.MilestoneEvent) {
		r.handle(EventMilestoneReached, p.UserID)(r.notifier.NotifyMilestone(ctx, p))
	})
}

// handle returns a sink for a Notifier result that logs the outcome.
func (r *NotificationRouter) handle(event Event, userID string) func(notify.Record, error) {
	return func(rec notify.Record, err error) {
		var persistErr *notify.PersistenceError
		switch {
		case err == nil:
			r.log.Debug().Str("event", string(event)).Str("user_id", userID).Str("id", rec.ID).Msg("notification created")
		case errors.As(err, &persistErr):
			r.log.Warn().Err(err).Str("event", string(event)).Str("user_id", userID).Msg("notification kept in memory only")
		default:
			r.log.Error().Err(err).Str("event", string(event)).Str("user_id", userID).Msg("notification dropped")
		}
	}
}
