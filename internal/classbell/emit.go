package classbell

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/colonyops/classbell/internal/core/notify"
)

// NotifyJSON decodes data as the event for kind and creates the notification
// for userID. A userId inside data is ignored.
func (f *Factory) NotifyJSON(ctx context.Context, kind notify.Kind, userID string, data []byte) (notify.Record, error) {
	if len(data) == 0 {
		data = []byte("{}")
	}

	switch kind {
	case notify.KindPaymentConfirmed:
		return emitAs(ctx, data, userID, func(ev *notify.PaymentConfirmedEvent) *string { return &ev.UserID }, f.NotifyPaymentConfirmed)
	case notify.KindLessonReserved:
		return emitAs(ctx, data, userID, func(ev *notify.LessonReservedEvent) *string { return &ev.UserID }, f.NotifyLessonReserved)
	case notify.KindLessonCancelled:
		return emitAs(ctx, data, userID, func(ev *notify.LessonCancelledEvent) *string { return &ev.UserID }, f.NotifyLessonCancelled)
	case notify.KindLessonCompleted:
		return emitAs(ctx, data, userID, func(ev *notify.LessonCompletedEvent) *string { return &ev.UserID }, f.NotifyLessonCompleted)
	case notify.KindLessonStartingSoon:
		return emitAs(ctx, data, userID, func(ev *notify.LessonStartingSoonEvent) *string { return &ev.UserID }, f.NotifyLessonStartingSoon)
	case notify.KindNewMessage:
		return emitAs(ctx, data, userID, func(ev *notify.NewMessageEvent) *string { return &ev.UserID }, f.NotifyNewMessage)
	case notify.KindProfileUpdated:
		return emitAs(ctx, data, userID, func(ev *notify.ProfileUpdatedEvent) *string { return &ev.UserID }, f.NotifyProfileUpdated)
	case notify.KindNewRating:
		return emitAs(ctx, data, userID, func(ev *notify.NewRatingEvent) *string { return &ev.UserID }, f.NotifyNewRating)
	case notify.KindMilestone:
		return emitAs(ctx, data, userID, func(ev *notify.MilestoneEvent) *string { return &ev.UserID }, f.NotifyMilestone)
	default:
		return notify.Record{}, fmt.Errorf("unknown notification kind %q", kind)
	}
}

func emitAs[E any](
	ctx context.Context,
	data []byte,
	userID string,
	owner func(*E) *string,
	fn func(context.Context, E) (notify.Record, error),
) (notify.Record, error) {
	var ev E
	if err := json.Unmarshal(data, &ev); err != nil {
		return notify.Record{}, fmt.Errorf("decode event: %w", err)
	}
	*owner(&ev) = userID
	return fn(ctx, ev)
}
