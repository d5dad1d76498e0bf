// Package eventbus provides a typed publish/subscribe event bus that carries
// domain events from the booking, payment, chat and rating subsystems into
// the notification engine.
package eventbus

import (
	"encoding/json"
	"fmt"

	"github.com/colonyops/classbell/internal/core/notify"
)

// Keep list sorted A-Z
const (
	EventLessonCancelled  Event = "lesson.cancelled"
	EventLessonCompleted  Event = "lesson.completed"
	EventLessonReserved   Event = "lesson.reserved"
	EventMessageReceived  Event = "message.received"
	EventMilestoneReached Event = "milestone.reached"
	EventPaymentConfirmed Event = "payment.confirmed"
	EventProfileUpdated   Event = "profile.updated"
	EventRatingReceived   Event = "rating.received"
)

// Events returns every event name with a zero payload of its type.
func Events() map[Event]any {
	return map[Event]any{
		EventLessonCancelled:  notify.LessonCancelledEvent{},
		EventLessonCompleted:  notify.LessonCompletedEvent{},
		EventLessonReserved:   notify.LessonReservedEvent{},
		EventMessageReceived:  notify.NewMessageEvent{},
		EventMilestoneReached: notify.MilestoneEvent{},
		EventPaymentConfirmed: notify.PaymentConfirmedEvent{},
		EventProfileUpdated:   notify.ProfileUpdatedEvent{},
		EventRatingReceived:   notify.NewRatingEvent{},
	}
}

// PublishJSON decodes data into the payload type registered for event and
// publishes it. Used by transports that receive events as JSON.
func (bus *EventBus) PublishJSON(event Event, data []byte) error {
	decode := func(dst any) error {
		if err := json.Unmarshal(data, dst); err != nil {
			return fmt.Errorf("decode %s payload: %w", event, err)
		}
		return nil
	}

	switch event {
	case EventLessonCancelled:
		var p notify.LessonCancelledEvent
		if err := decode(&p); err != nil {
			return err
		}
		bus.PublishLessonCancelled(p)
	case EventLessonCompleted:
		var p notify.LessonCompletedEvent
		if err := decode(&p); err != nil {
			return err
		}
		bus.PublishLessonCompleted(p)
	case EventLessonReserved:
		var p notify.LessonReservedEvent
		if err := decode(&p); err != nil {
			return err
		}
		bus.PublishLessonReserved(p)
	case EventMessageReceived:
		var p notify.NewMessageEvent
		if err := decode(&p); err != nil {
			return err
		}
		bus.PublishMessageReceived(p)
	case EventMilestoneReached:
		var p notify.MilestoneEvent
		if err := decode(&p); err != nil {
			return err
		}
		bus.PublishMilestoneReached(p)
	case EventPaymentConfirmed:
		var p notify.PaymentConfirmedEvent
		if err := decode(&p); err != nil {
			return err
		}
		bus.PublishPaymentConfirmed(p)
	case EventProfileUpdated:
		var p notify.ProfileUpdatedEvent
		if err := decode(&p); err != nil {
			return err
		}
		bus.PublishProfileUpdated(p)
	case EventRatingReceived:
		var p notify.NewRatingEvent
		if err := decode(&p); err != nil {
			return err
		}
		bus.PublishRatingReceived(p)
	default:
		return fmt.Errorf("unknown event %q", event)
	}

	return nil
}

func (bus *EventBus) PublishLessonCancelled(p notify.LessonCancelledEvent) {
	bus.send(EventLessonCancelled, p)
}

func (bus *EventBus) SubscribeLessonCancelled(fn func(notify.LessonCancelledEvent)) {
	bus.subscribe(EventLessonCancelled, func(v any) { fn(v.(notify.LessonCancelledEvent)) })
}

func (bus *EventBus) PublishLessonCompleted(p notify.LessonCompletedEvent) {
	bus.send(EventLessonCompleted, p)
}

func (bus *EventBus) SubscribeLessonCompleted(fn func(notify.LessonCompletedEvent)) {
	bus.subscribe(EventLessonCompleted, func(v any) { fn(v.(notify.LessonCompletedEvent)) })
}

func (bus *EventBus) PublishLessonReserved(p notify.LessonReservedEvent) {
	bus.send(EventLessonReserved, p)
}

func (bus *EventBus) SubscribeLessonReserved(fn func(notify.LessonReservedEvent)) {
	bus.subscribe(EventLessonReserved, func(v any) { fn(v.(notify.LessonReservedEvent)) })
}

func (bus *EventBus) PublishMessageReceived(p notify.NewMessageEvent) {
	bus.send(EventMessageReceived, p)
}

func (bus *EventBus) SubscribeMessageReceived(fn func(notify.NewMessageEvent)) {
	bus.subscribe(EventMessageReceived, func(v any) { fn(v.(notify.NewMessageEvent)) })
}

func (bus *EventBus) PublishMilestoneReached(p notify.MilestoneEvent) {
	bus.send(EventMilestoneReached, p)
}

func (bus *EventBus) SubscribeMilestoneReached(fn func(notify.MilestoneEvent)) {
	bus.subscribe(EventMilestoneReached, func(v any) { fn(v.(notify.MilestoneEvent)) })
}

func (bus *EventBus) PublishPaymentConfirmed(p notify.PaymentConfirmedEvent) {
	bus.send(EventPaymentConfirmed, p)
}

func (bus *EventBus) SubscribePaymentConfirmed(fn func(notify.PaymentConfirmedEvent)) {
	bus.subscribe(EventPaymentConfirmed, func(v any) { fn(v.(notify.PaymentConfirmedEvent)) })
}

func (bus *EventBus) PublishProfileUpdated(p notify.ProfileUpdatedEvent) {
	bus.send(EventProfileUpdated, p)
}

func (bus *EventBus) SubscribeProfileUpdated(fn func(notify.ProfileUpdatedEvent)) {
	bus.subscribe(EventProfileUpdated, func(v any) { fn(v.(notify.ProfileUpdatedEvent)) })
}

func (bus *EventBus) PublishRatingReceived(p notify.NewRatingEvent) {
	bus.send(EventRatingReceived, p)
}

func (bus *EventBus) SubscribeRatingReceived(fn func(notify.NewRatingEvent)) {
	bus.subscribe(EventRatingReceived, func(v any) { fn(v.(notify.NewRatingEvent)) })
}
