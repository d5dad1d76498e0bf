package classbell

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/colonyops/classbell/internal/core/eventbus"
	"github.com/colonyops/classbell/internal/core/format"
	"github.com/colonyops/classbell/internal/core/notify"
)

// previewLimit is the number of runes of a chat message shown in a notification.
const previewLimit = 80

// Appender stores drafts as notification records.
type Appender interface {
	Append(ctx context.Context, userID string, d notify.Draft) (notify.Record, error)
}

// Factory builds typed notifications for domain events. Each Draft* method
// is a pure mapping from event data to a draft; the matching Notify* method
// appends that draft to the store.
type Factory struct {
	store Appender
	fmt   format.Formatter
}

var _ eventbus.Notifier = (*Factory)(nil)

// NewFactory returns a factory writing to store and rendering values with f.
func NewFactory(store Appender, f format.Formatter) *Factory {
	if f == nil {
		f = format.Plain{}
	}
	return &Factory{store: store, fmt: f}
}

func (f *Factory) DraftPaymentConfirmed(ev notify.PaymentConfirmedEvent) notify.Draft {
	return draft(notify.KindPaymentConfirmed,
		"Payment confirmed",
		fmt.Sprintf("Your payment of %s for the lesson on %s was confirmed.",
			f.fmt.Money(ev.Amount), f.fmt.Date(ev.ScheduledAt)),
		notify.PaymentConfirmedPayload{
			LessonID:    ev.LessonID,
			Amount:      ev.Amount,
			ScheduledAt: ev.ScheduledAt,
		})
}

func (f *Factory) DraftLessonReserved(ev notify.LessonReservedEvent) notify.Draft {
	return draft(notify.KindLessonReserved,
		"New lesson booked",
		fmt.Sprintf("%s booked a lesson for %s.", nameOr(ev.StudentName, "A student"), f.fmt.Date(ev.ScheduledAt)),
		notify.LessonReservedPayload{
			LessonID:    ev.LessonID,
			StudentName: ev.StudentName,
			ScheduledAt: ev.ScheduledAt,
		})
}

func (f *Factory) DraftLessonCancelled(ev notify.LessonCancelledEvent) notify.Draft {
	msg := "Your lesson was cancelled."
	if reason := strings.TrimSpace(ev.Reason); reason != "" {
		msg = fmt.Sprintf("Your lesson was cancelled. Reason: %s", reason)
	}
	return draft(notify.KindLessonCancelled,
		"Lesson cancelled",
		msg,
		notify.LessonCancelledPayload{LessonID: ev.LessonID, Reason: strings.TrimSpace(ev.Reason)})
}

func (f *Factory) DraftLessonCompleted(ev notify.LessonCompletedEvent) notify.Draft {
	return draft(notify.KindLessonCompleted,
		"Lesson completed",
		"Your lesson is complete. Tell us how it went by leaving a rating.",
		notify.LessonCompletedPayload{LessonID: ev.LessonID})
}

func (f *Factory) DraftLessonStartingSoon(ev notify.LessonStartingSoonEvent) notify.Draft {
	unit := "minutes"
	if ev.MinutesLeft == 1 {
		unit = "minute"
	}
	subject := "Your lesson"
	if ev.Topic != "" {
		subject = fmt.Sprintf("Your lesson on %s", ev.Topic)
	}
	return draft(notify.KindLessonStartingSoon,
		"Lesson starting soon",
		fmt.Sprintf("%s starts in %d %s.", subject, ev.MinutesLeft, unit),
		notify.LessonStartingSoonPayload{LessonID: ev.LessonID, MinutesLeft: ev.MinutesLeft})
}

func (f *Factory) DraftNewMessage(ev notify.NewMessageEvent) notify.Draft {
	sender := nameOr(ev.SenderName, "Someone")
	preview := truncate(strings.TrimSpace(ev.Text), previewLimit)
	return draft(notify.KindNewMessage,
		fmt.Sprintf("New message from %s", sender),
		preview,
		notify.NewMessagePayload{SenderID: ev.SenderID, SenderName: ev.SenderName, Preview: preview})
}

func (f *Factory) DraftProfileUpdated(ev notify.ProfileUpdatedEvent) notify.Draft {
	msg := "Your profile was updated."
	if len(ev.ChangedFields) > 0 {
		msg = fmt.Sprintf("Your profile was updated: %s.", strings.Join(ev.ChangedFields, ", "))
	}
	fields := ev.ChangedFields
	if fields == nil {
		fields = []string{}
	}
	return draft(notify.KindProfileUpdated,
		"Profile updated",
		msg,
		notify.ProfileUpdatedPayload{ChangedFields: fields})
}

func (f *Factory) DraftNewRating(ev notify.NewRatingEvent) notify.Draft {
	rating := min(max(ev.Rating, 1), 5)
	msg := fmt.Sprintf("%s rated your lesson %d/5.", nameOr(ev.RaterName, "A student"), rating)
	comment := strings.TrimSpace(ev.Comment)
	if comment != "" {
		msg = fmt.Sprintf("%s %q", msg, comment)
	}
	return draft(notify.KindNewRating,
		"New rating",
		msg,
		notify.NewRatingPayload{RaterName: ev.RaterName, Rating: rating, Comment: comment})
}

func (f *Factory) DraftMilestone(ev notify.MilestoneEvent) notify.Draft {
	return draft(notify.KindMilestone,
		"Milestone reached",
		fmt.Sprintf("%s (%s)", ev.Description, f.fmt.Number(ev.Value)),
		notify.MilestonePayload{
			MilestoneType: ev.MilestoneType,
			Description:   ev.Description,
			Value:         ev.Value,
		})
}

func (f *Factory) NotifyPaymentConfirmed(ctx context.Context, ev notify.PaymentConfirmedEvent) (notify.Record, error) {
	return f.store.Append(ctx, ev.UserID, f.DraftPaymentConfirmed(ev))
}

func (f *Factory) NotifyLessonReserved(ctx context.Context, ev notify.LessonReservedEvent) (notify.Record, error) {
	return f.store.Append(ctx, ev.UserID, f.DraftLessonReserved(ev))
}

func (f *Factory) NotifyLessonCancelled(ctx context.Context, ev notify.LessonCancelledEvent) (notify.Record, error) {
	return f.store.Append(ctx, ev.UserID, f.DraftLessonCancelled(ev))
}

func (f *Factory) NotifyLessonCompleted(ctx context.Context, ev notify.LessonCompletedEvent) (notify.Record, error) {
	return f.store.Append(ctx, ev.UserID, f.DraftLessonCompleted(ev))
}

func (f *Factory) NotifyLessonStartingSoon(ctx context.Context, ev notify.LessonStartingSoonEvent) (notify.Record, error) {
	return f.store.Append(ctx, ev.UserID, f.DraftLessonStartingSoon(ev))
}

func (f *Factory) NotifyNewMessage(ctx context.Context, ev notify.NewMessageEvent) (notify.Record, error) {
	return f.store.Append(ctx, ev.UserID, f.DraftNewMessage(ev))
}

func (f *Factory) NotifyProfileUpdated(ctx context.Context, ev notify.ProfileUpdatedEvent) (notify.Record, error) {
	return f.store.Append(ctx, ev.UserID, f.DraftProfileUpdated(ev))
}

func (f *Factory) NotifyNewRating(ctx context.Context, ev notify.NewRatingEvent) (notify.Record, error) {
	return f.store.Append(ctx, ev.UserID, f.DraftNewRating(ev))
}

func (f *Factory) NotifyMilestone(ctx context.Context, ev notify.MilestoneEvent) (notify.Record, error) {
	return f.store.Append(ctx, ev.UserID, f.DraftMilestone(ev))
}

func draft(kind notify.Kind, title, message string, payload any) notify.Draft {
	// Payloads are plain structs of strings, numbers and times.
	data, _ := json.Marshal(payload)
	return notify.Draft{Kind: kind, Title: title, Message: message, Payload: data}
}

func nameOr(name, fallback string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return fallback
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}
