// Package lesson holds the booking subsystem's view of a scheduled lesson as
// consumed by the reminder engine.
package lesson

import (
	"context"
	"errors"
	"time"
)

// State is the booking state of a lesson.
type State string

const (
	StatePending   State = "pending"
	StateConfirmed State = "confirmed"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
)

// IsValid reports whether s is a known state.
func (s State) IsValid() bool {
	switch s {
	case StatePending, StateConfirmed, StateCompleted, StateCancelled:
		return true
	default:
		return false
	}
}

// Upcoming reports whether a lesson in this state can still start.
func (s State) Upcoming() bool {
	return s == StatePending || s == StateConfirmed
}

// ErrRegistryUnavailable is wrapped by registry errors when lessons could not
// be fetched.
var ErrRegistryUnavailable = errors.New("lesson registry unavailable")

// Lesson is a scheduled tutoring session.
type Lesson struct {
	ID              string    `json:"id"`
	OwnerUserID     string    `json:"ownerUserId"`
	ScheduledAt     time.Time `json:"scheduledAt"`
	DurationMinutes int       `json:"durationMinutes"`
	Topic           string    `json:"topic"`
	State           State     `json:"state"`
}

// Registry lists lessons for the reminder engine. ListUpcoming returns the
// user's lessons that are pending or confirmed and have not started yet.
type Registry interface {
	ListUpcoming(ctx context.Context, userID string) ([]Lesson, error)
}

// RegistryFunc adapts a function to Registry.
type RegistryFunc func(ctx context.Context, userID string) ([]Lesson, error)

func (f RegistryFunc) ListUpcoming(ctx context.Context, userID string) ([]Lesson, error) {
	return f(ctx, userID)
}
