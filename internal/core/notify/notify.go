// Package notify defines the notification record, its closed set of kinds,
// and the persistence contract the engine writes through.
package notify

import (
	"context"
	"encoding/json"
	"time"
)

// MaxNotifications is the default number of records kept per user.
const MaxNotifications = 20

// Kind identifies what a notification is about. The set is closed: new
// events get a new kind rather than reusing an existing one.
type Kind string

const (
	KindPaymentConfirmed   Kind = "payment_confirmed"
	KindLessonReserved     Kind = "lesson_reserved"
	KindLessonCancelled    Kind = "lesson_cancelled"
	KindLessonCompleted    Kind = "lesson_completed"
	KindLessonStartingSoon Kind = "lesson_starting_soon"
	KindNewMessage         Kind = "new_message"
	KindProfileUpdated     Kind = "profile_updated"
	KindNewRating          Kind = "new_rating"
	KindMilestone          Kind = "milestone"
)

// Kinds returns every supported kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindPaymentConfirmed,
		KindLessonReserved,
		KindLessonCancelled,
		KindLessonCompleted,
		KindLessonStartingSoon,
		KindNewMessage,
		KindProfileUpdated,
		KindNewRating,
		KindMilestone,
	}
}

// IsValid reports whether k belongs to the closed set.
func (k Kind) IsValid() bool {
	switch k {
	case KindPaymentConfirmed, KindLessonReserved, KindLessonCancelled,
		KindLessonCompleted, KindLessonStartingSoon, KindNewMessage,
		KindProfileUpdated, KindNewRating, KindMilestone:
		return true
	default:
		return false
	}
}

// Record is a single persisted notification. Only Read changes after creation.
type Record struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Kind      Kind            `json:"kind"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
	Read      bool            `json:"read"`
}

// Draft is everything the factory decides about a record; the store fills
// in ID, CreatedAt and Read.
type Draft struct {
	Kind    Kind
	Title   string
	Message string
	Payload json.RawMessage
}

// DecodePayload unmarshals the kind-specific payload of r into T.
func DecodePayload[T any](r Record) (T, error) {
	var v T
	if len(r.Payload) == 0 {
		return v, nil
	}
	err := json.Unmarshal(r.Payload, &v)
	return v, err
}

// UnreadCount counts records that have not been read.
func UnreadCount(records []Record) int {
	n := 0
	for _, r := range records {
		if !r.Read {
			n++
		}
	}
	return n
}

// Persister stores the encoded notification list of each user.
//
// Load returns nil data and a nil error when nothing has been stored for the
// user. The bytes are opaque to the persister.
type Persister interface {
	Load(ctx context.Context, userID string) ([]byte, error)
	Save(ctx context.Context, userID string, data []byte) error
}
