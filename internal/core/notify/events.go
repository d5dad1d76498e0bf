package notify

import "time"

// Domain events reported by the payment, booking, chat, profile and rating
// subsystems. UserID is always the recipient of the notification.

type PaymentConfirmedEvent struct {
	UserID      string    `json:"userId"`
	LessonID    string    `json:"lessonId"`
	Amount      Money     `json:"amount"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

type LessonReservedEvent struct {
	UserID      string    `json:"userId"`
	LessonID    string    `json:"lessonId"`
	StudentName string    `json:"studentName"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

type LessonCancelledEvent struct {
	UserID   string `json:"userId"`
	LessonID string `json:"lessonId"`
	Reason   string `json:"reason,omitempty"`
}

type LessonCompletedEvent struct {
	UserID   string `json:"userId"`
	LessonID string `json:"lessonId"`
}

type LessonStartingSoonEvent struct {
	UserID      string `json:"userId"`
	LessonID    string `json:"lessonId"`
	Topic       string `json:"topic,omitempty"`
	MinutesLeft int    `json:"minutesLeft"`
}

type NewMessageEvent struct {
	UserID     string `json:"userId"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
}

type ProfileUpdatedEvent struct {
	UserID        string   `json:"userId"`
	ChangedFields []string `json:"changedFields"`
}

type NewRatingEvent struct {
	UserID    string `json:"userId"`
	RaterName string `json:"raterName"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
}

type MilestoneEvent struct {
	UserID        string  `json:"userId"`
	MilestoneType string  `json:"milestoneType"`
	Description   string  `json:"description"`
	Value         float64 `json:"value"`
}

// Addressed is implemented by every domain event; Recipient is the user the
// resulting notification belongs to.
type Addressed interface {
	Recipient() string
}

func (e PaymentConfirmedEvent) Recipient() string   { return e.UserID }
func (e LessonReservedEvent) Recipient() string     { return e.UserID }
func (e LessonCancelledEvent) Recipient() string    { return e.UserID }
func (e LessonCompletedEvent) Recipient() string    { return e.UserID }
func (e LessonStartingSoonEvent) Recipient() string { return e.UserID }
func (e NewMessageEvent) Recipient() string         { return e.UserID }
func (e ProfileUpdatedEvent) Recipient() string     { return e.UserID }
func (e NewRatingEvent) Recipient() string          { return e.UserID }
func (e MilestoneEvent) Recipient() string          { return e.UserID }
