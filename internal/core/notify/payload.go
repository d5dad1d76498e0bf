package notify

import "time"

// Money is an amount in a currency's major unit, e.g. 45000 COP.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type PaymentConfirmedPayload struct {
	LessonID    string    `json:"lessonId"`
	Amount      Money     `json:"amount"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

type LessonReservedPayload struct {
	LessonID    string    `json:"lessonId"`
	StudentName string    `json:"studentName"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

type LessonCancelledPayload struct {
	LessonID string `json:"lessonId"`
	Reason   string `json:"reason,omitempty"`
}

type LessonCompletedPayload struct {
	LessonID string `json:"lessonId"`
}

type LessonStartingSoonPayload struct {
	LessonID    string `json:"lessonId"`
	MinutesLeft int    `json:"minutesLeft"`
}

type NewMessagePayload struct {
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Preview    string `json:"preview"`
}

type ProfileUpdatedPayload struct {
	ChangedFields []string `json:"changedFields"`
}

type NewRatingPayload struct {
	RaterName string `json:"raterName"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
}

type MilestonePayload struct {
	MilestoneType string  `json:"milestoneType"`
	Description   string  `json:"description"`
	Value         float64 `json:"value"`
}
