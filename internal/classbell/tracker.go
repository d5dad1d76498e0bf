package classbell

import "github.com/colonyops/classbell/pkg/kv"

// Tracker remembers which lessons already produced a "starting soon"
// notification during one session. It lives in memory only.
type Tracker struct {
	seen *kv.Store[string, struct{}]
}

func NewTracker() *Tracker {
	return &Tracker{seen: kv.New[string, struct{}]()}
}

// Seen reports whether lessonID was already notified.
func (t *Tracker) Seen(lessonID string) bool {
	return t.seen.Has(lessonID)
}

// Mark records lessonID and reports whether it was newly added.
func (t *Tracker) Mark(lessonID string) bool {
	return t.seen.SetIfAbsent(lessonID, struct{}{})
}

// Reset forgets every lesson.
func (t *Tracker) Reset() {
	t.seen.Clear()
}

// IDs returns the tracked lesson ids in sorted order.
func (t *Tracker) IDs() []string {
	return t.seen.Keys()
}
