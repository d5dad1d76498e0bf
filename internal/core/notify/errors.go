package notify

import "fmt"

// PersistenceError reports that a mutation was applied in memory but could
// not be written to durable storage. Callers should treat it as a soft
// warning: the returned data is still correct for the running session.
type PersistenceError struct {
	UserID string
	Op     string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist notifications for %s (%s): %v", e.UserID, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// CorruptDataError describes persisted data that could not be decoded. It is
// logged and never returned from read operations; the data is treated as an
// empty list and overwritten on the next successful write.
type CorruptDataError struct {
	UserID string
	Err    error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("corrupt notification data for %s: %v", e.UserID, e.Err)
}

func (e *CorruptDataError) Unwrap() error { return e.Err }
