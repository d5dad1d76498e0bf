package stores

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/colonyops/classbell/internal/core/lesson"
	"github.com/colonyops/classbell/internal/data/db"
)

// ErrLessonNotFound is returned when a lesson id has no row.
var ErrLessonNotFound = errors.New("lesson not found")

var lessonColumns = []string{"id", "owner_user_id", "scheduled_at", "duration_minutes", "topic", "state"}

// LessonStore implements lesson.Registry over the lessons table.
type LessonStore struct {
	db  *db.DB
	now func() time.Time
}

var _ lesson.Registry = (*LessonStore)(nil)

// NewLessonStore creates a SQLite-backed lesson registry.
func NewLessonStore(db *db.DB) *LessonStore {
	return &LessonStore{db: db, now: time.Now}
}

// ListUpcoming returns the user's pending or confirmed lessons that have not
// started yet, soonest first. Errors wrap lesson.ErrRegistryUnavailable.
func (s *LessonStore) ListUpcoming(ctx context.Context, userID string) ([]lesson.Lesson, error) {
	return s.list(ctx, sq.And{
		sq.Eq{"owner_user_id": userID},
		sq.Eq{"state": []string{string(lesson.StatePending), string(lesson.StateConfirmed)}},
		sq.GtOrEq{"scheduled_at": s.now().UnixNano()},
	})
}

// List returns all of the user's lessons, soonest first.
func (s *LessonStore) List(ctx context.Context, userID string) ([]lesson.Lesson, error) {
	return s.list(ctx, sq.Eq{"owner_user_id": userID})
}

// Get returns one lesson by id.
func (s *LessonStore) Get(ctx context.Context, id string) (lesson.Lesson, error) {
	lessons, err := s.list(ctx, sq.Eq{"id": id})
	if err != nil {
		return lesson.Lesson{}, err
	}
	if len(lessons) == 0 {
		return lesson.Lesson{}, ErrLessonNotFound
	}
	return lessons[0], nil
}

// Save creates or replaces a lesson.
func (s *LessonStore) Save(ctx context.Context, l lesson.Lesson) error {
	if !l.State.IsValid() {
		return fmt.Errorf("save lesson %s: invalid state %q", l.ID, l.State)
	}

	now := s.now().UnixNano()
	_, err := s.db.Builder().
		Insert("lessons").
		Columns(slices.Concat(lessonColumns, []string{"created_at", "updated_at"})...).
		Values(l.ID, l.OwnerUserID, l.ScheduledAt.UnixNano(), l.DurationMinutes, l.Topic, string(l.State), now, now).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			owner_user_id = excluded.owner_user_id,
			scheduled_at = excluded.scheduled_at,
			duration_minutes = excluded.duration_minutes,
			topic = excluded.topic,
			state = excluded.state,
			updated_at = excluded.updated_at`).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("save lesson: %w", err)
	}

	return nil
}

// SetState moves a lesson to state. Returns ErrLessonNotFound for unknown ids.
func (s *LessonStore) SetState(ctx context.Context, id string, state lesson.State) error {
	if !state.IsValid() {
		return fmt.Errorf("set lesson state: invalid state %q", state)
	}

	res, err := s.db.Builder().
		Update("lessons").
		Set("state", string(state)).
		Set("updated_at", s.now().UnixNano()).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("set lesson state: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set lesson state: %w", err)
	}
	if n == 0 {
		return ErrLessonNotFound
	}

	return nil
}

func (s *LessonStore) list(ctx context.Context, where sq.Sqlizer) ([]lesson.Lesson, error) {
	rows, err := s.db.Builder().
		Select(lessonColumns...).
		From("lessons").
		Where(where).
		OrderBy("scheduled_at", "id").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", lesson.ErrRegistryUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	var lessons []lesson.Lesson
	for rows.Next() {
		var (
			l           lesson.Lesson
			scheduledAt int64
			state       string
		)
		if err := rows.Scan(&l.ID, &l.OwnerUserID, &scheduledAt, &l.DurationMinutes, &l.Topic, &state); err != nil {
			return nil, fmt.Errorf("%w: scan lesson: %w", lesson.ErrRegistryUnavailable, err)
		}
		l.ScheduledAt = time.Unix(0, scheduledAt).UTC()
		l.State = lesson.State(state)
		lessons = append(lessons, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", lesson.ErrRegistryUnavailable, err)
	}

	return lessons, nil
}
