package stores

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/colonyops/classbell/internal/core/notify"
	"github.com/colonyops/classbell/internal/data/db"
)

// NotifyLogStore implements notify.Persister with one row per user in the
// notification_logs table.
type NotifyLogStore struct {
	db  *db.DB
	now func() time.Time
}

var _ notify.Persister = (*NotifyLogStore)(nil)

// NewNotifyLogStore creates a SQLite-backed notification log persister.
func NewNotifyLogStore(db *db.DB) *NotifyLogStore {
	return &NotifyLogStore{db: db, now: time.Now}
}

// Load returns the stored list for userID, or nil when the user has no row.
func (s *NotifyLogStore) Load(ctx context.Context, userID string) ([]byte, error) {
	var records []byte
	err := s.db.Builder().
		Select("records").
		From("notification_logs").
		Where(sq.Eq{"user_id": userID}).
		QueryRowContext(ctx).
		Scan(&records)
	if IsNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load notification log: %w", err)
	}

	return records, nil
}

// Save upserts the user's list.
func (s *NotifyLogStore) Save(ctx context.Context, userID string, data []byte) error {
	_, err := s.db.Builder().
		Insert("notification_logs").
		Columns("user_id", "records", "updated_at").
		Values(userID, data, s.now().UnixNano()).
		Suffix("ON CONFLICT(user_id) DO UPDATE SET records = excluded.records, updated_at = excluded.updated_at").
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("save notification log: %w", err)
	}

	return nil
}

// Users lists the users that have a stored log.
func (s *NotifyLogStore) Users(ctx context.Context) ([]string, error) {
	rows, err := s.db.Builder().
		Select("user_id").
		From("notification_logs").
		OrderBy("user_id").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notification log users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		users = append(users, userID)
	}

	return users, rows.Err()
}
