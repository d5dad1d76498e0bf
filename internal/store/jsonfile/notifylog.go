package jsonfile

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/colonyops/classbell/internal/core/notify"
)

const fileExt = ".json"

// NotifyLog implements notify.Persister with one JSON file per user inside a
// directory. Files are replaced atomically so readers in other processes
// never see a partial write.
type NotifyLog struct {
	dir string
	mu  sync.Mutex
}

var _ notify.Persister = (*NotifyLog)(nil)

// NewNotifyLog creates a JSON file persister rooted at dir.
func NewNotifyLog(dir string) *NotifyLog {
	return &NotifyLog{dir: dir}
}

// Dir returns the directory holding the per-user files.
func (s *NotifyLog) Dir() string {
	return s.dir
}

// Load returns the raw list for userID, or nil when the user has no file.
func (s *NotifyLog) Load(ctx context.Context, userID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(userID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Save replaces the user's file with data.
func (s *NotifyLog) Save(ctx context.Context, userID string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	path := s.path(userID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// Users lists the users that have a file in the directory.
func (s *NotifyLog) Users() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var users []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if userID, ok := userFromFile(e.Name()); ok {
			users = append(users, userID)
		}
	}
	return users, nil
}

func (s *NotifyLog) path(userID string) string {
	return filepath.Join(s.dir, fileForUser(userID))
}

// fileForUser escapes the user id so any id maps to a single file name.
func fileForUser(userID string) string {
	return url.PathEscape(userID) + fileExt
}

func userFromFile(name string) (string, bool) {
	if !strings.HasSuffix(name, fileExt) || strings.HasPrefix(name, ".") {
		return "", false
	}
	userID, err := url.PathUnescape(strings.TrimSuffix(name, fileExt))
	if err != nil || userID == "" {
		return "", false
	}
	return userID, true
}
