package classbell

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/colonyops/classbell/internal/core/notify"
)

// memPersister is an in-memory notify.Persister with injectable failures.
type memPersister struct {
	mu      sync.Mutex
	data    map[string][]byte
	saveErr error
	loadErr error
	saves   int
}

func newMemPersister() *memPersister {
	return &memPersister{data: make(map[string][]byte)}
}

func (m *memPersister) Load(_ context.Context, userID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data[userID], nil
}

func (m *memPersister) Save(_ context.Context, userID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[userID] = data
	return nil
}

func (m *memPersister) set(userID string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[userID] = data
}

func (m *memPersister) get(userID string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[userID]
}

var errDiskFull = errors.New("disk full")

// fakeClock returns a clock that advances by step on every call.
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newFakeClock(start time.Time, step time.Duration) *fakeClock {
	return &fakeClock{now: start, step: step}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testDraft(i int) notify.Draft {
	return notify.Draft{
		Kind:    notify.KindMilestone,
		Title:   fmt.Sprintf("title %d", i),
		Message: fmt.Sprintf("message %d", i),
		Payload: []byte(`{}`),
	}
}

var epoch = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
