package jsonfile

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogWatcher_Watch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	watcher, err := NewLogWatcher(dir, zerolog.Nop())
	require.NoError(t, err)
	defer watcher.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes := watcher.Watch(ctx, "u1")

	require.NoError(t, NewNotifyLog(dir).Save(ctx, "u1", []byte(`[]`)))

	select {
	case userID := <-changes:
		assert.Equal(t, "u1", userID)
	case <-ctx.Done():
		t.Fatal("timeout waiting for change")
	}
}

func TestLogWatcher_WatchAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	watcher, err := NewLogWatcher(dir, zerolog.Nop())
	require.NoError(t, err)
	defer watcher.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes := watcher.Watch(ctx, "*")

	log := NewNotifyLog(dir)
	require.NoError(t, log.Save(ctx, "team/alice", []byte(`[]`)))
	require.NoError(t, log.Save(ctx, "bob", []byte(`[]`)))

	received := make(map[string]bool)
	for len(received) < 2 {
		select {
		case userID := <-changes:
			received[userID] = true
		case <-ctx.Done():
			t.Fatalf("timeout, received %v", received)
		}
	}

	assert.True(t, received["team/alice"])
	assert.True(t, received["bob"])
}

func TestLogWatcher_FiltersOtherUsers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	watcher, err := NewLogWatcher(dir, zerolog.Nop())
	require.NoError(t, err)
	defer watcher.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes := watcher.Watch(ctx, "u1")
	require.NoError(t, NewNotifyLog(dir).Save(ctx, "u2", []byte(`[]`)))

	select {
	case userID := <-changes:
		t.Fatalf("unexpected change for %q", userID)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestLogWatcher_Debounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	watcher, err := NewLogWatcher(dir, zerolog.Nop())
	require.NoError(t, err)
	defer watcher.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes := watcher.Watch(ctx, "u1")

	log := NewNotifyLog(dir)
	for range 5 {
		require.NoError(t, log.Save(ctx, "u1", []byte(`[]`)))
	}

	select {
	case <-changes:
	case <-ctx.Done():
		t.Fatal("timeout waiting for change")
	}

	select {
	case <-changes:
		t.Fatal("rapid writes should collapse into one change")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestLogWatcher_CloseClosesChannels(t *testing.T) {
	t.Parallel()

	watcher, err := NewLogWatcher(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	changes := watcher.Watch(context.Background(), "*")
	require.NoError(t, watcher.Close())

	_, ok := <-changes
	assert.False(t, ok)
}

func TestLogWatcher_ContextUnsubscribes(t *testing.T) {
	t.Parallel()

	watcher, err := NewLogWatcher(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	defer watcher.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	changes := watcher.Watch(ctx, "u1")
	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after context cancel")
	}
}
