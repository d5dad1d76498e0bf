package classbell

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/classbell/internal/core/notify"
	"github.com/colonyops/classbell/internal/store/jsonfile"
)

func TestRelayChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := newMemPersister()
	s := NewStore(p)
	writer := NewStore(p)

	rec, err := s.Append(ctx, "u1", testDraft(1))
	require.NoError(t, err)

	got := make(chan []notify.Record, 4)
	defer s.Subscribe("u1", func(list []notify.Record) { got <- list })()

	changes := make(chan string)
	done := make(chan struct{})
	go func() {
		RelayChanges(ctx, changes, s, zerolog.Nop())
		close(done)
	}()

	require.NoError(t, writer.MarkRead(ctx, "u1", rec.ID))
	changes <- "u1"

	select {
	case list := <-got:
		require.Len(t, list, 1)
		assert.True(t, list[0].Read)
	case <-time.After(time.Second):
		t.Fatal("reload did not reach subscriber")
	}

	close(changes)
	<-done
}

func TestRelayChanges_AcrossProcesses(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dir := filepath.Join(t.TempDir(), "notifications")
	watcher, err := jsonfile.NewLogWatcher(dir, zerolog.Nop())
	require.NoError(t, err)
	defer watcher.Close() //nolint:errcheck

	reader := NewStore(jsonfile.NewNotifyLog(dir))
	writer := NewStore(jsonfile.NewNotifyLog(dir))
	assert.Empty(t, reader.List(ctx, "u1"))

	got := make(chan []notify.Record, 4)
	defer reader.Subscribe("u1", func(list []notify.Record) { got <- list })()

	go RelayChanges(ctx, watcher.Watch(ctx, "u1"), reader, zerolog.Nop())

	rec, err := writer.Append(ctx, "u1", testDraft(1))
	require.NoError(t, err)

	select {
	case list := <-got:
		require.Len(t, list, 1)
		assert.Equal(t, rec.ID, list[0].ID)
	case <-ctx.Done():
		t.Fatal("change from other store not relayed")
	}
}
