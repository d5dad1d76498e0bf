package classbell

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/classbell/internal/core/config"
	"github.com/colonyops/classbell/internal/core/lesson"
	"github.com/colonyops/classbell/internal/core/notify"
	"github.com/colonyops/classbell/internal/store/jsonfile"
)

func openTestApp(t *testing.T, backend string) *App {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Notifications.Backend = backend

	app, err := Open(&cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestOpen_Backends(t *testing.T) {
	ctx := context.Background()

	for _, backend := range []string{config.BackendJSONFile, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			app := openTestApp(t, backend)

			_, err := app.Factory.NotifyLessonCompleted(ctx, notify.LessonCompletedEvent{UserID: "u1", LessonID: "l1"})
			require.NoError(t, err)

			if backend == config.BackendJSONFile {
				require.NotNil(t, app.NotifyLog)
				data, err := app.NotifyLog.Load(ctx, "u1")
				require.NoError(t, err)
				assert.NotEmpty(t, data)
			} else {
				assert.Nil(t, app.NotifyLog)
			}
		})
	}
}

func TestApp_BusRoutesToStore(t *testing.T) {
	app := openTestApp(t, config.BackendJSONFile)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	app.StartBus(ctx)

	app.Bus.PublishLessonReserved(notify.LessonReservedEvent{UserID: "tutor", LessonID: "l1", StudentName: "Ana"})

	assert.Eventually(t, func() bool {
		return len(app.Store.List(ctx, "tutor")) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestApp_SessionUsesLessonStore(t *testing.T) {
	app := openTestApp(t, config.BackendSQLite)
	ctx := context.Background()

	require.NoError(t, app.Lessons.Save(ctx, lesson.Lesson{
		ID:              "l1",
		OwnerUserID:     "u1",
		ScheduledAt:     time.Now().Add(5 * time.Minute),
		DurationMinutes: 60,
		State:           lesson.StateConfirmed,
	}))

	_, err := app.Service.Activate(ctx, "u1")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		list := app.Store.List(ctx, "u1")
		return len(list) == 1 && list[0].Kind == notify.KindLessonStartingSoon
	}, 2*time.Second, 10*time.Millisecond)
}

func TestApp_WatchChanges(t *testing.T) {
	app := openTestApp(t, config.BackendJSONFile)
	ctx := context.Background()

	stop, err := app.WatchChanges(ctx, "u1")
	require.NoError(t, err)
	t.Cleanup(stop)

	require.Empty(t, app.Store.List(ctx, "u1"))

	other := NewStore(jsonfile.NewNotifyLog(filepath.Join(app.Config.DataDir, "notifications")))
	_, err = other.Append(ctx, "u1", testDraft(1))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(app.Store.List(ctx, "u1")) == 1
	}, 2*time.Second, 20*time.Millisecond)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestApp_WatchChangesLogsRelay(t *testing.T) {
	var out syncBuffer
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	app, err := Open(&cfg, zerolog.New(&out).Level(zerolog.DebugLevel))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	ctx := context.Background()
	stop, err := app.WatchChanges(ctx, "u1")
	require.NoError(t, err)
	t.Cleanup(stop)

	other := NewStore(jsonfile.NewNotifyLog(app.Config.NotificationsDir()))
	_, err = other.Append(ctx, "u1", testDraft(1))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		for line := range strings.SplitSeq(out.String(), "\n") {
			if strings.Contains(line, `"cmp":"relay"`) && strings.Contains(line, "notification log reloaded") {
				return true
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)
}

func TestApp_WatchChangesSQLiteIsNoop(t *testing.T) {
	app := openTestApp(t, config.BackendSQLite)

	stop, err := app.WatchChanges(context.Background(), "u1")
	require.NoError(t, err)
	stop()
}
