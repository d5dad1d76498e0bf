package classbell

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/classbell/internal/core/config"
	"github.com/colonyops/classbell/internal/core/eventbus"
	"github.com/colonyops/classbell/internal/core/format"
	"github.com/colonyops/classbell/internal/core/logging"
	"github.com/colonyops/classbell/internal/core/notify"
	"github.com/colonyops/classbell/internal/data/db"
	"github.com/colonyops/classbell/internal/data/stores"
	"github.com/colonyops/classbell/internal/store/jsonfile"
)

// App is the central entry point for all classbell operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Service *Service
	Store   *Store
	Factory *Factory
	Lessons *stores.LessonStore
	Bus     *eventbus.EventBus
	Config  *config.Config
	DB      *db.DB

	// NotifyLog is set when notifications are kept in per-user JSON files.
	NotifyLog *jsonfile.NotifyLog

	log zerolog.Logger
}

// Open builds an App from cfg. The database is always opened because it
// holds the lesson registry; notifications use the configured backend.
func Open(cfg *config.Config, log zerolog.Logger) (*App, error) {
	var formatter format.Formatter
	locale, err := format.NewLocale(cfg.Format.Options())
	if err != nil {
		log.Warn().Err(err).Msg("invalid format settings, using plain formatting")
		formatter = format.Plain{}
	} else {
		formatter = locale
	}

	database, err := db.Open(cfg.DataDir, db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  time.Duration(cfg.Database.BusyTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	app := &App{
		Config:  cfg,
		DB:      database,
		Lessons: stores.NewLessonStore(database),
		Bus:     eventbus.New(cfg.Bus.Buffer),
		log:     log,
	}

	var persister notify.Persister
	switch cfg.Notifications.Backend {
	case config.BackendSQLite:
		persister = stores.NewNotifyLogStore(database)
	default:
		app.NotifyLog = jsonfile.NewNotifyLog(cfg.NotificationsDir())
		persister = app.NotifyLog
	}

	app.Store = NewStore(persister,
		WithCapacity(cfg.Notifications.Capacity),
		WithLogger(logging.With(log, "store")),
	)
	app.Factory = NewFactory(app.Store, formatter)
	app.Service = NewService(app.Store, app.Factory, app.Lessons, ServiceOptions{
		PollInterval: cfg.Reminders.Interval,
		LeadTime:     cfg.Reminders.LeadTime,
	}, logging.With(log, "service"))

	eventbus.NewNotificationRouter(app.Bus, app.Factory, logging.With(log, "router")).Register()
	eventbus.RegisterDebugLogger(app.Bus, logging.With(log, "eventbus"))

	return app, nil
}

// StartBus dispatches bus events until ctx is done.
func (a *App) StartBus(ctx context.Context) {
	go a.Bus.Start(ctx)
}

// WatchChanges relays writes made to the JSON notification logs by other
// processes into the store. It is a no-op for the sqlite backend or when
// watching is disabled. The returned function stops the watcher.
func (a *App) WatchChanges(ctx context.Context, userID string) (stop func(), err error) {
	if a.NotifyLog == nil || !a.Config.Notifications.WatchEnabled() {
		return func() {}, nil
	}

	watcher, err := jsonfile.NewLogWatcher(a.NotifyLog.Dir(), logging.With(a.log, "watcher"))
	if err != nil {
		return nil, fmt.Errorf("watch notification logs: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	changes := watcher.Watch(ctx, userID)
	go RelayChanges(ctx, changes, a.Store, logging.With(a.log, "relay"))

	return func() {
		cancel()
		if err := watcher.Close(); err != nil {
			a.log.Warn().Err(err).Msg("close watcher")
		}
	}, nil
}

// Close ends the active session and releases the database.
func (a *App) Close() error {
	a.Service.Deactivate()
	if a.DB == nil {
		return nil
	}
	if err := a.DB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
