package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/classbell/internal/classbell"
	"github.com/colonyops/classbell/internal/core/notify"
	"github.com/colonyops/classbell/internal/core/styles"
	"github.com/colonyops/classbell/pkg/iojson"
)

type WatchCmd struct {
	flags *Flags
	app   *classbell.App

	jsonOutput bool
	timeout    time.Duration
}

// NewWatchCmd creates a new watch command.
func NewWatchCmd(flags *Flags, app *classbell.App) *WatchCmd {
	return &WatchCmd{flags: flags, app: app}
}

// Register adds the watch command to the application.
func (cmd *WatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "watch",
		Usage:     "Start a session and follow the user's notifications",
		UsageText: "classbell watch [--json] [--timeout <duration>]",
		Description: `Logs the user in: starts the lesson reminder poller and prints the
notification list each time it changes, including changes made by other
classbell processes.

Exits on Ctrl-C or after --timeout.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print each snapshot as one JSON line",
				Destination: &cmd.jsonOutput,
			},
			&cli.DurationFlag{
				Name:        "timeout",
				Usage:       "stop after this long (0 runs until interrupted)",
				Destination: &cmd.timeout,
			},
		},
		Action: cmd.run,
	})

	return app
}

type snapshot struct {
	Unread        int             `json:"unread"`
	Notifications []notify.Record `json:"notifications"`
}

func (cmd *WatchCmd) run(ctx context.Context, c *cli.Command) error {
	userID, err := cmd.flags.user()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmd.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.timeout)
		defer cancel()
	}

	updates, unsubscribe := cmd.app.Store.SubscribeLatest(userID)
	defer unsubscribe()

	stopWatch, err := cmd.app.WatchChanges(ctx, userID)
	if err != nil {
		return err
	}
	defer stopWatch()

	session, err := cmd.app.Service.Activate(ctx, userID)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer cmd.app.Service.Deactivate()

	log.Info().Str("user_id", userID).Str("session_id", session.ID).Msg("watching notifications")

	select {
	case <-updates:
	default:
	}

	out := c.Root().Writer
	if err := cmd.print(out, cmd.app.Store.List(ctx, userID)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case records := <-updates:
			if err := cmd.print(out, records); err != nil {
				return err
			}
		}
	}
}

func (cmd *WatchCmd) print(out io.Writer, records []notify.Record) error {
	if cmd.jsonOutput {
		if records == nil {
			records = []notify.Record{}
		}
		return iojson.WriteLine(out, snapshot{Unread: notify.UnreadCount(records), Notifications: records})
	}

	_, _ = fmt.Fprintln(out, styles.DividerStyle.Render(fmt.Sprintf("── %s ──", time.Now().Format(time.TimeOnly))))
	if len(records) > 0 {
		printNotifications(out, records)
	}
	printSummary(out, records)
	return nil
}
