package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/classbell/internal/api"
	"github.com/colonyops/classbell/internal/classbell"
	"github.com/colonyops/classbell/internal/core/logging"
)

type ServeCmd struct {
	flags *Flags
	app   *classbell.App

	addr string
}

// NewServeCmd creates a new serve command.
func NewServeCmd(flags *Flags, app *classbell.App) *ServeCmd {
	return &ServeCmd{flags: flags, app: app}
}

// Register adds the serve command to the application.
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Serve the notification API",
		UsageText: "classbell serve [--addr <host:port>]",
		Description: `Serves the HTTP and WebSocket notification API and routes domain events
posted to /api/v1/events/{event} into notifications.

With --user, a session is started for that user so lesson reminders are
generated while the server runs.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (defaults to server.addr from config)",
				Sources:     cli.EnvVars("CLASSBELL_ADDR"),
				Destination: &cmd.addr,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, c *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cmd.addr
	if addr == "" {
		addr = cmd.flags.Config.Server.Addr
	}

	cmd.app.StartBus(ctx)

	stopWatch, err := cmd.app.WatchChanges(ctx, "*")
	if err != nil {
		return err
	}
	defer stopWatch()

	if cmd.flags.User != "" {
		if _, err := cmd.app.Service.Activate(ctx, cmd.flags.User); err != nil {
			return fmt.Errorf("start session: %w", err)
		}
		defer cmd.app.Service.Deactivate()
	}

	srv := api.New(api.Deps{
		Store:          cmd.app.Store,
		Bus:            cmd.app.Bus,
		AllowedOrigins: cmd.flags.Config.Server.AllowedOrigins,
		Version:        c.Root().Version,
		Log:            logging.Component("api"),
	})

	log.Info().Str("addr", addr).Msg("serving notification api")
	_, _ = fmt.Fprintf(c.Root().ErrWriter, "listening on %s\n", addr)

	return srv.ListenAndServe(ctx, addr)
}
