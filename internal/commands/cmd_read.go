package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/classbell/internal/classbell"
	"github.com/colonyops/classbell/internal/core/notify"
	"github.com/colonyops/classbell/internal/core/styles"
)

type ReadCmd struct {
	flags *Flags
	app   *classbell.App

	all bool
}

// NewReadCmd creates a new read command.
func NewReadCmd(flags *Flags, app *classbell.App) *ReadCmd {
	return &ReadCmd{flags: flags, app: app}
}

// Register adds the read command to the application.
func (cmd *ReadCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "read",
		Usage:     "Mark notifications as read",
		UsageText: "classbell read <id>... | --all",
		Description: `Marks the given notifications as read. Unknown ids are ignored.

Use --all to mark every notification of the user as read.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "all",
				Aliases:     []string{"a"},
				Usage:       "mark all notifications as read",
				Destination: &cmd.all,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ReadCmd) run(ctx context.Context, c *cli.Command) error {
	userID, err := cmd.flags.user()
	if err != nil {
		return err
	}

	if cmd.all {
		return reportMutation(c.Root().ErrWriter, cmd.app.Store.MarkAllRead(ctx, userID))
	}

	if c.Args().Len() == 0 {
		return fmt.Errorf("notification id required (or --all)")
	}

	for _, id := range c.Args().Slice() {
		if err := reportMutation(c.Root().ErrWriter, cmd.app.Store.MarkRead(ctx, userID, id)); err != nil {
			return err
		}
	}
	return nil
}

// reportMutation prints a warning for persistence failures, which leave the
// in-memory change in place, and returns every other error.
func reportMutation(errOut io.Writer, err error) error {
	var perr *notify.PersistenceError
	if errors.As(err, &perr) {
		_, _ = fmt.Fprintln(errOut, styles.WarningStyle.Render("warning: change not saved: "+perr.Error()))
		return nil
	}
	return err
}
