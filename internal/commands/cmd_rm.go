package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/classbell/internal/classbell"
)

type RmCmd struct {
	flags *Flags
	app   *classbell.App

	all bool
}

// NewRmCmd creates a new rm command.
func NewRmCmd(flags *Flags, app *classbell.App) *RmCmd {
	return &RmCmd{flags: flags, app: app}
}

// Register adds the rm command to the application.
func (cmd *RmCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "rm",
		Usage:     "Delete notifications",
		UsageText: "classbell rm <id>... | --all",
		Description: `Deletes the given notifications. Unknown ids are ignored.

Use --all to clear every notification of the user.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "all",
				Aliases:     []string{"a"},
				Usage:       "delete all notifications",
				Destination: &cmd.all,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RmCmd) run(ctx context.Context, c *cli.Command) error {
	userID, err := cmd.flags.user()
	if err != nil {
		return err
	}

	if cmd.all {
		return reportMutation(c.Root().ErrWriter, cmd.app.Store.Clear(ctx, userID))
	}

	if c.Args().Len() == 0 {
		return fmt.Errorf("notification id required (or --all)")
	}

	for _, id := range c.Args().Slice() {
		if err := reportMutation(c.Root().ErrWriter, cmd.app.Store.Delete(ctx, userID, id)); err != nil {
			return err
		}
	}
	return nil
}
