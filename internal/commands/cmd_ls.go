package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/classbell/internal/classbell"
	"github.com/colonyops/classbell/internal/core/notify"
	"github.com/colonyops/classbell/pkg/iojson"
)

type LsCmd struct {
	flags *Flags
	app   *classbell.App

	// flags
	jsonOutput bool
	unreadOnly bool
	verbose    bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *classbell.App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List a user's notifications",
		UsageText: "classbell ls [--json] [--unread] [--verbose]",
		Description: `Displays the user's notifications, most recent first.

Use --json for one JSON object per line.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "unread",
				Usage:       "only show unread notifications",
				Destination: &cmd.unreadOnly,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Aliases:     []string{"v"},
				Usage:       "show full messages",
				Destination: &cmd.verbose,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	userID, err := cmd.flags.user()
	if err != nil {
		return err
	}

	records := cmd.app.Store.List(ctx, userID)
	if cmd.unreadOnly {
		unread := make([]notify.Record, 0, len(records))
		for _, r := range records {
			if !r.Read {
				unread = append(unread, r)
			}
		}
		records = unread
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, r := range records {
			if err := iojson.WriteLine(out, r); err != nil {
				return fmt.Errorf("encode notification: %w", err)
			}
		}
		return nil
	}

	if len(records) == 0 {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, "No notifications")
		return nil
	}

	if cmd.verbose {
		for _, r := range records {
			printDetail(out, r)
		}
	} else {
		printNotifications(out, records)
	}
	printSummary(out, cmd.app.Store.List(ctx, userID))
	return nil
}
