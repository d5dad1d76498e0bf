package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/classbell/internal/classbell"
	"github.com/colonyops/classbell/internal/core/notify"
	"github.com/colonyops/classbell/pkg/iojson"
)

type EmitCmd struct {
	flags *Flags
	app   *classbell.App

	reader     iojson.FileReader[json.RawMessage]
	jsonOutput bool
}

// NewEmitCmd creates a new emit command.
func NewEmitCmd(flags *Flags, app *classbell.App) *EmitCmd {
	return &EmitCmd{
		flags:  flags,
		app:    app,
		reader: iojson.FileReader[json.RawMessage]{Optional: true},
	}
}

// Register adds the emit command to the application.
func (cmd *EmitCmd) Register(app *cli.Command) *cli.Command {
	kinds := make([]string, 0, len(notify.Kinds()))
	for _, k := range notify.Kinds() {
		kinds = append(kinds, string(k))
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:      "emit",
		Usage:     "Create a notification from an event",
		UsageText: "classbell emit <kind> [--data <json> | --file <path>]",
		Description: fmt.Sprintf(`Builds the notification for the given kind from a JSON event and appends it
to the user's list. The event is read from --data, --file or stdin; a
missing event is treated as {}.

Kinds: %s

Examples:
  classbell -u tutor-1 emit lesson_reserved -d '{"studentName":"Ana","lessonId":"l1"}'
  echo '{"raterName":"Ana","rating":5}' | classbell -u tutor-1 emit new_rating`, strings.Join(kinds, ", ")),
		Flags: append(cmd.reader.Flags(),
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the created notification as JSON",
				Destination: &cmd.jsonOutput,
			},
		),
		Action: cmd.run,
	})

	return app
}

func (cmd *EmitCmd) run(ctx context.Context, c *cli.Command) error {
	userID, err := cmd.flags.user()
	if err != nil {
		return err
	}

	if c.Args().Len() != 1 {
		return fmt.Errorf("exactly one notification kind required")
	}
	kind := notify.Kind(c.Args().First())
	if !kind.IsValid() {
		return fmt.Errorf("unknown notification kind %q", kind)
	}

	data, err := cmd.reader.Read()
	if err != nil {
		return err
	}

	rec, err := cmd.app.Factory.NotifyJSON(ctx, kind, userID, data)
	if err := reportMutation(c.Root().ErrWriter, err); err != nil {
		return err
	}

	if cmd.jsonOutput {
		return iojson.WriteLine(c.Root().Writer, rec)
	}
	printDetail(c.Root().Writer, rec)
	return nil
}
