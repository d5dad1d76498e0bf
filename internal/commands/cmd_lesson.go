package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/classbell/internal/classbell"
	"github.com/colonyops/classbell/internal/core/lesson"
	"github.com/colonyops/classbell/pkg/iojson"
)

type LessonCmd struct {
	flags *Flags
	app   *classbell.App

	// add flags
	addID       string
	addAt       string
	addDuration int
	addTopic    string
	addState    string

	// ls flags
	lsJSON bool
}

// NewLessonCmd creates a new lesson command.
func NewLessonCmd(flags *Flags, app *classbell.App) *LessonCmd {
	return &LessonCmd{flags: flags, app: app}
}

// Register adds the lesson command to the application.
func (cmd *LessonCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "lesson",
		Usage: "Manage the lessons the reminder poller watches",
		Description: `Lesson commands edit the local lesson registry.

A running session ("classbell watch" or "classbell serve --user") notifies the
user once per lesson when a pending or confirmed lesson is about to start.`,
		Commands: []*cli.Command{
			cmd.addCmd(),
			cmd.lsCmd(),
			cmd.stateCmd(),
		},
	})

	return app
}

func (cmd *LessonCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Schedule a lesson for the user",
		UsageText: "classbell lesson add --at <time> [--topic <topic>] [--duration <minutes>]",
		Description: `Adds or replaces a lesson owned by the user.

--at accepts RFC 3339, "2006-01-02 15:04" in local time, or an offset from
now such as +9m.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "id",
				Usage:       "lesson id (generated when empty)",
				Destination: &cmd.addID,
			},
			&cli.StringFlag{
				Name:        "at",
				Usage:       "start time",
				Required:    true,
				Destination: &cmd.addAt,
			},
			&cli.IntFlag{
				Name:        "duration",
				Usage:       "length in minutes",
				Value:       60,
				Destination: &cmd.addDuration,
			},
			&cli.StringFlag{
				Name:        "topic",
				Usage:       "what the lesson covers",
				Destination: &cmd.addTopic,
			},
			&cli.StringFlag{
				Name:        "state",
				Usage:       "pending, confirmed, completed or cancelled",
				Value:       string(lesson.StateConfirmed),
				Destination: &cmd.addState,
			},
		},
		Action: cmd.runAdd,
	}
}

func (cmd *LessonCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List the user's lessons",
		UsageText: "classbell lesson ls [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.lsJSON,
			},
		},
		Action: cmd.runLs,
	}
}

func (cmd *LessonCmd) stateCmd() *cli.Command {
	return &cli.Command{
		Name:      "state",
		Usage:     "Change a lesson's state",
		UsageText: "classbell lesson state <id> <pending|confirmed|completed|cancelled>",
		Action:    cmd.runState,
	}
}

func (cmd *LessonCmd) runAdd(ctx context.Context, c *cli.Command) error {
	userID, err := cmd.flags.user()
	if err != nil {
		return err
	}

	at, err := parseLessonTime(cmd.addAt, time.Now())
	if err != nil {
		return err
	}

	state := lesson.State(cmd.addState)
	if !state.IsValid() {
		return fmt.Errorf("unknown lesson state %q", cmd.addState)
	}
	if cmd.addDuration < 1 {
		return fmt.Errorf("duration must be at least 1 minute")
	}

	id := cmd.addID
	if id == "" {
		id = uuid.NewString()
	}

	l := lesson.Lesson{
		ID:              id,
		OwnerUserID:     userID,
		ScheduledAt:     at,
		DurationMinutes: cmd.addDuration,
		Topic:           cmd.addTopic,
		State:           state,
	}
	if err := cmd.app.Lessons.Save(ctx, l); err != nil {
		return fmt.Errorf("save lesson: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, id)
	return nil
}

func (cmd *LessonCmd) runLs(ctx context.Context, c *cli.Command) error {
	userID, err := cmd.flags.user()
	if err != nil {
		return err
	}

	lessons, err := cmd.app.Lessons.List(ctx, userID)
	if err != nil {
		return fmt.Errorf("list lessons: %w", err)
	}

	out := c.Root().Writer
	if cmd.lsJSON {
		for _, l := range lessons {
			if err := iojson.WriteLine(out, l); err != nil {
				return fmt.Errorf("encode lesson: %w", err)
			}
		}
		return nil
	}

	if len(lessons) == 0 {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, "No lessons")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTART\tMINUTES\tSTATE\tTOPIC")
	for _, l := range lessons {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", l.ID, l.ScheduledAt.Local().Format(timeLayout), l.DurationMinutes, l.State, l.Topic)
	}
	return w.Flush()
}

func (cmd *LessonCmd) runState(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("usage: classbell lesson state <id> <state>")
	}

	id := c.Args().Get(0)
	state := lesson.State(c.Args().Get(1))
	if !state.IsValid() {
		return fmt.Errorf("unknown lesson state %q", state)
	}

	if err := cmd.app.Lessons.SetState(ctx, id, state); err != nil {
		return fmt.Errorf("set lesson state: %w", err)
	}
	return nil
}

// parseLessonTime accepts RFC 3339, a local "2006-01-02 15:04" timestamp or
// a "+<duration>" offset from now.
func parseLessonTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "+"); ok {
		d, err := time.ParseDuration(rest)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid offset %q: %w", s, err)
		}
		return now.Add(d), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(timeLayout, s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q (want RFC 3339, %q or +<duration>)", s, timeLayout)
}
