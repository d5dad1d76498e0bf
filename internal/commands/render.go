package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/colonyops/classbell/internal/core/notify"
	"github.com/colonyops/classbell/internal/core/styles"
)

const timeLayout = "2006-01-02 15:04"

// printNotifications writes records as a table. The styled title is the last
// column so escape codes don't skew tabwriter alignment.
func printNotifications(out io.Writer, records []notify.Record) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tKIND\tCREATED\tTITLE")

	for _, r := range records {
		title := styles.TextStyle.Render("  " + r.Title)
		if !r.Read {
			title = styles.UnreadStyle.Render("● " + r.Title)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\n",
			r.ID,
			styles.KindIcon(r.Kind), r.Kind,
			r.CreatedAt.Local().Format(timeLayout),
			title,
		)
	}
	_ = w.Flush()
}

func printSummary(out io.Writer, records []notify.Record) {
	unread := notify.UnreadCount(records)
	_, _ = fmt.Fprintln(out, styles.MutedStyle.Render(fmt.Sprintf("%d notification(s), %d unread", len(records), unread)))
}

func printDetail(out io.Writer, r notify.Record) {
	_, _ = fmt.Fprintf(out, "%s %s\n", styles.KindIcon(r.Kind), styles.TitleStyle.Render(r.Title))
	_, _ = fmt.Fprintf(out, "  %s\n", r.Message)
	_, _ = fmt.Fprintln(out, styles.MutedStyle.Render(fmt.Sprintf("  %s · %s", r.ID, r.CreatedAt.Local().Format(time.RFC3339))))
}
