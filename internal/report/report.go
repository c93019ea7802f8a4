// Package report renders attendance reports from ledger events.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aaka8h/face-attend/internal/ledger"
)

const ruleWidth = 60

// Render writes the tabular attendance report for one day: a header with
// the segment date, one row per event (time, id, name, confidence), and the
// present/registered ratio. No cross-day aggregation.
func Render(w io.Writer, dateKey string, events []ledger.Event, registered int) {
	rule := strings.Repeat("=", ruleWidth)

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "ATTENDANCE REPORT - %s\n", dateKey)
	fmt.Fprintln(w, rule)

	if len(events) == 0 {
		fmt.Fprintln(w, "No attendance marked.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tID\tNAME\tCONFIDENCE")
		for _, ev := range events {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f%%\n",
				ev.Timestamp.Format("15:04:05"), ev.UserID, ev.Name, ev.Confidence)
		}
		tw.Flush()
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total present: %d/%d\n", len(events), registered)
	fmt.Fprintln(w, rule)
}

// RenderUsers writes the registered-users listing with per-user stats.
func RenderUsers(w io.Writer, users []UserRow) {
	rule := strings.Repeat("=", ruleWidth)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "REGISTERED USERS")
	fmt.Fprintln(w, rule)

	if len(users) == 0 {
		fmt.Fprintln(w, "No users registered.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tDEPARTMENT\tREGISTERED\tLAST ATTENDANCE\tTOTAL")
		for _, u := range users {
			last := "never"
			if u.LastAttendance != "" {
				last = u.LastAttendance
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
				u.ID, u.Name, u.Department, u.RegisteredAt, last, u.TotalAttendance)
		}
		tw.Flush()
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total registered: %d\n", len(users))
	fmt.Fprintln(w, rule)
}

// UserRow is one pre-formatted row of the users listing.
type UserRow struct {
	ID              string
	Name            string
	Department      string
	RegisteredAt    string
	LastAttendance  string
	TotalAttendance int
}
