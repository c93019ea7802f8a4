package session

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aaka8h/face-attend/internal/facematch"
	"github.com/aaka8h/face-attend/internal/ledger"
)

// Renderer receives the UI-visible outcomes of the verification loop.
// Suppressed detections never reach the renderer.
type Renderer interface {
	Marked(m *facematch.Match, ev *ledger.Event)
	AlreadyAttended(m *facematch.Match)
	Unknown()
}

// ConsoleRenderer prints verification outcomes as console banners.
type ConsoleRenderer struct {
	Out io.Writer
}

const bannerWidth = 60

func (r *ConsoleRenderer) banner() {
	fmt.Fprintln(r.Out, strings.Repeat("=", bannerWidth))
}

// Marked prints the full confirmation block for a fresh attendance mark.
func (r *ConsoleRenderer) Marked(m *facematch.Match, ev *ledger.Event) {
	r.banner()
	fmt.Fprintln(r.Out, "ATTENDANCE MARKED")
	r.banner()
	fmt.Fprintf(r.Out, "  Name:       %s\n", m.Name)
	fmt.Fprintf(r.Out, "  ID:         %s\n", m.UserID)
	fmt.Fprintf(r.Out, "  Confidence: %.2f%%\n", m.Confidence)
	fmt.Fprintf(r.Out, "  Time:       %s\n", ev.Timestamp.Format(time.Kitchen))
	r.banner()
}

// AlreadyAttended prints a one-line notice for an already-marked user.
func (r *ConsoleRenderer) AlreadyAttended(m *facematch.Match) {
	fmt.Fprintf(r.Out, "%s (ID: %s) - already attended today\n", m.Name, m.UserID)
}

// Unknown prints a notice for a face below the match tolerance.
func (r *ConsoleRenderer) Unknown() {
	fmt.Fprintln(r.Out, "Unknown face detected")
}
