// Package policy implements the attendance decision engine: at most one
// attendance mark per user per calendar day, plus a cooldown filter that
// throttles repeat detections of the same stationary face.
package policy

import (
	"fmt"
	"time"

	"github.com/aaka8h/face-attend/internal/ledger"
)

// Decision classifies the outcome of evaluating one detection.
type Decision int

const (
	// Marked means a new attendance event was written.
	Marked Decision = iota

	// AlreadyAttended means the user already has an event today. Not an
	// error; surfaced as informational.
	AlreadyAttended
)

func (d Decision) String() string {
	switch d {
	case Marked:
		return "marked"
	case AlreadyAttended:
		return "already-attended"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Outcome is the result of one Evaluate call. Event is set only for Marked.
type Outcome struct {
	Decision Decision
	Event    *ledger.Event
}

// AttendanceRecorder is the slice of the enrollment store the engine needs:
// updating a user's attendance stats after a successful mark.
type AttendanceRecorder interface {
	RecordAttendance(id string, ts time.Time) error
}

// Engine owns the per-day attendance state. The already-attended set is
// seeded from the ledger at construction and reseeded lazily when the
// engine first observes a new calendar day; prior segments are untouched.
type Engine struct {
	ledger *ledger.Ledger
	store  AttendanceRecorder
	now    func() time.Time

	day      string
	attended map[string]struct{}
}

// NewEngine builds an engine over the given ledger and store. A nil clock
// defaults to time.Now. The clock should be the same one the ledger uses.
func NewEngine(led *ledger.Ledger, store AttendanceRecorder, now func() time.Time) (*Engine, error) {
	if now == nil {
		now = time.Now
	}

	e := &Engine{
		ledger: led,
		store:  store,
		now:    now,
	}
	if err := e.seed(ledger.SegmentKeyFor(now())); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) seed(day string) error {
	ids, err := e.ledger.LoadIDs(day)
	if err != nil {
		return fmt.Errorf("seeding attendance set for %s: %w", day, err)
	}
	e.day = day
	e.attended = ids
	return nil
}

// Evaluate decides what to do with one matched detection. A user already in
// today's set gets AlreadyAttended with no side effects and may ask again
// as often as it likes (idempotent). Otherwise the event is appended to the
// ledger, the set is updated, and the store's attendance stats are bumped.
func (e *Engine) Evaluate(userID, name string, confidence float64) (Outcome, error) {
	now := e.now()

	// Lazy day rollover. Eligibility resets for the new day only.
	if day := ledger.SegmentKeyFor(now); day != e.day {
		if err := e.seed(day); err != nil {
			return Outcome{}, err
		}
	}

	if _, ok := e.attended[userID]; ok {
		return Outcome{Decision: AlreadyAttended}, nil
	}

	ev := ledger.Event{
		Timestamp:  now,
		UserID:     userID,
		Name:       name,
		Confidence: confidence,
	}
	if err := e.ledger.Append(ev); err != nil {
		return Outcome{}, fmt.Errorf("marking attendance for %s: %w", userID, err)
	}
	e.attended[userID] = struct{}{}

	if err := e.store.RecordAttendance(userID, now); err != nil {
		return Outcome{}, fmt.Errorf("updating attendance stats for %s: %w", userID, err)
	}
	return Outcome{Decision: Marked, Event: &ev}, nil
}

// AttendedCount returns how many users have been marked today. When the
// day-rollover reseed fails the previous day's count is kept; the next
// Evaluate call surfaces the error.
func (e *Engine) AttendedCount() int {
	if day := ledger.SegmentKeyFor(e.now()); day != e.day {
		// seed leaves the engine untouched on failure.
		_ = e.seed(day)
	}
	return len(e.attended)
}
