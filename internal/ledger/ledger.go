// Package ledger implements the append-only daily attendance log. Each
// local calendar date maps to one text segment file; lines are
// pipe-delimited and past segments are never rewritten.
package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// timeLayout is the timestamp format of a ledger line.
	timeLayout = "2006-01-02 15:04:05"

	// segmentKeyLayout is the calendar-date key of a segment.
	segmentKeyLayout = "2006-01-02"

	segmentPrefix = "attendance_"
	segmentSuffix = ".txt"
)

// SegmentKeyFor returns the segment key for a point in time, using the
// time's own location as the local calendar.
func SegmentKeyFor(t time.Time) string {
	return t.Format(segmentKeyLayout)
}

// Event is one attendance record. Name is a denormalized snapshot of the
// user's name at mark time; Confidence is a percentage.
type Event struct {
	Timestamp  time.Time
	UserID     string
	Name       string
	Confidence float64
}

// FormatLine renders an event in the on-disk line format:
//
//	2006-01-02 15:04:05 | <userId> | <name> | <confidence>%
//
// with the confidence formatted to two decimal places.
func FormatLine(ev Event) string {
	return fmt.Sprintf("%s | %s | %s | %.2f%%",
		ev.Timestamp.Format(timeLayout), ev.UserID, ev.Name, ev.Confidence)
}

// ParseLine parses a full ledger line back into an event. Returns false for
// lines that do not carry all four fields or whose timestamp is malformed.
func ParseLine(line string) (Event, bool) {
	parts := strings.Split(line, "|")
	if len(parts) < 4 {
		return Event{}, false
	}
	ts, err := time.ParseInLocation(timeLayout, strings.TrimSpace(parts[0]), time.Local)
	if err != nil {
		return Event{}, false
	}
	conf, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(parts[3]), "%"), 64)
	if err != nil {
		return Event{}, false
	}
	return Event{
		Timestamp:  ts,
		UserID:     strings.TrimSpace(parts[1]),
		Name:       strings.TrimSpace(parts[2]),
		Confidence: conf,
	}, true
}

// Ledger manages the per-day segment files in one directory. The clock is
// injectable so day rollover can be tested without wall time.
type Ledger struct {
	dir string
	now func() time.Time
}

// New creates a ledger over dir, creating the directory if needed. A nil
// clock defaults to time.Now.
func New(dir string, now func() time.Time) (*Ledger, error) {
	if now == nil {
		now = time.Now
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating attendance directory: %w", err)
	}
	return &Ledger{dir: dir, now: now}, nil
}

// TodayKey returns the segment key for the current clock time.
func (l *Ledger) TodayKey() string {
	return SegmentKeyFor(l.now())
}

// SegmentPath returns the file path backing the given segment key.
func (l *Ledger) SegmentPath(key string) string {
	return filepath.Join(l.dir, segmentPrefix+key+segmentSuffix)
}

// Append writes one event line to the segment for the event's date. The
// first append of a new day creates the new segment file.
func (l *Ledger) Append(ev Event) error {
	path := l.SegmentPath(SegmentKeyFor(ev.Timestamp))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger segment: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, FormatLine(ev)); err != nil {
		return fmt.Errorf("appending ledger line: %w", err)
	}
	return nil
}

// LoadIDs returns the set of user ids with an event in the given segment.
// Lines only need the first two fields, so truncated historical records
// still count. A missing segment yields an empty set.
func (l *Ledger) LoadIDs(key string) (map[string]struct{}, error) {
	ids := make(map[string]struct{})

	f, err := os.Open(l.SegmentPath(key))
	if errors.Is(err, os.ErrNotExist) {
		return ids, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger segment: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), "|")
		if len(parts) < 2 {
			continue
		}
		if id := strings.TrimSpace(parts[1]); id != "" {
			ids[id] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ledger segment: %w", err)
	}
	return ids, nil
}

// LoadTodayIDs returns the set of user ids already marked today.
func (l *Ledger) LoadTodayIDs() (map[string]struct{}, error) {
	return l.LoadIDs(l.TodayKey())
}

// ReadDate returns the ordered events of the given segment. Malformed lines
// are skipped. A missing segment yields an empty slice.
func (l *Ledger) ReadDate(key string) ([]Event, error) {
	f, err := os.Open(l.SegmentPath(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger segment: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if ev, ok := ParseLine(scanner.Text()); ok {
			events = append(events, ev)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ledger segment: %w", err)
	}
	return events, nil
}

// ReadToday returns the ordered events of today's segment.
func (l *Ledger) ReadToday() ([]Event, error) {
	return l.ReadDate(l.TodayKey())
}
