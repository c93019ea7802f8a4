package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/aaka8h/face-attend/internal/ledger"
)

func TestRender(t *testing.T) {
	events := []ledger.Event{
		{
			Timestamp:  time.Date(2026, 3, 14, 9, 15, 30, 0, time.Local),
			UserID:     "emp001",
			Name:       "Jan Novák",
			Confidence: 94.21,
		},
		{
			Timestamp:  time.Date(2026, 3, 14, 9, 47, 2, 0, time.Local),
			UserID:     "emp002",
			Name:       "Alice Smith",
			Confidence: 88.5,
		},
	}

	var buf bytes.Buffer
	Render(&buf, "2026-03-14", events, 5)
	got := buf.String()

	for _, want := range []string{
		"ATTENDANCE REPORT - 2026-03-14",
		"09:15:30",
		"emp001",
		"Jan Novák",
		"94.21%",
		"09:47:02",
		"Total present: 2/5",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}
}

func TestRender_Empty(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, "2026-03-14", nil, 3)
	got := buf.String()

	if !strings.Contains(got, "No attendance marked.") {
		t.Errorf("expected empty-day notice:\n%s", got)
	}
	if !strings.Contains(got, "Total present: 0/3") {
		t.Errorf("expected zero ratio:\n%s", got)
	}
}

func TestRenderUsers(t *testing.T) {
	users := []UserRow{
		{
			ID:              "emp001",
			Name:            "Jan Novák",
			Department:      "Engineering",
			RegisteredAt:    "2026-01-10",
			LastAttendance:  "2026-03-13 09:02",
			TotalAttendance: 41,
		},
		{
			ID:           "emp002",
			Name:         "Alice Smith",
			Department:   "Sales",
			RegisteredAt: "2026-03-01",
		},
	}

	var buf bytes.Buffer
	RenderUsers(&buf, users)
	got := buf.String()

	for _, want := range []string{
		"REGISTERED USERS",
		"emp001",
		"Engineering",
		"2026-03-13 09:02",
		"Total registered: 2",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("listing missing %q:\n%s", want, got)
		}
	}
	// A user with no attendance yet shows "never".
	if !strings.Contains(got, "never") {
		t.Errorf("expected 'never' for a user without attendance:\n%s", got)
	}
}

func TestRenderUsers_Empty(t *testing.T) {
	var buf bytes.Buffer
	RenderUsers(&buf, nil)
	if !strings.Contains(buf.String(), "No users registered.") {
		t.Errorf("expected empty listing notice:\n%s", buf.String())
	}
}
