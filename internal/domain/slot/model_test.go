package slot

import (
	"testing"
	"time"
)

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd int
		want                       bool
	}{
		{name: "disjoint before", aStart: 600, aEnd: 660, bStart: 660, bEnd: 720, want: false},
		{name: "disjoint after", aStart: 720, aEnd: 780, bStart: 600, bEnd: 720, want: false},
		{name: "partial overlap", aStart: 1080, aEnd: 1200, bStart: 1140, bEnd: 1260, want: true},
		{name: "contained", aStart: 600, aEnd: 720, bStart: 630, bEnd: 660, want: true},
		{name: "identical", aStart: 600, aEnd: 720, bStart: 600, bEnd: 720, want: true},
		{name: "touching boundaries", aStart: 600, aEnd: 720, bStart: 720, bEnd: 840, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Fatalf("Overlaps(%d,%d,%d,%d) = %v, want %v", tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.want)
			}
			// Symmetry.
			if got := Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd); got != tt.want {
				t.Fatalf("Overlaps is not symmetric for %s", tt.name)
			}
		})
	}
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusOpen, StatusPending, true},
		{StatusOpen, StatusConfirmed, true},
		{StatusOpen, StatusCancelled, true},
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusOpen, false},
		{StatusConfirmed, StatusCancelled, false},
		{StatusConfirmed, StatusOpen, false},
		{StatusCancelled, StatusOpen, false},
		{StatusCancelled, StatusConfirmed, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Fatalf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}

	if !StatusConfirmed.IsTerminal() || !StatusCancelled.IsTerminal() {
		t.Fatal("confirmed and cancelled must be terminal")
	}
	if StatusOpen.IsTerminal() || StatusPending.IsTerminal() {
		t.Fatal("open and pending must not be terminal")
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "18:00", want: 1080},
		{in: "00:00", want: 0},
		{in: "23:59", want: 1439},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseClock(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
		}
		if FormatClock(got) != tt.in {
			t.Fatalf("FormatClock(%d) = %q, want %q", got, FormatClock(got), tt.in)
		}
	}
}

func TestDeterministicID(t *testing.T) {
	date, err := ParseDate("2026-04-10")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}

	a := DeterministicID("league-1", "10U", "F1", date, 1080, 1200, "team-a")
	b := DeterministicID("league-1", "10U", "F1", date, 1080, 1200, "team-a")
	if a != b {
		t.Fatalf("same inputs must yield same id: %s vs %s", a, b)
	}

	c := DeterministicID("league-1", "10U", "F2", date, 1080, 1200, "team-a")
	if a == c {
		t.Fatal("different field must yield different id")
	}
}

func TestOverlapsSlot(t *testing.T) {
	date := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	base := Slot{FieldKey: "F1", Date: date, StartMinutes: 1080, EndMinutes: 1200, Status: StatusOpen}

	overlapping := Slot{FieldKey: "F1", Date: date, StartMinutes: 1140, EndMinutes: 1260, Status: StatusOpen}
	if !base.OverlapsSlot(overlapping) {
		t.Fatal("expected overlap on same field/date")
	}

	cancelled := overlapping
	cancelled.Status = StatusCancelled
	if base.OverlapsSlot(cancelled) {
		t.Fatal("cancelled slots must never conflict")
	}

	otherField := overlapping
	otherField.FieldKey = "F2"
	if base.OverlapsSlot(otherField) {
		t.Fatal("different fields must never conflict")
	}

	otherDate := overlapping
	otherDate.Date = date.AddDate(0, 0, 1)
	if base.OverlapsSlot(otherDate) {
		t.Fatal("different dates must never conflict")
	}
}

func TestWeekKey(t *testing.T) {
	// 2026-01-01 falls in ISO week 1 of 2026; 2026-03-02 is week 10.
	d1, _ := ParseDate("2026-03-02")
	d2, _ := ParseDate("2026-03-08")
	d3, _ := ParseDate("2026-03-09")

	if WeekKey(d1) != WeekKey(d2) {
		t.Fatalf("monday and sunday of same ISO week differ: %s vs %s", WeekKey(d1), WeekKey(d2))
	}
	if WeekKey(d2) == WeekKey(d3) {
		t.Fatal("next monday must start a new ISO week")
	}
}
