package availability

import (
	"fmt"
	"time"
)

// Rule is an admin-authored recurring field availability window.
// Times are minutes of the local day.
type Rule struct {
	ID           string
	LeagueID     string
	Division     string
	FieldKey     string
	StartsOn     time.Time
	EndsOn       time.Time
	DaysOfWeek   []time.Weekday
	StartMinutes int
	EndMinutes   int
	Active       bool
}

// Exception carves availability out of a rule for a date range. A zero
// time window (start == end == 0) removes the whole day; otherwise only
// the overlapping portion of the day's window is removed.
type Exception struct {
	ID           string
	RuleID       string
	StartsOn     time.Time
	EndsOn       time.Time
	StartMinutes int
	EndMinutes   int
	Reason       string
}

// CandidateSlot is one concrete bookable window produced by expansion.
// It is never persisted directly.
type CandidateSlot struct {
	FieldKey     string
	Division     string
	Date         time.Time
	StartMinutes int
	EndMinutes   int
}

func (r Rule) Validate() error {
	if r.FieldKey == "" {
		return fmt.Errorf("field key is required")
	}
	if r.StartMinutes >= r.EndMinutes {
		return fmt.Errorf("rule start time %d must be before end time %d", r.StartMinutes, r.EndMinutes)
	}
	if r.StartsOn.After(r.EndsOn) {
		return fmt.Errorf("rule starts on %s after it ends on %s", r.StartsOn.Format(time.DateOnly), r.EndsOn.Format(time.DateOnly))
	}
	if len(r.DaysOfWeek) == 0 {
		return fmt.Errorf("rule days of week cannot be empty")
	}
	return nil
}

// WholeDay reports whether the exception removes the entire day rather
// than a time sub-window.
func (e Exception) WholeDay() bool {
	return e.StartMinutes == 0 && e.EndMinutes == 0
}

func (e Exception) appliesOn(date time.Time) bool {
	return !date.Before(e.StartsOn) && !date.After(e.EndsOn)
}
