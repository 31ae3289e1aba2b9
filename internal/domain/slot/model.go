package slot

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Status is the lifecycle state of a persisted slot.
type Status string

const (
	StatusOpen      Status = "Open"
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCancelled Status = "Cancelled"
)

// RequestStatus is the lifecycle state of a slot request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "Pending"
	RequestApproved RequestStatus = "Approved"
	RequestRejected RequestStatus = "Rejected"
)

// Slot is an addressable game/practice time block on one field and date.
// Times are minutes of the local day; no timezone conversion happens here.
type Slot struct {
	ID              string
	LeagueID        string
	Division        string
	FieldKey        string
	Date            time.Time
	StartMinutes    int
	EndMinutes      int
	OfferingTeamID  string
	ConfirmedTeamID string
	HomeTeamID      string
	AwayTeamID      string
	Status          Status
	IsAvailability  bool
	IsExternalOffer bool
	GameType        string
	Notes           string
	Token           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Request is a team's claim on an Open or Pending slot.
type Request struct {
	ID               string
	SlotID           string
	RequestingTeamID string
	Status           RequestStatus
	RequestedAt      time.Time
}

func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusOpen, StatusPending, StatusConfirmed, StatusCancelled:
		return Status(value), nil
	default:
		return "", fmt.Errorf("unknown slot status %q", value)
	}
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusConfirmed, StatusCancelled:
		return true
	case StatusOpen, StatusPending:
		return false
	default:
		return false
	}
}

// CanTransitionTo reports whether the state machine allows moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusOpen:
		return next == StatusPending || next == StatusConfirmed || next == StatusCancelled
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed, StatusCancelled:
		return false
	default:
		return false
	}
}

// Overlaps reports whether two half-open minute windows intersect.
// Callers must reject zero-length or inverted windows before calling.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// OverlapsSlot reports whether the slot's window intersects other's window
// on the same field and date. Cancelled slots never conflict.
func (s Slot) OverlapsSlot(other Slot) bool {
	if s.Status == StatusCancelled || other.Status == StatusCancelled {
		return false
	}
	if s.FieldKey != other.FieldKey || !s.Date.Equal(other.Date) {
		return false
	}
	return Overlaps(s.StartMinutes, s.EndMinutes, other.StartMinutes, other.EndMinutes)
}

// DeterministicID derives the slot identity from the fields that make a
// slot unique, so re-importing or re-applying the same window yields the
// same id.
func DeterministicID(leagueID, division, fieldKey string, date time.Time, startMinutes, endMinutes int, offeringTeamID string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf(
		"%s|%s|%s|%s|%d|%d|%s",
		leagueID, division, fieldKey, FormatDate(date), startMinutes, endMinutes, offeringTeamID,
	)))
	return hex.EncodeToString(sum[:16])
}

// ParseClock converts a 24-hour "HH:MM" string to minutes of day.
func ParseClock(value string) (int, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(value, "%d:%d", &hh, &mm); err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", value)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", value)
	}
	return hh*60 + mm, nil
}

// FormatClock converts minutes of day back to "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate parses a plain "YYYY-MM-DD" calendar date.
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return parsed, nil
}

func FormatDate(date time.Time) string {
	return date.Format(time.DateOnly)
}

// WeekKey returns the ISO week bucket for a date, e.g. "2026-W12".
func WeekKey(date time.Time) string {
	year, week := date.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}
