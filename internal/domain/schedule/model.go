package schedule

import (
	"time"

	"github.com/agsa/field-scheduler/internal/domain/availability"
	"github.com/agsa/field-scheduler/internal/domain/matchup"
	"github.com/agsa/field-scheduler/internal/domain/slot"
)

// Severity tags a validation issue. Warnings never block anything; errors
// block apply.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue rule ids.
const (
	IssueDoubleHeader      = "double-header"
	IssueMaxGamesPerWeek   = "max-games-per-week"
	IssueUnassignedMatchup = "unassigned-matchup"
	IssueFieldDoubleBooked = "field-double-booking"
)

// Constraints are the season-level assignment rules. Zero values mean
// "no limit" (MaxGamesPerWeek, ExternalOfferPerWeek) or "off" (booleans).
type Constraints struct {
	MaxGamesPerWeek      int
	NoDoubleHeaders      bool
	BalanceHomeAway      bool
	ExternalOfferPerWeek int
	MinGamesPerTeam      int
}

// Assignment binds one matchup to one candidate slot.
type Assignment struct {
	Slot    availability.CandidateSlot
	Matchup matchup.Matchup
}

// Issue is a detected constraint violation or soft warning.
type Issue struct {
	RuleID   string
	Severity Severity
	Message  string
	Details  map[string]any
}

// PreviewResult is the outcome of one assignment pass.
type PreviewResult struct {
	Assignments        []Assignment
	UnassignedSlots    []availability.CandidateSlot
	UnassignedMatchups []matchup.Matchup
	Failures           []Issue
}

// Game is a normalized assigned game, the validator's only input shape. It
// covers greedy output, manually created slots and CSV imports alike.
type Game struct {
	SlotID        string
	FieldKey      string
	Date          time.Time
	StartMinutes  int
	EndMinutes    int
	HomeTeamID    string
	AwayTeamID    string
	Status        slot.Status
	ExternalOffer bool
}

// Teams returns the participating team ids, skipping the empty side of an
// external offer.
func (g Game) Teams() []string {
	out := make([]string, 0, 2)
	if g.HomeTeamID != "" {
		out = append(out, g.HomeTeamID)
	}
	if g.AwayTeamID != "" {
		out = append(out, g.AwayTeamID)
	}
	return out
}

// Run is the immutable audit record of one apply operation.
type Run struct {
	ID               string
	LeagueID         string
	Division         string
	MatchupsTotal    int
	MatchupsAssigned int
	SlotsTotal       int
	SlotsUsed        int
	Assignments      []RunAssignment
	Failures         []Issue
	CreatedAt        time.Time
}

// RunAssignment records where one matchup landed.
type RunAssignment struct {
	SlotID        string
	FieldKey      string
	Date          time.Time
	StartMinutes  int
	EndMinutes    int
	HomeTeamID    string
	AwayTeamID    string
	Phase         matchup.Phase
	ExternalOffer bool
}
