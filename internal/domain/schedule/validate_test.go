package schedule

import (
	"testing"

	"github.com/agsa/field-scheduler/internal/domain/matchup"
	"github.com/agsa/field-scheduler/internal/domain/slot"
)

func confirmedGame(id, field, day string, start, end int, home, away string) Game {
	return Game{
		SlotID:       id,
		FieldKey:     field,
		Date:         date(day),
		StartMinutes: start,
		EndMinutes:   end,
		HomeTeamID:   home,
		AwayTeamID:   away,
		Status:       slot.StatusConfirmed,
	}
}

func issuesByRule(issues []Issue, ruleID string) []Issue {
	var out []Issue
	for _, issue := range issues {
		if issue.RuleID == ruleID {
			out = append(out, issue)
		}
	}
	return out
}

func TestValidate_DoubleHeaderIsWarning(t *testing.T) {
	games := []Game{
		confirmedGame("s1", "F1", "2026-04-11", 600, 720, "t1", "t2"),
		confirmedGame("s2", "F2", "2026-04-11", 600, 720, "t1", "t3"),
	}

	issues := Validate(games, ValidateInput{})
	headers := issuesByRule(issues, IssueDoubleHeader)
	if len(headers) != 1 {
		t.Fatalf("expected 1 double-header issue, got %d", len(headers))
	}
	if headers[0].Severity != SeverityWarning {
		t.Fatalf("double-header must be a warning, got %s", headers[0].Severity)
	}
	if headers[0].Details["teamId"] != "t1" {
		t.Fatalf("unexpected team in details: %v", headers[0].Details["teamId"])
	}
	if HasErrors(issues) {
		t.Fatal("warnings alone must not count as errors")
	}
}

func TestValidate_WeeklyLimit(t *testing.T) {
	// Three games for t1 inside one ISO week.
	games := []Game{
		confirmedGame("s1", "F1", "2026-04-07", 600, 720, "t1", "t2"),
		confirmedGame("s2", "F1", "2026-04-09", 600, 720, "t1", "t3"),
		confirmedGame("s3", "F1", "2026-04-11", 600, 720, "t1", "t4"),
	}

	issues := Validate(games, ValidateInput{MaxGamesPerWeek: 2})
	weekly := issuesByRule(issues, IssueMaxGamesPerWeek)
	if len(weekly) != 1 {
		t.Fatalf("expected 1 weekly-limit issue, got %d", len(weekly))
	}
	if weekly[0].Severity != SeverityWarning {
		t.Fatalf("weekly limit must be a warning, got %s", weekly[0].Severity)
	}

	if got := issuesByRule(Validate(games, ValidateInput{}), IssueMaxGamesPerWeek); len(got) != 0 {
		t.Fatalf("unset limit must produce no weekly issues, got %d", len(got))
	}
}

func TestValidate_FieldDoubleBookingIsError(t *testing.T) {
	games := []Game{
		confirmedGame("s1", "F1", "2026-04-11", 600, 720, "t1", "t2"),
		confirmedGame("s2", "F1", "2026-04-11", 660, 780, "t3", "t4"),
	}

	issues := Validate(games, ValidateInput{})
	booked := issuesByRule(issues, IssueFieldDoubleBooked)
	if len(booked) != 1 {
		t.Fatalf("expected 1 double-booking issue, got %d", len(booked))
	}
	if booked[0].Severity != SeverityError {
		t.Fatalf("double-booking must be an error, got %s", booked[0].Severity)
	}
	if !HasErrors(issues) {
		t.Fatal("error-severity issue must be reported by HasErrors")
	}
}

func TestValidate_CancelledGamesAreIgnored(t *testing.T) {
	cancelled := confirmedGame("s2", "F1", "2026-04-11", 660, 780, "t3", "t4")
	cancelled.Status = slot.StatusCancelled
	games := []Game{
		confirmedGame("s1", "F1", "2026-04-11", 600, 720, "t1", "t2"),
		cancelled,
	}

	if issues := Validate(games, ValidateInput{}); len(issues) != 0 {
		t.Fatalf("cancelled games must not trigger issues, got %d", len(issues))
	}
}

func TestValidate_UnassignedMatchupSeverity(t *testing.T) {
	games := []Game{
		confirmedGame("s1", "F1", "2026-04-11", 600, 720, "t1", "t2"),
	}
	unassigned := []matchup.Matchup{
		{HomeTeamID: "t1", AwayTeamID: "t3", Phase: matchup.PhaseRegularSeason},
	}

	// t3 has zero games against a minimum of two: error.
	issues := Validate(games, ValidateInput{MinGamesPerTeam: 2, UnassignedMatchups: unassigned})
	missing := issuesByRule(issues, IssueUnassignedMatchup)
	if len(missing) != 1 || missing[0].Severity != SeverityError {
		t.Fatalf("expected one error-severity issue, got %+v", missing)
	}

	// No minimum configured: the same miss is only a warning.
	issues = Validate(games, ValidateInput{UnassignedMatchups: unassigned})
	missing = issuesByRule(issues, IssueUnassignedMatchup)
	if len(missing) != 1 || missing[0].Severity != SeverityWarning {
		t.Fatalf("expected one warning-severity issue, got %+v", missing)
	}
}

func TestValidate_ConfirmedSlotsNeverDoubleBookedAfterAssign(t *testing.T) {
	matchups, err := matchup.Generate(matchup.GenerateInput{
		TeamIDs:         []string{"t1", "t2", "t3", "t4"},
		MinGamesPerTeam: 6,
		Phase:           matchup.PhaseRegularSeason,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	result := Assign(matchups, seasonSlots(), Constraints{MaxGamesPerWeek: 2, NoDoubleHeaders: true})
	games := make([]Game, 0, len(result.Assignments))
	for _, a := range result.Assignments {
		games = append(games, Game{
			SlotID:       slot.DeterministicID("league-1", a.Slot.Division, a.Slot.FieldKey, a.Slot.Date, a.Slot.StartMinutes, a.Slot.EndMinutes, a.Matchup.HomeTeamID),
			FieldKey:     a.Slot.FieldKey,
			Date:         a.Slot.Date,
			StartMinutes: a.Slot.StartMinutes,
			EndMinutes:   a.Slot.EndMinutes,
			HomeTeamID:   a.Matchup.HomeTeamID,
			AwayTeamID:   a.Matchup.AwayTeamID,
			Status:       slot.StatusConfirmed,
		})
	}

	issues := Validate(games, ValidateInput{MaxGamesPerWeek: 2})
	if got := issuesByRule(issues, IssueFieldDoubleBooked); len(got) != 0 {
		t.Fatalf("assignment output must never double-book a field, got %d issues", len(got))
	}
}
