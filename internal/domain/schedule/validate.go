package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/agsa/field-scheduler/internal/domain/matchup"
	"github.com/agsa/field-scheduler/internal/domain/slot"
)

// ValidateInput carries the constraint context for a validation pass.
type ValidateInput struct {
	MaxGamesPerWeek    int
	MinGamesPerTeam    int
	UnassignedMatchups []matchup.Matchup
}

// Validate independently re-checks a set of assigned games, whatever their
// origin. It never blocks anything itself; callers decide what to do with
// error-severity issues. Output order is deterministic.
func Validate(games []Game, in ValidateInput) []Issue {
	var issues []Issue
	issues = append(issues, doubleHeaderIssues(games)...)
	issues = append(issues, weeklyLimitIssues(games, in.MaxGamesPerWeek)...)
	issues = append(issues, unassignedIssues(games, in)...)
	issues = append(issues, doubleBookingIssues(games)...)
	return issues
}

// HasErrors reports whether any issue carries error severity.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

func doubleHeaderIssues(games []Game) []Issue {
	type key struct {
		team string
		date string
	}
	counts := make(map[key]int)
	for _, g := range games {
		if g.Status == slot.StatusCancelled {
			continue
		}
		for _, team := range g.Teams() {
			counts[key{team: team, date: g.Date.Format(time.DateOnly)}]++
		}
	}

	keys := make([]key, 0, len(counts))
	for k, n := range counts {
		if n > 1 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].team != keys[j].team {
			return keys[i].team < keys[j].team
		}
		return keys[i].date < keys[j].date
	})

	out := make([]Issue, 0, len(keys))
	for _, k := range keys {
		out = append(out, Issue{
			RuleID:   IssueDoubleHeader,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("team %s has %d games on %s", k.team, counts[k], k.date),
			Details:  map[string]any{"teamId": k.team, "date": k.date, "count": counts[k]},
		})
	}
	return out
}

func weeklyLimitIssues(games []Game, maxPerWeek int) []Issue {
	if maxPerWeek <= 0 {
		return nil
	}

	type key struct {
		team string
		week string
	}
	counts := make(map[key]int)
	for _, g := range games {
		if g.Status == slot.StatusCancelled {
			continue
		}
		for _, team := range g.Teams() {
			counts[key{team: team, week: slot.WeekKey(g.Date)}]++
		}
	}

	keys := make([]key, 0, len(counts))
	for k, n := range counts {
		if n > maxPerWeek {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].team != keys[j].team {
			return keys[i].team < keys[j].team
		}
		return keys[i].week < keys[j].week
	})

	out := make([]Issue, 0, len(keys))
	for _, k := range keys {
		out = append(out, Issue{
			RuleID:   IssueMaxGamesPerWeek,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("team %s has %d games in week %s, max is %d", k.team, counts[k], k.week, maxPerWeek),
			Details:  map[string]any{"teamId": k.team, "week": k.week, "count": counts[k], "max": maxPerWeek},
		})
	}
	return out
}

func unassignedIssues(games []Game, in ValidateInput) []Issue {
	gamesPerTeam := make(map[string]int)
	for _, g := range games {
		if g.Status == slot.StatusCancelled {
			continue
		}
		for _, team := range g.Teams() {
			gamesPerTeam[team]++
		}
	}

	out := make([]Issue, 0, len(in.UnassignedMatchups))
	for _, m := range in.UnassignedMatchups {
		severity := SeverityWarning
		if in.MinGamesPerTeam > 0 {
			for _, team := range m.Teams() {
				if gamesPerTeam[team] < in.MinGamesPerTeam {
					severity = SeverityError
					break
				}
			}
		}
		message := fmt.Sprintf("matchup %s vs %s could not be scheduled", m.HomeTeamID, m.AwayTeamID)
		if m.ExternalOffer {
			message = fmt.Sprintf("external offer for team %s could not be scheduled", m.HomeTeamID)
		}
		out = append(out, Issue{
			RuleID:   IssueUnassignedMatchup,
			Severity: severity,
			Message:  message,
			Details: map[string]any{
				"homeTeamId":    m.HomeTeamID,
				"awayTeamId":    m.AwayTeamID,
				"phase":         string(m.Phase),
				"externalOffer": m.ExternalOffer,
			},
		})
	}
	return out
}

// doubleBookingIssues flags overlapping non-cancelled games on one field and
// date. The lifecycle conflict check makes this unreachable on the normal
// path, so any hit is a structural integrity failure.
func doubleBookingIssues(games []Game) []Issue {
	byFieldDate := make(map[string][]Game)
	keys := make([]string, 0)
	for _, g := range games {
		if g.Status == slot.StatusCancelled {
			continue
		}
		key := g.FieldKey + "|" + g.Date.Format(time.DateOnly)
		if _, seen := byFieldDate[key]; !seen {
			keys = append(keys, key)
		}
		byFieldDate[key] = append(byFieldDate[key], g)
	}
	sort.Strings(keys)

	var out []Issue
	for _, key := range keys {
		group := byFieldDate[key]
		for i := range group {
			for j := i + 1; j < len(group); j++ {
				if !slot.Overlaps(group[i].StartMinutes, group[i].EndMinutes, group[j].StartMinutes, group[j].EndMinutes) {
					continue
				}
				out = append(out, Issue{
					RuleID:   IssueFieldDoubleBooked,
					Severity: SeverityError,
					Message: fmt.Sprintf("field %s double-booked on %s: %s-%s overlaps %s-%s",
						group[i].FieldKey, group[i].Date.Format(time.DateOnly),
						slot.FormatClock(group[i].StartMinutes), slot.FormatClock(group[i].EndMinutes),
						slot.FormatClock(group[j].StartMinutes), slot.FormatClock(group[j].EndMinutes)),
					Details: map[string]any{
						"fieldKey": group[i].FieldKey,
						"date":     group[i].Date.Format(time.DateOnly),
						"slotIds":  []string{group[i].SlotID, group[j].SlotID},
					},
				})
			}
		}
	}
	return out
}
