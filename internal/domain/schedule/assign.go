package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/agsa/field-scheduler/internal/domain/availability"
	"github.com/agsa/field-scheduler/internal/domain/matchup"
	"github.com/agsa/field-scheduler/internal/domain/slot"
)

// assignState tracks per-team and per-week counters during one greedy pass.
type assignState struct {
	gamesPerWeek map[string]map[string]int // team -> week key -> games
	gamesPerDate map[string]map[string]int // team -> date -> games
	homeBalance  map[string]int            // team -> home games minus away games
	externalUsed map[string]int            // week key -> external offers consumed
}

func newAssignState() *assignState {
	return &assignState{
		gamesPerWeek: make(map[string]map[string]int),
		gamesPerDate: make(map[string]map[string]int),
		homeBalance:  make(map[string]int),
		externalUsed: make(map[string]int),
	}
}

func (s *assignState) weekGames(team, week string) int {
	return s.gamesPerWeek[team][week]
}

func (s *assignState) dateGames(team string, date time.Time) int {
	return s.gamesPerDate[team][date.Format(time.DateOnly)]
}

func (s *assignState) record(m matchup.Matchup, c availability.CandidateSlot) {
	week := slot.WeekKey(c.Date)
	day := c.Date.Format(time.DateOnly)
	for _, team := range m.Teams() {
		if s.gamesPerWeek[team] == nil {
			s.gamesPerWeek[team] = make(map[string]int)
		}
		if s.gamesPerDate[team] == nil {
			s.gamesPerDate[team] = make(map[string]int)
		}
		s.gamesPerWeek[team][week]++
		s.gamesPerDate[team][day]++
	}
	if m.ExternalOffer {
		s.externalUsed[week]++
		return
	}
	s.homeBalance[m.HomeTeamID]++
	s.homeBalance[m.AwayTeamID]--
}

// Assign places matchups onto candidate slots with a deterministic greedy
// pass and no backtracking. This trades optimality for explainability: an
// admin can see exactly which slot each matchup landed on and which ones
// ran out of eligible slots.
func Assign(matchups []matchup.Matchup, candidates []availability.CandidateSlot, cons Constraints) PreviewResult {
	pool := append([]availability.CandidateSlot(nil), candidates...)
	sort.SliceStable(pool, func(i, j int) bool {
		if !pool[i].Date.Equal(pool[j].Date) {
			return pool[i].Date.Before(pool[j].Date)
		}
		if pool[i].StartMinutes != pool[j].StartMinutes {
			return pool[i].StartMinutes < pool[j].StartMinutes
		}
		return pool[i].FieldKey < pool[j].FieldKey
	})

	// External offers are the most flexible placements, so regular matchups
	// go first; within each group insertion order is preserved.
	ordered := append([]matchup.Matchup(nil), matchups...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return !ordered[i].ExternalOffer && ordered[j].ExternalOffer
	})

	state := newAssignState()
	used := make([]bool, len(pool))
	result := PreviewResult{}

	for _, m := range ordered {
		idx := -1
		for i, c := range pool {
			if used[i] {
				continue
			}
			if eligible(m, c, cons, state) {
				idx = i
				break
			}
		}
		if idx < 0 {
			result.UnassignedMatchups = append(result.UnassignedMatchups, m)
			continue
		}

		chosen := pool[idx]
		used[idx] = true
		bound := orient(m, cons, state)
		state.record(bound, chosen)
		result.Assignments = append(result.Assignments, Assignment{Slot: chosen, Matchup: bound})

		// Double-headers that slip past a disabled hard filter are still
		// worth surfacing; the validator is the authoritative check.
		if !cons.NoDoubleHeaders {
			for _, team := range bound.Teams() {
				if n := state.dateGames(team, chosen.Date); n > 1 {
					result.Failures = append(result.Failures, Issue{
						RuleID:   IssueDoubleHeader,
						Severity: SeverityWarning,
						Message:  fmt.Sprintf("team %s has %d games on %s", team, n, chosen.Date.Format(time.DateOnly)),
						Details: map[string]any{
							"teamId": team,
							"date":   chosen.Date.Format(time.DateOnly),
							"count":  n,
						},
					})
				}
			}
		}
	}

	for i, c := range pool {
		if !used[i] {
			result.UnassignedSlots = append(result.UnassignedSlots, c)
		}
	}

	return result
}

func eligible(m matchup.Matchup, c availability.CandidateSlot, cons Constraints, state *assignState) bool {
	week := slot.WeekKey(c.Date)
	for _, team := range m.Teams() {
		if cons.MaxGamesPerWeek > 0 && state.weekGames(team, week) >= cons.MaxGamesPerWeek {
			return false
		}
		if cons.NoDoubleHeaders && state.dateGames(team, c.Date) > 0 {
			return false
		}
	}
	if m.ExternalOffer {
		if cons.ExternalOfferPerWeek <= 0 {
			return false
		}
		if state.externalUsed[week] >= cons.ExternalOfferPerWeek {
			return false
		}
	}
	return true
}

// orient picks the home/away orientation. Balancing is a preference, never
// a rejection rule: the generated orientation is kept unless swapping
// strictly reduces the accumulated imbalance.
func orient(m matchup.Matchup, cons Constraints, state *assignState) matchup.Matchup {
	if !cons.BalanceHomeAway || m.ExternalOffer {
		return m
	}
	if state.homeBalance[m.HomeTeamID] > state.homeBalance[m.AwayTeamID] {
		return matchup.Matchup{
			HomeTeamID: m.AwayTeamID,
			AwayTeamID: m.HomeTeamID,
			Phase:      m.Phase,
		}
	}
	return m
}
