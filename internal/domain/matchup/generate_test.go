package matchup

import (
	"reflect"
	"testing"
)

func TestGenerate_SingleCycleEvenTeams(t *testing.T) {
	got, err := Generate(GenerateInput{
		TeamIDs: []string{"t4", "t2", "t1", "t3"},
		Phase:   PhaseRegularSeason,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// Four teams, one cycle: 3 rounds of 2 games.
	if len(got) != 6 {
		t.Fatalf("expected 6 matchups, got %d", len(got))
	}

	counts := make(map[string]int)
	for _, m := range got {
		if m.HomeTeamID == m.AwayTeamID {
			t.Fatalf("team paired with itself: %+v", m)
		}
		counts[m.HomeTeamID]++
		counts[m.AwayTeamID]++
	}
	for team, n := range counts {
		if n != 3 {
			t.Fatalf("team %s has %d games, want 3", team, n)
		}
	}
}

func TestGenerate_RepeatsCyclesUntilMinGames(t *testing.T) {
	got, err := Generate(GenerateInput{
		TeamIDs:         []string{"t1", "t2", "t3", "t4", "t5"},
		MinGamesPerTeam: 8,
		Phase:           PhaseRegularSeason,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// Five teams play 4 games per cycle; 8 games needs 2 cycles = 20 matchups.
	if len(got) != 20 {
		t.Fatalf("expected 20 matchups, got %d", len(got))
	}

	counts := make(map[string]int)
	for _, m := range got {
		for _, team := range m.Teams() {
			counts[team]++
		}
	}
	for team, n := range counts {
		if n < 8 {
			t.Fatalf("team %s has %d games, want at least 8", team, n)
		}
	}
}

func TestGenerate_RepeatedCyclesSwapHomeAway(t *testing.T) {
	got, err := Generate(GenerateInput{
		TeamIDs:         []string{"t1", "t2"},
		MinGamesPerTeam: 2,
		Phase:           PhasePoolPlay,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matchups, got %d", len(got))
	}
	if got[0].HomeTeamID == got[1].HomeTeamID {
		t.Fatalf("repeat cycle must swap orientation: %+v vs %+v", got[0], got[1])
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	in := GenerateInput{
		TeamIDs:               []string{"t3", "t1", "t5", "t2", "t4"},
		MinGamesPerTeam:       8,
		Phase:                 PhaseRegularSeason,
		IncludeExternalOffers: true,
	}

	first, err := Generate(in)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := Generate(in)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical inputs must yield identical matchup sets")
	}

	// Team id order must not matter either.
	shuffled := GenerateInput{
		TeamIDs:               []string{"t5", "t4", "t3", "t2", "t1"},
		MinGamesPerTeam:       8,
		Phase:                 PhaseRegularSeason,
		IncludeExternalOffers: true,
	}
	third, err := Generate(shuffled)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !reflect.DeepEqual(first, third) {
		t.Fatal("team id input order must not change the output")
	}
}

func TestGenerate_OddTeamCountExternalOffers(t *testing.T) {
	got, err := Generate(GenerateInput{
		TeamIDs:               []string{"t1", "t2", "t3"},
		Phase:                 PhaseRegularSeason,
		IncludeExternalOffers: true,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	external := 0
	byTeam := make(map[string]int)
	for _, m := range got {
		if m.ExternalOffer {
			external++
			if m.AwayTeamID != "" {
				t.Fatalf("external offer must have no away team: %+v", m)
			}
			byTeam[m.HomeTeamID]++
		}
	}
	// Three teams, one cycle of three rounds: each team byes exactly once.
	if external != 3 {
		t.Fatalf("expected 3 external offers, got %d", external)
	}
	for team, n := range byTeam {
		if n != 1 {
			t.Fatalf("team %s has %d external offers, want 1", team, n)
		}
	}
}

func TestGenerate_InvalidInputs(t *testing.T) {
	if _, err := Generate(GenerateInput{TeamIDs: []string{"t1"}, Phase: PhaseRegularSeason}); err == nil {
		t.Fatal("expected error for fewer than two teams")
	}
	if _, err := Generate(GenerateInput{TeamIDs: []string{"t1", "t2"}, Phase: Phase("Playoffs")}); err == nil {
		t.Fatal("expected error for unknown phase")
	}
	if _, err := Generate(GenerateInput{TeamIDs: []string{"t1", "t1"}, Phase: PhaseBracket}); err == nil {
		t.Fatal("expected error for duplicate team ids")
	}
}
