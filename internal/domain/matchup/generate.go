package matchup

import (
	"fmt"
	"sort"
)

// GenerateInput are the round-robin parameters for one division and phase.
type GenerateInput struct {
	TeamIDs         []string
	MinGamesPerTeam int
	Phase           Phase
	// IncludeExternalOffers adds one placeholder matchup per bye round for
	// odd team counts; the assignment step enforces the weekly budget.
	IncludeExternalOffers bool
}

// Generate builds the required matchup set: full round-robin cycles repeated
// until every team has at least MinGamesPerTeam games, with home/away
// orientation flipped on every repeated cycle. Output order is fully
// deterministic for a given input so preview calls are idempotent.
func Generate(in GenerateInput) ([]Matchup, error) {
	if len(in.TeamIDs) < 2 {
		return nil, fmt.Errorf("at least two teams are required, got %d", len(in.TeamIDs))
	}
	if !in.Phase.Valid() {
		return nil, fmt.Errorf("unknown phase %q", in.Phase)
	}

	teams := append([]string(nil), in.TeamIDs...)
	sort.Strings(teams)
	for i := 1; i < len(teams); i++ {
		if teams[i] == teams[i-1] {
			return nil, fmt.Errorf("duplicate team id %q", teams[i])
		}
	}

	gamesPerCycle := len(teams) - 1
	minGames := in.MinGamesPerTeam
	if minGames < 1 {
		minGames = gamesPerCycle
	}
	cycles := (minGames + gamesPerCycle - 1) / gamesPerCycle

	// Circle method: fix the first entry, rotate the rest each round. An
	// odd team count gets a synthetic bye marker.
	ring := append([]string(nil), teams...)
	odd := len(ring)%2 == 1
	if odd {
		ring = append(ring, "")
	}
	rounds := len(ring) - 1
	half := len(ring) / 2

	var out []Matchup
	for cycle := 0; cycle < cycles; cycle++ {
		rotation := append([]string(nil), ring...)
		for round := 0; round < rounds; round++ {
			for i := 0; i < half; i++ {
				a, b := rotation[i], rotation[len(rotation)-1-i]
				if a == "" || b == "" {
					bye := a
					if bye == "" {
						bye = b
					}
					if in.IncludeExternalOffers {
						out = append(out, Matchup{
							HomeTeamID:    bye,
							Phase:         in.Phase,
							ExternalOffer: true,
						})
					}
					continue
				}

				home, away := a, b
				// Alternate orientation within a cycle by round parity, and
				// flip the whole cycle on repeats so repeated pairings swap
				// home and away.
				if (round+cycle)%2 == 1 {
					home, away = away, home
				}
				out = append(out, Matchup{
					HomeTeamID: home,
					AwayTeamID: away,
					Phase:      in.Phase,
				})
			}
			rotation = rotate(rotation)
		}
	}

	return out, nil
}

// rotate keeps the first element fixed and shifts the others one position.
func rotate(ring []string) []string {
	out := make([]string, len(ring))
	out[0] = ring[0]
	out[1] = ring[len(ring)-1]
	copy(out[2:], ring[1:len(ring)-1])
	return out
}
