package league

import "time"

// League carries the configuration the scheduling core consumes: game
// length, league-wide blackout ranges and the display timezone. The
// timezone is metadata only; no conversion happens in the core.
type League struct {
	ID                string
	Name              string
	Timezone          string
	GameLengthMinutes int
	Divisions         []string
	Blackouts         []Blackout
}

// Blackout removes availability league-wide for a date range.
type Blackout struct {
	StartsOn time.Time
	EndsOn   time.Time
	Reason   string
}

// HasDivision reports whether the division is configured for the league.
func (l League) HasDivision(division string) bool {
	for _, d := range l.Divisions {
		if d == division {
			return true
		}
	}
	return false
}
