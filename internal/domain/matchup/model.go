package matchup

// Phase identifies which part of the season a matchup belongs to.
type Phase string

const (
	PhaseRegularSeason Phase = "RegularSeason"
	PhasePoolPlay      Phase = "PoolPlay"
	PhaseBracket       Phase = "Bracket"
)

// Matchup is a required pairing of two teams. An external-offer matchup is
// a placeholder with no away team, used to keep per-team game counts even
// when a division has an odd team count.
type Matchup struct {
	HomeTeamID    string
	AwayTeamID    string
	Phase         Phase
	ExternalOffer bool
}

func (p Phase) Valid() bool {
	switch p {
	case PhaseRegularSeason, PhasePoolPlay, PhaseBracket:
		return true
	default:
		return false
	}
}

// Teams returns the team ids participating in the matchup. External offers
// involve only the offering team.
func (m Matchup) Teams() []string {
	if m.ExternalOffer || m.AwayTeamID == "" {
		return []string{m.HomeTeamID}
	}
	return []string{m.HomeTeamID, m.AwayTeamID}
}
