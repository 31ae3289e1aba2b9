package team

// Team is one roster entry in a league division.
type Team struct {
	ID       string
	LeagueID string
	Division string
	Name     string
}
