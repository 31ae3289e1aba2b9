package team

import "context"

// Repository exposes team reads for matchup generation.
type Repository interface {
	ListByDivision(ctx context.Context, leagueID, division string) ([]Team, error)
}
