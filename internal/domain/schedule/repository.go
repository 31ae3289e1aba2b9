package schedule

import "context"

// RunRepository stores apply audit records. Runs are append-only.
type RunRepository interface {
	GetByID(ctx context.Context, id string) (Run, bool, error)
	ListByLeague(ctx context.Context, leagueID string) ([]Run, error)
	Create(ctx context.Context, run Run) error
}
