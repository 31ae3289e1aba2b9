package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/agsa/field-scheduler/internal/domain/team"
	qb "github.com/agsa/field-scheduler/internal/platform/querybuilder"
)

type teamTableModel struct {
	ID       string `db:"id"`
	LeagueID string `db:"league_id"`
	Division string `db:"division"`
	Name     string `db:"name"`
}

var teamColumns = []string{"id", "league_id", "division", "name"}

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) ListByDivision(ctx context.Context, leagueID, division string) ([]team.Team, error) {
	query, args, err := qb.Select(teamColumns...).
		From("teams").
		Where(qb.Eq("league_id", leagueID), qb.Eq("division", division)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, team.Team{
			ID:       row.ID,
			LeagueID: row.LeagueID,
			Division: row.Division,
			Name:     row.Name,
		})
	}
	return out, nil
}
