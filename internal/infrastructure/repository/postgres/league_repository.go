package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/agsa/field-scheduler/internal/domain/league"
	qb "github.com/agsa/field-scheduler/internal/platform/querybuilder"
)

type leagueTableModel struct {
	ID                string         `db:"id"`
	Name              string         `db:"name"`
	Timezone          string         `db:"timezone"`
	GameLengthMinutes int            `db:"game_length_minutes"`
	Divisions         pq.StringArray `db:"divisions"`
	Blackouts         []byte         `db:"blackouts"`
}

type leagueBlackoutJSON struct {
	StartsOn string `json:"startsOn"`
	EndsOn   string `json:"endsOn"`
	Reason   string `json:"reason"`
}

var leagueColumns = []string{"id", "name", "timezone", "game_length_minutes", "divisions", "blackouts"}

func leagueFromRow(row leagueTableModel) (league.League, error) {
	item := league.League{
		ID:                row.ID,
		Name:              row.Name,
		Timezone:          row.Timezone,
		GameLengthMinutes: row.GameLengthMinutes,
		Divisions:         append([]string(nil), row.Divisions...),
	}

	if len(row.Blackouts) == 0 {
		return item, nil
	}
	var blackouts []leagueBlackoutJSON
	if err := sonic.Unmarshal(row.Blackouts, &blackouts); err != nil {
		return league.League{}, fmt.Errorf("decode league blackouts: %w", err)
	}
	for _, blackout := range blackouts {
		startsOn, err := time.Parse(time.DateOnly, blackout.StartsOn)
		if err != nil {
			return league.League{}, fmt.Errorf("decode blackout start %q: %w", blackout.StartsOn, err)
		}
		endsOn, err := time.Parse(time.DateOnly, blackout.EndsOn)
		if err != nil {
			return league.League{}, fmt.Errorf("decode blackout end %q: %w", blackout.EndsOn, err)
		}
		item.Blackouts = append(item.Blackouts, league.Blackout{
			StartsOn: startsOn,
			EndsOn:   endsOn,
			Reason:   blackout.Reason,
		})
	}
	return item, nil
}

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) GetByID(ctx context.Context, id string) (league.League, bool, error) {
	query, args, err := qb.Select(leagueColumns...).
		From("leagues").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league: %w", err)
	}

	item, err := leagueFromRow(row)
	if err != nil {
		return league.League{}, false, err
	}
	return item, true, nil
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	query, _, err := qb.Select(leagueColumns...).
		From("leagues").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leagues query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		item, err := leagueFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
