package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/agsa/field-scheduler/internal/domain/schedule"
	qb "github.com/agsa/field-scheduler/internal/platform/querybuilder"
)

type runTableModel struct {
	ID               string    `db:"id"`
	LeagueID         string    `db:"league_id"`
	Division         string    `db:"division"`
	MatchupsTotal    int       `db:"matchups_total"`
	MatchupsAssigned int       `db:"matchups_assigned"`
	SlotsTotal       int       `db:"slots_total"`
	SlotsUsed        int       `db:"slots_used"`
	Assignments      []byte    `db:"assignments"`
	Failures         []byte    `db:"failures"`
	CreatedAt        time.Time `db:"created_at"`
}

var runColumns = []string{
	"id", "league_id", "division", "matchups_total", "matchups_assigned",
	"slots_total", "slots_used", "assignments", "failures", "created_at",
}

func runFromRow(row runTableModel) (schedule.Run, error) {
	run := schedule.Run{
		ID:               row.ID,
		LeagueID:         row.LeagueID,
		Division:         row.Division,
		MatchupsTotal:    row.MatchupsTotal,
		MatchupsAssigned: row.MatchupsAssigned,
		SlotsTotal:       row.SlotsTotal,
		SlotsUsed:        row.SlotsUsed,
		CreatedAt:        row.CreatedAt,
	}
	if len(row.Assignments) > 0 {
		if err := sonic.Unmarshal(row.Assignments, &run.Assignments); err != nil {
			return schedule.Run{}, fmt.Errorf("decode run assignments: %w", err)
		}
	}
	if len(row.Failures) > 0 {
		if err := sonic.Unmarshal(row.Failures, &run.Failures); err != nil {
			return schedule.Run{}, fmt.Errorf("decode run failures: %w", err)
		}
	}
	return run, nil
}

type RunRepository struct {
	db *sqlx.DB
}

func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) GetByID(ctx context.Context, id string) (schedule.Run, bool, error) {
	query, args, err := qb.Select(runColumns...).
		From("schedule_runs").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return schedule.Run{}, false, fmt.Errorf("build get run query: %w", err)
	}

	var row runTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return schedule.Run{}, false, nil
		}
		return schedule.Run{}, false, fmt.Errorf("get schedule run: %w", err)
	}

	run, err := runFromRow(row)
	if err != nil {
		return schedule.Run{}, false, err
	}
	return run, true, nil
}

func (r *RunRepository) ListByLeague(ctx context.Context, leagueID string) ([]schedule.Run, error) {
	query, args, err := qb.Select(runColumns...).
		From("schedule_runs").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("created_at DESC", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list runs query: %w", err)
	}

	var rows []runTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list schedule runs: %w", err)
	}

	out := make([]schedule.Run, 0, len(rows))
	for _, row := range rows {
		run, err := runFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, nil
}

func (r *RunRepository) Create(ctx context.Context, run schedule.Run) error {
	assignments, err := sonic.Marshal(run.Assignments)
	if err != nil {
		return fmt.Errorf("encode run assignments: %w", err)
	}
	failures, err := sonic.Marshal(run.Failures)
	if err != nil {
		return fmt.Errorf("encode run failures: %w", err)
	}

	query, args, err := qb.InsertInto("schedule_runs").
		Columns(runColumns...).
		Values(
			run.ID, run.LeagueID, run.Division,
			run.MatchupsTotal, run.MatchupsAssigned,
			run.SlotsTotal, run.SlotsUsed,
			assignments, failures, run.CreatedAt,
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert run query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("schedule run %s already exists", run.ID)
		}
		return fmt.Errorf("insert schedule run: %w", err)
	}
	return nil
}
