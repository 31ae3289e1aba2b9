package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/agsa/field-scheduler/internal/domain/availability"
	qb "github.com/agsa/field-scheduler/internal/platform/querybuilder"
)

type availabilityRuleTableModel struct {
	ID           string        `db:"id"`
	LeagueID     string        `db:"league_id"`
	Division     string        `db:"division"`
	FieldKey     string        `db:"field_key"`
	StartsOn     time.Time     `db:"starts_on"`
	EndsOn       time.Time     `db:"ends_on"`
	DaysOfWeek   pq.Int64Array `db:"days_of_week"`
	StartMinutes int           `db:"start_minutes"`
	EndMinutes   int           `db:"end_minutes"`
	Active       bool          `db:"active"`
}

type availabilityExceptionTableModel struct {
	ID           string    `db:"id"`
	RuleID       string    `db:"rule_id"`
	StartsOn     time.Time `db:"starts_on"`
	EndsOn       time.Time `db:"ends_on"`
	StartMinutes int       `db:"start_minutes"`
	EndMinutes   int       `db:"end_minutes"`
	Reason       string    `db:"reason"`
}

var availabilityRuleColumns = []string{
	"id", "league_id", "division", "field_key", "starts_on", "ends_on",
	"days_of_week", "start_minutes", "end_minutes", "active",
}

var availabilityExceptionColumns = []string{
	"id", "rule_id", "starts_on", "ends_on", "start_minutes", "end_minutes", "reason",
}

func ruleFromRow(row availabilityRuleTableModel) availability.Rule {
	days := make([]time.Weekday, 0, len(row.DaysOfWeek))
	for _, day := range row.DaysOfWeek {
		days = append(days, time.Weekday(day))
	}
	return availability.Rule{
		ID:           row.ID,
		LeagueID:     row.LeagueID,
		Division:     row.Division,
		FieldKey:     row.FieldKey,
		StartsOn:     row.StartsOn.UTC(),
		EndsOn:       row.EndsOn.UTC(),
		DaysOfWeek:   days,
		StartMinutes: row.StartMinutes,
		EndMinutes:   row.EndMinutes,
		Active:       row.Active,
	}
}

func exceptionFromRow(row availabilityExceptionTableModel) availability.Exception {
	return availability.Exception{
		ID:           row.ID,
		RuleID:       row.RuleID,
		StartsOn:     row.StartsOn.UTC(),
		EndsOn:       row.EndsOn.UTC(),
		StartMinutes: row.StartMinutes,
		EndMinutes:   row.EndMinutes,
		Reason:       row.Reason,
	}
}

type AvailabilityRepository struct {
	db *sqlx.DB
}

func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

func (r *AvailabilityRepository) GetByID(ctx context.Context, id string) (availability.Rule, bool, error) {
	query, args, err := qb.Select(availabilityRuleColumns...).
		From("availability_rules").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return availability.Rule{}, false, fmt.Errorf("build get availability rule query: %w", err)
	}

	var row availabilityRuleTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return availability.Rule{}, false, nil
		}
		return availability.Rule{}, false, fmt.Errorf("get availability rule: %w", err)
	}
	return ruleFromRow(row), true, nil
}

func (r *AvailabilityRepository) ListByDivision(ctx context.Context, leagueID, division string) ([]availability.Rule, error) {
	query, args, err := qb.Select(availabilityRuleColumns...).
		From("availability_rules").
		Where(qb.Eq("league_id", leagueID), qb.Eq("division", division)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list availability rules query: %w", err)
	}

	var rows []availabilityRuleTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list availability rules: %w", err)
	}

	out := make([]availability.Rule, 0, len(rows))
	for _, row := range rows {
		out = append(out, ruleFromRow(row))
	}
	return out, nil
}

func (r *AvailabilityRepository) Create(ctx context.Context, rule availability.Rule) error {
	days := make(pq.Int64Array, 0, len(rule.DaysOfWeek))
	for _, day := range rule.DaysOfWeek {
		days = append(days, int64(day))
	}

	query, args, err := qb.InsertInto("availability_rules").
		Columns(availabilityRuleColumns...).
		Values(
			rule.ID, rule.LeagueID, rule.Division, rule.FieldKey,
			rule.StartsOn, rule.EndsOn, days,
			rule.StartMinutes, rule.EndMinutes, rule.Active,
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert availability rule query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("availability rule %s already exists", rule.ID)
		}
		return fmt.Errorf("insert availability rule: %w", err)
	}
	return nil
}

func (r *AvailabilityRepository) ListExceptionsByRule(ctx context.Context, ruleID string) ([]availability.Exception, error) {
	query, args, err := qb.Select(availabilityExceptionColumns...).
		From("availability_exceptions").
		Where(qb.Eq("rule_id", ruleID)).
		OrderBy("starts_on", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list exceptions query: %w", err)
	}

	var rows []availabilityExceptionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list availability exceptions: %w", err)
	}

	out := make([]availability.Exception, 0, len(rows))
	for _, row := range rows {
		out = append(out, exceptionFromRow(row))
	}
	return out, nil
}

func (r *AvailabilityRepository) CreateException(ctx context.Context, exception availability.Exception) error {
	query, args, err := qb.InsertInto("availability_exceptions").
		Columns(availabilityExceptionColumns...).
		Values(
			exception.ID, exception.RuleID, exception.StartsOn, exception.EndsOn,
			exception.StartMinutes, exception.EndMinutes, exception.Reason,
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert exception query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("availability exception %s already exists", exception.ID)
		}
		return fmt.Errorf("insert availability exception: %w", err)
	}
	return nil
}
