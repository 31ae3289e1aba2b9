package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/agsa/field-scheduler/internal/domain/slot"
	qb "github.com/agsa/field-scheduler/internal/platform/querybuilder"
)

type SlotRepository struct {
	db *sqlx.DB
}

func NewSlotRepository(db *sqlx.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

func slotBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select(slotColumns...).From("slots")
}

func (r *SlotRepository) GetByID(ctx context.Context, id string) (slot.Slot, bool, error) {
	query, args, err := slotBaseSelectBuilder().
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return slot.Slot{}, false, fmt.Errorf("build get slot query: %w", err)
	}

	var row slotTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return slot.Slot{}, false, nil
		}
		return slot.Slot{}, false, fmt.Errorf("get slot: %w", err)
	}
	return slotFromRow(row), true, nil
}

func (r *SlotRepository) Query(ctx context.Context, filter slot.Filter) ([]slot.Slot, error) {
	conditions := make([]qb.Condition, 0, 6)
	if filter.LeagueID != "" {
		conditions = append(conditions, qb.Eq("league_id", filter.LeagueID))
	}
	if filter.Division != "" {
		conditions = append(conditions, qb.Eq("division", filter.Division))
	}
	if filter.FieldKey != "" {
		conditions = append(conditions, qb.Eq("field_key", filter.FieldKey))
	}
	if !filter.DateFrom.IsZero() {
		conditions = append(conditions, qb.Gte("game_date", filter.DateFrom))
	}
	if !filter.DateTo.IsZero() {
		conditions = append(conditions, qb.Lte("game_date", filter.DateTo))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]any, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			statuses = append(statuses, string(status))
		}
		conditions = append(conditions, qb.In("status", statuses))
	}

	query, args, err := slotBaseSelectBuilder().
		Where(conditions...).
		OrderBy("game_date", "start_minutes", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query slots query: %w", err)
	}

	var rows []slotTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query slots: %w", err)
	}

	out := make([]slot.Slot, 0, len(rows))
	for _, row := range rows {
		out = append(out, slotFromRow(row))
	}
	return out, nil
}

func (r *SlotRepository) Create(ctx context.Context, item slot.Slot) error {
	query, args, err := qb.InsertModel("slots", slotToInsertModel(item), "")
	if err != nil {
		return fmt.Errorf("build insert slot query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("slot %s already exists", item.ID)
		}
		return fmt.Errorf("insert slot: %w", err)
	}
	return nil
}

// UpdateWithToken swaps the row only when the stored version token still
// matches, rotating the token in the same statement. Zero rows updated on
// an existing slot means the caller raced another writer.
func (r *SlotRepository) UpdateWithToken(ctx context.Context, id, token string, patch slot.Patch) (slot.Slot, bool, error) {
	builder := qb.Update("slots").
		SetExpr("version_token", "md5(random()::text)").
		SetExpr("updated_at", "NOW()")
	if patch.Status != nil {
		builder = builder.Set("status", string(*patch.Status))
	}
	if patch.ConfirmedTeamID != nil {
		builder = builder.Set("confirmed_team_id", *patch.ConfirmedTeamID)
	}
	if patch.HomeTeamID != nil {
		builder = builder.Set("home_team_id", *patch.HomeTeamID)
	}
	if patch.AwayTeamID != nil {
		builder = builder.Set("away_team_id", *patch.AwayTeamID)
	}
	if patch.IsExternalOffer != nil {
		builder = builder.Set("is_external_offer", *patch.IsExternalOffer)
	}
	if patch.Notes != nil {
		builder = builder.Set("notes", *patch.Notes)
	}

	query, args, err := builder.
		Where(qb.Eq("id", id), qb.Eq("version_token", token)).
		Suffix("RETURNING " + strings.Join(slotColumns, ", ")).
		ToSQL()
	if err != nil {
		return slot.Slot{}, false, fmt.Errorf("build update slot query: %w", err)
	}

	var row slotTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			// Distinguish a stale token from a missing slot.
			if _, exists, getErr := r.GetByID(ctx, id); getErr != nil {
				return slot.Slot{}, false, getErr
			} else if exists {
				return slot.Slot{}, false, nil
			}
			return slot.Slot{}, false, fmt.Errorf("slot %s does not exist", id)
		}
		return slot.Slot{}, false, fmt.Errorf("update slot: %w", err)
	}
	return slotFromRow(row), true, nil
}

func (r *SlotRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM slots WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	return nil
}
