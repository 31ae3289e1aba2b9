package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/agsa/field-scheduler/internal/domain/slot"
	qb "github.com/agsa/field-scheduler/internal/platform/querybuilder"
)

type slotRequestTableModel struct {
	ID               string    `db:"id"`
	SlotID           string    `db:"slot_id"`
	RequestingTeamID string    `db:"requesting_team_id"`
	Status           string    `db:"status"`
	RequestedAt      time.Time `db:"requested_at"`
}

var slotRequestColumns = []string{"id", "slot_id", "requesting_team_id", "status", "requested_at"}

func slotRequestFromRow(row slotRequestTableModel) slot.Request {
	return slot.Request{
		ID:               row.ID,
		SlotID:           row.SlotID,
		RequestingTeamID: row.RequestingTeamID,
		Status:           slot.RequestStatus(row.Status),
		RequestedAt:      row.RequestedAt,
	}
}

type SlotRequestRepository struct {
	db *sqlx.DB
}

func NewSlotRequestRepository(db *sqlx.DB) *SlotRequestRepository {
	return &SlotRequestRepository{db: db}
}

func (r *SlotRequestRepository) GetByID(ctx context.Context, id string) (slot.Request, bool, error) {
	query, args, err := qb.Select(slotRequestColumns...).
		From("slot_requests").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return slot.Request{}, false, fmt.Errorf("build get slot request query: %w", err)
	}

	var row slotRequestTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return slot.Request{}, false, nil
		}
		return slot.Request{}, false, fmt.Errorf("get slot request: %w", err)
	}
	return slotRequestFromRow(row), true, nil
}

func (r *SlotRequestRepository) ListBySlot(ctx context.Context, slotID string) ([]slot.Request, error) {
	query, args, err := qb.Select(slotRequestColumns...).
		From("slot_requests").
		Where(qb.Eq("slot_id", slotID)).
		OrderBy("requested_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list slot requests query: %w", err)
	}

	var rows []slotRequestTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list slot requests: %w", err)
	}

	out := make([]slot.Request, 0, len(rows))
	for _, row := range rows {
		out = append(out, slotRequestFromRow(row))
	}
	return out, nil
}

func (r *SlotRequestRepository) Create(ctx context.Context, item slot.Request) error {
	query, args, err := qb.InsertInto("slot_requests").
		Columns(slotRequestColumns...).
		Values(item.ID, item.SlotID, item.RequestingTeamID, string(item.Status), item.RequestedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert slot request query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("slot request %s already exists", item.ID)
		}
		return fmt.Errorf("insert slot request: %w", err)
	}
	return nil
}

func (r *SlotRequestRepository) UpdateStatus(ctx context.Context, id string, status slot.RequestStatus) error {
	query, args, err := qb.Update("slot_requests").
		Set("status", string(status)).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update slot request query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update slot request status: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("slot request %s does not exist", id)
	}
	return nil
}
