package slot

import (
	"context"
	"time"
)

// Filter narrows slot queries. Zero values mean "any".
type Filter struct {
	LeagueID string
	Division string
	FieldKey string
	DateFrom time.Time
	DateTo   time.Time
	Statuses []Status
}

// Patch carries the fields UpdateWithToken may change. Nil means unchanged.
type Patch struct {
	Status          *Status
	ConfirmedTeamID *string
	HomeTeamID      *string
	AwayTeamID      *string
	IsExternalOffer *bool
	Notes           *string
}

// Repository is the persisted slot store. UpdateWithToken applies the patch
// only when token matches the stored concurrency token; a false return with
// nil error signals a stale token and the caller must re-read and retry.
type Repository interface {
	GetByID(ctx context.Context, id string) (Slot, bool, error)
	Query(ctx context.Context, filter Filter) ([]Slot, error)
	Create(ctx context.Context, item Slot) error
	UpdateWithToken(ctx context.Context, id, token string, patch Patch) (Slot, bool, error)
	Delete(ctx context.Context, id string) error
}

// RequestRepository stores slot requests.
type RequestRepository interface {
	GetByID(ctx context.Context, id string) (Request, bool, error)
	ListBySlot(ctx context.Context, slotID string) ([]Request, error)
	Create(ctx context.Context, item Request) error
	UpdateStatus(ctx context.Context, id string, status RequestStatus) error
}
