package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/agsa/field-scheduler/internal/domain/slot"
	leaguemock "github.com/agsa/field-scheduler/internal/mocks/domain/league"
	slotmock "github.com/agsa/field-scheduler/internal/mocks/domain/slot"
	"github.com/agsa/field-scheduler/internal/platform/logging"
)

func TestSlotService_GetSlot_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	slotRepo := slotmock.NewRepository(t)
	requestRepo := slotmock.NewRequestRepository(t)
	leagueRepo := leaguemock.NewRepository(t)

	service := NewSlotService(slotRepo, requestRepo, leagueRepo, &seqIDGenerator{prefix: "id"}, logging.NewNop())

	expected := slot.Slot{ID: "slot-1", LeagueID: "metro-youth-2026", Status: slot.StatusOpen}
	slotRepo.
		On("GetByID", mock.Anything, "slot-1").
		Return(expected, true, nil).
		Once()

	got, exists, err := service.GetSlot(ctx, "slot-1")
	if err != nil {
		t.Fatalf("get slot: %v", err)
	}
	if !exists || got.ID != expected.ID {
		t.Fatalf("unexpected slot: exists=%v id=%s", exists, got.ID)
	}
}

func TestSlotService_RejectRequest_RepositoryErrorUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	slotRepo := slotmock.NewRepository(t)
	requestRepo := slotmock.NewRequestRepository(t)
	leagueRepo := leaguemock.NewRepository(t)

	service := NewSlotService(slotRepo, requestRepo, leagueRepo, &seqIDGenerator{prefix: "id"}, logging.NewNop())

	pending := slot.Request{ID: "req-1", SlotID: "slot-1", RequestingTeamID: "team-2", Status: slot.RequestPending}
	storeErr := errors.New("store offline")

	requestRepo.
		On("GetByID", mock.Anything, "req-1").
		Return(pending, true, nil).
		Once()
	requestRepo.
		On("UpdateStatus", mock.Anything, "req-1", slot.RequestRejected).
		Return(storeErr).
		Once()

	if err := service.RejectRequest(ctx, "slot-1", "req-1"); !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
