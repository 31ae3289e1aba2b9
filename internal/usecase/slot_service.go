package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agsa/field-scheduler/internal/domain/league"
	"github.com/agsa/field-scheduler/internal/domain/slot"
	"github.com/agsa/field-scheduler/internal/platform/id"
	"github.com/agsa/field-scheduler/internal/platform/logging"
)

const (
	casRetryAttempts = 3
	casRetryBaseWait = 25 * time.Millisecond
)

type CreateSlotInput struct {
	LeagueID        string
	Division        string
	FieldKey        string
	Date            time.Time
	StartMinutes    int
	EndMinutes      int
	OfferingTeamID  string
	GameType        string
	Notes           string
	IsAvailability  bool
	IsExternalOffer bool
}

type SlotService struct {
	slotRepo    slot.Repository
	requestRepo slot.RequestRepository
	leagueRepo  league.Repository
	idGen       id.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewSlotService(
	slotRepo slot.Repository,
	requestRepo slot.RequestRepository,
	leagueRepo league.Repository,
	idGen id.Generator,
	logger *logging.Logger,
) *SlotService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &SlotService{
		slotRepo:    slotRepo,
		requestRepo: requestRepo,
		leagueRepo:  leagueRepo,
		idGen:       idGen,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *SlotService) GetSlot(ctx context.Context, slotID string) (slot.Slot, bool, error) {
	slotID = strings.TrimSpace(slotID)
	if slotID == "" {
		return slot.Slot{}, false, fmt.Errorf("%w: slot id is required", ErrInvalidInput)
	}

	item, exists, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		return slot.Slot{}, false, fmt.Errorf("get slot by id: %w", err)
	}
	return item, exists, nil
}

func (s *SlotService) ListSlots(ctx context.Context, filter slot.Filter) ([]slot.Slot, error) {
	filter.LeagueID = strings.TrimSpace(filter.LeagueID)
	if filter.LeagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	items, err := s.slotRepo.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query slots: %w", err)
	}
	return items, nil
}

// CreateSlot persists a new slot after checking it against every live slot
// on the same field and date. The slot id is derived from the identifying
// fields, so submitting the same window twice fails as a duplicate rather
// than silently booking the field twice.
func (s *SlotService) CreateSlot(ctx context.Context, input CreateSlotInput) (slot.Slot, error) {
	ctx, span := startUsecaseSpan(ctx, "SlotService.CreateSlot")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.Division = strings.TrimSpace(input.Division)
	input.FieldKey = strings.TrimSpace(input.FieldKey)
	input.OfferingTeamID = strings.TrimSpace(input.OfferingTeamID)

	if input.LeagueID == "" {
		return slot.Slot{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if input.Division == "" {
		return slot.Slot{}, fmt.Errorf("%w: division is required", ErrInvalidInput)
	}
	if input.FieldKey == "" {
		return slot.Slot{}, fmt.Errorf("%w: field key is required", ErrInvalidInput)
	}
	if input.Date.IsZero() {
		return slot.Slot{}, fmt.Errorf("%w: game date is required", ErrInvalidInput)
	}
	if input.StartMinutes >= input.EndMinutes {
		return slot.Slot{}, fmt.Errorf("%w: start time must be before end time", ErrInvalidInput)
	}

	item, exists, err := s.leagueRepo.GetByID(ctx, input.LeagueID)
	if err != nil {
		return slot.Slot{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return slot.Slot{}, fmt.Errorf("%w: league %s", ErrNotFound, input.LeagueID)
	}
	if !item.HasDivision(input.Division) {
		return slot.Slot{}, fmt.Errorf("%w: division %s is not configured for league %s", ErrInvalidInput, input.Division, input.LeagueID)
	}

	slotID := slot.DeterministicID(
		input.LeagueID, input.Division, input.FieldKey,
		input.Date, input.StartMinutes, input.EndMinutes, input.OfferingTeamID,
	)
	if _, exists, err := s.slotRepo.GetByID(ctx, slotID); err != nil {
		return slot.Slot{}, fmt.Errorf("check duplicate slot: %w", err)
	} else if exists {
		return slot.Slot{}, fmt.Errorf("%w: identical slot already exists", ErrSlotConflict)
	}

	sameDay, err := s.slotRepo.Query(ctx, slot.Filter{
		LeagueID: input.LeagueID,
		FieldKey: input.FieldKey,
		DateFrom: input.Date,
		DateTo:   input.Date,
	})
	if err != nil {
		return slot.Slot{}, fmt.Errorf("query slots for conflict check: %w", err)
	}

	token, err := s.idGen.NewID()
	if err != nil {
		return slot.Slot{}, fmt.Errorf("generate slot token: %w", err)
	}

	now := s.now().UTC()
	created := slot.Slot{
		ID:              slotID,
		LeagueID:        input.LeagueID,
		Division:        input.Division,
		FieldKey:        input.FieldKey,
		Date:            input.Date,
		StartMinutes:    input.StartMinutes,
		EndMinutes:      input.EndMinutes,
		OfferingTeamID:  input.OfferingTeamID,
		Status:          slot.StatusOpen,
		IsAvailability:  input.IsAvailability,
		IsExternalOffer: input.IsExternalOffer,
		GameType:        strings.TrimSpace(input.GameType),
		Notes:           strings.TrimSpace(input.Notes),
		Token:           token,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for _, other := range sameDay {
		if created.OverlapsSlot(other) {
			return slot.Slot{}, fmt.Errorf(
				"%w: field %s already booked on %s between %s and %s",
				ErrSlotConflict, other.FieldKey, slot.FormatDate(other.Date),
				slot.FormatClock(other.StartMinutes), slot.FormatClock(other.EndMinutes),
			)
		}
	}

	if err := s.slotRepo.Create(ctx, created); err != nil {
		return slot.Slot{}, fmt.Errorf("create slot: %w", err)
	}

	s.logger.InfoContext(ctx, "slot created",
		"slotId", created.ID,
		"leagueId", created.LeagueID,
		"fieldKey", created.FieldKey,
		"gameDate", slot.FormatDate(created.Date),
	)
	return created, nil
}

// RequestSlot records a team's claim on an open or pending slot. The first
// request moves the slot to Pending; later requests queue behind it until
// one is approved.
func (s *SlotService) RequestSlot(ctx context.Context, slotID, teamID string) (slot.Request, error) {
	ctx, span := startUsecaseSpan(ctx, "SlotService.RequestSlot")
	defer span.End()

	slotID = strings.TrimSpace(slotID)
	teamID = strings.TrimSpace(teamID)
	if slotID == "" || teamID == "" {
		return slot.Request{}, fmt.Errorf("%w: slot id and team id are required", ErrInvalidInput)
	}

	current, exists, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		return slot.Request{}, fmt.Errorf("get slot: %w", err)
	}
	if !exists {
		return slot.Request{}, fmt.Errorf("%w: slot %s", ErrNotFound, slotID)
	}
	if current.OfferingTeamID == teamID {
		return slot.Request{}, fmt.Errorf("%w: team %s offered this slot", ErrSelfRequest, teamID)
	}
	if current.Status != slot.StatusOpen && current.Status != slot.StatusPending {
		return slot.Request{}, fmt.Errorf("%w: slot is %s", ErrInvalidState, current.Status)
	}

	existing, err := s.requestRepo.ListBySlot(ctx, slotID)
	if err != nil {
		return slot.Request{}, fmt.Errorf("list slot requests: %w", err)
	}
	for _, req := range existing {
		if req.RequestingTeamID == teamID && req.Status == slot.RequestPending {
			return req, nil
		}
	}

	if current.Status == slot.StatusOpen {
		pending := slot.StatusPending
		if _, err := s.updateSlotWithRetry(ctx, slotID, func(cur slot.Slot) (slot.Patch, bool, error) {
			switch cur.Status {
			case slot.StatusOpen:
				return slot.Patch{Status: &pending}, true, nil
			case slot.StatusPending:
				return slot.Patch{}, false, nil
			default:
				return slot.Patch{}, false, fmt.Errorf("%w: slot is %s", ErrInvalidState, cur.Status)
			}
		}); err != nil {
			return slot.Request{}, err
		}
	}

	requestID, err := s.idGen.NewID()
	if err != nil {
		return slot.Request{}, fmt.Errorf("generate request id: %w", err)
	}
	created := slot.Request{
		ID:               requestID,
		SlotID:           slotID,
		RequestingTeamID: teamID,
		Status:           slot.RequestPending,
		RequestedAt:      s.now().UTC(),
	}
	if err := s.requestRepo.Create(ctx, created); err != nil {
		return slot.Request{}, fmt.Errorf("create slot request: %w", err)
	}

	s.logger.InfoContext(ctx, "slot requested", "slotId", slotID, "teamId", teamID, "requestId", requestID)
	return created, nil
}

// ApproveRequest confirms the slot for the requesting team and rejects
// every other pending request on the slot. Re-approving an already
// approved request is a no-op returning the confirmed slot; losing the
// race to a different request surfaces as ErrConflict.
func (s *SlotService) ApproveRequest(ctx context.Context, slotID, requestID string) (slot.Slot, error) {
	ctx, span := startUsecaseSpan(ctx, "SlotService.ApproveRequest")
	defer span.End()

	slotID = strings.TrimSpace(slotID)
	requestID = strings.TrimSpace(requestID)
	if slotID == "" || requestID == "" {
		return slot.Slot{}, fmt.Errorf("%w: slot id and request id are required", ErrInvalidInput)
	}

	req, exists, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return slot.Slot{}, fmt.Errorf("get slot request: %w", err)
	}
	if !exists || req.SlotID != slotID {
		return slot.Slot{}, fmt.Errorf("%w: request %s on slot %s", ErrNotFound, requestID, slotID)
	}
	if req.Status == slot.RequestRejected {
		return slot.Slot{}, fmt.Errorf("%w: request was already rejected", ErrInvalidState)
	}

	confirmed := slot.StatusConfirmed
	updated, err := s.updateSlotWithRetry(ctx, req.SlotID, func(cur slot.Slot) (slot.Patch, bool, error) {
		if cur.Status == slot.StatusConfirmed {
			if req.Status == slot.RequestApproved && cur.ConfirmedTeamID == req.RequestingTeamID {
				return slot.Patch{}, false, nil
			}
			return slot.Patch{}, false, fmt.Errorf("%w: slot was confirmed through a different request", ErrConflict)
		}
		if !cur.Status.CanTransitionTo(slot.StatusConfirmed) {
			return slot.Patch{}, false, fmt.Errorf("%w: slot is %s", ErrInvalidState, cur.Status)
		}
		patch := slot.Patch{
			Status:          &confirmed,
			ConfirmedTeamID: &req.RequestingTeamID,
			AwayTeamID:      &req.RequestingTeamID,
		}
		if cur.OfferingTeamID != "" {
			patch.HomeTeamID = &cur.OfferingTeamID
		}
		return patch, true, nil
	})
	if err != nil {
		return slot.Slot{}, err
	}

	if req.Status != slot.RequestApproved {
		if err := s.requestRepo.UpdateStatus(ctx, req.ID, slot.RequestApproved); err != nil {
			return slot.Slot{}, fmt.Errorf("mark request approved: %w", err)
		}
	}

	siblings, err := s.requestRepo.ListBySlot(ctx, req.SlotID)
	if err != nil {
		return slot.Slot{}, fmt.Errorf("list sibling requests: %w", err)
	}
	for _, sibling := range siblings {
		if sibling.ID == req.ID || sibling.Status != slot.RequestPending {
			continue
		}
		if err := s.requestRepo.UpdateStatus(ctx, sibling.ID, slot.RequestRejected); err != nil {
			return slot.Slot{}, fmt.Errorf("reject sibling request %s: %w", sibling.ID, err)
		}
	}

	s.logger.InfoContext(ctx, "slot request approved",
		"slotId", req.SlotID,
		"requestId", req.ID,
		"teamId", req.RequestingTeamID,
	)
	return updated, nil
}

// RejectRequest marks a pending request rejected. The slot stays where it
// is; a Pending slot can still be confirmed through another request.
func (s *SlotService) RejectRequest(ctx context.Context, slotID, requestID string) error {
	slotID = strings.TrimSpace(slotID)
	requestID = strings.TrimSpace(requestID)
	if slotID == "" || requestID == "" {
		return fmt.Errorf("%w: slot id and request id are required", ErrInvalidInput)
	}

	req, exists, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("get slot request: %w", err)
	}
	if !exists || req.SlotID != slotID {
		return fmt.Errorf("%w: request %s on slot %s", ErrNotFound, requestID, slotID)
	}
	switch req.Status {
	case slot.RequestRejected:
		return nil
	case slot.RequestApproved:
		return fmt.Errorf("%w: request was already approved", ErrInvalidState)
	}

	if err := s.requestRepo.UpdateStatus(ctx, req.ID, slot.RequestRejected); err != nil {
		return fmt.Errorf("mark request rejected: %w", err)
	}
	return nil
}

func (s *SlotService) ListRequests(ctx context.Context, slotID string) ([]slot.Request, error) {
	slotID = strings.TrimSpace(slotID)
	if slotID == "" {
		return nil, fmt.Errorf("%w: slot id is required", ErrInvalidInput)
	}

	items, err := s.requestRepo.ListBySlot(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("list slot requests: %w", err)
	}
	return items, nil
}

// CancelSlot moves the slot to Cancelled. Requests still pending stay on
// record untouched; the cancelled slot simply accepts no more approvals.
// Cancelling an already cancelled slot is a no-op.
func (s *SlotService) CancelSlot(ctx context.Context, slotID string) (slot.Slot, error) {
	ctx, span := startUsecaseSpan(ctx, "SlotService.CancelSlot")
	defer span.End()

	slotID = strings.TrimSpace(slotID)
	if slotID == "" {
		return slot.Slot{}, fmt.Errorf("%w: slot id is required", ErrInvalidInput)
	}

	cancelled := slot.StatusCancelled
	updated, err := s.updateSlotWithRetry(ctx, slotID, func(cur slot.Slot) (slot.Patch, bool, error) {
		switch {
		case cur.Status == slot.StatusCancelled:
			return slot.Patch{}, false, nil
		case cur.Status.CanTransitionTo(slot.StatusCancelled):
			return slot.Patch{Status: &cancelled}, true, nil
		default:
			return slot.Patch{}, false, fmt.Errorf("%w: slot is %s", ErrInvalidState, cur.Status)
		}
	})
	if err != nil {
		return slot.Slot{}, err
	}

	s.logger.InfoContext(ctx, "slot cancelled", "slotId", slotID)
	return updated, nil
}

// updateSlotWithRetry runs one compare-and-swap cycle: read the slot, let
// decide build a patch against the fresh state, write it with the read
// token. A stale token re-reads and retries with doubling backoff; after
// the final attempt the caller gets ErrConflict. decide returning apply
// false means the slot is already in the desired state.
func (s *SlotService) updateSlotWithRetry(
	ctx context.Context,
	slotID string,
	decide func(current slot.Slot) (slot.Patch, bool, error),
) (slot.Slot, error) {
	wait := casRetryBaseWait
	for attempt := 1; attempt <= casRetryAttempts; attempt++ {
		current, exists, err := s.slotRepo.GetByID(ctx, slotID)
		if err != nil {
			return slot.Slot{}, fmt.Errorf("get slot for update: %w", err)
		}
		if !exists {
			return slot.Slot{}, fmt.Errorf("%w: slot %s", ErrNotFound, slotID)
		}

		patch, apply, err := decide(current)
		if err != nil {
			return slot.Slot{}, err
		}
		if !apply {
			return current, nil
		}

		updated, ok, err := s.slotRepo.UpdateWithToken(ctx, slotID, current.Token, patch)
		if err != nil {
			return slot.Slot{}, fmt.Errorf("update slot: %w", err)
		}
		if ok {
			return updated, nil
		}

		if attempt == casRetryAttempts {
			break
		}
		s.logger.WarnContext(ctx, "slot token stale, retrying", "slotId", slotID, "attempt", attempt)
		select {
		case <-ctx.Done():
			return slot.Slot{}, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return slot.Slot{}, fmt.Errorf("%w: slot %s kept changing during update", ErrConflict, slotID)
}
