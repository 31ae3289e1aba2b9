package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agsa/field-scheduler/internal/domain/availability"
	"github.com/agsa/field-scheduler/internal/domain/league"
	"github.com/agsa/field-scheduler/internal/domain/slot"
	"github.com/agsa/field-scheduler/internal/platform/cache"
	"github.com/agsa/field-scheduler/internal/platform/id"
	"github.com/agsa/field-scheduler/internal/platform/logging"
)

type PreviewAvailabilityInput struct {
	LeagueID string
	Division string
	From     time.Time
	To       time.Time
}

type CreateRuleInput struct {
	LeagueID     string
	Division     string
	FieldKey     string
	StartsOn     time.Time
	EndsOn       time.Time
	DaysOfWeek   []time.Weekday
	StartMinutes int
	EndMinutes   int
}

type CreateExceptionInput struct {
	RuleID       string
	StartsOn     time.Time
	EndsOn       time.Time
	StartMinutes int
	EndMinutes   int
	Reason       string
}

type AvailabilityService struct {
	ruleRepo   availability.RuleRepository
	slotRepo   slot.Repository
	leagueRepo league.Repository
	idGen      id.Generator
	cache      *cache.Store
	logger     *logging.Logger
	now        func() time.Time
}

func NewAvailabilityService(
	ruleRepo availability.RuleRepository,
	slotRepo slot.Repository,
	leagueRepo league.Repository,
	idGen id.Generator,
	previewCache *cache.Store,
	logger *logging.Logger,
) *AvailabilityService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &AvailabilityService{
		ruleRepo:   ruleRepo,
		slotRepo:   slotRepo,
		leagueRepo: leagueRepo,
		idGen:      idGen,
		cache:      previewCache,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *AvailabilityService) CreateRule(ctx context.Context, input CreateRuleInput) (availability.Rule, error) {
	ctx, span := startUsecaseSpan(ctx, "AvailabilityService.CreateRule")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.Division = strings.TrimSpace(input.Division)
	input.FieldKey = strings.TrimSpace(input.FieldKey)
	if input.LeagueID == "" || input.Division == "" {
		return availability.Rule{}, fmt.Errorf("%w: league id and division are required", ErrInvalidInput)
	}

	item, exists, err := s.leagueRepo.GetByID(ctx, input.LeagueID)
	if err != nil {
		return availability.Rule{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return availability.Rule{}, fmt.Errorf("%w: league %s", ErrNotFound, input.LeagueID)
	}
	if !item.HasDivision(input.Division) {
		return availability.Rule{}, fmt.Errorf("%w: division %s is not configured for league %s", ErrInvalidInput, input.Division, input.LeagueID)
	}

	ruleID, err := s.idGen.NewID()
	if err != nil {
		return availability.Rule{}, fmt.Errorf("generate rule id: %w", err)
	}
	rule := availability.Rule{
		ID:           ruleID,
		LeagueID:     input.LeagueID,
		Division:     input.Division,
		FieldKey:     input.FieldKey,
		StartsOn:     input.StartsOn,
		EndsOn:       input.EndsOn,
		DaysOfWeek:   input.DaysOfWeek,
		StartMinutes: input.StartMinutes,
		EndMinutes:   input.EndMinutes,
		Active:       true,
	}
	if err := rule.Validate(); err != nil {
		return availability.Rule{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return availability.Rule{}, fmt.Errorf("create availability rule: %w", err)
	}
	s.invalidatePreview(ctx, rule.LeagueID, rule.Division)

	s.logger.InfoContext(ctx, "availability rule created",
		"ruleId", rule.ID,
		"leagueId", rule.LeagueID,
		"division", rule.Division,
		"fieldKey", rule.FieldKey,
	)
	return rule, nil
}

func (s *AvailabilityService) CreateException(ctx context.Context, input CreateExceptionInput) (availability.Exception, error) {
	ctx, span := startUsecaseSpan(ctx, "AvailabilityService.CreateException")
	defer span.End()

	input.RuleID = strings.TrimSpace(input.RuleID)
	if input.RuleID == "" {
		return availability.Exception{}, fmt.Errorf("%w: rule id is required", ErrInvalidInput)
	}
	if input.StartsOn.After(input.EndsOn) {
		return availability.Exception{}, fmt.Errorf("%w: exception starts after it ends", ErrInvalidInput)
	}

	rule, exists, err := s.ruleRepo.GetByID(ctx, input.RuleID)
	if err != nil {
		return availability.Exception{}, fmt.Errorf("get availability rule: %w", err)
	}
	if !exists {
		return availability.Exception{}, fmt.Errorf("%w: rule %s", ErrNotFound, input.RuleID)
	}

	exceptionID, err := s.idGen.NewID()
	if err != nil {
		return availability.Exception{}, fmt.Errorf("generate exception id: %w", err)
	}
	exception := availability.Exception{
		ID:           exceptionID,
		RuleID:       rule.ID,
		StartsOn:     input.StartsOn,
		EndsOn:       input.EndsOn,
		StartMinutes: input.StartMinutes,
		EndMinutes:   input.EndMinutes,
		Reason:       strings.TrimSpace(input.Reason),
	}
	if err := s.ruleRepo.CreateException(ctx, exception); err != nil {
		return availability.Exception{}, fmt.Errorf("create availability exception: %w", err)
	}
	s.invalidatePreview(ctx, rule.LeagueID, rule.Division)

	return exception, nil
}

// PreviewAvailability expands every active rule in the division into
// candidate slots, carves out rule exceptions and league blackouts, and
// drops any candidate that collides with a live persisted slot. Results
// are cached per league, division and window.
func (s *AvailabilityService) PreviewAvailability(ctx context.Context, input PreviewAvailabilityInput) ([]availability.CandidateSlot, error) {
	ctx, span := startUsecaseSpan(ctx, "AvailabilityService.PreviewAvailability")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.Division = strings.TrimSpace(input.Division)
	if input.LeagueID == "" || input.Division == "" {
		return nil, fmt.Errorf("%w: league id and division are required", ErrInvalidInput)
	}
	if input.From.IsZero() || input.To.IsZero() || input.From.After(input.To) {
		return nil, fmt.Errorf("%w: a valid date range is required", ErrInvalidInput)
	}

	if s.cache == nil {
		return s.expandDivision(ctx, input)
	}

	key := previewCacheKey(input)
	value, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return s.expandDivision(ctx, input)
	})
	if err != nil {
		return nil, err
	}
	candidates, ok := value.([]availability.CandidateSlot)
	if !ok {
		return nil, fmt.Errorf("unexpected cached preview type %T", value)
	}
	return candidates, nil
}

func (s *AvailabilityService) expandDivision(ctx context.Context, input PreviewAvailabilityInput) ([]availability.CandidateSlot, error) {
	item, exists, err := s.leagueRepo.GetByID(ctx, input.LeagueID)
	if err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: league %s", ErrNotFound, input.LeagueID)
	}
	if !item.HasDivision(input.Division) {
		return nil, fmt.Errorf("%w: division %s is not configured for league %s", ErrInvalidInput, input.Division, input.LeagueID)
	}
	gameLength := item.GameLengthMinutes
	if gameLength <= 0 {
		return nil, fmt.Errorf("%w: league %s has no game length configured", ErrInvalidInput, input.LeagueID)
	}

	rules, err := s.ruleRepo.ListByDivision(ctx, input.LeagueID, input.Division)
	if err != nil {
		return nil, fmt.Errorf("list availability rules: %w", err)
	}

	var candidates []availability.CandidateSlot
	for _, rule := range rules {
		exceptions, err := s.ruleRepo.ListExceptionsByRule(ctx, rule.ID)
		if err != nil {
			return nil, fmt.Errorf("list exceptions for rule %s: %w", rule.ID, err)
		}
		exceptions = append(exceptions, blackoutExceptions(rule.ID, item.Blackouts)...)

		expanded, err := availability.Expand(rule, exceptions, input.From, input.To, gameLength)
		if err != nil {
			return nil, fmt.Errorf("expand rule %s: %w", rule.ID, err)
		}
		candidates = append(candidates, expanded...)
	}

	booked, err := s.slotRepo.Query(ctx, slot.Filter{
		LeagueID: input.LeagueID,
		DateFrom: input.From,
		DateTo:   input.To,
	})
	if err != nil {
		return nil, fmt.Errorf("query booked slots: %w", err)
	}

	free := candidates[:0]
	for _, candidate := range candidates {
		if candidateIsBooked(candidate, booked) {
			continue
		}
		free = append(free, candidate)
	}

	sort.Slice(free, func(i, j int) bool {
		if !free[i].Date.Equal(free[j].Date) {
			return free[i].Date.Before(free[j].Date)
		}
		if free[i].StartMinutes != free[j].StartMinutes {
			return free[i].StartMinutes < free[j].StartMinutes
		}
		return free[i].FieldKey < free[j].FieldKey
	})
	return free, nil
}

func (s *AvailabilityService) invalidatePreview(ctx context.Context, leagueID, division string) {
	if s.cache == nil {
		return
	}
	s.cache.DeletePrefix(ctx, "availability:"+leagueID+":"+division+":")
}

func previewCacheKey(input PreviewAvailabilityInput) string {
	return fmt.Sprintf("availability:%s:%s:%s:%s",
		input.LeagueID, input.Division,
		slot.FormatDate(input.From), slot.FormatDate(input.To),
	)
}

// blackoutExceptions lifts league-wide blackout ranges into whole-day rule
// exceptions so the expander treats them like any other carve-out.
func blackoutExceptions(ruleID string, blackouts []league.Blackout) []availability.Exception {
	out := make([]availability.Exception, 0, len(blackouts))
	for _, blackout := range blackouts {
		out = append(out, availability.Exception{
			RuleID:   ruleID,
			StartsOn: blackout.StartsOn,
			EndsOn:   blackout.EndsOn,
			Reason:   blackout.Reason,
		})
	}
	return out
}

func candidateIsBooked(candidate availability.CandidateSlot, booked []slot.Slot) bool {
	for _, other := range booked {
		if other.Status == slot.StatusCancelled {
			continue
		}
		if other.FieldKey != candidate.FieldKey || !other.Date.Equal(candidate.Date) {
			continue
		}
		if slot.Overlaps(candidate.StartMinutes, candidate.EndMinutes, other.StartMinutes, other.EndMinutes) {
			return true
		}
	}
	return false
}
