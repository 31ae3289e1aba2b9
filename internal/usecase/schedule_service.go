package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/agsa/field-scheduler/internal/domain/league"
	"github.com/agsa/field-scheduler/internal/domain/matchup"
	"github.com/agsa/field-scheduler/internal/domain/schedule"
	"github.com/agsa/field-scheduler/internal/domain/slot"
	"github.com/agsa/field-scheduler/internal/domain/team"
	"github.com/agsa/field-scheduler/internal/platform/id"
	"github.com/agsa/field-scheduler/internal/platform/logging"
)

const (
	seasonPreviewMaxWorkers   = 4
	divisionSweepMaxWorkers   = 4
	divisionSweepMinDivisions = 1
)

type ScheduleRequest struct {
	LeagueID string
	Division string
	From     time.Time
	To       time.Time
	Phase    matchup.Phase
	// Phases is the season wizard's phase chain. Only PreviewSeason reads
	// it; empty means a single run over From/To with Phase.
	Phases                []SeasonPhaseWindow
	IncludeExternalOffers bool
	Constraints           schedule.Constraints
}

// SeasonPhaseWindow binds one season phase to its own date range. Windows
// must not overlap so every phase draws from its own slot pool.
type SeasonPhaseWindow struct {
	Phase matchup.Phase
	From  time.Time
	To    time.Time
}

// ScheduleAppliedEvent is published after a schedule run is committed.
type ScheduleAppliedEvent struct {
	RunID        string    `json:"runId"`
	LeagueID     string    `json:"leagueId"`
	Division     string    `json:"division"`
	GamesCreated int       `json:"gamesCreated"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// EventPublisher delivers schedule lifecycle events to external listeners.
type EventPublisher interface {
	PublishScheduleApplied(ctx context.Context, event ScheduleAppliedEvent) error
}

type ApplyResult struct {
	Run     schedule.Run
	Preview schedule.PreviewResult
}

// PhasePreview is the assignment outcome of one phase window.
type PhasePreview struct {
	Phase  matchup.Phase
	From   time.Time
	To     time.Time
	Result schedule.PreviewResult
}

// SeasonSummary adds up the phase results of one division.
type SeasonSummary struct {
	MatchupsTotal    int
	MatchupsAssigned int
	SlotsTotal       int
	SlotsUsed        int
}

type DivisionPreview struct {
	Division string
	Phases   []PhasePreview
	Summary  SeasonSummary
}

type DivisionValidation struct {
	Division string
	Issues   []schedule.Issue
	Error    string
}

type ScheduleService struct {
	slotRepo   slot.Repository
	teamRepo   team.Repository
	leagueRepo league.Repository
	runRepo    schedule.RunRepository
	avail      *AvailabilityService
	idGen      id.Generator
	publisher  EventPublisher
	logger     *logging.Logger
	now        func() time.Time
}

func NewScheduleService(
	slotRepo slot.Repository,
	teamRepo team.Repository,
	leagueRepo league.Repository,
	runRepo schedule.RunRepository,
	avail *AvailabilityService,
	idGen id.Generator,
	logger *logging.Logger,
) *ScheduleService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ScheduleService{
		slotRepo:   slotRepo,
		teamRepo:   teamRepo,
		leagueRepo: leagueRepo,
		runRepo:    runRepo,
		avail:      avail,
		idGen:      idGen,
		logger:     logger,
		now:        time.Now,
	}
}

// SetEventPublisher wires the outbound event channel. Publishing is best
// effort; apply never fails because a listener is down.
func (s *ScheduleService) SetEventPublisher(publisher EventPublisher) {
	s.publisher = publisher
}

// Preview generates matchups for the division, expands availability into
// candidate slots and runs the greedy assignment. Nothing is persisted.
func (s *ScheduleService) Preview(ctx context.Context, req ScheduleRequest) (schedule.PreviewResult, error) {
	ctx, span := startUsecaseSpan(ctx, "ScheduleService.Preview")
	defer span.End()

	req, err := s.normalizeRequest(req)
	if err != nil {
		return schedule.PreviewResult{}, err
	}

	teams, err := s.teamRepo.ListByDivision(ctx, req.LeagueID, req.Division)
	if err != nil {
		return schedule.PreviewResult{}, fmt.Errorf("list division teams: %w", err)
	}
	teamIDs := make([]string, 0, len(teams))
	for _, item := range teams {
		teamIDs = append(teamIDs, item.ID)
	}

	matchups, err := matchup.Generate(matchup.GenerateInput{
		TeamIDs:               teamIDs,
		MinGamesPerTeam:       req.Constraints.MinGamesPerTeam,
		Phase:                 req.Phase,
		IncludeExternalOffers: req.IncludeExternalOffers,
	})
	if err != nil {
		return schedule.PreviewResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	candidates, err := s.avail.PreviewAvailability(ctx, PreviewAvailabilityInput{
		LeagueID: req.LeagueID,
		Division: req.Division,
		From:     req.From,
		To:       req.To,
	})
	if err != nil {
		return schedule.PreviewResult{}, err
	}

	return schedule.Assign(matchups, candidates, req.Constraints), nil
}

// Apply runs Preview, validates the prospective games and, only when no
// error-severity issue remains, books every assignment as a Confirmed slot
// and records an audit run. Any booking failure rolls the created slots
// back so a run is all or nothing.
func (s *ScheduleService) Apply(ctx context.Context, req ScheduleRequest) (ApplyResult, error) {
	ctx, span := startUsecaseSpan(ctx, "ScheduleService.Apply")
	defer span.End()

	req, err := s.normalizeRequest(req)
	if err != nil {
		return ApplyResult{}, err
	}

	preview, err := s.Preview(ctx, req)
	if err != nil {
		return ApplyResult{}, err
	}

	games := make([]schedule.Game, 0, len(preview.Assignments))
	for _, a := range preview.Assignments {
		games = append(games, schedule.Game{
			SlotID:        s.assignmentSlotID(req.LeagueID, a),
			FieldKey:      a.Slot.FieldKey,
			Date:          a.Slot.Date,
			StartMinutes:  a.Slot.StartMinutes,
			EndMinutes:    a.Slot.EndMinutes,
			HomeTeamID:    a.Matchup.HomeTeamID,
			AwayTeamID:    a.Matchup.AwayTeamID,
			Status:        slot.StatusConfirmed,
			ExternalOffer: a.Matchup.ExternalOffer,
		})
	}

	issues := schedule.Validate(games, schedule.ValidateInput{
		MaxGamesPerWeek:    req.Constraints.MaxGamesPerWeek,
		MinGamesPerTeam:    req.Constraints.MinGamesPerTeam,
		UnassignedMatchups: preview.UnassignedMatchups,
	})
	preview.Failures = append(preview.Failures, issues...)
	if schedule.HasErrors(issues) {
		return ApplyResult{Preview: preview}, fmt.Errorf(
			"%w: %d blocking issues", ErrScheduleValidationFailed, countErrors(issues),
		)
	}

	created, err := s.bookAssignments(ctx, req, preview.Assignments)
	if err != nil {
		return ApplyResult{Preview: preview}, err
	}

	runID, err := s.idGen.NewID()
	if err != nil {
		return ApplyResult{Preview: preview}, fmt.Errorf("generate run id: %w", err)
	}
	run := schedule.Run{
		ID:               runID,
		LeagueID:         req.LeagueID,
		Division:         req.Division,
		MatchupsTotal:    len(preview.Assignments) + len(preview.UnassignedMatchups),
		MatchupsAssigned: len(preview.Assignments),
		SlotsTotal:       len(preview.Assignments) + len(preview.UnassignedSlots),
		SlotsUsed:        len(preview.Assignments),
		Failures:         preview.Failures,
		CreatedAt:        s.now().UTC(),
	}
	for i, a := range preview.Assignments {
		run.Assignments = append(run.Assignments, schedule.RunAssignment{
			SlotID:        created[i],
			FieldKey:      a.Slot.FieldKey,
			Date:          a.Slot.Date,
			StartMinutes:  a.Slot.StartMinutes,
			EndMinutes:    a.Slot.EndMinutes,
			HomeTeamID:    a.Matchup.HomeTeamID,
			AwayTeamID:    a.Matchup.AwayTeamID,
			Phase:         a.Matchup.Phase,
			ExternalOffer: a.Matchup.ExternalOffer,
		})
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		return ApplyResult{Preview: preview}, fmt.Errorf("record schedule run: %w", err)
	}

	s.avail.invalidatePreview(ctx, req.LeagueID, req.Division)
	s.publishApplied(ctx, run)

	s.logger.InfoContext(ctx, "schedule applied",
		"runId", run.ID,
		"leagueId", run.LeagueID,
		"division", run.Division,
		"gamesCreated", run.MatchupsAssigned,
	)
	return ApplyResult{Run: run, Preview: preview}, nil
}

// ValidateDivision checks the persisted schedule of one division against
// the season constraints and returns the sorted issue list.
func (s *ScheduleService) ValidateDivision(ctx context.Context, req ScheduleRequest) ([]schedule.Issue, error) {
	ctx, span := startUsecaseSpan(ctx, "ScheduleService.ValidateDivision")
	defer span.End()

	req, err := s.normalizeRequest(req)
	if err != nil {
		return nil, err
	}

	slots, err := s.slotRepo.Query(ctx, slot.Filter{
		LeagueID: req.LeagueID,
		Division: req.Division,
		DateFrom: req.From,
		DateTo:   req.To,
	})
	if err != nil {
		return nil, fmt.Errorf("query division slots: %w", err)
	}

	games := make([]schedule.Game, 0, len(slots))
	for _, item := range slots {
		games = append(games, schedule.Game{
			SlotID:        item.ID,
			FieldKey:      item.FieldKey,
			Date:          item.Date,
			StartMinutes:  item.StartMinutes,
			EndMinutes:    item.EndMinutes,
			HomeTeamID:    item.HomeTeamID,
			AwayTeamID:    item.AwayTeamID,
			Status:        item.Status,
			ExternalOffer: item.IsExternalOffer,
		})
	}

	return schedule.Validate(games, schedule.ValidateInput{
		MaxGamesPerWeek: req.Constraints.MaxGamesPerWeek,
		MinGamesPerTeam: req.Constraints.MinGamesPerTeam,
	}), nil
}

// PreviewSeason chains one assignment run per phase window over every
// division of the league. Divisions run concurrently; within a division
// the phases run in order, each drawing candidates from its own date
// window, and the per-phase results are added up into the division
// summary. Nothing is persisted.
func (s *ScheduleService) PreviewSeason(ctx context.Context, req ScheduleRequest) ([]DivisionPreview, error) {
	ctx, span := startUsecaseSpan(ctx, "ScheduleService.PreviewSeason")
	defer span.End()

	req.LeagueID = strings.TrimSpace(req.LeagueID)
	if req.LeagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	windows, err := seasonWindows(req)
	if err != nil {
		return nil, err
	}

	item, exists, err := s.leagueRepo.GetByID(ctx, req.LeagueID)
	if err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: league %s", ErrNotFound, req.LeagueID)
	}
	if len(item.Divisions) == 0 {
		return nil, fmt.Errorf("%w: league %s has no divisions", ErrInvalidInput, req.LeagueID)
	}

	var mu sync.Mutex
	previews := make([]DivisionPreview, 0, len(item.Divisions))

	workers := pool.New().WithContext(ctx).WithMaxGoroutines(seasonPreviewMaxWorkers)
	for _, division := range item.Divisions {
		division := division
		workers.Go(func(ctx context.Context) error {
			preview, err := s.previewDivisionSeason(ctx, req, division, windows)
			if err != nil {
				return err
			}
			mu.Lock()
			previews = append(previews, preview)
			mu.Unlock()
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(previews, func(i, j int) bool { return previews[i].Division < previews[j].Division })
	return previews, nil
}

// previewDivisionSeason runs the phase chain for one division. Each phase
// generates its own matchup set and is assigned only candidates from its
// own window.
func (s *ScheduleService) previewDivisionSeason(ctx context.Context, req ScheduleRequest, division string, windows []SeasonPhaseWindow) (DivisionPreview, error) {
	preview := DivisionPreview{Division: division}
	for _, window := range windows {
		phaseReq := req
		phaseReq.Division = division
		phaseReq.Phase = window.Phase
		phaseReq.From = window.From
		phaseReq.To = window.To
		result, err := s.Preview(ctx, phaseReq)
		if err != nil {
			return DivisionPreview{}, fmt.Errorf("preview division %s phase %s: %w", division, window.Phase, err)
		}
		preview.Phases = append(preview.Phases, PhasePreview{
			Phase:  window.Phase,
			From:   window.From,
			To:     window.To,
			Result: result,
		})
		preview.Summary.MatchupsTotal += len(result.Assignments) + len(result.UnassignedMatchups)
		preview.Summary.MatchupsAssigned += len(result.Assignments)
		preview.Summary.SlotsTotal += len(result.Assignments) + len(result.UnassignedSlots)
		preview.Summary.SlotsUsed += len(result.Assignments)
	}
	return preview, nil
}

// seasonWindows resolves the phase chain for a season preview. A request
// without explicit phases falls back to a single window over From/To.
func seasonWindows(req ScheduleRequest) ([]SeasonPhaseWindow, error) {
	windows := req.Phases
	if len(windows) == 0 {
		phase := req.Phase
		if phase == "" {
			phase = matchup.PhaseRegularSeason
		}
		windows = []SeasonPhaseWindow{{Phase: phase, From: req.From, To: req.To}}
	}
	for i, window := range windows {
		if !window.Phase.Valid() {
			return nil, fmt.Errorf("%w: unknown phase %q", ErrInvalidInput, window.Phase)
		}
		if window.From.IsZero() || window.To.IsZero() || window.From.After(window.To) {
			return nil, fmt.Errorf("%w: phase %s needs a valid date range", ErrInvalidInput, window.Phase)
		}
		for _, earlier := range windows[:i] {
			if !window.From.After(earlier.To) && !earlier.From.After(window.To) {
				return nil, fmt.Errorf(
					"%w: phase windows %s and %s overlap", ErrInvalidInput, earlier.Phase, window.Phase,
				)
			}
		}
	}
	return windows, nil
}

// ValidateDivisions sweeps every division of the league through schedule
// validation on a bounded worker pool. Per-division failures are reported
// in the row, not returned, so one broken division never hides the rest.
func (s *ScheduleService) ValidateDivisions(ctx context.Context, req ScheduleRequest) ([]DivisionValidation, error) {
	ctx, span := startUsecaseSpan(ctx, "ScheduleService.ValidateDivisions")
	defer span.End()

	req.LeagueID = strings.TrimSpace(req.LeagueID)
	if req.LeagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	item, exists, err := s.leagueRepo.GetByID(ctx, req.LeagueID)
	if err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: league %s", ErrNotFound, req.LeagueID)
	}

	workerCount := divisionSweepMaxWorkers
	if len(item.Divisions) < workerCount {
		workerCount = len(item.Divisions)
	}
	if workerCount < divisionSweepMinDivisions {
		return nil, nil
	}

	workerPool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	results := make(chan DivisionValidation, len(item.Divisions))
	var workers sync.WaitGroup
	for _, division := range item.Divisions {
		division := division
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			divisionReq := req
			divisionReq.Division = division
			row := DivisionValidation{Division: division}
			issues, err := s.ValidateDivision(ctx, divisionReq)
			if err != nil {
				row.Error = err.Error()
			} else {
				row.Issues = issues
			}
			results <- row
		}); err != nil {
			workers.Done()
			return nil, fmt.Errorf("submit division to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	rows := make([]DivisionValidation, 0, len(item.Divisions))
	for row := range results {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Division < rows[j].Division })
	return rows, nil
}

func (s *ScheduleService) GetRun(ctx context.Context, runID string) (schedule.Run, bool, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return schedule.Run{}, false, fmt.Errorf("%w: run id is required", ErrInvalidInput)
	}

	run, exists, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return schedule.Run{}, false, fmt.Errorf("get schedule run: %w", err)
	}
	return run, exists, nil
}

func (s *ScheduleService) ListRuns(ctx context.Context, leagueID string) ([]schedule.Run, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	runs, err := s.runRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list schedule runs: %w", err)
	}
	return runs, nil
}

func (s *ScheduleService) normalizeRequest(req ScheduleRequest) (ScheduleRequest, error) {
	req.LeagueID = strings.TrimSpace(req.LeagueID)
	req.Division = strings.TrimSpace(req.Division)
	if req.LeagueID == "" {
		return req, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if req.Division == "" {
		return req, fmt.Errorf("%w: division is required", ErrInvalidInput)
	}
	if req.From.IsZero() || req.To.IsZero() || req.From.After(req.To) {
		return req, fmt.Errorf("%w: a valid date range is required", ErrInvalidInput)
	}
	if req.Phase == "" {
		req.Phase = matchup.PhaseRegularSeason
	}
	if !req.Phase.Valid() {
		return req, fmt.Errorf("%w: unknown phase %q", ErrInvalidInput, req.Phase)
	}
	return req, nil
}

func (s *ScheduleService) assignmentSlotID(leagueID string, a schedule.Assignment) string {
	return slot.DeterministicID(
		leagueID, a.Slot.Division, a.Slot.FieldKey,
		a.Slot.Date, a.Slot.StartMinutes, a.Slot.EndMinutes, a.Matchup.HomeTeamID,
	)
}

// bookAssignments writes one Confirmed slot per assignment. Every
// assignment is first checked against the live slots on its field and
// date, so a booking that landed after the preview was cached fails the
// whole run instead of double-booking the field. A failed write deletes
// everything the run already created.
func (s *ScheduleService) bookAssignments(ctx context.Context, req ScheduleRequest, assignments []schedule.Assignment) ([]string, error) {
	existing, err := s.slotRepo.Query(ctx, slot.Filter{
		LeagueID: req.LeagueID,
		DateFrom: req.From,
		DateTo:   req.To,
	})
	if err != nil {
		return nil, fmt.Errorf("query booked slots: %w", err)
	}

	ids := make([]string, len(assignments))
	for i, a := range assignments {
		slotID := s.assignmentSlotID(req.LeagueID, a)
		if _, exists, err := s.slotRepo.GetByID(ctx, slotID); err != nil {
			return nil, fmt.Errorf("check existing slot: %w", err)
		} else if exists {
			return nil, fmt.Errorf(
				"%w: slot for %s on %s at %s already exists",
				ErrSlotConflict, a.Slot.FieldKey, slot.FormatDate(a.Slot.Date), slot.FormatClock(a.Slot.StartMinutes),
			)
		}
		for _, other := range existing {
			if other.Status == slot.StatusCancelled {
				continue
			}
			if other.FieldKey != a.Slot.FieldKey || !other.Date.Equal(a.Slot.Date) {
				continue
			}
			if slot.Overlaps(a.Slot.StartMinutes, a.Slot.EndMinutes, other.StartMinutes, other.EndMinutes) {
				return nil, fmt.Errorf(
					"%w: field %s already booked on %s between %s and %s",
					ErrSlotConflict, other.FieldKey, slot.FormatDate(other.Date),
					slot.FormatClock(other.StartMinutes), slot.FormatClock(other.EndMinutes),
				)
			}
		}
		ids[i] = slotID
	}

	now := s.now().UTC()
	created := make([]string, 0, len(assignments))
	for i, a := range assignments {
		token, err := s.idGen.NewID()
		if err != nil {
			s.rollbackSlots(ctx, created)
			return nil, fmt.Errorf("generate slot token: %w", err)
		}
		item := slot.Slot{
			ID:              ids[i],
			LeagueID:        req.LeagueID,
			Division:        a.Slot.Division,
			FieldKey:        a.Slot.FieldKey,
			Date:            a.Slot.Date,
			StartMinutes:    a.Slot.StartMinutes,
			EndMinutes:      a.Slot.EndMinutes,
			OfferingTeamID:  a.Matchup.HomeTeamID,
			ConfirmedTeamID: a.Matchup.AwayTeamID,
			HomeTeamID:      a.Matchup.HomeTeamID,
			AwayTeamID:      a.Matchup.AwayTeamID,
			Status:          slot.StatusConfirmed,
			IsExternalOffer: a.Matchup.ExternalOffer,
			GameType:        string(a.Matchup.Phase),
			Token:           token,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.slotRepo.Create(ctx, item); err != nil {
			s.rollbackSlots(ctx, created)
			return nil, fmt.Errorf("create scheduled slot: %w", err)
		}
		created = append(created, item.ID)
	}
	return created, nil
}

func (s *ScheduleService) rollbackSlots(ctx context.Context, slotIDs []string) {
	for _, slotID := range slotIDs {
		if err := s.slotRepo.Delete(ctx, slotID); err != nil {
			s.logger.ErrorContext(ctx, "rollback of scheduled slot failed", "slotId", slotID, "error", err)
		}
	}
}

func (s *ScheduleService) publishApplied(ctx context.Context, run schedule.Run) {
	if s.publisher == nil {
		return
	}
	event := ScheduleAppliedEvent{
		RunID:        run.ID,
		LeagueID:     run.LeagueID,
		Division:     run.Division,
		GamesCreated: run.MatchupsAssigned,
		OccurredAt:   run.CreatedAt,
	}
	if err := s.publisher.PublishScheduleApplied(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "schedule applied event not delivered",
			"runId", run.ID,
			"error", err,
		)
	}
}

func countErrors(issues []schedule.Issue) int {
	count := 0
	for _, issue := range issues {
		if issue.Severity == schedule.SeverityError {
			count++
		}
	}
	return count
}
