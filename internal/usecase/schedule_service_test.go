package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agsa/field-scheduler/internal/domain/matchup"
	"github.com/agsa/field-scheduler/internal/domain/schedule"
	"github.com/agsa/field-scheduler/internal/domain/slot"
	"github.com/agsa/field-scheduler/internal/infrastructure/repository/memory"
	"github.com/agsa/field-scheduler/internal/platform/cache"
	"github.com/agsa/field-scheduler/internal/platform/logging"
)

type capturingPublisher struct {
	events []ScheduleAppliedEvent
}

func (p *capturingPublisher) PublishScheduleApplied(_ context.Context, event ScheduleAppliedEvent) error {
	p.events = append(p.events, event)
	return nil
}

type scheduleFixture struct {
	service   *ScheduleService
	slotRepo  *memory.SlotRepository
	runRepo   *memory.RunRepository
	publisher *capturingPublisher
}

func newScheduleFixture(t *testing.T) scheduleFixture {
	return newScheduleFixtureCached(t, nil)
}

func newScheduleFixtureCached(t *testing.T, previewCache *cache.Store) scheduleFixture {
	t.Helper()

	slotRepo := memory.NewSlotRepository()
	runRepo := memory.NewRunRepository()
	leagueRepo := memory.NewLeagueRepository(memory.SeedLeagues())
	avail := NewAvailabilityService(
		memory.NewAvailabilityRepository(memory.SeedAvailabilityRules()),
		slotRepo,
		leagueRepo,
		&seqIDGenerator{prefix: "avail"},
		previewCache,
		logging.NewNop(),
	)

	publisher := &capturingPublisher{}
	service := NewScheduleService(
		slotRepo,
		memory.NewTeamRepository(memory.SeedTeams()),
		leagueRepo,
		runRepo,
		avail,
		&seqIDGenerator{prefix: "run"},
		logging.NewNop(),
	)
	service.SetEventPublisher(publisher)
	service.now = func() time.Time { return time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC) }

	return scheduleFixture{service: service, slotRepo: slotRepo, runRepo: runRepo, publisher: publisher}
}

func tenURequest() ScheduleRequest {
	return ScheduleRequest{
		LeagueID: memory.LeagueIDMetroYouth,
		Division: "10U",
		From:     time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2026, 4, 19, 0, 0, 0, 0, time.UTC),
		Constraints: schedule.Constraints{
			MaxGamesPerWeek: 2,
			NoDoubleHeaders: true,
			MinGamesPerTeam: 3,
		},
	}
}

func TestScheduleService_Preview_AssignsFullRoundRobin(t *testing.T) {
	fx := newScheduleFixture(t)

	result, err := fx.service.Preview(t.Context(), tenURequest())
	if err != nil {
		t.Fatalf("preview schedule: %v", err)
	}

	// Four teams, one round robin: six games, every matchup placed.
	if len(result.Assignments) != 6 {
		t.Fatalf("expected 6 assignments, got %d", len(result.Assignments))
	}
	if len(result.UnassignedMatchups) != 0 {
		t.Fatalf("expected no unassigned matchups, got %d", len(result.UnassignedMatchups))
	}

	// Nothing persisted by a preview.
	slots, err := fx.slotRepo.Query(t.Context(), slot.Filter{LeagueID: memory.LeagueIDMetroYouth})
	if err != nil {
		t.Fatalf("query slots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("preview must not persist slots, found %d", len(slots))
	}
}

func TestScheduleService_Apply_BooksSlotsAndRecordsRun(t *testing.T) {
	fx := newScheduleFixture(t)

	result, err := fx.service.Apply(t.Context(), tenURequest())
	if err != nil {
		t.Fatalf("apply schedule: %v", err)
	}
	if result.Run.MatchupsAssigned != 6 {
		t.Fatalf("expected 6 assigned matchups in the run, got %d", result.Run.MatchupsAssigned)
	}

	slots, err := fx.slotRepo.Query(t.Context(), slot.Filter{LeagueID: memory.LeagueIDMetroYouth})
	if err != nil {
		t.Fatalf("query slots: %v", err)
	}
	if len(slots) != 6 {
		t.Fatalf("expected 6 booked slots, got %d", len(slots))
	}
	for _, item := range slots {
		if item.Status != slot.StatusConfirmed {
			t.Fatalf("booked slot %s must be Confirmed, got %s", item.ID, item.Status)
		}
		if item.HomeTeamID == "" || item.AwayTeamID == "" {
			t.Fatalf("booked slot %s is missing teams", item.ID)
		}
	}

	run, exists, err := fx.runRepo.GetByID(t.Context(), result.Run.ID)
	if err != nil || !exists {
		t.Fatalf("run must be recorded: exists=%v err=%v", exists, err)
	}
	if len(run.Assignments) != 6 {
		t.Fatalf("run must list every assignment, got %d", len(run.Assignments))
	}

	if len(fx.publisher.events) != 1 || fx.publisher.events[0].RunID != run.ID {
		t.Fatalf("apply must publish one event for the run, got %+v", fx.publisher.events)
	}

	// The booked slots consumed six of the eight windows, leaving too few
	// for another full round robin: the second apply fails validation.
	if _, err := fx.service.Apply(t.Context(), tenURequest()); !errors.Is(err, ErrScheduleValidationFailed) {
		t.Fatalf("second apply must fail validation, got %v", err)
	}
}

func TestScheduleService_Apply_BlocksWhenMinimumUnreachable(t *testing.T) {
	fx := newScheduleFixture(t)

	req := tenURequest()
	// One Tuesday only: two candidate windows for six matchups.
	req.To = time.Date(2026, 4, 8, 0, 0, 0, 0, time.UTC)

	_, err := fx.service.Apply(t.Context(), req)
	if !errors.Is(err, ErrScheduleValidationFailed) {
		t.Fatalf("expected ErrScheduleValidationFailed, got %v", err)
	}

	slots, err := fx.slotRepo.Query(t.Context(), slot.Filter{LeagueID: memory.LeagueIDMetroYouth})
	if err != nil {
		t.Fatalf("query slots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("failed apply must not persist slots, found %d", len(slots))
	}
	if len(fx.publisher.events) != 0 {
		t.Fatalf("failed apply must not publish events, got %d", len(fx.publisher.events))
	}
}

func TestScheduleService_Apply_RejectsBookingMadeAfterPreviewWasCached(t *testing.T) {
	fx := newScheduleFixtureCached(t, cache.NewStore(time.Hour))
	req := tenURequest()

	// Warm the availability cache with the unbooked field state.
	if _, err := fx.service.Preview(t.Context(), req); err != nil {
		t.Fatalf("warm preview: %v", err)
	}

	// A manual booking lands on a previewed window while the cache entry
	// is still fresh.
	manual := slot.Slot{
		ID:           "manual-riverside",
		LeagueID:     memory.LeagueIDMetroYouth,
		Division:     "10U",
		FieldKey:     "riverside-1",
		Date:         time.Date(2026, 4, 7, 0, 0, 0, 0, time.UTC),
		StartMinutes: 18*60 + 30,
		EndMinutes:   20*60 + 30,
		HomeTeamID:   "metro-10u-falcons",
		AwayTeamID:   "metro-10u-hawks",
		Status:       slot.StatusConfirmed,
		Token:        "tok",
	}
	if err := fx.slotRepo.Create(t.Context(), manual); err != nil {
		t.Fatalf("create manual slot: %v", err)
	}

	// Apply re-checks the store, not the cached preview, and refuses to
	// double-book the field.
	if _, err := fx.service.Apply(t.Context(), req); !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("apply over a fresh booking must fail with ErrSlotConflict, got %v", err)
	}

	slots, err := fx.slotRepo.Query(t.Context(), slot.Filter{LeagueID: memory.LeagueIDMetroYouth})
	if err != nil {
		t.Fatalf("query slots: %v", err)
	}
	if len(slots) != 1 || slots[0].ID != manual.ID {
		t.Fatalf("failed apply must leave only the manual booking, found %d slots", len(slots))
	}

	// The persisted schedule stays clean.
	issues, err := fx.service.ValidateDivision(t.Context(), req)
	if err != nil {
		t.Fatalf("validate division: %v", err)
	}
	for _, issue := range issues {
		if issue.RuleID == schedule.IssueFieldDoubleBooked {
			t.Fatalf("no double booking may survive a failed apply: %+v", issue)
		}
	}
}

func TestScheduleService_PreviewSeason_CoversEveryDivision(t *testing.T) {
	fx := newScheduleFixture(t)

	req := tenURequest()
	req.Division = ""
	previews, err := fx.service.PreviewSeason(t.Context(), req)
	if err != nil {
		t.Fatalf("preview season: %v", err)
	}

	if len(previews) != 2 {
		t.Fatalf("expected a preview per division, got %d", len(previews))
	}
	if previews[0].Division != "10U" || previews[1].Division != "12U" {
		t.Fatalf("previews must be sorted by division, got %s and %s", previews[0].Division, previews[1].Division)
	}
	// No explicit phase chain: one regular season window per division.
	if len(previews[0].Phases) != 1 || previews[0].Phases[0].Phase != matchup.PhaseRegularSeason {
		t.Fatalf("default season must run one regular season phase, got %+v", previews[0].Phases)
	}
	if len(previews[0].Phases[0].Result.Assignments) != 6 {
		t.Fatalf("10U preview must assign 6 games, got %d", len(previews[0].Phases[0].Result.Assignments))
	}
	if previews[0].Summary.MatchupsAssigned != 6 || previews[0].Summary.SlotsUsed != 6 {
		t.Fatalf("unexpected 10U summary: %+v", previews[0].Summary)
	}
	// Five 12U teams and a three game minimum.
	if previews[1].Summary.MatchupsAssigned == 0 {
		t.Fatal("12U preview must assign games")
	}
}

func TestScheduleService_PreviewSeason_ChainsPhaseWindows(t *testing.T) {
	fx := newScheduleFixture(t)

	req := ScheduleRequest{
		LeagueID: memory.LeagueIDMetroYouth,
		Phases: []SeasonPhaseWindow{
			{
				Phase: matchup.PhaseRegularSeason,
				From:  time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC),
				To:    time.Date(2026, 4, 12, 0, 0, 0, 0, time.UTC),
			},
			{
				Phase: matchup.PhasePoolPlay,
				From:  time.Date(2026, 4, 13, 0, 0, 0, 0, time.UTC),
				To:    time.Date(2026, 4, 19, 0, 0, 0, 0, time.UTC),
			},
		},
	}
	previews, err := fx.service.PreviewSeason(t.Context(), req)
	if err != nil {
		t.Fatalf("preview season: %v", err)
	}

	var tenU DivisionPreview
	for _, preview := range previews {
		if preview.Division == "10U" {
			tenU = preview
		}
	}
	if len(tenU.Phases) != 2 {
		t.Fatalf("expected 2 phase runs for 10U, got %d", len(tenU.Phases))
	}
	if tenU.Phases[0].Phase != matchup.PhaseRegularSeason || tenU.Phases[1].Phase != matchup.PhasePoolPlay {
		t.Fatalf("phases must run in request order, got %s then %s", tenU.Phases[0].Phase, tenU.Phases[1].Phase)
	}

	// Each phase draws only from its own window, so the pools are disjoint.
	total := SeasonSummary{}
	for _, phase := range tenU.Phases {
		for _, a := range phase.Result.Assignments {
			if a.Slot.Date.Before(phase.From) || a.Slot.Date.After(phase.To) {
				t.Fatalf("phase %s assigned %s outside its window", phase.Phase, slot.FormatDate(a.Slot.Date))
			}
			if a.Matchup.Phase != phase.Phase {
				t.Fatalf("phase %s run produced a %s matchup", phase.Phase, a.Matchup.Phase)
			}
		}
		total.MatchupsTotal += len(phase.Result.Assignments) + len(phase.Result.UnassignedMatchups)
		total.MatchupsAssigned += len(phase.Result.Assignments)
		total.SlotsTotal += len(phase.Result.Assignments) + len(phase.Result.UnassignedSlots)
		total.SlotsUsed += len(phase.Result.Assignments)
	}
	if tenU.Summary != total {
		t.Fatalf("summary must add up the phase results: got %+v want %+v", tenU.Summary, total)
	}
	// Four candidate windows per week against six matchups per phase.
	if tenU.Summary.MatchupsAssigned != 8 || tenU.Summary.MatchupsTotal != 12 {
		t.Fatalf("unexpected combined summary: %+v", tenU.Summary)
	}
}

func TestScheduleService_PreviewSeason_RejectsOverlappingPhaseWindows(t *testing.T) {
	fx := newScheduleFixture(t)

	req := ScheduleRequest{
		LeagueID: memory.LeagueIDMetroYouth,
		Phases: []SeasonPhaseWindow{
			{
				Phase: matchup.PhaseRegularSeason,
				From:  time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC),
				To:    time.Date(2026, 4, 14, 0, 0, 0, 0, time.UTC),
			},
			{
				Phase: matchup.PhaseBracket,
				From:  time.Date(2026, 4, 14, 0, 0, 0, 0, time.UTC),
				To:    time.Date(2026, 4, 19, 0, 0, 0, 0, time.UTC),
			},
		},
	}
	if _, err := fx.service.PreviewSeason(t.Context(), req); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("overlapping phase windows must fail with ErrInvalidInput, got %v", err)
	}
}

func TestScheduleService_ValidateDivisions_FlagsDoubleBooking(t *testing.T) {
	fx := newScheduleFixture(t)

	// Two confirmed slots overlapping on the same field, written directly
	// to the store to bypass the service-level conflict check.
	day := time.Date(2026, 4, 7, 0, 0, 0, 0, time.UTC)
	for i, window := range [][2]int{{1050, 1170}, {1100, 1220}} {
		item := slot.Slot{
			ID:           string(rune('a' + i)),
			LeagueID:     memory.LeagueIDMetroYouth,
			Division:     "10U",
			FieldKey:     "riverside-1",
			Date:         day,
			StartMinutes: window[0],
			EndMinutes:   window[1],
			HomeTeamID:   "metro-10u-falcons",
			AwayTeamID:   "metro-10u-hawks",
			Status:       slot.StatusConfirmed,
			Token:        "tok",
		}
		if i == 1 {
			item.HomeTeamID = "metro-10u-otters"
			item.AwayTeamID = "metro-10u-wolves"
		}
		if err := fx.slotRepo.Create(t.Context(), item); err != nil {
			t.Fatalf("seed slot: %v", err)
		}
	}

	req := tenURequest()
	req.Division = ""
	rows, err := fx.service.ValidateDivisions(t.Context(), req)
	if err != nil {
		t.Fatalf("validate divisions: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected a row per division, got %d", len(rows))
	}

	var tenU DivisionValidation
	for _, row := range rows {
		if row.Division == "10U" {
			tenU = row
		} else if len(row.Issues) != 0 {
			t.Fatalf("division %s must be clean, got %d issues", row.Division, len(row.Issues))
		}
	}
	found := false
	for _, issue := range tenU.Issues {
		if issue.RuleID == schedule.IssueFieldDoubleBooked {
			found = true
		}
	}
	if !found {
		t.Fatal("10U must report a field double-booking issue")
	}
}
