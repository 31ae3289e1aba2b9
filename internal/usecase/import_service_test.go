package usecase

import (
	"strings"
	"testing"

	"github.com/agsa/field-scheduler/internal/domain/slot"
	"github.com/agsa/field-scheduler/internal/infrastructure/repository/memory"
	"github.com/agsa/field-scheduler/internal/platform/logging"
)

func newImportFixture(t *testing.T) (*ImportService, *memory.SlotRepository) {
	t.Helper()

	slotRepo := memory.NewSlotRepository()
	service := NewImportService(
		slotRepo,
		memory.NewLeagueRepository(memory.SeedLeagues()),
		&seqIDGenerator{prefix: "import"},
		logging.NewNop(),
	)
	return service, slotRepo
}

const importCSV = `division,offeringTeamId,gameDate,startTime,endTime,fieldKey,gameType,status,notes
10U,metro-10u-falcons,2026-04-07,18:00,20:00,riverside-1,League,,bring nets
10U,metro-10u-hawks,2026-04-07,20:00,22:00,riverside-1,League,Confirmed,
10U,metro-10u-falcons,2026-04-07,18:00,20:00,riverside-1,League,,duplicate row
10U,metro-10u-otters,2026-04-07,25:00,26:00,riverside-1,League,,bad clock
14U,metro-10u-wolves,2026-04-09,18:00,20:00,riverside-1,League,,unknown division
`

func TestImportService_ImportSlots(t *testing.T) {
	service, slotRepo := newImportFixture(t)

	result, err := service.ImportSlots(t.Context(), memory.LeagueIDMetroYouth, strings.NewReader(importCSV))
	if err != nil {
		t.Fatalf("import slots: %v", err)
	}

	if result.Created != 2 || result.Skipped != 1 || result.Failed != 2 {
		t.Fatalf("unexpected counts: created=%d skipped=%d failed=%d", result.Created, result.Skipped, result.Failed)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 row errors, got %d", len(result.Errors))
	}
	// Rows are 1-based including the header.
	if result.Errors[0].Line != 5 || result.Errors[1].Line != 6 {
		t.Fatalf("unexpected error lines: %d and %d", result.Errors[0].Line, result.Errors[1].Line)
	}

	slots, err := slotRepo.Query(t.Context(), slot.Filter{LeagueID: memory.LeagueIDMetroYouth})
	if err != nil {
		t.Fatalf("query slots: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 persisted slots, got %d", len(slots))
	}

	first := slots[0]
	if first.StartMinutes != 18*60 || first.EndMinutes != 20*60 {
		t.Fatalf("unexpected first window: %s-%s", slot.FormatClock(first.StartMinutes), slot.FormatClock(first.EndMinutes))
	}
	if first.Status != slot.StatusOpen {
		t.Fatalf("blank status must default to Open, got %s", first.Status)
	}
	if first.Notes != "bring nets" {
		t.Fatalf("unexpected notes: %q", first.Notes)
	}
	if slots[1].Status != slot.StatusConfirmed {
		t.Fatalf("explicit status must be kept, got %s", slots[1].Status)
	}
}

func TestImportService_ImportSlots_HeaderValidation(t *testing.T) {
	service, _ := newImportFixture(t)

	_, err := service.ImportSlots(t.Context(), memory.LeagueIDMetroYouth, strings.NewReader("division,gameDate\n10U,2026-04-07\n"))
	if err == nil || !strings.Contains(err.Error(), "missing column") {
		t.Fatalf("incomplete header must be rejected, got %v", err)
	}

	if _, err := service.ImportSlots(t.Context(), "nope", strings.NewReader(importCSV)); err == nil {
		t.Fatal("unknown league must be rejected")
	}
}
