package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agsa/field-scheduler/internal/domain/league"
	"github.com/agsa/field-scheduler/internal/domain/slot"
	"github.com/agsa/field-scheduler/internal/platform/id"
	"github.com/agsa/field-scheduler/internal/platform/logging"
)

// importColumns are the required CSV header names, matched case
// insensitively. notes is optional.
var importColumns = []string{
	"division", "offeringTeamId", "gameDate", "startTime",
	"endTime", "fieldKey", "gameType", "status",
}

type ImportRowError struct {
	Line    int
	Message string
}

type ImportResult struct {
	Created int
	Skipped int
	Failed  int
	Errors  []ImportRowError
}

// ImportService bulk-loads slots from the CSV export format used by the
// league offices. Each row stands alone: a bad row is reported and
// skipped, the rest of the file still imports.
type ImportService struct {
	slotRepo   slot.Repository
	leagueRepo league.Repository
	idGen      id.Generator
	logger     *logging.Logger
	now        func() time.Time
}

func NewImportService(
	slotRepo slot.Repository,
	leagueRepo league.Repository,
	idGen id.Generator,
	logger *logging.Logger,
) *ImportService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ImportService{
		slotRepo:   slotRepo,
		leagueRepo: leagueRepo,
		idGen:      idGen,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *ImportService) ImportSlots(ctx context.Context, leagueID string, r io.Reader) (ImportResult, error) {
	ctx, span := startUsecaseSpan(ctx, "ImportService.ImportSlots")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return ImportResult{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	item, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return ImportResult{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return ImportResult{}, fmt.Errorf("%w: league %s", ErrNotFound, leagueID)
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: csv header is missing", ErrInvalidInput)
	}
	columns, err := mapImportHeader(header)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var result ImportResult
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{Line: line, Message: err.Error()})
			continue
		}

		parsed, err := parseImportRow(record, columns, item)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{Line: line, Message: err.Error()})
			continue
		}

		switch err := s.createImported(ctx, leagueID, parsed); {
		case err == nil:
			result.Created++
		case errors.Is(err, ErrSlotConflict):
			result.Skipped++
		default:
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{Line: line, Message: err.Error()})
		}
	}

	s.logger.InfoContext(ctx, "slot import finished",
		"leagueId", leagueID,
		"created", result.Created,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

type importedRow struct {
	division       string
	offeringTeamID string
	date           time.Time
	startMinutes   int
	endMinutes     int
	fieldKey       string
	gameType       string
	status         slot.Status
	notes          string
}

func mapImportHeader(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range importColumns {
		if _, ok := columns[strings.ToLower(required)]; !ok {
			return nil, fmt.Errorf("csv header is missing column %q", required)
		}
	}
	return columns, nil
}

func columnValue(record []string, columns map[string]int, name string) string {
	index, ok := columns[strings.ToLower(name)]
	if !ok || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}

func parseImportRow(record []string, columns map[string]int, item league.League) (importedRow, error) {
	row := importedRow{
		division:       columnValue(record, columns, "division"),
		offeringTeamID: columnValue(record, columns, "offeringTeamId"),
		fieldKey:       columnValue(record, columns, "fieldKey"),
		gameType:       columnValue(record, columns, "gameType"),
		notes:          columnValue(record, columns, "notes"),
	}
	if row.division == "" {
		return importedRow{}, fmt.Errorf("division is required")
	}
	if !item.HasDivision(row.division) {
		return importedRow{}, fmt.Errorf("division %q is not configured for the league", row.division)
	}
	if row.fieldKey == "" {
		return importedRow{}, fmt.Errorf("fieldKey is required")
	}

	date, err := slot.ParseDate(columnValue(record, columns, "gameDate"))
	if err != nil {
		return importedRow{}, err
	}
	row.date = date

	row.startMinutes, err = slot.ParseClock(columnValue(record, columns, "startTime"))
	if err != nil {
		return importedRow{}, err
	}
	row.endMinutes, err = slot.ParseClock(columnValue(record, columns, "endTime"))
	if err != nil {
		return importedRow{}, err
	}
	if row.startMinutes >= row.endMinutes {
		return importedRow{}, fmt.Errorf("startTime must be before endTime")
	}

	rawStatus := columnValue(record, columns, "status")
	if rawStatus == "" {
		row.status = slot.StatusOpen
	} else if row.status, err = slot.ParseStatus(rawStatus); err != nil {
		return importedRow{}, err
	}

	return row, nil
}

func (s *ImportService) createImported(ctx context.Context, leagueID string, row importedRow) error {
	slotID := slot.DeterministicID(
		leagueID, row.division, row.fieldKey,
		row.date, row.startMinutes, row.endMinutes, row.offeringTeamID,
	)
	if _, exists, err := s.slotRepo.GetByID(ctx, slotID); err != nil {
		return fmt.Errorf("check duplicate slot: %w", err)
	} else if exists {
		return fmt.Errorf("%w: identical slot already exists", ErrSlotConflict)
	}

	token, err := s.idGen.NewID()
	if err != nil {
		return fmt.Errorf("generate slot token: %w", err)
	}
	now := s.now().UTC()
	item := slot.Slot{
		ID:             slotID,
		LeagueID:       leagueID,
		Division:       row.division,
		FieldKey:       row.fieldKey,
		Date:           row.date,
		StartMinutes:   row.startMinutes,
		EndMinutes:     row.endMinutes,
		OfferingTeamID: row.offeringTeamID,
		Status:         row.status,
		GameType:       row.gameType,
		Notes:          row.notes,
		Token:          token,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	sameDay, err := s.slotRepo.Query(ctx, slot.Filter{
		LeagueID: leagueID,
		FieldKey: row.fieldKey,
		DateFrom: row.date,
		DateTo:   row.date,
	})
	if err != nil {
		return fmt.Errorf("query slots for conflict check: %w", err)
	}
	for _, other := range sameDay {
		if item.OverlapsSlot(other) {
			return fmt.Errorf(
				"field %s already booked between %s and %s",
				other.FieldKey, slot.FormatClock(other.StartMinutes), slot.FormatClock(other.EndMinutes),
			)
		}
	}

	if err := s.slotRepo.Create(ctx, item); err != nil {
		return fmt.Errorf("create slot: %w", err)
	}
	return nil
}
