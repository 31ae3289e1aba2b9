package httpapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agsa/field-scheduler/internal/domain/availability"
	"github.com/agsa/field-scheduler/internal/domain/matchup"
	"github.com/agsa/field-scheduler/internal/domain/schedule"
	"github.com/agsa/field-scheduler/internal/domain/slot"
	"github.com/agsa/field-scheduler/internal/usecase"
)

type createSlotRequest struct {
	Division        string `json:"division" validate:"required"`
	FieldKey        string `json:"fieldKey" validate:"required"`
	GameDate        string `json:"gameDate" validate:"required"`
	StartTime       string `json:"startTime" validate:"required"`
	EndTime         string `json:"endTime" validate:"required"`
	OfferingTeamID  string `json:"offeringTeamId" validate:"required"`
	GameType        string `json:"gameType"`
	Notes           string `json:"notes" validate:"max=500"`
	IsAvailability  bool   `json:"isAvailability"`
	IsExternalOffer bool   `json:"isExternalOffer"`
}

type slotRequestRequest struct {
	TeamID string `json:"teamId" validate:"required"`
}

type availabilityPreviewRequest struct {
	Division string `json:"division" validate:"required"`
	From     string `json:"from" validate:"required"`
	To       string `json:"to" validate:"required"`
}

type createRuleRequest struct {
	Division   string   `json:"division" validate:"required"`
	FieldKey   string   `json:"fieldKey" validate:"required"`
	StartsOn   string   `json:"startsOn" validate:"required"`
	EndsOn     string   `json:"endsOn" validate:"required"`
	DaysOfWeek []string `json:"daysOfWeek" validate:"required,min=1,dive,required"`
	StartTime  string   `json:"startTime" validate:"required"`
	EndTime    string   `json:"endTime" validate:"required"`
}

type createExceptionRequest struct {
	StartsOn  string `json:"startsOn" validate:"required"`
	EndsOn    string `json:"endsOn" validate:"required"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Reason    string `json:"reason" validate:"max=500"`
}

type constraintsDTO struct {
	MaxGamesPerWeek      int  `json:"maxGamesPerWeek" validate:"min=0"`
	NoDoubleHeaders      bool `json:"noDoubleHeaders"`
	BalanceHomeAway      bool `json:"balanceHomeAway"`
	ExternalOfferPerWeek int  `json:"externalOfferPerWeek" validate:"min=0"`
	MinGamesPerTeam      int  `json:"minGamesPerTeam" validate:"min=0"`
}

type phaseWindowDTO struct {
	Phase string `json:"phase" validate:"required"`
	From  string `json:"from" validate:"required"`
	To    string `json:"to" validate:"required"`
}

type scheduleRequestBody struct {
	Division              string           `json:"division"`
	From                  string           `json:"from" validate:"required"`
	To                    string           `json:"to" validate:"required"`
	Phase                 string           `json:"phase"`
	Phases                []phaseWindowDTO `json:"phases" validate:"omitempty,dive"`
	IncludeExternalOffers bool             `json:"includeExternalOffers"`
	Constraints           constraintsDTO   `json:"constraints"`
}

type slotDTO struct {
	ID              string `json:"id"`
	LeagueID        string `json:"leagueId"`
	Division        string `json:"division"`
	FieldKey        string `json:"fieldKey"`
	GameDate        string `json:"gameDate"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	OfferingTeamID  string `json:"offeringTeamId"`
	ConfirmedTeamID string `json:"confirmedTeamId,omitempty"`
	HomeTeamID      string `json:"homeTeamId,omitempty"`
	AwayTeamID      string `json:"awayTeamId,omitempty"`
	Status          string `json:"status"`
	IsAvailability  bool   `json:"isAvailability"`
	IsExternalOffer bool   `json:"isExternalOffer"`
	GameType        string `json:"gameType,omitempty"`
	Notes           string `json:"notes,omitempty"`
	UpdatedAt       string `json:"updatedAt"`
}

type slotRequestDTO struct {
	ID               string `json:"id"`
	SlotID           string `json:"slotId"`
	RequestingTeamID string `json:"requestingTeamId"`
	Status           string `json:"status"`
	RequestedAt      string `json:"requestedAt"`
}

type candidateSlotDTO struct {
	FieldKey  string `json:"fieldKey"`
	Division  string `json:"division"`
	GameDate  string `json:"gameDate"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type availabilityRuleDTO struct {
	ID         string   `json:"id"`
	LeagueID   string   `json:"leagueId"`
	Division   string   `json:"division"`
	FieldKey   string   `json:"fieldKey"`
	StartsOn   string   `json:"startsOn"`
	EndsOn     string   `json:"endsOn"`
	DaysOfWeek []string `json:"daysOfWeek"`
	StartTime  string   `json:"startTime"`
	EndTime    string   `json:"endTime"`
	Active     bool     `json:"active"`
}

type availabilityExceptionDTO struct {
	ID        string `json:"id"`
	RuleID    string `json:"ruleId"`
	StartsOn  string `json:"startsOn"`
	EndsOn    string `json:"endsOn"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type matchupDTO struct {
	HomeTeamID    string `json:"homeTeamId"`
	AwayTeamID    string `json:"awayTeamId,omitempty"`
	Phase         string `json:"phase"`
	ExternalOffer bool   `json:"externalOffer"`
}

type assignmentDTO struct {
	Slot    candidateSlotDTO `json:"slot"`
	Matchup matchupDTO       `json:"matchup"`
}

type issueDTO struct {
	RuleID   string         `json:"ruleId"`
	Severity string         `json:"severity"`
	Message  string         `json:"message"`
	Details  map[string]any `json:"details,omitempty"`
}

type previewDTO struct {
	Assignments        []assignmentDTO    `json:"assignments"`
	UnassignedSlots    []candidateSlotDTO `json:"unassignedSlots"`
	UnassignedMatchups []matchupDTO       `json:"unassignedMatchups"`
	Failures           []issueDTO         `json:"failures"`
}

type runAssignmentDTO struct {
	SlotID        string `json:"slotId"`
	FieldKey      string `json:"fieldKey"`
	GameDate      string `json:"gameDate"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	HomeTeamID    string `json:"homeTeamId"`
	AwayTeamID    string `json:"awayTeamId,omitempty"`
	Phase         string `json:"phase"`
	ExternalOffer bool   `json:"externalOffer"`
}

type runDTO struct {
	ID               string             `json:"id"`
	LeagueID         string             `json:"leagueId"`
	Division         string             `json:"division"`
	MatchupsTotal    int                `json:"matchupsTotal"`
	MatchupsAssigned int                `json:"matchupsAssigned"`
	SlotsTotal       int                `json:"slotsTotal"`
	SlotsUsed        int                `json:"slotsUsed"`
	Assignments      []runAssignmentDTO `json:"assignments"`
	Failures         []issueDTO         `json:"failures,omitempty"`
	CreatedAt        string             `json:"createdAt"`
}

type applyResultDTO struct {
	Run     runDTO     `json:"run"`
	Preview previewDTO `json:"preview"`
}

type phasePreviewDTO struct {
	Phase  string     `json:"phase"`
	From   string     `json:"from"`
	To     string     `json:"to"`
	Result previewDTO `json:"result"`
}

type seasonSummaryDTO struct {
	MatchupsTotal    int `json:"matchupsTotal"`
	MatchupsAssigned int `json:"matchupsAssigned"`
	SlotsTotal       int `json:"slotsTotal"`
	SlotsUsed        int `json:"slotsUsed"`
}

type divisionPreviewDTO struct {
	Division string            `json:"division"`
	Phases   []phasePreviewDTO `json:"phases"`
	Summary  seasonSummaryDTO  `json:"summary"`
}

type divisionValidationDTO struct {
	Division string     `json:"division"`
	Issues   []issueDTO `json:"issues"`
	Error    string     `json:"error,omitempty"`
}

type importRowErrorDTO struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type importResultDTO struct {
	Created int                 `json:"created"`
	Skipped int                 `json:"skipped"`
	Failed  int                 `json:"failed"`
	Errors  []importRowErrorDTO `json:"errors,omitempty"`
}

func slotToDTO(_ context.Context, s slot.Slot) slotDTO {
	return slotDTO{
		ID:              s.ID,
		LeagueID:        s.LeagueID,
		Division:        s.Division,
		FieldKey:        s.FieldKey,
		GameDate:        slot.FormatDate(s.Date),
		StartTime:       slot.FormatClock(s.StartMinutes),
		EndTime:         slot.FormatClock(s.EndMinutes),
		OfferingTeamID:  s.OfferingTeamID,
		ConfirmedTeamID: s.ConfirmedTeamID,
		HomeTeamID:      s.HomeTeamID,
		AwayTeamID:      s.AwayTeamID,
		Status:          string(s.Status),
		IsAvailability:  s.IsAvailability,
		IsExternalOffer: s.IsExternalOffer,
		GameType:        s.GameType,
		Notes:           s.Notes,
		UpdatedAt:       s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func slotRequestToDTO(_ context.Context, r slot.Request) slotRequestDTO {
	return slotRequestDTO{
		ID:               r.ID,
		SlotID:           r.SlotID,
		RequestingTeamID: r.RequestingTeamID,
		Status:           string(r.Status),
		RequestedAt:      r.RequestedAt.UTC().Format(time.RFC3339),
	}
}

func candidateToDTO(c availability.CandidateSlot) candidateSlotDTO {
	return candidateSlotDTO{
		FieldKey:  c.FieldKey,
		Division:  c.Division,
		GameDate:  slot.FormatDate(c.Date),
		StartTime: slot.FormatClock(c.StartMinutes),
		EndTime:   slot.FormatClock(c.EndMinutes),
	}
}

func candidatesToDTO(items []availability.CandidateSlot) []candidateSlotDTO {
	out := make([]candidateSlotDTO, 0, len(items))
	for _, c := range items {
		out = append(out, candidateToDTO(c))
	}
	return out
}

func ruleToDTO(_ context.Context, r availability.Rule) availabilityRuleDTO {
	days := make([]string, 0, len(r.DaysOfWeek))
	for _, day := range r.DaysOfWeek {
		days = append(days, day.String())
	}
	return availabilityRuleDTO{
		ID:         r.ID,
		LeagueID:   r.LeagueID,
		Division:   r.Division,
		FieldKey:   r.FieldKey,
		StartsOn:   slot.FormatDate(r.StartsOn),
		EndsOn:     slot.FormatDate(r.EndsOn),
		DaysOfWeek: days,
		StartTime:  slot.FormatClock(r.StartMinutes),
		EndTime:    slot.FormatClock(r.EndMinutes),
		Active:     r.Active,
	}
}

func exceptionToDTO(_ context.Context, e availability.Exception) availabilityExceptionDTO {
	item := availabilityExceptionDTO{
		ID:       e.ID,
		RuleID:   e.RuleID,
		StartsOn: slot.FormatDate(e.StartsOn),
		EndsOn:   slot.FormatDate(e.EndsOn),
		Reason:   e.Reason,
	}
	if !e.WholeDay() {
		item.StartTime = slot.FormatClock(e.StartMinutes)
		item.EndTime = slot.FormatClock(e.EndMinutes)
	}
	return item
}

func matchupToDTO(m matchup.Matchup) matchupDTO {
	return matchupDTO{
		HomeTeamID:    m.HomeTeamID,
		AwayTeamID:    m.AwayTeamID,
		Phase:         string(m.Phase),
		ExternalOffer: m.ExternalOffer,
	}
}

func issuesToDTO(issues []schedule.Issue) []issueDTO {
	out := make([]issueDTO, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issueDTO{
			RuleID:   issue.RuleID,
			Severity: string(issue.Severity),
			Message:  issue.Message,
			Details:  issue.Details,
		})
	}
	return out
}

func previewToDTO(_ context.Context, result schedule.PreviewResult) previewDTO {
	assignments := make([]assignmentDTO, 0, len(result.Assignments))
	for _, a := range result.Assignments {
		assignments = append(assignments, assignmentDTO{
			Slot:    candidateToDTO(a.Slot),
			Matchup: matchupToDTO(a.Matchup),
		})
	}
	matchups := make([]matchupDTO, 0, len(result.UnassignedMatchups))
	for _, m := range result.UnassignedMatchups {
		matchups = append(matchups, matchupToDTO(m))
	}
	return previewDTO{
		Assignments:        assignments,
		UnassignedSlots:    candidatesToDTO(result.UnassignedSlots),
		UnassignedMatchups: matchups,
		Failures:           issuesToDTO(result.Failures),
	}
}

func divisionPreviewToDTO(ctx context.Context, preview usecase.DivisionPreview) divisionPreviewDTO {
	phases := make([]phasePreviewDTO, 0, len(preview.Phases))
	for _, phase := range preview.Phases {
		phases = append(phases, phasePreviewDTO{
			Phase:  string(phase.Phase),
			From:   slot.FormatDate(phase.From),
			To:     slot.FormatDate(phase.To),
			Result: previewToDTO(ctx, phase.Result),
		})
	}
	return divisionPreviewDTO{
		Division: preview.Division,
		Phases:   phases,
		Summary: seasonSummaryDTO{
			MatchupsTotal:    preview.Summary.MatchupsTotal,
			MatchupsAssigned: preview.Summary.MatchupsAssigned,
			SlotsTotal:       preview.Summary.SlotsTotal,
			SlotsUsed:        preview.Summary.SlotsUsed,
		},
	}
}

func runToDTO(_ context.Context, run schedule.Run) runDTO {
	assignments := make([]runAssignmentDTO, 0, len(run.Assignments))
	for _, a := range run.Assignments {
		assignments = append(assignments, runAssignmentDTO{
			SlotID:        a.SlotID,
			FieldKey:      a.FieldKey,
			GameDate:      slot.FormatDate(a.Date),
			StartTime:     slot.FormatClock(a.StartMinutes),
			EndTime:       slot.FormatClock(a.EndMinutes),
			HomeTeamID:    a.HomeTeamID,
			AwayTeamID:    a.AwayTeamID,
			Phase:         string(a.Phase),
			ExternalOffer: a.ExternalOffer,
		})
	}
	return runDTO{
		ID:               run.ID,
		LeagueID:         run.LeagueID,
		Division:         run.Division,
		MatchupsTotal:    run.MatchupsTotal,
		MatchupsAssigned: run.MatchupsAssigned,
		SlotsTotal:       run.SlotsTotal,
		SlotsUsed:        run.SlotsUsed,
		Assignments:      assignments,
		Failures:         issuesToDTO(run.Failures),
		CreatedAt:        run.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func importResultToDTO(_ context.Context, result usecase.ImportResult) importResultDTO {
	rowErrors := make([]importRowErrorDTO, 0, len(result.Errors))
	for _, rowErr := range result.Errors {
		rowErrors = append(rowErrors, importRowErrorDTO{Line: rowErr.Line, Message: rowErr.Message})
	}
	return importResultDTO{
		Created: result.Created,
		Skipped: result.Skipped,
		Failed:  result.Failed,
		Errors:  rowErrors,
	}
}

func parseDateField(field, value string) (time.Time, error) {
	parsed, err := slot.ParseDate(strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", usecase.ErrInvalidInput, field, err)
	}
	return parsed, nil
}

func parseClockField(field, value string) (int, error) {
	minutes, err := slot.ParseClock(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", usecase.ErrInvalidInput, field, err)
	}
	return minutes, nil
}

func parsePhaseWindows(windows []phaseWindowDTO) ([]usecase.SeasonPhaseWindow, error) {
	if len(windows) == 0 {
		return nil, nil
	}
	out := make([]usecase.SeasonPhaseWindow, 0, len(windows))
	for i, window := range windows {
		phase, err := parsePhaseField(window.Phase)
		if err != nil {
			return nil, err
		}
		from, err := parseDateField(fmt.Sprintf("phases[%d].from", i), window.From)
		if err != nil {
			return nil, err
		}
		to, err := parseDateField(fmt.Sprintf("phases[%d].to", i), window.To)
		if err != nil {
			return nil, err
		}
		out = append(out, usecase.SeasonPhaseWindow{Phase: phase, From: from, To: to})
	}
	return out, nil
}

func parsePhaseField(value string) (matchup.Phase, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", nil
	}
	phase := matchup.Phase(trimmed)
	if !phase.Valid() {
		return "", fmt.Errorf("%w: unknown phase %q", usecase.ErrInvalidInput, trimmed)
	}
	return phase, nil
}

var weekdayByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekdays(values []string) ([]time.Weekday, error) {
	out := make([]time.Weekday, 0, len(values))
	for _, value := range values {
		day, ok := weekdayByName[strings.ToLower(strings.TrimSpace(value))]
		if !ok {
			return nil, fmt.Errorf("%w: unknown day of week %q", usecase.ErrInvalidInput, value)
		}
		out = append(out, day)
	}
	return out, nil
}
