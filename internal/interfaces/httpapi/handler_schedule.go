package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/agsa/field-scheduler/internal/domain/schedule"
	"github.com/agsa/field-scheduler/internal/usecase"
)

func (h *Handler) decodeScheduleRequest(w http.ResponseWriter, r *http.Request, requireDivision bool) (usecase.ScheduleRequest, bool) {
	ctx := r.Context()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	var req scheduleRequestBody
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return usecase.ScheduleRequest{}, false
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return usecase.ScheduleRequest{}, false
	}
	if requireDivision && strings.TrimSpace(req.Division) == "" {
		writeError(ctx, w, fmt.Errorf("%w: division is required", usecase.ErrInvalidInput))
		return usecase.ScheduleRequest{}, false
	}

	from, err := parseDateField("from", req.From)
	if err != nil {
		writeError(ctx, w, err)
		return usecase.ScheduleRequest{}, false
	}
	to, err := parseDateField("to", req.To)
	if err != nil {
		writeError(ctx, w, err)
		return usecase.ScheduleRequest{}, false
	}
	phase, err := parsePhaseField(req.Phase)
	if err != nil {
		writeError(ctx, w, err)
		return usecase.ScheduleRequest{}, false
	}
	phases, err := parsePhaseWindows(req.Phases)
	if err != nil {
		writeError(ctx, w, err)
		return usecase.ScheduleRequest{}, false
	}

	return usecase.ScheduleRequest{
		LeagueID:              leagueID,
		Division:              strings.TrimSpace(req.Division),
		From:                  from,
		To:                    to,
		Phase:                 phase,
		Phases:                phases,
		IncludeExternalOffers: req.IncludeExternalOffers,
		Constraints: schedule.Constraints{
			MaxGamesPerWeek:      req.Constraints.MaxGamesPerWeek,
			NoDoubleHeaders:      req.Constraints.NoDoubleHeaders,
			BalanceHomeAway:      req.Constraints.BalanceHomeAway,
			ExternalOfferPerWeek: req.Constraints.ExternalOfferPerWeek,
			MinGamesPerTeam:      req.Constraints.MinGamesPerTeam,
		},
	}, true
}

func (h *Handler) PreviewSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PreviewSchedule")
	defer span.End()

	req, ok := h.decodeScheduleRequest(w, r.WithContext(ctx), true)
	if !ok {
		return
	}

	result, err := h.scheduleService.Preview(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "preview schedule failed", "league_id", req.LeagueID, "division", req.Division, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, previewToDTO(ctx, result))
}

func (h *Handler) ApplySchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApplySchedule")
	defer span.End()

	req, ok := h.decodeScheduleRequest(w, r.WithContext(ctx), true)
	if !ok {
		return
	}

	result, err := h.scheduleService.Apply(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "apply schedule failed", "league_id", req.LeagueID, "division", req.Division, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, applyResultDTO{
		Run:     runToDTO(ctx, result.Run),
		Preview: previewToDTO(ctx, result.Preview),
	})
}

func (h *Handler) ValidateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ValidateSchedule")
	defer span.End()

	req, ok := h.decodeScheduleRequest(w, r.WithContext(ctx), true)
	if !ok {
		return
	}

	issues, err := h.scheduleService.ValidateDivision(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "validate schedule failed", "league_id", req.LeagueID, "division", req.Division, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, issuesToDTO(issues))
}

func (h *Handler) PreviewSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PreviewSeason")
	defer span.End()

	req, ok := h.decodeScheduleRequest(w, r.WithContext(ctx), false)
	if !ok {
		return
	}

	previews, err := h.scheduleService.PreviewSeason(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "preview season failed", "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]divisionPreviewDTO, 0, len(previews))
	for _, preview := range previews {
		items = append(items, divisionPreviewToDTO(ctx, preview))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ValidateDivisions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ValidateDivisions")
	defer span.End()

	req, ok := h.decodeScheduleRequest(w, r.WithContext(ctx), false)
	if !ok {
		return
	}

	validations, err := h.scheduleService.ValidateDivisions(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "validate divisions failed", "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]divisionValidationDTO, 0, len(validations))
	for _, validation := range validations {
		items = append(items, divisionValidationDTO{
			Division: validation.Division,
			Issues:   issuesToDTO(validation.Issues),
			Error:    validation.Error,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetScheduleRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetScheduleRun")
	defer span.End()

	runID := strings.TrimSpace(r.PathValue("runID"))
	run, exists, err := h.scheduleService.GetRun(ctx, runID)
	if err != nil {
		h.logger.WarnContext(ctx, "get schedule run failed", "run_id", runID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !exists {
		writeError(ctx, w, fmt.Errorf("%w: schedule run %s", usecase.ErrNotFound, runID))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, runToDTO(ctx, run))
}

func (h *Handler) ListScheduleRuns(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListScheduleRuns")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	runs, err := h.scheduleService.ListRuns(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list schedule runs failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]runDTO, 0, len(runs))
	for _, run := range runs {
		items = append(items, runToDTO(ctx, run))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
