package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/agsa/field-scheduler/internal/usecase"
)

func (h *Handler) PreviewAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PreviewAvailability")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	var req availabilityPreviewRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	from, err := parseDateField("from", req.From)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	to, err := parseDateField("to", req.To)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	candidates, err := h.availabilityService.PreviewAvailability(ctx, usecase.PreviewAvailabilityInput{
		LeagueID: leagueID,
		Division: req.Division,
		From:     from,
		To:       to,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "preview availability failed", "league_id", leagueID, "division", req.Division, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, candidatesToDTO(candidates))
}

func (h *Handler) CreateAvailabilityRule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateAvailabilityRule")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	var req createRuleRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	startsOn, err := parseDateField("startsOn", req.StartsOn)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	endsOn, err := parseDateField("endsOn", req.EndsOn)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	daysOfWeek, err := parseWeekdays(req.DaysOfWeek)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	startMinutes, err := parseClockField("startTime", req.StartTime)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	endMinutes, err := parseClockField("endTime", req.EndTime)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rule, err := h.availabilityService.CreateRule(ctx, usecase.CreateRuleInput{
		LeagueID:     leagueID,
		Division:     req.Division,
		FieldKey:     req.FieldKey,
		StartsOn:     startsOn,
		EndsOn:       endsOn,
		DaysOfWeek:   daysOfWeek,
		StartMinutes: startMinutes,
		EndMinutes:   endMinutes,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create availability rule failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, ruleToDTO(ctx, rule))
}

func (h *Handler) CreateAvailabilityException(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateAvailabilityException")
	defer span.End()

	ruleID := strings.TrimSpace(r.PathValue("ruleID"))
	var req createExceptionRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	startsOn, err := parseDateField("startsOn", req.StartsOn)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	endsOn, err := parseDateField("endsOn", req.EndsOn)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	// An empty time window blacks out the whole day.
	startMinutes, endMinutes := 0, 0
	if strings.TrimSpace(req.StartTime) != "" || strings.TrimSpace(req.EndTime) != "" {
		startMinutes, err = parseClockField("startTime", req.StartTime)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		endMinutes, err = parseClockField("endTime", req.EndTime)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
	}

	exception, err := h.availabilityService.CreateException(ctx, usecase.CreateExceptionInput{
		RuleID:       ruleID,
		StartsOn:     startsOn,
		EndsOn:       endsOn,
		StartMinutes: startMinutes,
		EndMinutes:   endMinutes,
		Reason:       req.Reason,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create availability exception failed", "rule_id", ruleID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, exceptionToDTO(ctx, exception))
}
