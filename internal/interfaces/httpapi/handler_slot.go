package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/agsa/field-scheduler/internal/domain/slot"
	"github.com/agsa/field-scheduler/internal/usecase"
)

func (h *Handler) ListSlotsByLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSlotsByLeague")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	filter := slot.Filter{
		LeagueID: leagueID,
		Division: strings.TrimSpace(r.URL.Query().Get("division")),
		FieldKey: strings.TrimSpace(r.URL.Query().Get("fieldKey")),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		from, err := parseDateField("from", raw)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		filter.DateFrom = from
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		to, err := parseDateField("to", raw)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		filter.DateTo = to
	}
	for _, raw := range r.URL.Query()["status"] {
		status, err := slot.ParseStatus(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: status: %v", usecase.ErrInvalidInput, err))
			return
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	slots, err := h.slotService.ListSlots(ctx, filter)
	if err != nil {
		h.logger.WarnContext(ctx, "list slots failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]slotDTO, 0, len(slots))
	for _, s := range slots {
		items = append(items, slotToDTO(ctx, s))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetSlot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSlot")
	defer span.End()

	slotID := strings.TrimSpace(r.PathValue("slotID"))
	item, exists, err := h.slotService.GetSlot(ctx, slotID)
	if err != nil {
		h.logger.WarnContext(ctx, "get slot failed", "slot_id", slotID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !exists {
		writeError(ctx, w, fmt.Errorf("%w: slot %s", usecase.ErrNotFound, slotID))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, slotToDTO(ctx, item))
}

func (h *Handler) CreateSlot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateSlot")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	var req createSlotRequest
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

	date, err := parseDateField("gameDate", req.GameDate)
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

	item, err := h.slotService.CreateSlot(ctx, usecase.CreateSlotInput{
		LeagueID:        leagueID,
		Division:        req.Division,
		FieldKey:        req.FieldKey,
		Date:            date,
		StartMinutes:    startMinutes,
		EndMinutes:      endMinutes,
		OfferingTeamID:  req.OfferingTeamID,
		GameType:        req.GameType,
		Notes:           req.Notes,
		IsAvailability:  req.IsAvailability,
		IsExternalOffer: req.IsExternalOffer,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create slot failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, slotToDTO(ctx, item))
}

func (h *Handler) RequestSlot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RequestSlot")
	defer span.End()

	slotID := strings.TrimSpace(r.PathValue("slotID"))
	var req slotRequestRequest
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

	item, err := h.slotService.RequestSlot(ctx, slotID, req.TeamID)
	if err != nil {
		h.logger.WarnContext(ctx, "request slot failed", "slot_id", slotID, "team_id", req.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, slotRequestToDTO(ctx, item))
}

func (h *Handler) ListSlotRequests(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSlotRequests")
	defer span.End()

	slotID := strings.TrimSpace(r.PathValue("slotID"))
	requests, err := h.slotService.ListRequests(ctx, slotID)
	if err != nil {
		h.logger.WarnContext(ctx, "list slot requests failed", "slot_id", slotID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]slotRequestDTO, 0, len(requests))
	for _, request := range requests {
		items = append(items, slotRequestToDTO(ctx, request))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ApproveSlotRequest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApproveSlotRequest")
	defer span.End()

	slotID := strings.TrimSpace(r.PathValue("slotID"))
	requestID := strings.TrimSpace(r.PathValue("requestID"))
	item, err := h.slotService.ApproveRequest(ctx, slotID, requestID)
	if err != nil {
		h.logger.WarnContext(ctx, "approve slot request failed", "slot_id", slotID, "request_id", requestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, slotToDTO(ctx, item))
}

func (h *Handler) RejectSlotRequest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RejectSlotRequest")
	defer span.End()

	slotID := strings.TrimSpace(r.PathValue("slotID"))
	requestID := strings.TrimSpace(r.PathValue("requestID"))
	if err := h.slotService.RejectRequest(ctx, slotID, requestID); err != nil {
		h.logger.WarnContext(ctx, "reject slot request failed", "slot_id", slotID, "request_id", requestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "rejected"})
}

func (h *Handler) CancelSlot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelSlot")
	defer span.End()

	slotID := strings.TrimSpace(r.PathValue("slotID"))
	item, err := h.slotService.CancelSlot(ctx, slotID)
	if err != nil {
		h.logger.WarnContext(ctx, "cancel slot failed", "slot_id", slotID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, slotToDTO(ctx, item))
}
