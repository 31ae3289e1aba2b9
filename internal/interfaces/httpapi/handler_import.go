package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/agsa/field-scheduler/internal/usecase"
)

// maxImportBodyBytes caps CSV uploads; the league exports top out well
// under a megabyte.
const maxImportBodyBytes = 8 << 20

func (h *Handler) ImportSlots(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportSlots")
	defer span.End()

	if !isAdmin(ctx) {
		writeError(ctx, w, fmt.Errorf("%w: import requires an admin token", usecase.ErrUnauthorized))
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	body := http.MaxBytesReader(w, r.Body, maxImportBodyBytes)
	defer func() {
		_ = body.Close()
	}()

	result, err := h.importService.ImportSlots(ctx, leagueID, body)
	if err != nil {
		h.logger.WarnContext(ctx, "import slots failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "slot import finished",
		"league_id", leagueID,
		"created", result.Created,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	writeSuccess(ctx, w, http.StatusOK, importResultToDTO(ctx, result))
}
