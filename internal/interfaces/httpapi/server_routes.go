package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerReadRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues/{leagueID}/slots", handler.ListSlotsByLeague)
	mux.HandleFunc("GET /v1/slots/{slotID}", handler.GetSlot)
	mux.HandleFunc("GET /v1/slots/{slotID}/requests", handler.ListSlotRequests)
	mux.HandleFunc("POST /v1/leagues/{leagueID}/availability/preview", handler.PreviewAvailability)
	mux.HandleFunc("POST /v1/leagues/{leagueID}/schedule/preview", handler.PreviewSchedule)
	mux.HandleFunc("POST /v1/leagues/{leagueID}/schedule/validate", handler.ValidateSchedule)
	mux.HandleFunc("POST /v1/leagues/{leagueID}/schedule/validate/divisions", handler.ValidateDivisions)
	mux.HandleFunc("POST /v1/leagues/{leagueID}/schedule/season/preview", handler.PreviewSeason)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/schedule/runs", handler.ListScheduleRuns)
	mux.HandleFunc("GET /v1/schedule/runs/{runID}", handler.GetScheduleRun)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	mux.Handle("POST /v1/leagues/{leagueID}/slots", RequireAdminToken(adminToken, http.HandlerFunc(handler.CreateSlot)))
	mux.Handle("POST /v1/slots/{slotID}/requests", RequireAdminToken(adminToken, http.HandlerFunc(handler.RequestSlot)))
	mux.Handle("POST /v1/slots/{slotID}/requests/{requestID}/approve", RequireAdminToken(adminToken, http.HandlerFunc(handler.ApproveSlotRequest)))
	mux.Handle("POST /v1/slots/{slotID}/requests/{requestID}/reject", RequireAdminToken(adminToken, http.HandlerFunc(handler.RejectSlotRequest)))
	mux.Handle("POST /v1/slots/{slotID}/cancel", RequireAdminToken(adminToken, http.HandlerFunc(handler.CancelSlot)))
	mux.Handle("POST /v1/leagues/{leagueID}/availability/rules", RequireAdminToken(adminToken, http.HandlerFunc(handler.CreateAvailabilityRule)))
	mux.Handle("POST /v1/availability/rules/{ruleID}/exceptions", RequireAdminToken(adminToken, http.HandlerFunc(handler.CreateAvailabilityException)))
	mux.Handle("POST /v1/leagues/{leagueID}/schedule/apply", RequireAdminToken(adminToken, http.HandlerFunc(handler.ApplySchedule)))
	mux.Handle("POST /v1/leagues/{leagueID}/import/slots", RequireAdminToken(adminToken, http.HandlerFunc(handler.ImportSlots)))
}
