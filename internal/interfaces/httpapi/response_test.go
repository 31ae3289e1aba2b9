package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/agsa/field-scheduler/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestMapError_SchedulingSentinels(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantStatus string
	}{
		{"slot conflict", fmt.Errorf("%w: window taken", usecase.ErrSlotConflict), http.StatusConflict, "ALREADY_EXISTS"},
		{"invalid state", fmt.Errorf("%w: slot is Cancelled", usecase.ErrInvalidState), http.StatusConflict, "FAILED_PRECONDITION"},
		{"concurrent update", fmt.Errorf("%w: token retries exhausted", usecase.ErrConflict), http.StatusConflict, "ABORTED"},
		{"self request", fmt.Errorf("%w: offering team", usecase.ErrSelfRequest), http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"validation failed", fmt.Errorf("%w: 2 errors", usecase.ErrScheduleValidationFailed), http.StatusUnprocessableEntity, "FAILED_PRECONDITION"},
		{"not found", fmt.Errorf("%w: slot x", usecase.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mapped := mapError(context.Background(), tc.err)
			if mapped.HTTPStatus != tc.wantCode {
				t.Fatalf("expected http status %d, got %d", tc.wantCode, mapped.HTTPStatus)
			}
			if mapped.Status != tc.wantStatus {
				t.Fatalf("expected status %q, got %q", tc.wantStatus, mapped.Status)
			}
		})
	}
}
