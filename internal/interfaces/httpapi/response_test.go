package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/nflsurvivor/survivor-pool/internal/domain/survivor"
	"github.com/nflsurvivor/survivor-pool/internal/usecase"
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

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestMapError_EligibilityRejectionsAreConflicts(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reason string
	}{
		{name: "team reuse", err: survivor.ErrTeamAlreadyUsed, reason: "TEAM_ALREADY_USED"},
		{name: "started match", err: survivor.ErrMatchAlreadyStarted, reason: "MATCH_ALREADY_STARTED"},
		{name: "locked pick", err: survivor.ErrCannotChangeStartedPick, reason: "CANNOT_CHANGE_STARTED_PICK"},
		{name: "lost race", err: usecase.ErrConcurrentModification, reason: "CONCURRENT_MODIFICATION"},
		{name: "spent token", err: usecase.ErrTokenNotRedeemable, reason: "TOKEN_NOT_REDEEMABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := mapError(context.Background(), fmt.Errorf("wrapped: %w", tt.err))
			if mapped.HTTPStatus != http.StatusConflict {
				t.Fatalf("expected 409, got %d", mapped.HTTPStatus)
			}
			if mapped.Reason != tt.reason {
				t.Fatalf("expected reason %s, got %s", tt.reason, mapped.Reason)
			}
		})
	}
}

func TestMapError_NoActiveSeasonIsNotFound(t *testing.T) {
	mapped := mapError(context.Background(), fmt.Errorf("%w: pool is idle", usecase.ErrNoActiveSeason))
	if mapped.HTTPStatus != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", mapped.HTTPStatus)
	}
	if mapped.Reason != "NO_ACTIVE_SEASON" {
		t.Fatalf("unexpected reason %s", mapped.Reason)
	}
}
