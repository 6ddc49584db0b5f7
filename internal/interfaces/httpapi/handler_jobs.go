package httpapi

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/nflsurvivor/survivor-pool/internal/usecase"
)

// Job endpoints are invoked by the queue with at-least-once delivery.
// Both handlers are idempotent: re-resolving an already graded match is
// a no-op, so duplicate deliveries are safe.

func (h *Handler) RunResolveMatchJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunResolveMatchJob")
	defer span.End()

	if h.resolverService == nil {
		writeError(ctx, w, fmt.Errorf("%w: resolver is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req resolveMatchJobRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	resolution, err := h.resolverService.ResolveMatch(ctx, req.MatchID)
	if err != nil {
		h.logger.WarnContext(ctx, "resolve match job failed",
			"match_id", req.MatchID,
			"dispatch_id", req.DispatchID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "resolve match job done",
		"match_id", req.MatchID,
		"dispatch_id", req.DispatchID,
		"status", resolution.Status,
		"picks_resolved", resolution.PicksResolved,
	)
	writeSuccess(ctx, w, http.StatusOK, resolution)
}

func (h *Handler) RunResolveWeekJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunResolveWeekJob")
	defer span.End()

	if h.resolverService == nil {
		writeError(ctx, w, fmt.Errorf("%w: resolver is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req resolveWeekJobRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.resolverService.ResolveWeek(ctx, req.SeasonID, req.Week, req.MaxWorkers)
	if err != nil {
		h.logger.WarnContext(ctx, "resolve week job failed",
			"season_id", req.SeasonID,
			"week", req.Week,
			"dispatch_id", req.DispatchID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "resolve week job done",
		"season_id", req.SeasonID,
		"week", req.Week,
		"dispatch_id", req.DispatchID,
		"resolved", report.ResolvedCount,
		"skipped", report.SkippedCount,
		"failed", report.FailedCount,
	)
	writeSuccess(ctx, w, http.StatusOK, report)
}

type resolveMatchJobRequest struct {
	MatchID    string `json:"match_id" validate:"required"`
	DispatchID string `json:"dispatch_id"`
}

type resolveWeekJobRequest struct {
	SeasonID   string `json:"season_id" validate:"required"`
	Week       int    `json:"week" validate:"required,min=1"`
	MaxWorkers int    `json:"max_workers" validate:"min=0"`
	DispatchID string `json:"dispatch_id"`
}
