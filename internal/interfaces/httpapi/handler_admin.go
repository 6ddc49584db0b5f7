package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/nflsurvivor/survivor-pool/internal/usecase"
)

func (h *Handler) IngestResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestResults")
	defer span.End()

	var req ingestResultsRequest
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

	items := make([]usecase.MatchResultInput, 0, len(req.Results))
	for i, row := range req.Results {
		kickoffAt, err := time.Parse(time.RFC3339, row.KickoffAt)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: results[%d].kickoff_at %q is not RFC3339", usecase.ErrInvalidInput, i, row.KickoffAt))
			return
		}
		items = append(items, usecase.MatchResultInput{
			MatchID:    row.MatchID,
			SeasonID:   row.SeasonID,
			Week:       row.Week,
			HomeTeamID: row.HomeTeamID,
			AwayTeamID: row.AwayTeamID,
			KickoffAt:  kickoffAt,
			Status:     row.Status,
			HomeScore:  row.HomeScore,
			AwayScore:  row.AwayScore,
		})
	}

	outcome, err := h.ingestionService.IngestResults(ctx, items)
	if err != nil {
		h.logger.WarnContext(ctx, "ingest results failed", "count", len(items), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, outcome)
}

func (h *Handler) RunScheduleSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunScheduleSync")
	defer span.End()

	if h.scheduleSyncService == nil {
		writeError(ctx, w, fmt.Errorf("%w: schedule sync is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeScheduleSyncRequest(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.scheduleSyncService.SyncSchedule(ctx, req.SeasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "schedule sync failed", "season_id", req.SeasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) SetCurrentWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetCurrentWeek")
	defer span.End()

	seasonID := r.PathValue("seasonID")

	var req setCurrentWeekRequest
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

	updated, err := h.seasonService.SetCurrentWeek(ctx, seasonID, req.Week)
	if err != nil {
		h.logger.WarnContext(ctx, "set current week failed", "season_id", seasonID, "week", req.Week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(ctx, updated))
}

func decodeScheduleSyncRequest(ctx context.Context, r *http.Request) (scheduleSyncRequest, error) {
	_, span := startSpan(ctx, "httpapi.decodeScheduleSyncRequest")
	defer span.End()

	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req scheduleSyncRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return scheduleSyncRequest{}, nil
		}
		return scheduleSyncRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}

type ingestResultsRequest struct {
	Results []matchResultRow `json:"results" validate:"required,min=1,dive"`
}

type matchResultRow struct {
	MatchID    string `json:"match_id" validate:"required"`
	SeasonID   string `json:"season_id" validate:"required"`
	Week       int    `json:"week" validate:"required,min=1"`
	HomeTeamID string `json:"home_team_id" validate:"required"`
	AwayTeamID string `json:"away_team_id" validate:"required"`
	KickoffAt  string `json:"kickoff_at" validate:"required"`
	Status     string `json:"status" validate:"required"`
	HomeScore  *int   `json:"home_score"`
	AwayScore  *int   `json:"away_score"`
}

type scheduleSyncRequest struct {
	SeasonID string `json:"season_id"`
}

type setCurrentWeekRequest struct {
	Week int `json:"week" validate:"required,min=1"`
}
