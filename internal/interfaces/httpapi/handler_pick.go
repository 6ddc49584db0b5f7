package httpapi

import (
	"context"
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/nflsurvivor/survivor-pool/internal/usecase"
)

func (h *Handler) ListEntryPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListEntryPicks")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	entryID := r.PathValue("entryID")
	ent, err := h.pickService.EntryForOwner(ctx, entryID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list picks denied", "entry_id", entryID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	picks, err := h.pickService.ListPicks(ctx, ent.ID, ent.SeasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "list picks failed", "entry_id", entryID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]pickDTO, 0, len(picks))
	for _, p := range picks {
		items = append(items, pickToDTO(ctx, p))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListUsedTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUsedTeams")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	entryID := r.PathValue("entryID")
	ent, err := h.pickService.EntryForOwner(ctx, entryID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list used teams denied", "entry_id", entryID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	teams, err := h.pickService.UsedTeams(ctx, ent.ID, ent.SeasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "list used teams failed", "entry_id", entryID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, usedTeamsDTO{EntryID: ent.ID, SeasonID: ent.SeasonID, TeamIDs: teams})
}

func (h *Handler) SubmitWeeklyPick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitWeeklyPick")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	entryID := r.PathValue("entryID")
	week, err := parseWeek(ctx, r.PathValue("week"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitPickRequest
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

	ent, err := h.pickService.EntryForOwner(ctx, entryID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "submit pick denied", "entry_id", entryID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	result, err := h.pickService.SubmitPick(ctx, usecase.SubmitPickInput{
		EntryID:        ent.ID,
		Week:           week,
		MatchID:        req.MatchID,
		TeamID:         req.TeamID,
		ConfirmReplace: req.ConfirmReplace,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit pick failed",
			"entry_id", entryID,
			"week", week,
			"match_id", req.MatchID,
			"team_id", req.TeamID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, submitPickResponseDTO(ctx, result))
}

type submitPickRequest struct {
	MatchID        string `json:"match_id" validate:"required"`
	TeamID         string `json:"team_id" validate:"required"`
	ConfirmReplace bool   `json:"confirm_replace"`
}

type usedTeamsDTO struct {
	EntryID  string   `json:"entryId"`
	SeasonID string   `json:"seasonId"`
	TeamIDs  []string `json:"teamIds"`
}

type submitPickDTO struct {
	Status    string   `json:"status"`
	Pick      *pickDTO `json:"pick,omitempty"`
	Current   *pickDTO `json:"current,omitempty"`
	Candidate *pickDTO `json:"candidate,omitempty"`
}

func submitPickResponseDTO(ctx context.Context, result usecase.SubmitResult) submitPickDTO {
	ctx, span := startSpan(ctx, "httpapi.submitPickResponseDTO")
	defer span.End()

	out := submitPickDTO{Status: result.Status}
	switch result.Status {
	case usecase.SubmitStatusCommitted:
		committed := pickToDTO(ctx, result.Pick)
		out.Pick = &committed
	case usecase.SubmitStatusNeedsConfirmation:
		if result.Current != nil {
			current := pickToDTO(ctx, *result.Current)
			out.Current = &current
		}
		if result.Candidate != nil {
			candidate := pickToDTO(ctx, *result.Candidate)
			out.Candidate = &candidate
		}
	}

	return out
}
