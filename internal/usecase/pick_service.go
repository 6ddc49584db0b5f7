package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nflsurvivor/survivor-pool/internal/domain/entry"
	"github.com/nflsurvivor/survivor-pool/internal/domain/match"
	"github.com/nflsurvivor/survivor-pool/internal/domain/pick"
	"github.com/nflsurvivor/survivor-pool/internal/domain/season"
	"github.com/nflsurvivor/survivor-pool/internal/domain/survivor"
	idgen "github.com/nflsurvivor/survivor-pool/internal/platform/id"
)

const (
	SubmitStatusCommitted         = "committed"
	SubmitStatusNeedsConfirmation = "needs_confirmation"
)

// SubmitPickInput is the incoming payload for a weekly pick submission.
type SubmitPickInput struct {
	EntryID string
	Week    int
	MatchID string
	TeamID  string
	// ConfirmReplace acknowledges that the caller showed the current
	// vs. candidate team and the user explicitly confirmed the swap.
	ConfirmReplace bool
}

// SubmitResult is the outcome of a submission. Rejections are returned
// as errors, never encoded here.
type SubmitResult struct {
	Status    string
	Pick      pick.Pick
	Current   *pick.Pick
	Candidate *pick.Pick
}

type PickService struct {
	seasonRepo season.Repository
	entryRepo  entry.Repository
	matchRepo  match.Repository
	pickRepo   pick.Repository
	idGen      idgen.Generator
	logger     *slog.Logger
	now        func() time.Time

	// slotMu serializes commits per (entry, week) so two racing
	// submissions cannot both write the same slot.
	slotMu    sync.Mutex
	slotLocks map[string]*sync.Mutex
}

func NewPickService(
	seasonRepo season.Repository,
	entryRepo entry.Repository,
	matchRepo match.Repository,
	pickRepo pick.Repository,
	idGen idgen.Generator,
	logger *slog.Logger,
) *PickService {
	if logger == nil {
		logger = slog.Default()
	}

	return &PickService{
		seasonRepo: seasonRepo,
		entryRepo:  entryRepo,
		matchRepo:  matchRepo,
		pickRepo:   pickRepo,
		idGen:      idGen,
		logger:     logger,
		now:        time.Now,
		slotLocks:  make(map[string]*sync.Mutex),
	}
}

// EntryForOwner loads the entry and verifies userID controls it. Entry
// handlers call this before touching pick state so one user can never
// read or write another user's slot.
func (s *PickService) EntryForOwner(ctx context.Context, entryID, userID string) (entry.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.EntryForOwner")
	defer span.End()

	entryID = strings.TrimSpace(entryID)
	userID = strings.TrimSpace(userID)
	if entryID == "" || userID == "" {
		return entry.Entry{}, fmt.Errorf("%w: entry_id and user_id are required", ErrInvalidInput)
	}

	ent, exists, err := s.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("get entry %s: %w", entryID, err)
	}
	if !exists {
		return entry.Entry{}, fmt.Errorf("%w: entry %s", ErrNotFound, entryID)
	}
	if ent.UserID != userID {
		return entry.Entry{}, fmt.Errorf("%w: entry %s belongs to another user", ErrUnauthorized, entryID)
	}

	return ent, nil
}

// UsedTeams returns the entry's team-usage ledger for the season: every
// team appearing in a committed pick, including the current week's
// selection. Unknown entries yield an empty ledger, never an error.
func (s *PickService) UsedTeams(ctx context.Context, entryID, seasonID string) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.UsedTeams")
	defer span.End()

	entryID = strings.TrimSpace(entryID)
	seasonID = strings.TrimSpace(seasonID)
	if entryID == "" || seasonID == "" {
		return nil, fmt.Errorf("%w: entry_id and season_id are required", ErrInvalidInput)
	}

	picks, err := s.pickRepo.ListByEntry(ctx, entryID, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list picks by entry: %w", err)
	}

	seen := make(map[string]struct{}, len(picks))
	out := make([]string, 0, len(picks))
	for _, p := range picks {
		if _, ok := seen[p.TeamID]; ok {
			continue
		}
		seen[p.TeamID] = struct{}{}
		out = append(out, p.TeamID)
	}
	sort.Strings(out)

	return out, nil
}

// ListPicks returns the entry's picks for the season in week order.
func (s *PickService) ListPicks(ctx context.Context, entryID, seasonID string) ([]pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.ListPicks")
	defer span.End()

	entryID = strings.TrimSpace(entryID)
	seasonID = strings.TrimSpace(seasonID)
	if entryID == "" || seasonID == "" {
		return nil, fmt.Errorf("%w: entry_id and season_id are required", ErrInvalidInput)
	}

	picks, err := s.pickRepo.ListByEntry(ctx, entryID, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list picks by entry: %w", err)
	}
	sort.SliceStable(picks, func(i, j int) bool {
		return picks[i].Week < picks[j].Week
	})

	return picks, nil
}

// SubmitPick validates and commits a create-or-replace of the entry's
// weekly pick. Eligibility is re-checked here with the live clock even
// when the caller already checked at display time. A differing
// resubmission without ConfirmReplace returns a needs-confirmation
// result and writes nothing.
func (s *PickService) SubmitPick(ctx context.Context, input SubmitPickInput) (SubmitResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.SubmitPick")
	defer span.End()

	input.EntryID = strings.TrimSpace(input.EntryID)
	input.MatchID = strings.TrimSpace(input.MatchID)
	input.TeamID = strings.TrimSpace(input.TeamID)
	if input.EntryID == "" {
		return SubmitResult{}, fmt.Errorf("%w: entry id is required", ErrInvalidInput)
	}
	if input.MatchID == "" {
		return SubmitResult{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if input.TeamID == "" {
		return SubmitResult{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	if input.Week < 1 {
		return SubmitResult{}, fmt.Errorf("%w: week must be >= 1", ErrInvalidInput)
	}

	activeSeason, exists, err := s.seasonRepo.GetActive(ctx)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("get active season: %w", err)
	}
	if !exists {
		return SubmitResult{}, fmt.Errorf("%w: pick submission requires an active season", ErrNoActiveSeason)
	}
	if !activeSeason.ContainsWeek(input.Week) {
		return SubmitResult{}, fmt.Errorf("%w: week %d is outside season %s", ErrInvalidInput, input.Week, activeSeason.ID)
	}

	ent, exists, err := s.entryRepo.GetByID(ctx, input.EntryID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("get entry by id: %w", err)
	}
	if !exists {
		return SubmitResult{}, fmt.Errorf("%w: entry=%s", ErrNotFound, input.EntryID)
	}
	if ent.SeasonID != activeSeason.ID {
		return SubmitResult{}, fmt.Errorf("%w: entry=%s does not belong to the active season", ErrInvalidInput, ent.ID)
	}

	candMatch, exists, err := s.matchRepo.GetByID(ctx, input.MatchID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("get match by id: %w", err)
	}
	if !exists {
		return SubmitResult{}, fmt.Errorf("%w: match=%s", ErrNotFound, input.MatchID)
	}
	if candMatch.Week != input.Week || candMatch.SeasonID != activeSeason.ID {
		return SubmitResult{}, fmt.Errorf("%w: match=%s is not scheduled for week %d", ErrInvalidInput, candMatch.ID, input.Week)
	}
	if !candMatch.HasTeam(input.TeamID) {
		return SubmitResult{}, fmt.Errorf("%w: team=%s does not play in match=%s", ErrInvalidInput, input.TeamID, candMatch.ID)
	}

	unlock := s.lockSlot(slotKey(ent.ID, input.Week))
	defer unlock()

	return s.commitPick(ctx, activeSeason, ent, candMatch, input)
}

// commitPick runs under the slot lock. Eligibility determined before the
// lock could already be stale, so everything from the existing-pick
// lookup onward happens here.
func (s *PickService) commitPick(
	ctx context.Context,
	activeSeason season.Season,
	ent entry.Entry,
	candMatch match.Match,
	input SubmitPickInput,
) (SubmitResult, error) {
	now := s.now().UTC()

	existing, hasExisting, err := s.pickRepo.GetForWeek(ctx, ent.ID, activeSeason.ID, input.Week)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("get pick for week: %w", err)
	}

	var existingPick *pick.Pick
	var existingMatch *match.Match
	if hasExisting {
		existingPick = &existing
		m, ok, err := s.matchRepo.GetByID(ctx, existing.MatchID)
		if err != nil {
			return SubmitResult{}, fmt.Errorf("get existing pick match: %w", err)
		}
		if !ok {
			return SubmitResult{}, fmt.Errorf("%w: match=%s referenced by pick=%s", ErrNotFound, existing.MatchID, existing.ID)
		}
		existingMatch = &m
	}

	used, err := s.usedTeamSet(ctx, ent.ID, activeSeason.ID)
	if err != nil {
		return SubmitResult{}, err
	}

	cand := survivor.Candidate{Week: input.Week, Match: candMatch, TeamID: input.TeamID}
	if err := survivor.CheckEligibility(cand, existingPick, existingMatch, used, now); err != nil {
		return SubmitResult{}, err
	}

	if !hasExisting {
		id, err := s.idGen.NewID()
		if err != nil {
			return SubmitResult{}, fmt.Errorf("generate pick id: %w", err)
		}

		created := pick.Pick{
			ID:        id,
			EntryID:   ent.ID,
			SeasonID:  activeSeason.ID,
			MatchID:   candMatch.ID,
			Week:      input.Week,
			TeamID:    input.TeamID,
			Result:    pick.ResultPending,
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
		}
		if err := created.Validate(); err != nil {
			return SubmitResult{}, fmt.Errorf("validate pick: %w", err)
		}
		if err := s.pickRepo.Create(ctx, created); err != nil {
			if errors.Is(err, pick.ErrSlotTaken) {
				return SubmitResult{}, fmt.Errorf("%w: entry=%s week=%d", ErrConcurrentModification, ent.ID, input.Week)
			}
			return SubmitResult{}, fmt.Errorf("create pick: %w", err)
		}

		s.logger.InfoContext(ctx, "pick committed",
			"entry_id", ent.ID,
			"season_id", activeSeason.ID,
			"week", input.Week,
			"match_id", candMatch.ID,
			"team_id", input.TeamID,
		)
		return SubmitResult{Status: SubmitStatusCommitted, Pick: created}, nil
	}

	if existing.Resolved() {
		return SubmitResult{}, fmt.Errorf("%w: pick=%s is already resolved", survivor.ErrCannotChangeStartedPick, existing.ID)
	}

	// Idempotent resubmission keeps the original creation timestamp.
	if existing.MatchID == candMatch.ID && existing.TeamID == input.TeamID {
		return SubmitResult{Status: SubmitStatusCommitted, Pick: existing}, nil
	}

	candidate := existing
	candidate.MatchID = candMatch.ID
	candidate.TeamID = input.TeamID
	candidate.CreatedAt = now
	candidate.UpdatedAt = now

	if !input.ConfirmReplace {
		return SubmitResult{
			Status:    SubmitStatusNeedsConfirmation,
			Current:   existingPick,
			Candidate: &candidate,
		}, nil
	}

	replaced, err := s.pickRepo.Replace(ctx, candidate)
	if err != nil {
		if errors.Is(err, pick.ErrVersionMismatch) {
			return SubmitResult{}, fmt.Errorf("%w: entry=%s week=%d", ErrConcurrentModification, ent.ID, input.Week)
		}
		return SubmitResult{}, fmt.Errorf("replace pick: %w", err)
	}

	s.logger.InfoContext(ctx, "pick replaced",
		"entry_id", ent.ID,
		"season_id", activeSeason.ID,
		"week", input.Week,
		"old_team_id", existing.TeamID,
		"new_team_id", input.TeamID,
	)
	return SubmitResult{Status: SubmitStatusCommitted, Pick: replaced}, nil
}

func (s *PickService) usedTeamSet(ctx context.Context, entryID, seasonID string) (map[string]struct{}, error) {
	picks, err := s.pickRepo.ListByEntry(ctx, entryID, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list picks for usage ledger: %w", err)
	}

	used := make(map[string]struct{}, len(picks))
	for _, p := range picks {
		used[p.TeamID] = struct{}{}
	}
	return used, nil
}

func (s *PickService) lockSlot(key string) func() {
	s.slotMu.Lock()
	mu, ok := s.slotLocks[key]
	if !ok {
		mu = &sync.Mutex{}
		s.slotLocks[key] = mu
	}
	s.slotMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

func slotKey(entryID string, week int) string {
	return fmt.Sprintf("%s::%d", entryID, week)
}
