package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/nflsurvivor/survivor-pool/internal/domain/entry"
	"github.com/nflsurvivor/survivor-pool/internal/domain/match"
	"github.com/nflsurvivor/survivor-pool/internal/domain/pick"
	"github.com/nflsurvivor/survivor-pool/internal/domain/season"
	"github.com/sourcegraph/conc"
)

// TeamPickCount is how many entries selected a team in a given week.
type TeamPickCount struct {
	TeamID string
	Count  int
}

// WeekSummary is the aggregate picture of one season week.
type WeekSummary struct {
	SeasonID         string
	Week             int
	MatchCount       int
	CompletedMatches int
	PickCount        int
	PendingPicks     int
	Wins             int
	Losses           int
	Ties             int
	TeamPicks        []TeamPickCount
	AliveEntries     int
	LastChance       int
	Eliminated       int
	EliminatedInWeek int
}

// SummaryService serves derived week-level views. Loads are independent
// reads, so they fan out concurrently.
type SummaryService struct {
	seasonRepo season.Repository
	entryRepo  entry.Repository
	matchRepo  match.Repository
	pickRepo   pick.Repository
	resolver   seasonResolver
	logger     *slog.Logger
}

func NewSummaryService(
	seasonRepo season.Repository,
	entryRepo entry.Repository,
	matchRepo match.Repository,
	pickRepo pick.Repository,
	resolver seasonResolver,
	logger *slog.Logger,
) *SummaryService {
	if logger == nil {
		logger = slog.Default()
	}

	return &SummaryService{
		seasonRepo: seasonRepo,
		entryRepo:  entryRepo,
		matchRepo:  matchRepo,
		pickRepo:   pickRepo,
		resolver:   resolver,
		logger:     logger,
	}
}

func (s *SummaryService) WeekSummary(ctx context.Context, seasonID string, week int) (WeekSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SummaryService.WeekSummary")
	defer span.End()

	seasonID = strings.TrimSpace(seasonID)
	if seasonID == "" {
		return WeekSummary{}, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}
	if week < 1 {
		return WeekSummary{}, fmt.Errorf("%w: week must be >= 1", ErrInvalidInput)
	}

	seasonRow, exists, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		return WeekSummary{}, fmt.Errorf("get season by id: %w", err)
	}
	if !exists {
		return WeekSummary{}, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
	}
	if !seasonRow.ContainsWeek(week) {
		return WeekSummary{}, fmt.Errorf("%w: week %d is outside season %s", ErrInvalidInput, week, seasonID)
	}

	if s.resolver != nil {
		if err := s.resolver.EnsureSeasonResolved(ctx, seasonID); err != nil {
			return WeekSummary{}, err
		}
	}

	var (
		matches    []match.Match
		matchesErr error
		picks      []pick.Pick
		picksErr   error
		entries    []entry.Entry
		entriesErr error
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		matches, matchesErr = s.matchRepo.ListBySeasonWeek(ctx, seasonID, week)
	})
	wg.Go(func() {
		picks, picksErr = s.pickRepo.ListBySeasonWeek(ctx, seasonID, week)
	})
	wg.Go(func() {
		entries, entriesErr = s.entryRepo.ListBySeason(ctx, seasonID)
	})
	wg.Wait()

	if matchesErr != nil {
		return WeekSummary{}, fmt.Errorf("list matches for summary: %w", matchesErr)
	}
	if picksErr != nil {
		return WeekSummary{}, fmt.Errorf("list picks for summary: %w", picksErr)
	}
	if entriesErr != nil {
		return WeekSummary{}, fmt.Errorf("list entries for summary: %w", entriesErr)
	}

	out := WeekSummary{
		SeasonID:   seasonID,
		Week:       week,
		MatchCount: len(matches),
		PickCount:  len(picks),
	}

	for _, m := range matches {
		if m.Completed() {
			out.CompletedMatches++
		}
	}

	pickedBy := make(map[string]int)
	for _, p := range picks {
		pickedBy[p.TeamID]++
		switch p.Result {
		case pick.ResultWin:
			out.Wins++
		case pick.ResultLoss:
			out.Losses++
		case pick.ResultTie:
			out.Ties++
		default:
			out.PendingPicks++
		}
	}

	out.TeamPicks = make([]TeamPickCount, 0, len(pickedBy))
	for teamID, count := range pickedBy {
		out.TeamPicks = append(out.TeamPicks, TeamPickCount{TeamID: teamID, Count: count})
	}
	sort.SliceStable(out.TeamPicks, func(i, j int) bool {
		if out.TeamPicks[i].Count != out.TeamPicks[j].Count {
			return out.TeamPicks[i].Count > out.TeamPicks[j].Count
		}
		return out.TeamPicks[i].TeamID < out.TeamPicks[j].TeamID
	})

	for _, item := range entries {
		switch item.Status {
		case entry.StatusAlive:
			out.AliveEntries++
		case entry.StatusLastChance:
			out.LastChance++
		case entry.StatusEliminated:
			out.Eliminated++
			if item.EliminatedWeek != nil && *item.EliminatedWeek == week {
				out.EliminatedInWeek++
			}
		}
	}

	return out, nil
}
