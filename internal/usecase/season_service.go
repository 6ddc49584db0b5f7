package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/nflsurvivor/survivor-pool/internal/domain/match"
	"github.com/nflsurvivor/survivor-pool/internal/domain/season"
)

// SeasonService serves season metadata and the week schedule.
type SeasonService struct {
	seasonRepo season.Repository
	matchRepo  match.Repository
	logger     *slog.Logger
}

func NewSeasonService(seasonRepo season.Repository, matchRepo match.Repository, logger *slog.Logger) *SeasonService {
	if logger == nil {
		logger = slog.Default()
	}

	return &SeasonService{
		seasonRepo: seasonRepo,
		matchRepo:  matchRepo,
		logger:     logger,
	}
}

func (s *SeasonService) ActiveSeason(ctx context.Context) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.ActiveSeason")
	defer span.End()

	item, exists, err := s.seasonRepo.GetActive(ctx)
	if err != nil {
		return season.Season{}, fmt.Errorf("get active season: %w", err)
	}
	if !exists {
		return season.Season{}, ErrNoActiveSeason
	}
	return item, nil
}

// WeekMatches lists the matches of one season week in kickoff order.
func (s *SeasonService) WeekMatches(ctx context.Context, seasonID string, week int) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.WeekMatches")
	defer span.End()

	seasonID = strings.TrimSpace(seasonID)
	if seasonID == "" {
		return nil, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}
	if week < 1 {
		return nil, fmt.Errorf("%w: week must be >= 1", ErrInvalidInput)
	}

	seasonRow, exists, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("get season by id: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
	}
	if !seasonRow.ContainsWeek(week) {
		return nil, fmt.Errorf("%w: week %d is outside season %s", ErrInvalidInput, week, seasonID)
	}

	matches, err := s.matchRepo.ListBySeasonWeek(ctx, seasonID, week)
	if err != nil {
		return nil, fmt.Errorf("list matches by week: %w", err)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if !matches[i].KickoffAt.Equal(matches[j].KickoffAt) {
			return matches[i].KickoffAt.Before(matches[j].KickoffAt)
		}
		return matches[i].ID < matches[j].ID
	})

	return matches, nil
}

// SetCurrentWeek advances the season pointer. Admin surface only; the
// pointer never moves backwards.
func (s *SeasonService) SetCurrentWeek(ctx context.Context, seasonID string, week int) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.SetCurrentWeek")
	defer span.End()

	seasonID = strings.TrimSpace(seasonID)
	if seasonID == "" {
		return season.Season{}, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}

	seasonRow, exists, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		return season.Season{}, fmt.Errorf("get season by id: %w", err)
	}
	if !exists {
		return season.Season{}, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
	}
	if !seasonRow.ContainsWeek(week) {
		return season.Season{}, fmt.Errorf("%w: week %d is outside season %s", ErrInvalidInput, week, seasonID)
	}
	if week < seasonRow.CurrentWeek {
		return season.Season{}, fmt.Errorf("%w: current week cannot move backwards from %d to %d", ErrInvalidInput, seasonRow.CurrentWeek, week)
	}

	if err := s.seasonRepo.SetCurrentWeek(ctx, seasonID, week); err != nil {
		return season.Season{}, fmt.Errorf("set current week: %w", err)
	}

	seasonRow.CurrentWeek = week
	s.logger.InfoContext(ctx, "season current week updated",
		"season_id", seasonID,
		"week", week,
	)
	return seasonRow, nil
}
