package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nflsurvivor/survivor-pool/internal/domain/match"
	"github.com/nflsurvivor/survivor-pool/internal/domain/season"
	"github.com/nflsurvivor/survivor-pool/internal/domain/team"
)

// ScheduleProvider is the upstream NFL data feed.
type ScheduleProvider interface {
	FetchTeams(ctx context.Context) ([]ExternalTeam, error)
	FetchSeasonGames(ctx context.Context, year int) ([]ExternalGame, error)
}

type ExternalTeam struct {
	ExternalID   string
	Name         string
	City         string
	Abbreviation string
	Conference   string
	Division     string
}

type ExternalGame struct {
	ExternalID string
	Week       int
	HomeAbbr   string
	AwayAbbr   string
	KickoffAt  time.Time
	Status     string
	HomeScore  *int
	AwayScore  *int
}

type ScheduleSyncConfig struct {
	Enabled bool
}

// ScheduleSyncResult summarizes one provider import.
type ScheduleSyncResult struct {
	SeasonID     string `json:"season_id"`
	TeamCount    int    `json:"team_count"`
	MatchCount   int    `json:"match_count"`
	SkippedGames int    `json:"skipped_games"`
}

// ScheduleSyncService imports the season schedule and team list from
// the upstream provider.
type ScheduleSyncService struct {
	provider   ScheduleProvider
	seasonRepo season.Repository
	teamRepo   team.Repository
	matchRepo  match.Repository
	cfg        ScheduleSyncConfig
	logger     *slog.Logger
}

func NewScheduleSyncService(
	provider ScheduleProvider,
	seasonRepo season.Repository,
	teamRepo team.Repository,
	matchRepo match.Repository,
	cfg ScheduleSyncConfig,
	logger *slog.Logger,
) *ScheduleSyncService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ScheduleSyncService{
		provider:   provider,
		seasonRepo: seasonRepo,
		teamRepo:   teamRepo,
		matchRepo:  matchRepo,
		cfg:        cfg,
		logger:     logger,
	}
}

// SyncSchedule pulls teams and games for the season's year and upserts
// them. Games referencing unknown team abbreviations are skipped with a
// warning rather than failing the import.
func (s *ScheduleSyncService) SyncSchedule(ctx context.Context, seasonID string) (ScheduleSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleSyncService.SyncSchedule")
	defer span.End()

	if !s.cfg.Enabled {
		return ScheduleSyncResult{}, fmt.Errorf("%w: schedule sync is disabled (GRIDIRON_ENABLED=false)", ErrDependencyUnavailable)
	}
	if s.provider == nil {
		return ScheduleSyncResult{}, fmt.Errorf("%w: schedule provider is not configured", ErrDependencyUnavailable)
	}

	seasonID = strings.TrimSpace(seasonID)
	if seasonID == "" {
		return ScheduleSyncResult{}, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}
	seasonRow, exists, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		return ScheduleSyncResult{}, fmt.Errorf("get season by id: %w", err)
	}
	if !exists {
		return ScheduleSyncResult{}, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
	}

	externalTeams, err := s.provider.FetchTeams(ctx)
	if err != nil {
		return ScheduleSyncResult{}, fmt.Errorf("fetch teams from provider: %w", err)
	}

	teams := make([]team.Team, 0, len(externalTeams))
	teamIDByAbbr := make(map[string]string, len(externalTeams))
	for _, item := range externalTeams {
		row := team.Team{
			ID:           teamIDFromAbbreviation(item.Abbreviation),
			Name:         strings.TrimSpace(item.Name),
			City:         strings.TrimSpace(item.City),
			Abbreviation: strings.ToUpper(strings.TrimSpace(item.Abbreviation)),
			Conference:   strings.ToUpper(strings.TrimSpace(item.Conference)),
			Division:     strings.TrimSpace(item.Division),
		}
		if err := row.Validate(); err != nil {
			return ScheduleSyncResult{}, fmt.Errorf("validate team external_id=%s: %w", item.ExternalID, err)
		}
		teams = append(teams, row)
		teamIDByAbbr[row.Abbreviation] = row.ID
	}
	if len(teams) > 0 {
		if err := s.teamRepo.UpsertTeams(ctx, teams); err != nil {
			return ScheduleSyncResult{}, fmt.Errorf("upsert teams: %w", err)
		}
	}

	games, err := s.provider.FetchSeasonGames(ctx, seasonRow.Year)
	if err != nil {
		return ScheduleSyncResult{}, fmt.Errorf("fetch season games from provider year=%d: %w", seasonRow.Year, err)
	}

	result := ScheduleSyncResult{SeasonID: seasonID, TeamCount: len(teams)}
	matches := make([]match.Match, 0, len(games))
	for _, game := range games {
		homeID := teamIDByAbbr[strings.ToUpper(strings.TrimSpace(game.HomeAbbr))]
		awayID := teamIDByAbbr[strings.ToUpper(strings.TrimSpace(game.AwayAbbr))]
		if homeID == "" || awayID == "" || game.Week < 1 || game.KickoffAt.IsZero() {
			result.SkippedGames++
			s.logger.WarnContext(ctx, "skipping unmappable provider game",
				"external_id", game.ExternalID,
				"home", game.HomeAbbr,
				"away", game.AwayAbbr,
				"week", game.Week,
			)
			continue
		}

		matches = append(matches, match.Match{
			ID:         matchIDFromExternal(seasonID, game.ExternalID),
			SeasonID:   seasonID,
			Week:       game.Week,
			HomeTeamID: homeID,
			AwayTeamID: awayID,
			KickoffAt:  game.KickoffAt.UTC(),
			Status:     match.NormalizeStatus(game.Status),
			HomeScore:  game.HomeScore,
			AwayScore:  game.AwayScore,
		})
	}
	if len(matches) > 0 {
		if err := s.matchRepo.UpsertMatches(ctx, matches); err != nil {
			return ScheduleSyncResult{}, fmt.Errorf("upsert matches: %w", err)
		}
	}
	result.MatchCount = len(matches)

	s.logger.InfoContext(ctx, "schedule synced",
		"season_id", seasonID,
		"teams", result.TeamCount,
		"matches", result.MatchCount,
		"skipped", result.SkippedGames,
	)
	return result, nil
}

func teamIDFromAbbreviation(abbr string) string {
	return strings.ToLower(strings.TrimSpace(abbr))
}

func matchIDFromExternal(seasonID, externalID string) string {
	return seasonID + "-" + sanitizeDedupSegment(strings.ToLower(externalID))
}
