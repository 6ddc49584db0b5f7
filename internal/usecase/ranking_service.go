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
)

// RankingRow is one entry's position on the season leaderboard.
type RankingRow struct {
	Rank           int
	EntryID        string
	UserID         string
	EntryName      string
	Points         int
	TotalWins      int
	TotalLosses    int
	TotalTies      int
	AwayWins       int
	CurrentStreak  int
	LongestStreak  int
	Status         string
	EliminatedWeek *int
}

type seasonResolver interface {
	EnsureSeasonResolved(ctx context.Context, seasonID string) error
}

// RankingService serves the season leaderboard. It is a read-side view
// recomputed from entries and picks on every call; the resolver ensure
// pass keeps the underlying aggregates fresh.
type RankingService struct {
	seasonRepo season.Repository
	entryRepo  entry.Repository
	pickRepo   pick.Repository
	matchRepo  match.Repository
	resolver   seasonResolver
	logger     *slog.Logger
}

func NewRankingService(
	seasonRepo season.Repository,
	entryRepo entry.Repository,
	pickRepo pick.Repository,
	matchRepo match.Repository,
	resolver seasonResolver,
	logger *slog.Logger,
) *RankingService {
	if logger == nil {
		logger = slog.Default()
	}

	return &RankingService{
		seasonRepo: seasonRepo,
		entryRepo:  entryRepo,
		pickRepo:   pickRepo,
		matchRepo:  matchRepo,
		resolver:   resolver,
		logger:     logger,
	}
}

// SeasonRanking ranks every entry of the season by points, breaking
// ties by away-team wins. Entries still tied after both criteria share
// the same rank.
func (s *RankingService) SeasonRanking(ctx context.Context, seasonID string) ([]RankingRow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.SeasonRanking")
	defer span.End()

	seasonID = strings.TrimSpace(seasonID)
	if seasonID == "" {
		return nil, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}
	if _, exists, err := s.seasonRepo.GetByID(ctx, seasonID); err != nil {
		return nil, fmt.Errorf("get season by id: %w", err)
	} else if !exists {
		return nil, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
	}

	if s.resolver != nil {
		if err := s.resolver.EnsureSeasonResolved(ctx, seasonID); err != nil {
			return nil, err
		}
	}

	entries, err := s.entryRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list entries by season: %w", err)
	}
	if len(entries) == 0 {
		return []RankingRow{}, nil
	}

	awayWins, err := s.awayWinsByEntry(ctx, seasonID)
	if err != nil {
		return nil, err
	}

	rows := make([]RankingRow, 0, len(entries))
	for _, item := range entries {
		rows = append(rows, RankingRow{
			EntryID:        item.ID,
			UserID:         item.UserID,
			EntryName:      item.Name,
			Points:         item.Points,
			TotalWins:      item.TotalWins,
			TotalLosses:    item.TotalLosses,
			TotalTies:      item.TotalTies,
			AwayWins:       awayWins[item.ID],
			CurrentStreak:  item.CurrentStreak,
			LongestStreak:  item.LongestStreak,
			Status:         item.Status,
			EliminatedWeek: item.EliminatedWeek,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if rows[i].AwayWins != rows[j].AwayWins {
			return rows[i].AwayWins > rows[j].AwayWins
		}
		return rows[i].EntryID < rows[j].EntryID
	})

	assignSharedRanks(rows)
	return rows, nil
}

// awayWinsByEntry counts each entry's winning picks where the selected
// team played on the road.
func (s *RankingService) awayWinsByEntry(ctx context.Context, seasonID string) (map[string]int, error) {
	matches, err := s.matchRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list matches by season: %w", err)
	}
	awayTeamByMatch := make(map[string]string, len(matches))
	for _, m := range matches {
		awayTeamByMatch[m.ID] = m.AwayTeamID
	}

	out := make(map[string]int)
	maxWeek := 0
	for _, m := range matches {
		if m.Week > maxWeek {
			maxWeek = m.Week
		}
	}
	for week := 1; week <= maxWeek; week++ {
		picks, err := s.pickRepo.ListBySeasonWeek(ctx, seasonID, week)
		if err != nil {
			return nil, fmt.Errorf("list picks by week: %w", err)
		}
		for _, p := range picks {
			if p.Result != pick.ResultWin {
				continue
			}
			if awayTeamByMatch[p.MatchID] == p.TeamID {
				out[p.EntryID]++
			}
		}
	}
	return out, nil
}

// assignSharedRanks stamps competition-style ranks on pre-sorted rows:
// equal (points, away wins) pairs share a rank, the next distinct pair
// takes the following ordinal.
func assignSharedRanks(rows []RankingRow) {
	rank := 0
	lastPoints := 0
	lastAwayWins := 0
	for idx := range rows {
		if idx == 0 || rows[idx].Points != lastPoints || rows[idx].AwayWins != lastAwayWins {
			rank++
			lastPoints = rows[idx].Points
			lastAwayWins = rows[idx].AwayWins
		}
		rows[idx].Rank = rank
	}
}
