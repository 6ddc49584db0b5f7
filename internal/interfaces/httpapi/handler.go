package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nflsurvivor/survivor-pool/internal/domain/entry"
	"github.com/nflsurvivor/survivor-pool/internal/domain/match"
	"github.com/nflsurvivor/survivor-pool/internal/domain/pick"
	"github.com/nflsurvivor/survivor-pool/internal/domain/season"
	"github.com/nflsurvivor/survivor-pool/internal/platform/logging"
	"github.com/nflsurvivor/survivor-pool/internal/usecase"
)

type Handler struct {
	seasonService       *usecase.SeasonService
	pickService         *usecase.PickService
	rankingService      *usecase.RankingService
	summaryService      *usecase.SummaryService
	registrationService *usecase.RegistrationService
	ingestionService    *usecase.IngestionService
	scheduleSyncService *usecase.ScheduleSyncService
	resolverService     *usecase.ResolverService
	logger              *logging.Logger
	validator           *validator.Validate
}

func NewHandler(
	seasonService *usecase.SeasonService,
	pickService *usecase.PickService,
	rankingService *usecase.RankingService,
	summaryService *usecase.SummaryService,
	registrationService *usecase.RegistrationService,
	ingestionService *usecase.IngestionService,
	scheduleSyncService *usecase.ScheduleSyncService,
	resolverService *usecase.ResolverService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		seasonService:       seasonService,
		pickService:         pickService,
		rankingService:      rankingService,
		summaryService:      summaryService,
		registrationService: registrationService,
		ingestionService:    ingestionService,
		scheduleSyncService: scheduleSyncService,
		resolverService:     resolverService,
		logger:              logger,
		validator:           validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetActiveSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetActiveSeason")
	defer span.End()

	active, err := h.seasonService.ActiveSeason(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get active season failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(ctx, active))
}

func (h *Handler) ListWeekMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListWeekMatches")
	defer span.End()

	seasonID := r.PathValue("seasonID")
	week, err := parseWeek(ctx, r.PathValue("week"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matches, err := h.seasonService.WeekMatches(ctx, seasonID, week)
	if err != nil {
		h.logger.WarnContext(ctx, "list week matches failed", "season_id", seasonID, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchDTO, 0, len(matches))
	for _, m := range matches {
		items = append(items, matchToDTO(ctx, m))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetSeasonRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSeasonRanking")
	defer span.End()

	seasonID := r.PathValue("seasonID")
	rows, err := h.rankingService.SeasonRanking(ctx, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "get season ranking failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]rankingRowDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, rankingRowToDTO(ctx, row))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetWeekSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWeekSummary")
	defer span.End()

	seasonID := r.PathValue("seasonID")
	week, err := parseWeek(ctx, r.PathValue("week"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.summaryService.WeekSummary(ctx, seasonID, week)
	if err != nil {
		h.logger.WarnContext(ctx, "get week summary failed", "season_id", seasonID, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, weekSummaryToDTO(ctx, summary))
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func parseWeek(ctx context.Context, raw string) (int, error) {
	_, span := startSpan(ctx, "httpapi.parseWeek")
	defer span.End()

	var week int
	if _, err := fmt.Sscanf(raw, "%d", &week); err != nil || week < 1 {
		return 0, fmt.Errorf("%w: week %q is not a positive number", usecase.ErrInvalidInput, raw)
	}

	return week, nil
}

type seasonDTO struct {
	ID          string `json:"id"`
	Year        int    `json:"year"`
	CurrentWeek int    `json:"currentWeek"`
	MaxWeeks    int    `json:"maxWeeks"`
	IsActive    bool   `json:"isActive"`
}

type matchDTO struct {
	ID         string `json:"id"`
	SeasonID   string `json:"seasonId"`
	Week       int    `json:"week"`
	HomeTeamID string `json:"homeTeamId"`
	AwayTeamID string `json:"awayTeamId"`
	KickoffAt  string `json:"kickoffAt"`
	Status     string `json:"status"`
	HomeScore  *int   `json:"homeScore,omitempty"`
	AwayScore  *int   `json:"awayScore,omitempty"`
}

type pickDTO struct {
	ID           string `json:"id"`
	EntryID      string `json:"entryId"`
	SeasonID     string `json:"seasonId"`
	MatchID      string `json:"matchId"`
	Week         int    `json:"week"`
	TeamID       string `json:"teamId"`
	Result       string `json:"result"`
	PointsEarned int    `json:"pointsEarned"`
	CreatedAtUTC string `json:"createdAtUtc"`
	UpdatedAtUTC string `json:"updatedAtUtc"`
	Version      int    `json:"version"`
}

type entryDTO struct {
	ID             string `json:"id"`
	UserID         string `json:"userId"`
	SeasonID       string `json:"seasonId"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	Points         int    `json:"points"`
	TotalWins      int    `json:"totalWins"`
	TotalLosses    int    `json:"totalLosses"`
	TotalTies      int    `json:"totalTies"`
	CurrentStreak  int    `json:"currentStreak"`
	LongestStreak  int    `json:"longestStreak"`
	IsActive       bool   `json:"isActive"`
	EliminatedWeek *int   `json:"eliminatedWeek,omitempty"`
}

type rankingRowDTO struct {
	Rank           int    `json:"rank"`
	EntryID        string `json:"entryId"`
	UserID         string `json:"userId"`
	EntryName      string `json:"entryName"`
	Points         int    `json:"points"`
	TotalWins      int    `json:"totalWins"`
	TotalLosses    int    `json:"totalLosses"`
	TotalTies      int    `json:"totalTies"`
	AwayWins       int    `json:"awayWins"`
	CurrentStreak  int    `json:"currentStreak"`
	LongestStreak  int    `json:"longestStreak"`
	Status         string `json:"status"`
	EliminatedWeek *int   `json:"eliminatedWeek,omitempty"`
}

type teamPickCountDTO struct {
	TeamID string `json:"teamId"`
	Count  int    `json:"count"`
}

type weekSummaryDTO struct {
	SeasonID         string             `json:"seasonId"`
	Week             int                `json:"week"`
	MatchCount       int                `json:"matchCount"`
	CompletedMatches int                `json:"completedMatches"`
	PickCount        int                `json:"pickCount"`
	PendingPicks     int                `json:"pendingPicks"`
	Wins             int                `json:"wins"`
	Losses           int                `json:"losses"`
	Ties             int                `json:"ties"`
	TeamPicks        []teamPickCountDTO `json:"teamPicks"`
	AliveEntries     int                `json:"aliveEntries"`
	LastChance       int                `json:"lastChance"`
	Eliminated       int                `json:"eliminated"`
	EliminatedInWeek int                `json:"eliminatedInWeek"`
}

func seasonToDTO(ctx context.Context, v season.Season) seasonDTO {
	ctx, span := startSpan(ctx, "httpapi.seasonToDTO")
	defer span.End()

	return seasonDTO{
		ID:          v.ID,
		Year:        v.Year,
		CurrentWeek: v.CurrentWeek,
		MaxWeeks:    v.MaxWeeks,
		IsActive:    v.IsActive,
	}
}

func matchToDTO(ctx context.Context, v match.Match) matchDTO {
	ctx, span := startSpan(ctx, "httpapi.matchToDTO")
	defer span.End()

	return matchDTO{
		ID:         v.ID,
		SeasonID:   v.SeasonID,
		Week:       v.Week,
		HomeTeamID: v.HomeTeamID,
		AwayTeamID: v.AwayTeamID,
		KickoffAt:  v.KickoffAt.UTC().Format(time.RFC3339),
		Status:     v.Status,
		HomeScore:  v.HomeScore,
		AwayScore:  v.AwayScore,
	}
}

func pickToDTO(ctx context.Context, v pick.Pick) pickDTO {
	ctx, span := startSpan(ctx, "httpapi.pickToDTO")
	defer span.End()

	return pickDTO{
		ID:           v.ID,
		EntryID:      v.EntryID,
		SeasonID:     v.SeasonID,
		MatchID:      v.MatchID,
		Week:         v.Week,
		TeamID:       v.TeamID,
		Result:       v.Result,
		PointsEarned: v.PointsEarned,
		CreatedAtUTC: v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAtUTC: v.UpdatedAt.UTC().Format(time.RFC3339),
		Version:      v.Version,
	}
}

func entryToDTO(ctx context.Context, v entry.Entry) entryDTO {
	ctx, span := startSpan(ctx, "httpapi.entryToDTO")
	defer span.End()

	return entryDTO{
		ID:             v.ID,
		UserID:         v.UserID,
		SeasonID:       v.SeasonID,
		Name:           v.Name,
		Status:         v.Status,
		Points:         v.Points,
		TotalWins:      v.TotalWins,
		TotalLosses:    v.TotalLosses,
		TotalTies:      v.TotalTies,
		CurrentStreak:  v.CurrentStreak,
		LongestStreak:  v.LongestStreak,
		IsActive:       v.IsActive,
		EliminatedWeek: v.EliminatedWeek,
	}
}

func rankingRowToDTO(ctx context.Context, v usecase.RankingRow) rankingRowDTO {
	ctx, span := startSpan(ctx, "httpapi.rankingRowToDTO")
	defer span.End()

	return rankingRowDTO{
		Rank:           v.Rank,
		EntryID:        v.EntryID,
		UserID:         v.UserID,
		EntryName:      v.EntryName,
		Points:         v.Points,
		TotalWins:      v.TotalWins,
		TotalLosses:    v.TotalLosses,
		TotalTies:      v.TotalTies,
		AwayWins:       v.AwayWins,
		CurrentStreak:  v.CurrentStreak,
		LongestStreak:  v.LongestStreak,
		Status:         v.Status,
		EliminatedWeek: v.EliminatedWeek,
	}
}

func weekSummaryToDTO(ctx context.Context, v usecase.WeekSummary) weekSummaryDTO {
	ctx, span := startSpan(ctx, "httpapi.weekSummaryToDTO")
	defer span.End()

	teamPicks := make([]teamPickCountDTO, 0, len(v.TeamPicks))
	for _, tp := range v.TeamPicks {
		teamPicks = append(teamPicks, teamPickCountDTO{TeamID: tp.TeamID, Count: tp.Count})
	}

	return weekSummaryDTO{
		SeasonID:         v.SeasonID,
		Week:             v.Week,
		MatchCount:       v.MatchCount,
		CompletedMatches: v.CompletedMatches,
		PickCount:        v.PickCount,
		PendingPicks:     v.PendingPicks,
		Wins:             v.Wins,
		Losses:           v.Losses,
		Ties:             v.Ties,
		TeamPicks:        teamPicks,
		AliveEntries:     v.AliveEntries,
		LastChance:       v.LastChance,
		Eliminated:       v.Eliminated,
		EliminatedInWeek: v.EliminatedInWeek,
	}
}
