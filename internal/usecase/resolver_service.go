package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nflsurvivor/survivor-pool/internal/domain/entry"
	"github.com/nflsurvivor/survivor-pool/internal/domain/match"
	"github.com/nflsurvivor/survivor-pool/internal/domain/pick"
	"github.com/nflsurvivor/survivor-pool/internal/domain/season"
	"github.com/nflsurvivor/survivor-pool/internal/domain/survivor"
	"github.com/nflsurvivor/survivor-pool/internal/platform/resilience"
	"github.com/panjf2000/ants/v2"
)

const defaultResolveEnsureInterval = 30 * time.Second

const (
	resolveStatusResolved = "resolved"
	resolveStatusSkipped  = "skipped"
	resolveStatusFailed   = "failed"
)

// MatchResolution reports the outcome of resolving one match.
type MatchResolution struct {
	MatchID        string `json:"match_id"`
	Status         string `json:"status"`
	PicksResolved  int    `json:"picks_resolved"`
	PicksSkipped   int    `json:"picks_skipped"`
	EntriesUpdated int    `json:"entries_updated"`
	DurationMs     int64  `json:"duration_ms"`
	Message        string `json:"message,omitempty"`
}

// ResolveReport is the aggregate outcome of a week-wide resolve pass.
type ResolveReport struct {
	SeasonID      string            `json:"season_id"`
	Week          int               `json:"week"`
	MatchCount    int               `json:"match_count"`
	ResolvedCount int               `json:"resolved_count"`
	SkippedCount  int               `json:"skipped_count"`
	FailedCount   int               `json:"failed_count"`
	WorkerCount   int               `json:"worker_count"`
	Matches       []MatchResolution `json:"matches"`
}

// ResolverService turns completed match results into pick outcomes and
// entry aggregates.
type ResolverService struct {
	seasonRepo season.Repository
	matchRepo  match.Repository
	pickRepo   pick.Repository
	entryRepo  entry.Repository
	logger     *slog.Logger
	now        func() time.Time

	ensureFlight   resilience.SingleFlight
	ensureMu       sync.Mutex
	lastEnsureAt   map[string]time.Time
	ensureInterval time.Duration
}

func NewResolverService(
	seasonRepo season.Repository,
	matchRepo match.Repository,
	pickRepo pick.Repository,
	entryRepo entry.Repository,
	logger *slog.Logger,
) *ResolverService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ResolverService{
		seasonRepo:     seasonRepo,
		matchRepo:      matchRepo,
		pickRepo:       pickRepo,
		entryRepo:      entryRepo,
		logger:         logger,
		now:            time.Now,
		lastEnsureAt:   make(map[string]time.Time),
		ensureInterval: defaultResolveEnsureInterval,
	}
}

// ResolveMatch grades every pick on a completed match and refreshes the
// affected entry aggregates. Resolving the same match twice is a no-op
// for already graded picks. Anomalous picks are skipped with a warning,
// never failing the whole match.
func (s *ResolverService) ResolveMatch(ctx context.Context, matchID string) (MatchResolution, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResolverService.ResolveMatch")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return MatchResolution{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	m, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return MatchResolution{}, fmt.Errorf("get match by id: %w", err)
	}
	if !exists {
		return MatchResolution{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	return s.resolveMatch(ctx, m)
}

func (s *ResolverService) resolveMatch(ctx context.Context, m match.Match) (MatchResolution, error) {
	start := s.now()
	out := MatchResolution{MatchID: m.ID, Status: resolveStatusSkipped}

	if !m.Completed() {
		out.Message = fmt.Sprintf("match status=%s is not resolvable", m.Status)
		out.DurationMs = time.Since(start).Milliseconds()
		return out, nil
	}

	picks, err := s.pickRepo.ListByMatch(ctx, m.ID)
	if err != nil {
		return MatchResolution{}, fmt.Errorf("list picks by match: %w", err)
	}

	touchedEntries := make(map[string]string, len(picks))
	for _, p := range picks {
		result, err := survivor.Outcome(m, p.TeamID)
		if err != nil {
			out.PicksSkipped++
			s.logger.WarnContext(ctx, "skipping unresolvable pick",
				"pick_id", p.ID,
				"match_id", m.ID,
				"team_id", p.TeamID,
				"error", err,
			)
			continue
		}

		points := survivor.PointsFor(result, survivor.AnticipationHours(p.CreatedAt, m.KickoffAt))
		if p.Resolved() && p.Result == result && p.PointsEarned == points {
			touchedEntries[p.EntryID] = p.SeasonID
			continue
		}

		p.Result = result
		p.PointsEarned = points
		p.UpdatedAt = s.now().UTC()
		if err := s.pickRepo.SaveResult(ctx, p); err != nil {
			return MatchResolution{}, fmt.Errorf("save pick result pick=%s: %w", p.ID, err)
		}
		out.PicksResolved++
		touchedEntries[p.EntryID] = p.SeasonID
	}

	entryIDs := make([]string, 0, len(touchedEntries))
	for id := range touchedEntries {
		entryIDs = append(entryIDs, id)
	}
	sort.Strings(entryIDs)

	for _, entryID := range entryIDs {
		if err := s.refreshEntryAggregates(ctx, entryID, touchedEntries[entryID]); err != nil {
			return MatchResolution{}, err
		}
		out.EntriesUpdated++
	}

	out.Status = resolveStatusResolved
	out.DurationMs = time.Since(start).Milliseconds()
	return out, nil
}

func (s *ResolverService) refreshEntryAggregates(ctx context.Context, entryID, seasonID string) error {
	picks, err := s.pickRepo.ListByEntry(ctx, entryID, seasonID)
	if err != nil {
		return fmt.Errorf("list picks for aggregates entry=%s: %w", entryID, err)
	}

	agg := survivor.AggregateEntry(picks)
	if err := s.entryRepo.UpdateAggregates(ctx, entryID, agg); err != nil {
		return fmt.Errorf("update entry aggregates entry=%s: %w", entryID, err)
	}
	return nil
}

// ResolveWeek fans out ResolveMatch over every match of a season week.
// Worker count is clamped to a small pool; each match resolves
// independently so one failure never blocks the rest.
func (s *ResolverService) ResolveWeek(ctx context.Context, seasonID string, week, maxWorkers int) (ResolveReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResolverService.ResolveWeek")
	defer span.End()

	seasonID = strings.TrimSpace(seasonID)
	if seasonID == "" {
		return ResolveReport{}, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}
	if week < 1 {
		return ResolveReport{}, fmt.Errorf("%w: week must be >= 1", ErrInvalidInput)
	}

	matches, err := s.matchRepo.ListBySeasonWeek(ctx, seasonID, week)
	if err != nil {
		return ResolveReport{}, fmt.Errorf("list matches by week: %w", err)
	}

	workerCount := normalizeResolveWorkerCount(maxWorkers, len(matches))
	report := ResolveReport{
		SeasonID:    seasonID,
		Week:        week,
		MatchCount:  len(matches),
		WorkerCount: workerCount,
		Matches:     make([]MatchResolution, 0, len(matches)),
	}
	if len(matches) == 0 {
		return report, nil
	}

	results := make(chan MatchResolution, len(matches))

	var resolvedCount atomic.Int32
	var skippedCount atomic.Int32
	var failedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return ResolveReport{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, m := range matches {
		m := m
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			row, err := s.resolveMatch(ctx, m)
			if err != nil {
				row = MatchResolution{
					MatchID: m.ID,
					Status:  resolveStatusFailed,
					Message: err.Error(),
				}
			}

			switch row.Status {
			case resolveStatusResolved:
				resolvedCount.Add(1)
			case resolveStatusSkipped:
				skippedCount.Add(1)
			default:
				failedCount.Add(1)
			}

			results <- row
		}); err != nil {
			workers.Done()
			return ResolveReport{}, fmt.Errorf("submit match to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		report.Matches = append(report.Matches, row)
	}
	sort.SliceStable(report.Matches, func(i, j int) bool {
		return report.Matches[i].MatchID < report.Matches[j].MatchID
	})

	report.ResolvedCount = int(resolvedCount.Load())
	report.SkippedCount = int(skippedCount.Load())
	report.FailedCount = int(failedCount.Load())
	return report, nil
}

// EnsureSeasonResolved resolves every completed match of the season
// that still carries pending picks. Read paths call this before serving
// derived views; a short interval throttle plus singleflight keeps the
// sweep from stampeding under concurrent reads.
func (s *ResolverService) EnsureSeasonResolved(ctx context.Context, seasonID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResolverService.EnsureSeasonResolved")
	defer span.End()

	seasonID = strings.TrimSpace(seasonID)
	if seasonID == "" {
		return fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}

	now := s.now().UTC()
	if s.shouldSkipEnsure(seasonID, now) {
		return nil
	}

	key := "resolve:ensure:" + seasonID
	_, err, _ := s.ensureFlight.Do(key, func() (any, error) {
		runNow := s.now().UTC()
		if s.shouldSkipEnsure(seasonID, runNow) {
			return nil, nil
		}

		if runErr := s.ensureSeasonResolvedOnce(ctx, seasonID); runErr != nil {
			return nil, runErr
		}
		s.markEnsure(seasonID, runNow)
		return nil, nil
	})
	return err
}

func (s *ResolverService) ensureSeasonResolvedOnce(ctx context.Context, seasonID string) error {
	matches, err := s.matchRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return fmt.Errorf("list matches by season: %w", err)
	}

	for _, m := range matches {
		if !m.Completed() {
			continue
		}
		picks, err := s.pickRepo.ListByMatch(ctx, m.ID)
		if err != nil {
			return fmt.Errorf("list picks by match: %w", err)
		}

		pending := false
		for _, p := range picks {
			if !p.Resolved() {
				pending = true
				break
			}
		}
		if !pending {
			continue
		}

		if _, err := s.resolveMatch(ctx, m); err != nil {
			return err
		}
	}

	return nil
}

func (s *ResolverService) shouldSkipEnsure(seasonID string, now time.Time) bool {
	if s.ensureInterval <= 0 || seasonID == "" {
		return false
	}
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()
	last, ok := s.lastEnsureAt[seasonID]
	if !ok || last.IsZero() {
		return false
	}
	return now.Sub(last) < s.ensureInterval
}

func (s *ResolverService) markEnsure(seasonID string, now time.Time) {
	if seasonID == "" {
		return
	}
	s.ensureMu.Lock()
	s.lastEnsureAt[seasonID] = now
	s.ensureMu.Unlock()
}

func normalizeResolveWorkerCount(value int, matchCount int) int {
	if matchCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = 4
	}
	if value > 8 {
		value = 8
	}
	if value > matchCount {
		value = matchCount
	}
	return value
}
