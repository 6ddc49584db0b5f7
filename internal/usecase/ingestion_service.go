package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/nflsurvivor/survivor-pool/internal/domain/match"
	"github.com/nflsurvivor/survivor-pool/internal/domain/season"
)

// JobQueue publishes deferred internal jobs over the message broker.
type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

// MatchResultInput is one scoreboard row pushed by the results feed.
type MatchResultInput struct {
	MatchID    string
	SeasonID   string
	Week       int
	HomeTeamID string
	AwayTeamID string
	KickoffAt  time.Time
	Status     string
	HomeScore  *int
	AwayScore  *int
}

// IngestOutcome summarizes one ingestion batch.
type IngestOutcome struct {
	UpsertedCount int      `json:"upserted_count"`
	QueuedCount   int      `json:"queued_count"`
	QueuedJobs    []string `json:"queued_jobs"`
}

// IngestionService applies scoreboard updates to stored matches and
// queues resolve jobs for matches that just went final.
type IngestionService struct {
	seasonRepo season.Repository
	matchRepo  match.Repository
	queue      JobQueue
	logger     *slog.Logger
	now        func() time.Time
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewIngestionService(
	seasonRepo season.Repository,
	matchRepo match.Repository,
	queue JobQueue,
	logger *slog.Logger,
) *IngestionService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &IngestionService{
		seasonRepo: seasonRepo,
		matchRepo:  matchRepo,
		queue:      queue,
		logger:     logger,
		now:        time.Now,
	}
}

// IngestResults upserts the batch and enqueues a resolve-match job for
// every row that carries a final score. The job is deduplicated per
// match and score so feed retries do not fan out duplicate work.
func (s *IngestionService) IngestResults(ctx context.Context, items []MatchResultInput) (IngestOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.IngestResults")
	defer span.End()

	if len(items) == 0 {
		return IngestOutcome{}, fmt.Errorf("%w: results are required", ErrInvalidInput)
	}

	matches := make([]match.Match, 0, len(items))
	completed := make([]match.Match, 0, len(items))
	for idx, item := range items {
		row, err := s.toMatch(ctx, item)
		if err != nil {
			return IngestOutcome{}, fmt.Errorf("%w: result[%d]: %v", ErrInvalidInput, idx, err)
		}
		matches = append(matches, row)
		if row.Completed() {
			completed = append(completed, row)
		}
	}

	if err := s.matchRepo.UpsertMatches(ctx, matches); err != nil {
		return IngestOutcome{}, fmt.Errorf("upsert matches: %w", err)
	}

	out := IngestOutcome{
		UpsertedCount: len(matches),
		QueuedJobs:    make([]string, 0, len(completed)),
	}
	for _, row := range completed {
		dedupID := resolveMatchDedupID(row)
		payload := map[string]any{
			"match_id":    row.ID,
			"dispatch_id": dedupID,
		}
		if err := s.queue.Enqueue(ctx, "/v1/internal/jobs/resolve-match", payload, 0, dedupID); err != nil {
			return IngestOutcome{}, fmt.Errorf("enqueue resolve-match match=%s: %w", row.ID, err)
		}
		out.QueuedCount++
		out.QueuedJobs = append(out.QueuedJobs, "resolve-match:"+row.ID)
	}

	s.logger.InfoContext(ctx, "results ingested",
		"upserted", out.UpsertedCount,
		"queued", out.QueuedCount,
	)
	return out, nil
}

func (s *IngestionService) toMatch(ctx context.Context, item MatchResultInput) (match.Match, error) {
	item.MatchID = strings.TrimSpace(item.MatchID)
	item.SeasonID = strings.TrimSpace(item.SeasonID)
	item.HomeTeamID = strings.TrimSpace(item.HomeTeamID)
	item.AwayTeamID = strings.TrimSpace(item.AwayTeamID)
	status := match.NormalizeStatus(item.Status)

	if item.MatchID == "" || item.SeasonID == "" {
		return match.Match{}, fmt.Errorf("match id and season id are required")
	}
	if item.HomeTeamID == "" || item.AwayTeamID == "" || item.HomeTeamID == item.AwayTeamID {
		return match.Match{}, fmt.Errorf("two distinct team ids are required")
	}
	if item.Week < 1 {
		return match.Match{}, fmt.Errorf("week must be >= 1")
	}
	if item.KickoffAt.IsZero() {
		return match.Match{}, fmt.Errorf("kickoff_at is required")
	}
	if match.IsCompletedStatus(status) && (item.HomeScore == nil || item.AwayScore == nil) {
		return match.Match{}, fmt.Errorf("completed match requires both scores")
	}
	if (item.HomeScore != nil && *item.HomeScore < 0) || (item.AwayScore != nil && *item.AwayScore < 0) {
		return match.Match{}, fmt.Errorf("scores cannot be negative")
	}

	if _, exists, err := s.seasonRepo.GetByID(ctx, item.SeasonID); err != nil {
		return match.Match{}, fmt.Errorf("get season by id: %w", err)
	} else if !exists {
		return match.Match{}, fmt.Errorf("season=%s not found", item.SeasonID)
	}

	return match.Match{
		ID:         item.MatchID,
		SeasonID:   item.SeasonID,
		Week:       item.Week,
		HomeTeamID: item.HomeTeamID,
		AwayTeamID: item.AwayTeamID,
		KickoffAt:  item.KickoffAt.UTC(),
		Status:     status,
		HomeScore:  item.HomeScore,
		AwayScore:  item.AwayScore,
	}, nil
}

// resolveMatchDedupID keys the job on match identity plus the final
// score, so a corrected score still triggers a fresh resolve pass.
func resolveMatchDedupID(row match.Match) string {
	home, away := 0, 0
	if row.HomeScore != nil {
		home = *row.HomeScore
	}
	if row.AwayScore != nil {
		away = *row.AwayScore
	}
	return fmt.Sprintf("resolve-match-%s-%d-%d", sanitizeDedupSegment(row.ID), home, away)
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}
