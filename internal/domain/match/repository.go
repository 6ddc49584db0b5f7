package match

import "context"

// Repository describes match persistence needs from use cases.
// Matches are written by schedule sync and result ingestion only.
type Repository interface {
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	ListBySeason(ctx context.Context, seasonID string) ([]Match, error)
	ListBySeasonWeek(ctx context.Context, seasonID string, week int) ([]Match, error)
	Upsert(ctx context.Context, item Match) error
	UpsertMatches(ctx context.Context, items []Match) error
}
