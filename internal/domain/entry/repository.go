package entry

import "context"

// Repository describes entry persistence needs from use cases.
// Entries are created at registration and mutated only through
// UpdateAggregates by the resolver; they are never deleted.
type Repository interface {
	GetByID(ctx context.Context, entryID string) (Entry, bool, error)
	ListBySeason(ctx context.Context, seasonID string) ([]Entry, error)
	ListByUser(ctx context.Context, userID, seasonID string) ([]Entry, error)
	Create(ctx context.Context, item Entry) error
	UpdateAggregates(ctx context.Context, entryID string, agg Aggregates) error
}
