package pick

import (
	"context"
	"errors"
)

var (
	// ErrSlotTaken signals a create against an already occupied
	// (entry, season, week) slot.
	ErrSlotTaken = errors.New("pick slot already taken")
	// ErrVersionMismatch signals a replacement that lost the race
	// against another writer of the same slot.
	ErrVersionMismatch = errors.New("pick version mismatch")
)

// Repository describes pick persistence needs from use cases. Create and
// Replace are used by the transition engine only; SaveResult by the
// scoring resolver only.
type Repository interface {
	GetForWeek(ctx context.Context, entryID, seasonID string, week int) (Pick, bool, error)
	ListByEntry(ctx context.Context, entryID, seasonID string) ([]Pick, error)
	ListByMatch(ctx context.Context, matchID string) ([]Pick, error)
	ListBySeasonWeek(ctx context.Context, seasonID string, week int) ([]Pick, error)
	// Create inserts a new pick; it fails with ErrSlotTaken when the
	// slot is already occupied.
	Create(ctx context.Context, item Pick) error
	// Replace updates match/team/created-at of an existing pick. The
	// write succeeds only when item.Version matches the stored version;
	// the stored version is then incremented.
	Replace(ctx context.Context, item Pick) (Pick, error)
	// SaveResult persists result and points computed by the resolver.
	SaveResult(ctx context.Context, item Pick) error
}
