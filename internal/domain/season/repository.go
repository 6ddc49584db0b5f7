package season

import "context"

// Repository describes season persistence needs from use cases.
type Repository interface {
	GetActive(ctx context.Context) (Season, bool, error)
	GetByID(ctx context.Context, seasonID string) (Season, bool, error)
	Upsert(ctx context.Context, item Season) error
	SetCurrentWeek(ctx context.Context, seasonID string, week int) error
}
