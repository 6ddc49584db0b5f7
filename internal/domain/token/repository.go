package token

import (
	"context"
	"time"
)

// Repository describes registration token persistence.
type Repository interface {
	GetByValue(ctx context.Context, value string) (Token, bool, error)
	Create(ctx context.Context, item Token) error
	MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error
}
