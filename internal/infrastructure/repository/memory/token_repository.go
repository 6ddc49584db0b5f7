package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nflsurvivor/survivor-pool/internal/domain/token"
)

type TokenRepository struct {
	mu    sync.RWMutex
	items map[string]token.Token
}

func NewTokenRepository(tokens []token.Token) *TokenRepository {
	items := make(map[string]token.Token, len(tokens))
	for _, item := range tokens {
		items[item.ID] = item
	}

	return &TokenRepository{items: items}
}

func (r *TokenRepository) GetByValue(_ context.Context, value string) (token.Token, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.Value == value {
			return item, true, nil
		}
	}
	return token.Token{}, false, nil
}

func (r *TokenRepository) Create(_ context.Context, item token.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("token %s already exists", item.ID)
	}
	r.items[item.ID] = item
	return nil
}

func (r *TokenRepository) MarkUsed(_ context.Context, tokenID string, usedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[tokenID]
	if !ok {
		return fmt.Errorf("token %s not found", tokenID)
	}
	if item.IsUsed {
		return fmt.Errorf("token %s is already used", tokenID)
	}

	item.IsUsed = true
	item.UsedAt = &usedAt
	r.items[tokenID] = item
	return nil
}
