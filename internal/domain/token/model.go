package token

import (
	"fmt"
	"time"
)

// Token is a single-use registration credential.
type Token struct {
	ID        string
	Value     string
	IsUsed    bool
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (t Token) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("token id is required")
	}
	if t.Value == "" {
		return fmt.Errorf("token value is required")
	}
	if t.ExpiresAt.IsZero() {
		return fmt.Errorf("token expiry is required")
	}

	return nil
}

// Redeemable reports whether the token can still be redeemed at now.
func (t Token) Redeemable(now time.Time) bool {
	return !t.IsUsed && now.Before(t.ExpiresAt)
}
