package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/nflsurvivor/survivor-pool/internal/domain/entry"
	"github.com/nflsurvivor/survivor-pool/internal/infrastructure/repository/memory"
	idgen "github.com/nflsurvivor/survivor-pool/internal/platform/id"
)

func newRegistrationService(t *testing.T) *RegistrationService {
	t.Helper()

	seasons := memory.NewSeasonRepository(memory.SeedSeasons())
	entries := memory.NewEntryRepository(nil)
	tokens := memory.NewTokenRepository(nil)

	svc := NewRegistrationService(seasons, entries, tokens, idgen.NewRandomGenerator(), nil)
	svc.now = func() time.Time { return testAnchor }
	return svc
}

func TestRegistrationService_RedeemsTokenOnce(t *testing.T) {
	svc := newRegistrationService(t)

	issued, err := svc.IssueToken(t.Context(), 24*time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	created, err := svc.Register(t.Context(), RegisterEntryInput{
		UserID:     "user-1",
		TokenValue: issued.Value,
		EntryName:  "Main",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.Status != entry.StatusAlive || created.SeasonID != memory.SeasonID2025 {
		t.Fatalf("unexpected entry: %+v", created)
	}

	if _, err := svc.Register(t.Context(), RegisterEntryInput{
		UserID:     "user-2",
		TokenValue: issued.Value,
		EntryName:  "Copycat",
	}); !errors.Is(err, ErrTokenNotRedeemable) {
		t.Fatalf("expected ErrTokenNotRedeemable on second redemption, got %v", err)
	}
}

func TestRegistrationService_RejectsExpiredToken(t *testing.T) {
	svc := newRegistrationService(t)

	issued, err := svc.IssueToken(t.Context(), time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	svc.now = func() time.Time { return testAnchor.Add(2 * time.Hour) }
	if _, err := svc.Register(t.Context(), RegisterEntryInput{
		UserID:     "user-1",
		TokenValue: issued.Value,
		EntryName:  "Main",
	}); !errors.Is(err, ErrTokenNotRedeemable) {
		t.Fatalf("expected ErrTokenNotRedeemable for expired token, got %v", err)
	}
}

func TestRegistrationService_RejectsUnknownToken(t *testing.T) {
	svc := newRegistrationService(t)

	if _, err := svc.Register(t.Context(), RegisterEntryInput{
		UserID:     "user-1",
		TokenValue: "does-not-exist",
		EntryName:  "Main",
	}); !errors.Is(err, ErrTokenNotRedeemable) {
		t.Fatalf("expected ErrTokenNotRedeemable for unknown token, got %v", err)
	}
}
