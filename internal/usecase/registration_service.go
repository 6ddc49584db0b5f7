package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nflsurvivor/survivor-pool/internal/domain/entry"
	"github.com/nflsurvivor/survivor-pool/internal/domain/season"
	"github.com/nflsurvivor/survivor-pool/internal/domain/token"
	idgen "github.com/nflsurvivor/survivor-pool/internal/platform/id"
)

type RegisterEntryInput struct {
	UserID     string
	TokenValue string
	EntryName  string
}

// RegistrationService redeems single-use tokens into pool entries for
// the active season.
type RegistrationService struct {
	seasonRepo season.Repository
	entryRepo  entry.Repository
	tokenRepo  token.Repository
	idGen      idgen.Generator
	logger     *slog.Logger
	now        func() time.Time
}

func NewRegistrationService(
	seasonRepo season.Repository,
	entryRepo entry.Repository,
	tokenRepo token.Repository,
	idGen idgen.Generator,
	logger *slog.Logger,
) *RegistrationService {
	if logger == nil {
		logger = slog.Default()
	}

	return &RegistrationService{
		seasonRepo: seasonRepo,
		entryRepo:  entryRepo,
		tokenRepo:  tokenRepo,
		idGen:      idGen,
		logger:     logger,
		now:        time.Now,
	}
}

// Register redeems the token and creates a fresh entry for the user in
// the active season. A token can be redeemed exactly once; expired or
// spent tokens are rejected without revealing which condition failed.
func (s *RegistrationService) Register(ctx context.Context, input RegisterEntryInput) (entry.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistrationService.Register")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.TokenValue = strings.TrimSpace(input.TokenValue)
	input.EntryName = strings.TrimSpace(input.EntryName)

	if input.UserID == "" {
		return entry.Entry{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.TokenValue == "" {
		return entry.Entry{}, fmt.Errorf("%w: token is required", ErrInvalidInput)
	}
	if input.EntryName == "" {
		return entry.Entry{}, fmt.Errorf("%w: entry name is required", ErrInvalidInput)
	}

	activeSeason, exists, err := s.seasonRepo.GetActive(ctx)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("get active season: %w", err)
	}
	if !exists {
		return entry.Entry{}, fmt.Errorf("%w: registration requires an active season", ErrNoActiveSeason)
	}

	now := s.now().UTC()
	tok, exists, err := s.tokenRepo.GetByValue(ctx, input.TokenValue)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("get token by value: %w", err)
	}
	if !exists || !tok.Redeemable(now) {
		return entry.Entry{}, fmt.Errorf("%w: token cannot be redeemed", ErrTokenNotRedeemable)
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return entry.Entry{}, fmt.Errorf("generate entry id: %w", err)
	}

	created := entry.Entry{
		ID:       id,
		UserID:   input.UserID,
		SeasonID: activeSeason.ID,
		Name:     input.EntryName,
		Status:   entry.StatusAlive,
		IsActive: true,
	}
	if err := created.Validate(); err != nil {
		return entry.Entry{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.tokenRepo.MarkUsed(ctx, tok.ID, now); err != nil {
		return entry.Entry{}, fmt.Errorf("mark token used: %w", err)
	}
	if err := s.entryRepo.Create(ctx, created); err != nil {
		return entry.Entry{}, fmt.Errorf("create entry: %w", err)
	}

	s.logger.InfoContext(ctx, "entry registered",
		"entry_id", created.ID,
		"user_id", created.UserID,
		"season_id", created.SeasonID,
	)
	return created, nil
}

// IssueToken mints a new registration token. Admin surface only.
func (s *RegistrationService) IssueToken(ctx context.Context, ttl time.Duration) (token.Token, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistrationService.IssueToken")
	defer span.End()

	if ttl <= 0 {
		return token.Token{}, fmt.Errorf("%w: token ttl must be positive", ErrInvalidInput)
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return token.Token{}, fmt.Errorf("generate token id: %w", err)
	}
	value, err := s.idGen.NewID()
	if err != nil {
		return token.Token{}, fmt.Errorf("generate token value: %w", err)
	}

	now := s.now().UTC()
	created := token.Token{
		ID:        id,
		Value:     value,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.tokenRepo.Create(ctx, created); err != nil {
		return token.Token{}, fmt.Errorf("create token: %w", err)
	}

	return created, nil
}
