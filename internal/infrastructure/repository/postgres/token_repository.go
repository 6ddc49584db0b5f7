package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nflsurvivor/survivor-pool/internal/domain/token"
	qb "github.com/nflsurvivor/survivor-pool/internal/platform/querybuilder"
)

type TokenRepository struct {
	db *sqlx.DB
}

func NewTokenRepository(db *sqlx.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) GetByValue(ctx context.Context, value string) (token.Token, bool, error) {
	query, args, err := qb.Select("*").From("registration_tokens").
		Where(
			qb.Eq("value", value),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return token.Token{}, false, fmt.Errorf("build get token by value query: %w", err)
	}

	var row tokenTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return token.Token{}, false, nil
		}
		return token.Token{}, false, fmt.Errorf("get token by value: %w", err)
	}

	return tokenFromRow(row), true, nil
}

func (r *TokenRepository) Create(ctx context.Context, item token.Token) error {
	query, args, err := qb.InsertInto("registration_tokens").
		Columns("public_id", "value", "is_used", "expires_at", "created_at").
		Values(item.ID, item.Value, item.IsUsed, item.ExpiresAt, item.CreatedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build create token query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("token %s already exists", item.ID)
		}
		return fmt.Errorf("create token %s: %w", item.ID, err)
	}

	return nil
}

// MarkUsed flips the single-use flag; the is_used guard in the WHERE
// clause makes concurrent redemptions lose cleanly.
func (r *TokenRepository) MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	query, args, err := qb.Update("registration_tokens").
		Set("is_used", true).
		Set("used_at", usedAt).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", tokenID),
			qb.Eq("is_used", false),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark token used query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark token %s used: %w", tokenID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark token used rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("token %s is missing or already used", tokenID)
	}

	return nil
}

func tokenFromRow(row tokenTableModel) token.Token {
	return token.Token{
		ID:        row.PublicID,
		Value:     row.Value,
		IsUsed:    row.IsUsed,
		ExpiresAt: row.ExpiresAt,
		UsedAt:    row.UsedAt,
		CreatedAt: row.CreatedAt,
	}
}
