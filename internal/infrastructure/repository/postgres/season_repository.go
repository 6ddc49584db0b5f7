package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/nflsurvivor/survivor-pool/internal/domain/season"
	qb "github.com/nflsurvivor/survivor-pool/internal/platform/querybuilder"
)

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) GetActive(ctx context.Context) (season.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(
			qb.Eq("is_active", true),
			qb.IsNull("deleted_at"),
		).
		OrderBy("year DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build get active season query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get active season: %w", err)
	}

	return seasonFromRow(row), true, nil
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID string) (season.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(
			qb.Eq("public_id", seasonID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build get season query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get season %s: %w", seasonID, err)
	}

	return seasonFromRow(row), true, nil
}

func (r *SeasonRepository) Upsert(ctx context.Context, item season.Season) error {
	query, args, err := qb.InsertInto("seasons").
		Columns("public_id", "year", "is_active", "current_week", "max_weeks").
		Values(item.ID, item.Year, item.IsActive, item.CurrentWeek, item.MaxWeeks).
		Suffix(`ON CONFLICT (public_id) DO UPDATE SET
year = EXCLUDED.year,
is_active = EXCLUDED.is_active,
current_week = EXCLUDED.current_week,
max_weeks = EXCLUDED.max_weeks,
updated_at = NOW()`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert season query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert season %s: %w", item.ID, err)
	}

	return nil
}

func (r *SeasonRepository) SetCurrentWeek(ctx context.Context, seasonID string, week int) error {
	query, args, err := qb.Update("seasons").
		Set("current_week", week).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", seasonID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set current week query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set current week for season %s: %w", seasonID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set current week rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("season %s not found", seasonID)
	}

	return nil
}

func seasonFromRow(row seasonTableModel) season.Season {
	return season.Season{
		ID:          row.PublicID,
		Year:        row.Year,
		IsActive:    row.IsActive,
		CurrentWeek: row.CurrentWeek,
		MaxWeeks:    row.MaxWeeks,
	}
}
