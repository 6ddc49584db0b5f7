package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/nflsurvivor/survivor-pool/internal/domain/entry"
	qb "github.com/nflsurvivor/survivor-pool/internal/platform/querybuilder"
)

type EntryRepository struct {
	db *sqlx.DB
}

func NewEntryRepository(db *sqlx.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) GetByID(ctx context.Context, entryID string) (entry.Entry, bool, error) {
	query, args, err := qb.Select("*").From("entries").
		Where(
			qb.Eq("public_id", entryID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return entry.Entry{}, false, fmt.Errorf("build get entry query: %w", err)
	}

	var row entryTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return entry.Entry{}, false, nil
		}
		return entry.Entry{}, false, fmt.Errorf("get entry %s: %w", entryID, err)
	}

	return entryFromRow(row), true, nil
}

func (r *EntryRepository) ListBySeason(ctx context.Context, seasonID string) ([]entry.Entry, error) {
	query, args, err := qb.Select("*").From("entries").
		Where(
			qb.Eq("season_public_id", seasonID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list entries by season query: %w", err)
	}

	var rows []entryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list entries by season: %w", err)
	}

	out := make([]entry.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, entryFromRow(row))
	}

	return out, nil
}

func (r *EntryRepository) ListByUser(ctx context.Context, userID, seasonID string) ([]entry.Entry, error) {
	query, args, err := qb.Select("*").From("entries").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("season_public_id", seasonID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list entries by user query: %w", err)
	}

	var rows []entryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list entries by user: %w", err)
	}

	out := make([]entry.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, entryFromRow(row))
	}

	return out, nil
}

func (r *EntryRepository) Create(ctx context.Context, item entry.Entry) error {
	query, args, err := qb.InsertInto("entries").
		Columns(
			"public_id",
			"user_id",
			"season_public_id",
			"name",
			"status",
			"points",
			"total_wins",
			"total_losses",
			"total_ties",
			"current_streak",
			"longest_streak",
			"is_active",
			"eliminated_week",
		).
		Values(
			item.ID,
			item.UserID,
			item.SeasonID,
			item.Name,
			item.Status,
			item.Points,
			item.TotalWins,
			item.TotalLosses,
			item.TotalTies,
			item.CurrentStreak,
			item.LongestStreak,
			item.IsActive,
			item.EliminatedWeek,
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build create entry query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("entry %s already exists", item.ID)
		}
		return fmt.Errorf("create entry %s: %w", item.ID, err)
	}

	return nil
}

func (r *EntryRepository) UpdateAggregates(ctx context.Context, entryID string, agg entry.Aggregates) error {
	query, args, err := qb.Update("entries").
		Set("points", agg.Points).
		Set("total_wins", agg.TotalWins).
		Set("total_losses", agg.TotalLosses).
		Set("total_ties", agg.TotalTies).
		Set("current_streak", agg.CurrentStreak).
		Set("longest_streak", agg.LongestStreak).
		Set("status", agg.Status).
		Set("is_active", agg.IsActive).
		Set("eliminated_week", agg.EliminatedWeek).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", entryID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update entry aggregates query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update entry %s aggregates: %w", entryID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update entry aggregates rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("entry %s not found", entryID)
	}

	return nil
}

func entryFromRow(row entryTableModel) entry.Entry {
	return entry.Entry{
		ID:             row.PublicID,
		UserID:         row.UserID,
		SeasonID:       row.SeasonID,
		Name:           row.Name,
		Status:         row.Status,
		Points:         row.Points,
		TotalWins:      row.TotalWins,
		TotalLosses:    row.TotalLosses,
		TotalTies:      row.TotalTies,
		CurrentStreak:  row.CurrentStreak,
		LongestStreak:  row.LongestStreak,
		IsActive:       row.IsActive,
		EliminatedWeek: row.EliminatedWeek,
	}
}
