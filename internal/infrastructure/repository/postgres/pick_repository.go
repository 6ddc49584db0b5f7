package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/nflsurvivor/survivor-pool/internal/domain/pick"
	qb "github.com/nflsurvivor/survivor-pool/internal/platform/querybuilder"
)

type PickRepository struct {
	db *sqlx.DB
}

func NewPickRepository(db *sqlx.DB) *PickRepository {
	return &PickRepository{db: db}
}

func (r *PickRepository) GetForWeek(ctx context.Context, entryID, seasonID string, week int) (pick.Pick, bool, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(
			qb.Eq("entry_public_id", entryID),
			qb.Eq("season_public_id", seasonID),
			qb.Eq("week", week),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return pick.Pick{}, false, fmt.Errorf("build get pick for week query: %w", err)
	}

	var row pickTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isRetryablePoolerError(err) {
			err = r.db.GetContext(ctx, &row, query, args...)
		}
		if err != nil {
			if isNotFound(err) {
				return pick.Pick{}, false, nil
			}
			return pick.Pick{}, false, fmt.Errorf("get pick for week: %w", err)
		}
	}

	return pickFromRow(row), true, nil
}

func (r *PickRepository) ListByEntry(ctx context.Context, entryID, seasonID string) ([]pick.Pick, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(
			qb.Eq("entry_public_id", entryID),
			qb.Eq("season_public_id", seasonID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("week", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list picks by entry query: %w", err)
	}

	return r.selectPicks(ctx, query, args, "list picks by entry")
}

func (r *PickRepository) ListByMatch(ctx context.Context, matchID string) ([]pick.Pick, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(
			qb.Eq("match_public_id", matchID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("entry_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list picks by match query: %w", err)
	}

	return r.selectPicks(ctx, query, args, "list picks by match")
}

func (r *PickRepository) ListBySeasonWeek(ctx context.Context, seasonID string, week int) ([]pick.Pick, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(
			qb.Eq("season_public_id", seasonID),
			qb.Eq("week", week),
			qb.IsNull("deleted_at"),
		).
		OrderBy("entry_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list picks by week query: %w", err)
	}

	return r.selectPicks(ctx, query, args, "list picks by week")
}

func (r *PickRepository) Create(ctx context.Context, item pick.Pick) error {
	query, args, err := qb.InsertInto("picks").
		Columns(
			"public_id",
			"entry_public_id",
			"season_public_id",
			"match_public_id",
			"week",
			"team_public_id",
			"result",
			"points_earned",
			"version",
			"created_at",
			"updated_at",
		).
		Values(
			item.ID,
			item.EntryID,
			item.SeasonID,
			item.MatchID,
			item.Week,
			item.TeamID,
			item.Result,
			item.PointsEarned,
			item.Version,
			item.CreatedAt,
			item.UpdatedAt,
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build create pick query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create pick: %w", pick.ErrSlotTaken)
		}
		return fmt.Errorf("create pick %s: %w", item.ID, err)
	}

	return nil
}

// Replace is the optimistic-concurrency write of the slot: the row is
// updated only when the stored version still matches, and the version
// is bumped in the same statement.
func (r *PickRepository) Replace(ctx context.Context, item pick.Pick) (pick.Pick, error) {
	query, args, err := qb.Update("picks").
		Set("match_public_id", item.MatchID).
		Set("team_public_id", item.TeamID).
		Set("created_at", item.CreatedAt).
		Set("updated_at", item.UpdatedAt).
		SetExpr("version", "version + 1").
		Where(
			qb.Eq("entry_public_id", item.EntryID),
			qb.Eq("season_public_id", item.SeasonID),
			qb.Eq("week", item.Week),
			qb.Eq("version", item.Version),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return pick.Pick{}, fmt.Errorf("build replace pick query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return pick.Pick{}, fmt.Errorf("replace pick: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return pick.Pick{}, fmt.Errorf("replace pick rows affected: %w", err)
	}
	if affected == 0 {
		return pick.Pick{}, fmt.Errorf("replace pick: %w", pick.ErrVersionMismatch)
	}

	out := item
	out.Version = item.Version + 1
	return out, nil
}

func (r *PickRepository) SaveResult(ctx context.Context, item pick.Pick) error {
	query, args, err := qb.Update("picks").
		Set("result", item.Result).
		Set("points_earned", item.PointsEarned).
		Set("updated_at", item.UpdatedAt).
		Where(
			qb.Eq("public_id", item.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build save pick result query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save pick result %s: %w", item.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save pick result rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("pick %s not found", item.ID)
	}

	return nil
}

func (r *PickRepository) selectPicks(ctx context.Context, query string, args []any, op string) ([]pick.Pick, error) {
	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, pickFromRow(row))
	}

	return out, nil
}

func pickFromRow(row pickTableModel) pick.Pick {
	return pick.Pick{
		ID:           row.PublicID,
		EntryID:      row.EntryID,
		SeasonID:     row.SeasonID,
		MatchID:      row.MatchID,
		Week:         row.Week,
		TeamID:       row.TeamID,
		Result:       row.Result,
		PointsEarned: row.PointsEarned,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		Version:      row.Version,
	}
}
