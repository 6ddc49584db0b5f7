package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/nflsurvivor/survivor-pool/internal/domain/match"
	qb "github.com/nflsurvivor/survivor-pool/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("public_id", matchID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isRetryablePoolerError(err) {
			err = r.db.GetContext(ctx, &row, query, args...)
		}
		if err != nil {
			if isNotFound(err) {
				return match.Match{}, false, nil
			}
			return match.Match{}, false, fmt.Errorf("get match %s: %w", matchID, err)
		}
	}

	return matchFromRow(row), true, nil
}

func (r *MatchRepository) ListBySeason(ctx context.Context, seasonID string) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("season_public_id", seasonID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("week", "kickoff_at", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches by season query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches by season: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}

	return out, nil
}

func (r *MatchRepository) ListBySeasonWeek(ctx context.Context, seasonID string, week int) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("season_public_id", seasonID),
			qb.Eq("week", week),
			qb.IsNull("deleted_at"),
		).
		OrderBy("kickoff_at", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches by week query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches by week: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}

	return out, nil
}

func (r *MatchRepository) Upsert(ctx context.Context, item match.Match) error {
	query, args, err := buildUpsertMatchQuery(item)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match %s: %w", item.ID, err)
	}

	return nil
}

func (r *MatchRepository) UpsertMatches(ctx context.Context, items []match.Match) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert matches tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		query, args, err := buildUpsertMatchQuery(item)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert match %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert matches tx: %w", err)
	}

	return nil
}

func buildUpsertMatchQuery(item match.Match) (string, []any, error) {
	query, args, err := qb.InsertInto("matches").
		Columns(
			"public_id",
			"season_public_id",
			"week",
			"home_team_public_id",
			"away_team_public_id",
			"kickoff_at",
			"status",
			"home_score",
			"away_score",
		).
		Values(
			item.ID,
			item.SeasonID,
			item.Week,
			item.HomeTeamID,
			item.AwayTeamID,
			item.KickoffAt,
			item.Status,
			item.HomeScore,
			item.AwayScore,
		).
		Suffix(`ON CONFLICT (public_id) DO UPDATE SET
season_public_id = EXCLUDED.season_public_id,
week = EXCLUDED.week,
home_team_public_id = EXCLUDED.home_team_public_id,
away_team_public_id = EXCLUDED.away_team_public_id,
kickoff_at = EXCLUDED.kickoff_at,
status = EXCLUDED.status,
home_score = EXCLUDED.home_score,
away_score = EXCLUDED.away_score,
updated_at = NOW()`).
		ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("build upsert match %s query: %w", item.ID, err)
	}

	return query, args, nil
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:         row.PublicID,
		SeasonID:   row.SeasonID,
		Week:       row.Week,
		HomeTeamID: row.HomeTeamID,
		AwayTeamID: row.AwayTeamID,
		KickoffAt:  row.KickoffAt,
		Status:     row.Status,
		HomeScore:  row.HomeScore,
		AwayScore:  row.AwayScore,
	}
}
