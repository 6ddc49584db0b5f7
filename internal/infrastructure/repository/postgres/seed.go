package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nflsurvivor/survivor-pool/internal/infrastructure/repository/memory"
)

func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM seasons WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count seasons for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, s := range memory.SeedSeasons() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO seasons (public_id, year, is_active, current_week, max_weeks)
VALUES (:public_id, :year, :is_active, :current_week, :max_weeks)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":    s.ID,
			"year":         s.Year,
			"is_active":    s.IsActive,
			"current_week": s.CurrentWeek,
			"max_weeks":    s.MaxWeeks,
		})
		if err != nil {
			return fmt.Errorf("bind seed season %s query: %w", s.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed season %s: %w", s.ID, err)
		}
	}

	for _, t := range memory.SeedTeams() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO teams (public_id, name, city, abbreviation, conference, division)
VALUES (:public_id, :name, :city, :abbreviation, :conference, :division)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":    t.ID,
			"name":         t.Name,
			"city":         t.City,
			"abbreviation": t.Abbreviation,
			"conference":   t.Conference,
			"division":     t.Division,
		})
		if err != nil {
			return fmt.Errorf("bind seed team %s query: %w", t.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed team %s: %w", t.ID, err)
		}
	}

	for _, m := range memory.SeedMatches(time.Now()) {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO matches (public_id, season_public_id, week, home_team_public_id, away_team_public_id, kickoff_at, status)
VALUES (:public_id, :season_public_id, :week, :home_team_public_id, :away_team_public_id, :kickoff_at, :status)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":           m.ID,
			"season_public_id":    m.SeasonID,
			"week":                m.Week,
			"home_team_public_id": m.HomeTeamID,
			"away_team_public_id": m.AwayTeamID,
			"kickoff_at":          m.KickoffAt.UTC(),
			"status":              m.Status,
		})
		if err != nil {
			return fmt.Errorf("bind seed match %s query: %w", m.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed match %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}
