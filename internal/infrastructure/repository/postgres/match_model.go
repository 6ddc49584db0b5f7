package postgres

import "time"

type matchTableModel struct {
	ID         int64      `db:"id"`
	PublicID   string     `db:"public_id"`
	SeasonID   string     `db:"season_public_id"`
	Week       int        `db:"week"`
	HomeTeamID string     `db:"home_team_public_id"`
	AwayTeamID string     `db:"away_team_public_id"`
	KickoffAt  time.Time  `db:"kickoff_at"`
	Status     string     `db:"status"`
	HomeScore  *int       `db:"home_score"`
	AwayScore  *int       `db:"away_score"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
	DeletedAt  *time.Time `db:"deleted_at"`
}
