package postgres

import "time"

type pickTableModel struct {
	ID           int64      `db:"id"`
	PublicID     string     `db:"public_id"`
	EntryID      string     `db:"entry_public_id"`
	SeasonID     string     `db:"season_public_id"`
	MatchID      string     `db:"match_public_id"`
	Week         int        `db:"week"`
	TeamID       string     `db:"team_public_id"`
	Result       string     `db:"result"`
	PointsEarned int        `db:"points_earned"`
	Version      int        `db:"version"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}
