package postgres

import "time"

type entryTableModel struct {
	ID             int64      `db:"id"`
	PublicID       string     `db:"public_id"`
	UserID         string     `db:"user_id"`
	SeasonID       string     `db:"season_public_id"`
	Name           string     `db:"name"`
	Status         string     `db:"status"`
	Points         int        `db:"points"`
	TotalWins      int        `db:"total_wins"`
	TotalLosses    int        `db:"total_losses"`
	TotalTies      int        `db:"total_ties"`
	CurrentStreak  int        `db:"current_streak"`
	LongestStreak  int        `db:"longest_streak"`
	IsActive       bool       `db:"is_active"`
	EliminatedWeek *int       `db:"eliminated_week"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at"`
}
