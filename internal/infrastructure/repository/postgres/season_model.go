package postgres

import "time"

type seasonTableModel struct {
	ID          int64      `db:"id"`
	PublicID    string     `db:"public_id"`
	Year        int        `db:"year"`
	IsActive    bool       `db:"is_active"`
	CurrentWeek int        `db:"current_week"`
	MaxWeeks    int        `db:"max_weeks"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}
