package postgres

import "time"

type teamTableModel struct {
	ID           int64      `db:"id"`
	PublicID     string     `db:"public_id"`
	Name         string     `db:"name"`
	City         string     `db:"city"`
	Abbreviation string     `db:"abbreviation"`
	Conference   string     `db:"conference"`
	Division     string     `db:"division"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}
