package postgres

import "time"

type tokenTableModel struct {
	ID        int64      `db:"id"`
	PublicID  string     `db:"public_id"`
	Value     string     `db:"value"`
	IsUsed    bool       `db:"is_used"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}
