package models

type QuotaUsage struct {
	ID        int64  `db:"id" json:"id"`
	UserID    int64  `db:"user_id" json:"user_id"`
	Month     int    `db:"month" json:"month"`
	Year      int    `db:"year" json:"year"`
	PostsUsed int    `db:"posts_used" json:"posts_used"`
	ResetDate string `db:"reset_date" json:"reset_date"` // YYYY-MM-DD
}
