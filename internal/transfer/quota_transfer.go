package transfer

type QuotaStatus struct {
	PostsUsed  int    `json:"posts_used"`
	Limit      int    `json:"limit"`
	Percentage int    `json:"percentage"`
	ResetDate  string `json:"reset_date"`
}

// Exhausted reports whether no further posts may be published this period.
func (q *QuotaStatus) Exhausted() bool {
	return q.PostsUsed >= q.Limit
}

type QuotaPeriod struct {
	Month      int    `json:"month"`
	Year       int    `json:"year"`
	PostsUsed  int    `json:"posts_used"`
	Limit      int    `json:"limit"`
	Percentage int    `json:"percentage"`
	ResetDate  string `json:"reset_date"`
}
