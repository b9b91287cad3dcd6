package transfer

import "github.com/maheshrc27/xpilot/internal/models"

type PostComposition struct {
	Text         string `form:"text" json:"text"`
	Schedule     bool   `form:"schedule" json:"schedule"`
	ScheduleDate string `form:"schedule_date" json:"schedule_date"`
	ScheduleTime string `form:"schedule_time" json:"schedule_time"`
	Elevated     bool   `form:"-" json:"-"`
}

type ComposeResult struct {
	Post    *models.Post `json:"post"`
	Message string       `json:"message"`
	Quota   *QuotaStatus `json:"quota,omitempty"`
}

type DeleteResult struct {
	PostID  int64  `json:"post_id"`
	Message string `json:"message"`
	Warning string `json:"warning,omitempty"`
}

type ComposeInfo struct {
	Quota     *QuotaStatus `json:"quota"`
	Premium   bool         `json:"premium"`
	CharLimit int          `json:"char_limit"`
}
