package transfer

import (
	"fmt"
	"strings"
)

// XIdentity is the result of verifying a set of user credentials.
type XIdentity struct {
	TwitterID       string `json:"id_str"`
	Username        string `json:"screen_name"`
	Name            string `json:"name"`
	ProfileImageURL string `json:"profile_image_url_https"`
	Verified        bool   `json:"verified"`
	VerifiedType    string `json:"verified_type"`
}

type XPublicMetrics struct {
	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
	TweetCount     int `json:"tweet_count"`
	ListedCount    int `json:"listed_count"`
}

type XUser struct {
	ID              string         `json:"id"`
	Username        string         `json:"username"`
	Name            string         `json:"name"`
	Description     string         `json:"description,omitempty"`
	ProfileImageURL string         `json:"profile_image_url,omitempty"`
	Verified        bool           `json:"verified"`
	VerifiedType    string         `json:"verified_type,omitempty"`
	PublicMetrics   XPublicMetrics `json:"public_metrics"`
}

type XProfile = XUser

type XUserResponse struct {
	Data   *XUser      `json:"data"`
	Errors []XAPIIssue `json:"errors,omitempty"`
}

type XUsersResponse struct {
	Data   []*XUser    `json:"data"`
	Errors []XAPIIssue `json:"errors,omitempty"`
}

type XCreatePostRequest struct {
	Text string `json:"text"`
}

type XCreatePostResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

type XDeletePostResponse struct {
	Data struct {
		Deleted bool `json:"deleted"`
	} `json:"data"`
}

type XFollowRequest struct {
	TargetUserID string `json:"target_user_id"`
}

type XFollowResponse struct {
	Data struct {
		Following     bool `json:"following"`
		PendingFollow bool `json:"pending_follow"`
	} `json:"data"`
}

type XAPIIssue struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Title   string `json:"title"`
	Code    int    `json:"code"`
}

// XAPIError is a non-2xx answer from the X API.
type XAPIError struct {
	StatusCode int         `json:"status"`
	Title      string      `json:"title"`
	Detail     string      `json:"detail"`
	Errors     []XAPIIssue `json:"errors"`
}

func (e *XAPIError) Error() string {
	var parts []string
	if e.Title != "" {
		parts = append(parts, e.Title)
	}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	for _, issue := range e.Errors {
		switch {
		case issue.Message != "":
			parts = append(parts, issue.Message)
		case issue.Detail != "":
			parts = append(parts, issue.Detail)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("x api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("x api returned status %d: %s", e.StatusCode, strings.Join(parts, "; "))
}
