package service

import (
	"errors"
	"fmt"
)

var (
	ErrContentEmpty       = errors.New("post content cannot be empty")
	ErrExceedsLimit       = errors.New("post exceeds character limit")
	ErrInvalidSchedule    = errors.New("scheduled time must be a valid date and time in the future")
	ErrQuotaExceeded      = errors.New("monthly post quota exceeded")
	ErrNotOwner           = errors.New("resource does not belong to user")
	ErrPostNotFound       = errors.New("post not found")
	ErrMissingCredentials = errors.New("missing API credentials")
	ErrInvalidUser        = errors.New("invalid user")
	ErrUserNotFound       = errors.New("user not found")
	ErrStreamNotFound     = errors.New("stream not found")
	ErrInvalidStream      = errors.New("invalid stream")
	ErrInvalidQuery       = errors.New("invalid query")
	ErrUnsupportedMedia   = errors.New("unsupported media type")
)

// RemoteError wraps a failed call to the X API.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
