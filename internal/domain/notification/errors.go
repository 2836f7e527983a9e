package notification

import "errors"

var (
	ErrEmptyMessage = errors.New("notification message is required")
	ErrMissingUser  = errors.New("notification user is required")
	ErrNotFound     = errors.New("notification not found")
)
