package notifications

import "errors"

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrForbidden            = errors.New("not enough permissions")
	ErrTitleRequired        = errors.New("title is required")
	ErrMessageRequired      = errors.New("message is required")
)
