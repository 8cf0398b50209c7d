package reports

import "errors"

var (
	ErrInvalidPeriod = errors.New("invalid report period")
	ErrInvalidRange  = errors.New("end date is before start date")
	ErrInvalidMonth  = errors.New("month must be between 1 and 12")
)
