package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"

	DefaultLimit = 50
	MaxLimit     = 200
)

func ParseDateRequired(value, name string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD", name)
	}
	return parsed, nil
}

func ParseDateParam(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// ParseTimestamp accepts either a calendar date or an RFC 3339 timestamp.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed.UTC(), nil
	}
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return parsed, nil
}

func ParseIntParam(value string, fallback int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("invalid int")
	}
	return parsed, nil
}

func ParseBoolParam(value string) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return false, nil
	}
	return strconv.ParseBool(value)
}

// ParsePagination reads limit and offset, clamping limit to MaxLimit.
func ParsePagination(limitValue, offsetValue string) (int, int, error) {
	limit, err := ParseIntParam(limitValue, DefaultLimit)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid limit")
	}
	if limit == 0 || limit > MaxLimit {
		limit = MaxLimit
	}
	offset, err := ParseIntParam(offsetValue, 0)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid offset")
	}
	return limit, offset, nil
}
