package domain

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("invalid_date")

// storeTimeLayouts covers the text renderings of date columns across the
// supported stores: date-only, RFC 3339, ISO-8601 without zone, and the
// space-separated forms produced by postgres and mysql.
var storeTimeLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02T15:04:05.999999999Z07",
}

// ParseStoreTime parses a date column rendered as text by the store. The
// wall clock of the value is kept; no zone conversion is applied.
func ParseStoreTime(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range storeTimeLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}
