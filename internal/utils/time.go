package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/pokrok/internal/constants"
)

// normalizeLayouts are the inputs NormalizeDate accepts, most specific last.
var normalizeLayouts = []string{
	constants.DateFormat,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// NormalizeDate reduces a date or datetime string to YYYY-MM-DD. Datetimes keep
// the calendar date as written in their own offset; no timezone conversion happens.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty date")
	}
	for _, layout := range normalizeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(constants.DateFormat), nil
		}
	}
	return "", fmt.Errorf("invalid date %q", s)
}

// NormalizeOptionalDate is NormalizeDate that passes the empty string through.
func NormalizeOptionalDate(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return NormalizeDate(s)
}

// ParseDate parses a date string (YYYY-MM-DD or any NormalizeDate input) to
// midnight UTC. All calendar arithmetic happens on these values.
func ParseDate(s string) (time.Time, error) {
	normalized, err := NormalizeDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(constants.DateFormat, normalized)
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// DateOf returns t's calendar date, in t's own location, as midnight UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate formats t's calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// AddDays moves a date by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// GetTodayInTimezone returns today's date string (YYYY-MM-DD) in the specified timezone.
func GetTodayInTimezone(timezone string) (string, error) {
	now, err := NowInTimezone(timezone)
	if err != nil {
		return "", err
	}
	return now.Format(constants.DateFormat), nil
}

// TodayDate returns today in timezone as a midnight-UTC date value.
func TodayDate(timezone string) (time.Time, error) {
	now, err := NowInTimezone(timezone)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(now), nil
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}
