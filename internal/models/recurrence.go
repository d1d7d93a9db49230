package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/pokrok/internal/constants"
	apperrors "github.com/julianstephens/pokrok/internal/errors"
)

// Recurrence is the scheduling rule shared by habits and recurring steps.
type Recurrence struct {
	Frequency    constants.Frequency
	SelectedDays []string
	// Anchor is the owning entity's creation time. Monthly rules without
	// selected days fall back to its day of month.
	Anchor time.Time
}

var weekdayTokens = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// WeekdayToken returns the lower-case token for a weekday ("monday").
func WeekdayToken(wd time.Weekday) string {
	return strings.ToLower(wd.String())
}

// ParseWeekdayToken maps "monday".."sunday" to a time.Weekday.
func ParseWeekdayToken(token string) (time.Weekday, bool) {
	wd, ok := weekdayTokens[strings.ToLower(strings.TrimSpace(token))]
	return wd, ok
}

// ParseMonthDayToken parses a day-of-month token ("1".."31").
func ParseMonthDayToken(token string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil || n < 1 || n > 31 {
		return 0, false
	}
	return n, true
}

// ParseCompositeToken parses "{ordinal}_{weekday}" tokens such as "first_monday"
// or "last_friday". The returned index is 0-based; -1 means last.
func ParseCompositeToken(token string) (index int, wd time.Weekday, ok bool) {
	ordinal, day, found := strings.Cut(strings.ToLower(strings.TrimSpace(token)), "_")
	if !found {
		return 0, 0, false
	}
	wd, ok = weekdayTokens[day]
	if !ok {
		return 0, 0, false
	}
	if ordinal == constants.OrdinalLast {
		return -1, wd, true
	}
	for i, o := range constants.Ordinals {
		if o == ordinal {
			return i, wd, true
		}
	}
	return 0, 0, false
}

// IsKnownFrequency reports whether f is one of the recognised frequencies.
func IsKnownFrequency(f constants.Frequency) bool {
	switch f {
	case constants.FrequencyDaily, constants.FrequencyWeekly, constants.FrequencyMonthly, constants.FrequencyCustom:
		return true
	}
	return false
}

// ValidateSelectedDays checks every token against the frequency it belongs to.
func ValidateSelectedDays(freq constants.Frequency, days []string) error {
	if !IsKnownFrequency(freq) {
		return apperrors.Invalid("frequency", "unknown frequency %q", freq)
	}
	for _, tok := range days {
		switch freq {
		case constants.FrequencyWeekly, constants.FrequencyCustom:
			if _, ok := ParseWeekdayToken(tok); !ok {
				return apperrors.Invalid("selectedDays", "invalid weekday %q", tok)
			}
		case constants.FrequencyMonthly:
			if _, ok := ParseMonthDayToken(tok); ok {
				continue
			}
			if _, _, ok := ParseCompositeToken(tok); !ok {
				return apperrors.Invalid("selectedDays", "invalid monthly token %q", tok)
			}
		}
	}
	if (freq == constants.FrequencyWeekly || freq == constants.FrequencyCustom) && len(days) == 0 {
		return apperrors.Invalid("selectedDays", "weekly recurrence needs at least one weekday")
	}
	return nil
}

func validDate(s string) bool {
	_, err := time.Parse(constants.DateFormat, s)
	return err == nil
}
