package utils

import (
	"strings"
	"time"

	"github.com/julianstephens/pokrok/internal/constants"
	"github.com/julianstephens/pokrok/internal/models"
)

// IsScheduledForDay reports whether an item with the given rule recurs on date.
// Habits and recurring steps both schedule through this function.
func IsScheduledForDay(rec models.Recurrence, date time.Time) bool {
	switch rec.Frequency {
	case constants.FrequencyDaily:
		return true
	case constants.FrequencyWeekly, constants.FrequencyCustom:
		if len(rec.SelectedDays) == 0 {
			return false
		}
		token := models.WeekdayToken(date.Weekday())
		for _, d := range rec.SelectedDays {
			if strings.ToLower(strings.TrimSpace(d)) == token {
				return true
			}
		}
		return false
	case constants.FrequencyMonthly:
		return isScheduledMonthly(rec, date)
	default:
		return false
	}
}

func isScheduledMonthly(rec models.Recurrence, date time.Time) bool {
	if len(rec.SelectedDays) == 0 {
		// Legacy rows carry no tokens and recur on the creation day of month.
		return !rec.Anchor.IsZero() && date.Day() == rec.Anchor.Day()
	}

	day := date.Day()
	for _, tok := range rec.SelectedDays {
		if n, ok := models.ParseMonthDayToken(tok); ok {
			if n == day {
				return true
			}
			// "31" lands on the 30th in 30-day months.
			if n == 31 && day == 30 && DaysInMonth(date) == 30 {
				return true
			}
			continue
		}
		if index, wd, ok := models.ParseCompositeToken(tok); ok && date.Weekday() == wd {
			if isNthWeekdayOfMonth(date, index) {
				return true
			}
		}
	}
	return false
}

// isNthWeekdayOfMonth checks whether date is the index-th (0-based) occurrence of
// its weekday in its month; index -1 selects the last occurrence.
func isNthWeekdayOfMonth(date time.Time, index int) bool {
	occurrences := weekdayOccurrences(date.Year(), date.Month(), date.Weekday())
	if len(occurrences) == 0 {
		return false
	}
	if index == -1 {
		return occurrences[len(occurrences)-1] == date.Day()
	}
	if index < 0 || index >= len(occurrences) {
		return false
	}
	return occurrences[index] == date.Day()
}

// weekdayOccurrences lists, in ascending order, the days of month falling on wd.
func weekdayOccurrences(year int, month time.Month, wd time.Weekday) []int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := DaysInMonth(first)
	var out []int
	for d := 1; d <= days; d++ {
		if time.Date(year, month, d, 0, 0, 0, 0, time.UTC).Weekday() == wd {
			out = append(out, d)
		}
	}
	return out
}

// ScheduledBetween returns every date in [from, to] on which rec is scheduled.
func ScheduledBetween(rec models.Recurrence, from, to time.Time) []time.Time {
	var out []time.Time
	for d := DateOf(from); !d.After(DateOf(to)); d = AddDays(d, 1) {
		if IsScheduledForDay(rec, d) {
			out = append(out, d)
		}
	}
	return out
}

// FormatRecurrence formats a recurrence rule into a human-readable string
func FormatRecurrence(rec models.Recurrence) string {
	switch rec.Frequency {
	case constants.FrequencyDaily:
		return "daily"
	case constants.FrequencyWeekly, constants.FrequencyCustom:
		if len(rec.SelectedDays) == 0 {
			return "weekly"
		}
		days := make([]string, 0, len(rec.SelectedDays))
		for _, d := range rec.SelectedDays {
			if wd, ok := models.ParseWeekdayToken(d); ok {
				days = append(days, wd.String()[:3])
			}
		}
		return "weekly on " + strings.Join(days, ",")
	case constants.FrequencyMonthly:
		if len(rec.SelectedDays) == 0 {
			return "monthly"
		}
		return "monthly on " + strings.ReplaceAll(strings.Join(rec.SelectedDays, ","), "_", " ")
	case "":
		return "once"
	default:
		return "unknown"
	}
}
