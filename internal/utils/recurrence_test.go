package utils

import (
	"testing"
	"time"

	"github.com/julianstephens/pokrok/internal/constants"
	"github.com/julianstephens/pokrok/internal/models"
)

func TestIsScheduledForDay_DailyAlwaysTrue(t *testing.T) {
	rec := models.Recurrence{Frequency: constants.FrequencyDaily}

	start := MustParseDate("2024-01-01")
	for i := 0; i < 366; i++ {
		d := AddDays(start, i)
		if !IsScheduledForDay(rec, d) {
			t.Fatalf("expected daily rule to be scheduled on %s", FormatDate(d))
		}
	}
}

func TestIsScheduledForDay_Weekly(t *testing.T) {
	rec := models.Recurrence{
		Frequency:    constants.FrequencyWeekly,
		SelectedDays: []string{"monday", "wednesday"},
	}

	start := MustParseDate("2024-03-01")
	for i := 0; i < 28; i++ {
		d := AddDays(start, i)
		want := d.Weekday() == time.Monday || d.Weekday() == time.Wednesday
		if got := IsScheduledForDay(rec, d); got != want {
			t.Errorf("%s (%s): got %v, want %v", FormatDate(d), d.Weekday(), got, want)
		}
	}
}

func TestIsScheduledForDay_WeeklyEmptyDays(t *testing.T) {
	rec := models.Recurrence{Frequency: constants.FrequencyWeekly}
	if IsScheduledForDay(rec, MustParseDate("2024-03-04")) {
		t.Error("weekly rule without selected days must never be scheduled")
	}
}

func TestIsScheduledForDay_CustomTreatedAsWeekly(t *testing.T) {
	rec := models.Recurrence{
		Frequency:    constants.FrequencyCustom,
		SelectedDays: []string{"Monday"},
	}
	if !IsScheduledForDay(rec, MustParseDate("2024-03-04")) {
		t.Error("expected legacy custom rule to match Monday")
	}
	if IsScheduledForDay(rec, MustParseDate("2024-03-05")) {
		t.Error("expected legacy custom rule not to match Tuesday")
	}
}

func TestIsScheduledForDay_MonthlyDayOfMonth(t *testing.T) {
	rec := models.Recurrence{
		Frequency:    constants.FrequencyMonthly,
		SelectedDays: []string{"15"},
	}

	if !IsScheduledForDay(rec, MustParseDate("2024-02-15")) {
		t.Error("expected monthly rule to match the 15th")
	}
	if IsScheduledForDay(rec, MustParseDate("2024-02-14")) {
		t.Error("expected monthly rule not to match the 14th")
	}
}

func TestIsScheduledForDay_Monthly31AutoAdjust(t *testing.T) {
	rec := models.Recurrence{
		Frequency:    constants.FrequencyMonthly,
		SelectedDays: []string{"31"},
	}

	tests := []struct {
		date string
		want bool
	}{
		{"2024-04-30", true},  // April has 30 days
		{"2024-09-30", true},  // September has 30 days
		{"2024-05-30", false}, // May has a 31st
		{"2024-05-31", true},
		{"2024-02-29", false}, // only 30-day months adjust
		{"2024-04-29", false},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			if got := IsScheduledForDay(rec, MustParseDate(tt.date)); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsScheduledForDay_FirstMondayOncePerMonth(t *testing.T) {
	rec := models.Recurrence{
		Frequency:    constants.FrequencyMonthly,
		SelectedDays: []string{"first_monday"},
	}

	for m := 0; m < 24; m++ {
		monthStart := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, m, 0)
		var matches []time.Time
		for d := monthStart; d.Month() == monthStart.Month(); d = AddDays(d, 1) {
			if IsScheduledForDay(rec, d) {
				matches = append(matches, d)
			}
		}
		if len(matches) != 1 {
			t.Fatalf("%s: expected exactly one match, got %d", monthStart.Format("2006-01"), len(matches))
		}
		match := matches[0]
		if match.Weekday() != time.Monday || match.Day() > 7 {
			t.Errorf("%s: match %s is not the earliest Monday", monthStart.Format("2006-01"), FormatDate(match))
		}
	}
}

func TestIsScheduledForDay_LastFriday(t *testing.T) {
	rec := models.Recurrence{
		Frequency:    constants.FrequencyMonthly,
		SelectedDays: []string{"last_friday"},
	}

	tests := []struct {
		name string
		date string
		want bool
	}{
		{"four-friday month, last", "2024-02-23", true},
		{"four-friday month, earlier", "2024-02-16", false},
		{"five-friday month, last", "2024-03-29", true},
		{"five-friday month, fourth", "2024-03-22", false},
		{"five-friday month ending on friday", "2024-05-31", true},
		{"not a friday", "2024-03-28", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsScheduledForDay(rec, MustParseDate(tt.date)); got != tt.want {
				t.Errorf("%s: got %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestIsScheduledForDay_MixedMonthlyTokens(t *testing.T) {
	rec := models.Recurrence{
		Frequency:    constants.FrequencyMonthly,
		SelectedDays: []string{"1", "second_tuesday"},
	}

	if !IsScheduledForDay(rec, MustParseDate("2024-03-01")) {
		t.Error("expected numeric token to match the 1st")
	}
	if !IsScheduledForDay(rec, MustParseDate("2024-03-12")) {
		t.Error("expected second_tuesday to match 2024-03-12")
	}
	if IsScheduledForDay(rec, MustParseDate("2024-03-05")) {
		t.Error("first Tuesday must not match second_tuesday")
	}
}

func TestIsScheduledForDay_MonthlyLegacyAnchor(t *testing.T) {
	rec := models.Recurrence{
		Frequency: constants.FrequencyMonthly,
		Anchor:    time.Date(2023, time.November, 20, 18, 30, 0, 0, time.UTC),
	}

	if !IsScheduledForDay(rec, MustParseDate("2024-03-20")) {
		t.Error("expected legacy monthly rule to match creation day of month")
	}
	if IsScheduledForDay(rec, MustParseDate("2024-03-21")) {
		t.Error("expected legacy monthly rule not to match other days")
	}

	rec.Anchor = time.Time{}
	if IsScheduledForDay(rec, MustParseDate("2024-03-20")) {
		t.Error("monthly rule without tokens or anchor must not match")
	}
}

func TestIsScheduledForDay_UnknownFrequency(t *testing.T) {
	for _, f := range []constants.Frequency{"", "yearly", "hourly"} {
		rec := models.Recurrence{Frequency: f, SelectedDays: []string{"monday"}}
		if IsScheduledForDay(rec, MustParseDate("2024-03-04")) {
			t.Errorf("frequency %q should never be scheduled", f)
		}
	}
}

func TestScheduledBetween(t *testing.T) {
	rec := models.Recurrence{
		Frequency:    constants.FrequencyWeekly,
		SelectedDays: []string{"monday"},
	}
	dates := ScheduledBetween(rec, MustParseDate("2024-03-01"), MustParseDate("2024-03-31"))
	want := []string{"2024-03-04", "2024-03-11", "2024-03-18", "2024-03-25"}
	if len(dates) != len(want) {
		t.Fatalf("expected %d dates, got %d", len(want), len(dates))
	}
	for i, d := range dates {
		if FormatDate(d) != want[i] {
			t.Errorf("date %d: got %s, want %s", i, FormatDate(d), want[i])
		}
	}
}
