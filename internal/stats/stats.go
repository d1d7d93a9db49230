// Package stats derives habit statistics from the completion ledger.
package stats

import (
	"sort"
	"time"

	"github.com/julianstephens/pokrok/internal/models"
	"github.com/julianstephens/pokrok/internal/utils"
)

// HabitStats summarises a habit's history up to and including a given day.
type HabitStats struct {
	HabitID              string  `json:"habitId"`
	StartDate            string  `json:"startDate"`
	Today                string  `json:"today"`
	TotalPlanned         int     `json:"totalPlanned"`
	TotalCompleted       int     `json:"totalCompleted"`
	CompletedOutsidePlan int     `json:"completedOutsidePlan"`
	CurrentStreak        int     `json:"currentStreak"`
	MaxStreak            int     `json:"maxStreak"`
	CompletionRate       float64 `json:"completionRate"` // percent of planned days completed
}

// EffectiveStartDate is the first day a habit's schedule and statistics cover.
// An explicit start date wins; otherwise the earlier of the creation day and the
// first recorded completion, falling back to today.
func EffectiveStartDate(h models.Habit, today time.Time) time.Time {
	if h.StartDate != "" {
		if start, err := utils.ParseDate(h.StartDate); err == nil {
			return start
		}
	}

	var start time.Time
	if !h.CreatedAt.IsZero() {
		start = utils.DateOf(h.CreatedAt)
	}
	if earliest, ok := earliestCompletion(h.HabitCompletions); ok {
		if start.IsZero() || earliest.Before(start) {
			start = earliest
		}
	}
	if start.IsZero() {
		return utils.DateOf(today)
	}
	return start
}

// IsHabitScheduled applies the recurrence predicate and the start-date bound.
func IsHabitScheduled(h models.Habit, date, today time.Time) bool {
	day := utils.DateOf(date)
	if day.Before(EffectiveStartDate(h, today)) {
		return false
	}
	return utils.IsScheduledForDay(h.Recurrence(), day)
}

// Compute walks every day from the effective start date through today.
func Compute(h models.Habit, today time.Time) HabitStats {
	today = utils.DateOf(today)
	start := EffectiveStartDate(h, today)
	rec := h.Recurrence()

	st := HabitStats{
		HabitID:   h.ID,
		StartDate: utils.FormatDate(start),
		Today:     utils.FormatDate(today),
	}

	for d := start; !d.After(today); d = utils.AddDays(d, 1) {
		done := h.HabitCompletions[utils.FormatDate(d)]
		if utils.IsScheduledForDay(rec, d) {
			st.TotalPlanned++
			if done {
				st.TotalCompleted++
			}
		} else if done {
			st.CompletedOutsidePlan++
		}
	}

	st.CurrentStreak = CurrentStreak(h.HabitCompletions, today)
	st.MaxStreak = LongestStreak(h.HabitCompletions)
	if h.MaxStreak != nil && *h.MaxStreak > st.MaxStreak {
		st.MaxStreak = *h.MaxStreak
	}
	if st.CurrentStreak > st.MaxStreak {
		st.MaxStreak = st.CurrentStreak
	}
	if st.TotalPlanned > 0 {
		st.CompletionRate = float64(st.TotalCompleted) / float64(st.TotalPlanned) * 100
	}
	return st
}

// CurrentStreak counts consecutive completed days walking back from today.
// Every calendar day counts, scheduled or not: an unscheduled day without a
// completion ends the streak.
func CurrentStreak(completions map[string]bool, today time.Time) int {
	streak := 0
	for d := utils.DateOf(today); completions[utils.FormatDate(d)]; d = utils.AddDays(d, -1) {
		streak++
	}
	return streak
}

// LongestStreak finds the longest run of consecutive completed days.
func LongestStreak(completions map[string]bool) int {
	days := completedDays(completions)
	if len(days) == 0 {
		return 0
	}

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if utils.AddDays(days[i-1], 1).Equal(days[i]) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

func completedDays(completions map[string]bool) []time.Time {
	days := make([]time.Time, 0, len(completions))
	for key, done := range completions {
		if !done {
			continue
		}
		d, err := utils.ParseDate(key)
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func earliestCompletion(completions map[string]bool) (time.Time, bool) {
	days := completedDays(completions)
	if len(days) == 0 {
		return time.Time{}, false
	}
	return days[0], true
}
