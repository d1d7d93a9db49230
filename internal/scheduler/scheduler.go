package scheduler

import (
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/pokrok/internal/constants"
	apperrors "github.com/julianstephens/pokrok/internal/errors"
	"github.com/julianstephens/pokrok/internal/models"
	"github.com/julianstephens/pokrok/internal/stats"
	"github.com/julianstephens/pokrok/internal/utils"
)

type Scheduler struct {
	scanLimit int
}

func New() *Scheduler {
	return &Scheduler{scanLimit: constants.NextOccurrenceScanLimit}
}

// IsCompletedForDate reports whether step counts as done on date (YYYY-MM-DD).
// Recurring templates are completed per instance, never globally.
func IsCompletedForDate(step models.Step, date string) bool {
	if !step.Completed {
		return false
	}
	if step.IsRecurring() && step.CurrentInstanceDate != "" {
		return step.CurrentInstanceDate == date
	}
	if step.CompletionDate != "" {
		return step.CompletionDate == date
	}
	if step.CompletedAt != nil {
		return utils.FormatDate(*step.CompletedAt) == date
	}
	return step.Date == date
}

// NextOccurrenceDate returns the next date on or after from on which step is due.
// The boolean is false when there is no upcoming occurrence.
func (s *Scheduler) NextOccurrenceDate(step models.Step, from time.Time) (time.Time, bool) {
	from = utils.DateOf(from)

	if !step.IsRecurring() {
		if step.Date == "" {
			return time.Time{}, false
		}
		date, err := utils.ParseDate(step.Date)
		if err != nil || date.Before(from) {
			return time.Time{}, false
		}
		return date, true
	}

	scanStart := from
	if step.CurrentInstanceDate != "" {
		current, err := utils.ParseDate(step.CurrentInstanceDate)
		if err == nil {
			currentDone := IsCompletedForDate(step, step.CurrentInstanceDate)
			switch {
			case !current.Before(from) && !currentDone:
				// The open occurrence still stands.
				return current, true
			case !current.Before(from) && currentDone:
				scanStart = utils.AddDays(current, 1)
			default:
				scanStart = from
			}
		}
	}

	var startBound, endBound time.Time
	if step.RecurringStartDate != "" {
		startBound, _ = utils.ParseDate(step.RecurringStartDate)
	}
	if step.RecurringEndDate != "" {
		endBound, _ = utils.ParseDate(step.RecurringEndDate)
	}

	rec := step.Recurrence()
	for i := 0; i < s.scanLimit; i++ {
		d := utils.AddDays(scanStart, i)
		if !endBound.IsZero() && d.After(endBound) {
			return time.Time{}, false
		}
		if !startBound.IsZero() && d.Before(startBound) {
			continue
		}
		if utils.IsScheduledForDay(rec, d) && !IsCompletedForDate(step, utils.FormatDate(d)) {
			return d, true
		}
	}
	return time.Time{}, false
}

// CompletionResult is the outcome of completing or reopening a step.
type CompletionResult struct {
	Step models.Step
	// Instance is the completed occurrence record written for recurring templates.
	Instance *models.Step
	// HasNext is false when a recurring template has no upcoming occurrence.
	HasNext bool
}

// Complete marks step done (or not done) for date. A recurring template records
// the occurrence and advances CurrentInstanceDate to its next due date. now must
// be in the user's timezone: its calendar day becomes the completion date.
func (s *Scheduler) Complete(step models.Step, date string, completed bool, now time.Time) (CompletionResult, error) {
	if date == "" {
		date = step.CurrentInstanceDate
		if date == "" {
			date = step.Date
		}
	}
	if date == "" {
		date = utils.FormatDate(now)
	}
	day, err := utils.ParseDate(date)
	if err != nil {
		return CompletionResult{}, apperrors.Invalid("date", "invalid date %q", date)
	}
	date = utils.FormatDate(day)

	if completed && step.RequireChecklistComplete && step.OpenChecklistItems() > 0 {
		return CompletionResult{}, apperrors.Invalid("checklist", "%d checklist item(s) still open", step.OpenChecklistItems())
	}

	if !step.IsRecurring() {
		step.Completed = completed
		if completed {
			at := now
			step.CompletedAt = &at
			step.CompletionDate = utils.FormatDate(now)
		} else {
			step.CompletedAt = nil
			step.CompletionDate = ""
		}
		step.UpdatedAt = now
		return CompletionResult{Step: step, HasNext: false}, nil
	}

	if !completed {
		// Reopen: the template's open occurrence moves back to date if earlier.
		if step.CurrentInstanceDate == "" || date < step.CurrentInstanceDate {
			step.CurrentInstanceDate = date
		}
		step.Completed = false
		step.CompletedAt = nil
		step.CompletionDate = ""
		step.UpdatedAt = now
		return CompletionResult{Step: step, HasNext: true}, nil
	}

	at := now
	instance := models.Step{
		Title:          step.Title,
		Description:    step.Description,
		Date:           date,
		Completed:      true,
		CompletedAt:    &at,
		CompletionDate: utils.FormatDate(now),
		IsImportant:    step.IsImportant,
		IsUrgent:       step.IsUrgent,
		AreaID:         step.AreaID,
		GoalID:         step.GoalID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	step.Completed = true
	step.CurrentInstanceDate = date
	step.CompletedAt = &at
	step.CompletionDate = utils.FormatDate(now)

	next, ok := s.NextOccurrenceDate(step, day)
	if ok {
		step.CurrentInstanceDate = utils.FormatDate(next)
		step.Completed = false
	}
	step.UpdatedAt = now
	return CompletionResult{Step: step, Instance: &instance, HasNext: ok}, nil
}

// UpcomingInstances lists the occurrence dates of a template within days days of
// from. Used to materialise instances for templates displayed in "all" mode.
func (s *Scheduler) UpcomingInstances(step models.Step, from time.Time, days int) []string {
	if !step.IsRecurring() {
		return nil
	}
	var out []string
	cursor := utils.DateOf(from)
	limit := utils.AddDays(cursor, days)
	probe := step
	probe.CurrentInstanceDate = ""
	probe.Completed = false
	for cursor.Before(limit) {
		next, ok := s.NextOccurrenceDate(probe, cursor)
		if !ok || !next.Before(limit) {
			break
		}
		out = append(out, utils.FormatDate(next))
		cursor = utils.AddDays(next, 1)
	}
	return out
}

// AgendaHabit is a habit scheduled on the agenda day.
type AgendaHabit struct {
	Habit     models.Habit `json:"habit"`
	Completed bool         `json:"completed"`
}

// AgendaStep is a step due on the agenda day.
type AgendaStep struct {
	Step      models.Step `json:"step"`
	Completed bool        `json:"completed"`
	Overdue   bool        `json:"overdue"`
}

// Agenda is the day view: scheduled habits and due steps.
type Agenda struct {
	Date   string        `json:"date"`
	Habits []AgendaHabit `json:"habits"`
	Steps  []AgendaStep  `json:"steps"`
}

// BuildAgenda assembles the agenda for date. today bounds habit start dates.
func (s *Scheduler) BuildAgenda(date, today time.Time, habits []models.Habit, steps []models.Step) Agenda {
	day := utils.DateOf(date)
	key := utils.FormatDate(day)
	agenda := Agenda{Date: key, Habits: []AgendaHabit{}, Steps: []AgendaStep{}}

	for _, h := range habits {
		if h.ArchivedAt != nil || h.DeletedAt != nil {
			continue
		}
		if stats.IsHabitScheduled(h, day, today) {
			agenda.Habits = append(agenda.Habits, AgendaHabit{Habit: h, Completed: h.IsCompletedOn(key)})
		}
	}

	for _, st := range steps {
		if st.IsRecurring() {
			if st.RecurringDisplayMode == constants.DisplayAll {
				// Materialised instances carry the occurrences.
				continue
			}
			if st.CurrentInstanceDate != "" && st.CurrentInstanceDate < key && !st.Completed && key == utils.FormatDate(utils.DateOf(today)) {
				agenda.Steps = append(agenda.Steps, AgendaStep{Step: st, Overdue: true})
				continue
			}
			if next, ok := s.NextOccurrenceDate(st, day); ok && next.Equal(day) {
				agenda.Steps = append(agenda.Steps, AgendaStep{Step: st, Completed: IsCompletedForDate(st, key)})
			}
			continue
		}
		if st.Date == key {
			agenda.Steps = append(agenda.Steps, AgendaStep{Step: st, Completed: st.Completed})
		}
	}

	sort.SliceStable(agenda.Habits, func(i, j int) bool {
		return strings.ToLower(agenda.Habits[i].Habit.Name) < strings.ToLower(agenda.Habits[j].Habit.Name)
	})
	SortSteps(agenda.Steps)
	return agenda
}

// SortSteps orders steps by priority (important+urgent first), then title.
func SortSteps(steps []AgendaStep) {
	sort.SliceStable(steps, func(i, j int) bool {
		pi, pj := steps[i].Step.Priority(), steps[j].Step.Priority()
		if pi != pj {
			return pi > pj
		}
		return strings.ToLower(steps[i].Step.Title) < strings.ToLower(steps[j].Step.Title)
	})
}

// IsGeneratedInstance reports whether candidate belongs to template under the
// title-prefix rule used for cascading deletes.
func IsGeneratedInstance(template, candidate models.Step) bool {
	if candidate.ID == template.ID || candidate.IsRecurring() {
		return false
	}
	return strings.HasPrefix(candidate.Title, template.Title)
}
