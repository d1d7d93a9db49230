// Package validation looks for inconsistencies across stored habits and steps
// that single-record validation cannot see.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/pokrok/internal/constants"
	"github.com/julianstephens/pokrok/internal/models"
	"github.com/julianstephens/pokrok/internal/scheduler"
)

type ConflictType string

const (
	ConflictDuplicateHabitName ConflictType = "duplicate_habit_name"
	ConflictInvalidRecord      ConflictType = "invalid_record"
	ConflictMissingReference   ConflictType = "missing_reference"
	ConflictDuplicateInstance  ConflictType = "duplicate_instance"
	ConflictNoOpenOccurrence   ConflictType = "no_open_occurrence"
)

// Conflict is one detected problem.
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string
	IDs         []string
}

type Result struct {
	Conflicts []Conflict
}

func (r *Result) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

func (r *Result) FormatReport() string {
	if !r.HasConflicts() {
		return "No conflicts detected."
	}
	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range r.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

func (r *Result) add(c Conflict) {
	r.Conflicts = append(r.Conflicts, c)
}

// Input is a snapshot of everything stored.
type Input struct {
	Habits []models.Habit
	Steps  []models.Step
	Areas  []models.Area
	Goals  []models.Goal
}

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

func (v *Validator) Validate(in Input) Result {
	result := Result{Conflicts: []Conflict{}}
	areas := make(map[string]bool, len(in.Areas))
	for _, a := range in.Areas {
		areas[a.ID] = true
	}
	goals := make(map[string]bool, len(in.Goals))
	for _, g := range in.Goals {
		goals[g.ID] = true
	}

	v.checkHabits(&result, in.Habits, areas)
	v.checkSteps(&result, in.Steps, areas, goals)
	return result
}

func (v *Validator) checkHabits(result *Result, habits []models.Habit, areas map[string]bool) {
	byName := make(map[string][]string)
	var names []string
	for i := range habits {
		h := habits[i]
		if h.DeletedAt != nil {
			continue
		}
		if err := h.Validate(); err != nil {
			result.add(Conflict{
				Type:        ConflictInvalidRecord,
				Description: fmt.Sprintf("Habit %q is invalid: %v", h.Name, err),
				IDs:         []string{h.ID},
			})
		}
		if h.AreaID != nil && !areas[*h.AreaID] {
			result.add(Conflict{
				Type:        ConflictMissingReference,
				Description: fmt.Sprintf("Habit %q references missing area %s", h.Name, *h.AreaID),
				IDs:         []string{h.ID},
			})
		}
		if h.ArchivedAt != nil {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(h.Name))
		if key == "" {
			continue
		}
		if _, seen := byName[key]; !seen {
			names = append(names, key)
		}
		byName[key] = append(byName[key], h.ID)
	}

	sort.Strings(names)
	for _, name := range names {
		if ids := byName[name]; len(ids) > 1 {
			result.add(Conflict{
				Type:        ConflictDuplicateHabitName,
				Description: fmt.Sprintf("Duplicate habit name: %q (IDs: %v)", name, ids),
				IDs:         ids,
			})
		}
	}
}

func (v *Validator) checkSteps(result *Result, steps []models.Step, areas, goals map[string]bool) {
	for i := range steps {
		s := steps[i]
		if err := s.Validate(); err != nil {
			result.add(Conflict{
				Type:        ConflictInvalidRecord,
				Description: fmt.Sprintf("Step %q is invalid: %v", s.Title, err),
				IDs:         []string{s.ID},
			})
		}
		if s.AreaID != nil && !areas[*s.AreaID] {
			result.add(Conflict{
				Type:        ConflictMissingReference,
				Description: fmt.Sprintf("Step %q references missing area %s", s.Title, *s.AreaID),
				IDs:         []string{s.ID},
			})
		}
		if s.GoalID != nil && !goals[*s.GoalID] {
			result.add(Conflict{
				Type:        ConflictMissingReference,
				Description: fmt.Sprintf("Step %q references missing goal %s", s.Title, *s.GoalID),
				IDs:         []string{s.ID},
			})
		}
		if !s.IsRecurring() {
			continue
		}
		if s.RecurringDisplayMode != constants.DisplayAll && s.CurrentInstanceDate == "" && s.RecurringEndDate == "" {
			result.add(Conflict{
				Type:        ConflictNoOpenOccurrence,
				Description: fmt.Sprintf("Recurring step %q has no open occurrence", s.Title),
				IDs:         []string{s.ID},
			})
		}
		if s.RecurringDisplayMode == constants.DisplayAll {
			v.checkInstances(result, s, steps)
		}
	}
}

// checkInstances reports dates on which template has more than one
// materialised instance.
func (v *Validator) checkInstances(result *Result, template models.Step, steps []models.Step) {
	byDate := make(map[string][]string)
	var dates []string
	for _, candidate := range steps {
		if candidate.Date == "" || candidate.Title != template.Title || !scheduler.IsGeneratedInstance(template, candidate) {
			continue
		}
		if _, seen := byDate[candidate.Date]; !seen {
			dates = append(dates, candidate.Date)
		}
		byDate[candidate.Date] = append(byDate[candidate.Date], candidate.ID)
	}
	sort.Strings(dates)
	for _, date := range dates {
		if ids := byDate[date]; len(ids) > 1 {
			result.add(Conflict{
				Type:        ConflictDuplicateInstance,
				Description: fmt.Sprintf("Recurring step %q has %d instances on %s", template.Title, len(ids), date),
				Date:        date,
				IDs:         ids,
			})
		}
	}
}
