package cli

import (
	"fmt"
	"strings"

	apperrors "github.com/julianstephens/pokrok/internal/errors"
	"github.com/julianstephens/pokrok/internal/models"
	"github.com/julianstephens/pokrok/internal/storage"
)

// ShortID is the id prefix shown in listings and accepted as a reference.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolve picks the single candidate whose id equals ref, whose id starts
// with ref, or whose name matches ref case-insensitively, in that order.
// When several match, a single candidate satisfying prefer wins.
func resolve[T any](kind, ref string, items []T, id, name func(T) string, prefer func(T) bool) (T, error) {
	var zero T
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return zero, apperrors.Invalid(kind, "reference is required")
	}
	for _, it := range items {
		if id(it) == ref {
			return it, nil
		}
	}

	var matches []T
	for _, it := range items {
		if strings.HasPrefix(id(it), ref) {
			matches = append(matches, it)
		}
	}
	if len(matches) == 0 {
		for _, it := range items {
			if strings.EqualFold(name(it), ref) {
				matches = append(matches, it)
			}
		}
	}

	switch len(matches) {
	case 0:
		return zero, apperrors.NotFound(kind, ref)
	case 1:
		return matches[0], nil
	}
	if prefer != nil {
		var preferred []T
		for _, it := range matches {
			if prefer(it) {
				preferred = append(preferred, it)
			}
		}
		if len(preferred) == 1 {
			return preferred[0], nil
		}
	}
	return zero, fmt.Errorf("%s reference %q is ambiguous (%d matches)", kind, ref, len(matches))
}

// FindHabit resolves a habit by id, id prefix or name, including archived ones.
func (c *Context) FindHabit(ref string, includeDeleted bool) (models.Habit, error) {
	habits, err := c.Service.ListAllHabits(includeDeleted)
	if err != nil {
		return models.Habit{}, err
	}
	return resolve("habit", ref, habits,
		func(h models.Habit) string { return h.ID },
		func(h models.Habit) string { return h.Name },
		nil)
}

// FindStep resolves a step by id, id prefix or title. Generated instances
// share their template's title; a shared title resolves to the template.
func (c *Context) FindStep(ref string) (models.Step, error) {
	steps, err := c.Service.ListSteps(storage.StepFilter{IncludeTemplates: true})
	if err != nil {
		return models.Step{}, err
	}
	return resolve("step", ref, steps,
		func(s models.Step) string { return s.ID },
		func(s models.Step) string { return s.Title },
		models.Step.IsRecurring)
}

func (c *Context) FindArea(ref string) (models.Area, error) {
	areas, err := c.Service.ListAreas()
	if err != nil {
		return models.Area{}, err
	}
	return resolve("area", ref, areas,
		func(a models.Area) string { return a.ID },
		func(a models.Area) string { return a.Name },
		nil)
}

func (c *Context) FindGoal(ref string) (models.Goal, error) {
	goals, err := c.Service.ListGoals()
	if err != nil {
		return models.Goal{}, err
	}
	return resolve("goal", ref, goals,
		func(g models.Goal) string { return g.ID },
		func(g models.Goal) string { return g.Title },
		nil)
}

// OptionalAreaID resolves ref to an area id pointer; empty ref gives nil.
func (c *Context) OptionalAreaID(ref string) (*string, error) {
	if ref == "" {
		return nil, nil
	}
	area, err := c.FindArea(ref)
	if err != nil {
		return nil, err
	}
	return &area.ID, nil
}

func (c *Context) OptionalGoalID(ref string) (*string, error) {
	if ref == "" {
		return nil, nil
	}
	goal, err := c.FindGoal(ref)
	if err != nil {
		return nil, err
	}
	return &goal.ID, nil
}

// SplitDays parses a comma-separated list of selected-day tokens.
func SplitDays(s string) []string {
	days := []string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			days = append(days, part)
		}
	}
	return days
}
