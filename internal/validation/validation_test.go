package validation

import (
	"testing"
	"time"

	"github.com/julianstephens/pokrok/internal/constants"
	"github.com/julianstephens/pokrok/internal/models"
)

func ptr(s string) *string { return &s }

func countType(r Result, t ConflictType) int {
	n := 0
	for _, c := range r.Conflicts {
		if c.Type == t {
			n++
		}
	}
	return n
}

func habit(id, name string) models.Habit {
	return models.Habit{ID: id, Name: name, Frequency: constants.FrequencyDaily, SelectedDays: []string{}, HabitCompletions: map[string]bool{}}
}

func TestCleanDataHasNoConflicts(t *testing.T) {
	in := Input{
		Habits: []models.Habit{habit("h1", "Read"), habit("h2", "Walk")},
		Steps: []models.Step{
			{ID: "s1", Title: "Taxes", Date: "2024-03-06", AreaID: ptr("a1")},
			{ID: "s2", Title: "Review", Frequency: constants.FrequencyWeekly, SelectedDays: []string{"mon"}, CurrentInstanceDate: "2024-03-11"},
		},
		Areas: []models.Area{{ID: "a1", Name: "Home"}},
	}

	result := New().Validate(in)
	if result.HasConflicts() {
		t.Errorf("expected no conflicts, got:\n%s", result.FormatReport())
	}
	if result.FormatReport() != "No conflicts detected." {
		t.Errorf("unexpected report: %q", result.FormatReport())
	}
}

func TestDuplicateHabitNames(t *testing.T) {
	archived := habit("h3", "read")
	now := time.Now()
	archived.ArchivedAt = &now
	deleted := habit("h4", "Read")
	deleted.DeletedAt = &now

	result := New().Validate(Input{Habits: []models.Habit{habit("h1", "Read"), habit("h2", " READ "), archived, deleted}})

	if got := countType(result, ConflictDuplicateHabitName); got != 1 {
		t.Fatalf("expected one duplicate conflict, got %d:\n%s", got, result.FormatReport())
	}
	if ids := result.Conflicts[0].IDs; len(ids) != 2 {
		t.Errorf("archived and deleted habits must not count, got %v", ids)
	}
}

func TestMissingReferences(t *testing.T) {
	h := habit("h1", "Read")
	h.AreaID = ptr("gone")
	in := Input{
		Habits: []models.Habit{h},
		Steps:  []models.Step{{ID: "s1", Title: "Taxes", Date: "2024-03-06", GoalID: ptr("gone")}},
	}

	result := New().Validate(in)
	if got := countType(result, ConflictMissingReference); got != 2 {
		t.Errorf("expected two missing references, got %d:\n%s", got, result.FormatReport())
	}
}

func TestInvalidRecords(t *testing.T) {
	in := Input{
		Steps: []models.Step{{ID: "s1", Title: "Taxes", Date: "03/06/2024"}},
	}
	result := New().Validate(in)
	if got := countType(result, ConflictInvalidRecord); got != 1 {
		t.Errorf("expected one invalid record, got %d:\n%s", got, result.FormatReport())
	}
}

func TestRecurringChecks(t *testing.T) {
	template := models.Step{
		ID:                   "t1",
		Title:                "Water plants",
		Frequency:            constants.FrequencyDaily,
		SelectedDays:         []string{},
		RecurringDisplayMode: constants.DisplayAll,
	}
	stale := models.Step{ID: "t2", Title: "Stretch", Frequency: constants.FrequencyDaily, SelectedDays: []string{}}
	in := Input{Steps: []models.Step{
		template,
		stale,
		{ID: "i1", Title: "Water plants", Date: "2024-03-06"},
		{ID: "i2", Title: "Water plants", Date: "2024-03-06"},
		{ID: "i3", Title: "Water plants", Date: "2024-03-07"},
	}}

	result := New().Validate(in)
	if got := countType(result, ConflictDuplicateInstance); got != 1 {
		t.Errorf("expected one duplicate instance conflict, got %d:\n%s", got, result.FormatReport())
	}
	if got := countType(result, ConflictNoOpenOccurrence); got != 1 {
		t.Errorf("expected one stale template, got %d:\n%s", got, result.FormatReport())
	}
}
