package planning

import (
	"strings"
	"testing"

	"github.com/julianstephens/pokrok/internal/cli/clitest"
	"github.com/julianstephens/pokrok/internal/cli/habits"
	"github.com/julianstephens/pokrok/internal/cli/steps"
	apperrors "github.com/julianstephens/pokrok/internal/errors"
	"github.com/julianstephens/pokrok/internal/storage"
)

func TestAreaLifecycle(t *testing.T) {
	ctx, out := clitest.NewContext(t)

	if err := (&AreaAddCmd{Name: "Home", Color: "#ff0000"}).Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := (&AreaAddCmd{Name: "Bad", Color: "red"}).Run(ctx); !apperrors.IsValidation(err) {
		t.Errorf("expected validation error for color, got %v", err)
	}
	if err := (&steps.StepAddCmd{Title: "Clean gutters", Date: "2024-03-06", Area: "home"}).Run(ctx); err != nil {
		t.Fatalf("step add failed: %v", err)
	}

	out.Reset()
	if err := (&AreaListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "Home") {
		t.Errorf("expected area in list, got %q", out.String())
	}

	if err := (&AreaDeleteCmd{Area: "Home"}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	all, err := ctx.Service.ListSteps(storage.StepFilter{})
	if err != nil {
		t.Fatalf("ListSteps failed: %v", err)
	}
	if len(all) != 1 || all[0].AreaID != nil {
		t.Errorf("expected the step to survive detached, got %+v", all)
	}
}

func TestGoalStatusAndFilter(t *testing.T) {
	ctx, out := clitest.NewContext(t)

	for _, title := range []string{"Run a 10k", "Learn Czech"} {
		if err := (&GoalAddCmd{Title: title, Target: "2024-06-01"}).Run(ctx); err != nil {
			t.Fatalf("add %q failed: %v", title, err)
		}
	}
	if err := (&GoalStatusCmd{Goal: "learn czech", Status: "paused"}).Run(ctx); err != nil {
		t.Fatalf("status failed: %v", err)
	}

	out.Reset()
	if err := (&GoalListCmd{Status: "paused"}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Learn Czech") || strings.Contains(got, "Run a 10k") {
		t.Errorf("unexpected filtered list: %q", got)
	}

	if err := (&GoalDeleteCmd{Goal: "Run a 10k"}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := ctx.FindGoal("Run a 10k"); !apperrors.IsNotFound(err) {
		t.Errorf("expected deleted goal to be gone, got %v", err)
	}
}

func TestAgendaAndReview(t *testing.T) {
	ctx, out := clitest.NewContext(t)
	if err := (&habits.HabitAddCmd{Name: "Read", Frequency: "daily"}).Run(ctx); err != nil {
		t.Fatalf("habit add failed: %v", err)
	}
	if err := (&steps.StepAddCmd{Title: "Old chore", Date: "2024-03-01"}).Run(ctx); err != nil {
		t.Fatalf("step add failed: %v", err)
	}
	if err := (&steps.StepAddCmd{Title: "Taxes", Date: "2024-03-06"}).Run(ctx); err != nil {
		t.Fatalf("step add failed: %v", err)
	}

	out.Reset()
	if err := (&AgendaCmd{}).Run(ctx); err != nil {
		t.Fatalf("agenda failed: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Agenda for 2024-03-06", "[ ] Read", "Taxes", "Time to review your day"} {
		if !strings.Contains(got, want) {
			t.Errorf("agenda missing %q:\n%s", want, got)
		}
	}

	if err := (&ReviewCmd{Note: "solid day"}).Run(ctx); err != nil {
		t.Fatalf("review failed: %v", err)
	}
	out.Reset()
	if err := (&AgendaCmd{}).Run(ctx); err != nil {
		t.Fatalf("agenda failed: %v", err)
	}
	if strings.Contains(out.String(), "Time to review your day") {
		t.Errorf("review should clear the pending workflow:\n%s", out.String())
	}
}
