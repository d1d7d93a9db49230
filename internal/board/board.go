// Package board keeps the client's local copy of habits and steps and
// applies every change optimistically.
package board

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/pokrok/internal/errors"
	"github.com/julianstephens/pokrok/internal/logger"
	"github.com/julianstephens/pokrok/internal/models"
	"github.com/julianstephens/pokrok/internal/optimistic"
	"github.com/julianstephens/pokrok/internal/scheduler"
	"github.com/julianstephens/pokrok/internal/service"
	"github.com/julianstephens/pokrok/internal/storage"
)

// API is the subset of the server client the board needs.
type API interface {
	ListHabits(ctx context.Context) ([]models.Habit, error)
	ToggleHabit(ctx context.Context, habitID, date string, completed *bool) ([]models.Habit, error)
	ListSteps(ctx context.Context, filter storage.StepFilter) ([]models.Step, error)
	CreateStep(ctx context.Context, step models.Step) (models.Step, error)
	UpdateStep(ctx context.Context, id string, patch service.StepPatch) (models.Step, error)
	CompleteStep(ctx context.Context, id, date string, completed bool) (models.Step, error)
	ListAreas(ctx context.Context) ([]models.Area, error)
	ListGoals(ctx context.Context) ([]models.Goal, error)
}

type Board struct {
	api    API
	syncer *optimistic.Syncer

	mu       sync.RWMutex
	habits   []models.Habit
	steps    []models.Step
	areas    []models.Area
	goals    []models.Goal
	overlays []overlay
}

func New(api API, syncer *optimistic.Syncer) *Board {
	return &Board{api: api, syncer: syncer}
}

// Syncer exposes the guard so views can show which rows are saving.
func (b *Board) Syncer() *optimistic.Syncer { return b.syncer }

func (b *Board) Habits() []models.Habit {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cloneHabits(b.habits)
}

func (b *Board) Steps() []models.Step {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.steps)
}

func (b *Board) Areas() []models.Area {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.areas)
}

func (b *Board) Goals() []models.Goal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.goals)
}

// Refresh reloads everything from the server. Local state is only replaced
// once every fetch has succeeded, and changes still in flight are kept.
func (b *Board) Refresh(ctx context.Context) error {
	habits, err := b.api.ListHabits(ctx)
	if err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}
	steps, err := b.api.ListSteps(ctx, storage.StepFilter{IncludeTemplates: true})
	if err != nil {
		return fmt.Errorf("failed to load steps: %w", err)
	}
	areas, err := b.api.ListAreas(ctx)
	if err != nil {
		return fmt.Errorf("failed to load areas: %w", err)
	}
	goals, err := b.api.ListGoals(ctx)
	if err != nil {
		return fmt.Errorf("failed to load goals: %w", err)
	}

	b.mu.Lock()
	b.habits, b.steps, b.areas, b.goals = habits, steps, areas, goals
	b.reapply()
	b.mu.Unlock()
	return nil
}

// Settle sends a locally applied change to the server and commits or rolls
// it back.
type Settle func(ctx context.Context) error

// ToggleHabit flips the habit's completion on date locally, then asks the
// server and adopts the habits collection it returns.
func (b *Board) ToggleHabit(ctx context.Context, habitID, date string) error {
	settle, err := b.StartToggleHabit(habitID, date)
	if err != nil {
		return err
	}
	return settle(ctx)
}

// StartToggleHabit applies the toggle locally and returns the step that
// settles it. Callers can render between the two.
func (b *Board) StartToggleHabit(habitID, date string) (Settle, error) {
	if !b.hasHabit(habitID) {
		return nil, apperrors.NotFound("habit", habitID)
	}
	key := optimistic.Key(habitID, date)
	var prev, target bool
	p, err := optimistic.Start(b.syncer, optimistic.Mutation[[]models.Habit]{
		Kind: "habit_toggle",
		Key:  key,
		Apply: func() []models.Habit {
			b.mu.Lock()
			defer b.mu.Unlock()
			if i := b.habitIndex(habitID); i >= 0 {
				prev = b.habits[i].HabitCompletions[date]
			}
			target = !prev
			b.hold(key, func() { b.markHabit(habitID, date, target) })
			return nil
		},
		Request: func(ctx context.Context) ([]models.Habit, error) {
			return b.api.ToggleHabit(ctx, habitID, date, &target)
		},
		Commit: func(habits []models.Habit) {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.release(key)
			b.habits = habits
			b.reapply()
		},
		Rollback: func([]models.Habit) {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.release(key)
			b.markHabit(habitID, date, prev)
			b.reapply()
		},
		FailureMessage: "Could not update habit",
	})
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) error {
		_, err := p.Resolve(ctx)
		return err
	}, nil
}

// ToggleStep flips the step's completion for date.
func (b *Board) ToggleStep(ctx context.Context, stepID, date string) error {
	settle, err := b.StartToggleStep(stepID, date)
	if err != nil {
		return err
	}
	return settle(ctx)
}

// StartToggleStep applies the step toggle locally and returns its Settle.
// A failed toggle restores only the completion fields.
func (b *Board) StartToggleStep(stepID, date string) (Settle, error) {
	if !b.hasStep(stepID) {
		return nil, apperrors.NotFound("step", stepID)
	}
	key := optimistic.Key(stepID, date)
	var target bool
	p, err := optimistic.Start(b.syncer, optimistic.Mutation[models.Step]{
		Kind: "step_toggle",
		Key:  key,
		Apply: func() models.Step {
			b.mu.Lock()
			defer b.mu.Unlock()
			i := b.stepIndex(stepID)
			if i < 0 {
				return models.Step{}
			}
			prev := b.steps[i]
			recurring := prev.IsRecurring()
			target = !prev.Completed
			if recurring {
				target = !scheduler.IsCompletedForDate(prev, date)
			}
			b.hold(key, func() {
				b.editStep(stepID, func(s *models.Step) {
					s.Completed = target
					if recurring {
						s.CurrentInstanceDate = date
					}
				})
			})
			return prev
		},
		Request: func(ctx context.Context) (models.Step, error) {
			return b.api.CompleteStep(ctx, stepID, date, target)
		},
		Commit: b.adoptStep(key),
		Rollback: b.restoreStep(key, func(s *models.Step, prev models.Step) {
			s.Completed = prev.Completed
			s.CurrentInstanceDate = prev.CurrentInstanceDate
		}),
		FailureMessage: "Could not update step",
	})
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) error {
		_, err := p.Resolve(ctx)
		return err
	}, nil
}

// RescheduleStep moves a step to date.
func (b *Board) RescheduleStep(ctx context.Context, stepID, date string) error {
	return b.patchStep(ctx, "step_reschedule", stepID, service.StepPatch{Date: &date},
		func(s *models.Step) {
			if s.IsRecurring() {
				s.CurrentInstanceDate = date
				s.Completed = false
			} else {
				s.Date = date
			}
		},
		func(s *models.Step, prev models.Step) {
			s.Date = prev.Date
			s.CurrentInstanceDate = prev.CurrentInstanceDate
			s.Completed = prev.Completed
		})
}

func (b *Board) SetImportant(ctx context.Context, stepID string, important bool) error {
	return b.patchStep(ctx, "step_important", stepID, service.StepPatch{IsImportant: &important},
		func(s *models.Step) { s.IsImportant = important },
		func(s *models.Step, prev models.Step) { s.IsImportant = prev.IsImportant })
}

func (b *Board) SetUrgent(ctx context.Context, stepID string, urgent bool) error {
	return b.patchStep(ctx, "step_urgent", stepID, service.StepPatch{IsUrgent: &urgent},
		func(s *models.Step) { s.IsUrgent = urgent },
		func(s *models.Step, prev models.Step) { s.IsUrgent = prev.IsUrgent })
}

func (b *Board) SetEstimate(ctx context.Context, stepID string, minutes int) error {
	if minutes < 0 {
		return fmt.Errorf("estimate must not be negative")
	}
	return b.patchStep(ctx, "step_estimate", stepID, service.StepPatch{EstimatedMinutes: &minutes},
		func(s *models.Step) { s.EstimatedMinutes = minutes },
		func(s *models.Step, prev models.Step) { s.EstimatedMinutes = prev.EstimatedMinutes })
}

// patchStep applies mutate locally and sends patch. On failure restore copies
// back the fields mutate touched from the pre-change step.
func (b *Board) patchStep(ctx context.Context, kind, stepID string, patch service.StepPatch,
	mutate func(*models.Step), restore func(s *models.Step, prev models.Step)) error {
	if !b.hasStep(stepID) {
		return apperrors.NotFound("step", stepID)
	}
	key := optimistic.Key(stepID, kind)
	_, err := optimistic.Execute(ctx, b.syncer, optimistic.Mutation[models.Step]{
		Kind: kind,
		Key:  key,
		Apply: func() models.Step {
			b.mu.Lock()
			defer b.mu.Unlock()
			i := b.stepIndex(stepID)
			if i < 0 {
				return models.Step{}
			}
			prev := b.steps[i]
			b.hold(key, func() { b.editStep(stepID, mutate) })
			return prev
		},
		Request: func(ctx context.Context) (models.Step, error) {
			return b.api.UpdateStep(ctx, stepID, patch)
		},
		Commit:         b.adoptStep(key),
		Rollback:       b.restoreStep(key, restore),
		FailureMessage: "Could not save step",
	})
	return err
}

// CreateStep validates locally, shows a placeholder row while the request
// runs, then refreshes. A failed refresh leaves the created step in place.
func (b *Board) CreateStep(ctx context.Context, step models.Step) (models.Step, error) {
	if err := step.Validate(); err != nil {
		return models.Step{}, err
	}

	placeholderID := "pending-" + uuid.New().String()
	key := optimistic.Key(placeholderID, step.Date)
	created, err := optimistic.Execute(ctx, b.syncer, optimistic.Mutation[models.Step]{
		Kind: "step_create",
		Key:  key,
		Apply: func() models.Step {
			placeholder := step
			placeholder.ID = placeholderID
			b.mu.Lock()
			defer b.mu.Unlock()
			b.hold(key, func() {
				if b.stepIndex(placeholderID) < 0 {
					b.steps = append(b.steps, placeholder)
				}
			})
			return placeholder
		},
		Request: func(ctx context.Context) (models.Step, error) {
			return b.api.CreateStep(ctx, step)
		},
		Commit: func(created models.Step) {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.release(key)
			b.dropStep(placeholderID)
			b.putStep(created)
			b.reapply()
		},
		Rollback: func(models.Step) {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.release(key)
			b.dropStep(placeholderID)
			b.reapply()
		},
		FailureMessage: "Could not create step",
	})
	if err != nil {
		return models.Step{}, err
	}

	if err := b.Refresh(ctx); err != nil {
		logger.Warn("Refresh after create failed", "step", created.ID, "error", err)
	}
	return created, nil
}

// overlay is a local change whose request has not settled yet. It is
// re-applied whenever a server copy replaces local state.
type overlay struct {
	key   string
	apply func()
}

// hold records and applies an overlay. Called with b.mu held.
func (b *Board) hold(key string, apply func()) {
	b.overlays = append(b.overlays, overlay{key: key, apply: apply})
	apply()
}

// release forgets the overlay for key. Called with b.mu held.
func (b *Board) release(key string) {
	b.overlays = slices.DeleteFunc(b.overlays, func(o overlay) bool { return o.key == key })
}

// reapply replays in-flight overlays in start order. Called with b.mu held.
func (b *Board) reapply() {
	for _, o := range b.overlays {
		o.apply()
	}
}

// adoptStep returns a Commit that takes the server's step and keeps other
// pending changes on top of it.
func (b *Board) adoptStep(key string) func(models.Step) {
	return func(step models.Step) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.release(key)
		b.putStep(step)
		b.reapply()
	}
}

// restoreStep returns a Rollback that undoes only the fields restore names.
func (b *Board) restoreStep(key string, restore func(s *models.Step, prev models.Step)) func(models.Step) {
	return func(prev models.Step) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.release(key)
		if prev.ID != "" {
			b.editStep(prev.ID, func(s *models.Step) { restore(s, prev) })
		}
		b.reapply()
	}
}

// markHabit sets or clears one completion. Called with b.mu held.
func (b *Board) markHabit(habitID, date string, done bool) {
	i := b.habitIndex(habitID)
	if i < 0 {
		return
	}
	completions := cloneCompletions(b.habits[i].HabitCompletions)
	if done {
		completions[date] = true
	} else {
		delete(completions, date)
	}
	b.habits[i].HabitCompletions = completions
}

// editStep mutates the step in place. Called with b.mu held.
func (b *Board) editStep(id string, edit func(*models.Step)) {
	if i := b.stepIndex(id); i >= 0 {
		edit(&b.steps[i])
	}
}

// putStep replaces the step with the same ID. A zero step is ignored.
// Called with b.mu held.
func (b *Board) putStep(step models.Step) {
	if step.ID == "" {
		return
	}
	if i := b.stepIndex(step.ID); i >= 0 {
		b.steps[i] = step
		return
	}
	b.steps = append(b.steps, step)
}

// dropStep must be called with b.mu held.
func (b *Board) dropStep(id string) {
	if i := b.stepIndex(id); i >= 0 {
		b.steps = slices.Delete(b.steps, i, i+1)
	}
}

func (b *Board) hasHabit(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.habitIndex(id) >= 0
}

func (b *Board) hasStep(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.stepIndex(id) >= 0
}

// habitIndex must be called with b.mu held.
func (b *Board) habitIndex(id string) int {
	return slices.IndexFunc(b.habits, func(h models.Habit) bool { return h.ID == id })
}

// stepIndex must be called with b.mu held.
func (b *Board) stepIndex(id string) int {
	return slices.IndexFunc(b.steps, func(s models.Step) bool { return s.ID == id })
}

func cloneHabits(habits []models.Habit) []models.Habit {
	if habits == nil {
		return nil
	}
	out := make([]models.Habit, len(habits))
	for i, h := range habits {
		h.HabitCompletions = cloneCompletions(h.HabitCompletions)
		out[i] = h
	}
	return out
}

func cloneCompletions(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
