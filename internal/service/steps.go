package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/pokrok/internal/constants"
	apperrors "github.com/julianstephens/pokrok/internal/errors"
	"github.com/julianstephens/pokrok/internal/logger"
	"github.com/julianstephens/pokrok/internal/models"
	"github.com/julianstephens/pokrok/internal/scheduler"
	"github.com/julianstephens/pokrok/internal/storage"
	"github.com/julianstephens/pokrok/internal/utils"
)

// StepPatch carries the fields an update may change. Nil fields are left alone.
type StepPatch struct {
	Title                    *string                 `json:"title,omitempty"`
	Description              *string                 `json:"description,omitempty"`
	Date                     *string                 `json:"date,omitempty"`
	IsImportant              *bool                   `json:"isImportant,omitempty"`
	IsUrgent                 *bool                   `json:"isUrgent,omitempty"`
	EstimatedMinutes         *int                    `json:"estimatedMinutes,omitempty" validate:"omitempty,gte=0"`
	AreaID                   *string                 `json:"areaId,omitempty"`
	GoalID                   *string                 `json:"goalId,omitempty"`
	Checklist                *[]models.ChecklistItem `json:"checklist,omitempty"`
	RequireChecklistComplete *bool                   `json:"requireChecklistComplete,omitempty"`
	Frequency                *constants.Frequency    `json:"frequency,omitempty"`
	SelectedDays             *[]string               `json:"selectedDays,omitempty"`
	RecurringStartDate       *string                 `json:"recurringStartDate,omitempty"`
	RecurringEndDate         *string                 `json:"recurringEndDate,omitempty"`
	RecurringDisplayMode     *constants.DisplayMode  `json:"recurringDisplayMode,omitempty"`
}

func (s *Service) ListSteps(filter storage.StepFilter) ([]models.Step, error) {
	for field, value := range map[string]*string{"date": &filter.Date, "from": &filter.From, "to": &filter.To} {
		if err := normalizeField(field, value); err != nil {
			return nil, err
		}
	}
	return s.store.GetSteps(filter)
}

func (s *Service) GetStep(id string) (models.Step, error) {
	return s.store.GetStep(id)
}

// CreateStep stores a new step. Recurring templates get their first open
// occurrence, and "all"-mode templates get instances for the coming weeks.
func (s *Service) CreateStep(step models.Step) (models.Step, error) {
	now := s.now().UTC()
	step.ID = uuid.New().String()
	step.Title = strings.TrimSpace(step.Title)
	step.CreatedAt = now
	step.UpdatedAt = now
	step.Completed = false
	step.CompletedAt = nil
	step.CompletionDate = ""
	if err := normalizeStep(&step); err != nil {
		return models.Step{}, err
	}
	assignChecklistIDs(step.Checklist)
	if step.IsRecurring() && step.RecurringDisplayMode == "" {
		step.RecurringDisplayMode = constants.DisplayNextOnly
	}
	if err := s.check(&step); err != nil {
		return models.Step{}, err
	}

	var instances []models.Step
	if step.IsRecurring() {
		from, err := s.recurrenceOrigin(step)
		if err != nil {
			return models.Step{}, err
		}
		if step.CurrentInstanceDate == "" {
			if next, ok := s.sched.NextOccurrenceDate(step, from); ok {
				step.CurrentInstanceDate = utils.FormatDate(next)
			}
		}
		if step.RecurringDisplayMode == constants.DisplayAll {
			instances = s.materialize(step, from)
		}
	}

	if err := s.store.AddStep(step); err != nil {
		return models.Step{}, fmt.Errorf("failed to add step: %w", err)
	}
	for _, inst := range instances {
		if err := s.store.AddStep(inst); err != nil {
			return models.Step{}, fmt.Errorf("failed to add step instance: %w", err)
		}
	}
	logger.Debug("Step created", "id", step.ID, "recurring", step.IsRecurring(), "instances", len(instances))
	return step, nil
}

// recurrenceOrigin is where occurrence scanning starts for a new template.
func (s *Service) recurrenceOrigin(step models.Step) (time.Time, error) {
	if step.Date != "" {
		return utils.ParseDate(step.Date)
	}
	if step.RecurringStartDate != "" {
		return utils.ParseDate(step.RecurringStartDate)
	}
	return s.Today()
}

func (s *Service) materialize(template models.Step, from time.Time) []models.Step {
	dates := s.sched.UpcomingInstances(template, from, constants.MaterializeDays)
	out := make([]models.Step, 0, len(dates))
	for _, d := range dates {
		out = append(out, models.Step{
			ID:               uuid.New().String(),
			Title:            template.Title,
			Description:      template.Description,
			Date:             d,
			IsImportant:      template.IsImportant,
			IsUrgent:         template.IsUrgent,
			EstimatedMinutes: template.EstimatedMinutes,
			AreaID:           template.AreaID,
			GoalID:           template.GoalID,
			CreatedAt:        template.CreatedAt,
			UpdatedAt:        template.UpdatedAt,
		})
	}
	return out
}

// UpdateStep applies patch to step id. Moving a recurring template's date
// moves its open occurrence.
func (s *Service) UpdateStep(id string, patch StepPatch) (models.Step, error) {
	if err := s.validate.Struct(patch); err != nil {
		return models.Step{}, validationError(err)
	}
	step, err := s.store.GetStep(id)
	if err != nil {
		return models.Step{}, err
	}

	recurrenceChanged := false
	if patch.Title != nil {
		step.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		step.Description = *patch.Description
	}
	if patch.IsImportant != nil {
		step.IsImportant = *patch.IsImportant
	}
	if patch.IsUrgent != nil {
		step.IsUrgent = *patch.IsUrgent
	}
	if patch.EstimatedMinutes != nil {
		step.EstimatedMinutes = *patch.EstimatedMinutes
	}
	if patch.AreaID != nil {
		step.AreaID = emptyToNil(*patch.AreaID)
	}
	if patch.GoalID != nil {
		step.GoalID = emptyToNil(*patch.GoalID)
	}
	if patch.Checklist != nil {
		step.Checklist = *patch.Checklist
		assignChecklistIDs(step.Checklist)
	}
	if patch.RequireChecklistComplete != nil {
		step.RequireChecklistComplete = *patch.RequireChecklistComplete
	}
	if patch.Frequency != nil {
		step.Frequency = *patch.Frequency
		recurrenceChanged = true
	}
	if patch.SelectedDays != nil {
		step.SelectedDays = *patch.SelectedDays
		recurrenceChanged = true
	}
	if patch.RecurringStartDate != nil {
		step.RecurringStartDate = *patch.RecurringStartDate
		recurrenceChanged = true
	}
	if patch.RecurringEndDate != nil {
		step.RecurringEndDate = *patch.RecurringEndDate
		recurrenceChanged = true
	}
	if patch.RecurringDisplayMode != nil {
		step.RecurringDisplayMode = *patch.RecurringDisplayMode
	}
	if patch.Date != nil {
		date, err := utils.NormalizeOptionalDate(*patch.Date)
		if err != nil {
			return models.Step{}, apperrors.Invalid("date", "invalid date %q", *patch.Date)
		}
		if step.IsRecurring() && date != "" {
			step.CurrentInstanceDate = date
			step.Completed = false
			step.CompletedAt = nil
			step.CompletionDate = ""
		} else {
			step.Date = date
		}
	}

	if err := normalizeStep(&step); err != nil {
		return models.Step{}, err
	}
	if step.IsRecurring() && recurrenceChanged && patch.Date == nil {
		from, err := s.Today()
		if err != nil {
			return models.Step{}, err
		}
		probe := step
		probe.CurrentInstanceDate = ""
		probe.Completed = false
		if next, ok := s.sched.NextOccurrenceDate(probe, from); ok {
			step.CurrentInstanceDate = utils.FormatDate(next)
		}
	}
	if err := s.check(&step); err != nil {
		return models.Step{}, err
	}

	step.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateStep(step); err != nil {
		return models.Step{}, fmt.Errorf("failed to update step: %w", err)
	}
	return step, nil
}

// CompleteStep sets the completion of step id for date. For recurring
// templates a completed occurrence record is written and the template
// advances; reopening removes that record again.
func (s *Service) CompleteStep(id, date string, completed bool) (models.Step, error) {
	step, err := s.store.GetStep(id)
	if err != nil {
		return models.Step{}, err
	}
	if date != "" {
		normalized, err := utils.NormalizeDate(date)
		if err != nil {
			return models.Step{}, apperrors.Invalid("date", "invalid date %q", date)
		}
		date = normalized
	}
	now, err := s.localNow()
	if err != nil {
		return models.Step{}, err
	}
	if date == "" && !step.IsRecurring() && step.Date == "" {
		date = utils.FormatDate(now)
	}

	result, err := s.sched.Complete(step, date, completed, now)
	if err != nil {
		return models.Step{}, err
	}

	if step.IsRecurring() {
		day := date
		if day == "" {
			day = step.CurrentInstanceDate
		}
		if completed && result.Instance != nil {
			if err := s.removeOccurrenceRecords(step, result.Instance.Date); err != nil {
				return models.Step{}, err
			}
			result.Instance.ID = uuid.New().String()
			if err := s.store.AddStep(*result.Instance); err != nil {
				return models.Step{}, fmt.Errorf("failed to record occurrence: %w", err)
			}
		} else if !completed && day != "" {
			if err := s.removeOccurrenceRecords(step, day); err != nil {
				return models.Step{}, err
			}
		}
		if !result.HasNext && completed {
			logger.Info("Recurring step has no further occurrences", "id", id)
		}
	}

	if err := s.store.UpdateStep(result.Step); err != nil {
		return models.Step{}, fmt.Errorf("failed to update step: %w", err)
	}
	return result.Step, nil
}

// removeOccurrenceRecords deletes completed occurrence records of template on day.
func (s *Service) removeOccurrenceRecords(template models.Step, day string) error {
	steps, err := s.store.GetSteps(storage.StepFilter{Date: day})
	if err != nil {
		return fmt.Errorf("failed to load occurrences: %w", err)
	}
	var ids []string
	for _, st := range steps {
		if st.Completed && st.Title == template.Title && scheduler.IsGeneratedInstance(template, st) {
			ids = append(ids, st.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return s.store.DeleteSteps(ids)
}

// NextOccurrence returns the next due date of step id on or after from.
func (s *Service) NextOccurrence(id, from string) (string, bool, error) {
	step, err := s.store.GetStep(id)
	if err != nil {
		return "", false, err
	}
	day, err := s.dateOrToday("from", from)
	if err != nil {
		return "", false, err
	}
	next, ok := s.sched.NextOccurrenceDate(step, day)
	if !ok {
		return "", false, nil
	}
	return utils.FormatDate(next), true, nil
}

// DeleteStep removes step id. Deleting a recurring template also removes its
// open generated instances; completed history is kept.
func (s *Service) DeleteStep(id string) (int, error) {
	step, err := s.store.GetStep(id)
	if err != nil {
		return 0, err
	}
	if !step.IsRecurring() {
		return 1, s.store.DeleteStep(id)
	}

	all, err := s.store.GetSteps(storage.StepFilter{})
	if err != nil {
		return 0, fmt.Errorf("failed to load steps: %w", err)
	}
	ids := []string{id}
	for _, st := range all {
		if !st.Completed && scheduler.IsGeneratedInstance(step, st) {
			ids = append(ids, st.ID)
		}
	}
	if err := s.store.DeleteSteps(ids); err != nil {
		return 0, fmt.Errorf("failed to delete steps: %w", err)
	}
	logger.Debug("Recurring step deleted", "id", id, "removed", len(ids))
	return len(ids), nil
}

// GeneratedInstances lists the open instances a template delete would remove.
func (s *Service) GeneratedInstances(id string) ([]models.Step, error) {
	step, err := s.store.GetStep(id)
	if err != nil {
		return nil, err
	}
	if !step.IsRecurring() {
		return []models.Step{}, nil
	}
	all, err := s.store.GetSteps(storage.StepFilter{})
	if err != nil {
		return nil, err
	}
	out := []models.Step{}
	for _, st := range all {
		if !st.Completed && scheduler.IsGeneratedInstance(step, st) {
			out = append(out, st)
		}
	}
	return out, nil
}

func normalizeStep(step *models.Step) error {
	for field, value := range map[string]*string{
		"date":                &step.Date,
		"recurringStartDate":  &step.RecurringStartDate,
		"recurringEndDate":    &step.RecurringEndDate,
		"currentInstanceDate": &step.CurrentInstanceDate,
	} {
		if err := normalizeField(field, value); err != nil {
			return err
		}
	}
	for i, tok := range step.SelectedDays {
		step.SelectedDays[i] = strings.ToLower(strings.TrimSpace(tok))
	}
	if !step.IsRecurring() {
		step.SelectedDays = nil
		step.RecurringStartDate = ""
		step.RecurringEndDate = ""
		step.RecurringDisplayMode = ""
		step.CurrentInstanceDate = ""
	}
	return nil
}

func assignChecklistIDs(items []models.ChecklistItem) {
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.New().String()
		}
	}
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
