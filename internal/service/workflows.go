package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/pokrok/internal/constants"
	apperrors "github.com/julianstephens/pokrok/internal/errors"
	"github.com/julianstephens/pokrok/internal/models"
	"github.com/julianstephens/pokrok/internal/scheduler"
	"github.com/julianstephens/pokrok/internal/storage"
	"github.com/julianstephens/pokrok/internal/utils"
)

// Agenda returns the habits scheduled and the steps due on date (default today).
func (s *Service) Agenda(date string) (scheduler.Agenda, error) {
	today, err := s.Today()
	if err != nil {
		return scheduler.Agenda{}, err
	}
	day := today
	if date != "" {
		if day, err = utils.ParseDate(date); err != nil {
			return scheduler.Agenda{}, apperrors.Invalid("date", "invalid date %q", date)
		}
	}

	habits, err := s.store.GetAllHabits(false, false)
	if err != nil {
		return scheduler.Agenda{}, fmt.Errorf("failed to load habits: %w", err)
	}
	steps, err := s.store.GetSteps(storage.StepFilter{Date: utils.FormatDate(day), IncludeTemplates: true})
	if err != nil {
		return scheduler.Agenda{}, fmt.Errorf("failed to load steps: %w", err)
	}
	return s.sched.BuildAgenda(day, today, habits, steps), nil
}

// PendingWorkflows lists the prompts clients should show right now. A daily
// review is pending when enabled and nothing has been recorded for today.
func (s *Service) PendingWorkflows() ([]models.Workflow, error) {
	settings, err := s.store.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	pending := []models.Workflow{}
	if !settings.DailyReviewEnabled {
		return pending, nil
	}

	today, err := s.Today()
	if err != nil {
		return nil, err
	}
	key := utils.FormatDate(today)
	_, err = s.store.GetDailyReview(key)
	switch {
	case apperrors.IsNotFound(err):
		pending = append(pending, models.Workflow{
			Type:    constants.WorkflowDailyReview,
			Date:    key,
			Message: "Time to review your day",
		})
	case err != nil:
		return nil, fmt.Errorf("failed to load daily review: %w", err)
	}
	return pending, nil
}

// RecordDailyReview stores (or replaces the note of) the review for date.
func (s *Service) RecordDailyReview(date, note string) (models.DailyReview, error) {
	day, err := s.dateOrToday("date", date)
	if err != nil {
		return models.DailyReview{}, err
	}
	review := models.DailyReview{
		ID:        uuid.New().String(),
		Date:      utils.FormatDate(day),
		Note:      note,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.AddDailyReview(review); err != nil {
		return models.DailyReview{}, fmt.Errorf("failed to record daily review: %w", err)
	}
	return s.store.GetDailyReview(review.Date)
}

func (s *Service) GetSettings() (models.Settings, error) {
	return s.store.GetSettings()
}

func (s *Service) UpdateSettings(settings models.Settings) (models.Settings, error) {
	if !utils.ValidateTimezone(settings.Timezone) {
		return models.Settings{}, apperrors.Invalid("timezone", "unknown timezone %q", settings.Timezone)
	}
	models.ApplyDefaultSettings(&settings)
	if err := s.store.SaveSettings(settings); err != nil {
		return models.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}
	return settings, nil
}
