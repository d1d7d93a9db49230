package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/pokrok/internal/errors"
	"github.com/julianstephens/pokrok/internal/logger"
	"github.com/julianstephens/pokrok/internal/models"
	"github.com/julianstephens/pokrok/internal/stats"
	"github.com/julianstephens/pokrok/internal/utils"
)

// ListHabits returns active habits with their completion ledgers.
func (s *Service) ListHabits() ([]models.Habit, error) {
	habits, err := s.store.GetAllHabits(false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	return habits, nil
}

// ListAllHabits includes archived and, optionally, deleted habits.
func (s *Service) ListAllHabits(includeDeleted bool) ([]models.Habit, error) {
	return s.store.GetAllHabits(true, includeDeleted)
}

func (s *Service) GetHabit(id string) (models.Habit, error) {
	return s.store.GetHabit(id)
}

func (s *Service) CreateHabit(h models.Habit) (models.Habit, error) {
	h.ID = uuid.New().String()
	h.Name = strings.TrimSpace(h.Name)
	h.CreatedAt = s.now().UTC()
	h.ArchivedAt = nil
	h.DeletedAt = nil
	if err := normalizeHabit(&h); err != nil {
		return models.Habit{}, err
	}
	if err := s.check(&h); err != nil {
		return models.Habit{}, err
	}
	if err := s.store.AddHabit(h); err != nil {
		return models.Habit{}, fmt.Errorf("failed to add habit: %w", err)
	}
	logger.Debug("Habit created", "id", h.ID, "name", h.Name)
	return h, nil
}

// UpdateHabit replaces the editable fields of an existing habit. The ledger,
// creation time and lifecycle timestamps are kept.
func (s *Service) UpdateHabit(id string, in models.Habit) (models.Habit, error) {
	h, err := s.store.GetHabit(id)
	if err != nil {
		return models.Habit{}, err
	}
	h.Name = strings.TrimSpace(in.Name)
	h.Description = in.Description
	h.Frequency = in.Frequency
	h.SelectedDays = in.SelectedDays
	h.StartDate = in.StartDate
	h.AreaID = in.AreaID
	if err := normalizeHabit(&h); err != nil {
		return models.Habit{}, err
	}
	if err := s.check(&h); err != nil {
		return models.Habit{}, err
	}
	if err := s.store.UpdateHabit(h); err != nil {
		return models.Habit{}, fmt.Errorf("failed to update habit: %w", err)
	}
	return h, nil
}

func (s *Service) DeleteHabit(id string) error { return s.store.DeleteHabit(id) }

func (s *Service) RestoreHabit(id string) error { return s.store.RestoreHabit(id) }

func (s *Service) ArchiveHabit(id string) error { return s.store.ArchiveHabit(id) }

func (s *Service) UnarchiveHabit(id string) error { return s.store.UnarchiveHabit(id) }

// ToggleHabit flips (or, with completed set, forces) the completion of a
// habit on date and returns the full habits collection.
func (s *Service) ToggleHabit(habitID, date string, completed *bool) ([]models.Habit, error) {
	if strings.TrimSpace(habitID) == "" {
		return nil, apperrors.Invalid("habitId", "is required")
	}
	day, err := s.dateOrToday("date", date)
	if err != nil {
		return nil, err
	}
	key := utils.FormatDate(day)

	h, err := s.store.GetHabit(habitID)
	if err != nil {
		return nil, err
	}
	target := !h.IsCompletedOn(key)
	if completed != nil {
		target = *completed
	}
	if err := s.store.SetHabitCompletion(habitID, key, target); err != nil {
		return nil, fmt.Errorf("failed to set habit completion: %w", err)
	}

	if target {
		h.HabitCompletions[key] = true
	} else {
		delete(h.HabitCompletions, key)
	}
	if err := s.recordMaxStreak(h); err != nil {
		logger.Warn("Failed to persist max streak", "habit", habitID, "error", err)
	}

	return s.ListHabits()
}

// recordMaxStreak raises the persisted high-water mark when the recomputed
// streak exceeds it. The mark never decreases.
func (s *Service) recordMaxStreak(h models.Habit) error {
	today, err := s.Today()
	if err != nil {
		return err
	}
	st := stats.Compute(h, today)
	if h.MaxStreak != nil && *h.MaxStreak >= st.MaxStreak {
		return nil
	}
	best := st.MaxStreak
	h.MaxStreak = &best
	return s.store.UpdateHabit(h)
}

// HabitStats computes statistics up to today, or up to the given day.
func (s *Service) HabitStats(id, today string) (stats.HabitStats, error) {
	h, err := s.store.GetHabit(id)
	if err != nil {
		return stats.HabitStats{}, err
	}
	day, err := s.dateOrToday("today", today)
	if err != nil {
		return stats.HabitStats{}, err
	}
	return stats.Compute(h, day), nil
}

func normalizeHabit(h *models.Habit) error {
	if err := normalizeField("startDate", &h.StartDate); err != nil {
		return err
	}
	for i, tok := range h.SelectedDays {
		h.SelectedDays[i] = strings.ToLower(strings.TrimSpace(tok))
	}
	if h.SelectedDays == nil {
		h.SelectedDays = []string{}
	}
	completions := make(map[string]bool, len(h.HabitCompletions))
	for day, done := range h.HabitCompletions {
		if !done {
			continue
		}
		key, err := utils.NormalizeDate(day)
		if err != nil {
			return apperrors.Invalid("habitCompletions", "invalid date key %q", day)
		}
		completions[key] = true
	}
	h.HabitCompletions = completions
	return nil
}
