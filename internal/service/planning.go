package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/pokrok/internal/constants"
	"github.com/julianstephens/pokrok/internal/models"
)

func (s *Service) ListAreas() ([]models.Area, error) { return s.store.GetAreas() }

func (s *Service) GetArea(id string) (models.Area, error) { return s.store.GetArea(id) }

func (s *Service) CreateArea(area models.Area) (models.Area, error) {
	area.ID = uuid.New().String()
	area.Name = strings.TrimSpace(area.Name)
	if err := s.check(&area); err != nil {
		return models.Area{}, err
	}
	if err := s.store.AddArea(area); err != nil {
		return models.Area{}, fmt.Errorf("failed to add area: %w", err)
	}
	return area, nil
}

func (s *Service) UpdateArea(id string, in models.Area) (models.Area, error) {
	if _, err := s.store.GetArea(id); err != nil {
		return models.Area{}, err
	}
	in.ID = id
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(&in); err != nil {
		return models.Area{}, err
	}
	if err := s.store.UpdateArea(in); err != nil {
		return models.Area{}, fmt.Errorf("failed to update area: %w", err)
	}
	return in, nil
}

// DeleteArea removes the area and detaches everything that referenced it.
func (s *Service) DeleteArea(id string) error { return s.store.DeleteArea(id) }

func (s *Service) ListGoals() ([]models.Goal, error) { return s.store.GetGoals() }

func (s *Service) GetGoal(id string) (models.Goal, error) { return s.store.GetGoal(id) }

func (s *Service) CreateGoal(goal models.Goal) (models.Goal, error) {
	goal.ID = uuid.New().String()
	goal.Title = strings.TrimSpace(goal.Title)
	if goal.Status == "" {
		goal.Status = constants.GoalActive
	}
	if err := normalizeGoal(&goal); err != nil {
		return models.Goal{}, err
	}
	if err := s.check(&goal); err != nil {
		return models.Goal{}, err
	}
	if err := s.store.AddGoal(goal); err != nil {
		return models.Goal{}, fmt.Errorf("failed to add goal: %w", err)
	}
	return goal, nil
}

func (s *Service) UpdateGoal(id string, in models.Goal) (models.Goal, error) {
	existing, err := s.store.GetGoal(id)
	if err != nil {
		return models.Goal{}, err
	}
	in.ID = id
	in.Title = strings.TrimSpace(in.Title)
	if in.Status == "" {
		in.Status = existing.Status
	}
	if err := normalizeGoal(&in); err != nil {
		return models.Goal{}, err
	}
	if err := s.check(&in); err != nil {
		return models.Goal{}, err
	}
	if err := s.store.UpdateGoal(in); err != nil {
		return models.Goal{}, fmt.Errorf("failed to update goal: %w", err)
	}
	return in, nil
}

// SetGoalStatus changes only the status of goal id.
func (s *Service) SetGoalStatus(id string, status constants.GoalStatus) (models.Goal, error) {
	goal, err := s.store.GetGoal(id)
	if err != nil {
		return models.Goal{}, err
	}
	goal.Status = status
	if err := s.check(&goal); err != nil {
		return models.Goal{}, err
	}
	if err := s.store.UpdateGoal(goal); err != nil {
		return models.Goal{}, fmt.Errorf("failed to update goal: %w", err)
	}
	return goal, nil
}

func (s *Service) DeleteGoal(id string) error { return s.store.DeleteGoal(id) }

func normalizeGoal(g *models.Goal) error {
	if err := normalizeField("targetDate", &g.TargetDate); err != nil {
		return err
	}
	return normalizeField("startDate", &g.StartDate)
}
