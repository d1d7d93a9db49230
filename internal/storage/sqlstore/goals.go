package sqlstore

import (
	"database/sql"
	"fmt"

	"github.com/julianstephens/pokrok/internal/constants"
	"github.com/julianstephens/pokrok/internal/models"
)

const goalColumns = "id, title, description, target_date, start_date, status, area_id"

func (s *Store) AddGoal(goal models.Goal) error {
	return s.UpdateGoal(goal)
}

func (s *Store) GetGoal(id string) (models.Goal, error) {
	g, err := scanGoal(s.queryRow("SELECT "+goalColumns+" FROM goals WHERE id = ?", id))
	if err != nil {
		return models.Goal{}, notFound(err, "goal", id)
	}
	return g, nil
}

func (s *Store) GetGoals() ([]models.Goal, error) {
	rows, err := s.query("SELECT " + goalColumns + " FROM goals ORDER BY title")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := []models.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *Store) UpdateGoal(goal models.Goal) error {
	_, err := s.exec(`
		INSERT INTO goals (`+goalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			target_date = excluded.target_date,
			start_date = excluded.start_date,
			status = excluded.status,
			area_id = excluded.area_id`,
		goal.ID, goal.Title, goal.Description, goal.TargetDate, goal.StartDate, string(goal.Status), nullString(goal.AreaID))
	if err != nil {
		return fmt.Errorf("failed to save goal %s: %w", goal.ID, err)
	}
	return nil
}

// DeleteGoal removes the goal. Steps keep existing with their goal cleared.
func (s *Store) DeleteGoal(id string) error {
	if _, err := s.exec("UPDATE steps SET goal_id = NULL WHERE goal_id = ?", id); err != nil {
		return fmt.Errorf("failed to detach steps from goal %s: %w", id, err)
	}
	return s.execOne("goal", id, "DELETE FROM goals WHERE id = ?", id)
}

func scanGoal(row scanner) (models.Goal, error) {
	var (
		g      models.Goal
		status string
		areaID sql.NullString
	)
	if err := row.Scan(&g.ID, &g.Title, &g.Description, &g.TargetDate, &g.StartDate, &status, &areaID); err != nil {
		return models.Goal{}, err
	}
	g.Status = constants.GoalStatus(status)
	g.AreaID = stringPtr(areaID)
	return g, nil
}
