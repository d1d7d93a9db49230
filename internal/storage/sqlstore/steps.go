package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/julianstephens/pokrok/internal/constants"
	"github.com/julianstephens/pokrok/internal/models"
	"github.com/julianstephens/pokrok/internal/storage"
)

const stepColumns = `id, title, description, date, completed, completed_at, is_important, is_urgent,
	estimated_minutes, frequency, selected_days, recurring_start_date, recurring_end_date,
	recurring_display_mode, current_instance_date, area_id, goal_id, checklist,
	require_checklist_complete, created_at, updated_at, completion_date`

func (s *Store) AddStep(step models.Step) error {
	return s.UpdateStep(step)
}

func (s *Store) GetStep(id string) (models.Step, error) {
	step, err := scanStep(s.queryRow("SELECT "+stepColumns+" FROM steps WHERE id = ?", id))
	if err != nil {
		return models.Step{}, notFound(err, "step", id)
	}
	return step, nil
}

func (s *Store) GetSteps(filter storage.StepFilter) ([]models.Step, error) {
	var (
		dated []string
		scope []string
		args  []any
	)
	if filter.Date != "" {
		dated = append(dated, "date = ?")
		args = append(args, filter.Date)
	}
	if filter.From != "" {
		dated = append(dated, "date >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		dated = append(dated, "date <= ?")
		args = append(args, filter.To)
	}

	query := "SELECT " + stepColumns + " FROM steps WHERE 1=1"
	if len(dated) > 0 {
		clause := "(" + strings.Join(dated, " AND ") + ")"
		if filter.IncludeTemplates {
			clause = "(" + clause + " OR frequency <> '')"
		}
		query += " AND " + clause
	}
	if filter.AreaID != "" {
		scope = append(scope, "area_id = ?")
		args = append(args, filter.AreaID)
	}
	if filter.GoalID != "" {
		scope = append(scope, "goal_id = ?")
		args = append(args, filter.GoalID)
	}
	for _, c := range scope {
		query += " AND " + c
	}
	query += " ORDER BY date, created_at, id"

	rows, err := s.query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	steps := []models.Step{}
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

func (s *Store) UpdateStep(step models.Step) error {
	days, err := encodeJSON("selected_days", nonNilDays(step.SelectedDays))
	if err != nil {
		return err
	}
	checklist := step.Checklist
	if checklist == nil {
		checklist = []models.ChecklistItem{}
	}
	items, err := encodeJSON("checklist", checklist)
	if err != nil {
		return err
	}

	_, err = s.exec(`
		INSERT INTO steps (`+stepColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			date = excluded.date,
			completed = excluded.completed,
			completed_at = excluded.completed_at,
			is_important = excluded.is_important,
			is_urgent = excluded.is_urgent,
			estimated_minutes = excluded.estimated_minutes,
			frequency = excluded.frequency,
			selected_days = excluded.selected_days,
			recurring_start_date = excluded.recurring_start_date,
			recurring_end_date = excluded.recurring_end_date,
			recurring_display_mode = excluded.recurring_display_mode,
			current_instance_date = excluded.current_instance_date,
			area_id = excluded.area_id,
			goal_id = excluded.goal_id,
			checklist = excluded.checklist,
			require_checklist_complete = excluded.require_checklist_complete,
			updated_at = excluded.updated_at,
			completion_date = excluded.completion_date`,
		step.ID, step.Title, step.Description, step.Date, step.Completed, nullTime(step.CompletedAt),
		step.IsImportant, step.IsUrgent, step.EstimatedMinutes, string(step.Frequency), days,
		step.RecurringStartDate, step.RecurringEndDate, string(step.RecurringDisplayMode),
		step.CurrentInstanceDate, nullString(step.AreaID), nullString(step.GoalID), items,
		step.RequireChecklistComplete, formatTime(step.CreatedAt), formatTime(step.UpdatedAt),
		step.CompletionDate,
	)
	if err != nil {
		return fmt.Errorf("failed to save step %s: %w", step.ID, err)
	}
	return nil
}

func (s *Store) DeleteStep(id string) error {
	return s.execOne("step", id, "DELETE FROM steps WHERE id = ?", id)
}

func (s *Store) DeleteSteps(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err := s.exec("DELETE FROM steps WHERE id IN ("+placeholders+")", args...); err != nil {
		return fmt.Errorf("failed to delete %d step(s): %w", len(ids), err)
	}
	return nil
}

func scanStep(row scanner) (models.Step, error) {
	var (
		st                           models.Step
		frequency, days, mode, items string
		createdAt, updatedAt         string
		completedAt, areaID, goalID  sql.NullString
	)
	if err := row.Scan(&st.ID, &st.Title, &st.Description, &st.Date, &st.Completed, &completedAt,
		&st.IsImportant, &st.IsUrgent, &st.EstimatedMinutes, &frequency, &days,
		&st.RecurringStartDate, &st.RecurringEndDate, &mode, &st.CurrentInstanceDate,
		&areaID, &goalID, &items, &st.RequireChecklistComplete, &createdAt, &updatedAt, &st.CompletionDate); err != nil {
		return models.Step{}, err
	}

	st.Frequency = constants.Frequency(frequency)
	st.RecurringDisplayMode = constants.DisplayMode(mode)
	st.AreaID = stringPtr(areaID)
	st.GoalID = stringPtr(goalID)
	if err := decodeJSON("selected_days", days, &st.SelectedDays); err != nil {
		return models.Step{}, err
	}
	if len(st.SelectedDays) == 0 {
		st.SelectedDays = nil
	}
	if err := decodeJSON("checklist", items, &st.Checklist); err != nil {
		return models.Step{}, err
	}
	if len(st.Checklist) == 0 {
		st.Checklist = nil
	}

	var err error
	if st.CompletedAt, err = parseNullTime("completed_at", completedAt); err != nil {
		return models.Step{}, fmt.Errorf("step %s: %w", st.ID, err)
	}
	if st.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Step{}, fmt.Errorf("step %s: %w", st.ID, err)
	}
	if st.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.Step{}, fmt.Errorf("step %s: %w", st.ID, err)
	}
	return st, nil
}
