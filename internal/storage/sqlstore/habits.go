package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/pokrok/internal/constants"
	"github.com/julianstephens/pokrok/internal/models"
)

const habitColumns = "id, name, description, frequency, selected_days, start_date, area_id, max_streak, created_at, archived_at, deleted_at"

// AddHabit inserts habit together with any completions it already carries.
func (s *Store) AddHabit(habit models.Habit) error {
	if err := s.UpdateHabit(habit); err != nil {
		return err
	}
	for day, done := range habit.HabitCompletions {
		if !done {
			continue
		}
		if err := s.SetHabitCompletion(habit.ID, day, true); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	row := s.queryRow("SELECT "+habitColumns+" FROM habits WHERE id = ? AND deleted_at IS NULL", id)
	h, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, notFound(err, "habit", id)
	}
	completions, err := s.habitCompletions(&h.ID)
	if err != nil {
		return models.Habit{}, err
	}
	h.HabitCompletions = completions[h.ID]
	if h.HabitCompletions == nil {
		h.HabitCompletions = map[string]bool{}
	}
	return h, nil
}

func (s *Store) GetAllHabits(includeArchived, includeDeleted bool) ([]models.Habit, error) {
	query := "SELECT " + habitColumns + " FROM habits WHERE 1=1"
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	if !includeArchived {
		query += " AND archived_at IS NULL"
	}
	query += " ORDER BY created_at, id"

	rows, err := s.query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	completions, err := s.habitCompletions(nil)
	if err != nil {
		return nil, err
	}
	for i := range habits {
		habits[i].HabitCompletions = completions[habits[i].ID]
		if habits[i].HabitCompletions == nil {
			habits[i].HabitCompletions = map[string]bool{}
		}
	}
	return habits, nil
}

// UpdateHabit upserts the habit row. Completions are managed by SetHabitCompletion.
func (s *Store) UpdateHabit(habit models.Habit) error {
	days, err := encodeJSON("selected_days", nonNilDays(habit.SelectedDays))
	if err != nil {
		return err
	}
	var maxStreak sql.NullInt64
	if habit.MaxStreak != nil {
		maxStreak = sql.NullInt64{Int64: int64(*habit.MaxStreak), Valid: true}
	}

	_, err = s.exec(`
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			frequency = excluded.frequency,
			selected_days = excluded.selected_days,
			start_date = excluded.start_date,
			area_id = excluded.area_id,
			max_streak = excluded.max_streak,
			archived_at = excluded.archived_at,
			deleted_at = excluded.deleted_at`,
		habit.ID, habit.Name, habit.Description, string(habit.Frequency), days, habit.StartDate,
		nullString(habit.AreaID), maxStreak, formatTime(habit.CreatedAt),
		nullTime(habit.ArchivedAt), nullTime(habit.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save habit %s: %w", habit.ID, err)
	}
	return nil
}

func (s *Store) ArchiveHabit(id string) error {
	return s.execOne("habit", id, "UPDATE habits SET archived_at = ? WHERE id = ? AND deleted_at IS NULL",
		formatTime(time.Now()), id)
}

func (s *Store) UnarchiveHabit(id string) error {
	return s.execOne("habit", id, "UPDATE habits SET archived_at = NULL WHERE id = ? AND deleted_at IS NULL", id)
}

func (s *Store) DeleteHabit(id string) error {
	return s.execOne("habit", id, "UPDATE habits SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		formatTime(time.Now()), id)
}

func (s *Store) RestoreHabit(id string) error {
	return s.execOne("habit", id, "UPDATE habits SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL", id)
}

func (s *Store) SetHabitCompletion(habitID, day string, completed bool) error {
	var err error
	if completed {
		_, err = s.exec("INSERT INTO habit_completions (habit_id, day) VALUES (?, ?) ON CONFLICT (habit_id, day) DO NOTHING", habitID, day)
	} else {
		_, err = s.exec("DELETE FROM habit_completions WHERE habit_id = ? AND day = ?", habitID, day)
	}
	if err != nil {
		return fmt.Errorf("failed to set completion for habit %s on %s: %w", habitID, day, err)
	}
	return nil
}

// habitCompletions loads completion ledgers keyed by habit id, for one habit
// when habitID is set.
func (s *Store) habitCompletions(habitID *string) (map[string]map[string]bool, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if habitID != nil {
		rows, err = s.query("SELECT habit_id, day FROM habit_completions WHERE habit_id = ?", *habitID)
	} else {
		rows, err = s.query("SELECT habit_id, day FROM habit_completions")
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]map[string]bool)
	for rows.Next() {
		var id, day string
		if err := rows.Scan(&id, &day); err != nil {
			return nil, err
		}
		if out[id] == nil {
			out[id] = make(map[string]bool)
		}
		out[id][day] = true
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(row scanner) (models.Habit, error) {
	var (
		h                             models.Habit
		frequency, days, createdAt    string
		areaID, archivedAt, deletedAt sql.NullString
		maxStreak                     sql.NullInt64
	)
	if err := row.Scan(&h.ID, &h.Name, &h.Description, &frequency, &days, &h.StartDate,
		&areaID, &maxStreak, &createdAt, &archivedAt, &deletedAt); err != nil {
		return models.Habit{}, err
	}

	h.Frequency = constants.Frequency(frequency)
	if err := decodeJSON("selected_days", days, &h.SelectedDays); err != nil {
		return models.Habit{}, err
	}
	h.AreaID = stringPtr(areaID)
	if maxStreak.Valid {
		v := int(maxStreak.Int64)
		h.MaxStreak = &v
	}

	var err error
	if h.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Habit{}, fmt.Errorf("habit %s: %w", h.ID, err)
	}
	if h.ArchivedAt, err = parseNullTime("archived_at", archivedAt); err != nil {
		return models.Habit{}, fmt.Errorf("habit %s: %w", h.ID, err)
	}
	if h.DeletedAt, err = parseNullTime("deleted_at", deletedAt); err != nil {
		return models.Habit{}, fmt.Errorf("habit %s: %w", h.ID, err)
	}
	return h, nil
}

func nonNilDays(days []string) []string {
	if days == nil {
		return []string{}
	}
	return days
}
