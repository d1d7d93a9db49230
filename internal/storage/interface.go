package storage

import "github.com/julianstephens/pokrok/internal/models"

// StepFilter narrows GetSteps. Zero fields do not filter.
type StepFilter struct {
	Date   string // exact YYYY-MM-DD
	From   string // inclusive
	To     string // inclusive
	AreaID string
	GoalID string
	// IncludeTemplates adds recurring templates regardless of the date filters.
	IncludeTemplates bool
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	Ping() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Habits
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetAllHabits(includeArchived, includeDeleted bool) ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	ArchiveHabit(id string) error
	UnarchiveHabit(id string) error
	DeleteHabit(id string) error
	RestoreHabit(id string) error
	// SetHabitCompletion records or clears the completion of habitID on day.
	SetHabitCompletion(habitID, day string, completed bool) error

	// Steps
	AddStep(models.Step) error
	GetStep(id string) (models.Step, error)
	GetSteps(StepFilter) ([]models.Step, error)
	UpdateStep(models.Step) error
	DeleteStep(id string) error
	DeleteSteps(ids []string) error

	// Areas
	AddArea(models.Area) error
	GetArea(id string) (models.Area, error)
	GetAreas() ([]models.Area, error)
	UpdateArea(models.Area) error
	DeleteArea(id string) error

	// Goals
	AddGoal(models.Goal) error
	GetGoal(id string) (models.Goal, error)
	GetGoals() ([]models.Goal, error)
	UpdateGoal(models.Goal) error
	DeleteGoal(id string) error

	// Daily reviews
	AddDailyReview(models.DailyReview) error
	GetDailyReview(date string) (models.DailyReview, error)

	// Utils
	GetConfigPath() string
}

// Migrator is implemented by stores backed by the embedded schema.
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
	SchemaVersion() (current, latest int, err error)
}
