package models

import (
	"strings"
	"time"

	"github.com/julianstephens/pokrok/internal/constants"
	apperrors "github.com/julianstephens/pokrok/internal/errors"
)

// Habit represents a recurring practice with a sparse completion ledger.
type Habit struct {
	ID           string              `json:"id"`
	Name         string              `json:"name" validate:"required,max=200"`
	Description  string              `json:"description,omitempty"`
	Frequency    constants.Frequency `json:"frequency" validate:"required"`
	SelectedDays []string            `json:"selectedDays"`
	StartDate    string              `json:"startDate,omitempty"` // YYYY-MM-DD
	AreaID       *string             `json:"areaId,omitempty"`
	// HabitCompletions maps YYYY-MM-DD to true. Absent keys are not completed.
	HabitCompletions map[string]bool `json:"habitCompletions"`
	MaxStreak        *int            `json:"maxStreak,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	ArchivedAt       *time.Time      `json:"archivedAt,omitempty"`
	DeletedAt        *time.Time      `json:"deletedAt,omitempty"`
}

// Recurrence returns the habit's scheduling rule anchored at its creation time.
func (h Habit) Recurrence() Recurrence {
	return Recurrence{
		Frequency:    h.Frequency,
		SelectedDays: h.SelectedDays,
		Anchor:       h.CreatedAt,
	}
}

// IsCompletedOn reports whether the ledger records a completion for day.
func (h Habit) IsCompletedOn(day string) bool {
	return h.HabitCompletions[day]
}

// Validate checks the fields that struct tags cannot express.
func (h *Habit) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return apperrors.Invalid("name", "is required")
	}
	if err := ValidateSelectedDays(h.Frequency, h.SelectedDays); err != nil {
		return err
	}
	if h.StartDate != "" && !validDate(h.StartDate) {
		return apperrors.Invalid("startDate", "invalid date %q (expected YYYY-MM-DD)", h.StartDate)
	}
	for day := range h.HabitCompletions {
		if !validDate(day) {
			return apperrors.Invalid("habitCompletions", "invalid date key %q", day)
		}
	}
	return nil
}
