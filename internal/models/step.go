package models

import (
	"strings"
	"time"

	"github.com/julianstephens/pokrok/internal/constants"
	apperrors "github.com/julianstephens/pokrok/internal/errors"
)

// ChecklistItem is one entry of a step's ordered checklist.
type ChecklistItem struct {
	ID        string `json:"id"`
	Title     string `json:"title" validate:"required"`
	Completed bool   `json:"completed"`
}

// Step is a single task. A step with a frequency is a recurring template whose
// open occurrence is CurrentInstanceDate.
type Step struct {
	ID                       string                `json:"id"`
	Title                    string                `json:"title" validate:"required,max=300"`
	Description              string                `json:"description,omitempty"`
	Date                     string                `json:"date,omitempty"` // YYYY-MM-DD, empty for pure templates
	Completed                bool                  `json:"completed"`
	CompletedAt              *time.Time            `json:"completedAt,omitempty"`
	CompletionDate           string                `json:"completionDate,omitempty"` // civil day of CompletedAt
	IsImportant              bool                  `json:"isImportant"`
	IsUrgent                 bool                  `json:"isUrgent"`
	EstimatedMinutes         int                   `json:"estimatedMinutes,omitempty" validate:"gte=0"`
	Frequency                constants.Frequency   `json:"frequency,omitempty"`
	SelectedDays             []string              `json:"selectedDays,omitempty"`
	RecurringStartDate       string                `json:"recurringStartDate,omitempty"`
	RecurringEndDate         string                `json:"recurringEndDate,omitempty"`
	RecurringDisplayMode     constants.DisplayMode `json:"recurringDisplayMode,omitempty"`
	CurrentInstanceDate      string                `json:"currentInstanceDate,omitempty"`
	AreaID                   *string               `json:"areaId,omitempty"`
	GoalID                   *string               `json:"goalId,omitempty"`
	Checklist                []ChecklistItem       `json:"checklist,omitempty" validate:"dive"`
	RequireChecklistComplete bool                  `json:"requireChecklistComplete"`
	CreatedAt                time.Time             `json:"createdAt"`
	UpdatedAt                time.Time             `json:"updatedAt"`
}

// IsRecurring reports whether the step is a recurring template.
func (s Step) IsRecurring() bool {
	return s.Frequency != ""
}

// Recurrence returns the template's scheduling rule.
func (s Step) Recurrence() Recurrence {
	return Recurrence{
		Frequency:    s.Frequency,
		SelectedDays: s.SelectedDays,
		Anchor:       s.CreatedAt,
	}
}

// Priority ranks important+urgent > urgent > important > neither.
func (s Step) Priority() int {
	switch {
	case s.IsImportant && s.IsUrgent:
		return 3
	case s.IsUrgent:
		return 2
	case s.IsImportant:
		return 1
	default:
		return 0
	}
}

// OpenChecklistItems counts checklist entries that are not done.
func (s Step) OpenChecklistItems() int {
	open := 0
	for _, item := range s.Checklist {
		if !item.Completed {
			open++
		}
	}
	return open
}

// Validate checks title, dates and recurrence configuration.
func (s *Step) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return apperrors.Invalid("title", "is required")
	}
	for field, value := range map[string]string{
		"date":                s.Date,
		"recurringStartDate":  s.RecurringStartDate,
		"recurringEndDate":    s.RecurringEndDate,
		"currentInstanceDate": s.CurrentInstanceDate,
	} {
		if value != "" && !validDate(value) {
			return apperrors.Invalid(field, "invalid date %q (expected YYYY-MM-DD)", value)
		}
	}
	if s.EstimatedMinutes < 0 {
		return apperrors.Invalid("estimatedMinutes", "must not be negative")
	}
	if s.IsRecurring() {
		if err := ValidateSelectedDays(s.Frequency, s.SelectedDays); err != nil {
			return err
		}
		if s.RecurringStartDate != "" && s.RecurringEndDate != "" && s.RecurringEndDate < s.RecurringStartDate {
			return apperrors.Invalid("recurringEndDate", "must not precede recurringStartDate")
		}
		switch s.RecurringDisplayMode {
		case "", constants.DisplayNextOnly, constants.DisplayAll:
		default:
			return apperrors.Invalid("recurringDisplayMode", "unknown mode %q", s.RecurringDisplayMode)
		}
	}
	for i, item := range s.Checklist {
		if strings.TrimSpace(item.Title) == "" {
			return apperrors.Invalid("checklist", "item %d has no title", i)
		}
	}
	return nil
}
