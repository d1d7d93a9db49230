package models

import (
	"strings"

	"github.com/julianstephens/pokrok/internal/constants"
	apperrors "github.com/julianstephens/pokrok/internal/errors"
)

type Goal struct {
	ID          string               `json:"id"`
	Title       string               `json:"title" validate:"required,max=200"`
	Description string               `json:"description,omitempty"`
	TargetDate  string               `json:"targetDate,omitempty"`
	StartDate   string               `json:"startDate,omitempty"`
	Status      constants.GoalStatus `json:"status"`
	AreaID      *string              `json:"areaId,omitempty"`
}

func (g *Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return apperrors.Invalid("title", "is required")
	}
	switch g.Status {
	case constants.GoalActive, constants.GoalPaused, constants.GoalCompleted:
	default:
		return apperrors.Invalid("status", "unknown status %q", g.Status)
	}
	if g.TargetDate != "" && !validDate(g.TargetDate) {
		return apperrors.Invalid("targetDate", "invalid date %q", g.TargetDate)
	}
	if g.StartDate != "" && !validDate(g.StartDate) {
		return apperrors.Invalid("startDate", "invalid date %q", g.StartDate)
	}
	return nil
}
