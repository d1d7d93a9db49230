package models

import (
	"time"

	"github.com/julianstephens/pokrok/internal/constants"
)

// DailyReview records that the user reviewed a given day.
type DailyReview struct {
	ID        string    `json:"id"`
	Date      string    `json:"date" validate:"required"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Workflow is a pending prompt delivered to clients by polling.
type Workflow struct {
	Type    constants.WorkflowType `json:"type"`
	Date    string                 `json:"date"`
	Message string                 `json:"message"`
}
