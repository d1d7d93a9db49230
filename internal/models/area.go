package models

import (
	"regexp"
	"strings"

	apperrors "github.com/julianstephens/pokrok/internal/errors"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}){1,2}$`)

// Area is a user-defined grouping for goals, steps and habits.
type Area struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Order       int    `json:"order"`
}

func (a *Area) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return apperrors.Invalid("name", "is required")
	}
	if a.Color != "" && !hexColor.MatchString(a.Color) {
		return apperrors.Invalid("color", "invalid hex color %q", a.Color)
	}
	return nil
}
