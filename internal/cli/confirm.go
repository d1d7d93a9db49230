package cli

import "github.com/charmbracelet/huh"

// HuhConfirm shows an interactive yes/no form. It defaults to no.
func HuhConfirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}
