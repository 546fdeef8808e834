package cli

import (
	"github.com/charmbracelet/huh"
)

// confirmFunc asks a yes/no question on the terminal. Tests replace it.
var confirmFunc = func(title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(huh.ThemeBase()).Run()
	return ok, err
}
