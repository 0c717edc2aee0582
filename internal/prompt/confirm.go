// Package prompt asks the user for confirmation on an interactive terminal.
package prompt

import (
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/conn-castle/capmigrate/internal/messages"
	"github.com/conn-castle/capmigrate/internal/terminal"
)

// ErrRequiresTerminal is returned when a prompt is needed but stdin or
// stdout is not a terminal.
var ErrRequiresTerminal = errors.New(messages.ConfirmRequiresInput)

var runFormFunc = func(form *huh.Form) error { return form.Run() }

// Confirmer renders yes/no prompts with charmbracelet/huh.
type Confirmer struct {
	isTerminal func() bool
}

// NewConfirmer returns a Confirmer using terminal.IsInteractive.
func NewConfirmer() *Confirmer {
	return &Confirmer{isTerminal: terminal.IsInteractive}
}

// Confirm asks title and reports the answer. "Yes" is preselected; aborting
// the form with Esc or Ctrl+C counts as "No".
func (c *Confirmer) Confirm(title string) (bool, error) {
	checker := c.isTerminal
	if checker == nil {
		checker = terminal.IsInteractive
	}
	if !checker() {
		return false, ErrRequiresTerminal
	}

	value := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative(messages.ConfirmAffirmative).
				Negative(messages.ConfirmNegative).
				Value(&value),
		),
	)
	form.WithProgramOptions(tea.WithOutput(os.Stderr))

	err := runFormFunc(form)
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return value, nil
}
