package ui

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/vbxproj/vbxproj/internal/project"
)

// Confirm returns the yes/no prompt used by the project version gate.
// assumeYes answers every question with yes without prompting, which is
// what --yes selects for scripts.
func Confirm(assumeYes bool, opts ...survey.AskOpt) project.ConfirmFunc {
	if assumeYes {
		return func(string) (bool, error) { return true, nil }
	}
	return func(message string) (bool, error) {
		var ok bool
		prompt := &survey.Confirm{
			Message: message,
			Default: false,
		}
		if err := survey.AskOne(prompt, &ok, opts...); err != nil {
			// Ctrl-C is a plain "no".
			if errors.Is(err, terminal.InterruptErr) {
				return false, nil
			}
			return false, fmt.Errorf("prompt failed: %w", err)
		}
		return ok, nil
	}
}

// PausingConfirm stops the spinner while confirm shows its prompt and
// restarts it afterwards.
func PausingConfirm(s *Spinner, confirm project.ConfirmFunc) project.ConfirmFunc {
	return func(message string) (bool, error) {
		s.Stop()
		defer s.Start()
		return confirm(message)
	}
}
