package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/macropower/pql/pkg/render"
)

// confirmReplace asks whether the existing file at path should be replaced.
// It returns false without asking when stdin is not a terminal.
func confirmReplace(ctx context.Context, path string, t *render.Theme) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, nil
	}

	var replace bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Configuration file exists").
				Description(fmt.Sprintf("%s\n\nReplace it with the defaults? The current file is backed up first.", path)).
				Affirmative("Replace").
				Negative("Keep").
				Value(&replace),
		),
	).
		WithShowHelp(false).
		WithTheme(huhTheme(t))

	err := form.RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("run replace prompt: %w", err)
	}

	return replace, nil
}

func huhTheme(t *render.Theme) *huh.Theme {
	accent := lipgloss.Color(t.Info)
	subtle := lipgloss.Color(t.Backtrack)

	h := huh.ThemeBase()

	h.Focused.Base = h.Focused.Base.BorderForeground(accent)
	h.Focused.Card = h.Focused.Base
	h.Focused.Title = h.Focused.Title.Foreground(accent).Bold(true)
	h.Focused.Description = h.Focused.Description.Foreground(subtle)
	h.Focused.ErrorIndicator = h.Focused.ErrorIndicator.Foreground(lipgloss.Color(t.Fail))
	h.Focused.ErrorMessage = h.Focused.ErrorMessage.Foreground(lipgloss.Color(t.Fail))
	h.Focused.FocusedButton = h.Focused.FocusedButton.
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color(t.Success))
	h.Focused.BlurredButton = h.Focused.BlurredButton.
		Foreground(lipgloss.Color("0")).
		Background(subtle)

	h.Blurred = h.Focused
	h.Blurred.Base = h.Focused.Base.BorderStyle(lipgloss.HiddenBorder())
	h.Blurred.Card = h.Blurred.Base

	return h
}
