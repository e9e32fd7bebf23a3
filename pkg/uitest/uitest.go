package uitest

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/teatest"

	tea "github.com/charmbracelet/bubbletea"
)

// Size is a terminal size in cells.
type Size struct {
	Width  int
	Height int
}

// Standard is large enough to show every pane of the UI.
var Standard = Size{Width: 120, Height: 40}

// NewTestModel creates a new test model with the given terminal size.
func NewTestModel(tb testing.TB, m tea.Model, size Size) *teatest.TestModel {
	tb.Helper()

	return teatest.NewTestModel(
		tb, m,
		teatest.WithInitialTermSize(size.Width, size.Height),
	)
}

// WaitForText waits until the ANSI-stripped output contains text.
func WaitForText(tb testing.TB, r io.Reader, text string, opts ...teatest.WaitForOption) {
	tb.Helper()

	teatest.WaitFor(tb, r, func(b []byte) bool {
		return strings.Contains(ansi.Strip(string(b)), text)
	}, opts...)
}

// WaitForCapture waits until condition holds and returns the output that
// satisfied it.
func WaitForCapture(
	tb testing.TB,
	r io.Reader,
	condition func([]byte) bool,
	opts ...teatest.WaitForOption,
) string {
	tb.Helper()

	var captured []byte

	teatest.WaitFor(tb, r, func(b []byte) bool {
		if condition(b) {
			captured = make([]byte, len(b))
			copy(captured, b)

			return true
		}

		return false
	}, opts...)

	return string(captured)
}
