package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/macropower/pql/pkg/render"
)

// StatusMessageTimeout is how long status messages are shown.
const StatusMessageTimeout = time.Second * 3

type statusStyle int

const (
	statusNormal statusStyle = iota
	statusSuccess
	statusError
)

type statusMessage struct {
	text  string
	style statusStyle
}

type statusMessageTimeoutMsg struct{}

type statusBar struct {
	timer   *time.Timer
	styles  *render.Styles
	message statusMessage
}

// send shows msg until [StatusMessageTimeout] elapses or another message
// replaces it.
func (s *statusBar) send(text string, style statusStyle) tea.Cmd {
	s.message = statusMessage{text: text, style: style}

	if s.timer != nil {
		s.timer.Stop()
	}

	s.timer = time.NewTimer(StatusMessageTimeout)

	return waitForStatusMessageTimeout(s.timer)
}

func (s *statusBar) clear() {
	s.message = statusMessage{}
}

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C

		return statusMessageTimeoutMsg{}
	}
}

// render draws the status line: the message on the left, info on the right.
func (s *statusBar) render(width int, info string) string {
	var msg string

	switch s.message.style {
	case statusSuccess:
		msg = s.styles.True.UnsetBold().Render(s.message.text)
	case statusError:
		msg = s.styles.Error.Render(s.message.text)
	default:
		msg = s.message.text
	}

	info = s.styles.Subtle.Render(info)

	gap := width - lipgloss.Width(msg) - lipgloss.Width(info)
	if gap < 1 {
		return truncate.StringWithTail(msg, uint(max(0, width)), render.Ellipsis)
	}

	return msg + lipgloss.NewStyle().Width(gap).Render("") + info
}
