package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Lines used by everything except the editor and trace panes: the section
// titles, the query input, the result and the status bar.
const chromeHeight = 7

func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}

	m.help.Width = m.width
	m.editor.SetWidth(m.width)
	m.query.Width = max(1, m.width-lipgloss.Width(m.query.Prompt)-1)
	m.path.Width = max(1, m.width-lipgloss.Width(m.path.Prompt)-1)

	free := m.height - chromeHeight - lipgloss.Height(m.help.View(m.kb))

	editorHeight := max(3, free/2)
	m.editor.SetHeight(editorHeight)

	m.trace.Width = m.width
	m.trace.Height = max(1, free-editorHeight)

	m.refreshTrace()
}

func (m *Model) View() string {
	sections := []string{
		m.title("Clauses", PaneEditor),
		m.editor.View(),
		m.title("Query", PaneQuery),
		m.query.View(),
		m.resultView(),
		m.title("Trace", PaneTrace),
		m.trace.View(),
		m.statusView(),
		m.help.View(m.kb),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) title(name string, p Pane) string {
	if m.focus == p && m.prompt == promptNone {
		return m.styles.Title.Render("▌" + name)
	}

	return m.styles.Subtle.Render(" " + name)
}

func (m *Model) resultView() string {
	label := "Result: "
	if m.result == nil {
		return label + m.styles.Subtle.Render("-")
	}

	return label + m.styles.Result(*m.result)
}

func (m *Model) statusView() string {
	if m.prompt != promptNone {
		action := "open"
		if m.prompt == promptSave {
			action = "save"
		}

		return strings.TrimRight(m.styles.Subtle.Render(action+" ")+m.path.View(), " ")
	}

	return m.status.render(m.width, m.fileInfo())
}
