// Package ui provides the windowed shell: a clause editor, a query input, the
// query result and a colored trace of the last evaluation.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/dustin/go-humanize"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/pql/pkg/render"
	"github.com/macropower/pql/pkg/session"
	"github.com/macropower/pql/pkg/trace"
)

// Status messages shown to the user.
const (
	MsgNoClauses  = "Please enter clauses in the text area."
	MsgNoQuery    = "Please enter a query."
	MsgLoaded     = "File loaded successfully."
	MsgSaved      = "File saved successfully."
	MsgCopied     = "Trace copied to clipboard."
	MsgEmptyTrace = "Nothing to copy."
)

// Pane identifies the focused widget.
type Pane int

const (
	PaneEditor Pane = iota
	PaneQuery
	PaneTrace
)

func (p Pane) String() string {
	return map[Pane]string{
		PaneEditor: "editor",
		PaneQuery:  "query",
		PaneTrace:  "trace",
	}[p]
}

type promptState int

const (
	promptNone promptState = iota
	promptOpen
	promptSave
)

type (
	fileLoadedMsg struct {
		path string
		text string
		size int64
	}
	fileSavedMsg struct {
		path string
		size int64
	}
	fileErrMsg struct {
		err  error
		save bool
	}
)

// Option configures a [Model].
type Option func(m *Model)

// WithFile loads the file at path into the editor when the program starts.
func WithFile(path string) Option {
	return func(m *Model) {
		m.file = path
	}
}

// WithStyles sets the styles used for results and trace lines.
func WithStyles(s *render.Styles) Option {
	return func(m *Model) {
		m.styles = s
	}
}

// WithTrace selects the trace events shown, and whether they are indented by
// depth. A nil filter shows all events.
func WithTrace(f *trace.Filter, indent bool) Option {
	return func(m *Model) {
		m.filter = f
		m.indent = indent
	}
}

// WithClipboard replaces the function used to copy the trace.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		m.copy = write
	}
}

// Model is the Bubble Tea model of the windowed shell.
type Model struct {
	ctx      context.Context
	sess     *session.Session
	styles   *render.Styles
	kb       *KeyBinds
	filter   *trace.Filter
	copy     func(string) error
	result   *bool
	status   *statusBar
	file     string
	events   []trace.Event
	editor   textarea.Model
	query    textinput.Model
	path     textinput.Model
	trace    viewport.Model
	help     help.Model
	fileSize int64
	focus    Pane
	prompt   promptState
	width    int
	height   int
	indent   bool
}

// New creates a [Model] evaluating queries with sess. The context is passed
// to every query.
func New(ctx context.Context, cfg *Config, sess *session.Session, opts ...Option) *Model {
	if cfg == nil {
		cfg = &Config{}
	}

	cfg.EnsureDefaults()

	m := &Model{
		ctx:    ctx,
		sess:   sess,
		kb:     cfg.KeyBinds,
		copy:   clipboard.WriteAll,
		indent: true,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.styles == nil {
		m.styles = render.NewStyles(nil)
	}

	m.status = &statusBar{styles: m.styles}

	m.editor = textarea.New()
	m.editor.Placeholder = "likes(mary, wine).\nhappy(mary) :- likes(mary, wine)."
	m.editor.CharLimit = 0
	m.editor.MaxHeight = 0
	m.editor.Focus()

	m.query = textinput.New()
	m.query.Prompt = "?- "
	m.query.Placeholder = "happy(mary)"

	m.path = textinput.New()
	m.path.Prompt = "path: "

	m.trace = viewport.New(0, 0)
	m.help = help.New()

	return m
}

// NewProgram returns a new Tea program running a [Model].
func NewProgram(ctx context.Context, cfg *Config, sess *session.Session, opts ...Option) *tea.Program {
	slog.Debug("starting pql ui")

	m := New(ctx, cfg, sess, opts...)

	return tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.file != "" {
		cmds = append(cmds, loadFile(m.file))
	}

	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

		return m, nil

	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m, m.updatePrompt(msg)
		}

		if cmd, ok := m.handleGlobalKeys(msg); ok {
			return m, cmd
		}

	case fileLoadedMsg:
		m.file = msg.path
		m.fileSize = msg.size
		m.editor.SetValue(msg.text)
		m.query.SetValue("")
		m.clearResult()

		return m, m.status.send(MsgLoaded, statusSuccess)

	case fileSavedMsg:
		m.file = msg.path
		m.fileSize = msg.size

		return m, m.status.send(MsgSaved, statusSuccess)

	case fileErrMsg:
		format := "Error opening file: %v"
		if msg.save {
			format = "Error saving file: %v"
		}

		return m, m.status.send(fmt.Sprintf(format, msg.err), statusError)

	case statusMessageTimeoutMsg:
		m.status.clear()

		return m, nil
	}

	return m, m.updateFocused(msg)
}

func (m *Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case m.kb.Quit.MatchMsg(msg):
		return tea.Quit, true

	case m.kb.Run.MatchMsg(msg):
		return m.run(), true

	case m.kb.Open.MatchMsg(msg):
		return m.openPrompt(promptOpen), true

	case m.kb.Save.MatchMsg(msg):
		return m.openPrompt(promptSave), true

	case m.kb.Copy.MatchMsg(msg):
		return m.copyTrace(), true

	case m.kb.Focus.MatchMsg(msg):
		return m.setFocus((m.focus + 1) % 3), true

	case m.kb.Help.MatchMsg(msg):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()

		return nil, true

	case m.focus == PaneQuery && msg.Type == tea.KeyEnter:
		return m.run(), true
	}

	return nil, false
}

func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	switch m.focus {
	case PaneEditor:
		m.editor, cmd = m.editor.Update(msg)
	case PaneQuery:
		m.query, cmd = m.query.Update(msg)
	case PaneTrace:
		m.trace, cmd = m.trace.Update(msg)
	}

	return cmd
}

// Focus returns the focused pane.
func (m *Model) Focus() Pane {
	return m.focus
}

func (m *Model) setFocus(p Pane) tea.Cmd {
	m.focus = p
	m.editor.Blur()
	m.query.Blur()

	switch p {
	case PaneEditor:
		return m.editor.Focus()
	case PaneQuery:
		return m.query.Focus()
	}

	return nil
}

// run reloads the knowledge base from the editor and evaluates the query.
func (m *Model) run() tea.Cmd {
	text := strings.TrimSpace(m.editor.Value())
	if text == "" {
		return m.status.send(MsgNoClauses, statusError)
	}

	q := strings.TrimSpace(m.query.Value())
	if q == "" {
		return m.status.send(MsgNoQuery, statusError)
	}

	m.sess.Consult(text)

	res := m.sess.Query(m.ctx, q)

	m.result = &res.Value
	m.events = res.Events
	m.refreshTrace()
	m.status.clear()

	return nil
}

func (m *Model) clearResult() {
	m.result = nil
	m.events = nil
	m.refreshTrace()
}

func (m *Model) refreshTrace() {
	content := m.styles.Trace(m.events, m.filter, m.indent)
	m.trace.SetContent(render.Wrap(content, m.trace.Width))
	m.trace.GotoTop()
}

func (m *Model) copyTrace() tea.Cmd {
	events := m.filter.Apply(m.events)
	if len(events) == 0 {
		return m.status.send(MsgEmptyTrace, statusNormal)
	}

	lines := make([]string, 0, len(events))
	for _, e := range events {
		if m.indent {
			lines = append(lines, e.Indented())
		} else {
			lines = append(lines, e.String())
		}
	}

	if err := m.copy(strings.Join(lines, "\n")); err != nil {
		return m.status.send(fmt.Sprintf("Error copying trace: %v", err), statusError)
	}

	return m.status.send(MsgCopied, statusSuccess)
}

func (m *Model) openPrompt(p promptState) tea.Cmd {
	m.prompt = p
	m.path.SetValue(m.file)
	m.path.CursorEnd()
	m.editor.Blur()
	m.query.Blur()

	return m.path.Focus()
}

func (m *Model) closePrompt() tea.Cmd {
	m.prompt = promptNone
	m.path.Blur()

	return m.setFocus(m.focus)
}

func (m *Model) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		return m.closePrompt()

	case tea.KeyEnter:
		path := strings.TrimSpace(m.path.Value())
		p := m.prompt
		focus := m.closePrompt()

		if path == "" {
			return focus
		}

		if p == promptSave {
			return tea.Batch(focus, saveFile(path, m.editor.Value()))
		}

		return tea.Batch(focus, loadFile(path))
	}

	var cmd tea.Cmd

	m.path, cmd = m.path.Update(msg)

	return cmd
}

// loadFile reads the raw file text for the editor.
func loadFile(path string) tea.Cmd {
	return func() tea.Msg {
		b, err := os.ReadFile(path) //nolint:gosec // User-selected file.
		if err != nil {
			return fileErrMsg{err: err}
		}

		slog.Debug("file opened", slog.String("path", path), slog.String("size", humanize.Bytes(uint64(len(b)))))

		return fileLoadedMsg{path: path, text: string(b), size: int64(len(b))}
	}
}

// saveFile writes the raw editor text.
func saveFile(path, text string) tea.Cmd {
	return func() tea.Msg {
		err := os.WriteFile(path, []byte(text), 0o600)
		if err != nil {
			return fileErrMsg{err: err, save: true}
		}

		slog.Debug("file saved", slog.String("path", path), slog.String("size", humanize.Bytes(uint64(len(text)))))

		return fileSavedMsg{path: path, size: int64(len(text))}
	}
}

// fileInfo describes the current file for the status bar.
func (m *Model) fileInfo() string {
	if m.file == "" {
		return "untitled"
	}

	return fmt.Sprintf("%s · %s", filepath.Base(m.file), humanize.Bytes(uint64(max(0, m.fileSize))))
}
