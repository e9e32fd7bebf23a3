package ui_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/pql/pkg/keys"
	"github.com/macropower/pql/pkg/render"
	"github.com/macropower/pql/pkg/session"
	"github.com/macropower/pql/pkg/ui"
	"github.com/macropower/pql/pkg/uitest"
)

func newModel(t *testing.T, opts ...ui.Option) (*ui.Model, *session.Session) {
	t.Helper()

	sess := session.New()
	m := ui.New(t.Context(), nil, sess, opts...)
	m.Update(tea.WindowSizeMsg{Width: uitest.Standard.Width, Height: uitest.Standard.Height})

	return m, sess
}

func typeText(m *ui.Model, s string) {
	for _, r := range s {
		if r == '\n' {
			m.Update(tea.KeyMsg{Type: tea.KeyEnter})

			continue
		}

		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func press(m *ui.Model, k tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: k})

	return cmd
}

func view(m *ui.Model) string {
	return ansi.Strip(m.View())
}

func TestConfig_EnsureDefaults(t *testing.T) {
	t.Parallel()

	cfg := &ui.Config{}
	cfg.EnsureDefaults()

	require.NotNil(t, cfg.KeyBinds)
	assert.True(t, cfg.KeyBinds.Run.Match("ctrl+r"))
	assert.True(t, cfg.KeyBinds.Quit.Match("esc"))
	assert.Equal(t, "ctrl+c", cfg.KeyBinds.Quit.String())
	require.NoError(t, cfg.Validate())
}

func TestConfig_KeepsCustomBinds(t *testing.T) {
	t.Parallel()

	run := keys.NewBind("", keys.New("f5"))
	cfg := &ui.Config{KeyBinds: &ui.KeyBinds{Run: &run}}
	cfg.EnsureDefaults()

	assert.True(t, cfg.KeyBinds.Run.Match("f5"))
	assert.False(t, cfg.KeyBinds.Run.Match("ctrl+r"))
	assert.Equal(t, "run query", cfg.KeyBinds.Run.Description)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	open := keys.NewBind("open file", keys.New("ctrl+r"))
	cfg := &ui.Config{KeyBinds: &ui.KeyBinds{Open: &open}}
	cfg.EnsureDefaults()

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate key binding "ctrl+r"`)
}

func TestKeyBinds_Help(t *testing.T) {
	t.Parallel()

	cfg := &ui.Config{}
	cfg.EnsureDefaults()

	short := cfg.KeyBinds.ShortHelp()
	require.Len(t, short, 4)
	assert.Equal(t, "run query", short[0].Help().Desc)

	var descs []string
	for _, col := range cfg.KeyBinds.FullHelp() {
		for _, b := range col {
			descs = append(descs, b.Help().Desc)
		}
	}

	assert.ElementsMatch(t, []string{
		"run query", "open file", "save file", "copy trace",
		"next pane", "toggle help", "quit",
	}, descs)
}

func TestModel_Run(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		clauses    string
		query      string
		wantResult string
		wantStatus string
	}{
		"fact": {
			clauses:    "a.",
			query:      "a",
			wantResult: "Result: true",
		},
		"rule": {
			clauses:    "a.\nb :- a.",
			query:      "?- b.",
			wantResult: "Result: true",
		},
		"unknown goal": {
			clauses:    "a.",
			query:      "c",
			wantResult: "Result: false",
		},
		"no clauses": {
			clauses:    "   ",
			query:      "a",
			wantResult: "Result: -",
			wantStatus: ui.MsgNoClauses,
		},
		"no query": {
			clauses:    "a.",
			query:      "  ",
			wantResult: "Result: -",
			wantStatus: ui.MsgNoQuery,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			m, _ := newModel(t)
			typeText(m, tc.clauses)
			press(m, tea.KeyTab)
			typeText(m, tc.query)
			press(m, tea.KeyCtrlR)

			out := view(m)
			assert.Contains(t, out, tc.wantResult)

			if tc.wantStatus != "" {
				assert.Contains(t, out, tc.wantStatus)
			}
		})
	}
}

func TestModel_RunReloadsKnowledgeBase(t *testing.T) {
	t.Parallel()

	m, sess := newModel(t)
	sess.Add("stale.")

	typeText(m, "a.\nb :- a.")
	press(m, tea.KeyTab)
	typeText(m, "b")
	press(m, tea.KeyEnter)

	assert.Contains(t, view(m), "Result: true")
	assert.Equal(t, []string{"a"}, sess.KnowledgeBase().Facts())
	assert.Equal(t, []string{"b :- a"}, sess.KnowledgeBase().Rules())
}

func TestModel_Trace(t *testing.T) {
	t.Parallel()

	m, _ := newModel(t)
	typeText(m, "a.\nb :- a.")
	press(m, tea.KeyTab)
	typeText(m, "b")
	press(m, tea.KeyCtrlR)

	out := view(m)
	assert.Contains(t, out, "evaluating: b")
	assert.Contains(t, out, "trying rule: b :- a")
	assert.Contains(t, out, "rule succeeded: b :- a")
}

func TestModel_Copy(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		err        error
		query      string
		wantStatus string
		wantCopied bool
	}{
		"copies trace": {
			query:      "a",
			wantStatus: ui.MsgCopied,
			wantCopied: true,
		},
		"empty trace": {
			wantStatus: ui.MsgEmptyTrace,
		},
		"clipboard error": {
			query:      "a",
			err:        errors.New("no clipboard"),
			wantStatus: "Error copying trace: no clipboard",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var copied string

			m, _ := newModel(t, ui.WithClipboard(func(s string) error {
				copied = s

				return tc.err
			}))

			if tc.query != "" {
				typeText(m, "a.")
				press(m, tea.KeyTab)
				typeText(m, tc.query)
				press(m, tea.KeyCtrlR)
			}

			press(m, tea.KeyCtrlY)

			assert.Contains(t, view(m), tc.wantStatus)

			if tc.wantCopied {
				assert.Equal(t, "[eval] evaluating: a\n[success] fact matched: a", copied)
			}
		})
	}
}

func TestModel_Focus(t *testing.T) {
	t.Parallel()

	m, _ := newModel(t)
	assert.Equal(t, ui.PaneEditor, m.Focus())

	press(m, tea.KeyTab)
	assert.Equal(t, ui.PaneQuery, m.Focus())

	press(m, tea.KeyTab)
	assert.Equal(t, ui.PaneTrace, m.Focus())

	press(m, tea.KeyShiftTab)
	assert.Equal(t, ui.PaneEditor, m.Focus())
}

func TestModel_Help(t *testing.T) {
	t.Parallel()

	m, _ := newModel(t)
	assert.NotContains(t, view(m), "save file")

	press(m, tea.KeyCtrlG)
	assert.Contains(t, view(m), "save file")

	press(m, tea.KeyCtrlG)
	assert.NotContains(t, view(m), "save file")
}

func TestModel_Quit(t *testing.T) {
	t.Parallel()

	for _, k := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		m, _ := newModel(t)

		cmd := press(m, k)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestModel_ResultStyle(t *testing.T) {
	uitest.SetupColorProfile()

	m, _ := newModel(t)
	typeText(m, "a.")
	press(m, tea.KeyTab)
	typeText(m, "a")
	press(m, tea.KeyCtrlR)

	uitest.AssertStyle(t, m.View(), "true", uitest.Style{
		Foreground: uitest.HexColor(render.DefaultTheme().Success),
		Bold:       true,
	})
}

func TestModel_OpenAndSave(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "birds.pl")
	dst := filepath.Join(dir, "copy.pl")
	text := "bird(tweety).\nflies(tweety) :- bird(tweety).\n"

	require.NoError(t, os.WriteFile(src, []byte(text), 0o600))

	m, _ := newModel(t, ui.WithFile(src))
	tm := uitest.NewTestModel(t, m, uitest.Standard)

	uitest.WaitForText(t, tm.Output(), ui.MsgLoaded, teatest.WithDuration(5*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlS})
	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlU})
	tm.Type(dst)
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	uitest.WaitForText(t, tm.Output(), ui.MsgSaved, teatest.WithDuration(5*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	tm.WaitFinished(t, teatest.WithFinalTimeout(5*time.Second))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, text, string(got))
}

func TestModel_OpenMissing(t *testing.T) {
	t.Parallel()

	m, _ := newModel(t, ui.WithFile(filepath.Join(t.TempDir(), "missing.pl")))
	tm := uitest.NewTestModel(t, m, uitest.Standard)

	uitest.WaitForText(t, tm.Output(), "Error opening file", teatest.WithDuration(5*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	tm.WaitFinished(t, teatest.WithFinalTimeout(5*time.Second))
}

func TestModel_OpenClearsResult(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "kb.pl")
	require.NoError(t, os.WriteFile(path, []byte("c."), 0o600))

	m, _ := newModel(t)
	typeText(m, "a.")
	press(m, tea.KeyTab)
	typeText(m, "a")
	press(m, tea.KeyCtrlR)
	require.Contains(t, view(m), "Result: true")

	tm := uitest.NewTestModel(t, m, uitest.Standard)

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlO})
	tm.Type(path)
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	out := uitest.WaitForCapture(t, tm.Output(), func(b []byte) bool {
		return strings.Contains(ansi.Strip(string(b)), ui.MsgLoaded)
	}, teatest.WithDuration(5*time.Second))
	assert.Contains(t, ansi.Strip(out), "Result: -")

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

	final, ok := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second)).(*ui.Model)
	require.True(t, ok)

	got := view(final)
	assert.Contains(t, got, "Result: -")
	assert.NotContains(t, got, "evaluating: a")
}
