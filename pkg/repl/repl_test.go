package repl_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/pql/pkg/repl"
	"github.com/macropower/pql/pkg/session"
)

type step struct {
	err  error
	line string
}

type fakeReader struct {
	steps  []step
	closed bool
}

func lines(ls ...string) *fakeReader {
	f := &fakeReader{}
	for _, l := range ls {
		f.steps = append(f.steps, step{line: l})
	}

	return f
}

func (f *fakeReader) Readline() (string, error) {
	if len(f.steps) == 0 {
		return "", io.EOF
	}

	s := f.steps[0]
	f.steps = f.steps[1:]

	return s.line, s.err
}

func (f *fakeReader) Close() error {
	f.closed = true

	return nil
}

// run executes the script and returns the output after the banner.
func run(t *testing.T, sess *session.Session, in *fakeReader, opts ...repl.Option) string {
	t.Helper()

	out := &bytes.Buffer{}
	err := repl.New(sess, in, out, opts...).Run(t.Context())
	require.NoError(t, err)
	assert.True(t, in.closed)

	_, after, found := strings.Cut(ansi.Strip(out.String()), "8. Exit: exit\n\n")
	require.True(t, found, "banner missing from %q", out.String())

	return after
}

func TestRun_Session(t *testing.T) {
	t.Parallel()

	sess := session.New()
	got := run(t, sess, lines(
		"bird(tweety).",
		"flies(X) :- bird(X).",
		"?- bird(tweety).",
		"?- flies(tweety).",
		"show",
		"exit",
		"never(reached).",
	))

	want := "Clause added.\n" +
		"Clause added.\n" +
		"true\n" +
		"false\n" +
		"\n=== Knowledge Base ===\n" +
		"Facts:\n" +
		"bird(tweety).\n" +
		"\nRules:\n" +
		"flies(X) :- bird(X).\n" +
		"=========================\n\n"

	assert.Equal(t, want, got)
	assert.Equal(t, 2, sess.KnowledgeBase().Len())
}

func TestExec(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		setup    func(sess *session.Session)
		line     string
		want     string
		err      error
		wantSize int
	}{
		"clause": {
			line:     "likes(mary, wine).",
			want:     "Clause added.\n",
			wantSize: 1,
		},
		"clause starting with a command word": {
			line:     "load(truck).",
			want:     "Clause added.\n",
			wantSize: 1,
		},
		"blank line": {
			line: "   ",
		},
		"query true": {
			setup: func(sess *session.Session) { sess.Tell("a.") },
			line:  "?- a.",
			want:  "true\n",
		},
		"query without space": {
			setup: func(sess *session.Session) { sess.Tell("a.") },
			line:  "?-a",
			want:  "true\n",
		},
		"query false": {
			line: "?- a.",
			want: "false\n",
		},
		"clear": {
			setup: func(sess *session.Session) { sess.Tell("a.") },
			line:  "clear",
			want:  repl.MsgCleared + "\n",
		},
		"exit": {
			line: "exit",
			err:  repl.ErrExit,
		},
		"quit": {
			line: "quit",
			err:  repl.ErrExit,
		},
		"load without file": {
			line: "load",
			want: repl.MsgLoadFailed + "\n",
		},
		"load missing file": {
			line: "load /does/not/exist.pl",
			want: repl.MsgLoadFailed + "\n",
		},
		"save without file": {
			line: "save",
			want: repl.MsgSaveFailed + "\n",
		},
		"unbalanced quotes": {
			line: `save "kb.pl`,
			want: repl.MsgSaveFailed + "\n",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			sess := session.New()
			if tc.setup != nil {
				tc.setup(sess)
			}

			out := &bytes.Buffer{}
			r := repl.New(sess, lines(), out)

			err := r.Exec(t.Context(), tc.line)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, ansi.Strip(out.String()))

			if tc.wantSize > 0 {
				assert.Equal(t, tc.wantSize, sess.KnowledgeBase().Len())
			}
		})
	}
}

func TestExec_SaveAndLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "my kb.pl")

	sess := session.New()
	got := run(t, sess, lines(
		"a.",
		"b :- a.",
		`save "`+path+`"`,
		"clear",
		"?- b.",
		`load '`+path+`'`,
		"?- b.",
	))

	want := "Clause added.\n" +
		"Clause added.\n" +
		repl.MsgSaved + "\n" +
		repl.MsgCleared + "\n" +
		"false\n" +
		repl.MsgLoaded + "\n" +
		"true\n"

	assert.Equal(t, want, got)
}

func TestRun_Trace(t *testing.T) {
	t.Parallel()

	got := run(t, session.New(), lines("a.", "?- a."), repl.WithTrace(nil, true))

	want := "Clause added.\n" +
		"[eval] evaluating: a\n" +
		"[success] fact matched: a\n" +
		"true\n"

	assert.Equal(t, want, got)
}

func TestRun_Input(t *testing.T) {
	t.Parallel()

	readErr := errors.New("tty gone")

	tcs := map[string]struct {
		err   error
		steps []step
		want  int
	}{
		"end of input": {
			steps: []step{{line: "a."}},
			want:  1,
		},
		"interrupt on empty line exits": {
			steps: []step{{line: "a."}, {err: readline.ErrInterrupt}, {line: "b."}},
			want:  1,
		},
		"interrupt with text discards the line": {
			steps: []step{{line: "a.", err: readline.ErrInterrupt}, {line: "b."}},
			want:  1,
		},
		"read error": {
			steps: []step{{line: "a."}, {err: readErr}},
			err:   readErr,
			want:  1,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			sess := session.New()
			in := &fakeReader{steps: tc.steps}

			err := repl.New(sess, in, io.Discard).Run(t.Context())
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
			} else {
				require.NoError(t, err)
			}

			assert.True(t, in.closed)
			assert.Equal(t, tc.want, sess.KnowledgeBase().Len())
		})
	}
}

func TestRun_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := repl.New(session.New(), lines("a."), io.Discard).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
