// Package repl implements the interactive console: clauses typed at the
// prompt are added to the knowledge base, "?-" lines are queried, and a few
// commands load, save and show the knowledge base.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mattn/go-shellwords"

	"github.com/macropower/pql/pkg/render"
	"github.com/macropower/pql/pkg/session"
	"github.com/macropower/pql/pkg/trace"
)

// ErrExit is returned by [REPL.Exec] for the exit command.
var ErrExit = errors.New("exit")

// Messages printed in response to commands.
const (
	MsgClauseAdded = "Clause added."
	MsgLoaded      = "File loaded successfully."
	MsgLoadFailed  = "Error loading file."
	MsgSaved       = "Knowledge base saved successfully."
	MsgSaveFailed  = "Error saving file."
	MsgCleared     = "Knowledge base cleared."
)

const banner = `Simple Prolog Interpreter
Available commands:
1. Add clause: type the clause directly
2. Query: ?- followed by the query
3. Load file: load filename
4. Save to file: save filename
5. Show knowledge base: show
6. Clear knowledge base: clear
7. Help: help
8. Exit: exit
`

// LineReader reads lines of input. Readline returns [io.EOF] at the end of
// input and [readline.ErrInterrupt] when the line is interrupted.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

// Option configures a [REPL].
type Option func(r *REPL)

// WithStyles sets the styles used for results and traces.
func WithStyles(s *render.Styles) Option {
	return func(r *REPL) {
		r.styles = s
	}
}

// WithTrace prints the events matched by f after each query. A nil f prints
// all events.
func WithTrace(f *trace.Filter, indent bool) Option {
	return func(r *REPL) {
		r.trace = true
		r.filter = f
		r.indent = indent
	}
}

// REPL reads commands from a [LineReader] and runs them against a session.
type REPL struct {
	sess   *session.Session
	in     LineReader
	out    io.Writer
	styles *render.Styles
	hl     *render.Highlighter
	filter *trace.Filter
	trace  bool
	indent bool
}

// New creates a [REPL] reading from in and writing to out.
func New(sess *session.Session, in LineReader, out io.Writer, opts ...Option) *REPL {
	r := &REPL{
		sess: sess,
		in:   in,
		out:  out,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.styles == nil {
		r.styles = render.NewStyles(nil)
	}

	r.hl = render.NewHighlighter(r.styles)

	return r
}

// Run prints the banner and executes lines until exit, end of input, an
// interrupt on an empty line, or cancellation of ctx.
func (r *REPL) Run(ctx context.Context) error {
	defer func() {
		if err := r.in.Close(); err != nil {
			slog.Debug("close line reader", slog.Any("err", err))
		}
	}()

	r.println(banner)

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("repl: %w", err)
		}

		line, err := r.in.Readline()

		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if line == "" {
				return nil
			}

			continue

		case errors.Is(err, io.EOF):
			return nil

		case err != nil:
			return fmt.Errorf("read line: %w", err)
		}

		err = r.Exec(ctx, line)
		if errors.Is(err, ErrExit) {
			return nil
		}

		if err != nil {
			return err
		}
	}
}

// Exec runs a single input line.
func (r *REPL) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if strings.HasPrefix(line, "?-") {
		r.query(ctx, line)

		return nil
	}

	cmd := strings.Fields(line)[0]

	switch cmd {
	case "exit", "quit":
		return ErrExit

	case "help":
		r.println(banner)

	case "show":
		r.show()

	case "clear":
		r.sess.Clear()
		r.println(MsgCleared)

	case "load":
		if err := r.sess.Load(argument(line)); err != nil {
			slog.Debug("load failed", slog.Any("err", err))
			r.println(r.styles.Error.Render(MsgLoadFailed))

			return nil
		}

		r.println(MsgLoaded)

	case "save":
		if err := r.sess.Save(argument(line)); err != nil {
			slog.Debug("save failed", slog.Any("err", err))
			r.println(r.styles.Error.Render(MsgSaveFailed))

			return nil
		}

		r.println(MsgSaved)

	default:
		r.sess.Tell(line)
		r.println(MsgClauseAdded)
	}

	return nil
}

// argument returns the first argument of a command line, honoring shell
// quoting so paths may contain spaces. It is empty when missing or
// unparsable.
func argument(line string) string {
	args, err := shellwords.Parse(line)
	if err != nil || len(args) < 2 {
		return ""
	}

	return args[1]
}

func (r *REPL) query(ctx context.Context, line string) {
	res := r.sess.Query(ctx, line)

	if r.trace {
		if t := r.styles.Trace(res.Events, r.filter, r.indent); t != "" {
			r.println(t)
		}
	}

	r.println(r.styles.Result(res.Value))
}

func (r *REPL) show() {
	k := r.sess.KnowledgeBase()

	r.println("\n=== Knowledge Base ===")
	r.println("Facts:")

	for _, f := range k.Facts() {
		r.println(r.highlight(f + "."))
	}

	r.println("\nRules:")

	for _, rule := range k.Rules() {
		r.println(r.highlight(rule + "."))
	}

	r.println("=========================\n")
}

func (r *REPL) highlight(src string) string {
	out, err := r.hl.Highlight(src)
	if err != nil {
		return src
	}

	return out
}

func (r *REPL) println(s string) {
	fmt.Fprintln(r.out, s)
}
