package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/macropower/pql/pkg/session"
	"github.com/macropower/pql/pkg/trace"
	"github.com/macropower/pql/pkg/yaml"
)

// Format is an output format for query results.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var (
	ErrUnknownFormat = errors.New("unknown output format")

	AllFormats = []string{
		string(FormatText),
		string(FormatYAML),
		string(FormatJSON),
	}
)

// ParseFormat returns the [Format] named s.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(AllFormats, string(f)) {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}

	return f, nil
}

// Printer writes query results to an [io.Writer].
type Printer struct {
	w      io.Writer
	styles *Styles
	filter *trace.Filter
	format Format
	trace  bool
	indent bool
}

// PrinterOpt configures a [Printer].
type PrinterOpt func(p *Printer)

// WithFormat sets the output format. The default is [FormatText].
func WithFormat(f Format) PrinterOpt {
	return func(p *Printer) {
		p.format = f
	}
}

// WithTrace includes the trace events matched by f. A nil f matches all
// events.
func WithTrace(f *trace.Filter, indent bool) PrinterOpt {
	return func(p *Printer) {
		p.trace = true
		p.filter = f
		p.indent = indent
	}
}

// WithStyles sets the styles used by [FormatText].
func WithStyles(s *Styles) PrinterOpt {
	return func(p *Printer) {
		p.styles = s
	}
}

// NewPrinter creates a [Printer] writing to w.
func NewPrinter(w io.Writer, opts ...PrinterOpt) *Printer {
	p := &Printer{
		w:      w,
		format: FormatText,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.styles == nil {
		p.styles = NewStyles(nil)
	}

	return p
}

type resultDocument struct {
	Query       string        `json:"query"`
	Duration    string        `json:"duration"`
	Events      []trace.Event `json:"events,omitempty"`
	Suggestions []string      `json:"suggestions,omitempty"`
	Result      bool          `json:"result"`
}

// Print writes res.
func (p *Printer) Print(res session.Result) error {
	switch p.format {
	case FormatYAML:
		enc := yaml.NewEncoder(p.w)
		if err := enc.Encode(p.document(res)); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close() //nolint:wrapcheck // Return the original error.

	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(p.document(res)); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil

	case FormatText:
	}

	return p.printText(res)
}

func (p *Printer) document(res session.Result) resultDocument {
	doc := resultDocument{
		Query:       res.Query,
		Result:      res.Value,
		Duration:    res.Duration.String(),
		Suggestions: res.Suggestions,
	}

	if p.trace {
		doc.Events = p.filter.Apply(res.Events)
	}

	return doc
}

func (p *Printer) printText(res session.Result) error {
	var sb strings.Builder

	if p.trace {
		if t := p.styles.Trace(res.Events, p.filter, p.indent); t != "" {
			sb.WriteString(t + "\n")
		}
	}

	sb.WriteString(p.styles.Result(res.Value) + "\n")

	if len(res.Suggestions) > 0 {
		sb.WriteString(p.styles.Subtle.Render("did you mean: "+strings.Join(res.Suggestions, ", ")) + "\n")
	}

	if _, err := io.WriteString(p.w, sb.String()); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	return nil
}
