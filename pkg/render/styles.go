package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/macropower/pql/pkg/trace"
)

// Styles renders trace events and results.
type Styles struct {
	kinds  map[trace.Kind]lipgloss.Style
	chroma *chroma.Style

	True   lipgloss.Style
	False  lipgloss.Style
	Error  lipgloss.Style
	Subtle lipgloss.Style
	Title  lipgloss.Style
}

// NewStyles creates [Styles] from t. A nil t uses [DefaultTheme].
func NewStyles(t *Theme) *Styles {
	if t == nil {
		t = DefaultTheme()
	}

	s := &Styles{
		kinds:  make(map[trace.Kind]lipgloss.Style, len(trace.AllKinds)),
		chroma: chromaStyle(t.Chroma),
	}

	for _, k := range trace.AllKinds {
		s.kinds[k] = foreground(t.Color(k))
	}

	s.True = foreground(t.Success).Bold(true)
	s.False = foreground(t.Fail).Bold(true)
	s.Error = foreground(t.Fail)
	s.Subtle = lipgloss.NewStyle().Faint(true)
	s.Title = foreground(t.Eval).Bold(true)

	return s
}

func foreground(color string) lipgloss.Style {
	style := lipgloss.NewStyle()
	if color != "" {
		style = style.Foreground(lipgloss.Color(color))
	}

	return style
}

// Kind returns the style used for events of kind k.
func (s *Styles) Kind(k trace.Kind) lipgloss.Style {
	if style, ok := s.kinds[k]; ok {
		return style
	}

	return s.kinds[trace.KindOther]
}

// TraceLine renders a single event. With indent, the line is indented by the
// event's depth.
func (s *Styles) TraceLine(e trace.Event, indent bool) string {
	prefix := ""
	if indent {
		prefix = strings.Repeat("  ", max(0, e.Depth))
	}

	return prefix + s.Kind(e.Kind).Render(e.String())
}

// Trace renders the events matched by f, one per line. A nil f matches all
// events.
func (s *Styles) Trace(events []trace.Event, f *trace.Filter, indent bool) string {
	lines := make([]string, 0, len(events))
	for _, e := range f.Apply(events) {
		lines = append(lines, s.TraceLine(e, indent))
	}

	return strings.Join(lines, "\n")
}

// Result renders a query result as "true" or "false".
func (s *Styles) Result(v bool) string {
	if v {
		return s.True.Render("true")
	}

	return s.False.Render("false")
}

// Wrap word-wraps text to width, breaking words that are longer than width.
// Styling is preserved. A width below one leaves text unchanged.
func Wrap(text string, width int) string {
	if width < 1 {
		return text
	}

	return wrap.String(wordwrap.String(text, width), width)
}
