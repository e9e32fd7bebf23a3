package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/muesli/termenv"

	"github.com/macropower/pql/pkg/kb"
)

// Highlighter renders clause text with chroma's Prolog lexer.
type Highlighter struct {
	lexer     chroma.Lexer
	formatter chroma.Formatter
	style     *chroma.Style
}

// NewHighlighter creates a [Highlighter] for the styles' chroma style. The
// formatter is chosen from the terminal's color profile.
func NewHighlighter(s *Styles) *Highlighter {
	lexer := lexers.Get("Prolog")
	if lexer == nil {
		lexer = lexers.Fallback
	}

	formatterName := "noop"
	switch termenv.ColorProfile() {
	case termenv.TrueColor:
		formatterName = "terminal16m"

	case termenv.ANSI256:
		formatterName = "terminal256"

	case termenv.ANSI:
		formatterName = "terminal8"

	case termenv.Ascii:
	}

	return &Highlighter{
		lexer:     chroma.Coalesce(lexer),
		formatter: formatters.Get(formatterName),
		style:     s.chroma,
	}
}

// SetFormatter sets the chroma formatter explicitly.
func (h *Highlighter) SetFormatter(name string) {
	h.formatter = formatters.Get(name)
}

// Highlight renders src.
func (h *Highlighter) Highlight(src string) (string, error) {
	iterator, err := h.lexer.Tokenise(nil, src)
	if err != nil {
		return "", fmt.Errorf("lexer tokenize: %w", err)
	}

	buf := &bytes.Buffer{}

	err = h.formatter.Format(buf, h.style, iterator)
	if err != nil {
		return "", fmt.Errorf("format: %w", err)
	}

	return strings.TrimRight(buf.String(), "\n"), nil
}

// Listing renders k in its persisted form.
func (h *Highlighter) Listing(k *kb.KnowledgeBase) (string, error) {
	return h.Highlight(k.String())
}
