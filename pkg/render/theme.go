package render

import (
	"os"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/x/exp/charmtone"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/macropower/pql/pkg/trace"
)

// Ellipsis is appended to truncated text.
const Ellipsis = "…"

// Theme holds the configurable colors. Colors are hex strings or ANSI color
// numbers; an empty color leaves the terminal default.
type Theme struct {
	// Eval is the color of evaluation events.
	Eval string `json:"eval,omitempty" jsonschema:"title=Eval Color"`
	// Info is the color of informational events.
	Info string `json:"info,omitempty" jsonschema:"title=Info Color"`
	// Fail is the color of failure events and false results.
	Fail string `json:"fail,omitempty" jsonschema:"title=Fail Color"`
	// Backtrack is the color of backtracking events.
	Backtrack string `json:"backtrack,omitempty" jsonschema:"title=Backtrack Color"`
	// Success is the color of success events and true results.
	Success string `json:"success,omitempty" jsonschema:"title=Success Color"`
	// Other is the color of unclassified events.
	Other string `json:"other,omitempty" jsonschema:"title=Other Color"`
	// Chroma is the name of the chroma style used for listings. "auto" picks
	// a light or dark style from the terminal background.
	Chroma string `json:"chroma,omitempty" jsonschema:"title=Chroma Style"`
}

// DefaultTheme returns the default [Theme].
func DefaultTheme() *Theme {
	return &Theme{
		Eval:      charmtone.Malibu.Hex(),
		Info:      charmtone.Malibu.Hex(),
		Fail:      charmtone.Cherry.Hex(),
		Backtrack: charmtone.Sriracha.Hex(),
		Success:   charmtone.Guac.Hex(),
		Chroma:    "auto",
	}
}

// EnsureDefaults fills unset fields from [DefaultTheme]. Other is left as is,
// since its default is the terminal color.
func (t *Theme) EnsureDefaults() {
	d := DefaultTheme()
	for _, f := range []struct {
		dst *string
		def string
	}{
		{&t.Eval, d.Eval},
		{&t.Info, d.Info},
		{&t.Fail, d.Fail},
		{&t.Backtrack, d.Backtrack},
		{&t.Success, d.Success},
		{&t.Chroma, d.Chroma},
	} {
		if *f.dst == "" {
			*f.dst = f.def
		}
	}
}

// Color returns the configured color for kind.
func (t *Theme) Color(kind trace.Kind) string {
	switch kind {
	case trace.KindEval:
		return t.Eval
	case trace.KindInfo:
		return t.Info
	case trace.KindFail:
		return t.Fail
	case trace.KindBacktrack:
		return t.Backtrack
	case trace.KindSuccess:
		return t.Success
	case trace.KindOther:
		return t.Other
	}

	return t.Other
}

func chromaStyle(name string) *chroma.Style {
	switch name {
	case "dark":
		name = "github-dark"
	case "light":
		name = "github"
	case "auto", "":
		name = defaultChromaStyle()
	}

	s := styles.Get(name)
	if s == nil {
		return styles.Fallback
	}

	return s
}

func defaultChromaStyle() string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ""
	}

	if termenv.HasDarkBackground() {
		return "github-dark"
	}

	return "github"
}
