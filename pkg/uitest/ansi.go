package uitest

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

// SetupColorProfile renders lipgloss styles in true color, so that hex theme
// colors reach the output unchanged. It changes global state; tests calling
// it should not run in parallel.
func SetupColorProfile() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

// Style is the text style in effect for a [Segment].
type Style struct {
	// Foreground is "RRGGBB" for true colors and the palette index
	// otherwise. It is empty for the terminal default.
	Foreground string
	Bold       bool
}

// Segment is a run of printable text drawn with a single [Style].
type Segment struct {
	Text  string
	Style Style
}

// HexColor converts a theme color such as "#6b50ff" to the form used in
// [Style.Foreground].
func HexColor(c string) string {
	return strings.ToUpper(strings.TrimPrefix(c, "#"))
}

// Segments splits styled output into runs of text that share a style.
func Segments(output string) []Segment {
	var (
		segments []Segment
		style    Style
		text     strings.Builder
		state    byte
	)

	flush := func() {
		if text.Len() > 0 {
			segments = append(segments, Segment{Text: text.String(), Style: style})
			text.Reset()
		}
	}

	p := ansi.GetParser()
	defer ansi.PutParser(p)

	input := []byte(output)
	for len(input) > 0 {
		seq, width, n, newState := ansi.DecodeSequence(input, state, p)

		switch {
		case ansi.HasCsiPrefix(seq) && seq[len(seq)-1] == 'm':
			flush()

			style = applySGR(style, p.Params())
		case width > 0:
			text.Write(seq)
		}

		input = input[n:]
		state = newState
	}

	flush()

	return segments
}

// StyleOf returns the style of the first segment containing text.
func StyleOf(output, text string) (Style, bool) {
	for _, seg := range Segments(output) {
		if strings.Contains(seg.Text, text) {
			return seg.Style, true
		}
	}

	return Style{}, false
}

// AssertStyle checks that text is drawn in output with exactly want.
func AssertStyle(tb testing.TB, output, text string, want Style) bool {
	tb.Helper()

	got, ok := StyleOf(output, text)
	if !assert.True(tb, ok, "no segment contains %q in %q", text, ansi.Strip(output)) {
		return false
	}

	return assert.Equal(tb, want, got, "style of %q", text)
}

// AssertForeground checks only the foreground color of text in output.
func AssertForeground(tb testing.TB, output, text, want string) bool {
	tb.Helper()

	got, ok := StyleOf(output, text)
	if !assert.True(tb, ok, "no segment contains %q in %q", text, ansi.Strip(output)) {
		return false
	}

	return assert.Equal(tb, want, got.Foreground, "foreground of %q", text)
}

func applySGR(style Style, params ansi.Params) Style {
	if len(params) == 0 {
		return Style{}
	}

	for i := 0; i < len(params); i++ {
		switch param := params[i].Param(0); {
		case param == 0:
			style = Style{}
		case param == 1:
			style.Bold = true
		case param == 22:
			style.Bold = false
		case param == 38:
			c, skip := extendedColor(params[i+1:])
			style.Foreground = c
			i += skip
		case param == 39:
			style.Foreground = ""
		case param == 48:
			_, skip := extendedColor(params[i+1:])
			i += skip
		case param >= 30 && param <= 37:
			style.Foreground = strconv.Itoa(param - 30)
		case param >= 90 && param <= 97:
			style.Foreground = strconv.Itoa(param - 90 + 8)
		}
	}

	return style
}

// extendedColor decodes the arguments of an extended color parameter, either
// "5;n" or "2;r;g;b", and returns the color and the number of arguments used.
func extendedColor(params ansi.Params) (string, int) {
	if len(params) == 0 {
		return "", 0
	}

	switch params[0].Param(0) {
	case 5:
		if len(params) > 1 {
			return strconv.Itoa(params[1].Param(0)), 2
		}

	case 2:
		if len(params) > 3 {
			return fmt.Sprintf("%02X%02X%02X",
				params[1].Param(0), params[2].Param(0), params[3].Param(0)), 4
		}
	}

	return "", 0
}
