package cli

import (
	"image/color"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/exp/charmtone"

	"github.com/macropower/pql/pkg/config"
	"github.com/macropower/pql/pkg/render"
)

// ColorSchemeFunc derives the help colors from the configured theme, falling
// back to the default theme when the config cannot be read.
func ColorSchemeFunc(c lipgloss.LightDarkFunc) fang.ColorScheme {
	cfg, err := config.Load(config.GetPath())
	if err != nil {
		return ThemeColorScheme(render.DefaultTheme(), c)
	}

	return ThemeColorScheme(cfg.Theme, c)
}

func ThemeColorScheme(t *render.Theme, c lipgloss.LightDarkFunc) fang.ColorScheme {
	base := c(charmtone.Charcoal, charmtone.Ash)
	subtle := c(charmtone.Squid, charmtone.Oyster)

	return fang.ColorScheme{
		Base:           base,
		Title:          themeColor(t.Eval, charmtone.Malibu),
		Codeblock:      c(charmtone.Salt, lipgloss.Color("#2F2E36")),
		Program:        themeColor(t.Success, charmtone.Guac),
		Command:        themeColor(t.Info, charmtone.Malibu),
		DimmedArgument: subtle,
		Comment:        subtle,
		Flag:           themeColor(t.Success, charmtone.Guac),
		Argument:       base,
		Description:    base,
		FlagDefault:    subtle,
		QuotedString:   themeColor(t.Backtrack, charmtone.Sriracha),
		ErrorHeader: [2]color.Color{
			charmtone.Butter,
			themeColor(t.Fail, charmtone.Cherry),
		},
	}
}

func themeColor(s string, fallback color.Color) color.Color {
	if s == "" {
		return fallback
	}

	return lipgloss.Color(s)
}
