package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/macropower/pql/pkg/keys"
)

// Config contains TUI-specific configuration.
type Config struct {
	// KeyBinds contains the key bindings for the TUI.
	KeyBinds *KeyBinds `json:"keyBinds,omitempty" jsonschema:"title=Key Binds"`
}

// EnsureDefaults fills unset fields with their defaults.
func (c *Config) EnsureDefaults() {
	if c.KeyBinds == nil {
		c.KeyBinds = &KeyBinds{}
	}

	c.KeyBinds.EnsureDefaults()
}

// Validate reports conflicting key bindings.
func (c *Config) Validate() error {
	if c.KeyBinds == nil {
		return nil
	}

	if err := c.KeyBinds.Validate(); err != nil {
		return fmt.Errorf("keyBinds: %w", err)
	}

	return nil
}

// KeyBinds are the actions available in the TUI.
type KeyBinds struct {
	Run   *keys.KeyBind `json:"run,omitempty"   jsonschema:"title=Run"`
	Open  *keys.KeyBind `json:"open,omitempty"  jsonschema:"title=Open"`
	Save  *keys.KeyBind `json:"save,omitempty"  jsonschema:"title=Save"`
	Copy  *keys.KeyBind `json:"copy,omitempty"  jsonschema:"title=Copy"`
	Focus *keys.KeyBind `json:"focus,omitempty" jsonschema:"title=Focus"`
	Help  *keys.KeyBind `json:"help,omitempty"  jsonschema:"title=Help"`
	Quit  *keys.KeyBind `json:"quit,omitempty"  jsonschema:"title=Quit"`
}

func (kb *KeyBinds) EnsureDefaults() {
	keys.SetDefaultBind(&kb.Run,
		keys.NewBind("run query",
			keys.New("ctrl+r"),
		))
	keys.SetDefaultBind(&kb.Open,
		keys.NewBind("open file",
			keys.New("ctrl+o"),
		))
	keys.SetDefaultBind(&kb.Save,
		keys.NewBind("save file",
			keys.New("ctrl+s"),
		))
	keys.SetDefaultBind(&kb.Copy,
		keys.NewBind("copy trace",
			keys.New("ctrl+y"),
		))
	keys.SetDefaultBind(&kb.Focus,
		keys.NewBind("next pane",
			keys.New("tab"),
			keys.New("shift+tab", keys.Hidden()),
		))
	keys.SetDefaultBind(&kb.Help,
		keys.NewBind("toggle help",
			keys.New("ctrl+g"),
		))
	keys.SetDefaultBind(&kb.Quit,
		keys.NewBind("quit",
			keys.New("ctrl+c"),
			keys.New("esc", keys.Hidden()),
		))
}

func (kb *KeyBinds) Validate() error {
	return keys.ValidateBinds(kb.all()...)
}

func (kb *KeyBinds) all() []*keys.KeyBind {
	return []*keys.KeyBind{kb.Run, kb.Open, kb.Save, kb.Copy, kb.Focus, kb.Help, kb.Quit}
}

// ShortHelp implements [help.KeyMap].
func (kb *KeyBinds) ShortHelp() []key.Binding {
	return []key.Binding{kb.Run.Binding(), kb.Focus.Binding(), kb.Help.Binding(), kb.Quit.Binding()}
}

// FullHelp implements [help.KeyMap].
func (kb *KeyBinds) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{kb.Run.Binding(), kb.Copy.Binding(), kb.Focus.Binding()},
		{kb.Open.Binding(), kb.Save.Binding()},
		{kb.Help.Binding(), kb.Quit.Binding()},
	}
}
