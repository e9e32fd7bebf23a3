package repl

import (
	"fmt"

	"github.com/chzyer/readline"
)

// ReadlineConfig configures [NewReadline].
type ReadlineConfig struct {
	Prompt string
	// HistoryFile stores input history. Empty disables history.
	HistoryFile string
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("?- "),
	readline.PcItem("load"),
	readline.PcItem("save"),
	readline.PcItem("show"),
	readline.PcItem("clear"),
	readline.PcItem("help"),
	readline.PcItem("exit"),
)

// NewReadline creates a terminal [LineReader] with line editing, history and
// command completion.
func NewReadline(cfg ReadlineConfig) (*readline.Instance, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cfg.Prompt,
		HistoryFile:     cfg.HistoryFile,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("create readline: %w", err)
	}

	return rl, nil
}
