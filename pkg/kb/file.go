package kb

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/macropower/pql/pkg/clause"
)

const (
	// FactsHeader introduces the facts section of a file.
	FactsHeader = "% Facts:"
	// RulesHeader introduces the rules section of a file.
	RulesHeader = "% Rules:"
	// Comment starts a line that is skipped when reading.
	Comment = "%"
)

// ErrEmptyPath is returned when a file operation is given no path.
var ErrEmptyPath = errors.New("empty path")

// WriteTo writes the knowledge base in its file format. Clauses are written
// as stored; see [Persistable] for those that do not read back unchanged.
// It implements [io.WriterTo].
func (k *KnowledgeBase) WriteTo(w io.Writer) (int64, error) {
	var b bytes.Buffer

	b.WriteString(FactsHeader + "\n")
	for _, f := range k.facts {
		b.WriteString(f + string(clause.Terminator) + "\n")
	}

	b.WriteString("\n" + RulesHeader + "\n")
	for _, r := range k.rules {
		b.WriteString(r + string(clause.Terminator) + "\n")
	}

	n, err := b.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("write clauses: %w", err)
	}

	return n, nil
}

// String returns the knowledge base in its file format.
func (k *KnowledgeBase) String() string {
	var sb strings.Builder

	_, _ = k.WriteTo(&sb) //nolint:errcheck // strings.Builder never fails.

	return sb.String()
}

// ReadFrom adds the clauses read from r. Empty lines and comment lines are
// skipped, and a single trailing terminator is dropped from each line. Lines
// may be of any length. The input may be UTF-8 (with or without a BOM) or
// UTF-16 with a BOM.
// It implements [io.ReaderFrom].
func (k *KnowledgeBase) ReadFrom(r io.Reader) (int64, error) {
	cr := &countingReader{r: r}
	br := bufio.NewReader(transform.NewReader(cr, unicode.BOMOverride(unicode.UTF8.NewDecoder())))

	for {
		line, err := br.ReadString('\n')

		line = strings.TrimRight(line, "\r\n")
		if line != "" && !strings.HasPrefix(strings.TrimLeft(line, " \t"), Comment) {
			k.AddClause(strings.TrimSuffix(line, string(clause.Terminator)))
		}

		if errors.Is(err, io.EOF) {
			return cr.n, nil
		}
		if err != nil {
			return cr.n, fmt.Errorf("read clauses: %w", err)
		}
	}
}

// Persistable reports whether the normalized clause c reads back unchanged
// from the file format. Clauses that span lines or start with [Comment] are
// accepted by [KnowledgeBase.AddClause] but do not survive a save and load.
func Persistable(c string) bool {
	return !strings.Contains(c, "\n") && !strings.HasPrefix(c, Comment)
}

// LoadFile clears the knowledge base and reads path into it. The knowledge
// base is cleared before the file is opened, so a failed load leaves it
// empty (or partially filled).
func (k *KnowledgeBase) LoadFile(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	k.Clear()

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s: path is a directory", path)
	}

	f, err := os.Open(path) //nolint:gosec // G304: Potential file inclusion via variable.
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only file.

	_, err = k.ReadFrom(f)

	return err
}

// SaveFile writes the knowledge base to path, replacing any existing file.
func (k *KnowledgeBase) SaveFile(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	err := os.WriteFile(path, []byte(k.String()), 0o600)
	if err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}

// Load creates a new [KnowledgeBase] from path.
func Load(path string) (*KnowledgeBase, error) {
	k := New()

	err := k.LoadFile(path)
	if err != nil {
		return nil, err
	}

	return k, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)

	return n, err //nolint:wrapcheck // Passthrough reader.
}
