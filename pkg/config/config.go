package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/macropower/pql/pkg/render"
	"github.com/macropower/pql/pkg/schema"
	"github.com/macropower/pql/pkg/trace"
	"github.com/macropower/pql/pkg/ui"
	"github.com/macropower/pql/pkg/yaml"
)

const (
	APIVersion = "pql.macropower.dev/v1beta1"
	Kind       = "Configuration"

	SchemaURL  = "https://pql.macropower.dev/config.v1beta1.json"
	SchemaFile = "config.v1beta1.json"
)

var (
	//go:embed config.yaml
	defaultConfigYAML []byte

	ErrInvalidConfig = errors.New("invalid config")

	// Schema returns the JSON schema of [Config].
	Schema = sync.OnceValues(func() ([]byte, error) {
		return schema.NewGenerator(SchemaURL).Generate(New())
	})

	defaultValidator = sync.OnceValues(func() (*schema.Validator, error) {
		b, err := Schema()
		if err != nil {
			return nil, err
		}

		return schema.NewValidator(SchemaURL, b)
	})
)

//nolint:recvcheck // Must satisfy the jsonschema interface.
type Config struct {
	Trace *TraceConfig  `json:"trace,omitempty" jsonschema:"title=Trace"`
	Theme *render.Theme `json:"theme,omitempty" jsonschema:"title=Theme"`
	REPL  *REPLConfig   `json:"repl,omitempty"  jsonschema:"title=REPL"`
	UI    *ui.Config    `json:"ui,omitempty"    jsonschema:"title=UI"`
	// APIVersion specifies the API version for this configuration.
	APIVersion string `json:"apiVersion" jsonschema:"title=API Version"`
	// Kind defines the type of configuration.
	Kind string `json:"kind" jsonschema:"title=Kind"`
}

// TraceConfig controls how trace events are shown.
type TraceConfig struct {
	// Enabled prints the trace after each query.
	Enabled *bool `json:"enabled,omitempty" jsonschema:"title=Enabled"`
	// Indent indents events by recursion depth.
	Indent *bool `json:"indent,omitempty" jsonschema:"title=Indent"`
	// Filter is a CEL expression selecting the events to show. The variables
	// kind, message and depth are available.
	Filter string `json:"filter,omitempty" jsonschema:"title=Filter"`
}

// REPLConfig configures the interactive console.
type REPLConfig struct {
	// Prompt is printed before each input line.
	Prompt string `json:"prompt,omitempty" jsonschema:"title=Prompt"`
	// HistoryFile stores input history. Empty disables history.
	HistoryFile string `json:"historyFile,omitempty" jsonschema:"title=History File"`
}

const DefaultPrompt = ">> "

func New() *Config {
	c := &Config{
		APIVersion: APIVersion,
		Kind:       Kind,
	}
	c.EnsureDefaults()

	return c
}

func (c *Config) EnsureDefaults() {
	if c.Trace == nil {
		c.Trace = &TraceConfig{}
	}

	if c.Trace.Enabled == nil {
		c.Trace.Enabled = ptr(true)
	}

	if c.Trace.Indent == nil {
		c.Trace.Indent = ptr(true)
	}

	if c.Theme == nil {
		c.Theme = render.DefaultTheme()
	} else {
		c.Theme.EnsureDefaults()
	}

	if c.REPL == nil {
		c.REPL = &REPLConfig{}
	}

	if c.REPL.Prompt == "" {
		c.REPL.Prompt = DefaultPrompt
	}

	if c.UI == nil {
		c.UI = &ui.Config{}
	}

	c.UI.EnsureDefaults()
}

// Validate runs the checks that the JSON schema cannot express.
func (c *Config) Validate() error {
	if _, err := trace.NewFilter(c.Trace.Filter); err != nil {
		return fmt.Errorf("%w: trace.filter: %w", ErrInvalidConfig, err)
	}

	if err := c.UI.Validate(); err != nil {
		return fmt.Errorf("%w: ui: %w", ErrInvalidConfig, err)
	}

	return nil
}

// TraceEnabled reports whether traces are printed.
func (c *Config) TraceEnabled() bool {
	return c.Trace != nil && c.Trace.Enabled != nil && *c.Trace.Enabled
}

// TraceIndent reports whether trace events are indented by depth.
func (c *Config) TraceIndent() bool {
	return c.Trace != nil && c.Trace.Indent != nil && *c.Trace.Indent
}

func (c Config) JSONSchemaExtend(jss *jsonschema.Schema) {
	apiVersion, ok := jss.Properties.Get("apiVersion")
	if !ok {
		panic("apiVersion property not found in schema")
	}

	apiVersion.Const = APIVersion
	_, _ = jss.Properties.Set("apiVersion", apiVersion)

	kind, ok := jss.Properties.Get("kind")
	if !ok {
		panic("kind property not found in schema")
	}

	kind.Const = Kind
	_, _ = jss.Properties.Set("kind", kind)
}

// YAML encodes the configuration.
func (c *Config) YAML() ([]byte, error) {
	b := &bytes.Buffer{}

	enc := yaml.NewEncoder(b)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}

	return b.Bytes(), nil
}

// Parse decodes and validates configuration data. Validation errors carry the
// YAML path of the offending field and an annotated excerpt of data.
func Parse(data []byte) (*Config, error) {
	v, err := defaultValidator()
	if err != nil {
		return nil, fmt.Errorf("create validator: %w", err)
	}

	var anyConfig any

	err = yaml.NewDecoder(bytes.NewReader(data), false).Decode(&anyConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, yaml.WithSource(err, data))
	}

	err = v.Validate(anyConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, yaml.WithSource(err, data))
	}

	c := &Config{}

	err = yaml.NewDecoder(bytes.NewReader(data), true).Decode(c)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, yaml.WithSource(err, data))
	}

	c.EnsureDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Load reads and parses the configuration file at path. A missing file
// yields the default configuration.
func Load(path string) (*Config, error) {
	data, err := readConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("configuration file not found, using defaults",
			slog.String("path", path),
		)

		return New(), nil
	}

	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// WriteDefault writes the default config.yaml and its JSON schema to path.
// An existing file is kept unless force is set, in which case it is moved to a
// backup first.
func WriteDefault(path string, force bool) error {
	configExists := false

	pathInfo, err := os.Stat(path)
	if pathInfo != nil {
		switch {
		case err == nil && pathInfo.Mode().IsRegular():
			configExists = true
		case pathInfo.IsDir():
			return fmt.Errorf("%s: path is a directory", path)
		default:
			return fmt.Errorf("%s: unknown file state", path)
		}
	}

	err = os.MkdirAll(filepath.Dir(path), 0o700)
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	if configExists && force {
		backupFile := fmt.Sprintf("%s.%d.old", filepath.Base(path), time.Now().UnixNano())
		backupPath := filepath.Join(filepath.Dir(path), backupFile)
		slog.Info("backing up existing config file",
			slog.String("path", backupPath),
		)

		err = os.Rename(path, backupPath)
		if err != nil {
			return fmt.Errorf("rename existing config file to backup: %w", err)
		}

		configExists = false
	}

	if configExists {
		slog.Debug("configuration file already exists, skipping write",
			slog.String("path", path),
		)
	} else {
		slog.Info("write default configuration",
			slog.String("path", path),
		)

		err = os.WriteFile(path, defaultConfigYAML, 0o600)
		if err != nil {
			return fmt.Errorf("write config file: %w", err)
		}
	}

	schemaJSON, err := Schema()
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}

	schemaPath := filepath.Join(filepath.Dir(path), SchemaFile)
	slog.Debug("write JSON schema",
		slog.String("path", schemaPath),
	)

	err = os.WriteFile(schemaPath, schemaJSON, 0o600)
	if err != nil {
		return fmt.Errorf("write schema file: %w", err)
	}

	return nil
}

// DefaultYAML returns the commented default configuration file.
func DefaultYAML() []byte {
	return bytes.Clone(defaultConfigYAML)
}

// GetPath returns the default configuration file path.
func GetPath() string {
	if xdgHome, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && xdgHome != "" {
		return filepath.Join(xdgHome, "pql", "config.yaml")
	}

	usrHome, err := os.UserHomeDir()
	if err == nil && usrHome != "" {
		return filepath.Join(usrHome, ".config", "pql", "config.yaml")
	}

	tmpConfig := filepath.Join(os.TempDir(), "pql", "config.yaml")

	slog.Warn("could not determine user config directory, using temp path for config",
		slog.String("path", tmpConfig),
		slog.Any("error", fmt.Errorf("$XDG_CONFIG_HOME is unset, fall back to home directory: %w", err)),
	)

	return tmpConfig
}

func readConfig(path string) ([]byte, error) {
	pathInfo, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	if pathInfo.IsDir() {
		return nil, fmt.Errorf("%s: path is a directory", path)
	}

	if !pathInfo.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: unknown file state", path)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: Potential file inclusion via variable.
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

func ptr[T any](v T) *T {
	return &v
}
