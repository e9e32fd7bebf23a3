// Package config provides configuration management for pql.
//
// It wraps the configuration of other packages (trace rendering, the theme,
// the REPL and the TUI) to provide a single API for loading, validating and
// writing configuration files in YAML format.
package config
