// Package yaml wraps [github.com/goccy/go-yaml] with the encoder settings and
// error types used across pql.
package yaml
