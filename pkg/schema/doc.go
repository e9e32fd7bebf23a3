// Package schema generates JSON schemas from Go types and validates decoded
// YAML documents against them, reporting the YAML path of the first
// offending value.
package schema
