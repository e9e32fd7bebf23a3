package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Generator reflects JSON schemas from Go values with
// [github.com/invopop/jsonschema].
type Generator struct {
	reflector *jsonschema.Reflector
	id        string
}

// NewGenerator creates a [Generator] that sets the schema's $id to id.
func NewGenerator(id string) *Generator {
	return &Generator{
		id: id,
		reflector: &jsonschema.Reflector{
			ExpandedStruct: true,
			DoNotReference: true,
		},
	}
}

// Generate returns the indented JSON schema for v.
func (g *Generator) Generate(v any) ([]byte, error) {
	s := g.reflector.Reflect(v)
	s.ID = jsonschema.ID(g.id)

	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return b, nil
}
