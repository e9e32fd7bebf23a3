package yaml

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/token"
)

// Error is a YAML error with an optional location: a [*yaml.Path] into the
// document or the [*token.Token] where decoding failed. With Source set, the
// error message includes the annotated source.
type Error struct {
	Err    error
	Path   *yaml.Path
	Token  *token.Token
	Source []byte
}

func (e Error) Error() string {
	if e.Err == nil {
		return ""
	}

	var msg string

	switch {
	case e.Path != nil:
		msg = fmt.Sprintf("error at %s: %v", e.Path.String(), e.Err)
	case e.Token != nil:
		msg = fmt.Sprintf("[%d:%d] %v", e.Token.Position.Line, e.Token.Position.Column, e.Err)
	default:
		return e.Err.Error()
	}

	if src := e.annotate(); src != "" {
		msg += "\n" + src
	}

	return msg
}

func (e Error) Unwrap() error {
	return e.Err
}

func (e Error) annotate() string {
	if len(e.Source) == 0 || e.Path == nil {
		return ""
	}

	src, err := e.Path.AnnotateSource(e.Source, false)
	if err != nil {
		return ""
	}

	return strings.TrimRight(string(src), "\n")
}

// WithSource attaches source to err if it is an [*Error].
// Other errors are returned unmodified.
func WithSource(err error, source []byte) error {
	var yamlErr *Error
	if errors.As(err, &yamlErr) {
		yamlErr.Source = source

		return yamlErr
	}

	return err
}

func NewPathBuilder() *yaml.PathBuilder {
	return &yaml.PathBuilder{}
}

// PathFromLocation converts a JSON pointer style location, as reported by
// schema validators, to a [*yaml.Path].
func PathFromLocation(location []string) *yaml.Path {
	pb := NewPathBuilder().Root()

	for _, part := range location {
		var index uint

		if _, err := fmt.Sscanf(part, "%d", &index); err == nil {
			pb = pb.Index(index)
		} else {
			pb = pb.Child(part)
		}
	}

	return pb.Build()
}
