package jsonvalidate

import (
	"fmt"
	"io"

	"github.com/mcvoid/jsonstream"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator wraps a compiled JSON Schema and validates jsonstream
// instances against it. It mirrors opal-lang/opal/core/types's own
// Validator: a thin wrapper around the same schema library that
// applies size/depth guards to the instance before the library ever
// walks it, so a pathological document fails fast instead of
// recursing unboundedly.
type Validator struct {
	schema   *jsonschema.Schema
	treeOpts []Option
}

// Compile reads and compiles the schema at schemaPath (a local file
// path or URL, per jsonschema/v5's own resolution rules).
func Compile(schemaPath string) (*Validator, error) {
	s, err := jsonschema.Compile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("jsonvalidate: compile schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// CompileFromReader compiles a schema read from r, registered under
// url (used only to resolve any relative $ref inside the schema).
func CompileFromReader(url string, r io.Reader) (*Validator, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, r); err != nil {
		return nil, fmt.Errorf("jsonvalidate: add schema resource: %w", err)
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("jsonvalidate: compile schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// WithGuards replaces the default depth/node guards applied to every
// instance this Validator builds. Returns v for chaining at
// construction time.
func (v *Validator) WithGuards(opts ...Option) *Validator {
	v.treeOpts = opts
	return v
}

// Validate parses data with jsonstream, rebuilds it into a plain
// interface{} tree guarded by v's depth/node limits, and validates
// that tree against v's schema. parseOpts are forwarded to
// jsonstream.New, letting callers opt into comments, trailing commas,
// and the other grammar relaxations before validation runs.
func (v *Validator) Validate(data []byte, parseOpts ...jsonstream.Option) error {
	tree, err := BuildTree(data, v.treeOpts, parseOpts...)
	if err != nil {
		return err
	}
	if err := v.schema.Validate(tree); err != nil {
		return fmt.Errorf("jsonvalidate: schema violation: %w", err)
	}
	return nil
}
