// ============================================================================
// nic - Chat-Kommando-Framework
// ============================================================================
//
// Package:     args
// Description: Argument schemas compiled from declarative argument specs
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package args

import (
	"fmt"
	"strings"
)

// Spec declares one argument the way it is written in code or in a catalog
// file. A signature of "name" is required, "[name]" is optional.
type Spec struct {
	Signature string  `yaml:"signature" json:"signature" jsonschema:"required,description=Argument name; wrap in brackets to make it optional"`
	Kind      string  `yaml:"kind,omitempty" json:"kind,omitempty" jsonschema:"enum=any,enum=string,description=Conversion strategy (default any)"`
	Default   *string `yaml:"default,omitempty" json:"default,omitempty" jsonschema:"description=Value bound when an optional argument is omitted"`

	// Strategy overrides Kind when set
	Strategy Strategy `yaml:"-" json:"-"`
}

// Required declares a required argument
func Required(name string) Spec {
	return Spec{Signature: name}
}

// Optional declares an optional argument with its default value
func Optional(name, def string) Spec {
	return Spec{Signature: "[" + name + "]", Default: &def}
}

// As returns a copy of the spec using the given conversion strategy
func (s Spec) As(strategy Strategy) Spec {
	s.Strategy = strategy
	s.Kind = strategy.Name
	return s
}

// Argument is one compiled argument descriptor
type Argument struct {
	Name     string
	Optional bool
	Default  any // Converted default, only set for optional arguments
	Strategy Strategy

	rawDefault string
}

// Schema is the ordered, immutable argument list of a command
type Schema struct {
	args []Argument
}

// NewSchema compiles argument specs into a schema. Defaults of optional
// arguments are converted here, once.
func NewSchema(specs ...Spec) (*Schema, error) {
	schema := &Schema{args: make([]Argument, 0, len(specs))}
	seen := make(map[string]bool, len(specs))

	for i, spec := range specs {
		arg, err := compile(spec)
		if err != nil {
			return nil, &SchemaError{Index: i, Signature: spec.Signature, Err: err}
		}

		if seen[arg.Name] {
			return nil, &SchemaError{Index: i, Signature: spec.Signature, Err: ErrDuplicateArgument}
		}
		seen[arg.Name] = true

		schema.args = append(schema.args, arg)
	}

	return schema, nil
}

// MustSchema is like NewSchema but panics on error. Intended for package
// level command declarations.
func MustSchema(specs ...Spec) *Schema {
	s, err := NewSchema(specs...)
	if err != nil {
		panic(err)
	}
	return s
}

func compile(spec Spec) (Argument, error) {
	name, optional, err := parseSignature(spec.Signature)
	if err != nil {
		return Argument{}, err
	}

	strategy := spec.Strategy
	if !strategy.valid() {
		var ok bool
		strategy, ok = LookupStrategy(spec.Kind)
		if !ok {
			return Argument{}, fmt.Errorf("%w %q", ErrUnknownKind, spec.Kind)
		}
	}

	arg := Argument{Name: name, Optional: optional, Strategy: strategy}
	if !optional {
		// a default on a required argument is never used
		return arg, nil
	}

	if spec.Default == nil {
		return Argument{}, ErrMissingDefault
	}

	value, err := strategy.Convert(*spec.Default)
	if err != nil {
		return Argument{}, &ConversionError{Argument: name, Raw: *spec.Default, Err: err}
	}
	arg.Default = value
	arg.rawDefault = *spec.Default

	return arg, nil
}

// parseSignature splits "name" or "[name]" into the name and optional flag
func parseSignature(sig string) (string, bool, error) {
	sig = strings.TrimSpace(sig)

	optional := false
	if strings.HasPrefix(sig, "[") || strings.HasSuffix(sig, "]") {
		if !strings.HasPrefix(sig, "[") || !strings.HasSuffix(sig, "]") || len(sig) < 2 {
			return "", false, fmt.Errorf("%w: unbalanced brackets", ErrInvalidSignature)
		}
		sig = strings.TrimSpace(sig[1 : len(sig)-1])
		optional = true
	}

	if sig == "" {
		return "", false, fmt.Errorf("%w: empty name", ErrInvalidSignature)
	}
	if strings.ContainsAny(sig, "[] \t\"") {
		return "", false, fmt.Errorf("%w: name %q contains reserved characters", ErrInvalidSignature, sig)
	}

	return sig, optional, nil
}

// Arguments returns a copy of the compiled arguments in declaration order
func (s *Schema) Arguments() []Argument {
	if s == nil {
		return nil
	}
	out := make([]Argument, len(s.args))
	copy(out, s.args)
	return out
}

// Len returns the number of declared arguments
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.args)
}

// Required returns the number of required arguments
func (s *Schema) Required() int {
	n := 0
	for _, a := range s.Arguments() {
		if !a.Optional {
			n++
		}
	}
	return n
}

// Usage renders the schema as a usage line, e.g. "<text> [times=1]"
func (s *Schema) Usage() string {
	parts := make([]string, 0, s.Len())
	for _, a := range s.Arguments() {
		if a.Optional {
			parts = append(parts, fmt.Sprintf("[%s=%s]", a.Name, a.rawDefault))
		} else {
			parts = append(parts, "<"+a.Name+">")
		}
	}
	return strings.Join(parts, " ")
}

func (s *Schema) String() string { return s.Usage() }
