package args

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestNewSchema(t *testing.T) {
	schema, err := NewSchema(
		Required("text"),
		Spec{Signature: " [ times ] ", Kind: "string", Default: strptr("1")},
	)
	require.NoError(t, err)

	arguments := schema.Arguments()
	require.Len(t, arguments, 2)

	assert.Equal(t, "text", arguments[0].Name)
	assert.False(t, arguments[0].Optional)
	assert.Nil(t, arguments[0].Default)
	assert.Equal(t, "any", arguments[0].Strategy.Name)

	assert.Equal(t, "times", arguments[1].Name)
	assert.True(t, arguments[1].Optional)
	assert.Equal(t, "1", arguments[1].Default)
	assert.Equal(t, "string", arguments[1].Strategy.Name)

	assert.Equal(t, 2, schema.Len())
	assert.Equal(t, 1, schema.Required())
	assert.Equal(t, "<text> [times=1]", schema.Usage())
}

func TestNewSchema_DefaultOnRequiredIgnored(t *testing.T) {
	schema, err := NewSchema(Spec{Signature: "x", Default: strptr("ignored")})
	require.NoError(t, err)

	arg := schema.Arguments()[0]
	assert.False(t, arg.Optional)
	assert.Nil(t, arg.Default)

	_, err = Bind(nil, schema)
	assert.ErrorIs(t, err, ErrMissingRequiredArgument)
}

func TestNewSchema_Errors(t *testing.T) {
	tests := []struct {
		name     string
		specs    []Spec
		expected error
		index    int
	}{
		{"Empty signature", []Spec{{Signature: ""}}, ErrInvalidSignature, 0},
		{"Empty brackets", []Spec{{Signature: "[]", Default: strptr("x")}}, ErrInvalidSignature, 0},
		{"Unbalanced brackets", []Spec{{Signature: "[x"}}, ErrInvalidSignature, 0},
		{"Whitespace in name", []Spec{Required("a b")}, ErrInvalidSignature, 0},
		{"Duplicate name", []Spec{Required("x"), Optional("x", "1")}, ErrDuplicateArgument, 1},
		{"Optional without default", []Spec{{Signature: "[y]"}}, ErrMissingDefault, 0},
		{"Unknown kind", []Spec{{Signature: "x", Kind: "number"}}, ErrUnknownKind, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, err := NewSchema(tt.specs...)
			assert.Nil(t, schema)
			require.ErrorIs(t, err, tt.expected)
			assert.ErrorIs(t, err, ErrInvalidSchema)

			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr))
			assert.Equal(t, tt.index, schemaErr.Index)
			assert.Equal(t, CodeInvalidSchema, schemaErr.Code())
		})
	}
}

func TestNewSchema_DefaultConversionFails(t *testing.T) {
	_, err := NewSchema(Optional("n", "many").As(integer))

	require.ErrorIs(t, err, ErrInvalidSchema)
	require.ErrorIs(t, err, ErrConversion)

	var convErr *ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, "n", convErr.Argument)
	assert.Equal(t, "many", convErr.Raw)
}

func TestMustSchema_Panics(t *testing.T) {
	assert.Panics(t, func() { MustSchema(Required("x"), Required("x")) })
}

func TestLookupStrategy(t *testing.T) {
	tests := []struct {
		kind     string
		expected string
		found    bool
	}{
		{"", "any", true},
		{"any", "any", true},
		{"string", "string", true},
		{"int", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			s, ok := LookupStrategy(tt.kind)
			if ok != tt.found {
				t.Errorf("LookupStrategy(%q) found = %v, want %v", tt.kind, ok, tt.found)
			}
			if s.Name != tt.expected {
				t.Errorf("LookupStrategy(%q) = %v, want %v", tt.kind, s.Name, tt.expected)
			}
		})
	}

	assert.Equal(t, []string{"any", "string"}, Kinds())
}

func TestNilSchema(t *testing.T) {
	var schema *Schema

	assert.Equal(t, 0, schema.Len())
	assert.Equal(t, "", schema.Usage())

	got, err := Bind(nil, schema)
	require.NoError(t, err)
	assert.Empty(t, got)
}
