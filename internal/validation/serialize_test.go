package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerializeGraphQLValue(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"null", nil, "null"},
		{"variable", "$first", "$first"},
		{"string", "pikachu", `"pikachu"`},
		{"string with quote", `say "hi"`, `"say \"hi\""`},
		{"string with newline", "a\nb", `"a\nb"`},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"int", 42, "42"},
		{"integral float", float64(42), "42"},
		{"float", 10.5, "10.5"},
		{"negative", -3, "-3"},
		{"list", []any{1, "two", true}, `[1, "two", true]`},
		{"nested list", []any{[]any{1}, []any{2}}, `[[1], [2]]`},
		{"object", map[string]any{"b": 2, "a": 1}, `{a: 1, b: 2}`},
		{"nested object", map[string]any{"filter": map[string]any{"name": "x"}}, `{filter: {name: "x"}}`},
		{"marker object", map[string]any{GraphQLStringMarker: "$not a var"}, `"$not a var"`},
		{"empty list", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SerializeGraphQLValue(tt.input))
		})
	}
}

func TestSerializeGraphQLValueIdempotentForScalars(t *testing.T) {
	// Serializing a serialized scalar yields a stable literal: the output
	// of a first pass is a plain string whose re-serialization just quotes
	// it, never mangles it.
	for _, v := range []any{42, 10.5, true, "plain"} {
		first := SerializeGraphQLValue(v)
		second := SerializeGraphQLValue(first)
		assert.Equal(t, QuoteGraphQLString(first), second)
	}
}

func TestQuoteGraphQLString(t *testing.T) {
	assert.Equal(t, `"abc"`, QuoteGraphQLString("abc"))
	assert.Equal(t, `"tab\there"`, QuoteGraphQLString("tab\there"))
	assert.Equal(t, `"back\\slash"`, QuoteGraphQLString(`back\slash`))
	assert.Equal(t, "\"ctrl\\u0001\"", QuoteGraphQLString("ctrl\x01"))
}

func TestSerializeTypedValue(t *testing.T) {
	assert.Equal(t, "10", SerializeTypedValue(10, "Int"))
	assert.Equal(t, "10", SerializeTypedValue(float64(10), "Int"))
	assert.Equal(t, "10.0", SerializeTypedValue(float64(10), "Float"))
	assert.Equal(t, "10.5", SerializeTypedValue(10.5, "Float"))
	assert.Equal(t, "true", SerializeTypedValue(true, "Boolean"))
	assert.Equal(t, `"pikachu"`, SerializeTypedValue("pikachu", "String"))
	assert.Equal(t, `"25"`, SerializeTypedValue("25", "ID"))
	assert.Equal(t, "25", SerializeTypedValue(25, "ID"))
	// Wrapped types strip their modifiers for scalar-aware printing.
	assert.Equal(t, "10", SerializeTypedValue(float64(10), "Int!"))
	// String values coerced for Int types keep the Int shape.
	assert.Equal(t, "7", SerializeTypedValue("7", "Int"))
}
