package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querysculptor/querysculptor/internal/schema"
	"github.com/querysculptor/querysculptor/internal/testutil"
)

func TestValidateValueAgainstTypeStringNull(t *testing.T) {
	// Null succeeds against nullable types and fails against non-null.
	require.NoError(t, ValidateValueAgainstTypeString(nil, "Int"))
	require.NoError(t, ValidateValueAgainstTypeString(nil, "[String]"))

	assert.Error(t, ValidateValueAgainstTypeString(nil, "Int!"))
	assert.Error(t, ValidateValueAgainstTypeString(nil, "[String]!"))
}

func TestValidateValueAgainstTypeStringScalars(t *testing.T) {
	require.NoError(t, ValidateValueAgainstTypeString("pikachu", "String"))
	require.NoError(t, ValidateValueAgainstTypeString(42, "Int"))
	require.NoError(t, ValidateValueAgainstTypeString("42", "Int"))
	require.NoError(t, ValidateValueAgainstTypeString(10.5, "Float"))
	require.NoError(t, ValidateValueAgainstTypeString(true, "Boolean"))
	require.NoError(t, ValidateValueAgainstTypeString("abc123", "ID"))
	require.NoError(t, ValidateValueAgainstTypeString(123, "ID"))

	assert.Error(t, ValidateValueAgainstTypeString(42, "String"))
	assert.Error(t, ValidateValueAgainstTypeString(10.5, "Int"))
	assert.Error(t, ValidateValueAgainstTypeString(true, "Int"))
	assert.Error(t, ValidateValueAgainstTypeString(1, "Boolean"))
	assert.Error(t, ValidateValueAgainstTypeString(true, "ID"))
}

func TestValidateValueAgainstTypeStringLists(t *testing.T) {
	require.NoError(t, ValidateValueAgainstTypeString([]any{1, 2, 3}, "[Int]"))
	require.NoError(t, ValidateValueAgainstTypeString([]any{nil, 2}, "[Int]"))
	// A single value coerces to a one-element list.
	require.NoError(t, ValidateValueAgainstTypeString(1, "[Int]"))

	assert.Error(t, ValidateValueAgainstTypeString([]any{1, "two"}, "[Int]"))
	assert.Error(t, ValidateValueAgainstTypeString([]any{nil}, "[Int!]"))
}

func TestValidateValueAgainstTypeWithSchema(t *testing.T) {
	s := testutil.TestSchema(t)

	enumRef := &schema.TypeRef{Kind: schema.KindEnum, Name: "ElementType"}
	require.NoError(t, ValidateValueAgainstType("FIRE", enumRef, s))

	err := ValidateValueAgainstType("FIR", enumRef, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Did you mean 'FIRE'?")

	assert.Error(t, ValidateValueAgainstType(3, enumRef, s))
}

func TestValidateValueAgainstInputObject(t *testing.T) {
	s := testutil.TestSchema(t)
	inputRef := &schema.TypeRef{Kind: schema.KindInputObject, Name: "PokemonInput"}

	require.NoError(t, ValidateValueAgainstType(map[string]any{
		"name":   "Bulbasaur",
		"weight": 6.9,
	}, inputRef, s))

	// Required field missing.
	err := ValidateValueAgainstType(map[string]any{"weight": 6.9}, inputRef, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")

	// Unknown field with suggestion.
	err = ValidateValueAgainstType(map[string]any{"name": "x", "wight": 1.0}, inputRef, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Did you mean 'weight'?")

	// Wrong shape for a field.
	assert.Error(t, ValidateValueAgainstType(map[string]any{"name": 42}, inputRef, s))

	// Not an object at all.
	assert.Error(t, ValidateValueAgainstType("Bulbasaur", inputRef, s))
}

func TestValidateValueAgainstNonNullWrapper(t *testing.T) {
	s := testutil.TestSchema(t)
	ref := &schema.TypeRef{
		Kind:   schema.KindNonNull,
		OfType: &schema.TypeRef{Kind: schema.KindScalar, Name: "ID"},
	}

	require.NoError(t, ValidateValueAgainstType("25", ref, s))
	assert.Error(t, ValidateValueAgainstType(nil, ref, s))
}
