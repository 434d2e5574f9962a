package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querysculptor/querysculptor/internal/apperr"
)

func TestIsValidGraphQLName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple", "pokemons", true},
		{"leading underscore", "_internal", true},
		{"camel case", "someField", true},
		{"digits", "field2", true},
		{"leading digit", "2fast", false},
		{"dash", "field-name", false},
		{"dollar", "$var", false},
		{"empty", "", false},
		{"space", "two words", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidGraphQLName(tt.input))
		})
	}
}

func TestValidateVariableName(t *testing.T) {
	require.NoError(t, ValidateVariableName("$first"))
	require.NoError(t, ValidateVariableName("$_v1"))

	assert.Error(t, ValidateVariableName("first"))
	assert.Error(t, ValidateVariableName("$"))
	assert.Error(t, ValidateVariableName("$1st"))
}

func TestValidateOperationName(t *testing.T) {
	require.NoError(t, ValidateOperationName("GetPokemons"))
	assert.Error(t, ValidateOperationName(""))
	assert.Error(t, ValidateOperationName("Get-Pokemons"))
}

func TestValidateFragmentName(t *testing.T) {
	require.NoError(t, ValidateFragmentName("PokemonParts"))
	assert.Error(t, ValidateFragmentName("on"))
	assert.Error(t, ValidateFragmentName("1frag"))
}

func TestValidateStringLength(t *testing.T) {
	require.NoError(t, ValidateStringLength(strings.Repeat("a", 8192), "value", 8192))

	err := ValidateStringLength(strings.Repeat("a", 8193), "value", 8192)
	require.Error(t, err)
	assert.Equal(t, apperr.KindLimit, apperr.From(err).Kind)
}

func TestValidateNoControlCharacters(t *testing.T) {
	require.NoError(t, ValidateNoControlCharacters("plain text", "value"))
	require.NoError(t, ValidateNoControlCharacters("unicode ok \u00e9", "value"))

	assert.Error(t, ValidateNoControlCharacters("null\x00byte", "value"))
	assert.Error(t, ValidateNoControlCharacters("new\nline", "value"))
	assert.Error(t, ValidateNoControlCharacters("del\x7fchar", "value"))
	assert.Error(t, ValidateNoControlCharacters("c1\u0085char", "value"))
}

func TestValidatePaginationValue(t *testing.T) {
	require.NoError(t, ValidatePaginationValue("first", 500, 500))
	require.NoError(t, ValidatePaginationValue("first", "not a number", 500))
	require.NoError(t, ValidatePaginationValue("name", 600, 500))

	err := ValidatePaginationValue("first", 600, 500)
	require.Error(t, err)
	appErr := apperr.From(err)
	assert.Equal(t, apperr.KindLimit, appErr.Kind)
	assert.Equal(t, "Pagination value for 'first' (600) exceeds maximum of 500.", appErr.Message)

	assert.Error(t, ValidatePaginationValue("limit", float64(501), 500))
	assert.Error(t, ValidatePaginationValue("LAST", 501, 500))
}
