package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querysculptor/querysculptor/internal/apperr"
	"github.com/querysculptor/querysculptor/internal/querystate"
	"github.com/querysculptor/querysculptor/internal/testutil"
)

func TestValidateQuerySyntax(t *testing.T) {
	assert.Empty(t, ValidateQuerySyntax("query { pokemons { name } }"))
	assert.NotEmpty(t, ValidateQuerySyntax("query { pokemons { name }"))
	assert.NotEmpty(t, ValidateQuerySyntax("not graphql at all }{"))
}

func TestValidateFieldInSchema(t *testing.T) {
	s := testutil.TestSchema(t)

	require.NoError(t, ValidateFieldInSchema(s, "Query", "pokemons"))
	require.NoError(t, ValidateFieldInSchema(s, "Pokemon", "name"))
	require.NoError(t, ValidateFieldInSchema(s, "Query", "__typename"))

	err := ValidateFieldInSchema(s, "Query", "pokemn")
	require.Error(t, err)
	appErr := apperr.From(err)
	assert.Equal(t, apperr.KindSchema, appErr.Kind)
	assert.Equal(t, "Field 'pokemn' not found on type 'Query'. Did you mean 'pokemon'?", appErr.Message)

	err = ValidateFieldInSchema(s, "Query", "completelywrong")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "Did you mean")
}

func TestValidateArgumentInSchema(t *testing.T) {
	s := testutil.TestSchema(t)
	field := s.FieldOn("Query", "pokemons")
	require.NotNil(t, field)

	require.NoError(t, ValidateArgumentInSchema(field, "first", "pokemons"))

	err := ValidateArgumentInSchema(field, "frist", "pokemons")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Did you mean 'first'?")
	assert.Contains(t, err.Error(), "Available arguments: first, last, after")

	noArgs := s.FieldOn("Pokemon", "name")
	require.NotNil(t, noArgs)
	err = ValidateArgumentInSchema(noArgs, "anything", "pokemons.name")
	require.Error(t, err)
	assert.Equal(t, "Field 'name' does not accept any arguments.", apperr.From(err).Message)
}

func TestValidateAgainstSchema(t *testing.T) {
	s := testutil.TestSchema(t)

	assert.Empty(t, ValidateAgainstSchema("query { pokemons { name } }", s))
	assert.Empty(t, ValidateAgainstSchema("query ($n: Int) { pokemons(first: $n) { name } }", s))

	errs := ValidateAgainstSchema("query { pokemn { name } }", s)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Did you mean 'pokemon'?")

	errs = ValidateAgainstSchema("query { pokemons(frist: 1) { name } }", s)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "Argument 'frist' not found")

	// Composite field without subselection.
	errs = ValidateAgainstSchema("query { pokemons }", s)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "must have a selection of subfields")

	// Leaf field with subselection.
	errs = ValidateAgainstSchema("query { pokemons { name { x } } }", s)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "cannot have a selection set")

	// Undefined variable.
	errs = ValidateAgainstSchema("query { pokemons(first: $n) { name } }", s)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "$n")

	// Unknown fragment spread.
	errs = ValidateAgainstSchema("query { pokemons { ...Missing } }", s)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "no matching fragment definition")

	// Fragment on unknown type.
	errs = ValidateAgainstSchema("query { pokemons { name } } fragment F on Nothing { id }", s)
	require.NotEmpty(t, errs)

	// Valid fragment and spread.
	assert.Empty(t, ValidateAgainstSchema(
		"query { pokemons { ...Parts } } fragment Parts on Pokemon { id name }", s))

	// Inline fragment on union member.
	assert.Empty(t, ValidateAgainstSchema(
		"query { search(term: \"x\") { ... on Pokemon { name } } }", s))
}

func TestValidateRequiredArguments(t *testing.T) {
	s := testutil.TestSchema(t)

	qs := querystate.New(nil, querystate.OperationQuery, "Query", "")
	_, err := qs.InsertField("", "pokemon", "")
	require.NoError(t, err)
	_, err = qs.InsertField("pokemon", "name", "")
	require.NoError(t, err)

	warnings := ValidateRequiredArguments(s, qs)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "pokemon")
	assert.Contains(t, warnings[0], "'id'")
	assert.Contains(t, warnings[0], "ID!")

	// Setting the argument clears the warning.
	require.NoError(t, qs.SetArgument("pokemon", "id", querystate.VariableArg("$id")))
	assert.Empty(t, ValidateRequiredArguments(s, qs))
}
