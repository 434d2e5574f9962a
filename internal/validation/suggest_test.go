package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("abc", "abc"))
	assert.Equal(t, 1, levenshtein("pokemn", "pokemon"))
	assert.Equal(t, 3, levenshtein("", "abc"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
}

func TestSuggestName(t *testing.T) {
	options := []string{"pokemons", "pokemon", "search"}

	suggestion, ok := SuggestName("pokemn", options)
	require.True(t, ok)
	assert.Equal(t, "pokemon", suggestion)

	suggestion, ok = SuggestName("pokemonz", options)
	require.True(t, ok)
	assert.Equal(t, "pokemons", suggestion)

	// Too far from anything.
	_, ok = SuggestName("trainers", []string{"pokemons"})
	assert.False(t, ok)

	// Short targets get a tight threshold: min(3, ceil(2*0.6)) = 2.
	_, ok = SuggestName("ab", []string{"xyz"})
	assert.False(t, ok)

	suggestion, ok = SuggestName("id", []string{"ids"})
	require.True(t, ok)
	assert.Equal(t, "ids", suggestion)
}

func TestSuggestNameNoOptions(t *testing.T) {
	_, ok := SuggestName("anything", nil)
	assert.False(t, ok)
}
