package validation

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceToInteger(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  int64
		ok    bool
	}{
		{"int", 42, 42, true},
		{"int64", int64(-7), -7, true},
		{"integral float", float64(10), 10, true},
		{"fractional float", 10.5, 0, false},
		{"numeric string", "42", 42, true},
		{"negative string", "-13", -13, true},
		{"leading zero string", "042", 0, false},
		{"plus sign string", "+42", 0, false},
		{"float string", "10.5", 0, false},
		{"boolean", true, 0, false},
		{"word", "ten", 0, false},
		{"empty string", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceToInteger(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCoerceToIntegerStringRoundTrip(t *testing.T) {
	// Any string the coercion accepts must round-trip exactly.
	for _, s := range []string{"0", "1", "-1", "42", "987654321"} {
		n, ok := CoerceToInteger(s)
		require.True(t, ok, s)
		assert.Equal(t, s, strconv.FormatInt(n, 10))
	}
}

func TestCoerceToFloat(t *testing.T) {
	f, ok := CoerceToFloat("10.5")
	require.True(t, ok)
	assert.Equal(t, 10.5, f)

	_, ok = CoerceToFloat(true)
	assert.False(t, ok)

	_, ok = CoerceToFloat("not a number")
	assert.False(t, ok)

	f, ok = CoerceToFloat(3)
	require.True(t, ok)
	assert.Equal(t, 3.0, f)
}

func TestCoerceToBoolean(t *testing.T) {
	b, ok := CoerceToBoolean("TRUE")
	require.True(t, ok)
	assert.True(t, b)

	b, ok = CoerceToBoolean("false")
	require.True(t, ok)
	assert.False(t, b)

	_, ok = CoerceToBoolean(1)
	assert.False(t, ok)

	_, ok = CoerceToBoolean("yes")
	assert.False(t, ok)

	b, ok = CoerceToBoolean(true)
	require.True(t, ok)
	assert.True(t, b)
}

func TestCoerceStringValue(t *testing.T) {
	value, detected, warning := CoerceStringValue("42")
	assert.Equal(t, int64(42), value)
	assert.Equal(t, "Int", detected)
	assert.Contains(t, warning, "Consider using set-typed-argument")

	value, detected, warning = CoerceStringValue("10.5")
	assert.Equal(t, 10.5, value)
	assert.Equal(t, "Float", detected)
	assert.Contains(t, warning, "Consider using set-typed-argument")

	value, detected, warning = CoerceStringValue("true")
	assert.Equal(t, true, value)
	assert.Equal(t, "Boolean", detected)
	assert.Contains(t, warning, "Consider using set-typed-argument")

	value, detected, warning = CoerceStringValue("pikachu")
	assert.Equal(t, "pikachu", value)
	assert.Equal(t, "String", detected)
	assert.Empty(t, warning)
}
