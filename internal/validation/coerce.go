package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CoerceToInteger promotes a value to an integer. Integer-valued numbers
// pass through; strings pass only when parsing in base 10 round-trips
// exactly. Booleans are rejected.
func CoerceToInteger(value any) (int64, bool) {
	switch v := value.(type) {
	case bool:
		return 0, false
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float32:
		if float64(v) == math.Trunc(float64(v)) {
			return int64(v), true
		}
		return 0, false
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) && !math.IsNaN(v) {
			return int64(v), true
		}
		return 0, false
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		if strconv.FormatInt(n, 10) != v {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// CoerceToFloat promotes a value to a float. Finite numbers and numeric
// strings pass; booleans are rejected.
func CoerceToFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case bool:
		return 0, false
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, false
		}
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// CoerceToBoolean promotes a value to a boolean. Booleans pass; the
// case-insensitive strings "true" and "false" pass; numbers are rejected.
func CoerceToBoolean(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(v) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
		return false, false
	default:
		return false, false
	}
}

// CoerceStringValue opportunistically detects when a string input looks
// like a typed scalar. When it does, the coerced value and detected type
// are returned along with a warning nudging the agent toward
// set-typed-argument. Strings that look like nothing else stay strings.
func CoerceStringValue(s string) (value any, detectedType string, warning string) {
	if n, ok := CoerceToInteger(s); ok {
		return n, "Int", fmt.Sprintf("String value %q looks like an Int and was coerced. Consider using set-typed-argument to pass typed values explicitly.", s)
	}
	if f, ok := CoerceToFloat(s); ok {
		return f, "Float", fmt.Sprintf("String value %q looks like a Float and was coerced. Consider using set-typed-argument to pass typed values explicitly.", s)
	}
	if b, ok := CoerceToBoolean(s); ok {
		return b, "Boolean", fmt.Sprintf("String value %q looks like a Boolean and was coerced. Consider using set-typed-argument to pass typed values explicitly.", s)
	}
	return s, "String", ""
}
