package validation

import (
	"github.com/querysculptor/querysculptor/internal/apperr"
)

// InputLimits bounds the shape of an agent-supplied input blob.
type InputLimits struct {
	MaxDepth        int
	MaxElements     int
	MaxStringLength int
}

// ValidateInputComplexity walks an input value and enforces nesting depth,
// total element count, per-string length, and the control-character ban.
// Recursion is bounded by MaxDepth, which also guards against any cyclic
// value a caller could construct outside JSON decoding.
func ValidateInputComplexity(value any, name string, limits InputLimits) error {
	elements := 0
	return walkInput(value, name, limits, 0, &elements)
}

func walkInput(value any, name string, limits InputLimits, depth int, elements *int) error {
	if depth > limits.MaxDepth {
		return apperr.Limit("Input %q exceeds maximum nesting depth of %d", name, limits.MaxDepth)
	}

	*elements++
	if *elements > limits.MaxElements {
		return apperr.Limit("Input %q exceeds maximum element count of %d", name, limits.MaxElements)
	}

	switch v := value.(type) {
	case string:
		if err := ValidateStringLength(v, name, limits.MaxStringLength); err != nil {
			return err
		}
		if err := ValidateNoControlCharacters(v, name); err != nil {
			return err
		}
	case []any:
		for _, item := range v {
			if err := walkInput(item, name, limits, depth+1, elements); err != nil {
				return err
			}
		}
	case map[string]any:
		for key, item := range v {
			if err := ValidateStringLength(key, name, limits.MaxStringLength); err != nil {
				return err
			}
			if err := ValidateNoControlCharacters(key, name); err != nil {
				return err
			}
			if err := walkInput(item, name, limits, depth+1, elements); err != nil {
				return err
			}
		}
	}
	return nil
}
