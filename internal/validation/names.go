// Package validation implements the schema-agnostic and schema-aware
// checks that gate every mutation of a query state: name syntax, type
// syntax, value-versus-type shape, resource limits, similarity
// suggestions, and GraphQL value serialization.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/querysculptor/querysculptor/internal/apperr"
)

// graphqlNameRegex matches valid names per the GraphQL grammar.
var graphqlNameRegex = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)

// paginationArgs are argument names whose numeric values are capped.
var paginationArgs = map[string]bool{
	"first": true,
	"last":  true,
	"limit": true,
	"top":   true,
	"count": true,
}

// IsValidGraphQLName reports whether s is a syntactically valid GraphQL name.
func IsValidGraphQLName(s string) bool {
	return graphqlNameRegex.MatchString(s)
}

// ValidateOperationName checks an operation name.
func ValidateOperationName(name string) error {
	if name == "" {
		return apperr.Validation("Operation name cannot be empty")
	}
	if !IsValidGraphQLName(name) {
		return apperr.Validation("Invalid operation name %q: must match [_A-Za-z][_0-9A-Za-z]*", name)
	}
	return nil
}

// ValidateVariableName checks a variable name, which must carry the
// leading $.
func ValidateVariableName(name string) error {
	if !strings.HasPrefix(name, "$") {
		return apperr.Validation("Invalid variable name %q: must start with $", name)
	}
	bare := name[1:]
	if bare == "" || !IsValidGraphQLName(bare) {
		return apperr.Validation("Invalid variable name %q: must match $[_A-Za-z][_0-9A-Za-z]*", name)
	}
	return nil
}

// ValidateFieldAlias checks a field alias.
func ValidateFieldAlias(alias string) error {
	if !IsValidGraphQLName(alias) {
		return apperr.Validation("Invalid field alias %q: must match [_A-Za-z][_0-9A-Za-z]*", alias)
	}
	return nil
}

// ValidateFragmentName checks a fragment name. "on" is reserved.
func ValidateFragmentName(name string) error {
	if name == "on" {
		return apperr.Validation("Invalid fragment name %q: \"on\" is reserved", name)
	}
	if !IsValidGraphQLName(name) {
		return apperr.Validation("Invalid fragment name %q: must match [_A-Za-z][_0-9A-Za-z]*", name)
	}
	return nil
}

// ValidateDirectiveName checks a directive name, with or without the
// leading @.
func ValidateDirectiveName(name string) error {
	bare := strings.TrimPrefix(name, "@")
	if !IsValidGraphQLName(bare) {
		return apperr.Validation("Invalid directive name %q: must match [_A-Za-z][_0-9A-Za-z]*", name)
	}
	return nil
}

// ValidateStringLength rejects strings longer than maxLen.
func ValidateStringLength(value, name string, maxLen int) error {
	if len(value) > maxLen {
		return apperr.Limit("Value for %q exceeds maximum length of %d characters (got %d)", name, maxLen, len(value))
	}
	return nil
}

// ValidateNoControlCharacters rejects Unicode C0/C1 control characters.
func ValidateNoControlCharacters(value, name string) error {
	for _, r := range value {
		if (r >= 0x0000 && r <= 0x001F) || (r >= 0x007F && r <= 0x009F) {
			return apperr.Validation("Value for %q contains control character U+%04X", name, r)
		}
	}
	return nil
}

// IsPaginationArg reports whether argName is a pagination-style argument.
func IsPaginationArg(argName string) bool {
	return paginationArgs[strings.ToLower(argName)]
}

// ValidatePaginationValue caps numeric values of pagination-style
// arguments at max.
func ValidatePaginationValue(argName string, value any, max int) error {
	if !IsPaginationArg(argName) {
		return nil
	}
	n, ok := numericValue(value)
	if !ok {
		return nil
	}
	if n > float64(max) {
		return apperr.Limit("Pagination value for '%s' (%s) exceeds maximum of %d.", argName, formatNumber(n), max)
	}
	return nil
}

func numericValue(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%g", n)
}
