package validation

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql/language/parser"

	"github.com/querysculptor/querysculptor/internal/apperr"
)

// builtinScalars are the GraphQL spec scalars.
var builtinScalars = map[string]bool{
	"Int":     true,
	"Float":   true,
	"String":  true,
	"Boolean": true,
	"ID":      true,
}

// typeNameMistakes maps common mis-namings from other type systems to
// the GraphQL scalar the agent probably meant.
var typeNameMistakes = map[string]string{
	"integer": "Int",
	"int":     "Int",
	"number":  "Int",
	"long":    "Int",
	"float":   "Float",
	"double":  "Float",
	"decimal": "Float",
	"string":  "String",
	"str":     "String",
	"text":    "String",
	"bool":    "Boolean",
	"boolean": "Boolean",
	"id":      "ID",
}

// probeParse validates a type string by parsing a minimal operation that
// uses it in variable-definition position.
func probeParse(typeString string) error {
	probe := fmt.Sprintf("query Test($v: %s) { __typename }", typeString)
	if _, err := parser.Parse(parser.ParseParams{Source: probe}); err != nil {
		return apperr.Validation("Invalid type %q: not parseable as a GraphQL type", typeString)
	}
	return nil
}

// ValidateVariableType checks a variable type string: non-empty, list
// nesting bounded by maxDepth, and parseable in variable position.
func ValidateVariableType(typeString string, maxDepth int) error {
	if strings.TrimSpace(typeString) == "" {
		return apperr.Validation("Variable type cannot be empty")
	}
	if strings.Count(typeString, "[") > maxDepth {
		return apperr.Limit("Variable type %q exceeds maximum list nesting depth of %d", typeString, maxDepth)
	}
	return probeParse(typeString)
}

// stripModifiers removes non-null and list markers, leaving the named type.
func stripModifiers(typeString string) string {
	s := strings.TrimSpace(typeString)
	s = strings.ReplaceAll(s, "!", "")
	s = strings.ReplaceAll(s, "[", "")
	s = strings.ReplaceAll(s, "]", "")
	return strings.TrimSpace(s)
}

// ValidateGraphQLType checks a type string and maps common mistakes
// (integer, bool, number, ...) to a helpful suggestion.
func ValidateGraphQLType(typeString string) error {
	name := stripModifiers(typeString)
	if name == "" {
		return apperr.Validation("Type cannot be empty")
	}
	if builtinScalars[name] {
		return nil
	}
	if suggestion, ok := typeNameMistakes[strings.ToLower(name)]; ok && suggestion != name {
		return apperr.Validation("Invalid type '%s'. Did you mean '%s'?", name, suggestion).WithSuggestion(suggestion)
	}
	if !IsValidGraphQLName(name) {
		return apperr.Validation("Invalid type %q: not a valid GraphQL type name", name)
	}
	return probeParse(typeString)
}

// typeExpr is the parsed shape of a type string like "[Int!]!".
type typeExpr struct {
	nonNull bool
	list    bool
	elem    *typeExpr // set when list
	name    string    // set when not a list
}

// parseTypeExpr parses a GraphQL type string into a typeExpr.
func parseTypeExpr(typeString string) (*typeExpr, error) {
	s := strings.TrimSpace(typeString)
	if s == "" {
		return nil, apperr.Validation("Type cannot be empty")
	}

	expr := &typeExpr{}
	if strings.HasSuffix(s, "!") {
		expr.nonNull = true
		s = strings.TrimSpace(strings.TrimSuffix(s, "!"))
	}
	if strings.HasPrefix(s, "[") {
		if !strings.HasSuffix(s, "]") {
			return nil, apperr.Validation("Invalid type %q: unbalanced brackets", typeString)
		}
		inner, err := parseTypeExpr(s[1 : len(s)-1])
		if err != nil {
			return nil, err
		}
		expr.list = true
		expr.elem = inner
		return expr, nil
	}
	if !IsValidGraphQLName(s) {
		return nil, apperr.Validation("Invalid type %q: not a valid GraphQL type name", typeString)
	}
	expr.name = s
	return expr, nil
}
