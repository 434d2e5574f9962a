package validation

import (
	"fmt"

	"github.com/querysculptor/querysculptor/internal/apperr"
	"github.com/querysculptor/querysculptor/internal/schema"
)

// validateScalar checks a value against a named scalar. Unknown (custom)
// scalars accept anything.
func validateScalar(value any, typeName string) error {
	switch typeName {
	case "String":
		if _, ok := value.(string); !ok {
			return apperr.Validation("Expected a String value, got %s", describeValue(value))
		}
	case "ID":
		switch value.(type) {
		case string, int, int32, int64, float64:
		default:
			return apperr.Validation("Expected an ID (string or number), got %s", describeValue(value))
		}
	case "Int":
		if _, ok := CoerceToInteger(value); !ok {
			return apperr.Validation("Expected an Int value, got %s", describeValue(value))
		}
	case "Float":
		if _, ok := CoerceToFloat(value); !ok {
			return apperr.Validation("Expected a Float value, got %s", describeValue(value))
		}
	case "Boolean":
		if _, ok := CoerceToBoolean(value); !ok {
			return apperr.Validation("Expected a Boolean value, got %s", describeValue(value))
		}
	}
	return nil
}

func describeValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("string %q", v)
	case bool:
		return fmt.Sprintf("boolean %v", v)
	case float64, float32, int, int32, int64:
		return fmt.Sprintf("number %v", v)
	case []any:
		return "a list"
	case map[string]any:
		return "an object"
	default:
		return fmt.Sprintf("%T", value)
	}
}

// ValidateValueAgainstTypeString checks value shape against a type string
// like "[Int!]!". Null succeeds against nullable types and fails against
// non-null ones. A single value is accepted where a list is expected, per
// GraphQL input coercion.
func ValidateValueAgainstTypeString(value any, typeString string) error {
	expr, err := parseTypeExpr(typeString)
	if err != nil {
		return err
	}
	return validateValueAgainstExpr(value, expr, typeString)
}

func validateValueAgainstExpr(value any, expr *typeExpr, original string) error {
	if value == nil {
		if expr.nonNull {
			return apperr.Validation("Null is not allowed for non-null type %q", original)
		}
		return nil
	}

	if expr.list {
		if items, ok := value.([]any); ok {
			for i, item := range items {
				if err := validateValueAgainstExpr(item, expr.elem, original); err != nil {
					return apperr.Validation("List element %d: %s", i, err.Error())
				}
			}
			return nil
		}
		// Single value coerces to a one-element list.
		return validateValueAgainstExpr(value, expr.elem, original)
	}

	return validateScalar(value, expr.name)
}

// ValidateValueAgainstType checks value shape against a schema type
// reference, following non-null and list wrappers. With the schema
// available, enum membership and input-object fields are checked too.
func ValidateValueAgainstType(value any, ref *schema.TypeRef, s *schema.Schema) error {
	if value == nil {
		if ref.IsNonNull() {
			return apperr.Validation("Null is not allowed for non-null type %q", ref.String())
		}
		return nil
	}

	switch ref.Kind {
	case schema.KindNonNull:
		return ValidateValueAgainstType(value, ref.OfType, s)
	case schema.KindList:
		if items, ok := value.([]any); ok {
			for i, item := range items {
				if err := ValidateValueAgainstType(item, ref.OfType, s); err != nil {
					return apperr.Validation("List element %d: %s", i, err.Error())
				}
			}
			return nil
		}
		return ValidateValueAgainstType(value, ref.OfType, s)
	}

	named := s.TypeByName(ref.Name)
	if named == nil {
		// Custom scalar or type outside the introspected set.
		return validateScalar(value, ref.Name)
	}

	switch named.Kind {
	case schema.KindScalar:
		return validateScalar(value, named.Name)
	case schema.KindEnum:
		symbol, ok := value.(string)
		if !ok {
			return apperr.Validation("Expected an enum value for type %q, got %s", named.Name, describeValue(value))
		}
		for _, ev := range named.EnumValues {
			if ev.Name == symbol {
				return nil
			}
		}
		err := apperr.Validation("Value %q is not a member of enum %q", symbol, named.Name)
		names := make([]string, len(named.EnumValues))
		for i, ev := range named.EnumValues {
			names[i] = ev.Name
		}
		if suggestion, ok := SuggestName(symbol, names); ok {
			err = err.WithSuggestion(suggestion)
			err.Message = fmt.Sprintf("%s. Did you mean '%s'?", err.Message, suggestion)
		}
		return err
	case schema.KindInputObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return apperr.Validation("Expected an input object for type %q, got %s", named.Name, describeValue(value))
		}
		inputFields := make(map[string]*schema.InputValue, len(named.InputFields))
		for i := range named.InputFields {
			inputFields[named.InputFields[i].Name] = &named.InputFields[i]
		}
		for key, fieldValue := range obj {
			def, ok := inputFields[key]
			if !ok {
				err := apperr.Validation("Field %q is not defined on input type %q", key, named.Name)
				names := make([]string, 0, len(inputFields))
				for name := range inputFields {
					names = append(names, name)
				}
				if suggestion, ok := SuggestName(key, names); ok {
					err = err.WithSuggestion(suggestion)
					err.Message = fmt.Sprintf("%s. Did you mean '%s'?", err.Message, suggestion)
				}
				return err
			}
			if err := ValidateValueAgainstType(fieldValue, &def.Type, s); err != nil {
				return apperr.Validation("Input field %q: %s", key, err.Error())
			}
		}
		for i := range named.InputFields {
			def := &named.InputFields[i]
			if def.Type.IsNonNull() && def.DefaultValue == nil {
				if _, present := obj[def.Name]; !present {
					return apperr.Validation("Required input field %q of type %q is missing", def.Name, named.Name)
				}
			}
		}
		return nil
	default:
		return apperr.Validation("Type %q (%s) cannot be used as an input value", named.Name, named.Kind)
	}
}
