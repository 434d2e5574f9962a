package tools

import (
	"context"
	"strings"

	"github.com/querysculptor/querysculptor/internal/apperr"
	"github.com/querysculptor/querysculptor/internal/mcp"
	"github.com/querysculptor/querysculptor/internal/querystate"
	"github.com/querysculptor/querysculptor/internal/schema"
	"github.com/querysculptor/querysculptor/internal/validation"
)

// SetArgumentTool implements the set-argument and set-typed-argument MCP
// tools. The typed variant forces value-versus-type validation against
// the schema's argument type.
type SetArgumentTool struct {
	app   *AppContext
	typed bool
}

func (t *SetArgumentTool) Name() string {
	if t.typed {
		return "set-typed-argument"
	}
	return "set-argument"
}

func (t *SetArgumentTool) Description() string {
	if t.typed {
		return "Set an argument on a selected field, validating the value against the argument's schema type and rendering it with scalar-aware printing."
	}
	return "Set an argument on a selected field. Values are rendered with generic GraphQL value rules; strings starting with $ reference variables, and flags mark enum or typed values."
}

func (t *SetArgumentTool) InputSchema() map[string]any {
	properties := map[string]any{
		"sessionId": map[string]any{"type": "string"},
		"fieldPath": map[string]any{
			"type":        "string",
			"description": "Dotted path of selection keys addressing the field",
		},
		"argName": map[string]any{
			"type":        "string",
			"description": "The argument name",
		},
		"value": map[string]any{
			"description": "The argument value: scalar, list, object, null, or a $variable reference",
		},
	}
	if !t.typed {
		properties["is_variable"] = map[string]any{
			"type":        "boolean",
			"description": "Treat the value as a variable reference",
		}
		properties["is_enum"] = map[string]any{
			"type":        "boolean",
			"description": "Treat the value as an enum symbol, printed without quotes",
		}
		properties["is_typed"] = map[string]any{
			"type":        "boolean",
			"description": "Validate the value against the argument's schema type",
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   []string{"sessionId", "fieldPath", "argName"},
	}
}

func (t *SetArgumentTool) Execute(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
	id, idErr := sessionID(args)
	if idErr != nil {
		return errResult(idErr)
	}
	fieldPath, fieldErr := requireString(args, "fieldPath")
	if fieldErr != nil {
		return errResult(fieldErr)
	}
	argName, argErr := requireString(args, "argName")
	if argErr != nil {
		return errResult(argErr)
	}
	value := args["value"]

	isTyped := t.typed || boolArg(args, "is_typed")
	isVariable := !t.typed && boolArg(args, "is_variable")
	isEnum := !t.typed && boolArg(args, "is_enum")

	return t.app.withSession(ctx, id, func(qs *querystate.QueryState) (any, []string, *apperr.Error) {
		s, schemaErr := t.app.schemaFor(ctx, qs.Headers)
		if schemaErr != nil {
			return nil, nil, schemaErr
		}

		if !validation.IsValidGraphQLName(argName) {
			return nil, nil, apperr.Validation("Invalid argument name %q: must match [_A-Za-z][_0-9A-Za-z]*", argName)
		}

		fieldNames, resolveErr := qs.FieldPathFieldNames(fieldPath)
		if resolveErr != nil {
			return nil, nil, apperr.From(resolveErr)
		}
		fieldDef := s.FieldAtPath(qs.OperationTypeName, fieldNames)
		if fieldDef == nil {
			return nil, nil, apperr.Schema("Cannot resolve the schema field at path %q", fieldPath).WithPath(fieldPath)
		}
		if err := validation.ValidateArgumentInSchema(fieldDef, argName, fieldPath); err != nil {
			return nil, nil, apperr.From(err)
		}
		argDef := fieldDef.Argument(argName)

		if err := validation.ValidateInputComplexity(value, argName, t.app.inputLimits()); err != nil {
			t.app.Metrics.RecordLimitRejection("input")
			return nil, nil, apperr.From(err)
		}
		if err := validation.ValidatePaginationValue(argName, value, t.app.Config.Limits.MaxPagination); err != nil {
			t.app.Metrics.RecordLimitRejection("pagination")
			return nil, nil, apperr.From(err)
		}

		argValue, warnings, buildErr := buildArgValue(qs, s, argDef, value, isVariable, isEnum, isTyped)
		if buildErr != nil {
			return nil, nil, buildErr
		}

		if err := qs.SetArgument(fieldPath, argName, argValue); err != nil {
			return nil, nil, apperr.From(err)
		}
		return map[string]any{
			"fieldPath": fieldPath,
			"argName":   argName,
		}, warnings, nil
	})
}

// buildArgValue converts a raw tool input into the ArgValue variant the
// flags select, running the variant's validation.
func buildArgValue(qs *querystate.QueryState, s *schema.Schema, argDef *schema.InputValue, value any, isVariable, isEnum, isTyped bool) (*querystate.ArgValue, []string, *apperr.Error) {
	// A plain string with a leading $ is variable shorthand.
	if str, ok := value.(string); ok && strings.HasPrefix(str, "$") && !isEnum && !isTyped {
		isVariable = true
	}

	switch {
	case isVariable:
		name, ok := value.(string)
		if !ok {
			return nil, nil, apperr.Validation("A variable reference must be a string like \"$name\"")
		}
		if err := validation.ValidateVariableName(name); err != nil {
			return nil, nil, apperr.From(err)
		}
		if !qs.HasVariable(name) {
			return nil, nil, apperr.Validation("Variable %q is not declared; call set-variable first", name)
		}
		return querystate.VariableArg(name), nil, nil

	case isEnum:
		symbol, ok := value.(string)
		if !ok {
			return nil, nil, apperr.Validation("An enum value must be a string symbol")
		}
		if !validation.IsValidGraphQLName(symbol) {
			return nil, nil, apperr.Validation("Invalid enum value %q: must match [_A-Za-z][_0-9A-Za-z]*", symbol)
		}
		if named := s.TypeByName(argDef.Type.NamedType().Name); named != nil && named.Kind == schema.KindEnum {
			if err := validation.ValidateValueAgainstType(symbol, &argDef.Type, s); err != nil {
				return nil, nil, apperr.From(err)
			}
		}
		return querystate.EnumArg(symbol), nil, nil

	case isTyped:
		if err := validation.ValidateValueAgainstType(value, &argDef.Type, s); err != nil {
			return nil, nil, apperr.From(err)
		}
		return querystate.TypedArg(value, argDef.Type.String()), nil, nil

	default:
		if str, ok := value.(string); ok {
			coerced, _, warning := validation.CoerceStringValue(str)
			if warning != "" {
				return querystate.RawArg(coerced), []string{warning}, nil
			}
		}
		return querystate.RawArg(value), nil, nil
	}
}
