package tools

import (
	"context"

	"github.com/querysculptor/querysculptor/internal/apperr"
	"github.com/querysculptor/querysculptor/internal/mcp"
	"github.com/querysculptor/querysculptor/internal/querystate"
	"github.com/querysculptor/querysculptor/internal/validation"
)

// SetVariableTool implements the set-variable MCP tool
type SetVariableTool struct {
	app *AppContext
}

func (t *SetVariableTool) Name() string {
	return "set-variable"
}

func (t *SetVariableTool) Description() string {
	return "Declare an operation variable with its GraphQL type and optional default value."
}

func (t *SetVariableTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sessionId": map[string]any{"type": "string"},
			"varName": map[string]any{
				"type":        "string",
				"description": "Variable name including the leading $, e.g. \"$first\"",
			},
			"type": map[string]any{
				"type":        "string",
				"description": "GraphQL type string, e.g. \"Int\" or \"[ID!]!\"",
			},
			"default": map[string]any{
				"description": "Optional default value, shape-checked against the type",
			},
		},
		"required": []string{"sessionId", "varName", "type"},
	}
}

func (t *SetVariableTool) Execute(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
	id, idErr := sessionID(args)
	if idErr != nil {
		return errResult(idErr)
	}
	varName, nameErr := requireString(args, "varName")
	if nameErr != nil {
		return errResult(nameErr)
	}
	typeString, typeErr := requireString(args, "type")
	if typeErr != nil {
		return errResult(typeErr)
	}
	defaultValue, hasDefault := args["default"]

	return t.app.withSession(ctx, id, func(qs *querystate.QueryState) (any, []string, *apperr.Error) {
		if err := validation.ValidateVariableName(varName); err != nil {
			return nil, nil, apperr.From(err)
		}
		if err := validation.ValidateGraphQLType(typeString); err != nil {
			return nil, nil, apperr.From(err)
		}
		if err := validation.ValidateVariableType(typeString, t.app.Config.Limits.MaxVariableDepth); err != nil {
			return nil, nil, apperr.From(err)
		}
		if hasDefault {
			if err := validation.ValidateInputComplexity(defaultValue, varName, t.app.inputLimits()); err != nil {
				return nil, nil, apperr.From(err)
			}
			if err := validation.ValidateValueAgainstTypeString(defaultValue, typeString); err != nil {
				return nil, nil, apperr.From(err)
			}
		}

		qs.DeclareVariable(varName, typeString, defaultValue, hasDefault)
		return map[string]any{
			"varName": varName,
			"type":    typeString,
		}, nil, nil
	})
}

// SetVariableValueTool implements the set-variable-value MCP tool
type SetVariableValueTool struct {
	app *AppContext
}

func (t *SetVariableValueTool) Name() string {
	return "set-variable-value"
}

func (t *SetVariableValueTool) Description() string {
	return "Set the runtime value of a declared variable, used when the query executes."
}

func (t *SetVariableValueTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sessionId": map[string]any{"type": "string"},
			"varName": map[string]any{
				"type":        "string",
				"description": "Declared variable name including the leading $",
			},
			"value": map[string]any{
				"description": "The runtime value, shape-checked against the declared type",
			},
		},
		"required": []string{"sessionId", "varName", "value"},
	}
}

func (t *SetVariableValueTool) Execute(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
	id, idErr := sessionID(args)
	if idErr != nil {
		return errResult(idErr)
	}
	varName, nameErr := requireString(args, "varName")
	if nameErr != nil {
		return errResult(nameErr)
	}
	value := args["value"]

	return t.app.withSession(ctx, id, func(qs *querystate.QueryState) (any, []string, *apperr.Error) {
		if err := validation.ValidateVariableName(varName); err != nil {
			return nil, nil, apperr.From(err)
		}
		declaredType, declared := qs.VariablesSchema[varName]
		if !declared {
			return nil, nil, apperr.Validation("Variable %q is not declared; call set-variable first", varName)
		}
		if err := validation.ValidateInputComplexity(value, varName, t.app.inputLimits()); err != nil {
			return nil, nil, apperr.From(err)
		}
		if err := validation.ValidateValueAgainstTypeString(value, declaredType); err != nil {
			return nil, nil, apperr.From(err)
		}
		if err := qs.SetVariableValue(varName, value); err != nil {
			return nil, nil, apperr.From(err)
		}
		return map[string]any{
			"varName": varName,
			"type":    declaredType,
		}, nil, nil
	})
}
