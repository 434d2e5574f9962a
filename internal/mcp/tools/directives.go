package tools

import (
	"context"
	"sort"
	"strings"

	"github.com/querysculptor/querysculptor/internal/apperr"
	"github.com/querysculptor/querysculptor/internal/mcp"
	"github.com/querysculptor/querysculptor/internal/querystate"
	"github.com/querysculptor/querysculptor/internal/validation"
)

// AddDirectiveTool implements the add-directive MCP tool
type AddDirectiveTool struct {
	app *AppContext
}

func (t *AddDirectiveTool) Name() string {
	return "add-directive"
}

func (t *AddDirectiveTool) Description() string {
	return "Attach a directive to a selected field, or to the operation itself when path is \"operation\"."
}

func (t *AddDirectiveTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sessionId": map[string]any{"type": "string"},
			"path": map[string]any{
				"type":        "string",
				"description": "Dotted field path, or \"operation\" to attach to the operation",
			},
			"name": map[string]any{
				"type":        "string",
				"description": "Directive name, with or without the leading @",
			},
			"args": map[string]any{
				"type":        "object",
				"description": "Directive arguments; string values starting with $ reference declared variables",
			},
		},
		"required": []string{"sessionId", "path", "name"},
	}
}

func (t *AddDirectiveTool) Execute(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
	id, idErr := sessionID(args)
	if idErr != nil {
		return errResult(idErr)
	}
	path, pathErr := requireString(args, "path")
	if pathErr != nil {
		return errResult(pathErr)
	}
	name, nameErr := requireString(args, "name")
	if nameErr != nil {
		return errResult(nameErr)
	}
	directiveArgs, _ := args["args"].(map[string]any)

	return t.app.withSession(ctx, id, func(qs *querystate.QueryState) (any, []string, *apperr.Error) {
		if err := validation.ValidateDirectiveName(name); err != nil {
			return nil, nil, apperr.From(err)
		}

		directive := querystate.Directive{Name: strings.TrimPrefix(name, "@")}

		// Directive arguments arrive as a JSON object; sort names so the
		// rendering stays deterministic.
		argNames := make([]string, 0, len(directiveArgs))
		for argName := range directiveArgs {
			argNames = append(argNames, argName)
		}
		sort.Strings(argNames)

		for _, argName := range argNames {
			if !validation.IsValidGraphQLName(argName) {
				return nil, nil, apperr.Validation("Invalid directive argument name %q: must match [_A-Za-z][_0-9A-Za-z]*", argName)
			}
			value := directiveArgs[argName]
			if err := validation.ValidateInputComplexity(value, argName, t.app.inputLimits()); err != nil {
				return nil, nil, apperr.From(err)
			}

			var argValue *querystate.ArgValue
			if str, ok := value.(string); ok && strings.HasPrefix(str, "$") {
				if err := validation.ValidateVariableName(str); err != nil {
					return nil, nil, apperr.From(err)
				}
				if !qs.HasVariable(str) {
					return nil, nil, apperr.Validation("Variable %q is not declared; call set-variable first", str)
				}
				argValue = querystate.VariableArg(str)
			} else {
				argValue = querystate.RawArg(value)
			}
			directive.Arguments = append(directive.Arguments, querystate.DirectiveArgument{
				Name:  argName,
				Value: argValue,
			})
		}

		if err := qs.AddDirective(path, directive); err != nil {
			return nil, nil, apperr.From(err)
		}
		return map[string]any{
			"path":      path,
			"directive": "@" + directive.Name,
		}, nil, nil
	})
}
