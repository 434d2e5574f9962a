package tools

import (
	"context"

	"github.com/querysculptor/querysculptor/internal/apperr"
	"github.com/querysculptor/querysculptor/internal/mcp"
	"github.com/querysculptor/querysculptor/internal/querystate"
	"github.com/querysculptor/querysculptor/internal/validation"
)

// SelectFieldTool implements the select-field MCP tool
type SelectFieldTool struct {
	app *AppContext
}

func (t *SelectFieldTool) Name() string {
	return "select-field"
}

func (t *SelectFieldTool) Description() string {
	return "Add a field to the selection set at parentPath. The field must exist on the parent type in the upstream schema."
}

func (t *SelectFieldTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sessionId": map[string]any{"type": "string"},
			"parentPath": map[string]any{
				"type":        "string",
				"description": "Dotted path of selection keys addressing the parent field; empty string selects at the root",
				"default":     "",
			},
			"fieldName": map[string]any{
				"type":        "string",
				"description": "The field to select",
			},
			"alias": map[string]any{
				"type":        "string",
				"description": "Optional alias; aliases make the selection key, letting the same field be selected twice",
			},
		},
		"required": []string{"sessionId", "fieldName"},
	}
}

func (t *SelectFieldTool) Execute(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
	id, idErr := sessionID(args)
	if idErr != nil {
		return errResult(idErr)
	}
	fieldName, fieldErr := requireString(args, "fieldName")
	if fieldErr != nil {
		return errResult(fieldErr)
	}
	parentPath, pathErr := pathArg(args, "parentPath")
	if pathErr != nil {
		return errResult(pathErr)
	}
	alias := optionalString(args, "alias")

	return t.app.withSession(ctx, id, func(qs *querystate.QueryState) (any, []string, *apperr.Error) {
		s, schemaErr := t.app.schemaFor(ctx, qs.Headers)
		if schemaErr != nil {
			return nil, nil, schemaErr
		}

		if !validation.IsValidGraphQLName(fieldName) {
			return nil, nil, apperr.Validation("Invalid field name %q: must match [_A-Za-z][_0-9A-Za-z]*", fieldName)
		}
		if alias != "" {
			if err := validation.ValidateFieldAlias(alias); err != nil {
				return nil, nil, apperr.From(err)
			}
		}

		parentFieldNames, resolveErr := qs.FieldPathFieldNames(parentPath)
		if resolveErr != nil {
			return nil, nil, apperr.From(resolveErr)
		}
		parentType := s.TypeAtPath(qs.OperationTypeName, parentFieldNames)
		if parentType == "" {
			return nil, nil, apperr.Schema("Cannot resolve the schema type at path %q", parentPath).WithPath(parentPath)
		}

		if err := validation.ValidateFieldInSchema(s, parentType, fieldName); err != nil {
			return nil, nil, apperr.From(err)
		}

		node, insertErr := qs.InsertField(parentPath, fieldName, alias)
		if insertErr != nil {
			return nil, nil, apperr.From(insertErr)
		}

		fieldPath := node.SelectionKey()
		if parentPath != "" {
			fieldPath = parentPath + "." + fieldPath
		}
		return map[string]any{
			"fieldPath":  fieldPath,
			"fieldName":  fieldName,
			"parentType": parentType,
		}, nil, nil
	})
}
