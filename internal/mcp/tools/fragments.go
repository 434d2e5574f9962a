package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/querysculptor/querysculptor/internal/apperr"
	"github.com/querysculptor/querysculptor/internal/mcp"
	"github.com/querysculptor/querysculptor/internal/querystate"
	"github.com/querysculptor/querysculptor/internal/schema"
	"github.com/querysculptor/querysculptor/internal/validation"
)

// SpreadFragmentTool implements the spread-fragment MCP tool
type SpreadFragmentTool struct {
	app *AppContext
}

func (t *SpreadFragmentTool) Name() string {
	return "spread-fragment"
}

func (t *SpreadFragmentTool) Description() string {
	return "Spread a named fragment into the selection set at path. The fragment may be defined before or after spreading."
}

func (t *SpreadFragmentTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sessionId": map[string]any{"type": "string"},
			"path": map[string]any{
				"type":        "string",
				"description": "Dotted field path; empty string spreads at the root",
				"default":     "",
			},
			"fragmentName": map[string]any{
				"type":        "string",
				"description": "The fragment name to spread",
			},
		},
		"required": []string{"sessionId", "fragmentName"},
	}
}

func (t *SpreadFragmentTool) Execute(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
	id, idErr := sessionID(args)
	if idErr != nil {
		return errResult(idErr)
	}
	fragmentName, nameErr := requireString(args, "fragmentName")
	if nameErr != nil {
		return errResult(nameErr)
	}
	path, pathErr := pathArg(args, "path")
	if pathErr != nil {
		return errResult(pathErr)
	}

	return t.app.withSession(ctx, id, func(qs *querystate.QueryState) (any, []string, *apperr.Error) {
		if err := validation.ValidateFragmentName(fragmentName); err != nil {
			return nil, nil, apperr.From(err)
		}
		if err := qs.SpreadFragment(path, fragmentName); err != nil {
			return nil, nil, apperr.From(err)
		}

		var warnings []string
		if _, defined := qs.Fragments[fragmentName]; !defined {
			warnings = append(warnings, fmt.Sprintf("Fragment %q is not defined yet; define it with define-fragment before building", fragmentName))
		}
		return map[string]any{
			"path":         path,
			"fragmentName": fragmentName,
		}, warnings, nil
	})
}

// DefineFragmentTool implements the define-fragment MCP tool
type DefineFragmentTool struct {
	app *AppContext
}

func (t *DefineFragmentTool) Name() string {
	return "define-fragment"
}

func (t *DefineFragmentTool) Description() string {
	return "Define or replace a named fragment on a schema type. Fields are given as an object: {\"name\": true} selects a leaf, {\"owner\": {\"name\": true}} nests."
}

func (t *DefineFragmentTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sessionId": map[string]any{"type": "string"},
			"name": map[string]any{
				"type":        "string",
				"description": "The fragment name",
			},
			"onType": map[string]any{
				"type":        "string",
				"description": "The schema type the fragment is conditioned on",
			},
			"fields": map[string]any{
				"type":        "object",
				"description": "Selected fields: true for a leaf, a nested object for subselections",
			},
		},
		"required": []string{"sessionId", "name", "onType", "fields"},
	}
}

func (t *DefineFragmentTool) Execute(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
	id, idErr := sessionID(args)
	if idErr != nil {
		return errResult(idErr)
	}
	name, nameErr := requireString(args, "name")
	if nameErr != nil {
		return errResult(nameErr)
	}
	onType, typeErr := requireString(args, "onType")
	if typeErr != nil {
		return errResult(typeErr)
	}
	fields, _ := args["fields"].(map[string]any)

	return t.app.withSession(ctx, id, func(qs *querystate.QueryState) (any, []string, *apperr.Error) {
		if err := validation.ValidateFragmentName(name); err != nil {
			return nil, nil, apperr.From(err)
		}

		s, schemaErr := t.app.schemaFor(ctx, qs.Headers)
		if schemaErr != nil {
			return nil, nil, schemaErr
		}
		if err := validateTypeExists(s, onType); err != nil {
			return nil, nil, err
		}
		if len(fields) == 0 {
			return nil, nil, apperr.Validation("A fragment must select at least one field")
		}

		fieldMap, order, buildErr := buildSelectionFields(s, onType, fields)
		if buildErr != nil {
			return nil, nil, buildErr
		}

		qs.DefineFragment(name, onType, fieldMap, order)
		return map[string]any{
			"name":   name,
			"onType": onType,
			"fields": order,
		}, nil, nil
	})
}

// AddInlineFragmentTool implements the add-inline-fragment MCP tool
type AddInlineFragmentTool struct {
	app *AppContext
}

func (t *AddInlineFragmentTool) Name() string {
	return "add-inline-fragment"
}

func (t *AddInlineFragmentTool) Description() string {
	return "Add an inline \"... on Type\" fragment to the selection set at path, optionally with an initial field selection."
}

func (t *AddInlineFragmentTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sessionId": map[string]any{"type": "string"},
			"path": map[string]any{
				"type":        "string",
				"description": "Dotted field path; empty string adds at the root",
				"default":     "",
			},
			"onType": map[string]any{
				"type":        "string",
				"description": "The schema type the inline fragment is conditioned on",
			},
			"fields": map[string]any{
				"type":        "object",
				"description": "Optional initial selections, in the define-fragment field shape",
			},
		},
		"required": []string{"sessionId", "onType"},
	}
}

func (t *AddInlineFragmentTool) Execute(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
	id, idErr := sessionID(args)
	if idErr != nil {
		return errResult(idErr)
	}
	onType, typeErr := requireString(args, "onType")
	if typeErr != nil {
		return errResult(typeErr)
	}
	path, pathErr := pathArg(args, "path")
	if pathErr != nil {
		return errResult(pathErr)
	}
	fields, _ := args["fields"].(map[string]any)

	return t.app.withSession(ctx, id, func(qs *querystate.QueryState) (any, []string, *apperr.Error) {
		s, schemaErr := t.app.schemaFor(ctx, qs.Headers)
		if schemaErr != nil {
			return nil, nil, schemaErr
		}
		if err := validateTypeExists(s, onType); err != nil {
			return nil, nil, err
		}

		inline, addErr := qs.AddInlineFragment(path, onType)
		if addErr != nil {
			return nil, nil, apperr.From(addErr)
		}

		if len(fields) > 0 {
			fieldMap, order, buildErr := buildSelectionFields(s, onType, fields)
			if buildErr != nil {
				return nil, nil, buildErr
			}
			inline.Selections = fieldMap
			inline.SelectionOrder = order
		}

		return map[string]any{
			"path":   path,
			"onType": onType,
		}, nil, nil
	})
}

// validateTypeExists checks a type name against the schema with a
// suggestion on a near miss.
func validateTypeExists(s *schema.Schema, typeName string) *apperr.Error {
	if s.HasType(typeName) {
		return nil
	}
	err := apperr.Schema("Type '%s' not found on the schema.", typeName)
	if suggestion, ok := validation.SuggestName(typeName, s.TypeNames()); ok {
		err.Message = fmt.Sprintf("%s Did you mean '%s'?", err.Message, suggestion)
		err = err.WithSuggestion(suggestion)
	}
	return err
}

// buildSelectionFields converts the {"field": true | {...}} shape into
// field nodes, validating every field against the schema. Keys sort
// alphabetically since JSON objects carry no order.
func buildSelectionFields(s *schema.Schema, parentType string, fields map[string]any) (map[string]*querystate.FieldNode, []string, *apperr.Error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make(map[string]*querystate.FieldNode, len(names))
	for _, fieldName := range names {
		if !validation.IsValidGraphQLName(fieldName) {
			return nil, nil, apperr.Validation("Invalid field name %q: must match [_A-Za-z][_0-9A-Za-z]*", fieldName)
		}
		if err := validation.ValidateFieldInSchema(s, parentType, fieldName); err != nil {
			return nil, nil, apperr.From(err)
		}

		node := querystate.NewFieldNode(fieldName, "")
		switch spec := fields[fieldName].(type) {
		case bool:
			// Leaf selection.
		case map[string]any:
			fieldDef := s.FieldOn(parentType, fieldName)
			childType := parentType
			if fieldDef != nil {
				childType = fieldDef.Type.NamedType().Name
			}
			children, childOrder, err := buildSelectionFields(s, childType, spec)
			if err != nil {
				return nil, nil, err
			}
			node.Fields = children
			node.FieldOrder = childOrder
		default:
			return nil, nil, apperr.Validation("Field %q must map to true or a nested object, got %T", fieldName, spec)
		}
		result[fieldName] = node
	}
	return result, names, nil
}
