package tools

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/querysculptor/querysculptor/internal/apperr"
	"github.com/querysculptor/querysculptor/internal/mcp"
	"github.com/querysculptor/querysculptor/internal/querystate"
	"github.com/querysculptor/querysculptor/internal/session"
	"github.com/querysculptor/querysculptor/internal/validation"
)

// StartSessionTool implements the start-session MCP tool
type StartSessionTool struct {
	app *AppContext
}

func (t *StartSessionTool) Name() string {
	return "start-session"
}

func (t *StartSessionTool) Description() string {
	return "Start a new query-building session for the configured GraphQL endpoint. Returns the session id used by every other tool."
}

func (t *StartSessionTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"operationType": map[string]any{
				"type":        "string",
				"description": "The operation type to build",
				"enum":        []string{"query", "mutation", "subscription"},
				"default":     "query",
			},
			"operationName": map[string]any{
				"type":        "string",
				"description": "Optional operation name",
			},
			"headers": map[string]any{
				"type":        "object",
				"description": "HTTP headers forwarded to the upstream on introspection and execution",
				"additionalProperties": map[string]any{
					"type": "string",
				},
			},
		},
	}
}

func (t *StartSessionTool) Execute(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
	operationType := optionalString(args, "operationType")
	if operationType == "" {
		operationType = querystate.OperationQuery
	}
	if !querystate.ValidOperationType(operationType) {
		return errResult(apperr.Validation("Unknown operation type %q: must be query, mutation, or subscription", operationType))
	}

	operationName := optionalString(args, "operationName")
	if operationName != "" {
		if err := validation.ValidateOperationName(operationName); err != nil {
			return errResult(err)
		}
	}

	headers, err := headerMap(args, t.app)
	if err != nil {
		return errResult(err)
	}

	s, schemaErr := t.app.schemaFor(ctx, headers)
	if schemaErr != nil {
		return errResult(schemaErr)
	}

	rootType := s.RootTypeName(operationType)
	if rootType == "" {
		return errResult(apperr.Schema("Schema does not define a root type for %s operations", operationType))
	}

	state := querystate.New(headers, operationType, rootType, operationName)
	id := session.NewSessionID()
	if saveErr := t.app.saveSession(ctx, id, state); saveErr != nil {
		return errResult(saveErr)
	}

	t.app.Metrics.RecordSessionStarted()
	log.Info().
		Str("session_id", id).
		Str("operation_type", operationType).
		Str("root_type", rootType).
		Msg("Session started")

	return okResult(map[string]any{
		"sessionId":         id,
		"operationType":     operationType,
		"operationTypeName": rootType,
		"createdAt":         state.CreatedAt,
	})
}

// headerMap extracts and validates the headers argument.
func headerMap(args map[string]any, app *AppContext) (map[string]string, *apperr.Error) {
	raw, present := args["headers"]
	if !present {
		return map[string]string{}, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, apperr.Validation("headers must be an object of string to string")
	}

	headers := make(map[string]string, len(obj))
	for k, v := range obj {
		s, ok := v.(string)
		if !ok {
			return nil, apperr.Validation("Header %q must have a string value", k)
		}
		if err := validation.ValidateStringLength(k, "header name", app.Config.Limits.MaxHeaderKeyLen); err != nil {
			return nil, apperr.From(err)
		}
		if err := validation.ValidateStringLength(s, fmt.Sprintf("header %q", k), app.Config.Limits.MaxHeaderValueLen); err != nil {
			return nil, apperr.From(err)
		}
		if err := validation.ValidateNoControlCharacters(k, "header name"); err != nil {
			return nil, apperr.From(err)
		}
		if err := validation.ValidateNoControlCharacters(s, fmt.Sprintf("header %q", k)); err != nil {
			return nil, apperr.From(err)
		}
		headers[k] = s
	}
	return headers, nil
}

// SetOperationNameTool implements the set-operation-name MCP tool
type SetOperationNameTool struct {
	app *AppContext
}

func (t *SetOperationNameTool) Name() string {
	return "set-operation-name"
}

func (t *SetOperationNameTool) Description() string {
	return "Set or replace the operation name of the query under construction."
}

func (t *SetOperationNameTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sessionId": map[string]any{"type": "string"},
			"name": map[string]any{
				"type":        "string",
				"description": "Operation name matching [_A-Za-z][_0-9A-Za-z]*",
			},
		},
		"required": []string{"sessionId", "name"},
	}
}

func (t *SetOperationNameTool) Execute(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
	id, idErr := sessionID(args)
	if idErr != nil {
		return errResult(idErr)
	}
	name, nameErr := requireString(args, "name")
	if nameErr != nil {
		return errResult(nameErr)
	}

	return t.app.withSession(ctx, id, func(qs *querystate.QueryState) (any, []string, *apperr.Error) {
		if err := validation.ValidateOperationName(name); err != nil {
			return nil, nil, apperr.From(err)
		}
		qs.OperationName = name
		return map[string]any{"operationName": name}, nil, nil
	})
}

// EndSessionTool implements the end-session MCP tool
type EndSessionTool struct {
	app *AppContext
}

func (t *EndSessionTool) Name() string {
	return "end-session"
}

func (t *EndSessionTool) Description() string {
	return "End a session and delete its stored state."
}

func (t *EndSessionTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sessionId": map[string]any{"type": "string"},
		},
		"required": []string{"sessionId"},
	}
}

func (t *EndSessionTool) Execute(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
	id, idErr := sessionID(args)
	if idErr != nil {
		return errResult(idErr)
	}

	unlock := t.app.Locks.Acquire(id)
	defer unlock()

	if err := t.app.Store.Delete(ctx, id); err != nil {
		return errResult(apperr.New(apperr.KindStore, "Failed to delete session: %v", err))
	}

	log.Info().Str("session_id", id).Msg("Session ended")
	return okResult(map[string]any{"ended": true})
}
