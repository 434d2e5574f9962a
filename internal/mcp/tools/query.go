package tools

import (
	"context"
	"encoding/json"

	"github.com/querysculptor/querysculptor/internal/apperr"
	"github.com/querysculptor/querysculptor/internal/builder"
	"github.com/querysculptor/querysculptor/internal/mcp"
)

// BuildQueryTool implements the build-query MCP tool
type BuildQueryTool struct {
	app *AppContext
}

func (t *BuildQueryTool) Name() string {
	return "build-query"
}

func (t *BuildQueryTool) Description() string {
	return "Render the session's query state into GraphQL document text without validating or executing it."
}

func (t *BuildQueryTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sessionId": map[string]any{"type": "string"},
		},
		"required": []string{"sessionId"},
	}
}

func (t *BuildQueryTool) Execute(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
	id, idErr := sessionID(args)
	if idErr != nil {
		return errResult(idErr)
	}

	unlock := t.app.Locks.Acquire(id)
	defer unlock()

	state, loadErr := t.app.loadSession(ctx, id)
	if loadErr != nil {
		return errResult(loadErr)
	}

	return okResult(map[string]any{
		"query": builder.Render(state),
	})
}

// ValidateQueryTool implements the validate-query MCP tool
type ValidateQueryTool struct {
	app *AppContext
}

func (t *ValidateQueryTool) Name() string {
	return "validate-query"
}

func (t *ValidateQueryTool) Description() string {
	return "Render the query, validate it against the upstream schema, and analyze its complexity. Returns structured errors and warnings without executing."
}

func (t *ValidateQueryTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sessionId": map[string]any{"type": "string"},
		},
		"required": []string{"sessionId"},
	}
}

func (t *ValidateQueryTool) Execute(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
	id, idErr := sessionID(args)
	if idErr != nil {
		return errResult(idErr)
	}

	unlock := t.app.Locks.Acquire(id)
	defer unlock()

	state, loadErr := t.app.loadSession(ctx, id)
	if loadErr != nil {
		return errResult(loadErr)
	}

	s, schemaErr := t.app.schemaFor(ctx, state.Headers)
	if schemaErr != nil {
		return errResult(schemaErr)
	}

	report := t.app.Exec.Validate(state, s)
	return okResult(report, report.Warnings...)
}

// ExecuteQueryTool implements the execute-query MCP tool
type ExecuteQueryTool struct {
	app *AppContext
}

func (t *ExecuteQueryTool) Name() string {
	return "execute-query"
}

func (t *ExecuteQueryTool) Description() string {
	return "Validate the query and execute it against the configured upstream endpoint, returning the upstream response verbatim."
}

func (t *ExecuteQueryTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sessionId": map[string]any{"type": "string"},
		},
		"required": []string{"sessionId"},
	}
}

func (t *ExecuteQueryTool) Execute(ctx context.Context, args map[string]any) (*mcp.ToolResult, error) {
	id, idErr := sessionID(args)
	if idErr != nil {
		return errResult(idErr)
	}

	unlock := t.app.Locks.Acquire(id)
	defer unlock()

	state, loadErr := t.app.loadSession(ctx, id)
	if loadErr != nil {
		return errResult(loadErr)
	}

	s, schemaErr := t.app.schemaFor(ctx, state.Headers)
	if schemaErr != nil {
		return errResult(schemaErr)
	}

	result, execErr := t.app.Exec.Execute(ctx, state, s)
	if execErr != nil {
		return errResult(execErr)
	}

	var response any
	if err := json.Unmarshal(result.Response, &response); err != nil {
		return errResult(apperr.Upstream("Upstream response is not valid JSON: %v", err))
	}

	return okResult(map[string]any{
		"query":    result.Query,
		"response": response,
	}, result.Warnings...)
}
