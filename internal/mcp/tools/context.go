// Package tools implements the MCP tools an agent drives to build,
// validate, and execute a GraphQL operation. Each tool loads the session
// under its lock, applies one mutation, persists the state, and replies
// with a structured {ok, result, error, warnings} payload.
package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/querysculptor/querysculptor/internal/apperr"
	"github.com/querysculptor/querysculptor/internal/config"
	"github.com/querysculptor/querysculptor/internal/executor"
	"github.com/querysculptor/querysculptor/internal/mcp"
	"github.com/querysculptor/querysculptor/internal/observability"
	"github.com/querysculptor/querysculptor/internal/querystate"
	"github.com/querysculptor/querysculptor/internal/schema"
	"github.com/querysculptor/querysculptor/internal/session"
	"github.com/querysculptor/querysculptor/internal/validation"
)

// AppContext carries the shared collaborators every tool needs. It is
// built once at startup and passed into tool constructors explicitly;
// there are no package-level singletons.
type AppContext struct {
	Config  *config.Config
	Schemas *schema.Cache
	Store   session.Store
	Locks   *session.Locks
	Exec    *executor.Executor
	Metrics *observability.Metrics
}

// RegisterAll registers every tool on the server.
func RegisterAll(server *mcp.Server, app *AppContext) {
	registry := server.ToolRegistry()
	registry.Register(&StartSessionTool{app: app})
	registry.Register(&SetOperationNameTool{app: app})
	registry.Register(&SelectFieldTool{app: app})
	registry.Register(&SetArgumentTool{app: app})
	registry.Register(&SetArgumentTool{app: app, typed: true})
	registry.Register(&SetVariableTool{app: app})
	registry.Register(&SetVariableValueTool{app: app})
	registry.Register(&AddDirectiveTool{app: app})
	registry.Register(&SpreadFragmentTool{app: app})
	registry.Register(&DefineFragmentTool{app: app})
	registry.Register(&AddInlineFragmentTool{app: app})
	registry.Register(&BuildQueryTool{app: app})
	registry.Register(&ValidateQueryTool{app: app})
	registry.Register(&ExecuteQueryTool{app: app})
	registry.Register(&EndSessionTool{app: app})
}

// toolResponse is the uniform payload serialized into the tool result.
type toolResponse struct {
	OK       bool          `json:"ok"`
	Result   any           `json:"result,omitempty"`
	Error    *apperr.Error `json:"error,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

func respond(resp toolResponse) (*mcp.ToolResult, error) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return &mcp.ToolResult{
		Content: []mcp.Content{mcp.TextContent(string(raw))},
		IsError: !resp.OK,
	}, nil
}

// okResult builds a success response.
func okResult(result any, warnings ...string) (*mcp.ToolResult, error) {
	return respond(toolResponse{OK: true, Result: result, Warnings: warnings})
}

// errResult builds a failure response from a structured error.
func errResult(err error) (*mcp.ToolResult, error) {
	return respond(toolResponse{OK: false, Error: apperr.From(err)})
}

// stringArg extracts a string argument.
func stringArg(args map[string]any, name string) (string, bool) {
	v, ok := args[name].(string)
	return v, ok
}

// requireString extracts a mandatory string argument.
func requireString(args map[string]any, name string) (string, *apperr.Error) {
	v, ok := stringArg(args, name)
	if !ok || v == "" {
		return "", apperr.Validation("%s is required", name)
	}
	return v, nil
}

// optionalString extracts a string argument, defaulting to "".
func optionalString(args map[string]any, name string) string {
	v, _ := stringArg(args, name)
	return v
}

// pathArg extracts a path argument, allowing the empty root path.
func pathArg(args map[string]any, name string) (string, *apperr.Error) {
	v, present := args[name]
	if !present {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", apperr.Validation("%s must be a string", name)
	}
	return s, nil
}

// boolArg extracts a boolean flag, defaulting to false.
func boolArg(args map[string]any, name string) bool {
	v, _ := args[name].(bool)
	return v
}

// sessionID extracts and validates the sessionId argument.
func sessionID(args map[string]any) (string, *apperr.Error) {
	id, ok := stringArg(args, "sessionId")
	if !ok || id == "" {
		return "", apperr.Validation("sessionId is required")
	}
	if !session.IsValidSessionID(id) {
		return "", apperr.Session("Session id %q is malformed", id)
	}
	return id, nil
}

// loadSession loads a session's state or produces a SESSION error.
func (a *AppContext) loadSession(ctx context.Context, id string) (*querystate.QueryState, *apperr.Error) {
	state, err := a.Store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, apperr.Session("Session %q not found or expired", id)
		}
		return nil, apperr.New(apperr.KindStore, "Failed to load session: %v", err)
	}
	return state, nil
}

// saveSession persists a session's state.
func (a *AppContext) saveSession(ctx context.Context, id string, state *querystate.QueryState) *apperr.Error {
	if err := a.Store.Save(ctx, id, state); err != nil {
		return apperr.New(apperr.KindStore, "Failed to save session: %v", err)
	}
	return nil
}

// schemaFor returns the cached upstream schema, fetching it with the
// session's headers merged over the configured defaults.
func (a *AppContext) schemaFor(ctx context.Context, sessionHeaders map[string]string) (*schema.Schema, *apperr.Error) {
	headers := make(map[string]string, len(a.Config.Upstream.Headers())+len(sessionHeaders))
	for k, v := range a.Config.Upstream.Headers() {
		headers[k] = v
	}
	for k, v := range sessionHeaders {
		headers[k] = v
	}
	s, err := a.Schemas.Get(ctx, a.Config.Upstream.Endpoint, headers)
	if err != nil {
		return nil, apperr.From(err)
	}
	return s, nil
}

// inputLimits builds the validator limits from config.
func (a *AppContext) inputLimits() validation.InputLimits {
	return validation.InputLimits{
		MaxDepth:        a.Config.Limits.MaxInputDepth,
		MaxElements:     a.Config.Limits.MaxInputElements,
		MaxStringLength: a.Config.Limits.MaxStringLength,
	}
}

// withSession runs fn while holding the session lock, persisting the
// state afterwards when fn succeeds. It records no tool-call metric.
func (a *AppContext) withSession(ctx context.Context, id string, fn func(qs *querystate.QueryState) (any, []string, *apperr.Error)) (*mcp.ToolResult, error) {
	unlock := a.Locks.Acquire(id)
	defer unlock()

	state, loadErr := a.loadSession(ctx, id)
	if loadErr != nil {
		return errResult(loadErr)
	}

	result, warnings, fnErr := fn(state)
	if fnErr != nil {
		return errResult(fnErr)
	}

	if saveErr := a.saveSession(ctx, id, state); saveErr != nil {
		return errResult(saveErr)
	}
	return okResult(result, warnings...)
}
