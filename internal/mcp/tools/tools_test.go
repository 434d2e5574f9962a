package tools

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querysculptor/querysculptor/internal/apperr"
	"github.com/querysculptor/querysculptor/internal/config"
	"github.com/querysculptor/querysculptor/internal/executor"
	"github.com/querysculptor/querysculptor/internal/mcp"
	"github.com/querysculptor/querysculptor/internal/observability"
	"github.com/querysculptor/querysculptor/internal/schema"
	"github.com/querysculptor/querysculptor/internal/session"
	"github.com/querysculptor/querysculptor/internal/testutil"
)

type toolPayload struct {
	OK       bool           `json:"ok"`
	Result   map[string]any `json:"result"`
	Error    *apperr.Error  `json:"error"`
	Warnings []string       `json:"warnings"`
}

func newTestApp(t *testing.T) (*AppContext, func()) {
	t.Helper()
	upstream := httptest.NewServer(testutil.IntrospectionHandler())

	cfg := &config.Config{
		Upstream: config.UpstreamConfig{
			Endpoint:       upstream.URL,
			RequestTimeout: 5 * time.Second,
			ExecuteTimeout: 5 * time.Second,
		},
		Session: config.SessionConfig{
			TTL:            time.Hour,
			ConnectTimeout: time.Second,
		},
		Limits: config.LimitsConfig{
			MaxDepth:          12,
			MaxFields:         200,
			MaxComplexity:     2500,
			MaxPagination:     500,
			MaxStringLength:   8192,
			MaxInputDepth:     10,
			MaxInputElements:  1000,
			MaxVariableDepth:  5,
			MaxHeaderKeyLen:   100,
			MaxHeaderValueLen: 1000,
		},
		MCP: config.MCPConfig{BasePath: "/mcp"},
	}

	app := &AppContext{
		Config:  cfg,
		Schemas: schema.NewCache(schema.NewClient(cfg.Upstream.RequestTimeout)),
		Store:   session.NewMemoryStore(),
		Locks:   session.NewLocks(),
		Exec:    executor.New(cfg),
		Metrics: observability.GetMetrics(),
	}
	return app, upstream.Close
}

func callTool(t *testing.T, handler mcp.ToolHandler, args map[string]any) toolPayload {
	t.Helper()
	result, err := handler.Execute(context.Background(), args)
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	var payload toolPayload
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &payload))
	assert.Equal(t, !payload.OK, result.IsError)
	return payload
}

func startSession(t *testing.T, app *AppContext) string {
	t.Helper()
	payload := callTool(t, &StartSessionTool{app: app}, map[string]any{
		"operationType": "query",
	})
	require.True(t, payload.OK, "start-session failed: %+v", payload.Error)
	id, ok := payload.Result["sessionId"].(string)
	require.True(t, ok)
	return id
}

func TestStartSession(t *testing.T) {
	app, cleanup := newTestApp(t)
	defer cleanup()

	payload := callTool(t, &StartSessionTool{app: app}, map[string]any{
		"operationType": "query",
		"operationName": "GetPokemons",
		"headers":       map[string]any{"X-Token": "abc"},
	})
	require.True(t, payload.OK)
	assert.Equal(t, "Query", payload.Result["operationTypeName"])
	assert.Len(t, payload.Result["sessionId"], 32)
}

func TestStartSessionRejectsBadOperationType(t *testing.T) {
	app, cleanup := newTestApp(t)
	defer cleanup()

	payload := callTool(t, &StartSessionTool{app: app}, map[string]any{
		"operationType": "subscribe",
	})
	require.False(t, payload.OK)
	assert.Equal(t, apperr.KindValidation, payload.Error.Kind)
}

func TestStartSessionNoSubscriptionRoot(t *testing.T) {
	app, cleanup := newTestApp(t)
	defer cleanup()

	payload := callTool(t, &StartSessionTool{app: app}, map[string]any{
		"operationType": "subscription",
	})
	require.False(t, payload.OK)
	assert.Equal(t, apperr.KindSchema, payload.Error.Kind)
}

// The S1 walkthrough: build a small query step by step and render it.
func TestBuildQueryScenario(t *testing.T) {
	app, cleanup := newTestApp(t)
	defer cleanup()
	id := startSession(t, app)

	payload := callTool(t, &SelectFieldTool{app: app}, map[string]any{
		"sessionId": id, "parentPath": "", "fieldName": "pokemons",
	})
	require.True(t, payload.OK, "select-field failed: %+v", payload.Error)

	payload = callTool(t, &SetArgumentTool{app: app}, map[string]any{
		"sessionId": id, "fieldPath": "pokemons", "argName": "first",
		"value": 10, "is_typed": true,
	})
	require.True(t, payload.OK, "set-argument failed: %+v", payload.Error)

	payload = callTool(t, &SelectFieldTool{app: app}, map[string]any{
		"sessionId": id, "parentPath": "pokemons", "fieldName": "name",
	})
	require.True(t, payload.OK)

	payload = callTool(t, &BuildQueryTool{app: app}, map[string]any{"sessionId": id})
	require.True(t, payload.OK)
	assert.Equal(t, "query {\n  pokemons(first: 10) {\n    name\n  }\n}", payload.Result["query"])
}

func TestPaginationCap(t *testing.T) {
	app, cleanup := newTestApp(t)
	defer cleanup()
	id := startSession(t, app)

	payload := callTool(t, &SelectFieldTool{app: app}, map[string]any{
		"sessionId": id, "fieldName": "pokemons",
	})
	require.True(t, payload.OK)

	payload = callTool(t, &SetArgumentTool{app: app}, map[string]any{
		"sessionId": id, "fieldPath": "pokemons", "argName": "first",
		"value": 600, "is_typed": true,
	})
	require.False(t, payload.OK)
	assert.Equal(t, apperr.KindLimit, payload.Error.Kind)
	assert.Equal(t, "Pagination value for 'first' (600) exceeds maximum of 500.", payload.Error.Message)
}

func TestSelectFieldSuggestion(t *testing.T) {
	app, cleanup := newTestApp(t)
	defer cleanup()
	id := startSession(t, app)

	payload := callTool(t, &SelectFieldTool{app: app}, map[string]any{
		"sessionId": id, "fieldName": "pokemn",
	})
	require.False(t, payload.OK)
	assert.Equal(t, apperr.KindSchema, payload.Error.Kind)
	assert.Equal(t, "Field 'pokemn' not found on type 'Query'. Did you mean 'pokemon'?", payload.Error.Message)
}

func TestSetVariableTypeSuggestion(t *testing.T) {
	app, cleanup := newTestApp(t)
	defer cleanup()
	id := startSession(t, app)

	payload := callTool(t, &SetVariableTool{app: app}, map[string]any{
		"sessionId": id, "varName": "$n", "type": "integer",
	})
	require.False(t, payload.OK)
	assert.Equal(t, apperr.KindValidation, payload.Error.Kind)
	assert.Equal(t, "Invalid type 'integer'. Did you mean 'Int'?", payload.Error.Message)
}

// The S5 walkthrough: a variable declared and referenced renders into
// the document header and the argument position.
func TestVariableFlow(t *testing.T) {
	app, cleanup := newTestApp(t)
	defer cleanup()
	id := startSession(t, app)

	payload := callTool(t, &SetVariableTool{app: app}, map[string]any{
		"sessionId": id, "varName": "$n", "type": "Int",
	})
	require.True(t, payload.OK, "set-variable failed: %+v", payload.Error)

	payload = callTool(t, &SelectFieldTool{app: app}, map[string]any{
		"sessionId": id, "fieldName": "pokemons",
	})
	require.True(t, payload.OK)

	payload = callTool(t, &SetArgumentTool{app: app}, map[string]any{
		"sessionId": id, "fieldPath": "pokemons", "argName": "first", "value": "$n",
	})
	require.True(t, payload.OK, "set-argument failed: %+v", payload.Error)

	payload = callTool(t, &SelectFieldTool{app: app}, map[string]any{
		"sessionId": id, "parentPath": "pokemons", "fieldName": "name",
	})
	require.True(t, payload.OK)

	payload = callTool(t, &BuildQueryTool{app: app}, map[string]any{"sessionId": id})
	require.True(t, payload.OK)
	doc, _ := payload.Result["query"].(string)
	assert.Contains(t, doc, "query ($n: Int) {")
	assert.Contains(t, doc, "pokemons(first: $n)")
}

func TestUndeclaredVariableRejected(t *testing.T) {
	app, cleanup := newTestApp(t)
	defer cleanup()
	id := startSession(t, app)

	payload := callTool(t, &SelectFieldTool{app: app}, map[string]any{
		"sessionId": id, "fieldName": "pokemons",
	})
	require.True(t, payload.OK)

	payload = callTool(t, &SetArgumentTool{app: app}, map[string]any{
		"sessionId": id, "fieldPath": "pokemons", "argName": "first", "value": "$n",
	})
	require.False(t, payload.OK)
	assert.Contains(t, payload.Error.Message, "not declared")
}

func TestDuplicateSelectionKey(t *testing.T) {
	app, cleanup := newTestApp(t)
	defer cleanup()
	id := startSession(t, app)

	args := map[string]any{
		"sessionId": id, "fieldName": "pokemons", "alias": "batch",
	}
	payload := callTool(t, &SelectFieldTool{app: app}, args)
	require.True(t, payload.OK)

	payload = callTool(t, &SelectFieldTool{app: app}, args)
	require.False(t, payload.OK)
	assert.Equal(t, apperr.KindValidation, payload.Error.Kind)
	assert.Contains(t, payload.Error.Message, "duplicate selection key")
}

func TestStringCoercionWarning(t *testing.T) {
	app, cleanup := newTestApp(t)
	defer cleanup()
	id := startSession(t, app)

	payload := callTool(t, &SelectFieldTool{app: app}, map[string]any{
		"sessionId": id, "fieldName": "pokemons",
	})
	require.True(t, payload.OK)

	payload = callTool(t, &SetArgumentTool{app: app}, map[string]any{
		"sessionId": id, "fieldPath": "pokemons", "argName": "first", "value": "42",
	})
	require.True(t, payload.OK)
	require.NotEmpty(t, payload.Warnings)
	assert.Contains(t, payload.Warnings[0], "Consider using set-typed-argument")
}

func TestSetArgumentSuggestion(t *testing.T) {
	app, cleanup := newTestApp(t)
	defer cleanup()
	id := startSession(t, app)

	payload := callTool(t, &SelectFieldTool{app: app}, map[string]any{
		"sessionId": id, "fieldName": "pokemons",
	})
	require.True(t, payload.OK)

	payload = callTool(t, &SetArgumentTool{app: app}, map[string]any{
		"sessionId": id, "fieldPath": "pokemons", "argName": "frist", "value": 1,
	})
	require.False(t, payload.OK)
	assert.Equal(t, apperr.KindSchema, payload.Error.Kind)
	assert.Contains(t, payload.Error.Message, "Did you mean 'first'?")
	assert.Contains(t, payload.Error.Message, "Available arguments:")
}

func TestTypedArgumentShapeMismatch(t *testing.T) {
	app, cleanup := newTestApp(t)
	defer cleanup()
	id := startSession(t, app)

	payload := callTool(t, &SelectFieldTool{app: app}, map[string]any{
		"sessionId": id, "fieldName": "pokemons",
	})
	require.True(t, payload.OK)

	payload = callTool(t, &SetArgumentTool{app: app, typed: true}, map[string]any{
		"sessionId": id, "fieldPath": "pokemons", "argName": "first", "value": "not a number",
	})
	require.False(t, payload.OK)
	assert.Contains(t, payload.Error.Message, "Int")
}

func TestFragmentFlow(t *testing.T) {
	app, cleanup := newTestApp(t)
	defer cleanup()
	id := startSession(t, app)

	payload := callTool(t, &SelectFieldTool{app: app}, map[string]any{
		"sessionId": id, "fieldName": "pokemons",
	})
	require.True(t, payload.OK)

	payload = callTool(t, &SpreadFragmentTool{app: app}, map[string]any{
		"sessionId": id, "path": "pokemons", "fragmentName": "Parts",
	})
	require.True(t, payload.OK)
	require.NotEmpty(t, payload.Warnings) // not defined yet

	payload = callTool(t, &DefineFragmentTool{app: app}, map[string]any{
		"sessionId": id, "name": "Parts", "onType": "Pokemon",
		"fields": map[string]any{"id": true, "name": true, "attack": map[string]any{"damage": true}},
	})
	require.True(t, payload.OK, "define-fragment failed: %+v", payload.Error)

	payload = callTool(t, &BuildQueryTool{app: app}, map[string]any{"sessionId": id})
	require.True(t, payload.OK)
	doc, _ := payload.Result["query"].(string)
	assert.Contains(t, doc, "...Parts")
	assert.Contains(t, doc, "fragment Parts on Pokemon {")
	assert.Contains(t, doc, "attack {")
}

func TestDefineFragmentUnknownType(t *testing.T) {
	app, cleanup := newTestApp(t)
	defer cleanup()
	id := startSession(t, app)

	payload := callTool(t, &DefineFragmentTool{app: app}, map[string]any{
		"sessionId": id, "name": "Parts", "onType": "Pokemo",
		"fields": map[string]any{"id": true},
	})
	require.False(t, payload.OK)
	assert.Equal(t, apperr.KindSchema, payload.Error.Kind)
	assert.Contains(t, payload.Error.Message, "Did you mean 'Pokemon'?")
}

func TestInlineFragmentFlow(t *testing.T) {
	app, cleanup := newTestApp(t)
	defer cleanup()
	id := startSession(t, app)

	payload := callTool(t, &SelectFieldTool{app: app}, map[string]any{
		"sessionId": id, "fieldName": "search",
	})
	require.True(t, payload.OK)

	payload = callTool(t, &AddInlineFragmentTool{app: app}, map[string]any{
		"sessionId": id, "path": "search", "onType": "Pokemon",
		"fields": map[string]any{"name": true},
	})
	require.True(t, payload.OK, "add-inline-fragment failed: %+v", payload.Error)

	payload = callTool(t, &BuildQueryTool{app: app}, map[string]any{"sessionId": id})
	require.True(t, payload.OK)
	assert.Contains(t, payload.Result["query"], "... on Pokemon {")
}

func TestAddDirectiveFlow(t *testing.T) {
	app, cleanup := newTestApp(t)
	defer cleanup()
	id := startSession(t, app)

	payload := callTool(t, &SetVariableTool{app: app}, map[string]any{
		"sessionId": id, "varName": "$cond", "type": "Boolean!",
	})
	require.True(t, payload.OK)

	payload = callTool(t, &SelectFieldTool{app: app}, map[string]any{
		"sessionId": id, "fieldName": "pokemons",
	})
	require.True(t, payload.OK)
	payload = callTool(t, &SelectFieldTool{app: app}, map[string]any{
		"sessionId": id, "parentPath": "pokemons", "fieldName": "name",
	})
	require.True(t, payload.OK)

	payload = callTool(t, &AddDirectiveTool{app: app}, map[string]any{
		"sessionId": id, "path": "pokemons.name", "name": "include",
		"args": map[string]any{"if": "$cond"},
	})
	require.True(t, payload.OK, "add-directive failed: %+v", payload.Error)

	payload = callTool(t, &BuildQueryTool{app: app}, map[string]any{"sessionId": id})
	require.True(t, payload.OK)
	assert.Contains(t, payload.Result["query"], "name @include(if: $cond)")
}

func TestValidateQueryFlow(t *testing.T) {
	app, cleanup := newTestApp(t)
	defer cleanup()
	id := startSession(t, app)

	payload := callTool(t, &SelectFieldTool{app: app}, map[string]any{
		"sessionId": id, "fieldName": "pokemon",
	})
	require.True(t, payload.OK)
	payload = callTool(t, &SelectFieldTool{app: app}, map[string]any{
		"sessionId": id, "parentPath": "pokemon", "fieldName": "name",
	})
	require.True(t, payload.OK)

	payload = callTool(t, &ValidateQueryTool{app: app}, map[string]any{"sessionId": id})
	require.True(t, payload.OK)

	valid, _ := payload.Result["valid"].(bool)
	assert.True(t, valid)
	// The required id argument is missing, so a warning is raised.
	require.NotEmpty(t, payload.Warnings)
	assert.Contains(t, payload.Warnings[0], "required argument 'id'")
}

func TestExecuteQueryFlow(t *testing.T) {
	app, cleanup := newTestApp(t)
	defer cleanup()
	id := startSession(t, app)

	payload := callTool(t, &SelectFieldTool{app: app}, map[string]any{
		"sessionId": id, "fieldName": "pokemons",
	})
	require.True(t, payload.OK)
	payload = callTool(t, &SelectFieldTool{app: app}, map[string]any{
		"sessionId": id, "parentPath": "pokemons", "fieldName": "name",
	})
	require.True(t, payload.OK)

	payload = callTool(t, &ExecuteQueryTool{app: app}, map[string]any{"sessionId": id})
	require.True(t, payload.OK, "execute-query failed: %+v", payload.Error)

	response, ok := payload.Result["response"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, response, "data")
}

func TestEndSession(t *testing.T) {
	app, cleanup := newTestApp(t)
	defer cleanup()
	id := startSession(t, app)

	payload := callTool(t, &EndSessionTool{app: app}, map[string]any{"sessionId": id})
	require.True(t, payload.OK)

	payload = callTool(t, &BuildQueryTool{app: app}, map[string]any{"sessionId": id})
	require.False(t, payload.OK)
	assert.Equal(t, apperr.KindSession, payload.Error.Kind)
}

func TestUnknownSession(t *testing.T) {
	app, cleanup := newTestApp(t)
	defer cleanup()

	payload := callTool(t, &BuildQueryTool{app: app}, map[string]any{
		"sessionId": "0123456789abcdef0123456789abcdef",
	})
	require.False(t, payload.OK)
	assert.Equal(t, apperr.KindSession, payload.Error.Kind)

	payload = callTool(t, &BuildQueryTool{app: app}, map[string]any{
		"sessionId": "not-hex",
	})
	require.False(t, payload.OK)
}

func TestSetOperationName(t *testing.T) {
	app, cleanup := newTestApp(t)
	defer cleanup()
	id := startSession(t, app)

	payload := callTool(t, &SetOperationNameTool{app: app}, map[string]any{
		"sessionId": id, "name": "GetStuff",
	})
	require.True(t, payload.OK)

	payload = callTool(t, &SetOperationNameTool{app: app}, map[string]any{
		"sessionId": id, "name": "bad name",
	})
	require.False(t, payload.OK)
	assert.Equal(t, apperr.KindValidation, payload.Error.Kind)
}

func TestSetVariableValueFlow(t *testing.T) {
	app, cleanup := newTestApp(t)
	defer cleanup()
	id := startSession(t, app)

	payload := callTool(t, &SetVariableTool{app: app}, map[string]any{
		"sessionId": id, "varName": "$n", "type": "Int",
	})
	require.True(t, payload.OK)

	payload = callTool(t, &SetVariableValueTool{app: app}, map[string]any{
		"sessionId": id, "varName": "$n", "value": 10,
	})
	require.True(t, payload.OK)

	payload = callTool(t, &SetVariableValueTool{app: app}, map[string]any{
		"sessionId": id, "varName": "$n", "value": "not an int",
	})
	require.False(t, payload.OK)

	payload = callTool(t, &SetVariableValueTool{app: app}, map[string]any{
		"sessionId": id, "varName": "$other", "value": 1,
	})
	require.False(t, payload.OK)
	assert.Contains(t, payload.Error.Message, "not declared")
}
