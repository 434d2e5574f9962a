// Package testutil provides shared fixtures for unit tests: a small
// introspected schema and an HTTP handler that serves it.
package testutil

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/querysculptor/querysculptor/internal/schema"
)

// IntrospectionJSON is the introspection `data` payload of a small
// Pokemon schema used throughout the tests.
const IntrospectionJSON = `{
  "__schema": {
    "queryType": {"name": "Query"},
    "mutationType": {"name": "Mutation"},
    "subscriptionType": null,
    "types": [
      {"kind": "OBJECT", "name": "Query", "fields": [
        {"name": "pokemons", "args": [
          {"name": "first", "type": {"kind": "SCALAR", "name": "Int"}},
          {"name": "last", "type": {"kind": "SCALAR", "name": "Int"}},
          {"name": "after", "type": {"kind": "SCALAR", "name": "String"}}
        ], "type": {"kind": "LIST", "name": null, "ofType": {"kind": "OBJECT", "name": "Pokemon"}}},
        {"name": "pokemon", "args": [
          {"name": "id", "type": {"kind": "NON_NULL", "name": null, "ofType": {"kind": "SCALAR", "name": "ID"}}}
        ], "type": {"kind": "OBJECT", "name": "Pokemon"}},
        {"name": "search", "args": [
          {"name": "term", "type": {"kind": "NON_NULL", "name": null, "ofType": {"kind": "SCALAR", "name": "String"}}}
        ], "type": {"kind": "LIST", "name": null, "ofType": {"kind": "UNION", "name": "SearchResult"}}}
      ]},
      {"kind": "OBJECT", "name": "Pokemon", "fields": [
        {"name": "id", "args": [], "type": {"kind": "NON_NULL", "name": null, "ofType": {"kind": "SCALAR", "name": "ID"}}},
        {"name": "name", "args": [], "type": {"kind": "NON_NULL", "name": null, "ofType": {"kind": "SCALAR", "name": "String"}}},
        {"name": "weight", "args": [], "type": {"kind": "SCALAR", "name": "Float"}},
        {"name": "types", "args": [], "type": {"kind": "LIST", "name": null, "ofType": {"kind": "SCALAR", "name": "String"}}},
        {"name": "element", "args": [], "type": {"kind": "ENUM", "name": "ElementType"}},
        {"name": "evolutions", "args": [
          {"name": "first", "type": {"kind": "SCALAR", "name": "Int"}}
        ], "type": {"kind": "LIST", "name": null, "ofType": {"kind": "OBJECT", "name": "Pokemon"}}},
        {"name": "attack", "args": [], "type": {"kind": "OBJECT", "name": "Attack"}}
      ]},
      {"kind": "OBJECT", "name": "Attack", "fields": [
        {"name": "name", "args": [], "type": {"kind": "SCALAR", "name": "String"}},
        {"name": "damage", "args": [], "type": {"kind": "SCALAR", "name": "Int"}}
      ]},
      {"kind": "OBJECT", "name": "Trainer", "fields": [
        {"name": "name", "args": [], "type": {"kind": "SCALAR", "name": "String"}}
      ]},
      {"kind": "UNION", "name": "SearchResult", "possibleTypes": [
        {"kind": "OBJECT", "name": "Pokemon"},
        {"kind": "OBJECT", "name": "Trainer"}
      ]},
      {"kind": "ENUM", "name": "ElementType", "enumValues": [
        {"name": "FIRE"}, {"name": "WATER"}, {"name": "GRASS"}
      ]},
      {"kind": "OBJECT", "name": "Mutation", "fields": [
        {"name": "createPokemon", "args": [
          {"name": "input", "type": {"kind": "NON_NULL", "name": null, "ofType": {"kind": "INPUT_OBJECT", "name": "PokemonInput"}}}
        ], "type": {"kind": "OBJECT", "name": "Pokemon"}}
      ]},
      {"kind": "INPUT_OBJECT", "name": "PokemonInput", "inputFields": [
        {"name": "name", "type": {"kind": "NON_NULL", "name": null, "ofType": {"kind": "SCALAR", "name": "String"}}, "defaultValue": null},
        {"name": "weight", "type": {"kind": "SCALAR", "name": "Float"}, "defaultValue": null}
      ]},
      {"kind": "SCALAR", "name": "Int"},
      {"kind": "SCALAR", "name": "Float"},
      {"kind": "SCALAR", "name": "String"},
      {"kind": "SCALAR", "name": "Boolean"},
      {"kind": "SCALAR", "name": "ID"}
    ]
  }
}`

// TestSchema decodes the fixture schema.
func TestSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.FromIntrospection(json.RawMessage(IntrospectionJSON))
	require.NoError(t, err)
	return s
}

// IntrospectionHandler serves the fixture schema the way an upstream
// GraphQL endpoint answers the introspection query. Non-introspection
// queries get a canned {"data": {...}} response.
func IntrospectionHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query string `json:"query"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		if containsIntrospection(body.Query) {
			_, _ = w.Write([]byte(`{"data": ` + IntrospectionJSON + `}`))
			return
		}
		_, _ = w.Write([]byte(`{"data": {"pokemons": []}}`))
	})
}

func containsIntrospection(query string) bool {
	for i := 0; i+8 <= len(query); i++ {
		if query[i:i+8] == "__schema" {
			return true
		}
	}
	return false
}
