package builder

import (
	"testing"

	"github.com/graphql-go/graphql/language/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querysculptor/querysculptor/internal/querystate"
)

func assertParses(t *testing.T, doc string) {
	t.Helper()
	_, err := parser.Parse(parser.ParseParams{Source: doc})
	require.NoError(t, err, "rendered document does not parse:\n%s", doc)
}

func mustInsert(t *testing.T, qs *querystate.QueryState, parentPath, fieldName, alias string) *querystate.FieldNode {
	t.Helper()
	node, err := qs.InsertField(parentPath, fieldName, alias)
	require.NoError(t, err)
	return node
}

func TestRenderEmptyState(t *testing.T) {
	qs := querystate.New(nil, querystate.OperationQuery, "Query", "")
	assert.Equal(t, "", Render(qs))
}

func TestRenderSimpleQuery(t *testing.T) {
	qs := querystate.New(nil, querystate.OperationQuery, "Query", "")
	mustInsert(t, qs, "", "pokemons", "")
	require.NoError(t, qs.SetArgument("pokemons", "first", querystate.TypedArg(10, "Int")))
	mustInsert(t, qs, "pokemons", "name", "")

	want := "query {\n  pokemons(first: 10) {\n    name\n  }\n}"
	assert.Equal(t, want, Render(qs))
}

func TestRenderOperationName(t *testing.T) {
	qs := querystate.New(nil, querystate.OperationQuery, "Query", "GetPokemons")
	mustInsert(t, qs, "", "pokemons", "")

	assert.Equal(t, "query GetPokemons {\n  pokemons\n}", Render(qs))
}

func TestRenderVariables(t *testing.T) {
	qs := querystate.New(nil, querystate.OperationQuery, "Query", "")
	qs.DeclareVariable("$n", "Int", nil, false)
	mustInsert(t, qs, "", "pokemons", "")
	require.NoError(t, qs.SetArgument("pokemons", "first", querystate.VariableArg("$n")))
	mustInsert(t, qs, "pokemons", "name", "")

	doc := Render(qs)
	assert.Equal(t, "query ($n: Int) {\n  pokemons(first: $n) {\n    name\n  }\n}", doc)
}

func TestRenderVariableDefaults(t *testing.T) {
	qs := querystate.New(nil, querystate.OperationQuery, "Query", "Search")
	qs.DeclareVariable("$term", "String!", "pika", true)
	qs.DeclareVariable("$limit", "Int", 10, true)
	mustInsert(t, qs, "", "pokemons", "")

	doc := Render(qs)
	assert.Contains(t, doc, `query Search($term: String! = "pika", $limit: Int = 10) {`)
}

func TestRenderAliases(t *testing.T) {
	qs := querystate.New(nil, querystate.OperationQuery, "Query", "")
	mustInsert(t, qs, "", "pokemons", "firstBatch")
	mustInsert(t, qs, "firstBatch", "name", "")

	doc := Render(qs)
	assert.Contains(t, doc, "firstBatch: pokemons {")
}

func TestRenderArgumentVariants(t *testing.T) {
	qs := querystate.New(nil, querystate.OperationQuery, "Query", "")
	mustInsert(t, qs, "", "pokemons", "")
	require.NoError(t, qs.SetArgument("pokemons", "first", querystate.RawArg(5)))
	require.NoError(t, qs.SetArgument("pokemons", "element", querystate.EnumArg("FIRE")))
	require.NoError(t, qs.SetArgument("pokemons", "after", querystate.PreQuotedArg("$literal")))
	require.NoError(t, qs.SetArgument("pokemons", "term", querystate.RawArg("pika")))
	mustInsert(t, qs, "pokemons", "name", "")

	doc := Render(qs)
	assert.Contains(t, doc, `pokemons(first: 5, element: FIRE, after: "$literal", term: "pika")`)
}

func TestRenderArgumentInsertionOrder(t *testing.T) {
	qs := querystate.New(nil, querystate.OperationQuery, "Query", "")
	mustInsert(t, qs, "", "pokemons", "")
	require.NoError(t, qs.SetArgument("pokemons", "last", querystate.RawArg(2)))
	require.NoError(t, qs.SetArgument("pokemons", "first", querystate.RawArg(1)))
	mustInsert(t, qs, "pokemons", "name", "")

	assert.Contains(t, Render(qs), "pokemons(last: 2, first: 1)")
}

func TestRenderDirectives(t *testing.T) {
	qs := querystate.New(nil, querystate.OperationQuery, "Query", "")
	require.NoError(t, qs.AddDirective(querystate.OperationPath, querystate.Directive{Name: "cached"}))
	node := mustInsert(t, qs, "", "pokemons", "")
	node.Directives = append(node.Directives, querystate.Directive{
		Name: "include",
		Arguments: []querystate.DirectiveArgument{
			{Name: "if", Value: querystate.VariableArg("$cond")},
		},
	})

	doc := Render(qs)
	assert.Contains(t, doc, "query @cached {")
	assert.Contains(t, doc, "pokemons @include(if: $cond)")
}

func TestRenderFragments(t *testing.T) {
	qs := querystate.New(nil, querystate.OperationQuery, "Query", "")
	mustInsert(t, qs, "", "pokemons", "")
	require.NoError(t, qs.SpreadFragment("pokemons", "Parts"))

	idNode := querystate.NewFieldNode("id", "")
	nameNode := querystate.NewFieldNode("name", "")
	qs.DefineFragment("Parts", "Pokemon", map[string]*querystate.FieldNode{
		"id":   idNode,
		"name": nameNode,
	}, []string{"id", "name"})

	doc := Render(qs)
	assert.Contains(t, doc, "pokemons {\n    ...Parts\n  }")
	assert.Contains(t, doc, "\n\nfragment Parts on Pokemon {\n  id\n  name\n}")
}

func TestRenderInlineFragments(t *testing.T) {
	qs := querystate.New(nil, querystate.OperationQuery, "Query", "")
	mustInsert(t, qs, "", "search", "")
	inline, err := qs.AddInlineFragment("search", "Pokemon")
	require.NoError(t, err)
	_, err = inline.AddInlineSelection("name", "")
	require.NoError(t, err)

	doc := Render(qs)
	assert.Contains(t, doc, "search {\n    ... on Pokemon {\n      name\n    }\n  }")
}

func TestRenderMutation(t *testing.T) {
	qs := querystate.New(nil, querystate.OperationMutation, "Mutation", "")
	mustInsert(t, qs, "", "createPokemon", "")
	require.NoError(t, qs.SetArgument("createPokemon", "input", querystate.RawArg(map[string]any{
		"name": "Bulbasaur",
	})))
	mustInsert(t, qs, "createPokemon", "id", "")

	doc := Render(qs)
	assert.Contains(t, doc, "mutation {")
	assert.Contains(t, doc, `createPokemon(input: {name: "Bulbasaur"})`)
}

func TestRenderParsesCleanly(t *testing.T) {
	// Rendering any state accepted by the mutations must parse.
	qs := querystate.New(nil, querystate.OperationQuery, "Query", "Everything")
	qs.DeclareVariable("$n", "Int", 5, true)
	mustInsert(t, qs, "", "pokemons", "")
	require.NoError(t, qs.SetArgument("pokemons", "first", querystate.VariableArg("$n")))
	mustInsert(t, qs, "pokemons", "name", "aliased")
	require.NoError(t, qs.SpreadFragment("pokemons", "Parts"))
	qs.DefineFragment("Parts", "Pokemon", map[string]*querystate.FieldNode{
		"id": querystate.NewFieldNode("id", ""),
	}, []string{"id"})
	inline, err := qs.AddInlineFragment("pokemons", "Pokemon")
	require.NoError(t, err)
	_, err = inline.AddInlineSelection("weight", "")
	require.NoError(t, err)

	doc := Render(qs)
	assert.NotEmpty(t, doc)
	assertParses(t, doc)
}
