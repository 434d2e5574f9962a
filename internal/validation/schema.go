package validation

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"

	"github.com/querysculptor/querysculptor/internal/apperr"
	"github.com/querysculptor/querysculptor/internal/querystate"
	"github.com/querysculptor/querysculptor/internal/schema"
)

// ValidateQuerySyntax parses the document and returns any syntax error
// messages. An empty slice means the document parses.
func ValidateQuerySyntax(doc string) []string {
	if _, err := parser.Parse(parser.ParseParams{Source: doc}); err != nil {
		return []string{err.Error()}
	}
	return nil
}

// ValidateFieldInSchema checks that fieldName exists on parentType,
// producing a "Did you mean" suggestion on a near miss.
func ValidateFieldInSchema(s *schema.Schema, parentType, fieldName string) error {
	if strings.HasPrefix(fieldName, "__") {
		// Introspection meta fields are always available.
		return nil
	}
	if s.FieldOn(parentType, fieldName) != nil {
		return nil
	}

	err := apperr.Schema("Field '%s' not found on type '%s'.", fieldName, parentType)
	if suggestion, ok := SuggestName(fieldName, s.FieldNames(parentType)); ok {
		err.Message = fmt.Sprintf("%s Did you mean '%s'?", err.Message, suggestion)
		err = err.WithSuggestion(suggestion)
	}
	return err
}

// ValidateArgumentInSchema checks that argName exists on the field. On a
// miss the error lists up to five available arguments, or says the field
// accepts none.
func ValidateArgumentInSchema(field *schema.Field, argName, path string) error {
	if field.Argument(argName) != nil {
		return nil
	}

	available := field.ArgNames()
	if len(available) == 0 {
		return apperr.Schema("Field '%s' does not accept any arguments.", field.Name).WithPath(path)
	}

	err := apperr.Schema("Argument '%s' not found on field '%s'.", argName, field.Name).WithPath(path)
	if suggestion, ok := SuggestName(argName, available); ok {
		err.Message = fmt.Sprintf("%s Did you mean '%s'?", err.Message, suggestion)
		err = err.WithSuggestion(suggestion)
	}
	listed := available
	if len(listed) > 5 {
		listed = listed[:5]
	}
	err.Message = fmt.Sprintf("%s Available arguments: %s", err.Message, strings.Join(listed, ", "))
	return err
}

// ValidateRequiredArguments walks the structure against the schema and
// returns a warning for every non-null argument without a default that is
// missing from a selected field. Missing required arguments warn rather
// than fail so the agent can fill them in before executing.
func ValidateRequiredArguments(s *schema.Schema, qs *querystate.QueryState) []string {
	var warnings []string
	root := s.RootTypeName(qs.OperationType)
	if root == "" {
		return warnings
	}
	walkRequiredArgs(s, qs.QueryStructure, root, "", &warnings)
	for _, fragName := range qs.FragmentOrder {
		frag, ok := qs.Fragments[fragName]
		if !ok {
			continue
		}
		for _, key := range frag.FieldOrder {
			if f, ok := frag.Fields[key]; ok {
				walkRequiredArgsNode(s, f, frag.OnType, fragName, &warnings)
			}
		}
	}
	return warnings
}

func walkRequiredArgs(s *schema.Schema, node *querystate.FieldNode, parentType, path string, warnings *[]string) {
	for _, child := range node.ChildrenInOrder() {
		walkRequiredArgsNode(s, child, parentType, path, warnings)
	}
	for _, inline := range node.InlineFragments {
		for _, key := range inline.SelectionOrder {
			if f, ok := inline.Selections[key]; ok {
				walkRequiredArgsNode(s, f, inline.OnType, path, warnings)
			}
		}
	}
}

func walkRequiredArgsNode(s *schema.Schema, node *querystate.FieldNode, parentType, path string, warnings *[]string) {
	childPath := node.SelectionKey()
	if path != "" {
		childPath = path + "." + childPath
	}

	field := s.FieldOn(parentType, node.FieldName)
	if field == nil {
		return
	}

	for i := range field.Args {
		arg := &field.Args[i]
		if !arg.Type.IsNonNull() || arg.DefaultValue != nil {
			continue
		}
		if _, set := node.Args[arg.Name]; !set {
			*warnings = append(*warnings, fmt.Sprintf(
				"Field '%s' at path '%s' is missing required argument '%s' of type %s",
				node.FieldName, childPath, arg.Name, arg.Type.String()))
		}
	}

	walkRequiredArgs(s, node, field.Type.NamedType().Name, childPath, warnings)
}

// ValidateAgainstSchema parses the document and validates it against the
// introspected schema: field existence, argument existence, leaf and
// composite selection rules, variable definitions, and fragment type
// conditions. Returned messages are empty when the document is valid.
func ValidateAgainstSchema(doc string, s *schema.Schema) []string {
	parsed, err := parser.Parse(parser.ParseParams{Source: doc})
	if err != nil {
		return []string{err.Error()}
	}

	v := &docValidator{schema: s, fragments: make(map[string]*ast.FragmentDefinition)}

	for _, def := range parsed.Definitions {
		if frag, ok := def.(*ast.FragmentDefinition); ok {
			v.fragments[frag.Name.Value] = frag
		}
	}

	for _, def := range parsed.Definitions {
		switch d := def.(type) {
		case *ast.OperationDefinition:
			v.validateOperation(d)
		case *ast.FragmentDefinition:
			v.validateFragment(d)
		}
	}
	return v.errors
}

type docValidator struct {
	schema    *schema.Schema
	fragments map[string]*ast.FragmentDefinition
	errors    []string
	variables map[string]bool
}

func (v *docValidator) errorf(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *docValidator) validateOperation(op *ast.OperationDefinition) {
	rootType := v.schema.RootTypeName(op.Operation)
	if rootType == "" {
		v.errorf("Schema does not support %s operations", op.Operation)
		return
	}

	v.variables = make(map[string]bool)
	for _, vd := range op.VariableDefinitions {
		if vd.Variable != nil && vd.Variable.Name != nil {
			v.variables[vd.Variable.Name.Value] = true
		}
	}

	v.validateSelectionSet(op.SelectionSet, rootType)
}

func (v *docValidator) validateFragment(frag *ast.FragmentDefinition) {
	onType := frag.TypeCondition.Name.Value
	if !v.schema.HasType(onType) {
		v.errorf("Fragment %q is conditioned on unknown type %q", frag.Name.Value, onType)
		return
	}
	v.validateSelectionSet(frag.SelectionSet, onType)
}

func (v *docValidator) validateSelectionSet(selSet *ast.SelectionSet, parentType string) {
	if selSet == nil {
		return
	}
	for _, sel := range selSet.Selections {
		switch s := sel.(type) {
		case *ast.Field:
			v.validateField(s, parentType)
		case *ast.FragmentSpread:
			name := s.Name.Value
			if _, ok := v.fragments[name]; !ok {
				v.errorf("Fragment spread ...%s has no matching fragment definition", name)
			}
		case *ast.InlineFragment:
			onType := parentType
			if s.TypeCondition != nil {
				onType = s.TypeCondition.Name.Value
				if !v.schema.HasType(onType) {
					v.errorf("Inline fragment is conditioned on unknown type %q", onType)
					continue
				}
			}
			v.validateSelectionSet(s.SelectionSet, onType)
		}
	}
}

func (v *docValidator) validateField(field *ast.Field, parentType string) {
	name := field.Name.Value

	v.collectVariableUses(field.Arguments)

	if strings.HasPrefix(name, "__") {
		// __typename, __schema, and __type carry their own well-known shapes.
		return
	}

	def := v.schema.FieldOn(parentType, name)
	if def == nil {
		msg := fmt.Sprintf("Field '%s' not found on type '%s'.", name, parentType)
		if suggestion, ok := SuggestName(name, v.schema.FieldNames(parentType)); ok {
			msg = fmt.Sprintf("%s Did you mean '%s'?", msg, suggestion)
		}
		v.errors = append(v.errors, msg)
		return
	}

	for _, arg := range field.Arguments {
		if def.Argument(arg.Name.Value) == nil {
			v.errorf("Argument '%s' not found on field '%s'.", arg.Name.Value, name)
		}
	}

	namedType := def.Type.NamedType()
	typeDef := v.schema.TypeByName(namedType.Name)
	isComposite := typeDef != nil &&
		(typeDef.Kind == schema.KindObject || typeDef.Kind == schema.KindInterface || typeDef.Kind == schema.KindUnion)

	hasSelections := field.SelectionSet != nil && len(field.SelectionSet.Selections) > 0
	if isComposite && !hasSelections {
		v.errorf("Field '%s' of type %s must have a selection of subfields", name, def.Type.String())
		return
	}
	if !isComposite && hasSelections {
		v.errorf("Field '%s' of type %s cannot have a selection set", name, def.Type.String())
		return
	}

	if hasSelections {
		v.validateSelectionSet(field.SelectionSet, namedType.Name)
	}
}

func (v *docValidator) collectVariableUses(args []*ast.Argument) {
	var walkValue func(val ast.Value)
	walkValue = func(val ast.Value) {
		switch value := val.(type) {
		case *ast.Variable:
			if value.Name != nil && !v.variables[value.Name.Value] {
				v.errorf("Variable $%s is used but not defined on the operation", value.Name.Value)
			}
		case *ast.ListValue:
			for _, item := range value.Values {
				walkValue(item)
			}
		case *ast.ObjectValue:
			for _, f := range value.Fields {
				walkValue(f.Value)
			}
		}
	}
	for _, arg := range args {
		walkValue(arg.Value)
	}
}
