package querystate

import (
	"github.com/querysculptor/querysculptor/internal/apperr"
)

// InsertField adds a field under the node addressed by parentPath and
// returns it. The selection key (alias if set, else field name) must be
// unique among the new field's siblings.
func (qs *QueryState) InsertField(parentPath, fieldName, alias string) (*FieldNode, error) {
	parent, err := qs.ResolvePath(parentPath)
	if err != nil {
		return nil, err
	}

	node := NewFieldNode(fieldName, alias)
	key := node.SelectionKey()
	if _, exists := parent.Fields[key]; exists {
		return nil, apperr.Validation("duplicate selection key %q at path %q; use an alias to select the same field twice", key, parentPath).WithPath(parentPath)
	}

	parent.Fields[key] = node
	parent.FieldOrder = append(parent.FieldOrder, key)
	return node, nil
}

// SetArgument sets (or replaces) an argument on the field at fieldPath.
func (qs *QueryState) SetArgument(fieldPath, argName string, value *ArgValue) error {
	node, err := qs.ResolvePath(fieldPath)
	if err != nil {
		return err
	}
	if node == qs.QueryStructure {
		return apperr.Validation("cannot set an argument on the root selection set")
	}

	if _, exists := node.Args[argName]; !exists {
		node.ArgOrder = append(node.ArgOrder, argName)
	}
	node.Args[argName] = value
	return nil
}

// DeclareVariable records a variable declaration. Name includes the
// leading $. Redeclaring updates the type and keeps the original position.
func (qs *QueryState) DeclareVariable(name, typeString string, defaultValue any, hasDefault bool) {
	if _, exists := qs.VariablesSchema[name]; !exists {
		qs.VariablesOrder = append(qs.VariablesOrder, name)
	}
	qs.VariablesSchema[name] = typeString
	if hasDefault {
		qs.VariablesDefaults[name] = defaultValue
	} else {
		delete(qs.VariablesDefaults, name)
	}
}

// HasVariable reports whether the variable (with $) is declared.
func (qs *QueryState) HasVariable(name string) bool {
	_, ok := qs.VariablesSchema[name]
	return ok
}

// SetVariableValue records a runtime value for a declared variable.
func (qs *QueryState) SetVariableValue(name string, value any) error {
	if !qs.HasVariable(name) {
		return apperr.Validation("Variable %q is not declared; call set-variable first", name)
	}
	qs.VariablesValues[name] = value
	return nil
}

// AddDirective appends a directive to the operation (path "operation") or
// to the field at the given path.
func (qs *QueryState) AddDirective(path string, d Directive) error {
	if path == OperationPath {
		qs.OperationDirectives = append(qs.OperationDirectives, d)
		return nil
	}
	node, err := qs.ResolvePath(path)
	if err != nil {
		return err
	}
	if node == qs.QueryStructure {
		return apperr.Validation("cannot attach a directive to the root selection set; use path %q for operation directives", OperationPath)
	}
	node.Directives = append(node.Directives, d)
	return nil
}

// SpreadFragment appends a fragment spread at the given path. The fragment
// does not have to be defined yet; definition order is the agent's choice.
func (qs *QueryState) SpreadFragment(path, fragmentName string) error {
	node, err := qs.ResolvePath(path)
	if err != nil {
		return err
	}
	node.FragmentSpreads = append(node.FragmentSpreads, fragmentName)
	return nil
}

// DefineFragment defines or replaces a named fragment.
func (qs *QueryState) DefineFragment(name, onType string, fields map[string]*FieldNode, order []string) {
	if _, exists := qs.Fragments[name]; !exists {
		qs.FragmentOrder = append(qs.FragmentOrder, name)
	}
	if fields == nil {
		fields = make(map[string]*FieldNode)
	}
	qs.Fragments[name] = &Fragment{OnType: onType, Fields: fields, FieldOrder: order}
}

// AddInlineFragment appends an inline fragment at the given path and
// returns it so callers can populate its selections.
func (qs *QueryState) AddInlineFragment(path, onType string) (*InlineFragment, error) {
	node, err := qs.ResolvePath(path)
	if err != nil {
		return nil, err
	}
	inline := &InlineFragment{
		OnType:     onType,
		Selections: make(map[string]*FieldNode),
	}
	node.InlineFragments = append(node.InlineFragments, inline)
	return inline, nil
}

// AddInlineSelection inserts a field into an inline fragment's selection
// set, enforcing sibling key uniqueness.
func (f *InlineFragment) AddInlineSelection(fieldName, alias string) (*FieldNode, error) {
	node := NewFieldNode(fieldName, alias)
	key := node.SelectionKey()
	if _, exists := f.Selections[key]; exists {
		return nil, apperr.Validation("duplicate selection key %q in inline fragment on %q", key, f.OnType)
	}
	f.Selections[key] = node
	f.SelectionOrder = append(f.SelectionOrder, key)
	return node, nil
}

// IsEmpty reports whether the state renders to the empty document: no
// fields, no fragment spreads, no inline fragments, and no fragment
// definitions.
func (qs *QueryState) IsEmpty() bool {
	return !qs.QueryStructure.HasSelections() && len(qs.Fragments) == 0
}
