package querystate

import (
	"strings"

	"github.com/querysculptor/querysculptor/internal/apperr"
)

// OperationPath addresses the operation itself rather than a field, used
// by add-directive.
const OperationPath = "operation"

// ResolvePath walks a dotted path of selection keys from the root of the
// structure and returns the addressed node. The empty path addresses the
// root selection set.
func (qs *QueryState) ResolvePath(path string) (*FieldNode, error) {
	node := qs.QueryStructure
	if path == "" {
		return node, nil
	}

	for _, segment := range strings.Split(path, ".") {
		child, ok := node.Fields[segment]
		if !ok {
			return nil, apperr.Validation("Field path %q not found: no selection %q", path, segment).WithPath(path)
		}
		node = child
	}
	return node, nil
}

// FieldPathFieldNames resolves the schema field-name chain for a dotted path of
// selection keys, mapping aliases back to field names. Returns the field
// names joined with dots, for schema navigation.
func (qs *QueryState) FieldPathFieldNames(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	node := qs.QueryStructure
	names := make([]string, 0, 4)
	for _, segment := range strings.Split(path, ".") {
		child, ok := node.Fields[segment]
		if !ok {
			return "", apperr.Validation("Field path %q not found: no selection %q", path, segment).WithPath(path)
		}
		names = append(names, child.FieldName)
		node = child
	}
	return strings.Join(names, "."), nil
}

// CollectVariableRefs returns every variable name (with $) referenced in
// argument or directive position anywhere in the structure.
func (qs *QueryState) CollectVariableRefs() []string {
	seen := make(map[string]bool)
	var refs []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			refs = append(refs, name)
		}
	}

	var walkDirectives func(ds []Directive)
	walkDirectives = func(ds []Directive) {
		for _, d := range ds {
			for _, a := range d.Arguments {
				if a.Value == nil {
					continue
				}
				if name, ok := a.Value.VariableName(); ok {
					add(name)
				}
			}
		}
	}

	var walk func(n *FieldNode)
	walk = func(n *FieldNode) {
		for _, name := range n.ArgOrder {
			if v, ok := n.Args[name]; ok && v != nil {
				if varName, ok := v.VariableName(); ok {
					add(varName)
				}
			}
		}
		walkDirectives(n.Directives)
		for _, child := range n.ChildrenInOrder() {
			walk(child)
		}
		for _, inline := range n.InlineFragments {
			for _, key := range inline.SelectionOrder {
				if f, ok := inline.Selections[key]; ok {
					walk(f)
				}
			}
		}
	}

	walk(qs.QueryStructure)
	walkDirectives(qs.OperationDirectives)
	for _, fragName := range qs.FragmentOrder {
		frag, ok := qs.Fragments[fragName]
		if !ok {
			continue
		}
		for _, key := range frag.FieldOrder {
			if f, ok := frag.Fields[key]; ok {
				walk(f)
			}
		}
	}
	return refs
}
