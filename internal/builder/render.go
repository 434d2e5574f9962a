// Package builder renders a query state into GraphQL document text. The
// rendering is deterministic: selections, arguments, and variable
// definitions print in insertion order, so the same state always yields
// the same document.
package builder

import (
	"strings"

	"github.com/querysculptor/querysculptor/internal/querystate"
	"github.com/querysculptor/querysculptor/internal/validation"
)

const indentUnit = "  "

// Render serializes the state into a GraphQL document. An empty state
// (no fields, spreads, inline fragments, or fragment definitions) renders
// to the empty string.
func Render(qs *querystate.QueryState) string {
	if qs.IsEmpty() {
		return ""
	}

	var b strings.Builder

	b.WriteString(qs.OperationType)
	if qs.OperationName != "" {
		b.WriteString(" ")
		b.WriteString(qs.OperationName)
	}

	if len(qs.VariablesOrder) > 0 {
		if qs.OperationName == "" {
			b.WriteString(" ")
		}
		b.WriteString("(")
		defs := make([]string, 0, len(qs.VariablesOrder))
		for _, name := range qs.VariablesOrder {
			typeString, ok := qs.VariablesSchema[name]
			if !ok {
				continue
			}
			def := "$" + strings.TrimPrefix(name, "$") + ": " + typeString
			if defaultValue, ok := qs.VariablesDefaults[name]; ok {
				def += " = " + validation.SerializeGraphQLValue(defaultValue)
			}
			defs = append(defs, def)
		}
		b.WriteString(strings.Join(defs, ", "))
		b.WriteString(")")
	}

	for _, d := range qs.OperationDirectives {
		b.WriteString(" ")
		b.WriteString(renderDirective(d))
	}

	b.WriteString(" {\n")
	renderSelections(&b, qs.QueryStructure, 1)
	b.WriteString("}")

	for _, name := range qs.FragmentOrder {
		frag, ok := qs.Fragments[name]
		if !ok {
			continue
		}
		b.WriteString("\n\nfragment ")
		b.WriteString(name)
		b.WriteString(" on ")
		b.WriteString(frag.OnType)
		b.WriteString(" {\n")
		for _, key := range frag.FieldOrder {
			if f, ok := frag.Fields[key]; ok {
				renderField(&b, f, 1)
			}
		}
		b.WriteString("}")
	}

	return strings.TrimRight(b.String(), " \t\n")
}

// renderSelections writes child fields, fragment spreads, and inline
// fragments of a node, in that order.
func renderSelections(b *strings.Builder, node *querystate.FieldNode, depth int) {
	indent := strings.Repeat(indentUnit, depth)

	for _, child := range node.ChildrenInOrder() {
		renderField(b, child, depth)
	}
	for _, spread := range node.FragmentSpreads {
		b.WriteString(indent)
		b.WriteString("...")
		b.WriteString(spread)
		b.WriteString("\n")
	}
	for _, inline := range node.InlineFragments {
		b.WriteString(indent)
		b.WriteString("... on ")
		b.WriteString(inline.OnType)
		b.WriteString(" {\n")
		for _, key := range inline.SelectionOrder {
			if f, ok := inline.Selections[key]; ok {
				renderField(b, f, depth+1)
			}
		}
		b.WriteString(indent)
		b.WriteString("}\n")
	}
}

func renderField(b *strings.Builder, node *querystate.FieldNode, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	b.WriteString(indent)
	if node.Alias != "" {
		b.WriteString(node.Alias)
		b.WriteString(": ")
	}
	b.WriteString(node.FieldName)

	if args := node.ArgsInOrder(); len(args) > 0 {
		parts := make([]string, len(args))
		for i, arg := range args {
			parts[i] = arg.Name + ": " + renderArgValue(arg.Value)
		}
		b.WriteString("(")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(")")
	}

	for _, d := range node.Directives {
		b.WriteString(" ")
		b.WriteString(renderDirective(d))
	}

	if node.HasSelections() {
		b.WriteString(" {\n")
		renderSelections(b, node, depth+1)
		b.WriteString(indent)
		b.WriteString("}")
	}
	b.WriteString("\n")
}

func renderDirective(d querystate.Directive) string {
	name := "@" + strings.TrimPrefix(d.Name, "@")
	if len(d.Arguments) == 0 {
		return name
	}
	parts := make([]string, len(d.Arguments))
	for i, arg := range d.Arguments {
		parts[i] = arg.Name + ": " + renderArgValue(arg.Value)
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

// renderArgValue prints an argument value according to its variant:
// variables and enum symbols verbatim, typed values with scalar-aware
// printing, pre-quoted strings quoted exactly once, and everything else
// through generic value serialization.
func renderArgValue(v *querystate.ArgValue) string {
	if v == nil {
		return "null"
	}
	switch {
	case v.IsVariable:
		if s, ok := v.Value.(string); ok {
			return s
		}
		return validation.SerializeGraphQLValue(v.Value)
	case v.IsEnum:
		if s, ok := v.Value.(string); ok {
			return s
		}
		return validation.SerializeGraphQLValue(v.Value)
	case v.IsPreQuoted:
		if s, ok := v.Value.(string); ok {
			return validation.QuoteGraphQLString(s)
		}
		return validation.SerializeGraphQLValue(v.Value)
	case v.IsTyped:
		return validation.SerializeTypedValue(v.Value, v.TypeName)
	default:
		return validation.SerializeGraphQLValue(v.Value)
	}
}
