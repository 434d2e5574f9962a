// Package querystate holds the serializable representation of a GraphQL
// operation under construction: the field tree, arguments, variables,
// fragments, and directives a session accumulates tool call by tool call.
//
// The model is deliberately schema-agnostic; schema checks happen in the
// validation package before a mutation is applied. What the model does
// enforce are its own structural invariants: unique selection keys among
// siblings and valid path addressing.
package querystate

import (
	"strings"
	"time"
)

// Operation types.
const (
	OperationQuery        = "query"
	OperationMutation     = "mutation"
	OperationSubscription = "subscription"
)

// ValidOperationType reports whether s is query, mutation, or subscription.
func ValidOperationType(s string) bool {
	switch s {
	case OperationQuery, OperationMutation, OperationSubscription:
		return true
	}
	return false
}

// ArgValue is an argument value in one of five renderings: a variable
// reference, an enum symbol, a typed value carrying its GraphQL type, a
// pre-quoted literal, or a raw JSON value printed with generic rules.
// Exactly one of the Is* flags is set, or none for a raw value.
type ArgValue struct {
	IsVariable  bool   `json:"is_variable,omitempty"`
	IsEnum      bool   `json:"is_enum,omitempty"`
	IsTyped     bool   `json:"is_typed,omitempty"`
	IsPreQuoted bool   `json:"is_prequoted,omitempty"`
	TypeName    string `json:"type_name,omitempty"`
	Value       any    `json:"value"`
}

// VariableArg creates a variable reference. Name must include the leading $.
func VariableArg(name string) *ArgValue {
	return &ArgValue{IsVariable: true, Value: name}
}

// EnumArg creates an enum symbol value, printed verbatim.
func EnumArg(symbol string) *ArgValue {
	return &ArgValue{IsEnum: true, Value: symbol}
}

// TypedArg creates a value that was validated against a schema type at
// set time; typeName is the GraphQL type string it was checked against.
func TypedArg(value any, typeName string) *ArgValue {
	return &ArgValue{IsTyped: true, TypeName: typeName, Value: value}
}

// RawArg creates a generic value, printed with the default rules.
func RawArg(value any) *ArgValue {
	return &ArgValue{Value: value}
}

// PreQuotedArg wraps a string that must render as a String literal quoted
// exactly once, even when it starts with $ or looks numeric.
func PreQuotedArg(text string) *ArgValue {
	return &ArgValue{IsPreQuoted: true, Value: text}
}

// VariableName returns the referenced variable name (with $) when the
// value is a variable reference, either via the IsVariable flag or the
// plain-string-with-leading-$ shorthand.
func (a *ArgValue) VariableName() (string, bool) {
	s, ok := a.Value.(string)
	if !ok {
		return "", false
	}
	if a.IsVariable || (!a.IsEnum && !a.IsTyped && !a.IsPreQuoted && strings.HasPrefix(s, "$")) {
		return s, true
	}
	return "", false
}

// DirectiveArgument is a named argument on a directive.
type DirectiveArgument struct {
	Name  string    `json:"name"`
	Value *ArgValue `json:"value"`
}

// Directive is a directive application with optional arguments.
type Directive struct {
	Name      string              `json:"name"`
	Arguments []DirectiveArgument `json:"arguments,omitempty"`
}

// InlineFragment is an inline type-conditioned selection.
type InlineFragment struct {
	OnType         string                `json:"on_type"`
	Selections     map[string]*FieldNode `json:"selections"`
	SelectionOrder []string              `json:"selectionOrder,omitempty"`
}

// Fragment is a named fragment definition.
type Fragment struct {
	OnType     string                `json:"onType"`
	Fields     map[string]*FieldNode `json:"fields"`
	FieldOrder []string              `json:"fieldOrder,omitempty"`
}

// FieldNode is one field in the selection tree. The order slices exist
// because rendering must be deterministic in insertion order and Go maps
// do not preserve it; they are persisted alongside the maps.
type FieldNode struct {
	FieldName       string                `json:"fieldName"`
	Alias           string                `json:"alias,omitempty"`
	Args            map[string]*ArgValue  `json:"args"`
	ArgOrder        []string              `json:"argOrder,omitempty"`
	Directives      []Directive           `json:"directives"`
	Fields          map[string]*FieldNode `json:"fields"`
	FieldOrder      []string              `json:"fieldOrder,omitempty"`
	FragmentSpreads []string              `json:"fragmentSpreads"`
	InlineFragments []*InlineFragment     `json:"inlineFragments"`
}

// NewFieldNode creates an empty field node.
func NewFieldNode(fieldName, alias string) *FieldNode {
	return &FieldNode{
		FieldName:       fieldName,
		Alias:           alias,
		Args:            make(map[string]*ArgValue),
		Directives:      []Directive{},
		Fields:          make(map[string]*FieldNode),
		FragmentSpreads: []string{},
		InlineFragments: []*InlineFragment{},
	}
}

// SelectionKey returns the alias when present, otherwise the field name.
func (n *FieldNode) SelectionKey() string {
	if n.Alias != "" {
		return n.Alias
	}
	return n.FieldName
}

// HasSelections reports whether the node carries any child selections.
func (n *FieldNode) HasSelections() bool {
	return len(n.Fields) > 0 || len(n.FragmentSpreads) > 0 || len(n.InlineFragments) > 0
}

// ChildrenInOrder returns the child fields in insertion order.
func (n *FieldNode) ChildrenInOrder() []*FieldNode {
	children := make([]*FieldNode, 0, len(n.FieldOrder))
	for _, key := range n.FieldOrder {
		if child, ok := n.Fields[key]; ok {
			children = append(children, child)
		}
	}
	return children
}

// ArgsInOrder returns (name, value) pairs in insertion order.
func (n *FieldNode) ArgsInOrder() []DirectiveArgument {
	args := make([]DirectiveArgument, 0, len(n.ArgOrder))
	for _, name := range n.ArgOrder {
		if v, ok := n.Args[name]; ok {
			args = append(args, DirectiveArgument{Name: name, Value: v})
		}
	}
	return args
}

// QueryState is the full workspace a session holds: one operation under
// construction plus everything needed to render and execute it.
type QueryState struct {
	Headers             map[string]string    `json:"headers"`
	OperationType       string               `json:"operationType"`
	OperationTypeName   string               `json:"operationTypeName"`
	OperationName       string               `json:"operationName,omitempty"`
	QueryStructure      *FieldNode           `json:"queryStructure"`
	Fragments           map[string]*Fragment `json:"fragments"`
	FragmentOrder       []string             `json:"fragmentOrder,omitempty"`
	VariablesSchema     map[string]string    `json:"variablesSchema"`
	VariablesOrder      []string             `json:"variablesOrder,omitempty"`
	VariablesDefaults   map[string]any       `json:"variablesDefaults"`
	VariablesValues     map[string]any       `json:"variablesValues"`
	OperationDirectives []Directive          `json:"operationDirectives"`
	CreatedAt           string               `json:"createdAt"`
}

// New creates an empty query state for the given operation.
func New(headers map[string]string, operationType, operationTypeName, operationName string) *QueryState {
	if headers == nil {
		headers = make(map[string]string)
	}
	return &QueryState{
		Headers:             headers,
		OperationType:       operationType,
		OperationTypeName:   operationTypeName,
		OperationName:       operationName,
		QueryStructure:      NewFieldNode("", ""),
		Fragments:           make(map[string]*Fragment),
		VariablesSchema:     make(map[string]string),
		VariablesDefaults:   make(map[string]any),
		VariablesValues:     make(map[string]any),
		OperationDirectives: []Directive{},
		CreatedAt:           time.Now().UTC().Format(time.RFC3339),
	}
}

// Normalize re-initializes nil maps after a JSON round trip so mutation
// code never has to nil-check.
func (qs *QueryState) Normalize() {
	if qs.Headers == nil {
		qs.Headers = make(map[string]string)
	}
	if qs.QueryStructure == nil {
		qs.QueryStructure = NewFieldNode("", "")
	}
	if qs.Fragments == nil {
		qs.Fragments = make(map[string]*Fragment)
	}
	if qs.VariablesSchema == nil {
		qs.VariablesSchema = make(map[string]string)
	}
	if qs.VariablesDefaults == nil {
		qs.VariablesDefaults = make(map[string]any)
	}
	if qs.VariablesValues == nil {
		qs.VariablesValues = make(map[string]any)
	}
	normalizeNode(qs.QueryStructure)
	for _, frag := range qs.Fragments {
		if frag.Fields == nil {
			frag.Fields = make(map[string]*FieldNode)
		}
		for _, f := range frag.Fields {
			normalizeNode(f)
		}
	}
}

func normalizeNode(n *FieldNode) {
	if n.Args == nil {
		n.Args = make(map[string]*ArgValue)
	}
	if n.Fields == nil {
		n.Fields = make(map[string]*FieldNode)
	}
	if n.Directives == nil {
		n.Directives = []Directive{}
	}
	if n.FragmentSpreads == nil {
		n.FragmentSpreads = []string{}
	}
	if n.InlineFragments == nil {
		n.InlineFragments = []*InlineFragment{}
	}
	for _, child := range n.Fields {
		normalizeNode(child)
	}
	for _, inline := range n.InlineFragments {
		if inline.Selections == nil {
			inline.Selections = make(map[string]*FieldNode)
		}
		for _, f := range inline.Selections {
			normalizeNode(f)
		}
	}
}
