// Package schema fetches, caches, and navigates the upstream GraphQL
// schema. The schema arrives as introspection JSON and is decoded into a
// typed form the validator can walk without depending on the shape of the
// introspection payload at every call site.
package schema

import (
	"encoding/json"
	"strings"
)

// Type kinds as reported by introspection.
const (
	KindScalar      = "SCALAR"
	KindObject      = "OBJECT"
	KindInterface   = "INTERFACE"
	KindUnion       = "UNION"
	KindEnum        = "ENUM"
	KindInputObject = "INPUT_OBJECT"
	KindList        = "LIST"
	KindNonNull     = "NON_NULL"
)

// TypeRef is a (possibly wrapped) reference to a named type.
type TypeRef struct {
	Kind   string   `json:"kind"`
	Name   string   `json:"name"`
	OfType *TypeRef `json:"ofType"`
}

// Type is a named type definition from the introspected schema.
type Type struct {
	Kind          string       `json:"kind"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Fields        []Field      `json:"fields"`
	InputFields   []InputValue `json:"inputFields"`
	Interfaces    []TypeRef    `json:"interfaces"`
	EnumValues    []EnumValue  `json:"enumValues"`
	PossibleTypes []TypeRef    `json:"possibleTypes"`
}

// Field is an output field on an object or interface type.
type Field struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Args        []InputValue `json:"args"`
	Type        TypeRef      `json:"type"`
}

// InputValue is a field argument or input-object field.
type InputValue struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Type         TypeRef `json:"type"`
	DefaultValue *string `json:"defaultValue"`
}

// EnumValue is a member of an enum type.
type EnumValue struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Schema is the typed form of an introspected upstream schema.
type Schema struct {
	QueryTypeName        string
	MutationTypeName     string
	SubscriptionTypeName string

	types map[string]*Type

	// Raw retains the full introspection data payload for agents that
	// want to inspect the schema directly.
	Raw json.RawMessage
}

// introspectionData mirrors the `data` object of an introspection response.
type introspectionData struct {
	Schema struct {
		QueryType        *TypeRef `json:"queryType"`
		MutationType     *TypeRef `json:"mutationType"`
		SubscriptionType *TypeRef `json:"subscriptionType"`
		Types            []Type   `json:"types"`
	} `json:"__schema"`
}

// FromIntrospection decodes an introspection `data` payload into a Schema.
func FromIntrospection(raw json.RawMessage) (*Schema, error) {
	var data introspectionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}

	s := &Schema{
		types: make(map[string]*Type, len(data.Schema.Types)),
		Raw:   raw,
	}
	if data.Schema.QueryType != nil {
		s.QueryTypeName = data.Schema.QueryType.Name
	}
	if data.Schema.MutationType != nil {
		s.MutationTypeName = data.Schema.MutationType.Name
	}
	if data.Schema.SubscriptionType != nil {
		s.SubscriptionTypeName = data.Schema.SubscriptionType.Name
	}
	for i := range data.Schema.Types {
		t := data.Schema.Types[i]
		s.types[t.Name] = &t
	}
	return s, nil
}

// String renders the reference in GraphQL type syntax, e.g. "[Int!]!".
func (r *TypeRef) String() string {
	switch r.Kind {
	case KindNonNull:
		if r.OfType == nil {
			return "!"
		}
		return r.OfType.String() + "!"
	case KindList:
		if r.OfType == nil {
			return "[]"
		}
		return "[" + r.OfType.String() + "]"
	default:
		return r.Name
	}
}

// NamedType unwraps NON_NULL and LIST wrappers down to the named type.
func (r *TypeRef) NamedType() *TypeRef {
	t := r
	for t.OfType != nil && (t.Kind == KindNonNull || t.Kind == KindList) {
		t = t.OfType
	}
	return t
}

// IsNonNull reports whether the outermost wrapper is NON_NULL.
func (r *TypeRef) IsNonNull() bool {
	return r.Kind == KindNonNull
}

// TypeByName returns the named type definition, or nil.
func (s *Schema) TypeByName(name string) *Type {
	return s.types[strings.TrimSpace(name)]
}

// HasType reports whether a named type exists on the schema.
func (s *Schema) HasType(name string) bool {
	return s.TypeByName(name) != nil
}

// RootTypeName returns the root type name for an operation type, or ""
// when the schema does not define that root.
func (s *Schema) RootTypeName(operationType string) string {
	switch operationType {
	case "query":
		return s.QueryTypeName
	case "mutation":
		return s.MutationTypeName
	case "subscription":
		return s.SubscriptionTypeName
	default:
		return ""
	}
}

// FieldOn returns the field definition for fieldName on the named type,
// or nil when the type or field does not exist.
func (s *Schema) FieldOn(typeName, fieldName string) *Field {
	t := s.TypeByName(typeName)
	if t == nil {
		return nil
	}
	for i := range t.Fields {
		if t.Fields[i].Name == fieldName {
			return &t.Fields[i]
		}
	}
	return nil
}

// FieldNames returns the names of all fields on the named type.
func (s *Schema) FieldNames(typeName string) []string {
	t := s.TypeByName(typeName)
	if t == nil {
		return nil
	}
	names := make([]string, len(t.Fields))
	for i := range t.Fields {
		names[i] = t.Fields[i].Name
	}
	return names
}

// Argument returns the argument definition on a field, or nil.
func (f *Field) Argument(name string) *InputValue {
	for i := range f.Args {
		if f.Args[i].Name == name {
			return &f.Args[i]
		}
	}
	return nil
}

// ArgNames returns the argument names of a field.
func (f *Field) ArgNames() []string {
	names := make([]string, len(f.Args))
	for i := range f.Args {
		names[i] = f.Args[i].Name
	}
	return names
}

// FieldAtPath navigates a dotted path of field names from the given type
// and returns the terminal field definition, or nil when any segment is
// missing.
func (s *Schema) FieldAtPath(fromType, fieldPath string) *Field {
	if fieldPath == "" {
		return nil
	}
	currentType := fromType
	var field *Field
	for _, segment := range strings.Split(fieldPath, ".") {
		field = s.FieldOn(currentType, segment)
		if field == nil {
			return nil
		}
		currentType = field.Type.NamedType().Name
	}
	return field
}

// TypeAtPath resolves the named type reached by following a dotted path
// of field names from the given type. The empty path returns fromType.
func (s *Schema) TypeAtPath(fromType, fieldPath string) string {
	if fieldPath == "" {
		return fromType
	}
	field := s.FieldAtPath(fromType, fieldPath)
	if field == nil {
		return ""
	}
	return field.Type.NamedType().Name
}

// TypeNames returns the names of all non-introspection types.
func (s *Schema) TypeNames() []string {
	names := make([]string, 0, len(s.types))
	for name := range s.types {
		if !strings.HasPrefix(name, "__") {
			names = append(names, name)
		}
	}
	return names
}

// ArgumentType navigates a dotted field path from the root type of the
// given operation and returns the type of the named argument on the
// terminal field, or nil when any segment is missing. Path segments are
// field names; interface and object fields are followed alike.
func (s *Schema) ArgumentType(operationType, fieldPath, argName string) *TypeRef {
	rootName := s.RootTypeName(operationType)
	if rootName == "" || fieldPath == "" {
		return nil
	}

	currentType := rootName
	var field *Field
	for _, segment := range strings.Split(fieldPath, ".") {
		field = s.FieldOn(currentType, segment)
		if field == nil {
			return nil
		}
		currentType = field.Type.NamedType().Name
	}

	arg := field.Argument(argName)
	if arg == nil {
		return nil
	}
	return &arg.Type
}
