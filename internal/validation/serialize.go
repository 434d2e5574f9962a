package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// GraphQLStringMarker marks a wrapped string that is already quoted
// exactly once when it crosses the JSON boundary.
const GraphQLStringMarker = "__graphqlString"

// QuoteGraphQLString renders s as a GraphQL String literal.
func QuoteGraphQLString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 {
				b.WriteString(fmt.Sprintf(`\u%04X`, r))
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// SerializeGraphQLValue renders a JSON-shaped value as a GraphQL value
// literal. Strings with a leading $ print verbatim as variable
// references; objects carrying the __graphqlString marker print their
// wrapped string quoted exactly once.
func SerializeGraphQLValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		if strings.HasPrefix(v, "$") {
			return v
		}
		return QuoteGraphQLString(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return serializeFloat(float64(v))
	case float64:
		return serializeFloat(v)
	case json.Number:
		return v.String()
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = SerializeGraphQLValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		if wrapped, ok := v[GraphQLStringMarker]; ok && len(v) == 1 {
			if s, ok := wrapped.(string); ok {
				return QuoteGraphQLString(s)
			}
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + SerializeGraphQLValue(v[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		raw, err := json.Marshal(value)
		if err != nil {
			return "null"
		}
		return string(raw)
	}
}

func serializeFloat(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// SerializeTypedValue renders a value that was validated against a named
// scalar type at set time, using scalar-aware printing. Non-scalar type
// names fall back to generic serialization.
func SerializeTypedValue(value any, typeName string) string {
	name := stripModifiers(typeName)
	switch name {
	case "Int":
		if n, ok := CoerceToInteger(value); ok {
			return strconv.FormatInt(n, 10)
		}
	case "Float":
		if f, ok := CoerceToFloat(value); ok {
			if f == math.Trunc(f) {
				// Keep a Float literal shape even for integral values.
				return strconv.FormatFloat(f, 'f', 1, 64)
			}
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
	case "Boolean":
		if b, ok := CoerceToBoolean(value); ok {
			return strconv.FormatBool(b)
		}
	case "String":
		if s, ok := value.(string); ok {
			return QuoteGraphQLString(s)
		}
	case "ID":
		switch v := value.(type) {
		case string:
			return QuoteGraphQLString(v)
		default:
			if n, ok := CoerceToInteger(v); ok {
				return strconv.FormatInt(n, 10)
			}
		}
	}
	return SerializeGraphQLValue(value)
}
