package mbean

import (
	"sort"
	"strings"
)

// Kind enumerates the variants of Value.
type Kind int

const (
	KindScalar    Kind = iota // Plain value rendered as text
	KindComposite             // Named sub-fields
	KindList                  // Ordered sequence
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindComposite:
		return "composite"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is an attribute value or operation result returned by the remote endpoint.
// Exactly one of the variants is populated, as reported by Kind.
type Value struct {
	kind   Kind
	text   string
	fields map[string]Value
	items  []Value
}

// Scalar returns a scalar value with the given natural text form.
func Scalar(text string) Value {
	return Value{kind: KindScalar, text: text}
}

// Composite returns a composite value holding the given fields.
func Composite(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{kind: KindComposite, fields: fields}
}

// List returns a list value holding the given items.
func List(items ...Value) Value {
	return Value{kind: KindList, items: items}
}

// Kind returns the variant of v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsComposite reports whether v has named sub-fields.
func (v Value) IsComposite() bool {
	return v.kind == KindComposite
}

// Field looks up a sub-field of a composite value.
// It returns false for missing keys and for non-composite values.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindComposite {
		return Value{}, false
	}
	f, ok := v.fields[key]
	return f, ok
}

// Keys returns the sorted sub-field names of a composite value.
func (v Value) Keys() []string {
	keys := make([]string, 0, len(v.fields))
	for k := range v.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Items returns the elements of a list value.
func (v Value) Items() []Value {
	return v.items
}

// String renders the value in its natural text form.
// Composites render as {k=v, ...} with sorted keys, lists as [a, b, ...].
func (v Value) String() string {
	switch v.kind {
	case KindComposite:
		var sb strings.Builder
		sb.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k)
			sb.WriteByte('=')
			sb.WriteString(v.fields[k].String())
		}
		sb.WriteByte('}')
		return sb.String()
	case KindList:
		parts := make([]string, len(v.items))
		for i, item := range v.items {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return v.text
	}
}
