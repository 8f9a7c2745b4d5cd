// Package mbean provides the remote managed-object model used by the poller:
// object names, attribute values and the connection contract a management
// protocol client has to fulfil.
package mbean

import (
	"fmt"
	"sort"
	"strings"
)

// Property is a single key=value pair of an object name.
type Property struct {
	Key   string
	Value string // Value as written, including quotes for quoted values
}

// ObjectName identifies a managed resource on the remote endpoint.
// It is made of a domain and an ordered set of key properties.
type ObjectName struct {
	domain              string
	properties          []Property
	propertyListPattern bool // key list contains the "*" wildcard element
}

// MalformedObjectNameError is returned when a string is not a valid object name.
type MalformedObjectNameError struct {
	Name   string // Text that failed to parse
	Reason string // What is wrong with it
}

// Error implements the error interface.
func (e *MalformedObjectNameError) Error() string {
	return fmt.Sprintf("malformed object name %q: %s", e.Name, e.Reason)
}

func malformed(name, format string, args ...interface{}) error {
	return &MalformedObjectNameError{Name: name, Reason: fmt.Sprintf(format, args...)}
}

// ParseObjectName parses the textual form domain:key=value[,key=value...].
//
// Values may be quoted ("..."), in which case they may contain the reserved
// characters , = : and use the escapes \\ \" \* \? \n. The single element "*"
// in the key list marks a property list pattern.
func ParseObjectName(name string) (ObjectName, error) {
	if name == "" {
		return ObjectName{}, malformed(name, "name cannot be empty")
	}

	colon := strings.IndexByte(name, ':')
	if colon < 0 {
		return ObjectName{}, malformed(name, "domain part must be followed by ':'")
	}

	domain := name[:colon]
	if strings.ContainsRune(domain, '\n') {
		return ObjectName{}, malformed(name, "domain cannot contain a newline")
	}

	elements, err := splitProperties(name, name[colon+1:])
	if err != nil {
		return ObjectName{}, err
	}
	if len(elements) == 0 {
		return ObjectName{}, malformed(name, "key properties cannot be empty")
	}

	on := ObjectName{domain: domain}
	seen := make(map[string]struct{}, len(elements))
	for _, elem := range elements {
		if elem == "*" {
			if on.propertyListPattern {
				return ObjectName{}, malformed(name, "property list pattern '*' given more than once")
			}
			on.propertyListPattern = true
			continue
		}

		eq := strings.IndexByte(elem, '=')
		if eq < 0 {
			return ObjectName{}, malformed(name, "key property %q has no '='", elem)
		}
		key, value := elem[:eq], elem[eq+1:]

		if err := checkKey(name, key); err != nil {
			return ObjectName{}, err
		}
		if err := checkValue(name, key, value); err != nil {
			return ObjectName{}, err
		}
		if _, dup := seen[key]; dup {
			return ObjectName{}, malformed(name, "key %q given more than once", key)
		}
		seen[key] = struct{}{}

		on.properties = append(on.properties, Property{Key: key, Value: value})
	}

	if len(on.properties) == 0 && !on.propertyListPattern {
		return ObjectName{}, malformed(name, "key properties cannot be empty")
	}

	return on, nil
}

// MustParseObjectName is like ParseObjectName but panics on error.
// Intended for compile-time constant names.
func MustParseObjectName(name string) ObjectName {
	on, err := ParseObjectName(name)
	if err != nil {
		panic(err)
	}
	return on
}

// splitProperties splits the key list on commas that are not inside a quoted value.
func splitProperties(name, list string) ([]string, error) {
	if list == "" {
		return nil, nil
	}

	var (
		elements []string
		start    int
		inQuote  bool
	)
	for i := 0; i < len(list); i++ {
		switch c := list[i]; {
		case inQuote && c == '\\':
			i++ // skip escaped character
		case c == '"':
			inQuote = !inQuote
		case !inQuote && c == ',':
			elements = append(elements, list[start:i])
			start = i + 1
		}
	}
	if inQuote {
		return nil, malformed(name, "unterminated quoted value")
	}
	elements = append(elements, list[start:])

	for _, elem := range elements {
		if elem == "" {
			return nil, malformed(name, "empty key property")
		}
	}
	return elements, nil
}

func checkKey(name, key string) error {
	if key == "" {
		return malformed(name, "key cannot be empty")
	}
	if i := strings.IndexAny(key, ":=,*?\n"); i >= 0 {
		return malformed(name, "invalid character %q in key %q", key[i], key)
	}
	return nil
}

func checkValue(name, key, value string) error {
	if value == "" {
		return malformed(name, "value of key %q cannot be empty", key)
	}

	if value[0] != '"' {
		if i := strings.IndexAny(value, ":=,\"\n"); i >= 0 {
			return malformed(name, "invalid character %q in value of key %q", value[i], key)
		}
		return nil
	}

	if len(value) < 2 || value[len(value)-1] != '"' {
		return malformed(name, "quoted value of key %q is not terminated", key)
	}
	body := value[1 : len(value)-1]
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '\\':
			if i+1 >= len(body) {
				return malformed(name, "trailing escape in value of key %q", key)
			}
			switch body[i+1] {
			case '\\', '"', '*', '?', 'n':
				i++
			default:
				return malformed(name, "invalid escape '\\%c' in value of key %q", body[i+1], key)
			}
		case '"':
			return malformed(name, "unescaped quote in value of key %q", key)
		case '\n':
			return malformed(name, "newline in value of key %q", key)
		}
	}
	return nil
}

// Domain returns the domain part of the name.
func (n ObjectName) Domain() string {
	return n.domain
}

// Properties returns the key properties in the order they were written.
func (n ObjectName) Properties() []Property {
	out := make([]Property, len(n.properties))
	copy(out, n.properties)
	return out
}

// Property returns the value of the named key.
func (n ObjectName) Property(key string) (string, bool) {
	for _, p := range n.properties {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// IsPattern reports whether the name contains wildcards in the domain,
// in a value, or as a property list pattern.
func (n ObjectName) IsPattern() bool {
	if n.propertyListPattern || strings.ContainsAny(n.domain, "*?") {
		return true
	}
	for _, p := range n.properties {
		if p.Value[0] != '"' && strings.ContainsAny(p.Value, "*?") {
			return true
		}
	}
	return false
}

// IsZero reports whether n is the zero ObjectName.
func (n ObjectName) IsZero() bool {
	return n.domain == "" && len(n.properties) == 0 && !n.propertyListPattern
}

// String returns the name with key properties in their original order.
func (n ObjectName) String() string {
	return n.format(n.properties)
}

// Canonical returns the name with key properties sorted lexicographically by key.
func (n ObjectName) Canonical() string {
	props := n.Properties()
	sort.Slice(props, func(i, j int) bool { return props[i].Key < props[j].Key })
	return n.format(props)
}

func (n ObjectName) format(props []Property) string {
	if n.IsZero() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(n.domain)
	sb.WriteByte(':')
	for i, p := range props {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(p.Key)
		sb.WriteByte('=')
		sb.WriteString(p.Value)
	}
	if n.propertyListPattern {
		if len(props) > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('*')
	}
	return sb.String()
}
