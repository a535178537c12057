package grove

import (
	"fmt"
	"slices"
	"strings"
)

// PropertyType is a semantic type tag describing a component property. Tags
// are metadata for editors and tooling; the core never enforces them.
type PropertyType string

const (
	Boolean    PropertyType = "boolean"
	Number     PropertyType = "number"
	Integer    PropertyType = "integer"
	String     PropertyType = "string"
	StringNull PropertyType = "string_null"
	Vec2Type   PropertyType = "vec2"
	RGBA       PropertyType = "rgba"
)

// ArrayOf returns the tag for a sequence of elem.
func ArrayOf(elem PropertyType) PropertyType {
	return PropertyType("array(" + string(elem) + ")")
}

// MapOf returns the tag for a string-keyed map of elem.
func MapOf(elem PropertyType) PropertyType {
	return PropertyType("map(" + string(elem) + ")")
}

// Enum returns the tag for a single choice among values.
func Enum(values ...string) PropertyType {
	return PropertyType("enum(" + strings.Join(values, ",") + ")")
}

// Flags returns the tag for any combination of values.
func Flags(values ...string) PropertyType {
	return PropertyType("flags(" + strings.Join(values, ",") + ")")
}

// Asset returns the tag for an asset reference resolved by protocol, with an
// optional file pattern.
func Asset(protocol, pattern string) PropertyType {
	if pattern == "" {
		return PropertyType("asset(" + protocol + ")")
	}
	return PropertyType("asset(" + protocol + ":" + pattern + ")")
}

// Kind returns the tag's head, e.g. "array" for "array(number)".
func (t PropertyType) Kind() string {
	s := string(t)
	if i := strings.IndexByte(s, '('); i >= 0 {
		return s[:i]
	}
	return s
}

// Args returns the raw text between the outer parentheses, or "".
func (t PropertyType) Args() string {
	s := string(t)
	i := strings.IndexByte(s, '(')
	if i < 0 || !strings.HasSuffix(s, ")") {
		return ""
	}
	return s[i+1 : len(s)-1]
}

// ParsePropertyType validates a tag string against the tag vocabulary.
func ParsePropertyType(s string) (PropertyType, error) {
	t := PropertyType(strings.TrimSpace(s))
	switch t.Kind() {
	case "boolean", "number", "integer", "string", "string_null", "vec2", "rgba":
		if t.Kind() != string(t) {
			return "", fmt.Errorf("%w: %q takes no arguments", ErrInvalidPropertyType, s)
		}
		return t, nil
	case "array", "map":
		if !strings.HasSuffix(string(t), ")") {
			return "", fmt.Errorf("%w: %q", ErrInvalidPropertyType, s)
		}
		if _, err := ParsePropertyType(t.Args()); err != nil {
			return "", fmt.Errorf("%w: element of %q", ErrInvalidPropertyType, s)
		}
		return t, nil
	case "enum", "flags":
		if !strings.HasSuffix(string(t), ")") || strings.TrimSpace(t.Args()) == "" {
			return "", fmt.Errorf("%w: %q needs at least one value", ErrInvalidPropertyType, s)
		}
		return t, nil
	case "asset":
		if !strings.HasSuffix(string(t), ")") {
			return "", fmt.Errorf("%w: %q", ErrInvalidPropertyType, s)
		}
		protocol, _, _ := strings.Cut(t.Args(), ":")
		if protocol == "" {
			return "", fmt.Errorf("%w: %q needs a protocol", ErrInvalidPropertyType, s)
		}
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPropertyType, s)
}

// Schema maps property names to their type tags.
type Schema map[string]PropertyType

// Names returns the property names in sorted order.
func (s Schema) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
