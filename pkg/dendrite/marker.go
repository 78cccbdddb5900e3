package dendrite

import (
	"fmt"
	"strings"
)

// TagName is the struct tag key that marks a field as a subscribed service
const TagName = "service"

// Marker declares that a member's value should be resolved from a dependency
// container instead of being computed by the type itself.
//
// Method markers are registered per type through a MarkerRegistry (usually by
// generated init code, see cmd/dendrite). Field markers are written inline as
// struct tags and never need registration:
//
//	type ReportService struct {
//		Clock func() Clock `service:",nullable"`
//	}
//
// All fields except Member are optional; discovery computes defaults from the
// member's own declared type information.
type Marker struct {
	// Member is the name of the method (or field, for tag-sourced markers)
	// the marker is attached to
	Member string

	// Key overrides the default service key ("<Type>::<Member>" for methods,
	// "<Type>::$<field>::get" for fields)
	Key string

	// Type overrides the inferred service type name
	Type string

	// Nullable marks the service as optional. Inferred nullability is never
	// suppressed: a nilable member type keeps the declaration nullable even
	// when this is false.
	Nullable bool

	// Attributes is extra payload forwarded verbatim into the declaration.
	// A marker with attributes is appended to the service map as a full
	// record instead of being collapsed into a flat keyed entry.
	Attributes map[string]string
}

// parseFieldTag parses a `service:"..."` struct tag value into a Marker.
//
// The grammar follows the encoding/json convention: the first element is the
// service key (may be empty), followed by comma-separated options:
//
//	service:"custom.key,type=Mailer,nullable,attr:transport=smtp"
//
// Supported options: "type=<name>", "nullable", "attr:<name>=<value>".
func parseFieldTag(member, tag string) (Marker, error) {
	marker := Marker{Member: member}
	if tag == "" {
		return marker, nil
	}

	parts := strings.Split(tag, ",")
	marker.Key = strings.TrimSpace(parts[0])

	for _, part := range parts[1:] {
		option := strings.TrimSpace(part)
		switch {
		case option == "":
			return marker, fmt.Errorf("empty option in tag %q", tag)

		case option == "nullable":
			marker.Nullable = true

		case strings.HasPrefix(option, "type="):
			name := strings.TrimPrefix(option, "type=")
			if name == "" {
				return marker, fmt.Errorf("option %q requires a type name", option)
			}
			marker.Type = name

		case strings.HasPrefix(option, "attr:"):
			pair := strings.TrimPrefix(option, "attr:")
			name, value, found := strings.Cut(pair, "=")
			if !found || name == "" {
				return marker, fmt.Errorf("attribute option %q must be attr:<name>=<value>", option)
			}
			if marker.Attributes == nil {
				marker.Attributes = make(map[string]string)
			}
			if _, exists := marker.Attributes[name]; exists {
				return marker, fmt.Errorf("duplicate attribute %q", name)
			}
			marker.Attributes[name] = value

		default:
			return marker, fmt.Errorf("unknown option %q (expected nullable, type=..., or attr:...)", option)
		}
	}

	return marker, nil
}
