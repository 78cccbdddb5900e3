package annotations

import (
	"fmt"

	"github.com/toyz/dendrite/internal/errors"
)

// Prefix is the comment prefix that marks a dendrite annotation
const Prefix = "dendrite::"

// Kind identifies the annotation variant
type Kind int

const (
	// SubscriberKind marks a struct whose methods may carry subscribe
	// annotations: //dendrite::subscriber
	SubscriberKind Kind = iota

	// SubscribeKind marks a method as a subscribed service:
	// //dendrite::subscribe [-Key=...] [-Type=...] [-Nullable] [-Attr=name:value]
	SubscribeKind
)

// String returns the annotation keyword for the kind
func (k Kind) String() string {
	switch k {
	case SubscriberKind:
		return "subscriber"
	case SubscribeKind:
		return "subscribe"
	default:
		return "unknown"
	}
}

// ParseKind converts an annotation keyword into a Kind
func ParseKind(s string) (Kind, error) {
	switch s {
	case "subscriber":
		return SubscriberKind, nil
	case "subscribe":
		return SubscribeKind, nil
	default:
		return 0, fmt.Errorf("unknown annotation type %q", s)
	}
}

// Attribute is one -Attr=name:value pair, kept in source order so generated
// registration code stays deterministic
type Attribute struct {
	Name  string
	Value string
}

// Parsed is a fully parsed and schema-validated annotation
type Parsed struct {
	Kind       Kind
	Key        string
	Type       string
	Nullable   bool
	Attributes []Attribute
	Location   errors.SourceLocation
	Raw        string
}

// HasAttributes reports whether the annotation carries extra payload
func (p *Parsed) HasAttributes() bool {
	return len(p.Attributes) > 0
}
