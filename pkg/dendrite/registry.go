package dendrite

import (
	"fmt"
	"reflect"
	"sync"
)

// MarkerRegistry stores method markers per subscriber type.
//
// Go attaches no metadata to methods, so method markers are declared through
// registration calls instead — typically from generated init code (see
// cmd/dendrite), or by hand. Field markers live in struct tags and are read
// directly during discovery; they are never registered here.
type MarkerRegistry interface {
	// RegisterMarkers records the method markers for the prototype's type.
	// Registering the same type twice, or the same member twice, is an error.
	RegisterMarkers(prototype interface{}, markers ...Marker) error

	// MarkersFor returns the registered markers for a type in registration
	// order. The second return reports whether the type is registered at all.
	MarkersFor(t reflect.Type) ([]Marker, bool)

	// IsRegistered checks whether a type has registered markers
	IsRegistered(t reflect.Type) bool

	// Clear removes all registrations (intended for tests)
	Clear()
}

// inMemoryMarkerRegistry implements MarkerRegistry
type inMemoryMarkerRegistry struct {
	mu      sync.RWMutex
	markers map[reflect.Type][]Marker
}

// NewMarkerRegistry creates a new empty in-memory marker registry
func NewMarkerRegistry() MarkerRegistry {
	return &inMemoryMarkerRegistry{
		markers: make(map[reflect.Type][]Marker),
	}
}

// DefaultMarkerRegistry is the global marker registry used by Collect
var DefaultMarkerRegistry MarkerRegistry = NewMarkerRegistry()

func (r *inMemoryMarkerRegistry) RegisterMarkers(prototype interface{}, markers ...Marker) error {
	t, err := subscriberType(prototype)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.markers[t]; exists {
		return fmt.Errorf("markers for type %s are already registered", t)
	}

	seen := make(map[string]bool, len(markers))
	for _, marker := range markers {
		if marker.Member == "" {
			return fmt.Errorf("marker for type %s has no member name", t)
		}
		if seen[marker.Member] {
			return fmt.Errorf("duplicate marker for member %s.%s", t, marker.Member)
		}
		seen[marker.Member] = true
	}

	r.markers[t] = append([]Marker(nil), markers...)
	return nil
}

func (r *inMemoryMarkerRegistry) MarkersFor(t reflect.Type) ([]Marker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	markers, exists := r.markers[t]
	if !exists {
		return nil, false
	}
	return append([]Marker(nil), markers...), true
}

func (r *inMemoryMarkerRegistry) IsRegistered(t reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.markers[t]
	return exists
}

func (r *inMemoryMarkerRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markers = make(map[reflect.Type][]Marker)
}

// subscriberType resolves a prototype value to its underlying struct type.
// One level of pointer indirection is stripped so &UserService{} and
// UserService{} register under the same type.
func subscriberType(prototype interface{}) (reflect.Type, error) {
	if prototype == nil {
		return nil, fmt.Errorf("subscriber prototype must not be nil")
	}
	t := reflect.TypeOf(prototype)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("subscriber prototype must be a struct, got %s", t.Kind())
	}
	return t, nil
}

// Package-level convenience functions operating on DefaultMarkerRegistry

// RegisterMarkers registers method markers for a type with the global registry
func RegisterMarkers(prototype interface{}, markers ...Marker) error {
	return DefaultMarkerRegistry.RegisterMarkers(prototype, markers...)
}

// MustRegisterMarkers registers method markers and panics on failure. This is
// what generated registration code calls from init, where a bad registration
// is a build defect rather than a runtime condition.
func MustRegisterMarkers(prototype interface{}, markers ...Marker) {
	if err := RegisterMarkers(prototype, markers...); err != nil {
		panic(err)
	}
}
