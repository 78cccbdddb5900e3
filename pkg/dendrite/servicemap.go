package dendrite

import (
	"fmt"
	"strings"
)

// Declaration is a single normalized service declaration produced by discovery
type Declaration struct {
	// Key is the service identifier used to resolve the service from a container
	Key string `json:"key"`

	// Type is the declared service type name
	Type string `json:"type"`

	// Nullable reports whether resolution is allowed to yield no service
	Nullable bool `json:"nullable"`

	// Attributes carries extra marker payload; a non-empty payload changes how
	// the declaration is stored in the ServiceMap (appended instead of keyed)
	Attributes map[string]string `json:"attributes,omitempty"`
}

// String returns the flat string form of the declaration ("Type" or "?Type")
func (d Declaration) String() string {
	if d.Nullable {
		return "?" + d.Type
	}
	return d.Type
}

// serviceMapEntry is a single slot in a ServiceMap. Keyed entries are
// addressable via their service key; appended entries are only reachable
// through ordered iteration.
type serviceMapEntry struct {
	keyed bool
	decl  Declaration
}

// ServiceMap is an insertion-ordered collection of service declarations.
//
// Plain declarations are stored under their service key and can be
// overwritten; declarations carrying attributes are appended list-style and
// are not addressable by key. Iteration order always follows insertion order,
// with an overwrite keeping the original position of its key.
type ServiceMap struct {
	entries []serviceMapEntry
	index   map[string]int
}

// NewServiceMap creates an empty ServiceMap
func NewServiceMap() *ServiceMap {
	return &ServiceMap{
		index: make(map[string]int),
	}
}

// Set stores a keyed declaration. If the key already exists the declaration
// is replaced in place, keeping its original position. The zero ServiceMap is
// ready to use.
func (m *ServiceMap) Set(key string, decl Declaration) {
	decl.Key = key
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if pos, exists := m.index[key]; exists {
		m.entries[pos].decl = decl
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, serviceMapEntry{keyed: true, decl: decl})
}

// Append stores a declaration list-style, without a key slot. Appended
// declarations are not returned by Get even when their Key field is set.
func (m *ServiceMap) Append(decl Declaration) {
	m.entries = append(m.entries, serviceMapEntry{decl: decl})
}

// Get returns the keyed declaration for a service key
func (m *ServiceMap) Get(key string) (Declaration, bool) {
	if m == nil {
		return Declaration{}, false
	}
	pos, exists := m.index[key]
	if !exists {
		return Declaration{}, false
	}
	return m.entries[pos].decl, true
}

// Has reports whether a keyed declaration exists for the service key
func (m *ServiceMap) Has(key string) bool {
	_, exists := m.Get(key)
	return exists
}

// Len returns the total number of declarations, keyed and appended
func (m *ServiceMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Keys returns the service keys of all keyed declarations in insertion order
func (m *ServiceMap) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for _, entry := range m.entries {
		if entry.keyed {
			keys = append(keys, entry.decl.Key)
		}
	}
	return keys
}

// Entries returns all declarations in insertion order
func (m *ServiceMap) Entries() []Declaration {
	result := make([]Declaration, len(m.entries))
	for i, entry := range m.entries {
		result[i] = entry.decl
	}
	return result
}

// Merge copies every declaration from other into the map, preserving other's
// order. Keyed declarations overwrite same-keyed entries; appended
// declarations are re-appended.
func (m *ServiceMap) Merge(other *ServiceMap) {
	if other == nil {
		return
	}
	for _, entry := range other.entries {
		if entry.keyed {
			m.Set(entry.decl.Key, entry.decl)
		} else {
			m.Append(entry.decl)
		}
	}
}

// String returns a compact human-readable rendering, mainly for debugging
// and test failure output
func (m *ServiceMap) String() string {
	if m == nil || len(m.entries) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(m.entries))
	for _, entry := range m.entries {
		if entry.keyed {
			parts = append(parts, fmt.Sprintf("%q: %q", entry.decl.Key, entry.decl.String()))
		} else {
			parts = append(parts, fmt.Sprintf("[%s %s]", entry.decl.Key, entry.decl.String()))
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
