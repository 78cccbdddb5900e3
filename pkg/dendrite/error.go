package dendrite

import (
	"errors"
	"fmt"
)

// ErrNoContainer is returned when a service is resolved before any container
// has been attached via SetContainer.
var ErrNoContainer = errors.New("dendrite: no container attached")

// ConfigError reports a malformed service marker found during discovery.
//
// It identifies the subscriber type and the member the marker is attached to.
// Discovery aborts on the first ConfigError; no partial service map is
// returned. Callers should treat it as a programming mistake surfaced at
// container build time, not a condition to retry.
type ConfigError struct {
	// Type is the subscriber type name under inspection
	Type string

	// Member is the method or field the invalid marker is attached to
	Member string

	// Reason describes what is wrong with the marker
	Reason string
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("dendrite: invalid service marker on %s.%s: %s", e.Type, e.Member, e.Reason)
}

// newConfigError creates a ConfigError with a formatted reason
func newConfigError(typeName, member, format string, args ...interface{}) *ConfigError {
	return &ConfigError{
		Type:   typeName,
		Member: member,
		Reason: fmt.Sprintf(format, args...),
	}
}

// MissingServiceError is returned when a container has no service under the
// requested key.
type MissingServiceError struct {
	Key string
}

// Error implements the error interface
func (e *MissingServiceError) Error() string {
	return fmt.Sprintf("dendrite: service %q not found in container", e.Key)
}

// WrongTypeServiceError is returned by ServiceAs when a service exists but is
// not of the requested type.
type WrongTypeServiceError struct {
	Key  string
	Want string
	Got  string
}

// Error implements the error interface
func (e *WrongTypeServiceError) Error() string {
	return fmt.Sprintf("dendrite: service %q is %s, not %s", e.Key, e.Got, e.Want)
}
