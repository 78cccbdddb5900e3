package dendrite

import "sync"

// Container resolves a service key to a constructed service instance.
//
// This is the contract a dependency injection container must satisfy to
// supply services to subscribers. Get returns a MissingServiceError (or a
// container-specific equivalent) when no service exists under the key.
type Container interface {
	// Has reports whether a service exists for the key
	Has(key string) bool

	// Get returns the service stored under the key
	Get(key string) (interface{}, error)
}

// MapContainer is a simple in-memory Container, suitable for tests, examples
// and small applications that wire services by hand.
type MapContainer struct {
	mu       sync.RWMutex
	services map[string]interface{}
}

// NewMapContainer creates an empty MapContainer
func NewMapContainer() *MapContainer {
	return &MapContainer{
		services: make(map[string]interface{}),
	}
}

// Provide stores a service under a key and returns the container for chaining
func (c *MapContainer) Provide(key string, service interface{}) *MapContainer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[key] = service
	return c
}

// Has reports whether a service exists for the key
func (c *MapContainer) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.services[key]
	return exists
}

// Get returns the service stored under the key
func (c *MapContainer) Get(key string) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	service, exists := c.services[key]
	if !exists {
		return nil, &MissingServiceError{Key: key}
	}
	return service, nil
}
