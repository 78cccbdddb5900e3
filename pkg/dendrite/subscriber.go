package dendrite

import (
	"fmt"
	"reflect"
)

// ServiceSubscriber is implemented by types that declare which services they
// need from a container. The canonical implementation delegates to Collect:
//
//	func (s *UserService) SubscribedServices() (*dendrite.ServiceMap, error) {
//		return dendrite.Collect(s)
//	}
//
// cmd/dendrite generates this method for annotated types. A type embedding a
// subscriber inherits the embedded type's declarations through Collect's
// ancestor seeding, but must declare its own SubscribedServices when it adds
// markers of its own: a promoted method only sees the embedded receiver.
type ServiceSubscriber interface {
	SubscribedServices() (*ServiceMap, error)
}

// ContainerSetter is implemented by types that accept a container reference
// from the outside, returning whatever container was attached before.
type ContainerSetter interface {
	SetContainer(c Container) Container
}

// ContainerAware is an embeddable base that stores the container reference a
// DI framework hands to a subscriber after discovery.
//
// Embedding ContainerAware gives a type SetContainer and Service for free.
// A type embedding another subscriber shares that subscriber's ContainerAware
// through promotion, so a single SetContainer call reaches the whole
// composition chain — the Go rendition of forwarding the container to an
// ancestor's setter.
type ContainerAware struct {
	container Container
}

// SetContainer attaches a container and returns the previously attached one,
// or nil when this is the first attachment.
func (a *ContainerAware) SetContainer(c Container) Container {
	previous := a.container
	a.container = c
	return previous
}

// Container returns the currently attached container, or nil
func (a *ContainerAware) Container() Container {
	return a.container
}

// Service resolves a service by key through the attached container.
// It returns ErrNoContainer when no container has been attached yet.
func (a *ContainerAware) Service(key string) (interface{}, error) {
	if a.container == nil {
		return nil, ErrNoContainer
	}
	return a.container.Get(key)
}

// ServiceAs resolves a service by key and asserts it to T.
//
// It returns the container's own error when the key is missing and a
// WrongTypeServiceError when the stored service is not a T.
func ServiceAs[T any](a *ContainerAware, key string) (T, error) {
	var zero T
	raw, err := a.Service(key)
	if err != nil {
		return zero, err
	}
	service, ok := raw.(T)
	if !ok {
		return zero, &WrongTypeServiceError{
			Key:  key,
			Want: fmt.Sprintf("%T", zero),
			Got:  reflect.TypeOf(raw).String(),
		}
	}
	return service, nil
}
