package dendrite

import (
	"reflect"
)

var serviceSubscriberType = reflect.TypeOf((*ServiceSubscriber)(nil)).Elem()

// Collect walks a subscriber type's own members and produces the normalized
// service map a DI container consumes.
//
// Declarations come from two channels: method markers registered for the
// type (see MarkerRegistry) and `service` struct tags on fields whose type
// is a computed-read accessor (a zero-argument single-result func). Anonymous
// embedded subscribers are collected first and seed the result, so inherited
// declarations survive without re-scanning inherited members; a member the
// type re-declares under the same key overwrites the inherited entry.
//
// Scan order is deterministic: embedded types in field order, then method
// markers in registration order, then tagged fields in field order.
//
// Collect is a pure function of the type's metadata: calling it twice yields
// identical maps, and it never mutates the prototype. A malformed marker
// aborts the scan with a ConfigError; no partial map is returned.
func Collect(prototype interface{}) (*ServiceMap, error) {
	return CollectFrom(DefaultMarkerRegistry, prototype)
}

// CollectFrom is Collect with an explicit marker registry, mainly for tests
// that must not touch the global registry.
func CollectFrom(registry MarkerRegistry, prototype interface{}) (*ServiceMap, error) {
	t, err := subscriberType(prototype)
	if err != nil {
		return nil, err
	}
	return collectType(registry, t, make(map[reflect.Type]bool))
}

func collectType(registry MarkerRegistry, t reflect.Type, visited map[reflect.Type]bool) (*ServiceMap, error) {
	visited[t] = true
	result := NewServiceMap()

	// Embedded subscribers first: their declarations seed the map, so the
	// type's own markers can overwrite inherited keys below.
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.Anonymous {
			continue
		}
		embedded := field.Type
		if embedded.Kind() == reflect.Ptr {
			embedded = embedded.Elem()
		}
		if embedded.Kind() != reflect.Struct {
			continue
		}
		// Pointer embedding permits cycles; unbounded recursion here would
		// crash instead of reporting a configuration error.
		if visited[embedded] {
			return nil, newConfigError(t.Name(), field.Name,
				"cyclic embedding of %s", embedded)
		}
		seed, err := collectEmbedded(registry, embedded, visited)
		if err != nil {
			return nil, err
		}
		result.Merge(seed)
	}

	// Method markers, in registration order.
	markers, _ := registry.MarkersFor(t)
	ptrType := reflect.PointerTo(t)
	for _, marker := range markers {
		method, found := ptrType.MethodByName(marker.Member)
		if !found {
			return nil, newConfigError(t.Name(), marker.Member,
				"type %s has no method %s (service methods must be exported)", t, marker.Member)
		}
		funcType := method.Func.Type()
		// In(0) is the receiver.
		if funcType.NumIn() != 1 || funcType.IsVariadic() {
			return nil, newConfigError(t.Name(), marker.Member,
				"service methods must not take parameters")
		}
		if funcType.NumOut() != 1 {
			return nil, newConfigError(t.Name(), marker.Member,
				"service methods must return exactly one value")
		}

		key := marker.Key
		if key == "" {
			key = t.Name() + "::" + marker.Member
		}
		mergeDeclaration(result, key, marker, funcType.Out(0))
	}

	// Tagged fields, in field order. Anonymous fields belong to the seeding
	// pass above; a tag on one is ignored rather than validated as an
	// accessor, since an embedded type can never be a func() T.
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			continue
		}
		tag, tagged := field.Tag.Lookup(TagName)
		if !tagged {
			continue
		}

		marker, err := parseFieldTag(field.Name, tag)
		if err != nil {
			return nil, newConfigError(t.Name(), field.Name, "malformed service tag: %v", err)
		}
		accessor := field.Type
		if accessor.Kind() != reflect.Func {
			return nil, newConfigError(t.Name(), field.Name,
				"service fields need a computed-read accessor (field type must be func() T, got %s)", accessor)
		}
		if accessor.NumIn() != 0 || accessor.IsVariadic() {
			return nil, newConfigError(t.Name(), field.Name,
				"service field accessors must not take parameters")
		}
		if accessor.NumOut() != 1 {
			return nil, newConfigError(t.Name(), field.Name,
				"service field accessors must return exactly one value")
		}

		key := marker.Key
		if key == "" {
			key = t.Name() + "::$" + field.Name + "::get"
		}
		mergeDeclaration(result, key, marker, accessor.Out(0))
	}

	return result, nil
}

// collectEmbedded resolves an anonymous embedded struct type's declarations.
// An embedded type that implements ServiceSubscriber is asked directly, so a
// custom implementation wins over structural discovery; otherwise any type
// that carries declarations of its own is collected recursively. Embedded
// types with no declarations anywhere (plain embeds, ContainerAware) yield
// nothing. The caller strips pointer indirection and checks visited.
func collectEmbedded(registry MarkerRegistry, t reflect.Type, visited map[reflect.Type]bool) (*ServiceMap, error) {
	if reflect.PointerTo(t).Implements(serviceSubscriberType) {
		subscriber := reflect.New(t).Interface().(ServiceSubscriber)
		return subscriber.SubscribedServices()
	}
	if hasDeclarations(registry, t, make(map[reflect.Type]bool)) {
		return collectType(registry, t, visited)
	}
	return nil, nil
}

// hasDeclarations reports whether a struct type carries markers directly or
// through its embedded types. seen bounds the walk on cyclic embedding.
func hasDeclarations(registry MarkerRegistry, t reflect.Type, seen map[reflect.Type]bool) bool {
	if seen[t] {
		return false
	}
	seen[t] = true
	if registry.IsRegistered(t) {
		return true
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if _, tagged := field.Tag.Lookup(TagName); tagged {
			return true
		}
		if field.Anonymous {
			embedded := field.Type
			if embedded.Kind() == reflect.Ptr {
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct && hasDeclarations(registry, embedded, seen) {
				return true
			}
		}
	}
	return false
}

// mergeDeclaration applies defaulting rules and stores the declaration.
// Markers carrying attributes are appended as full records; plain markers
// collapse into flat keyed entries.
func mergeDeclaration(m *ServiceMap, key string, marker Marker, declared reflect.Type) {
	typeName, nilable := inferType(declared)
	if marker.Type != "" {
		typeName = marker.Type
	}

	decl := Declaration{
		Key:  key,
		Type: typeName,
		// OR semantics: an explicit Nullable=false never suppresses the
		// nilability of the declared type itself.
		Nullable:   marker.Nullable || nilable,
		Attributes: marker.Attributes,
	}

	if len(marker.Attributes) > 0 {
		m.Append(decl)
		return
	}
	m.Set(key, decl)
}

// inferType derives the default service type name and nilability from a
// member's declared Go type. One level of pointer indirection is stripped
// for the name, mirroring how an optional "?Foo" names Foo.
func inferType(t reflect.Type) (name string, nilable bool) {
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		nilable = true
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name(), nilable
	}
	return t.String(), nilable
}
