package app

import (
	"fmt"
	"reflect"
)

// Resources holds singleton values shared across systems, keyed by concrete
// type. Like the world it has exactly one writer, the scheduling goroutine.
type Resources struct {
	values map[reflect.Type]any
}

func NewResources() *Resources {
	return &Resources{values: make(map[reflect.Type]any, 8)}
}

// SetResource stores v, replacing any previous value of the same type.
func SetResource[T any](r *Resources, v T) {
	r.values[resourceKey[T]()] = v
}

// Resource fetches the value of type T.
func Resource[T any](r *Resources) (T, bool) {
	v, ok := r.values[resourceKey[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// MustResource fetches the value of type T and panics when it is absent.
// Meant for the resources the App itself pre-registers (Time, Commands,
// the event bus, the logger).
func MustResource[T any](r *Resources) T {
	v, ok := Resource[T](r)
	if !ok {
		panic(fmt.Sprintf("resource %v not registered", resourceKey[T]()))
	}
	return v
}

// RemoveResource drops the value of type T if present.
func RemoveResource[T any](r *Resources) {
	delete(r.values, resourceKey[T]())
}

func (r *Resources) Len() int { return len(r.values) }

func resourceKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
