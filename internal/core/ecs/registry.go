package ecs

import "github.com/kestrelengine/kestrel/internal/core/schema"

// ComponentType is the immutable descriptor of a registered component:
// a unique name, a defaults template, and an optional validation shape.
type ComponentType struct {
	name     string
	defaults Instance
	shape    schema.Shape
}

func (t *ComponentType) Name() string { return t.name }

// Defaults returns a fresh deep clone on every call so callers can never
// alias the template across entities.
func (t *ComponentType) Defaults() Instance { return CloneInstance(t.defaults) }

// Shape returns the validation shape; nil means the type is unvalidated.
func (t *ComponentType) Shape() schema.Shape { return t.shape }

// IsTag reports whether the type accepts no data fields at all.
func (t *ComponentType) IsTag() bool { return t.shape != nil && len(t.shape) == 0 }

// Registry holds component type definitions keyed by name. It is an explicit
// value injected into each World; there is no process-wide registry.
type Registry struct {
	types map[string]*ComponentType
	order []string
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*ComponentType, 16)}
}

// Define registers a component type, or returns the existing descriptor
// unchanged if the name is already taken (get-or-create by name). The
// defaults are cloned at definition time; a nil shape disables validation.
func (r *Registry) Define(name string, defaults Instance, shape schema.Shape) *ComponentType {
	if t, ok := r.types[name]; ok {
		return t
	}
	t := &ComponentType{
		name:     name,
		defaults: CloneInstance(defaults),
		shape:    shape,
	}
	r.types[name] = t
	r.order = append(r.order, name)
	return t
}

// DefineTag registers a marker type: empty defaults and an empty shape, so
// any supplied data field is rejected as unknown.
func (r *Registry) DefineTag(name string) *ComponentType {
	return r.Define(name, nil, schema.Shape{})
}

// Lookup returns the descriptor for name if registered.
func (r *Registry) Lookup(name string) (*ComponentType, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Defaults returns a fresh clone of the named type's defaults.
func (r *Registry) Defaults(name string) (Instance, error) {
	t, ok := r.types[name]
	if !ok {
		return nil, &NotFoundError{Component: name}
	}
	return t.Defaults(), nil
}

// Clear removes every registration. A later Define with a previously used
// name creates a fresh descriptor.
func (r *Registry) Clear() {
	r.types = make(map[string]*ComponentType, 16)
	r.order = r.order[:0]
}

func (r *Registry) Len() int { return len(r.types) }

// Types returns the registered descriptors in definition order.
func (r *Registry) Types() []*ComponentType {
	out := make([]*ComponentType, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.types[name])
	}
	return out
}
