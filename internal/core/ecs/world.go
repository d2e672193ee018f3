package ecs

import (
	"sort"

	"github.com/kestrelengine/kestrel/internal/core/schema"
)

// World is the top-level ECS container. It owns the entity pool, one store
// per component type, the structural version counter that keys query caches,
// and the iteration depth counter used for reentrancy protection.
//
// Single-threaded: exactly one goroutine (the scheduling one) may touch a
// World at a time.
type World struct {
	pool     *EntityPool
	registry *Registry
	stores   map[string]*store

	version   uint64
	iterDepth int
}

// NewWorld creates an empty world bound to an injected registry.
func NewWorld(reg *Registry) *World {
	return &World{
		pool:     NewEntityPool(),
		registry: reg,
		stores:   make(map[string]*store, 16),
	}
}

func (w *World) Registry() *Registry { return w.registry }

// Version is the structural version: it increments on spawn, despawn,
// insert, remove, and clear. Component data mutation never increments it.
func (w *World) Version() uint64 { return w.version }

func (w *World) Alive(e Entity) bool { return w.pool.Alive(e) }

func (w *World) EntityCount() int { return w.pool.Len() }

// Spawn allocates a new entity with no components attached.
func (w *World) Spawn() (Entity, error) {
	if err := w.guard("spawn"); err != nil {
		return NoEntity, err
	}
	e := w.pool.Create()
	w.version++
	return e, nil
}

// Despawn removes the entity and every component instance attached to it.
func (w *World) Despawn(e Entity) error {
	if err := w.guard("despawn"); err != nil {
		return err
	}
	if !w.pool.Alive(e) {
		return &NotFoundError{Entity: e}
	}
	for _, s := range w.stores {
		s.Remove(e)
	}
	w.pool.Destroy(e)
	w.version++
	return nil
}

// Insert validates data against the component's shape, stores the result
// merged over a fresh clone of the defaults, and bumps the version. It is
// permitted during query iteration; an existing instance is replaced.
func (w *World) Insert(e Entity, name string, data Instance) error {
	if !w.pool.Alive(e) {
		return &NotFoundError{Entity: e}
	}
	t, ok := w.registry.Lookup(name)
	if !ok {
		return &NotFoundError{Component: name}
	}
	if vs := schema.Validate(t.shape, data); len(vs) > 0 {
		return &ValidationError{Component: name, Violations: vs}
	}
	w.storeFor(name).Set(e, mergeInstance(t.defaults, data))
	w.version++
	return nil
}

// Get returns the stored instance itself, not a copy: mutations through it
// are immediately visible (write-through storage).
func (w *World) Get(e Entity, name string) (Instance, error) {
	if !w.pool.Alive(e) {
		return nil, &NotFoundError{Entity: e}
	}
	if s, ok := w.stores[name]; ok {
		if inst, ok := s.Get(e); ok {
			return inst, nil
		}
	}
	return nil, &NotFoundError{Entity: e, Component: name}
}

// Has reports component presence and never fails.
func (w *World) Has(e Entity, name string) bool {
	if !w.pool.Alive(e) {
		return false
	}
	s, ok := w.stores[name]
	return ok && s.Has(e)
}

// Remove detaches the component and bumps the version.
func (w *World) Remove(e Entity, name string) error {
	if err := w.guard("remove"); err != nil {
		return err
	}
	if !w.pool.Alive(e) {
		return &NotFoundError{Entity: e}
	}
	s, ok := w.stores[name]
	if !ok || !s.Remove(e) {
		return &NotFoundError{Entity: e, Component: name}
	}
	w.version++
	return nil
}

// EntitiesWith is an uncached ad-hoc scan returning the entities owning all
// named components, ascending by index. With no names it returns every live
// entity. Queries are the cached hot path; this is for convenience and tests.
func (w *World) EntitiesWith(names ...string) []Entity {
	if len(names) == 0 {
		out := make([]Entity, 0, w.pool.Len())
		w.pool.Each(func(e Entity) bool {
			out = append(out, e)
			return true
		})
		return out
	}

	smallest, rest, ok := w.pickSmallest(names)
	if !ok {
		return nil
	}
	out := make([]Entity, 0, smallest.Len())
	smallest.Each(func(e Entity, _ Instance) bool {
		for _, s := range rest {
			if !s.Has(e) {
				return true
			}
		}
		out = append(out, e)
		return true
	})
	sortEntities(out)
	return out
}

// Clear despawns everything and resets every store. Registrations survive;
// use Registry.Clear for those.
func (w *World) Clear() error {
	if err := w.guard("clear"); err != nil {
		return err
	}
	w.pool.Reset()
	for _, s := range w.stores {
		s.Clear()
	}
	w.version++
	return nil
}

func (w *World) guard(op string) error {
	if w.iterDepth > 0 {
		return &IterationGuardError{Op: op}
	}
	return nil
}

func (w *World) beginIteration() { w.iterDepth++ }

func (w *World) endIteration() { w.iterDepth-- }

func (w *World) storeFor(name string) *store {
	s, ok := w.stores[name]
	if !ok {
		s = newStore(name)
		w.stores[name] = s
	}
	return s
}

// pickSmallest resolves names to stores and singles out the smallest one to
// drive an intersection scan. ok is false when any name has no store yet.
func (w *World) pickSmallest(names []string) (smallest *store, rest []*store, ok bool) {
	rest = make([]*store, 0, len(names)-1)
	for _, name := range names {
		s, found := w.stores[name]
		if !found {
			return nil, nil, false
		}
		if smallest == nil || s.Len() < smallest.Len() {
			if smallest != nil {
				rest = append(rest, smallest)
			}
			smallest = s
			continue
		}
		rest = append(rest, s)
	}
	return smallest, rest, true
}

// sortEntities orders ascending by index. Only one generation of an index is
// ever live at once, so this is a total order over any live entity list.
func sortEntities(list []Entity) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].Index() < list[j].Index()
	})
}
