package ecs

import "iter"

// Access declares how a system touches a component term.
type Access uint8

const (
	AccessRead Access = iota
	AccessMut
)

func (a Access) String() string {
	if a == AccessMut {
		return "mut"
	}
	return "read"
}

// Term names one component a query matches on.
type Term struct {
	Name   string
	Access Access
}

// Read builds a read-access term.
func Read(name string) Term { return Term{Name: name, Access: AccessRead} }

// Mut builds a mutable-access term.
func Mut(name string) Term { return Term{Name: name, Access: AccessMut} }

// Query is an immutable description of a component intersection. Bind it to
// a world to get an iterable, cached QueryInstance. A query with no terms
// matches every live entity.
type Query struct {
	terms []Term
}

func NewQuery(terms ...Term) *Query {
	q := &Query{terms: make([]Term, len(terms))}
	copy(q.terms, terms)
	return q
}

// Terms returns a copy of the term list in declaration order.
func (q *Query) Terms() []Term {
	out := make([]Term, len(q.terms))
	copy(out, q.terms)
	return out
}

// Bind attaches the query to a world. The match list is computed lazily on
// first use, then kept until the world's structural version moves.
func (q *Query) Bind(w *World) *QueryInstance {
	return &QueryInstance{query: q, world: w}
}

// Query is shorthand for NewQuery(terms...).Bind(w).
func (w *World) Query(terms ...Term) *QueryInstance {
	return NewQuery(terms...).Bind(w)
}

// QueryInstance is a query bound to a world, caching its match list. The
// cache is revalidated against the world's structural version on every entry
// point (Each, Iter, Count, IsEmpty, Entities), including nested ones, so a
// stale list is never observable.
type QueryInstance struct {
	query *Query
	world *World

	matches []Entity
	version uint64
	valid   bool
}

func (qi *QueryInstance) Query() *Query { return qi.query }

// Each calls fn for every matching entity, ascending by entity index,
// stopping early when fn returns false. The instance slice is reused between
// visits; hold on to the instances, not the slice.
//
// Structural changes (spawn, despawn, remove, clear) are blocked for the
// duration and return IterationGuardError; use Commands for those. Insert
// and in-place instance mutation stay legal.
func (qi *QueryInstance) Each(fn func(Entity, []Instance) bool) {
	qi.revalidate()
	if len(qi.matches) == 0 {
		return
	}
	terms := qi.query.terms
	stores := make([]*store, len(terms))
	for i, t := range terms {
		stores[i] = qi.world.stores[t.Name]
	}

	qi.world.beginIteration()
	defer qi.world.endIteration()

	row := make([]Instance, len(terms))
	for _, e := range qi.matches {
		for i, s := range stores {
			// Removal is guarded off mid-iteration, so the lookup
			// cannot miss; Insert may have swapped the instance and
			// the fresh one is what we hand out.
			row[i], _ = s.Get(e)
		}
		if !fn(e, row) {
			return
		}
	}
}

// Iter adapts Each to a range-over-func sequence:
//
//	for e, row := range players.Iter() { ... }
//
// Breaking out of the range releases the iteration guard like any other
// early return.
func (qi *QueryInstance) Iter() iter.Seq2[Entity, []Instance] {
	return func(yield func(Entity, []Instance) bool) {
		qi.Each(yield)
	}
}

// Count returns the number of matches without taking the iteration guard.
func (qi *QueryInstance) Count() int {
	qi.revalidate()
	return len(qi.matches)
}

func (qi *QueryInstance) IsEmpty() bool { return qi.Count() == 0 }

// Entities returns a copy of the current match list, ascending by index.
func (qi *QueryInstance) Entities() []Entity {
	qi.revalidate()
	out := make([]Entity, len(qi.matches))
	copy(out, qi.matches)
	return out
}

func (qi *QueryInstance) revalidate() {
	if qi.valid && qi.version == qi.world.version {
		return
	}
	names := make([]string, len(qi.query.terms))
	for i, t := range qi.query.terms {
		names[i] = t.Name
	}
	qi.matches = qi.world.EntitiesWith(names...)
	qi.version = qi.world.version
	qi.valid = true
}
