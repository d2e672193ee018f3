package ecs

// store holds every Instance of one component type, keyed by entity.
// Map-backed: membership and point lookups are the hot operations; any
// ordering shown to callers is imposed by World/QueryInstance sorting.
type store struct {
	name string
	data map[Entity]Instance
}

func newStore(name string) *store {
	return &store{
		name: name,
		data: make(map[Entity]Instance, 256),
	}
}

func (s *store) Set(e Entity, inst Instance) {
	s.data[e] = inst
}

func (s *store) Get(e Entity) (Instance, bool) {
	inst, ok := s.data[e]
	return inst, ok
}

func (s *store) Remove(e Entity) bool {
	if _, ok := s.data[e]; !ok {
		return false
	}
	delete(s.data, e)
	return true
}

func (s *store) Has(e Entity) bool {
	_, ok := s.data[e]
	return ok
}

func (s *store) Len() int {
	return len(s.data)
}

func (s *store) Each(fn func(Entity, Instance) bool) {
	for e, inst := range s.data {
		if !fn(e, inst) {
			return
		}
	}
}

func (s *store) Clear() {
	clear(s.data)
}
