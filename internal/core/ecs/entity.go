package ecs

import "fmt"

// Entity encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generations start at 1 and increment on despawn, so a
// stale Entity never passes Alive and NoEntity is never allocated.
type Entity uint64

// NoEntity is the reserved "no entity" sentinel.
const NoEntity Entity = 0

func newEntity(index, generation uint32) Entity {
	return Entity(uint64(generation)<<32 | uint64(index))
}

func (e Entity) Index() uint32      { return uint32(e) }
func (e Entity) Generation() uint32 { return uint32(e >> 32) }
func (e Entity) IsZero() bool       { return e == NoEntity }

func (e Entity) String() string {
	return fmt.Sprintf("%dv%d", e.Index(), e.Generation())
}

// EntityPool allocates entities with generational indices and a free list.
// Despawned indexes are reused; the generation bump plus the per-slot alive
// flag guarantee Alive is exact for any Entity the pool ever returned.
type EntityPool struct {
	generations []uint32
	alive       []bool
	freeList    []uint32
	nextIndex   uint32
	liveCount   int
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		generations: make([]uint32, 0, 1024),
		alive:       make([]bool, 0, 1024),
		freeList:    make([]uint32, 0, 256),
	}
}

func (p *EntityPool) Create() Entity {
	var idx uint32
	if n := len(p.freeList); n > 0 {
		idx = p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
	} else {
		idx = p.nextIndex
		p.nextIndex++
		p.generations = append(p.generations, 1)
		p.alive = append(p.alive, false)
	}
	p.alive[idx] = true
	p.liveCount++
	return newEntity(idx, p.generations[idx])
}

func (p *EntityPool) Alive(e Entity) bool {
	idx := e.Index()
	if idx >= p.nextIndex {
		return false
	}
	return p.alive[idx] && p.generations[idx] == e.Generation()
}

func (p *EntityPool) Destroy(e Entity) {
	if !p.Alive(e) {
		return
	}
	idx := e.Index()
	p.alive[idx] = false
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
	p.liveCount--
}

// Len reports the number of live entities.
func (p *EntityPool) Len() int { return p.liveCount }

// Each visits every live entity in ascending index order.
func (p *EntityPool) Each(fn func(Entity) bool) {
	for idx := uint32(0); idx < p.nextIndex; idx++ {
		if !p.alive[idx] {
			continue
		}
		if !fn(newEntity(idx, p.generations[idx])) {
			return
		}
	}
}

// Reset destroys every live entity at once. Generations are kept and bumped
// so handles from before the reset stay dead forever; all indexes become
// reusable, lowest first.
func (p *EntityPool) Reset() {
	p.freeList = p.freeList[:0]
	for idx := p.nextIndex; idx > 0; idx-- {
		i := idx - 1
		if p.alive[i] {
			p.alive[i] = false
			p.generations[i]++
		}
		p.freeList = append(p.freeList, i)
	}
	p.liveCount = 0
}
