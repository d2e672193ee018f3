package app

import (
	"fmt"
	"strings"
)

// CircularDependencyError reports ordering constraints that form a cycle
// within one phase. Systems names the stuck systems in registration order.
type CircularDependencyError struct {
	Phase   Phase
	Systems []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular ordering among systems [%s] in phase %s",
		strings.Join(e.Systems, ", "), e.Phase)
}

// schedule holds one phase's systems in registration order and resolves the
// execution order lazily, re-sorting only after a registration.
type schedule struct {
	systems []*System
	order   []*System
	dirty   bool
}

func (s *schedule) add(sys System) {
	s.systems = append(s.systems, &sys)
	s.dirty = true
}

// resolve computes the execution order: a stable topological sort where
// systems without constraints relative to each other keep registration
// order (Kahn's algorithm, lowest registration index first). Constraints
// are matched by declared name, binding every bearer when names repeat;
// a name matching no registered system is ignored.
func (s *schedule) resolve(phase Phase) ([]*System, error) {
	if !s.dirty {
		return s.order, nil
	}
	n := len(s.systems)
	if n == 0 {
		s.order, s.dirty = nil, false
		return nil, nil
	}

	byName := make(map[string][]int, n)
	for i, sys := range s.systems {
		byName[sys.Name] = append(byName[sys.Name], i)
	}

	succ := make([][]int, n)
	indeg := make([]int, n)
	addEdge := func(from, to int) {
		if from == to {
			return
		}
		succ[from] = append(succ[from], to)
		indeg[to]++
	}
	for i, sys := range s.systems {
		for _, name := range sys.RunAfter {
			for _, j := range byName[name] {
				addEdge(j, i)
			}
		}
		for _, name := range sys.RunBefore {
			for _, j := range byName[name] {
				addEdge(i, j)
			}
		}
	}

	order := make([]*System, 0, n)
	done := make([]bool, n)
	for len(order) < n {
		pick := -1
		for i := 0; i < n; i++ {
			if !done[i] && indeg[i] == 0 {
				pick = i
				break
			}
		}
		if pick == -1 {
			return nil, &CircularDependencyError{Phase: phase, Systems: s.stuck(done, succ)}
		}
		done[pick] = true
		order = append(order, s.systems[pick])
		for _, j := range succ[pick] {
			indeg[j]--
		}
	}

	s.order, s.dirty = order, false
	return order, nil
}

// stuck names the systems actually involved in a cycle: from the nodes the
// sort could not place, it peels off pure downstream dependents (nodes with
// no unplaced successor) until only cycle members remain.
func (s *schedule) stuck(done []bool, succ [][]int) []string {
	n := len(s.systems)
	remaining := make([]bool, n)
	for i := 0; i < n; i++ {
		remaining[i] = !done[i]
	}
	for changed := true; changed; {
		changed = false
		for i := 0; i < n; i++ {
			if !remaining[i] {
				continue
			}
			out := 0
			for _, j := range succ[i] {
				if remaining[j] {
					out++
				}
			}
			if out == 0 {
				remaining[i] = false
				changed = true
			}
		}
	}
	var names []string
	for i := 0; i < n; i++ {
		if remaining[i] {
			names = append(names, s.systems[i].Name)
		}
	}
	return names
}
