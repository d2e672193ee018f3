package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderNames(t *testing.T, s *schedule, phase Phase) []string {
	t.Helper()
	order, err := s.resolve(phase)
	require.NoError(t, err)
	names := make([]string, len(order))
	for i, sys := range order {
		names[i] = sys.Name
	}
	return names
}

func TestScheduleKeepsRegistrationOrder(t *testing.T) {
	var s schedule
	s.add(System{Name: "a"})
	s.add(System{Name: "b"})
	s.add(System{Name: "c"})

	assert.Equal(t, []string{"a", "b", "c"}, orderNames(t, &s, Update))
}

func TestScheduleRunAfter(t *testing.T) {
	var s schedule
	s.add(System{Name: "render", RunAfter: []string{"move"}})
	s.add(System{Name: "move"})

	assert.Equal(t, []string{"move", "render"}, orderNames(t, &s, Update))
}

func TestScheduleRunBefore(t *testing.T) {
	var s schedule
	s.add(System{Name: "late"})
	s.add(System{Name: "early", RunBefore: []string{"late"}})

	assert.Equal(t, []string{"early", "late"}, orderNames(t, &s, Update))
}

func TestScheduleStableUnderPartialConstraints(t *testing.T) {
	// Only d is constrained; everything else keeps registration order.
	var s schedule
	s.add(System{Name: "a"})
	s.add(System{Name: "b"})
	s.add(System{Name: "d", RunAfter: []string{"e"}})
	s.add(System{Name: "c"})
	s.add(System{Name: "e"})

	assert.Equal(t, []string{"a", "b", "c", "e", "d"}, orderNames(t, &s, Update))
}

func TestScheduleCycleNamesOnlyMembers(t *testing.T) {
	var s schedule
	s.add(System{Name: "a", RunAfter: []string{"b"}})
	s.add(System{Name: "b", RunAfter: []string{"a"}})
	// c depends on the cycle but is not part of it.
	s.add(System{Name: "c", RunAfter: []string{"b"}})

	_, err := s.resolve(Update)
	var cycle *CircularDependencyError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, Update, cycle.Phase)
	assert.Equal(t, []string{"a", "b"}, cycle.Systems)
	assert.Contains(t, err.Error(), "Update")
	assert.Contains(t, err.Error(), "circular")
}

func TestScheduleUnknownConstraintNamesIgnored(t *testing.T) {
	var s schedule
	s.add(System{Name: "a", RunAfter: []string{"never-registered"}})
	s.add(System{Name: "b", RunBefore: []string{"also-missing"}})

	assert.Equal(t, []string{"a", "b"}, orderNames(t, &s, Update))
}

func TestScheduleSelfConstraintIgnored(t *testing.T) {
	var s schedule
	s.add(System{Name: "solo", RunAfter: []string{"solo"}})

	assert.Equal(t, []string{"solo"}, orderNames(t, &s, Update))
}

func TestScheduleDuplicateNamesBindAllBearers(t *testing.T) {
	var s schedule
	s.add(System{Name: "after", RunAfter: []string{"dup"}})
	s.add(System{Name: "dup"})
	s.add(System{Name: "dup"})

	assert.Equal(t, []string{"dup", "dup", "after"}, orderNames(t, &s, Update))
}

func TestScheduleDiamond(t *testing.T) {
	var s schedule
	s.add(System{Name: "sink", RunAfter: []string{"left", "right"}})
	s.add(System{Name: "left", RunAfter: []string{"source"}})
	s.add(System{Name: "right", RunAfter: []string{"source"}})
	s.add(System{Name: "source"})

	assert.Equal(t, []string{"source", "left", "right", "sink"}, orderNames(t, &s, Update))
}

func TestScheduleResolveIsCached(t *testing.T) {
	var s schedule
	s.add(System{Name: "a"})
	first, err := s.resolve(Update)
	require.NoError(t, err)

	second, err := s.resolve(Update)
	require.NoError(t, err)
	assert.Same(t, first[0], second[0])

	// A new registration invalidates the cached order.
	s.add(System{Name: "b", RunBefore: []string{"a"}})
	assert.Equal(t, []string{"b", "a"}, orderNames(t, &s, Update))
}
