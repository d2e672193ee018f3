package app

import (
	"time"

	"github.com/kestrelengine/kestrel/internal/core/ecs"
)

// SystemFn is the callable a System wraps. Systems run to completion
// synchronously; dt is the step's delta time in seconds (the fixed timestep
// inside the Fixed* phases, zero during Startup).
type SystemFn func(w *ecs.World, res *Resources, dt float64)

// System is a named unit of behavior run once per scheduled invocation.
//
// RunBefore and RunAfter order it against other systems in the same phase by
// declared name; a name matching no registered system is ignored. RunIf is
// evaluated immediately before each invocation; returning false skips that
// one invocation without disabling the system.
type System struct {
	Name      string
	Fn        SystemFn
	RunBefore []string
	RunAfter  []string
	RunIf     func(w *ecs.World, res *Resources) bool
}

// Every builds a run predicate that fires at most once per period, driven by
// the Time resource. The first qualifying invocation fires immediately.
func Every(period time.Duration) func(*ecs.World, *Resources) bool {
	p := period.Seconds()
	next := 0.0
	return func(_ *ecs.World, res *Resources) bool {
		tm, ok := Resource[*Time](res)
		if !ok || tm.Elapsed < next {
			return false
		}
		next = tm.Elapsed + p
		return true
	}
}
