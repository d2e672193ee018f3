package app

import (
	"fmt"
	"strings"
)

// Phase defines execution ordering within a frame.
type Phase int

const (
	Startup         Phase = iota // once, lazily before the first frame's phases
	First                        // frame bookkeeping, input drains
	PreUpdate                    // react to last frame's events
	Update                       // main logic
	PostUpdate                   // derived state, cleanup
	Last                         // end-of-frame observers
	FixedPreUpdate               // fixed-timestep group, zero or more runs per frame
	FixedUpdate                  // fixed-timestep main logic
	FixedPostUpdate              // fixed-timestep cleanup

	phaseCount
)

// framePhases run exactly once per frame, in this order.
var framePhases = [...]Phase{First, PreUpdate, Update, PostUpdate, Last}

// fixedPhases run together zero or more times per frame, driven by the
// accumulator.
var fixedPhases = [...]Phase{FixedPreUpdate, FixedUpdate, FixedPostUpdate}

var phaseNames = [...]string{
	Startup:         "Startup",
	First:           "First",
	PreUpdate:       "PreUpdate",
	Update:          "Update",
	PostUpdate:      "PostUpdate",
	Last:            "Last",
	FixedPreUpdate:  "FixedPreUpdate",
	FixedUpdate:     "FixedUpdate",
	FixedPostUpdate: "FixedPostUpdate",
}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// ParsePhase resolves a phase by name for config files and scripts. Matching
// ignores case and underscores, so "fixed_update" and "FixedUpdate" are the
// same phase.
func ParsePhase(s string) (Phase, error) {
	key := strings.ReplaceAll(strings.ToLower(s), "_", "")
	for p, name := range phaseNames {
		if strings.ToLower(name) == key {
			return Phase(p), nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}
