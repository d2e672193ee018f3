// Package system holds the engine's built-in systems. Each constructor
// returns a plain app.System so hosts can pick phases and ordering
// themselves; RegisterBuiltins wires the stock arrangement.
package system

import (
	"time"

	"github.com/kestrelengine/kestrel/internal/core/app"
)

// RegisterBuiltins adds the built-in systems in their stock phases:
// movement integrates during FixedUpdate, lifetime expiry runs in Update,
// and the stats reporter observes from Last once per second.
func RegisterBuiltins(a *app.App) {
	a.AddSystem(app.FixedUpdate, Movement())
	a.AddSystem(app.Update, LifetimeExpiry())
	a.AddSystem(app.Last, DebugStats(time.Second))
}
