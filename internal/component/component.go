// Package component holds the engine's built-in component definitions.
// Hosts that want them call RegisterBuiltins before spawning; hosts with
// their own vocabulary can skip this package entirely and define components
// through the registry or YAML definition files.
package component

import "github.com/kestrelengine/kestrel/internal/core/ecs"

// Built-in component names. Data files and scripts refer to these strings.
const (
	Position = "position"
	Velocity = "velocity"
	Sprite   = "sprite"
	Lifetime = "lifetime"

	// Marker tags.
	Static = "static" // excluded from movement integration
	Hidden = "hidden" // excluded from rendering
)

// RegisterBuiltins defines every built-in component type. Define is
// get-or-create by name, so calling this after a YAML definition file has
// claimed one of the names keeps the file's descriptor.
func RegisterBuiltins(reg *ecs.Registry) {
	registerTransform(reg)
	registerSprite(reg)
	registerLifetime(reg)
	reg.DefineTag(Static)
	reg.DefineTag(Hidden)
}
