package component

import (
	"github.com/kestrelengine/kestrel/internal/core/ecs"
	"github.com/kestrelengine/kestrel/internal/core/schema"
)

// Position is a 2D world-space coordinate. Velocity is its rate of change in
// units per second; the movement system integrates one into the other during
// the fixed phases.

func registerTransform(reg *ecs.Registry) {
	vec := schema.Shape{
		"x": {Kind: schema.KindNumber},
		"y": {Kind: schema.KindNumber},
	}
	reg.Define(Position, ecs.Instance{"x": 0.0, "y": 0.0}, vec)
	reg.Define(Velocity, ecs.Instance{"x": 0.0, "y": 0.0}, vec)
}

// PositionAt builds position data for insert.
func PositionAt(x, y float64) ecs.Instance {
	return ecs.Instance{"x": x, "y": y}
}

// VelocityOf builds velocity data for insert.
func VelocityOf(x, y float64) ecs.Instance {
	return ecs.Instance{"x": x, "y": y}
}
