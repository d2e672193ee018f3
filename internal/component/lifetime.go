package component

import (
	"github.com/kestrelengine/kestrel/internal/core/ecs"
	"github.com/kestrelengine/kestrel/internal/core/schema"
)

// Lifetime gives an entity a remaining time to live in seconds. The lifetime
// system counts it down each frame and despawns the entity when it runs out.

func registerLifetime(reg *ecs.Registry) {
	reg.Define(Lifetime,
		ecs.Instance{"remaining": 0.0},
		schema.Shape{
			"remaining": {Kind: schema.KindNumber},
		})
}

// LifetimeOf builds lifetime data for insert.
func LifetimeOf(seconds float64) ecs.Instance {
	return ecs.Instance{"remaining": seconds}
}
