package system

import (
	"github.com/kestrelengine/kestrel/internal/component"
	"github.com/kestrelengine/kestrel/internal/core/app"
	"github.com/kestrelengine/kestrel/internal/core/ecs"
	"github.com/kestrelengine/kestrel/internal/core/event"
)

// LifetimeExpiry counts down each entity's remaining lifetime and despawns
// it when the clock runs out. Despawning mid-iteration is blocked by the
// world's guard, so expiry goes through the deferred command queue and lands
// when the phase flushes; an EntityExpired event is emitted alongside.
func LifetimeExpiry() app.System {
	query := ecs.NewQuery(ecs.Mut(component.Lifetime))
	var bound *ecs.QueryInstance
	return app.System{
		Name: "lifetime_expiry",
		Fn: func(w *ecs.World, res *app.Resources, dt float64) {
			if bound == nil {
				bound = query.Bind(w)
			}
			commands := app.MustResource[*ecs.Commands](res)
			bus := app.MustResource[*event.Bus](res)
			bound.Each(func(e ecs.Entity, row []ecs.Instance) bool {
				left := row[0].Number("remaining") - dt
				if left > 0 {
					row[0].SetNumber("remaining", left)
					return true
				}
				event.Emit(bus, event.EntityExpired{Entity: e})
				commands.Despawn(e)
				return true
			})
		},
	}
}
