package system

import (
	"github.com/kestrelengine/kestrel/internal/component"
	"github.com/kestrelengine/kestrel/internal/core/app"
	"github.com/kestrelengine/kestrel/internal/core/ecs"
)

// Movement integrates velocity into position. It belongs in a fixed phase so
// simulation speed does not depend on frame rate; dt is then the fixed
// timestep. Entities carrying the static tag are left alone.
func Movement() app.System {
	query := ecs.NewQuery(ecs.Mut(component.Position), ecs.Read(component.Velocity))
	var bound *ecs.QueryInstance
	return app.System{
		Name: "movement",
		Fn: func(w *ecs.World, _ *app.Resources, dt float64) {
			if bound == nil {
				bound = query.Bind(w)
			}
			bound.Each(func(e ecs.Entity, row []ecs.Instance) bool {
				if w.Has(e, component.Static) {
					return true
				}
				pos, vel := row[0], row[1]
				pos.SetNumber("x", pos.Number("x")+vel.Number("x")*dt)
				pos.SetNumber("y", pos.Number("y")+vel.Number("y")*dt)
				return true
			})
		},
	}
}
