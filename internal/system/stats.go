package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/kestrelengine/kestrel/internal/core/app"
	"github.com/kestrelengine/kestrel/internal/core/ecs"
)

// DebugStats logs world vitals at most once per period. Pure observer: it
// never touches the world, so Last is its natural home.
func DebugStats(period time.Duration) app.System {
	return app.System{
		Name:  "debug_stats",
		RunIf: app.Every(period),
		Fn: func(w *ecs.World, res *app.Resources, _ float64) {
			log := app.MustResource[*zap.Logger](res)
			tm := app.MustResource[*app.Time](res)
			log.Debug("world stats",
				zap.Uint64("frame", tm.FrameCount),
				zap.Float64("elapsed_seconds", tm.Elapsed),
				zap.Int("entities", w.EntityCount()),
				zap.Uint64("structural_version", w.Version()))
		},
	}
}
