package app

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/kestrelengine/kestrel/internal/core/ecs"
	"github.com/kestrelengine/kestrel/internal/core/event"
)

// Options tune the frame loop. Zero values fall back to the defaults below.
type Options struct {
	// FixedTimestep is the simulation step for the Fixed* phases.
	// Default 20ms.
	FixedTimestep time.Duration
	// MaxCatchUp caps how many fixed steps one frame may run before the
	// surplus is dropped. Default 5.
	MaxCatchUp int
	// MaxFrameDelta clamps the frame delta fed to systems, so a stall or
	// debugger pause does not turn into one giant step. Default 100ms.
	MaxFrameDelta time.Duration
	// FrameInterval is the tick period of Run. Default 1/60s.
	FrameInterval time.Duration
	// Logger receives scheduler diagnostics. Default zap.NewNop().
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.FixedTimestep <= 0 {
		o.FixedTimestep = 20 * time.Millisecond
	}
	if o.MaxCatchUp <= 0 {
		o.MaxCatchUp = 5
	}
	if o.MaxFrameDelta <= 0 {
		o.MaxFrameDelta = 100 * time.Millisecond
	}
	if o.FrameInterval <= 0 {
		o.FrameInterval = time.Second / 60
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// App wires a world, its component registry, shared resources, the event bus
// and the deferred command queue to a phase scheduler, and drives them one
// frame at a time. Build it with New, register systems with AddSystem, then
// either call Run for a self-ticking loop or Step from a host loop.
type App struct {
	opts Options
	log  *zap.Logger

	registry  *ecs.Registry
	world     *ecs.World
	resources *Resources
	bus       *event.Bus
	commands  *ecs.Commands
	clock     *Time

	schedules [phaseCount]schedule
	accum     float64
	started   bool
}

// New builds an App and pre-registers the Time, *ecs.Commands, *event.Bus
// and *zap.Logger resources so systems can fetch them with MustResource.
func New(opts Options) *App {
	opts = opts.withDefaults()
	registry := ecs.NewRegistry()
	world := ecs.NewWorld(registry)
	a := &App{
		opts:      opts,
		log:       opts.Logger,
		registry:  registry,
		world:     world,
		resources: NewResources(),
		bus:       event.NewBus(),
		commands:  ecs.NewCommands(world),
		clock:     &Time{},
	}
	SetResource(a.resources, a.clock)
	SetResource(a.resources, a.commands)
	SetResource(a.resources, a.bus)
	SetResource(a.resources, a.log)
	return a
}

func (a *App) Registry() *ecs.Registry { return a.registry }
func (a *App) World() *ecs.World       { return a.world }
func (a *App) Resources() *Resources   { return a.resources }
func (a *App) Bus() *event.Bus         { return a.bus }
func (a *App) Commands() *ecs.Commands { return a.commands }
func (a *App) Logger() *zap.Logger     { return a.log }

// AddSystem registers sys into phase. Registration order is the tiebreak
// for systems with no ordering constraints between them. Returns the App
// for chaining.
func (a *App) AddSystem(phase Phase, sys System) *App {
	a.schedules[phase].add(sys)
	return a
}

// Step advances the app by one frame of dt seconds.
//
// Frame anatomy: Startup systems (first call only, dt 0), then delivery of
// the previous frame's events, then First through Last once each, then the
// Fixed* group zero or more times from the accumulator. Deferred commands
// flush after every phase. An ordering cycle in any phase aborts the frame
// before any system runs.
func (a *App) Step(dt float64) error {
	if err := a.resolveAll(); err != nil {
		return err
	}

	if !a.started {
		a.started = true
		if err := a.runPhase(Startup, 0); err != nil {
			return err
		}
		a.flushCommands(Startup)
	}

	a.bus.SwapBuffers()
	a.bus.DispatchAll()

	if dt < 0 {
		dt = 0
	}
	if limit := a.opts.MaxFrameDelta.Seconds(); dt > limit {
		a.log.Debug("frame delta clamped",
			zap.Float64("delta_seconds", dt),
			zap.Float64("clamped_to", limit))
		dt = limit
	}
	a.clock.Delta = dt
	a.clock.Elapsed += dt
	a.clock.FrameCount++

	for _, phase := range framePhases {
		if err := a.runPhase(phase, dt); err != nil {
			return err
		}
		a.flushCommands(phase)
	}

	a.accum += dt
	step := a.opts.FixedTimestep.Seconds()
	ran := 0
	for a.accum >= step && ran < a.opts.MaxCatchUp {
		for _, phase := range fixedPhases {
			if err := a.runPhase(phase, step); err != nil {
				return err
			}
			a.flushCommands(phase)
		}
		a.accum -= step
		ran++
	}
	if a.accum >= step {
		dropped := math.Floor(a.accum/step) * step
		a.accum -= dropped
		a.log.Warn("fixed-step catch-up capped",
			zap.Int("steps_run", ran),
			zap.Float64("dropped_seconds", dropped))
	}
	return nil
}

// Run ticks Step at FrameInterval with measured wall-clock deltas until ctx
// is done (returned as nil) or a frame fails.
func (a *App) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.opts.FrameInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if err := a.Step(dt); err != nil {
				return err
			}
		}
	}
}

// resolveAll sorts every dirty phase up front so a cycle surfaces before any
// system of the frame runs.
func (a *App) resolveAll() error {
	for p := Phase(0); p < phaseCount; p++ {
		if _, err := a.schedules[p].resolve(p); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) runPhase(phase Phase, dt float64) error {
	order, err := a.schedules[phase].resolve(phase)
	if err != nil {
		return err
	}
	for _, sys := range order {
		if sys.Fn == nil {
			continue
		}
		if sys.RunIf != nil && !sys.RunIf(a.world, a.resources) {
			continue
		}
		sys.Fn(a.world, a.resources, dt)
	}
	return nil
}

func (a *App) flushCommands(phase Phase) {
	if a.commands.Len() == 0 {
		return
	}
	if err := a.commands.Flush(); err != nil {
		a.log.Warn("deferred commands failed",
			zap.String("phase", phase.String()),
			zap.Error(err))
	}
}
