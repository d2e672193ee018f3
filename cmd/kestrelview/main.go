// kestrelview is a terminal viewer for the engine: it drives App.Step from
// its own tcell loop instead of App.Run, renders every entity carrying
// position and sprite, and feeds input back in as spawns. Mostly a demo of
// hosting the frame loop.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/kestrelengine/kestrel/internal/component"
	"github.com/kestrelengine/kestrel/internal/core/app"
	"github.com/kestrelengine/kestrel/internal/core/ecs"
	"github.com/kestrelengine/kestrel/internal/system"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

type viewer struct {
	screen tcell.Screen
	app    *app.App

	// sprites is bound once; its match cache follows the world's
	// structural version on its own.
	sprites *ecs.QueryInstance

	width, height int
}

func run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	// The screen owns the terminal, so console logging stays off.
	a := app.New(app.Options{Logger: zap.NewNop()})
	component.RegisterBuiltins(a.Registry())
	system.RegisterBuiltins(a)

	v := &viewer{
		screen: screen,
		app:    a,
		sprites: a.World().Query(
			ecs.Read(component.Position),
			ecs.Read(component.Sprite),
		),
	}
	v.width, v.height = screen.Size()

	a.AddSystem(app.FixedPostUpdate, app.System{
		Name: "bounce",
		Fn:   v.bounce,
	})

	if err := v.spawnDemo(); err != nil {
		return err
	}
	return v.loop()
}

// spawnDemo fills the world with a few gliders and one static anchor.
func (v *viewer) spawnDemo() error {
	type glider struct {
		x, y, dx, dy float64
		glyph, color string
	}
	w := float64(v.width)
	h := float64(v.height)
	for _, g := range []glider{
		{w * 0.25, h * 0.25, 14, 5, "o", "green"},
		{w * 0.75, h * 0.25, -11, 7, "x", "red"},
		{w * 0.50, h * 0.75, 8, -6, "+", "blue"},
	} {
		if _, err := v.spawnMover(g.x, g.y, g.dx, g.dy, g.glyph, g.color); err != nil {
			return err
		}
	}

	world := v.app.World()
	anchor, err := world.Spawn()
	if err != nil {
		return err
	}
	if err := world.Insert(anchor, component.Position, component.PositionAt(w/2, h/2)); err != nil {
		return err
	}
	if err := world.Insert(anchor, component.Sprite, component.SpriteOf("#", "gray", 0)); err != nil {
		return err
	}
	return world.Insert(anchor, component.Static, nil)
}

func (v *viewer) spawnMover(x, y, dx, dy float64, glyph, color string) (ecs.Entity, error) {
	world := v.app.World()
	e, err := world.Spawn()
	if err != nil {
		return ecs.NoEntity, err
	}
	if err := world.Insert(e, component.Position, component.PositionAt(x, y)); err != nil {
		return e, err
	}
	if err := world.Insert(e, component.Velocity, component.VelocityOf(dx, dy)); err != nil {
		return e, err
	}
	return e, world.Insert(e, component.Sprite, component.SpriteOf(glyph, color, 1))
}

// spawnSpark drops a short-lived particle; the lifetime system despawns it.
func (v *viewer) spawnSpark() error {
	x := float64(rand.Intn(v.width))
	y := float64(rand.Intn(v.height))
	e, err := v.spawnMover(x, y, float64(rand.Intn(21)-10), float64(rand.Intn(11)-5), "*", "yellow")
	if err != nil {
		return err
	}
	return v.app.World().Insert(e, component.Lifetime, component.LifetimeOf(2.5))
}

// bounce reflects movers off the screen edges. Runs in the fixed group right
// after movement so positions never render out of bounds.
func (v *viewer) bounce(w *ecs.World, _ *app.Resources, _ float64) {
	q := w.Query(ecs.Mut(component.Position), ecs.Mut(component.Velocity))
	maxX := float64(v.width - 1)
	maxY := float64(v.height - 1)
	q.Each(func(_ ecs.Entity, row []ecs.Instance) bool {
		pos, vel := row[0], row[1]
		x, y := pos.Number("x"), pos.Number("y")
		if x < 0 {
			pos.SetNumber("x", 0)
			vel.SetNumber("x", -vel.Number("x"))
		} else if x > maxX {
			pos.SetNumber("x", maxX)
			vel.SetNumber("x", -vel.Number("x"))
		}
		if y < 0 {
			pos.SetNumber("y", 0)
			vel.SetNumber("y", -vel.Number("y"))
		} else if y > maxY {
			pos.SetNumber("y", maxY)
			vel.SetNumber("y", -vel.Number("y"))
		}
		return true
	})
}

func (v *viewer) loop() error {
	ticker := time.NewTicker(16 * time.Millisecond) // ~60 FPS
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- v.screen.PollEvent()
		}
	}()

	last := time.Now()
	for {
		select {
		case ev := <-eventChan:
			quit, err := v.handleInput(ev)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}

		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if err := v.app.Step(dt); err != nil {
				return err
			}
			v.draw()
		}
	}
}

func (v *viewer) handleInput(ev tcell.Event) (quit bool, err error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return true, nil
		}
		if ev.Key() == tcell.KeyRune {
			switch ev.Rune() {
			case 'q':
				return true, nil
			case ' ':
				return false, v.spawnSpark()
			}
		}
	case *tcell.EventResize:
		v.width, v.height = v.screen.Size()
	}
	return false, nil
}

type cell struct {
	x, y  int
	glyph rune
	style tcell.Style
	layer float64
}

func (v *viewer) draw() {
	v.screen.Clear()

	world := v.app.World()
	cells := make([]cell, 0, v.sprites.Count())
	v.sprites.Each(func(e ecs.Entity, row []ecs.Instance) bool {
		if world.Has(e, component.Hidden) {
			return true
		}
		pos, spr := row[0], row[1]
		glyph := '?'
		if runes := []rune(spr.Str("glyph")); len(runes) > 0 {
			glyph = runes[0]
		}
		cells = append(cells, cell{
			x:     int(pos.Number("x")),
			y:     int(pos.Number("y")),
			glyph: glyph,
			style: tcell.StyleDefault.Foreground(colorFor(spr.Str("color"))),
			layer: spr.Number("layer"),
		})
		return true
	})

	// Higher layers draw later and win the cell.
	sort.SliceStable(cells, func(i, j int) bool { return cells[i].layer < cells[j].layer })
	for _, c := range cells {
		if c.x >= 0 && c.x < v.width && c.y >= 0 && c.y < v.height {
			v.screen.SetContent(c.x, c.y, c.glyph, nil, c.style)
		}
	}

	v.drawStatus()
	v.screen.Show()
}

func (v *viewer) drawStatus() {
	clock := app.MustResource[*app.Time](v.app.Resources())
	status := fmt.Sprintf(" entities %d  frame %d  [space] spark  [q] quit ",
		v.app.World().EntityCount(), clock.FrameCount)
	style := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for i, r := range status {
		if i >= v.width {
			break
		}
		v.screen.SetContent(i, 0, r, nil, style)
	}
}

func colorFor(name string) tcell.Color {
	switch name {
	case "red":
		return tcell.ColorRed
	case "green":
		return tcell.ColorGreen
	case "yellow":
		return tcell.ColorYellow
	case "blue":
		return tcell.ColorBlue
	case "purple":
		return tcell.ColorPurple
	case "cyan":
		return tcell.ColorDarkCyan
	case "gray":
		return tcell.ColorGray
	default:
		return tcell.ColorWhite
	}
}
