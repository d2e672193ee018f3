package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kestrelengine/kestrel/internal/component"
	"github.com/kestrelengine/kestrel/internal/config"
	"github.com/kestrelengine/kestrel/internal/core/app"
	"github.com/kestrelengine/kestrel/internal/core/event"
	"github.com/kestrelengine/kestrel/internal/data"
	"github.com/kestrelengine/kestrel/internal/scripting"
	"github.com/kestrelengine/kestrel/internal/system"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             Kestrel  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m       data-driven ECS runtime in Go       \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main engine logic ──────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/engine.toml"
	if p := os.Getenv("KESTREL_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner()

	// 3. Build the app
	a := app.New(app.Options{
		FixedTimestep: cfg.Engine.FixedTimestep,
		MaxCatchUp:    cfg.Engine.MaxCatchUp,
		MaxFrameDelta: cfg.Engine.MaxFrameDelta,
		FrameInterval: cfg.Engine.FrameInterval,
		Logger:        log,
	})

	// 4. Register components: built-ins first, then YAML definitions.
	// Definitions repeating a built-in name resolve to the existing type.
	printSection("Registry")
	component.RegisterBuiltins(a.Registry())
	printStat("Built-in components", a.Registry().Len())

	defs, err := data.LoadComponentDir(cfg.Data.ComponentsDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load component defs: %w", err)
	}
	if len(defs) > 0 {
		if err := data.Register(a.Registry(), defs); err != nil {
			return fmt.Errorf("register components: %w", err)
		}
	}
	printStat("Component definitions", len(defs))

	// 5. Register built-in systems
	system.RegisterBuiltins(a)
	printOK("Built-in systems registered")
	fmt.Println()

	// 6. Lua scripting engine
	if cfg.Scripting.Enabled {
		printSection("Scripting")
		eng := scripting.NewEngine(a, log)
		defer eng.Close()
		if err := eng.LoadDir(cfg.Scripting.ScriptsDir); err != nil {
			return fmt.Errorf("lua scripts: %w", err)
		}
		printOK("Lua scripts loaded")
		fmt.Println()
	}

	// 7. Spawn the default scene
	if cfg.Data.DefaultScene != "" {
		printSection("Scene")
		scn, err := data.LoadScene(data.ScenePath(cfg.Data.ScenesDir, cfg.Data.DefaultScene))
		if err != nil {
			return fmt.Errorf("load scene: %w", err)
		}
		spawned, err := scn.Spawn(a.World())
		if err != nil {
			return fmt.Errorf("spawn scene: %w", err)
		}
		event.Emit(a.Bus(), event.SceneLoaded{Scene: scn.Name, Entities: len(spawned)})
		printStat("Entities spawned", len(spawned))
		fmt.Println()
	}

	// 8. Run the frame loop until SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printSection("Engine ready")
	printReady(fmt.Sprintf("Frame loop started (frame %s, fixed step %s)",
		cfg.Engine.FrameInterval, cfg.Engine.FixedTimestep))
	printReady("Ctrl+C to stop")
	fmt.Println()

	if err := a.Run(ctx); err != nil {
		return fmt.Errorf("frame loop: %w", err)
	}

	clock := app.MustResource[*app.Time](a.Resources())
	log.Info("engine stopped",
		zap.Uint64("frames", clock.FrameCount),
		zap.Int("entities", a.World().EntityCount()))
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
