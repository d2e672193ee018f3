package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Engine    EngineConfig    `toml:"engine"`
	Logging   LoggingConfig   `toml:"logging"`
	Data      DataConfig      `toml:"data"`
	Scripting ScriptingConfig `toml:"scripting"`
}

type EngineConfig struct {
	FixedTimestep time.Duration `toml:"fixed_timestep"` // simulation step for the Fixed* phases
	MaxCatchUp    int           `toml:"max_catch_up"`   // fixed steps allowed per frame before dropping
	MaxFrameDelta time.Duration `toml:"max_frame_delta"`
	FrameInterval time.Duration `toml:"frame_interval"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type DataConfig struct {
	ComponentsDir string `toml:"components_dir"`
	ScenesDir     string `toml:"scenes_dir"`
	DefaultScene  string `toml:"default_scene"` // scene name, not a path
}

type ScriptingConfig struct {
	Enabled    bool   `toml:"enabled"`
	ScriptsDir string `toml:"scripts_dir"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			FixedTimestep: 20 * time.Millisecond,
			MaxCatchUp:    5,
			MaxFrameDelta: 100 * time.Millisecond,
			FrameInterval: time.Second / 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Data: DataConfig{
			ComponentsDir: "data/components",
			ScenesDir:     "data/scenes",
			DefaultScene:  "sandbox",
		},
		Scripting: ScriptingConfig{
			Enabled:    true,
			ScriptsDir: "scripts",
		},
	}
}
