package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[engine]
fixed_timestep = "10ms"
max_catch_up = 3

[logging]
level = "debug"

[data]
default_scene = "bounce"

[scripting]
enabled = false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Millisecond, cfg.Engine.FixedTimestep)
	assert.Equal(t, 3, cfg.Engine.MaxCatchUp)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "bounce", cfg.Data.DefaultScene)
	assert.False(t, cfg.Scripting.Enabled)

	// Untouched keys keep their defaults.
	assert.Equal(t, 100*time.Millisecond, cfg.Engine.MaxFrameDelta)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "data/components", cfg.Data.ComponentsDir)
	assert.Equal(t, "scripts", cfg.Scripting.ScriptsDir)
}

func TestLoadEmptyFileIsAllDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, 20*time.Millisecond, cfg.Engine.FixedTimestep)
	assert.Equal(t, 5, cfg.Engine.MaxCatchUp)
	assert.Equal(t, time.Second/60, cfg.Engine.FrameInterval)
	assert.Equal(t, "sandbox", cfg.Data.DefaultScene)
	assert.True(t, cfg.Scripting.Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadMalformedToml(t *testing.T) {
	_, err := Load(writeConfig(t, "[engine\nbroken"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
