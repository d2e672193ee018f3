package data

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelengine/kestrel/internal/core/ecs"
	"github.com/kestrelengine/kestrel/internal/core/schema"
)

const sceneFixture = `
name: demo
entities:
  - name: player
    components:
      position: {x: 3.0, y: 4.0}
      velocity: {x: 1.0}
  - components:
      position: {}
`

func sceneWorld(t *testing.T) *ecs.World {
	t.Helper()
	reg := ecs.NewRegistry()
	shape := schema.Shape{
		"x": {Kind: schema.KindNumber},
		"y": {Kind: schema.KindNumber},
	}
	reg.Define("position", ecs.Instance{"x": 0.0, "y": 0.0}, shape)
	reg.Define("velocity", ecs.Instance{"x": 0.0, "y": 0.0}, shape)
	return ecs.NewWorld(reg)
}

func TestLoadScene(t *testing.T) {
	path := writeDefs(t, t.TempDir(), "demo.yaml", sceneFixture)

	s, err := LoadScene(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", s.Name)
	require.Len(t, s.Entities, 2)
	assert.Equal(t, "player", s.Entities[0].Name)
	assert.Equal(t, 3.0, s.Entities[0].Components["position"]["x"])
}

func TestLoadSceneNameFallsBackToFilename(t *testing.T) {
	path := writeDefs(t, t.TempDir(), "arena.yaml", "entities: []\n")

	s, err := LoadScene(path)
	require.NoError(t, err)
	assert.Equal(t, "arena", s.Name)
}

func TestSceneSpawn(t *testing.T) {
	w := sceneWorld(t)
	s, err := LoadScene(writeDefs(t, t.TempDir(), "demo.yaml", sceneFixture))
	require.NoError(t, err)

	spawned, err := s.Spawn(w)
	require.NoError(t, err)
	require.Len(t, spawned, 2)
	assert.Equal(t, 2, w.EntityCount())

	pos, err := w.Get(spawned[0], "position")
	require.NoError(t, err)
	assert.Equal(t, 3.0, pos["x"])
	assert.Equal(t, 4.0, pos["y"])

	// Unset fields fall back to the component defaults.
	vel, err := w.Get(spawned[0], "velocity")
	require.NoError(t, err)
	assert.Equal(t, 1.0, vel["x"])
	assert.Equal(t, 0.0, vel["y"])

	// Empty component data means pure defaults.
	pos2, err := w.Get(spawned[1], "position")
	require.NoError(t, err)
	assert.Equal(t, 0.0, pos2["x"])
	assert.False(t, w.Has(spawned[1], "velocity"))
}

func TestSceneSpawnValidationFailure(t *testing.T) {
	w := sceneWorld(t)
	s, err := LoadScene(writeDefs(t, t.TempDir(), "bad.yaml", `
name: bad
entities:
  - components:
      position: {x: 1.0}
  - name: glitch
    components:
      position: {x: oops}
`))
	require.NoError(t, err)

	spawned, err := s.Spawn(w)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scene bad")
	assert.Contains(t, err.Error(), "glitch")
	assert.Contains(t, err.Error(), "position")

	var verr *ecs.ValidationError
	assert.ErrorAs(t, err, &verr)

	// The first entity survives; the failed one was rolled back.
	require.Len(t, spawned, 1)
	assert.True(t, w.Alive(spawned[0]))
	assert.Equal(t, 1, w.EntityCount())
}

func TestSceneSpawnUnknownComponent(t *testing.T) {
	w := sceneWorld(t)
	s := &Scene{Name: "x", Entities: []SceneEntity{{
		Components: map[string]map[string]any{"ghost": nil},
	}}}

	_, err := s.Spawn(w)
	var nf *ecs.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, 0, w.EntityCount())
}

func TestScenePath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "scenes", "demo.yaml"),
		ScenePath(filepath.Join("data", "scenes"), "demo"))
}
