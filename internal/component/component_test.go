package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelengine/kestrel/internal/core/ecs"
)

func TestRegisterBuiltinsDefinesAll(t *testing.T) {
	reg := ecs.NewRegistry()
	RegisterBuiltins(reg)

	for _, name := range []string{Position, Velocity, Sprite, Lifetime, Static, Hidden} {
		_, ok := reg.Lookup(name)
		assert.True(t, ok, "missing builtin %q", name)
	}

	for _, tag := range []string{Static, Hidden} {
		ct, _ := reg.Lookup(tag)
		assert.True(t, ct.IsTag(), "%q should be a tag", tag)
	}
}

func TestBuildersPassTheirOwnSchemas(t *testing.T) {
	reg := ecs.NewRegistry()
	RegisterBuiltins(reg)
	w := ecs.NewWorld(reg)
	e, _ := w.Spawn()

	require.NoError(t, w.Insert(e, Position, PositionAt(3, 4)))
	require.NoError(t, w.Insert(e, Velocity, VelocityOf(-1, 0)))
	require.NoError(t, w.Insert(e, Sprite, SpriteOf("@", "green", 2)))
	require.NoError(t, w.Insert(e, Lifetime, LifetimeOf(1.5)))

	sprite, err := w.Get(e, Sprite)
	require.NoError(t, err)
	assert.Equal(t, "@", sprite.Str("glyph"))
	assert.Equal(t, "green", sprite.Str("color"))
	assert.Equal(t, 2.0, sprite.Number("layer"))
}

func TestSpriteDefaultsFillUnsetFields(t *testing.T) {
	reg := ecs.NewRegistry()
	RegisterBuiltins(reg)
	w := ecs.NewWorld(reg)
	e, _ := w.Spawn()

	require.NoError(t, w.Insert(e, Sprite, ecs.Instance{"glyph": "#"}))

	sprite, _ := w.Get(e, Sprite)
	assert.Equal(t, "#", sprite.Str("glyph"))
	assert.Equal(t, "white", sprite.Str("color"), "unset field falls back to default")
	assert.Equal(t, 0.0, sprite.Number("layer"))
}
