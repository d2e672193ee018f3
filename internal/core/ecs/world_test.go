package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelengine/kestrel/internal/core/schema"
)

// testWorld builds a world with the component set most tests share.
func testWorld(t *testing.T) *World {
	t.Helper()
	reg := NewRegistry()
	reg.Define("position", Instance{"x": 0.0, "y": 0.0}, positionShape())
	reg.Define("velocity", Instance{"x": 0.0, "y": 0.0}, positionShape())
	reg.Define("sprite", Instance{"glyph": "?", "layer": 0.0}, schema.Shape{
		"glyph": {Kind: schema.KindString},
		"layer": {Kind: schema.KindNumber},
	})
	reg.DefineTag("frozen")
	return NewWorld(reg)
}

func TestSpawnDespawnRoundTrip(t *testing.T) {
	w := testWorld(t)

	e, err := w.Spawn()
	require.NoError(t, err)
	assert.True(t, w.Alive(e))
	assert.Equal(t, 1, w.EntityCount())

	require.NoError(t, w.Despawn(e))
	assert.False(t, w.Alive(e))
	assert.Equal(t, 0, w.EntityCount())
}

func TestDespawnDeadEntity(t *testing.T) {
	w := testWorld(t)
	e, _ := w.Spawn()
	require.NoError(t, w.Despawn(e))

	var nf *NotFoundError
	require.ErrorAs(t, w.Despawn(e), &nf)
	assert.Equal(t, e, nf.Entity)
}

func TestInsertMergesOverDefaults(t *testing.T) {
	w := testWorld(t)
	e, _ := w.Spawn()

	require.NoError(t, w.Insert(e, "position", Instance{"x": 7.5}))

	pos, err := w.Get(e, "position")
	require.NoError(t, err)
	assert.Equal(t, 7.5, pos["x"])
	assert.Equal(t, 0.0, pos["y"]) // unset field falls back to the default
}

func TestInsertNilFieldFallsBackToDefault(t *testing.T) {
	w := testWorld(t)
	e, _ := w.Spawn()

	require.NoError(t, w.Insert(e, "sprite", Instance{"glyph": nil, "layer": 2.0}))

	spr, err := w.Get(e, "sprite")
	require.NoError(t, err)
	assert.Equal(t, "?", spr["glyph"])
	assert.Equal(t, 2.0, spr["layer"])
}

func TestInsertValidationReportsAllViolations(t *testing.T) {
	w := testWorld(t)
	e, _ := w.Spawn()

	err := w.Insert(e, "position", Instance{
		"x":     "left", // wrong type
		"color": "red",  // unknown field
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "position", ve.Component)
	assert.Len(t, ve.Violations, 2)
	assert.Contains(t, err.Error(), "position")
	assert.Contains(t, err.Error(), "color")
	assert.Contains(t, err.Error(), "x")

	// Failed insert stores nothing.
	assert.False(t, w.Has(e, "position"))
}

func TestInsertUnregisteredType(t *testing.T) {
	w := testWorld(t)
	e, _ := w.Spawn()

	var nf *NotFoundError
	require.ErrorAs(t, w.Insert(e, "ghost", nil), &nf)
	assert.Equal(t, "ghost", nf.Component)
	assert.Equal(t, NoEntity, nf.Entity)
}

func TestInsertOnDeadEntity(t *testing.T) {
	w := testWorld(t)
	e, _ := w.Spawn()
	require.NoError(t, w.Despawn(e))

	var nf *NotFoundError
	require.ErrorAs(t, w.Insert(e, "position", nil), &nf)
	assert.Equal(t, e, nf.Entity)
}

func TestInsertReplacesExistingInstance(t *testing.T) {
	w := testWorld(t)
	e, _ := w.Spawn()

	require.NoError(t, w.Insert(e, "position", Instance{"x": 1.0, "y": 1.0}))
	require.NoError(t, w.Insert(e, "position", Instance{"x": 2.0}))

	pos, _ := w.Get(e, "position")
	assert.Equal(t, 2.0, pos["x"])
	assert.Equal(t, 0.0, pos["y"]) // replacement re-merges over defaults
}

func TestGetReturnsLiveInstance(t *testing.T) {
	w := testWorld(t)
	e, _ := w.Spawn()
	require.NoError(t, w.Insert(e, "position", nil))

	pos, err := w.Get(e, "position")
	require.NoError(t, err)
	pos["x"] = 42.0

	again, _ := w.Get(e, "position")
	assert.Equal(t, 42.0, again["x"]) // write-through storage, not a copy
}

func TestGetMisses(t *testing.T) {
	w := testWorld(t)
	e, _ := w.Spawn()

	_, err := w.Get(e, "position")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, e, nf.Entity)
	assert.Equal(t, "position", nf.Component)

	_, err = w.Get(NoEntity, "position")
	require.ErrorAs(t, err, &nf)
	assert.Empty(t, nf.Component) // entity itself is the miss
}

func TestHasNeverFails(t *testing.T) {
	w := testWorld(t)
	e, _ := w.Spawn()

	assert.False(t, w.Has(e, "position"))
	assert.False(t, w.Has(e, "ghost"))
	assert.False(t, w.Has(NoEntity, "position"))

	require.NoError(t, w.Insert(e, "position", nil))
	assert.True(t, w.Has(e, "position"))
}

func TestRemove(t *testing.T) {
	w := testWorld(t)
	e, _ := w.Spawn()
	require.NoError(t, w.Insert(e, "position", nil))

	require.NoError(t, w.Remove(e, "position"))
	assert.False(t, w.Has(e, "position"))

	var nf *NotFoundError
	require.ErrorAs(t, w.Remove(e, "position"), &nf)
}

func TestDespawnDetachesComponents(t *testing.T) {
	w := testWorld(t)
	e, _ := w.Spawn()
	require.NoError(t, w.Insert(e, "position", nil))
	require.NoError(t, w.Insert(e, "velocity", nil))

	require.NoError(t, w.Despawn(e))

	// The recycled slot must come back clean.
	e2, _ := w.Spawn()
	assert.Equal(t, e.Index(), e2.Index())
	assert.False(t, w.Has(e2, "position"))
	assert.False(t, w.Has(e2, "velocity"))
}

func TestStaleHandleNeverResolvesToNewOccupant(t *testing.T) {
	w := testWorld(t)
	stale, _ := w.Spawn()
	require.NoError(t, w.Despawn(stale))

	fresh, _ := w.Spawn()
	require.NoError(t, w.Insert(fresh, "position", Instance{"x": 9.0}))
	require.Equal(t, stale.Index(), fresh.Index())

	assert.False(t, w.Alive(stale))
	assert.False(t, w.Has(stale, "position"))
	_, err := w.Get(stale, "position")
	assert.Error(t, err)
}

func TestVersionBumpsOnStructuralChangesOnly(t *testing.T) {
	w := testWorld(t)

	v0 := w.Version()
	e, _ := w.Spawn()
	v1 := w.Version()
	assert.Greater(t, v1, v0)

	require.NoError(t, w.Insert(e, "position", nil))
	v2 := w.Version()
	assert.Greater(t, v2, v1)

	// Data mutation is not structural.
	pos, _ := w.Get(e, "position")
	pos["x"] = 100.0
	assert.Equal(t, v2, w.Version())

	require.NoError(t, w.Remove(e, "position"))
	v3 := w.Version()
	assert.Greater(t, v3, v2)

	require.NoError(t, w.Despawn(e))
	assert.Greater(t, w.Version(), v3)
}

func TestEntitiesWith(t *testing.T) {
	w := testWorld(t)

	a, _ := w.Spawn()
	b, _ := w.Spawn()
	c, _ := w.Spawn()
	require.NoError(t, w.Insert(a, "position", nil))
	require.NoError(t, w.Insert(b, "position", nil))
	require.NoError(t, w.Insert(b, "velocity", nil))
	require.NoError(t, w.Insert(c, "velocity", nil))

	assert.Equal(t, []Entity{a, b}, w.EntitiesWith("position"))
	assert.Equal(t, []Entity{b}, w.EntitiesWith("position", "velocity"))
	assert.Equal(t, []Entity{a, b, c}, w.EntitiesWith())

	// A type never inserted anywhere has no store: empty result.
	assert.Empty(t, w.EntitiesWith("sprite"))
	assert.Empty(t, w.EntitiesWith("position", "sprite"))
}

func TestClearDespawnsEverything(t *testing.T) {
	w := testWorld(t)
	e, _ := w.Spawn()
	require.NoError(t, w.Insert(e, "position", nil))
	v := w.Version()

	require.NoError(t, w.Clear())
	assert.Equal(t, 0, w.EntityCount())
	assert.False(t, w.Alive(e))
	assert.Greater(t, w.Version(), v)

	// Stale handles stay dead even after their index is reused.
	e2, _ := w.Spawn()
	assert.Equal(t, e.Index(), e2.Index())
	assert.False(t, w.Alive(e))
	assert.False(t, w.Has(e2, "position"))
}
