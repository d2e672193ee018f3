package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelengine/kestrel/internal/core/schema"
)

func positionShape() schema.Shape {
	return schema.Shape{
		"x": {Kind: schema.KindNumber},
		"y": {Kind: schema.KindNumber},
	}
}

func TestDefineIsIdempotentByName(t *testing.T) {
	reg := NewRegistry()

	first := reg.Define("position", Instance{"x": 0.0, "y": 0.0}, positionShape())
	second := reg.Define("position", Instance{"x": 99.0}, nil)

	// Same descriptor both times; the second call's arguments are ignored.
	assert.Same(t, first, second)
	assert.Equal(t, 0.0, second.Defaults()["x"])
	assert.NotNil(t, second.Shape())
	assert.Equal(t, 1, reg.Len())
}

func TestDefineClonesDefaults(t *testing.T) {
	reg := NewRegistry()

	defaults := Instance{"x": 1.0, "nested": map[string]any{"a": 1.0}}
	typ := reg.Define("thing", defaults, nil)

	// Caller mutation after Define must not leak into the descriptor.
	defaults["x"] = 42.0
	defaults["nested"].(map[string]any)["a"] = 42.0
	assert.Equal(t, 1.0, typ.Defaults()["x"])
	assert.Equal(t, 1.0, typ.Defaults()["nested"].(map[string]any)["a"])
}

func TestDefaultsNeverAlias(t *testing.T) {
	reg := NewRegistry()
	reg.Define("position", Instance{"x": 0.0, "y": 0.0}, positionShape())

	a, err := reg.Defaults("position")
	require.NoError(t, err)
	b, err := reg.Defaults("position")
	require.NoError(t, err)

	a["x"] = 123.0
	assert.Equal(t, 0.0, b["x"])
}

func TestDefaultsUnknownType(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Defaults("ghost")

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "ghost", nf.Component)
	assert.Contains(t, err.Error(), "ghost")
}

func TestDefineTag(t *testing.T) {
	reg := NewRegistry()
	tag := reg.DefineTag("frozen")

	assert.True(t, tag.IsTag())
	assert.Empty(t, tag.Defaults())

	// Tags reject any data field as unknown.
	vs := schema.Validate(tag.Shape(), map[string]any{"speed": 1})
	assert.Len(t, vs, 1)
	assert.True(t, vs[0].Unknown)
}

func TestClearAllowsFreshDefinition(t *testing.T) {
	reg := NewRegistry()
	old := reg.Define("position", Instance{"x": 0.0}, nil)

	reg.Clear()
	assert.Equal(t, 0, reg.Len())
	_, ok := reg.Lookup("position")
	assert.False(t, ok)

	fresh := reg.Define("position", Instance{"x": 5.0}, nil)
	assert.NotSame(t, old, fresh)
	assert.Equal(t, 5.0, fresh.Defaults()["x"])
}

func TestTypesReturnsDefinitionOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Define("c", nil, nil)
	reg.Define("a", nil, nil)
	reg.Define("b", nil, nil)
	reg.Define("a", nil, nil) // re-register, no new entry

	var names []string
	for _, typ := range reg.Types() {
		names = append(names, typ.Name())
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}
