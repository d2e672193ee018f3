package component

import (
	"github.com/kestrelengine/kestrel/internal/core/ecs"
	"github.com/kestrelengine/kestrel/internal/core/schema"
)

// Sprite is the renderable look of an entity: a single glyph, a named color,
// and a layer for draw ordering (higher draws on top). The core never reads
// it; renderers such as cmd/kestrelview do.

func registerSprite(reg *ecs.Registry) {
	reg.Define(Sprite,
		ecs.Instance{"glyph": "?", "color": "white", "layer": 0.0},
		schema.Shape{
			"glyph": {Kind: schema.KindString},
			"color": {Kind: schema.KindString},
			"layer": {Kind: schema.KindNumber},
		})
}

// SpriteOf builds sprite data for insert.
func SpriteOf(glyph, color string, layer float64) ecs.Instance {
	return ecs.Instance{"glyph": glyph, "color": color, "layer": layer}
}
