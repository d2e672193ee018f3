package event

import "github.com/kestrelengine/kestrel/internal/core/ecs"

// ScriptEvent is the generic event Lua scripts emit and subscribe to,
// discriminated by Name.
type ScriptEvent struct {
	Name    string
	Payload map[string]any
}

// SceneLoaded is published after a scene file finishes spawning entities.
type SceneLoaded struct {
	Scene    string
	Entities int
}

// EntityExpired is published by the lifetime system when an entity's
// remaining time reaches zero. Delivery happens the frame after the despawn,
// so handlers must not expect the entity to still be alive.
type EntityExpired struct {
	Entity ecs.Entity
}
