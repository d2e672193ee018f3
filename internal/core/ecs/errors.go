package ecs

import (
	"fmt"
	"strings"

	"github.com/kestrelengine/kestrel/internal/core/schema"
)

// NotFoundError reports a lookup miss. Component is empty when the entity
// itself is dead; Entity is NoEntity when the component type is not
// registered at all.
type NotFoundError struct {
	Entity    Entity
	Component string
}

func (e *NotFoundError) Error() string {
	switch {
	case e.Component == "":
		return fmt.Sprintf("entity %s not found", e.Entity)
	case e.Entity == NoEntity:
		return fmt.Sprintf("component type %q not registered", e.Component)
	default:
		return fmt.Sprintf("component %q not found on entity %s", e.Component, e.Entity)
	}
}

// ValidationError reports every field of an Insert payload that failed
// schema validation for the named component.
type ValidationError struct {
	Component  string
	Violations []schema.Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("invalid data for component %q: %s", e.Component, strings.Join(parts, "; "))
}

// IterationGuardError reports a structural change attempted while a query
// iteration holds the world's reentrancy counter.
type IterationGuardError struct {
	Op string
}

func (e *IterationGuardError) Error() string {
	return fmt.Sprintf("%s blocked: query iteration in progress; record structural changes on Commands and flush after iteration", e.Op)
}
