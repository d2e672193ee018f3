package data

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kestrelengine/kestrel/internal/core/ecs"
)

// SceneEntity is one entity to spawn: an optional label for error messages
// plus component data keyed by component name.
type SceneEntity struct {
	Name       string                    `yaml:"name"`
	Components map[string]map[string]any `yaml:"components"`
}

// Scene is a spawnable entity list loaded from YAML.
type Scene struct {
	Name     string        `yaml:"name"`
	Entities []SceneEntity `yaml:"entities"`
}

// LoadScene loads one scene file. A scene without an explicit name takes the
// filename stem.
func LoadScene(path string) (*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	var s Scene
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}
	if s.Name == "" {
		base := filepath.Base(path)
		s.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return &s, nil
}

// ScenePath resolves a scene name to its file under dir.
func ScenePath(dir, name string) string {
	return filepath.Join(dir, name+".yaml")
}

// Spawn creates every entity in the scene, inserting components sorted by
// name so replays are deterministic. On failure the half-built entity is
// despawned and the error returned; earlier entities stay alive.
func (s *Scene) Spawn(w *ecs.World) ([]ecs.Entity, error) {
	spawned := make([]ecs.Entity, 0, len(s.Entities))
	for i, def := range s.Entities {
		e, err := w.Spawn()
		if err != nil {
			return spawned, fmt.Errorf("scene %s: %w", s.Name, err)
		}
		for _, name := range sortedComponents(def.Components) {
			if err := w.Insert(e, name, ecs.Instance(def.Components[name])); err != nil {
				_ = w.Despawn(e)
				return spawned, fmt.Errorf("scene %s entity %s: component %s: %w",
					s.Name, def.label(i), name, err)
			}
		}
		spawned = append(spawned, e)
	}
	return spawned, nil
}

func (def SceneEntity) label(i int) string {
	if def.Name != "" {
		return def.Name
	}
	return fmt.Sprintf("#%d", i)
}

func sortedComponents(components map[string]map[string]any) []string {
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
