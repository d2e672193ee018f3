// defcheck lints the engine's data files before they ever reach a running
// world: component definitions are checked against their own schemas, scenes
// against the resulting registry (built-ins included).
//
// Usage:
//
//	go run ./cmd/defcheck [componentsDir [scenesDir]]
//
// Exits 1 when any problem is found, printing every problem rather than
// stopping at the first.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/kestrelengine/kestrel/internal/component"
	"github.com/kestrelengine/kestrel/internal/core/ecs"
	"github.com/kestrelengine/kestrel/internal/core/schema"
	"github.com/kestrelengine/kestrel/internal/data"
)

func main() {
	componentsDir := filepath.Join("data", "components")
	scenesDir := filepath.Join("data", "scenes")
	if len(os.Args) >= 2 {
		componentsDir = os.Args[1]
	}
	if len(os.Args) >= 3 {
		scenesDir = os.Args[2]
	}

	var problems []string

	// ---- Component definitions ----
	defs, err := data.LoadComponentDir(componentsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading %s: %v\n", componentsDir, err)
		os.Exit(1)
	}

	reg := ecs.NewRegistry()
	component.RegisterBuiltins(reg)

	seen := make(map[string]bool, len(defs))
	for _, def := range defs {
		if seen[def.Name] {
			problems = append(problems, fmt.Sprintf("component %q: defined more than once (later definitions are ignored at runtime)", def.Name))
			continue
		}
		seen[def.Name] = true
		if _, builtin := reg.Lookup(def.Name); builtin {
			problems = append(problems, fmt.Sprintf("component %q: shadows a built-in definition", def.Name))
			continue
		}

		shape, err := def.Shape()
		if err != nil {
			problems = append(problems, fmt.Sprintf("component %q: %v", def.Name, err))
			continue
		}
		for _, v := range schema.Validate(shape, def.Defaults) {
			problems = append(problems, fmt.Sprintf("component %q defaults: %s", def.Name, v))
		}
		reg.Define(def.Name, ecs.Instance(def.Defaults), shape)
	}

	// ---- Scenes ----
	sceneCount := 0
	entries, err := os.ReadDir(scenesDir)
	if err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "error reading %s: %v\n", scenesDir, err)
		os.Exit(1)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
		default:
			continue
		}
		path := filepath.Join(scenesDir, entry.Name())
		scn, err := data.LoadScene(path)
		if err != nil {
			problems = append(problems, fmt.Sprintf("scene %s: %v", path, err))
			continue
		}
		sceneCount++
		for i, ent := range scn.Entities {
			label := ent.Name
			if label == "" {
				label = fmt.Sprintf("#%d", i)
			}
			for _, name := range sortedKeys(ent.Components) {
				t, ok := reg.Lookup(name)
				if !ok {
					problems = append(problems, fmt.Sprintf("scene %s entity %s: unknown component %q", scn.Name, label, name))
					continue
				}
				for _, v := range schema.Validate(t.Shape(), ent.Components[name]) {
					problems = append(problems, fmt.Sprintf("scene %s entity %s: component %q: %s", scn.Name, label, name, v))
				}
			}
		}
	}

	// ---- Report ----
	fmt.Printf("Checked %d component definitions and %d scenes\n", len(defs), sceneCount)
	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintf(os.Stderr, "  %s\n", p)
		}
		fmt.Fprintf(os.Stderr, "%d problem(s) found\n", len(problems))
		os.Exit(1)
	}
	fmt.Println("No problems found")
}

func sortedKeys(m map[string]map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
