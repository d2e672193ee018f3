package data

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kestrelengine/kestrel/internal/core/ecs"
	"github.com/kestrelengine/kestrel/internal/core/schema"
)

// FieldDef is one schema field in a component definition file. In YAML it is
// either a bare kind name:
//
//	x: number
//
// or, for object fields with a nested schema, a mapping:
//
//	stats: {kind: object, fields: {hp: number}}
type FieldDef struct {
	Kind   string
	Fields map[string]FieldDef
}

func (d *FieldDef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		d.Kind = node.Value
		return nil
	case yaml.MappingNode:
		var aux struct {
			Kind   string              `yaml:"kind"`
			Fields map[string]FieldDef `yaml:"fields"`
		}
		if err := node.Decode(&aux); err != nil {
			return err
		}
		d.Kind, d.Fields = aux.Kind, aux.Fields
		return nil
	}
	return fmt.Errorf("line %d: field def must be a kind name or a mapping", node.Line)
}

// ComponentDef is one component entry from a definition file. A tag carries
// neither defaults nor schema; a definition without a schema registers as
// unvalidated.
type ComponentDef struct {
	Name     string              `yaml:"name"`
	Tag      bool                `yaml:"tag"`
	Defaults map[string]any      `yaml:"defaults"`
	Schema   map[string]FieldDef `yaml:"schema"`
}

type componentFile struct {
	Components []ComponentDef `yaml:"components"`
}

// Shape converts the definition's schema into a validation shape.
func (d ComponentDef) Shape() (schema.Shape, error) {
	if d.Tag {
		if len(d.Schema) > 0 || len(d.Defaults) > 0 {
			return nil, fmt.Errorf("component %q: a tag carries no schema or defaults", d.Name)
		}
		return schema.Shape{}, nil
	}
	if d.Schema == nil {
		return nil, nil
	}
	return buildShape(d.Schema)
}

func buildShape(fields map[string]FieldDef) (schema.Shape, error) {
	shape := make(schema.Shape, len(fields))
	for name, def := range fields {
		kind, err := schema.ParseKind(def.Kind)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		spec := schema.FieldSpec{Kind: kind}
		if len(def.Fields) > 0 {
			if kind != schema.KindObject {
				return nil, fmt.Errorf("field %q: nested fields require kind object, not %s", name, kind)
			}
			nested, err := buildShape(def.Fields)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", name, err)
			}
			spec.Shape = nested
		}
		shape[name] = spec
	}
	return shape, nil
}

// LoadComponentDefs loads one component definition file.
func LoadComponentDefs(path string) ([]ComponentDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read component defs: %w", err)
	}
	var f componentFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse component defs %s: %w", path, err)
	}
	for i, def := range f.Components {
		if def.Name == "" {
			return nil, fmt.Errorf("%s: component entry %d has no name", path, i)
		}
	}
	return f.Components, nil
}

// LoadComponentDir loads every .yaml/.yml file directly under dir. os.ReadDir
// returns entries sorted by filename, so definition order is reproducible.
func LoadComponentDir(dir string) ([]ComponentDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read component dir: %w", err)
	}
	var defs []ComponentDef
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
		default:
			continue
		}
		fileDefs, err := LoadComponentDefs(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		defs = append(defs, fileDefs...)
	}
	return defs, nil
}

// Register defines every def into the registry. Each definition's defaults
// are checked against its own shape first, so a bad data file fails at load
// time rather than at the first spawn.
func Register(reg *ecs.Registry, defs []ComponentDef) error {
	for _, def := range defs {
		shape, err := def.Shape()
		if err != nil {
			return err
		}
		if vs := schema.Validate(shape, def.Defaults); len(vs) > 0 {
			return &ecs.ValidationError{Component: def.Name, Violations: vs}
		}
		reg.Define(def.Name, ecs.Instance(def.Defaults), shape)
	}
	return nil
}
