package schema

import (
	"fmt"
	"sort"
)

// Kind classifies the value a component field may hold.
type Kind uint8

const (
	KindNumber Kind = iota
	KindString
	KindBool
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindNumber: "number",
	KindString: "string",
	KindBool:   "boolean",
	KindArray:  "array",
	KindObject: "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// ParseKind maps a definition-file kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "number":
		return KindNumber, nil
	case "string":
		return KindString, nil
	case "boolean", "bool":
		return KindBool, nil
	case "array":
		return KindArray, nil
	case "object":
		return KindObject, nil
	}
	return 0, fmt.Errorf("unknown field kind %q", s)
}

// FieldSpec describes one field. Shape is only consulted for KindObject;
// a nil Shape accepts any object value.
type FieldSpec struct {
	Kind  Kind
	Shape Shape
}

// Shape maps field names to their specs. A nil Shape disables validation
// entirely; an empty non-nil Shape accepts no fields at all (tags).
type Shape map[string]FieldSpec

// Violation is one validation failure. Unknown marks a field absent from
// the shape; otherwise Want/Got describe the kind mismatch.
type Violation struct {
	Path    string
	Unknown bool
	Want    Kind
	Got     string
}

func (v Violation) String() string {
	if v.Unknown {
		return fmt.Sprintf("unknown field %q", v.Path)
	}
	return fmt.Sprintf("field %q: expected %s, got %s", v.Path, v.Want, v.Got)
}

// Validate checks data against the shape and returns every violation found,
// not just the first. Nil-valued fields are treated as unset and skipped.
// A nil shape validates nothing.
func Validate(shape Shape, data map[string]any) []Violation {
	if shape == nil {
		return nil
	}
	var out []Violation
	validate(shape, data, "", &out)
	return out
}

func validate(shape Shape, data map[string]any, prefix string, out *[]Violation) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := data[k]
		if v == nil {
			continue
		}
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		spec, ok := shape[k]
		if !ok {
			*out = append(*out, Violation{Path: path, Unknown: true})
			continue
		}
		got, known := KindOf(v)
		if !known {
			*out = append(*out, Violation{Path: path, Want: spec.Kind, Got: fmt.Sprintf("%T", v)})
			continue
		}
		if got != spec.Kind {
			*out = append(*out, Violation{Path: path, Want: spec.Kind, Got: got.String()})
			continue
		}
		if spec.Kind == KindObject && spec.Shape != nil {
			nested, _ := v.(map[string]any)
			validate(spec.Shape, nested, path, out)
		}
	}
}

// KindOf reports the Kind of a runtime value. The second return is false for
// values outside the component data model (channels, structs, funcs...).
func KindOf(v any) (Kind, bool) {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return KindNumber, true
	case string:
		return KindString, true
	case bool:
		return KindBool, true
	case []any:
		return KindArray, true
	case map[string]any:
		return KindObject, true
	}
	return 0, false
}
