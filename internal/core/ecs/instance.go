package ecs

// Instance is the structured data stored for one (entity, component type)
// pair. Systems mutate it in place; storage is write-through.
type Instance map[string]any

// CloneInstance deep-copies an instance. Nested maps and slices are copied;
// scalar values are shared (they are immutable in the data model).
func CloneInstance(src Instance) Instance {
	if src == nil {
		return Instance{}
	}
	dst := make(Instance, len(src))
	for k, v := range src {
		dst[k] = cloneValue(v)
	}
	return dst
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case Instance:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = cloneValue(e)
		}
		return s
	}
	return v
}

// mergeInstance lays the supplied fields over a fresh clone of the defaults.
// Top-level fields replace wholesale (no recursive merge); nil-valued fields
// are unset and fall back to the default.
func mergeInstance(defaults, data Instance) Instance {
	out := CloneInstance(defaults)
	for k, v := range data {
		if v == nil {
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

// Number reads a numeric field as float64. Missing fields and non-numbers
// read as zero; YAML, TOML and Lua all shuttle numbers through several Go
// integer widths, so every one is accepted.
func (i Instance) Number(key string) float64 {
	switch n := i[key].(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	}
	return 0
}

// SetNumber writes a numeric field in place. Data mutation only: it never
// touches the world's structural version.
func (i Instance) SetNumber(key string, v float64) { i[key] = v }

// Str reads a string field; missing or non-string fields read as "".
func (i Instance) Str(key string) string {
	s, _ := i[key].(string)
	return s
}

// Bool reads a boolean field; missing or non-boolean fields read as false.
func (i Instance) Bool(key string) bool {
	b, _ := i[key].(bool)
	return b
}
