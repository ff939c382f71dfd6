package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// Upstream documents are loosely typed: archive.org returns some scalar
// fields as lists and some lists as bare strings. These helpers resolve a
// key once, applying the per-field default when it is absent.

func stringValue(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case *string:
		if t == nil {
			return "", false
		}
		return *t, true
	case []string:
		return strings.Join(t, "\n"), true
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := stringValue(e); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n"), true
	default:
		return fmt.Sprint(t), true
	}
}

func stringOr(m map[string]any, key, def string) string {
	if s, ok := stringValue(m[key]); ok {
		return s
	}
	return def
}

func optString(m map[string]any, key string) *string {
	if s, ok := stringValue(m[key]); ok {
		return &s
	}
	return nil
}

func optInt(m map[string]any, key string) *int {
	var n int
	switch t := m[key].(type) {
	case int:
		n = t
	case *int:
		if t == nil {
			return nil
		}
		n = *t
	case int64:
		n = int(t)
	case float64:
		n = int(t)
	case string:
		v, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return nil
		}
		n = v
	default:
		return nil
	}
	return &n
}

// stringList always returns a non-nil slice: a bare string becomes a
// one-element list and a missing key an empty one.
func stringList(m map[string]any, key string) []string {
	switch t := m[key].(type) {
	case string:
		return []string{t}
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := stringValue(e); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

// mapList accepts both []map[string]any (as produced by ToMap) and []any of
// maps (as produced by a JSON decoder).
func mapList(m map[string]any, key string) []map[string]any {
	switch t := m[key].(type) {
	case []map[string]any:
		return t
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, e := range t {
			if em, ok := e.(map[string]any); ok {
				out = append(out, em)
			}
		}
		return out
	default:
		return nil
	}
}

func ptrValue[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
