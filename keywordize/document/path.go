package document

import (
	"sort"
	"strings"
)

// getPath resolves a dotted path against nested maps.
func getPath(m map[string]any, path string) (any, bool) {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := asObject(cur)
		if !ok {
			return nil, false
		}
		cur, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// setPath stores v at a dotted path, creating or replacing intermediate
// objects as needed.
func setPath(m map[string]any, path string, v any) {
	parts := strings.Split(path, ".")
	cur := m
	for _, part := range parts[:len(parts)-1] {
		next, ok := asObject(cur[part])
		if !ok {
			next = make(map[string]any)
			cur[part] = next
		} else if _, isAny := cur[part].(map[string]any); !isAny {
			// normalize typed maps so later writes land in the document
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = v
}

// canSetPath reports whether setPath would store at path without replacing
// an existing non-object value.
func canSetPath(m map[string]any, path string) bool {
	parts := strings.Split(path, ".")
	cur := m
	for _, part := range parts[:len(parts)-1] {
		v, ok := cur[part]
		if !ok || v == nil {
			return true
		}
		next, isObj := asObject(v)
		if !isObj {
			return false
		}
		cur = next
	}
	return true
}

func asObject(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, s := range t {
			out[k] = s
		}
		return out, true
	default:
		return nil, false
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case map[string]string:
		obj, _ := asObject(t)
		return obj
	case []string:
		return append([]string(nil), t...)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
