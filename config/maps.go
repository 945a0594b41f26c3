package config

import (
	"strings"

	"github.com/spf13/cast"
)

// deepCopyMap copies m, converting nested maps (as produced by YAML) to
// map[string]interface{} and optionally lower casing all keys.
func deepCopyMap(m map[string]interface{}, lower bool) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		if lower {
			k = strings.ToLower(k)
		}
		out[k] = copyValue(v, lower)
	}
	return out
}

func copyValue(v interface{}, lower bool) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(x, lower)
	case map[interface{}]interface{}:
		return deepCopyMap(cast.ToStringMap(x), lower)
	case []interface{}:
		s := make([]interface{}, len(x))
		for i, e := range x {
			s[i] = copyValue(e, lower)
		}
		return s
	}
	return v
}

// mergeMaps merges src into dst. Maps are merged recursively, anything else in src replaces dst.
func mergeMaps(dst, src map[string]interface{}) {
	for k, sv := range src {
		smap, sok := sv.(map[string]interface{})
		dmap, dok := dst[k].(map[string]interface{})
		if sok && dok {
			mergeMaps(dmap, smap)
			continue
		}
		dst[k] = sv
	}
}

// searchMap walks path through nested maps.
func searchMap(m map[string]interface{}, path []string) interface{} {
	if len(path) == 0 {
		return m
	}
	next, ok := m[path[0]]
	if !ok {
		return nil
	}
	if len(path) == 1 {
		return next
	}
	if sub, ok := next.(map[string]interface{}); ok {
		return searchMap(sub, path[1:])
	}
	return nil
}

// setKeyInMap sets value at path, creating intermediate maps.
func setKeyInMap(m map[string]interface{}, path []string, value interface{}) {
	for _, k := range path[:len(path)-1] {
		sub, ok := m[k].(map[string]interface{})
		if !ok {
			sub = make(map[string]interface{})
			m[k] = sub
		}
		m = sub
	}
	m[path[len(path)-1]] = value
}
