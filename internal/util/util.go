package util

import "strings"

// FirstNonEmpty returns the first value that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// CloneData deep copies a data map. Nested maps and slices of the
// map[string]any / []any / []string shapes are copied; other values are
// shared. A nil input yields a nil map.
func CloneData(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = CloneValue(value)
	}
	return out
}

// CloneValue deep copies the JSON-like shapes handled by CloneData.
func CloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return CloneData(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = CloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	case map[string]string:
		out := make(map[string]string, len(typed))
		for k, v := range typed {
			out[k] = v
		}
		return out
	default:
		return value
	}
}

// Overlay copies every key of layer onto base, replacing existing values.
// It is a shallow, per-key merge: nested maps are replaced, not merged.
func Overlay(base, layer map[string]any) map[string]any {
	if base == nil {
		base = make(map[string]any, len(layer))
	}
	for key, value := range layer {
		base[key] = CloneValue(value)
	}
	return base
}
