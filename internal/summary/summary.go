// Package summary derives a bounded, display-safe excerpt from an arbitrary
// inference response for constrained-bandwidth clients.
package summary

import (
	"encoding/json"
	"fmt"
	"sort"
)

// MaxLen is the maximum excerpt length in runes.
const MaxLen = 200

const ellipsis = "..."

// priorityKeys is the ordered list of candidate field names scanned when the
// inference response is a keyed mapping.
var priorityKeys = []string{"response", "answer", "result", "text", "output", "prediction"}

// Excerpt extracts a deterministic excerpt of at most MaxLen runes from an
// inference result. Pure function, no I/O.
//
// The backend's response schema is not under our control. For mappings with
// none of the known keys, the value of the lexicographically smallest key is
// used: Go maps have no iteration order, so sorted order stands in for the
// "first entry" a schema-preserving decoder would see.
func Excerpt(result any) string {
	return truncate(stringForm(pick(result)))
}

func pick(result any) any {
	m, ok := asMap(result)
	if !ok {
		return result
	}
	for _, key := range priorityKeys {
		if v, present := m[key]; present {
			return v
		}
	}
	if len(m) == 0 {
		return result
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return m[keys[0]]
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	default:
		return nil, false
	}
}

func stringForm(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64, bool, int, int64:
		return fmt.Sprintf("%v", s)
	default:
		// Composite values render as compact JSON.
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxLen {
		return s
	}
	return string(runes[:MaxLen-len(ellipsis)]) + ellipsis
}
