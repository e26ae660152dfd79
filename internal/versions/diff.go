package versions

import (
	"encoding/json"
	"reflect"

	"github.com/goliatone/go-polycontent/internal/util"
)

// ComputeDiff returns the keys of next whose value is absent from prev or
// differs from it. Keys present only in prev are not reported, so removals
// are invisible in the diff; the snapshot remains the source of truth.
func ComputeDiff(prev, next map[string]any) map[string]any {
	diff := map[string]any{}
	for key, value := range next {
		old, ok := prev[key]
		if ok && reflect.DeepEqual(old, value) {
			continue
		}
		diff[key] = util.CloneValue(value)
	}
	return diff
}

// EncodeDiff renders the diff as a JSON object string.
func EncodeDiff(diff map[string]any) (*string, error) {
	if diff == nil {
		diff = map[string]any{}
	}
	encoded, err := json.Marshal(diff)
	if err != nil {
		return nil, err
	}
	value := string(encoded)
	return &value, nil
}

// DecodeDiff parses a diff produced by EncodeDiff. A nil diff decodes to nil.
func DecodeDiff(diff *string) (map[string]any, error) {
	if diff == nil {
		return nil, nil
	}
	out := map[string]any{}
	if err := json.Unmarshal([]byte(*diff), &out); err != nil {
		return nil, err
	}
	return out, nil
}
