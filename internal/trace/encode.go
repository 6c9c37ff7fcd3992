package trace

import (
	"encoding/json"
	"fmt"

	"github.com/fennwald/loreweave/internal/npc"
)

// encodeState snapshots a pipeline state map into plain JSON-ready values.
func encodeState(state map[string]any) map[string]any {
	out := make(map[string]any, len(state))
	for k, v := range state {
		out[k] = encodeValue(v)
	}
	return out
}

// encodeValue is total: it always produces something JSON-marshalable and
// never fails. Primitives pass through, sequences and mappings recurse, an
// NPC profile is projected to a fixed field set, any other struct is
// round-tripped through JSON, and whatever remains degrades to its string
// form.
func encodeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return val
	case npc.NPC:
		return map[string]any{
			"name":       val.Name,
			"age":        val.Age,
			"location":   val.Location,
			"profession": val.Profession,
			"traits":     val.Traits,
		}
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = encodeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = encodeValue(item)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = item
		}
		return out
	}

	if projected, ok := projectJSON(v); ok {
		return projected
	}
	return fmt.Sprintf("%v", v)
}

// projectJSON round-trips a value through encoding/json so struct values and
// struct slices keep their field structure in the snapshot.
func projectJSON(v any) (any, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false
	}
	return out, true
}
