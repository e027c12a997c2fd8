package llm

import (
	"strconv"
	"strings"
)

// Judgment is the outcome of one semantic classification. Degraded marks
// judgments where the model output never validated and the conservative
// default applied, so callers can tell "not flagged" from "judgment
// unavailable".
type Judgment struct {
	Fields   map[string]any
	Degraded bool
}

// Bool reads a boolean field. Models occasionally emit "true"/"false" as
// strings, which count as well.
func (j Judgment) Bool(key string) bool {
	switch v := j.Fields[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	default:
		return false
	}
}

// Int reads a numeric field. JSON numbers decode as float64.
func (j Judgment) Int(key string) int {
	switch v := j.Fields[key].(type) {
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Str reads a string field.
func (j Judgment) Str(key string) string {
	if v, ok := j.Fields[key].(string); ok {
		return v
	}
	return ""
}

// StrSlice reads a list field, keeping its string entries.
func (j Judgment) StrSlice(key string) []string {
	raw, ok := j.Fields[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
