package rules

import "sort"

// Deduplicate reduces overlapping findings to one per transaction (or
// pair), keeping the highest severity. On an exact severity tie the
// earlier finding stays. Output is ordered by identity key so repeated
// runs over the same input render identically.
func Deduplicate(violations []Violation) []Violation {
	best := make(map[string]Violation, len(violations))
	for _, v := range violations {
		key := v.IdentityKey()
		cur, ok := best[key]
		if !ok || v.Severity > cur.Severity {
			best[key] = v
		}
	}

	keys := make([]string, 0, len(best))
	for key := range best {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]Violation, 0, len(best))
	for _, key := range keys {
		out = append(out, best[key])
	}
	return out
}
