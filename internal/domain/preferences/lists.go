package preferences

import "slices"

// PushFront moves id to the front of list, dropping any earlier copy, and
// truncates to limit entries (no limit when limit <= 0).
func PushFront(list []string, id string, limit int) []string {
	out := make([]string, 0, len(list)+1)
	out = append(out, id)
	for _, existing := range list {
		if existing != id {
			out = append(out, existing)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Remove returns list without id
func Remove(list []string, id string) []string {
	out := make([]string, 0, len(list))
	for _, existing := range list {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

// Toggle removes id when present, otherwise pushes it to the front.
// It reports whether id is in the result.
func Toggle(list []string, id string, limit int) ([]string, bool) {
	if slices.Contains(list, id) {
		return Remove(list, id), false
	}
	out := PushFront(list, id, limit)
	return out, slices.Contains(out, id)
}

// Dedupe keeps the first occurrence of each id, dropping empty ids
func Dedupe(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, id := range list {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Filter keeps ids accepted by keep, preserving order
func Filter(list []string, keep func(string) bool) []string {
	out := make([]string, 0, len(list))
	for _, id := range list {
		if keep(id) {
			out = append(out, id)
		}
	}
	return out
}
