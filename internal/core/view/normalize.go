package view

import "sort"

// Normalize puts a view into canonical order in place and returns it.
// Applied unconditionally before a view leaves the resolver, so any two
// callers resolving the same run observe identical output:
//
//   - constraints sorted by (key, id) ascending
//   - each artifact bucket sorted by (createdAt, id) ascending
//
// Map contents are unordered by nature; their canonical form is fixed at
// serialization time (encoding/json sorts map keys lexicographically).
func Normalize(v *ContextView) *ContextView {
	sort.Slice(v.Constraints, func(i, j int) bool {
		if v.Constraints[i].Key != v.Constraints[j].Key {
			return v.Constraints[i].Key < v.Constraints[j].Key
		}
		return v.Constraints[i].ID < v.Constraints[j].ID
	})

	for _, bucket := range v.ArtifactsByType {
		sort.Slice(bucket, func(i, j int) bool {
			ci, cj := parseStamp(bucket[i].CreatedAt), parseStamp(bucket[j].CreatedAt)
			if !ci.Equal(cj) {
				return ci.Before(cj)
			}
			return bucket[i].ID < bucket[j].ID
		})
	}

	return v
}
