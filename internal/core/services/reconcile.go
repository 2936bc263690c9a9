package services

import (
	"cmp"
	"slices"
)

// setDiff returns desired minus current and current minus desired, both
// sorted. Duplicates on either side are ignored.
func setDiff[K cmp.Ordered](current, desired []K) (toAdd, toRemove []K) {
	have := make(map[K]struct{}, len(current))
	for _, k := range current {
		have[k] = struct{}{}
	}
	want := make(map[K]struct{}, len(desired))
	for _, k := range desired {
		want[k] = struct{}{}
	}

	for k := range want {
		if _, ok := have[k]; !ok {
			toAdd = append(toAdd, k)
		}
	}
	for k := range have {
		if _, ok := want[k]; !ok {
			toRemove = append(toRemove, k)
		}
	}
	slices.Sort(toAdd)
	slices.Sort(toRemove)
	return toAdd, toRemove
}
