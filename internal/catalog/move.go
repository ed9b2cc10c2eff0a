package catalog

import "sort"

// moveOffsets moves the elements at the given offsets so that they end up,
// in their original relative order, in front of the element that was at
// offset to before the move. to == len(items) moves them to the end.
//
// Offsets out of range and duplicates are ignored. to is clamped to
// [0, len(items)].
func moveOffsets[T any](items []T, from []int, to int) []T {
	n := len(items)
	to = min(max(to, 0), n)

	selected := make(map[int]bool, len(from))
	for _, i := range from {
		if i >= 0 && i < n {
			selected[i] = true
		}
	}
	if len(selected) == 0 {
		return items
	}

	offsets := make([]int, 0, len(selected))
	for i := range selected {
		offsets = append(offsets, i)
	}
	sort.Ints(offsets)

	moved := make([]T, 0, len(offsets))
	rest := make([]T, 0, n-len(offsets))
	before := 0 // selected offsets in front of the destination
	for i, item := range items {
		if selected[i] {
			moved = append(moved, item)
			if i < to {
				before++
			}
			continue
		}
		rest = append(rest, item)
	}

	insertAt := to - before
	result := make([]T, 0, n)
	result = append(result, rest[:insertAt]...)
	result = append(result, moved...)
	result = append(result, rest[insertAt:]...)
	return result
}
