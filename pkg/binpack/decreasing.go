package binpack

import (
	"cmp"
	"slices"
)

// FirstFitDecreasing sorts a copy of items by size, largest first, and
// packs the copy with the first-fit rule. Items of equal size keep their
// relative input order. The items slice is not modified.
func FirstFitDecreasing[T Packable](capacity int, items []T) ([]*Bin[T], error) {
	return FirstFitDecreasingBy(capacity, items, packableSize[T])
}

// FirstFitDecreasingBy is FirstFitDecreasing for items measured by size.
func FirstFitDecreasingBy[T any](capacity int, items []T, size SizeFunc[T]) ([]*Bin[T], error) {
	entries, total, err := measure(capacity, items, size)
	if err != nil {
		return nil, err
	}
	sortDecreasing(entries)
	return firstFit(capacity, entries, lowerBound(capacity, total)), nil
}

// sortDecreasing must stay stable: equal sizes compete for bin slots in
// input order.
func sortDecreasing[T any](entries []sized[T]) {
	slices.SortStableFunc(entries, func(a, b sized[T]) int {
		return cmp.Compare(b.size, a.size)
	})
}
