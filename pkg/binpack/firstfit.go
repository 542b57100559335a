package binpack

// FirstFit packs items in the given order. Each item goes into the first
// bin, in opening order, with enough room; a new bin is opened only when
// none fits. The items slice is not modified.
func FirstFit[T Packable](capacity int, items []T) ([]*Bin[T], error) {
	return FirstFitBy(capacity, items, packableSize[T])
}

// FirstFitBy is FirstFit for items measured by size.
func FirstFitBy[T any](capacity int, items []T, size SizeFunc[T]) ([]*Bin[T], error) {
	entries, total, err := measure(capacity, items, size)
	if err != nil {
		return nil, err
	}
	return firstFit(capacity, entries, lowerBound(capacity, total)), nil
}

// firstFit expects entries already validated against capacity, so opening
// a fresh bin always succeeds. expectedBins only pre-sizes the result and
// is clamped to [0, len(entries)].
func firstFit[T any](capacity int, entries []sized[T], expectedBins int) []*Bin[T] {
	expectedBins = max(0, min(expectedBins, len(entries)))
	bins := make([]*Bin[T], 0, expectedBins)
	for _, e := range entries {
		if placeInOpenBin(bins, e) {
			continue
		}
		bin := NewBin[T](capacity)
		bin.TryAdd(e.item, e.size)
		bins = append(bins, bin)
	}
	return bins
}

func placeInOpenBin[T any](bins []*Bin[T], e sized[T]) bool {
	for _, bin := range bins {
		if bin.TryAdd(e.item, e.size) {
			return true
		}
	}
	return false
}
