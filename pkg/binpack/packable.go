package binpack

// Packable is implemented by anything the packers can place into a bin.
// Size reports how much bin capacity the item consumes and must not be
// negative.
type Packable interface {
	Size() int
}

// SizeFunc measures an item that does not implement Packable.
type SizeFunc[T any] func(T) int

// sized pairs an item with its size so the value is read only once per pass.
type sized[T any] struct {
	item T
	size int
}

func packableSize[T Packable](item T) int {
	return item.Size()
}

// measure validates capacity and every item size before any bin exists.
// It returns the measured entries and their total size, clamped at
// math.MaxInt.
func measure[T any](capacity int, items []T, size SizeFunc[T]) ([]sized[T], int, error) {
	if capacity <= 0 {
		return nil, 0, invalidCapacity(capacity)
	}

	entries := make([]sized[T], len(items))
	total := 0
	for i, item := range items {
		s := size(item)
		if s < 0 {
			return nil, 0, &InvalidSizeError{Index: i, Size: s}
		}
		if s > capacity {
			return nil, 0, &OversizedItemError{Index: i, Size: s, Capacity: capacity}
		}
		entries[i] = sized[T]{item: item, size: s}
		total = addSaturating(total, s)
	}
	return entries, total, nil
}
