package binpack

// Bin is a single fixed-capacity container. Contents keep insertion order.
// The zero value is a bin with no room.
type Bin[T any] struct {
	capacity  int
	remaining int
	contents  []T
}

// NewBin returns an empty bin. A negative capacity is treated as zero.
func NewBin[T any](capacity int) *Bin[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Bin[T]{
		capacity:  capacity,
		remaining: capacity,
	}
}

// TryAdd appends item when size fits into the remaining space and reports
// whether it did. A refused item leaves the bin untouched.
func (b *Bin[T]) TryAdd(item T, size int) bool {
	if size < 0 || size > b.remaining {
		return false
	}
	b.contents = append(b.contents, item)
	b.remaining -= size
	return true
}

// Place is TryAdd for Packable items.
func Place[T Packable](b *Bin[T], item T) bool {
	return b.TryAdd(item, item.Size())
}

// Capacity returns the size the bin was created with.
func (b *Bin[T]) Capacity() int {
	return b.capacity
}

// Remaining returns the free space left in the bin.
func (b *Bin[T]) Remaining() int {
	return b.remaining
}

// Used returns the total size of the contents.
func (b *Bin[T]) Used() int {
	return b.capacity - b.remaining
}

// Len returns the number of items in the bin.
func (b *Bin[T]) Len() int {
	return len(b.contents)
}

// IsFull reports whether no space is left.
func (b *Bin[T]) IsFull() bool {
	return b.remaining == 0
}

// Contents returns a copy of the items in insertion order.
func (b *Bin[T]) Contents() []T {
	out := make([]T, len(b.contents))
	copy(out, b.contents)
	return out
}

// MapBin converts the contents of b with fn. Capacity and remaining space
// are copied as-is; fn is not required to preserve item sizes.
func MapBin[T, U any](b *Bin[T], fn func(T) U) *Bin[U] {
	out := &Bin[U]{
		capacity:  b.capacity,
		remaining: b.remaining,
		contents:  make([]U, len(b.contents)),
	}
	for i, item := range b.contents {
		out.contents[i] = fn(item)
	}
	return out
}
