package binpack

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCapacity is returned when the bin capacity is zero or negative.
	ErrInvalidCapacity = errors.New("bin capacity must be a positive integer")
	// ErrOversizedItem is returned when an item is larger than an empty bin.
	ErrOversizedItem = errors.New("item size exceeds bin capacity")
	// ErrNegativeSize is returned when an item reports a negative size.
	ErrNegativeSize = errors.New("item size must be a non-negative integer")
	// ErrUnknownStrategy is returned for a strategy name that is not recognised.
	ErrUnknownStrategy = errors.New("unknown packing strategy")
)

// OversizedItemError identifies the item that can never be placed.
// It matches ErrOversizedItem with errors.Is.
type OversizedItemError struct {
	Index    int
	Size     int
	Capacity int
}

func (e *OversizedItemError) Error() string {
	return fmt.Sprintf("item %d: size %d exceeds bin capacity %d", e.Index, e.Size, e.Capacity)
}

func (e *OversizedItemError) Unwrap() error {
	return ErrOversizedItem
}

// InvalidSizeError identifies an item whose size is negative.
// It matches ErrNegativeSize with errors.Is.
type InvalidSizeError struct {
	Index int
	Size  int
}

func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("item %d: size %d is negative", e.Index, e.Size)
}

func (e *InvalidSizeError) Unwrap() error {
	return ErrNegativeSize
}

func invalidCapacity(capacity int) error {
	return fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
}
