package packer

import (
	"errors"
	"fmt"
)

var (
	// ErrTooManyItems is returned when a request exceeds the configured item limit.
	ErrTooManyItems = errors.New("too many items in a single packing request")
	// ErrDuplicateItemID is returned when two items share an ID.
	ErrDuplicateItemID = errors.New("item IDs must be unique")
)

// ItemError attributes a packing failure to the item with the given ID.
type ItemError struct {
	ID  string
	Err error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %q: %v", e.ID, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
