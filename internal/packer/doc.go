// Package packer adapts the binpack algorithms to the service's item model.
// It enforces request limits, attributes engine errors to item IDs and
// produces a flat, serialisable Result.
package packer
