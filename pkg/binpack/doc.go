// Package binpack packs sized items into fixed-capacity bins using the
// classical one-dimensional offline heuristics: first-fit and
// first-fit-decreasing.
//
// Items either implement Packable or are measured by a caller-supplied
// SizeFunc. Every call validates the whole input before opening a bin,
// so it returns either a complete packing or an error and no bins.
package binpack
