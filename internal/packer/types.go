package packer

import "github.com/eugenenazirov/binpack/pkg/binpack"

// Item is a caller-identified unit of work with a size.
type Item struct {
	ID   string `json:"id" yaml:"id"`
	Size int    `json:"size" yaml:"size"`
}

// Request describes one packing run.
type Request struct {
	Capacity int
	Strategy binpack.Strategy
	Items    []Item
}

// BinResult is a single packed bin.
type BinResult struct {
	Items     []Item
	Used      int
	Remaining int
}

// Result is the outcome of a packing run. LowerBound is the theoretical
// minimum bin count, useful for judging how close the heuristic got.
type Result struct {
	Strategy   binpack.Strategy
	Capacity   int
	Bins       []BinResult
	Stats      binpack.Stats
	LowerBound int
}

// Packer describes the behaviour required from a bin packer.
type Packer interface {
	Pack(req Request) (Result, error)
}
