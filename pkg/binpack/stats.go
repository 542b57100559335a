package binpack

import "math"

// Stats summarises a packing.
type Stats struct {
	Bins     int
	Items    int
	Capacity int // total capacity of all bins
	Used     int
	Wasted   int
	Fill     float64 // Used / Capacity, 0 when there are no bins
}

// Summarize computes Stats for bins. Size totals saturate at math.MaxInt.
func Summarize[T any](bins []*Bin[T]) Stats {
	var st Stats
	var used, capacity float64
	for _, bin := range bins {
		st.Bins++
		st.Items += bin.Len()
		st.Capacity = addSaturating(st.Capacity, bin.Capacity())
		st.Used = addSaturating(st.Used, bin.Used())
		st.Wasted = addSaturating(st.Wasted, bin.Remaining())
		used += float64(bin.Used())
		capacity += float64(bin.Capacity())
	}
	if capacity > 0 {
		st.Fill = used / capacity
	}
	return st
}

// LowerBound returns ceil(sum(sizes) / capacity), the fewest bins any
// packing of sizes can use. It returns 0 for a non-positive capacity.
// A sum beyond math.MaxInt is clamped, so the result stays a valid bound.
func LowerBound(capacity int, sizes []int) int {
	total := 0
	for _, s := range sizes {
		if s > 0 {
			total = addSaturating(total, s)
		}
	}
	return lowerBound(capacity, total)
}

func lowerBound(capacity, total int) int {
	if capacity <= 0 || total <= 0 {
		return 0
	}
	bound := total / capacity
	if total%capacity != 0 {
		bound++
	}
	return bound
}

// addSaturating adds two non-negative ints, stopping at math.MaxInt.
func addSaturating(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}
