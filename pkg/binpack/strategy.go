package binpack

import (
	"fmt"
	"strings"
)

// Strategy names a packing algorithm.
type Strategy string

const (
	StrategyFirstFit           Strategy = "first-fit"
	StrategyFirstFitDecreasing Strategy = "first-fit-decreasing"
)

// Strategies lists the supported strategies in a stable order.
func Strategies() []Strategy {
	return []Strategy{StrategyFirstFit, StrategyFirstFitDecreasing}
}

// ParseStrategy resolves a strategy name. Matching is case-insensitive and
// accepts the short aliases "ff" and "ffd".
func ParseStrategy(raw string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(StrategyFirstFit), "ff", "firstfit":
		return StrategyFirstFit, nil
	case string(StrategyFirstFitDecreasing), "ffd", "firstfitdecreasing":
		return StrategyFirstFitDecreasing, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, raw)
	}
}

// Pack runs the named strategy over Packable items.
func Pack[T Packable](strategy Strategy, capacity int, items []T) ([]*Bin[T], error) {
	return PackBy(strategy, capacity, items, packableSize[T])
}

// PackBy runs the named strategy over items measured by size.
func PackBy[T any](strategy Strategy, capacity int, items []T, size SizeFunc[T]) ([]*Bin[T], error) {
	switch strategy {
	case StrategyFirstFit:
		return FirstFitBy(capacity, items, size)
	case StrategyFirstFitDecreasing:
		return FirstFitDecreasingBy(capacity, items, size)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, string(strategy))
	}
}
