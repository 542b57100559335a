package packer

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/binpack/pkg/binpack"
)

// DefaultMaxItems bounds a single request when no limit is configured.
const DefaultMaxItems = 100_000

type enginePacker struct {
	maxItems int
	logger   *zap.Logger
}

// Option configures the packer returned by New.
type Option func(*enginePacker)

// WithMaxItems limits the number of items accepted per request. Values <= 0
// keep the default.
func WithMaxItems(n int) Option {
	return func(p *enginePacker) {
		if n > 0 {
			p.maxItems = n
		}
	}
}

// WithLogger sets the logger used for per-run debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(p *enginePacker) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Packer backed by the binpack algorithms.
func New(opts ...Option) Packer {
	p := &enginePacker{
		maxItems: DefaultMaxItems,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *enginePacker) Pack(req Request) (Result, error) {
	if len(req.Items) > p.maxItems {
		return Result{}, fmt.Errorf("%w: got %d, limit %d", ErrTooManyItems, len(req.Items), p.maxItems)
	}
	if err := checkUniqueIDs(req.Items); err != nil {
		return Result{}, err
	}

	start := time.Now()
	bins, err := binpack.PackBy(req.Strategy, req.Capacity, req.Items, itemSize)
	if err != nil {
		return Result{}, attributeError(req.Items, err)
	}

	result := Result{
		Strategy:   req.Strategy,
		Capacity:   req.Capacity,
		Bins:       make([]BinResult, len(bins)),
		Stats:      binpack.Summarize(bins),
		LowerBound: binpack.LowerBound(req.Capacity, sizes(req.Items)),
	}
	for i, bin := range bins {
		result.Bins[i] = BinResult{
			Items:     bin.Contents(),
			Used:      bin.Used(),
			Remaining: bin.Remaining(),
		}
	}

	p.logger.Debug("packing completed",
		zap.String("strategy", string(req.Strategy)),
		zap.Int("capacity", req.Capacity),
		zap.Int("items", len(req.Items)),
		zap.Int("bins", len(bins)),
		zap.Int("lower_bound", result.LowerBound),
		zap.Duration("duration", time.Since(start)),
	)

	return result, nil
}

func itemSize(item Item) int {
	return item.Size
}

func sizes(items []Item) []int {
	out := make([]int, len(items))
	for i, item := range items {
		out[i] = item.Size
	}
	return out
}

func checkUniqueIDs(items []Item) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		if _, ok := seen[item.ID]; ok {
			return &ItemError{ID: item.ID, Err: ErrDuplicateItemID}
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

// attributeError maps the engine's positional item errors onto item IDs.
func attributeError(items []Item, err error) error {
	var oversized *binpack.OversizedItemError
	if errors.As(err, &oversized) {
		return &ItemError{ID: itemLabel(items, oversized.Index), Err: err}
	}
	var invalid *binpack.InvalidSizeError
	if errors.As(err, &invalid) {
		return &ItemError{ID: itemLabel(items, invalid.Index), Err: err}
	}
	return err
}

func itemLabel(items []Item, index int) string {
	if index < 0 || index >= len(items) {
		return fmt.Sprintf("#%d", index)
	}
	if id := items[index].ID; id != "" {
		return id
	}
	return fmt.Sprintf("#%d", index)
}
