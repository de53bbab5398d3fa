package partition

import (
	"math"

	"github.com/charmbracelet/log"

	isoerrors "github.com/isocell/isocell/pkg/errors"
)

// Reference defaults.
const (
	DefaultMinCellNodes           = 10
	DefaultMaxCellNodes           = 5000
	DefaultMaxSplittingIterations = 1 << 26
	DefaultSplitFraction          = 0.2525
	DefaultMaxThreads             = 1
)

// infiniteCapacity is the capacity of super-source and super-sink arcs.
const infiniteCapacity = math.MaxInt32

// Options controls the inertial flow partitioner.
type Options struct {
	// MinCellNodes is the smallest cell a split may produce.
	MinCellNodes int

	// MaxCellNodes is the largest node set emitted as a leaf without a split.
	MaxCellNodes int

	// MaxSplittingIterations bounds the total number of max-flow phases over
	// the whole partition, across all goroutines.
	MaxSplittingIterations int64

	// SeparateConnectedComponents partitions each connected component of a
	// node set independently before any min-cut is computed.
	SeparateConnectedComponents bool

	// SplitFraction is the share of nodes, taken from each end of a
	// projection, that seeds the source and sink sets. Must lie in (0, 0.5).
	SplitFraction float64

	// MaxThreads bounds the number of goroutines splitting subtrees.
	MaxThreads int

	// Logger receives split diagnostics. Nil means log.Default().
	Logger *log.Logger
}

// DefaultOptions returns the reference configuration.
func DefaultOptions() Options {
	return Options{
		MinCellNodes:                DefaultMinCellNodes,
		MaxCellNodes:                DefaultMaxCellNodes,
		MaxSplittingIterations:      DefaultMaxSplittingIterations,
		SeparateConnectedComponents: true,
		SplitFraction:               DefaultSplitFraction,
		MaxThreads:                  DefaultMaxThreads,
	}
}

// Validate reports the first invalid option as an INVALID_CONFIG error.
func (o Options) Validate() error {
	switch {
	case o.MinCellNodes < 1:
		return isoerrors.New(isoerrors.ErrCodeInvalidConfig, "min cell nodes must be at least 1, got %d", o.MinCellNodes)
	case o.MaxCellNodes < 2*o.MinCellNodes:
		return isoerrors.New(isoerrors.ErrCodeInvalidConfig,
			"max cell nodes (%d) must be at least twice min cell nodes (%d)", o.MaxCellNodes, o.MinCellNodes)
	case o.MaxSplittingIterations < 1:
		return isoerrors.New(isoerrors.ErrCodeInvalidConfig, "max splitting iterations must be positive")
	case !(o.SplitFraction > 0 && o.SplitFraction < 0.5):
		return isoerrors.New(isoerrors.ErrCodeInvalidConfig, "split fraction %v outside (0, 0.5)", o.SplitFraction)
	case o.MaxThreads < 1:
		return isoerrors.New(isoerrors.ErrCodeInvalidConfig, "max threads must be at least 1, got %d", o.MaxThreads)
	}
	return nil
}

// seedSize returns how many nodes seed each of the source and sink sets for
// a node set of size n.
func (o Options) seedSize(n int) int {
	k := int(math.Floor(float64(n) * o.SplitFraction))
	return min(max(k, 1), n/2)
}

// TreeOptions is the subset of Options that determines the resulting tree.
// It is used as part of cache keys.
type TreeOptions struct {
	MinCellNodes                int     `json:"min_cell_nodes"`
	MaxCellNodes                int     `json:"max_cell_nodes"`
	MaxSplittingIterations      int64   `json:"max_splitting_iterations"`
	SeparateConnectedComponents bool    `json:"separate_connected_components"`
	SplitFraction               float64 `json:"split_fraction"`
}

// TreeOptions returns the tree-determining options.
func (o Options) TreeOptions() TreeOptions {
	return TreeOptions{
		MinCellNodes:                o.MinCellNodes,
		MaxCellNodes:                o.MaxCellNodes,
		MaxSplittingIterations:      o.MaxSplittingIterations,
		SeparateConnectedComponents: o.SeparateConnectedComponents,
		SplitFraction:               o.SplitFraction,
	}
}
