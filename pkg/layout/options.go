package layout

import (
	"fmt"
	"math"
)

// Direction selects the primary axis ranks are laid out along.
type Direction string

const (
	// LeftRight places ranks left to right (x is the primary axis).
	LeftRight Direction = "LR"
	// TopBottom places ranks top to bottom (y is the primary axis).
	TopBottom Direction = "TB"
)

// Layout defaults, matching the dashboard's diagram view.
const (
	DefaultRankSep = 150.0
	DefaultNodeSep = 100.0
	DefaultSweeps  = 24

	// MaxSweeps bounds the barycenter passes a caller may request.
	MaxSweeps = 1000
)

// ParseDirection converts "LR" or "TB" (any case) into a Direction.
// An empty string yields [LeftRight].
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "LR", "lr":
		return LeftRight, nil
	case "TB", "tb":
		return TopBottom, nil
	default:
		return "", fmt.Errorf("invalid direction %q: must be LR or TB", s)
	}
}

// Options controls layout spacing and effort.
type Options struct {
	Direction Direction
	RankSep   float64 // gap between adjacent ranks along the primary axis
	NodeSep   float64 // gap between adjacent nodes within a rank
	Sweeps    int     // barycenter sweeps (down and up alternate)
	Transpose bool    // refine each sweep with adjacent swaps
}

// DefaultOptions returns LR layout with the default spacing.
func DefaultOptions() Options {
	return Options{
		Direction: LeftRight,
		RankSep:   DefaultRankSep,
		NodeSep:   DefaultNodeSep,
		Sweeps:    DefaultSweeps,
		Transpose: true,
	}
}

// Option configures a layout computation.
type Option func(*Options)

// WithDirection sets the primary axis.
func WithDirection(d Direction) Option {
	return func(o *Options) { o.Direction = d }
}

// WithRankSep sets the gap between ranks. Negative and non-finite values are
// ignored.
func WithRankSep(sep float64) Option {
	return func(o *Options) {
		if validSep(sep) {
			o.RankSep = sep
		}
	}
}

// WithNodeSep sets the gap between nodes in the same rank. Negative and
// non-finite values are ignored.
func WithNodeSep(sep float64) Option {
	return func(o *Options) {
		if validSep(sep) {
			o.NodeSep = sep
		}
	}
}

// WithSweeps sets the number of barycenter sweeps. Zero keeps the insertion
// order; values above [MaxSweeps] are clamped.
func WithSweeps(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.Sweeps = min(n, MaxSweeps)
		}
	}
}

func validSep(sep float64) bool {
	return sep >= 0 && !math.IsInf(sep, 0)
}

// WithTranspose enables or disables adjacent-swap refinement.
func WithTranspose(enabled bool) Option {
	return func(o *Options) { o.Transpose = enabled }
}

// WithOptions applies the non-zero fields of opts, e.g. values loaded from a
// config file. Transpose is left unchanged.
func WithOptions(opts Options) Option {
	return func(o *Options) {
		if opts.Direction != "" {
			o.Direction = opts.Direction
		}
		if opts.RankSep > 0 && validSep(opts.RankSep) {
			o.RankSep = opts.RankSep
		}
		if opts.NodeSep > 0 && validSep(opts.NodeSep) {
			o.NodeSep = opts.NodeSep
		}
		if opts.Sweeps > 0 {
			o.Sweeps = min(opts.Sweeps, MaxSweeps)
		}
	}
}
