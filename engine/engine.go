// Package engine is the placement engine the stacker drives: given bins and
// staged items it decides where each item goes, or reports it unfit.
//
// Bins are value snapshots. Staging an item returns a new Bin and every
// Solve call re-evaluates the whole staged set, so repeated probes with one
// extra item each are independent and idempotent.
package engine

import (
	"context"
	"time"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"autoPallet/errs"
)

// Engine solves a packing problem over a set of bins.
type Engine interface {
	Solve(ctx context.Context, bins []Bin, cfg Config) (Result, error)
}

// Config tunes a solve.
type Config struct {
	// BiggerFirst orders staged items by volume, largest first.
	BiggerFirst bool

	// DistributeItems offers items a bin could not hold to the next bin.
	DistributeItems bool

	// FixPoint drops a candidate position onto the highest surface below it.
	FixPoint bool

	// CheckStable requires SupportSurfaceRatio of the bottom face, or all
	// four bottom corners, to rest on something.
	CheckStable         bool
	SupportSurfaceRatio float64

	// NumberOfDecimals is the rounding precision for positions.
	NumberOfDecimals int

	// Timeout bounds one Solve call; zero means no bound.
	Timeout time.Duration
}

// DefaultConfig is the profile the palletizer runs with.
func DefaultConfig() Config {
	return Config{
		BiggerFirst:         true,
		DistributeItems:     true,
		FixPoint:            true,
		CheckStable:         true,
		SupportSurfaceRatio: 0.75,
		NumberOfDecimals:    0,
	}
}

// ItemSpec is one candidate box.
type ItemSpec struct {
	Name   string
	Size   v3.Vec
	Weight float64

	// Rotations lists allowed orientations; empty means only RotationWHD.
	Rotations []RotationType

	// Level groups items; lower levels are packed first.
	Level int

	// Hint is tried before any other position when set.
	Hint *v3.Vec
}

func (it ItemSpec) rotations() []RotationType {
	if len(it.Rotations) == 0 {
		return []RotationType{RotationWHD}
	}
	return it.Rotations
}

func (it ItemSpec) volume() float64 {
	return it.Size.X * it.Size.Y * it.Size.Z
}

// Bin is a container snapshot with its staged items.
type Bin struct {
	Name      string
	Size      v3.Vec
	MaxWeight float64
	items     []ItemSpec
}

// NewBin creates an empty bin.
func NewBin(name string, size v3.Vec, maxWeight float64) Bin {
	return Bin{Name: name, Size: size, MaxWeight: maxWeight}
}

// Stage returns a copy of b with items queued for the next solve.
func (b Bin) Stage(items ...ItemSpec) Bin {
	staged := make([]ItemSpec, 0, len(b.items)+len(items))
	staged = append(staged, b.items...)
	staged = append(staged, items...)
	b.items = staged
	return b
}

// Staged returns the queued items in staging order.
func (b Bin) Staged() []ItemSpec {
	out := make([]ItemSpec, len(b.items))
	copy(out, b.items)
	return out
}

func (b Bin) validate() error {
	if b.Size.X <= 0 || b.Size.Y <= 0 || b.Size.Z <= 0 {
		return errs.Invalid("bin "+b.Name, "size must be positive, got %v", b.Size)
	}
	if b.MaxWeight < 0 {
		return errs.Invalid("bin "+b.Name, "max weight must not be negative")
	}
	for _, it := range b.items {
		if it.Size.X <= 0 || it.Size.Y <= 0 || it.Size.Z <= 0 {
			return errs.Invalid("item "+it.Name, "size must be positive, got %v", it.Size)
		}
		for _, r := range it.Rotations {
			if !r.Valid() {
				return errs.Invalid("item "+it.Name, "unknown rotation %d", r)
			}
		}
	}
	return nil
}

// Placement is an accepted item.
type Placement struct {
	Item     ItemSpec
	Position v3.Vec
	Rotation RotationType
	Dims     v3.Vec
}

// Box returns the placed volume.
func (p Placement) Box() sdf.Box3 {
	return sdf.Box3{Min: p.Position, Max: p.Position.Add(p.Dims)}
}

// BinResult is the outcome for one bin.
type BinResult struct {
	Name    string
	Placed  []Placement
	Weight  float64
	Gravity v3.Vec
}

// Result is the outcome of a solve.
type Result struct {
	Bins  []BinResult
	Unfit []ItemSpec
}

// Placed returns every placement across bins, keyed by item name.
func (r Result) Placed() map[string]Placement {
	out := make(map[string]Placement)
	for _, b := range r.Bins {
		for _, p := range b.Placed {
			out[p.Item.Name] = p
		}
	}
	return out
}

// IsUnfit reports whether the named item was rejected.
func (r Result) IsUnfit(name string) bool {
	for _, it := range r.Unfit {
		if it.Name == name {
			return true
		}
	}
	return false
}
