package engine

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"autoPallet/errs"
)

// Packer is the in-process Engine: greedy pivot-point placement with
// gravity drop and support-surface stability checks.
type Packer struct{}

var _ Engine = (*Packer)(nil)

func NewPacker() *Packer {
	return &Packer{}
}

// Solve packs every bin in order. Items a bin cannot hold move on to the
// next bin when DistributeItems is set, otherwise they are unfit.
func (p *Packer) Solve(ctx context.Context, bins []Bin, cfg Config) (Result, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	bins = formatNumbers(bins, cfg.NumberOfDecimals)
	for _, b := range bins {
		if err := b.validate(); err != nil {
			return Result{}, err
		}
	}

	var res Result
	var carry []ItemSpec
	for i, b := range bins {
		items := append(b.Staged(), carry...)
		carry = nil
		sortItems(items, cfg.BiggerFirst)

		bin := newPackBin(b, cfg)
		for _, it := range items {
			if err := ctx.Err(); err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					return Result{}, errs.Wrap(errs.CodeEngineTimeout, err, "solve of %s timed out", b.Name)
				}
				return Result{}, errs.Wrap(errs.CodeEngineFailure, err, "solve of %s aborted", b.Name)
			}
			if bin.insert(it) {
				continue
			}
			if cfg.DistributeItems && i < len(bins)-1 {
				carry = append(carry, it)
			} else {
				res.Unfit = append(res.Unfit, it)
			}
		}
		res.Bins = append(res.Bins, bin.result())
	}
	return res, nil
}

// formatNumbers rounds bin and item sizes to the position precision, so
// boxes placed at rounded positions still tile edge to edge.
func formatNumbers(bins []Bin, decimals int) []Bin {
	out := make([]Bin, len(bins))
	for i, b := range bins {
		b.Size = roundVec(b.Size, decimals)
		items := make([]ItemSpec, len(b.items))
		for j, it := range b.items {
			it.Size = roundVec(it.Size, decimals)
			items[j] = it
		}
		b.items = items
		out[i] = b
	}
	return out
}

func sortItems(items []ItemSpec, biggerFirst bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Level != items[j].Level {
			return items[i].Level < items[j].Level
		}
		if biggerFirst {
			return items[i].volume() > items[j].volume()
		}
		return false
	})
}

// ========== Pivot 算法 ==========

type packBin struct {
	bin    Bin
	cfg    Config
	placed []Placement
	boxes  []sdf.Box3
	pivots []v3.Vec
	weight float64
}

func newPackBin(b Bin, cfg Config) *packBin {
	return &packBin{bin: b, cfg: cfg, pivots: []v3.Vec{{}}}
}

// insert places it at its hint if possible, otherwise at the best-scoring
// pivot: lowest z, then lowest y, then lowest x.
func (pb *packBin) insert(it ItemSpec) bool {
	if pb.weight+it.Weight > pb.bin.MaxWeight+eps {
		return false
	}

	if it.Hint != nil {
		for _, r := range it.rotations() {
			if pos, ok := pb.fits(*it.Hint, r.Apply(it.Size)); ok {
				pb.place(it, pos, r)
				return true
			}
		}
	}

	pivots := make([]v3.Vec, len(pb.pivots))
	copy(pivots, pb.pivots)
	sort.Slice(pivots, func(i, j int) bool { return pb.score(pivots[i]) < pb.score(pivots[j]) })

	bestScore := math.MaxFloat64
	var bestPos v3.Vec
	var bestRot RotationType
	for _, pivot := range pivots {
		if pb.score(pivot) >= bestScore {
			break
		}
		for _, r := range it.rotations() {
			pos, ok := pb.fits(pivot, r.Apply(it.Size))
			if !ok {
				continue
			}
			if score := pb.score(pos); score < bestScore {
				bestScore = score
				bestPos = pos
				bestRot = r
			}
		}
	}

	if bestScore == math.MaxFloat64 {
		return false
	}
	pb.place(it, bestPos, bestRot)
	return true
}

func (pb *packBin) score(pos v3.Vec) float64 {
	size := pb.bin.Size
	return pos.Z*size.X*size.Y + pos.Y*size.X + pos.X
}

// updatePivots drops pivots the new box covers and adds its +x, +y and +z
// corners unless another box already covers them.
func (pb *packBin) updatePivots(b sdf.Box3) {
	kept := pb.pivots[:0]
	for _, p := range pb.pivots {
		if !covers(b, p) {
			kept = append(kept, p)
		}
	}
	pb.pivots = kept

	corners := []v3.Vec{
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
	}
next:
	for _, c := range corners {
		if c.X >= pb.bin.Size.X-eps || c.Y >= pb.bin.Size.Y-eps || c.Z >= pb.bin.Size.Z-eps {
			continue
		}
		for _, p := range pb.pivots {
			if p == c {
				continue next
			}
		}
		for _, other := range pb.boxes {
			if covers(other, c) {
				continue next
			}
		}
		pb.pivots = append(pb.pivots, c)
	}
}

// fits returns the adjusted position if a box of dims can go at pivot.
func (pb *packBin) fits(pivot, dims v3.Vec) (v3.Vec, bool) {
	pos := pivot
	if pb.cfg.FixPoint {
		pos.Z = pb.dropHeight(pos, dims)
	}
	pos = roundVec(pos, pb.cfg.NumberOfDecimals)

	box := sdf.Box3{Min: pos, Max: pos.Add(dims)}
	if !inside(pb.bin.Size, box) {
		return v3.Vec{}, false
	}
	for _, other := range pb.boxes {
		if overlaps(box, other) {
			return v3.Vec{}, false
		}
	}
	if pb.cfg.CheckStable && !pb.stable(box) {
		return v3.Vec{}, false
	}
	return pos, true
}

// dropHeight is the highest top face under the footprint at or below pos.Z.
func (pb *packBin) dropHeight(pos, dims v3.Vec) float64 {
	foot := sdf.Box3{Min: pos, Max: pos.Add(dims)}
	z := 0.0
	for _, other := range pb.boxes {
		if other.Max.Z <= pos.Z+eps && other.Max.Z > z && footprintOverlap(foot, other) > 0 {
			z = other.Max.Z
		}
	}
	return z
}

func (pb *packBin) stable(box sdf.Box3) bool {
	if box.Min.Z <= eps {
		return true
	}
	var support []sdf.Box3
	var area float64
	for _, other := range pb.boxes {
		if math.Abs(other.Max.Z-box.Min.Z) > eps {
			continue
		}
		if a := footprintOverlap(box, other); a > 0 {
			support = append(support, other)
			area += a
		}
	}
	base := (box.Max.X - box.Min.X) * (box.Max.Y - box.Min.Y)
	if base > 0 && area/base >= pb.cfg.SupportSurfaceRatio-eps {
		return true
	}

	corners := [4][2]float64{
		{box.Min.X, box.Min.Y}, {box.Max.X, box.Min.Y},
		{box.Min.X, box.Max.Y}, {box.Max.X, box.Max.Y},
	}
	for _, c := range corners {
		held := false
		for _, s := range support {
			if coversPoint(s, c[0], c[1]) {
				held = true
				break
			}
		}
		if !held {
			return false
		}
	}
	return len(support) > 0
}

func (pb *packBin) place(it ItemSpec, pos v3.Vec, r RotationType) {
	dims := r.Apply(it.Size)
	p := Placement{Item: it, Position: pos, Rotation: r, Dims: dims}
	pb.placed = append(pb.placed, p)
	pb.boxes = append(pb.boxes, p.Box())
	pb.weight += it.Weight
	pb.updatePivots(p.Box())
}

func (pb *packBin) result() BinResult {
	res := BinResult{Name: pb.bin.Name, Placed: pb.placed, Weight: pb.weight}
	if pb.weight > 0 {
		var g v3.Vec
		for i, p := range pb.placed {
			g = g.Add(center(pb.boxes[i]).MulScalar(p.Item.Weight))
		}
		res.Gravity = g.MulScalar(1 / pb.weight)
	}
	return res
}
