package engine

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// eps absorbs float noise in contact tests; boxes that merely touch do not overlap.
const eps = 1e-6

func overlaps(a, b sdf.Box3) bool {
	return a.Min.X < b.Max.X-eps && b.Min.X < a.Max.X-eps &&
		a.Min.Y < b.Max.Y-eps && b.Min.Y < a.Max.Y-eps &&
		a.Min.Z < b.Max.Z-eps && b.Min.Z < a.Max.Z-eps
}

// footprintOverlap returns the xy intersection area of two boxes.
func footprintOverlap(a, b sdf.Box3) float64 {
	dx := math.Min(a.Max.X, b.Max.X) - math.Max(a.Min.X, b.Min.X)
	dy := math.Min(a.Max.Y, b.Max.Y) - math.Max(a.Min.Y, b.Min.Y)
	if dx <= eps || dy <= eps {
		return 0
	}
	return dx * dy
}

func inside(container v3.Vec, b sdf.Box3) bool {
	return b.Min.X >= -eps && b.Min.Y >= -eps && b.Min.Z >= -eps &&
		b.Max.X <= container.X+eps && b.Max.Y <= container.Y+eps && b.Max.Z <= container.Z+eps
}

// covers reports whether p lies in the half-open volume [Min, Max) of b.
func covers(b sdf.Box3, p v3.Vec) bool {
	return p.X >= b.Min.X-eps && p.X < b.Max.X-eps &&
		p.Y >= b.Min.Y-eps && p.Y < b.Max.Y-eps &&
		p.Z >= b.Min.Z-eps && p.Z < b.Max.Z-eps
}

// coversPoint reports whether (x, y) lies on the top face of b, edges included.
func coversPoint(b sdf.Box3, x, y float64) bool {
	return x >= b.Min.X-eps && x <= b.Max.X+eps && y >= b.Min.Y-eps && y <= b.Max.Y+eps
}

func roundVec(v v3.Vec, decimals int) v3.Vec {
	p := math.Pow(10, float64(decimals))
	return v3.Vec{
		X: math.Round(v.X*p) / p,
		Y: math.Round(v.Y*p) / p,
		Z: math.Round(v.Z*p) / p,
	}
}

func center(b sdf.Box3) v3.Vec {
	return b.Min.Add(b.Max).MulScalar(0.5)
}
