package engine

import v3 "github.com/deadsy/sdfx/vec/v3"

// RotationType is an axis permutation of an item's (W, H, D) size.
type RotationType int

const (
	RotationWHD RotationType = iota
	RotationHWD
	RotationHDW
	RotationDHW
	RotationDWH
	RotationWDH
)

// AllRotations lists every permutation.
var AllRotations = []RotationType{RotationWHD, RotationHWD, RotationHDW, RotationDHW, RotationDWH, RotationWDH}

func (r RotationType) Valid() bool {
	return r >= RotationWHD && r <= RotationWDH
}

// Apply returns size permuted by r.
func (r RotationType) Apply(size v3.Vec) v3.Vec {
	w, h, d := size.X, size.Y, size.Z
	switch r {
	case RotationHWD:
		return v3.Vec{X: h, Y: w, Z: d}
	case RotationHDW:
		return v3.Vec{X: h, Y: d, Z: w}
	case RotationDHW:
		return v3.Vec{X: d, Y: h, Z: w}
	case RotationDWH:
		return v3.Vec{X: d, Y: w, Z: h}
	case RotationWDH:
		return v3.Vec{X: w, Y: d, Z: h}
	default:
		return size
	}
}
