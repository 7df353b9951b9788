package models

import (
	"errors"
	"math"

	"autoPallet/errs"
)

// ====== 基础结构 ======

// Dims holds axis lengths in the pallet frame: Length along x, Width along y,
// Height along z (up).
type Dims struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (d Dims) Volume() float64 {
	return d.Length * d.Width * d.Height
}

// Validate requires every axis to be a positive finite number.
func (d Dims) Validate(prefix string) error {
	return errors.Join(
		positive(prefix+".length", d.Length),
		positive(prefix+".width", d.Width),
		positive(prefix+".height", d.Height),
	)
}

// Position is the lower corner of a placed box.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Container is the pallet volume boxes are stacked into.
type Container struct {
	Dims
	MaxWeight float64 `json:"max_weight"`
}

// NewContainer validates and builds a Container. A zero weight capacity is
// accepted and simply yields an empty plan.
func NewContainer(length, width, height, maxWeight float64) (Container, error) {
	c := Container{Dims: Dims{Length: length, Width: width, Height: height}, MaxWeight: maxWeight}
	if err := c.Validate(); err != nil {
		return Container{}, err
	}
	return c, nil
}

func (c Container) Validate() error {
	return errors.Join(c.Dims.Validate("pallet"), nonNegative("pallet.max_weight", c.MaxWeight))
}

// BoxType is one SKU. Size is given as (length, width, height) with width
// as the fixed up axis, matching how the scheduler derives orientations.
type BoxType struct {
	Name   string  `json:"name,omitempty"`
	Size   Dims    `json:"size"`
	Weight float64 `json:"weight"`
}

func NewBoxType(name string, length, width, height, weight float64) (BoxType, error) {
	bt := BoxType{Name: name, Size: Dims{Length: length, Width: width, Height: height}, Weight: weight}
	if err := bt.Validate(); err != nil {
		return BoxType{}, err
	}
	return bt, nil
}

func (b BoxType) Validate() error {
	return errors.Join(b.Size.Validate("box"), nonNegative("box.weight", b.Weight))
}

// Orientation is one of the two planar orientations a layer may use.
// ID is 0 or 1; Dims are the effective extents in the pallet frame.
type Orientation struct {
	ID   int  `json:"id"`
	Dims Dims `json:"dims"`
}

// ====== 摆放结果 ======

// PlacedBox is a box with its final orientation and lower-corner position.
type PlacedBox struct {
	Index      int      `json:"index"`
	Name       string   `json:"name"`
	Dims       Dims     `json:"dims"`
	Position   Position `json:"position"`
	Weight     float64  `json:"weight"`
	RotationID int      `json:"rotation_id"`
	LayerID    int      `json:"layer_id"`
}

// Top is the z coordinate of the box's upper face.
func (p PlacedBox) Top() float64 {
	return p.Position.Z + p.Dims.Height
}

// Layer is one horizontal slab; box positions are local to the slab.
type Layer struct {
	Index       int
	Orientation Orientation
	Height      float64
	Boxes       []PlacedBox
}

// Plan is the result of one palletization run.
type Plan struct {
	Container     Container     `json:"container"`
	BoxType       BoxType       `json:"box_type"`
	LayerHeight   float64       `json:"layer_height"`
	Orientations  []Orientation `json:"orientations"`
	Boxes         []PlacedBox   `json:"boxes"`
	Unfit         []PlacedBox   `json:"unfit,omitempty"`
	GravityCenter Position      `json:"gravity_center"`
	Validated     bool          `json:"validated"`
}

func (p Plan) ItemCount() int {
	return len(p.Boxes)
}

func (p Plan) PackedVolume() float64 {
	var v float64
	for _, b := range p.Boxes {
		v += b.Dims.Volume()
	}
	return v
}

func (p Plan) TotalWeight() float64 {
	var w float64
	for _, b := range p.Boxes {
		w += b.Weight
	}
	return w
}

// Utilization is packed volume over container volume as a percentage,
// rounded to two decimals.
func (p Plan) Utilization() float64 {
	cv := p.Container.Volume()
	if cv <= 0 || len(p.Boxes) == 0 {
		return 0
	}
	return Round(p.PackedVolume()/cv*100, 2)
}

// LayerCounts returns the number of boxes per layer id.
func (p Plan) LayerCounts() []int {
	var counts []int
	for _, b := range p.Boxes {
		for len(counts) <= b.LayerID {
			counts = append(counts, 0)
		}
		counts[b.LayerID]++
	}
	return counts
}

// Round rounds v to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

func positive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return errs.Invalid(field, "must be positive, got %v", v)
	}
	return nil
}

func nonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return errs.Invalid(field, "must not be negative, got %v", v)
	}
	return nil
}
