package stacker

import (
	"errors"

	"autoPallet/models"
)

// CrossLayerOrientations returns the two planar orientations of a box.
// The size is read as (w, h, d) with h as the up axis; the orientations are
// (w, d, h) and (d, w, h), so only the horizontal axes are swapped.
func CrossLayerOrientations(size models.Dims) [2]models.Orientation {
	w, h, d := size.Length, size.Width, size.Height
	return [2]models.Orientation{
		{ID: 0, Dims: models.Dims{Length: w, Width: d, Height: h}},
		{ID: 1, Dims: models.Dims{Length: d, Width: w, Height: h}},
	}
}

// Scheduler assigns an orientation to each layer by parity.
type Scheduler struct {
	orientations [2]models.Orientation
	layerHeight  float64
}

// NewScheduler fixes the layer height from orientation 0 for the whole run.
// Both orientations share the up axis, so the height holds for every layer.
func NewScheduler(bt models.BoxType) Scheduler {
	o := CrossLayerOrientations(bt.Size)
	return Scheduler{orientations: o, layerHeight: o[0].Dims.Height}
}

func (s Scheduler) ForLayer(i int) models.Orientation {
	return s.orientations[i%2]
}

func (s Scheduler) LayerHeight() float64 {
	return s.layerHeight
}

func (s Scheduler) Orientations() []models.Orientation {
	return s.orientations[:]
}

// roundDims rounds every axis to the engine's precision. Layer heights and
// orientations are derived from the rounded size so they match what the
// engine places.
func roundDims(d models.Dims, decimals int) models.Dims {
	return models.Dims{
		Length: models.Round(d.Length, decimals),
		Width:  models.Round(d.Width, decimals),
		Height: models.Round(d.Height, decimals),
	}
}

// checkRounded rejects sizes that vanish once rounded.
func checkRounded(c models.Container, bt models.BoxType, decimals int) error {
	return errors.Join(
		roundDims(c.Dims, decimals).Validate("pallet"),
		roundDims(bt.Size, decimals).Validate("box"),
	)
}
