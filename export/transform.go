// Package export turns plans into robot-facing placement records and the
// artifacts built from them: the persisted JSON stack, an Excel sheet and
// an HTML layer report.
package export

import (
	"math"

	"autoPallet/models"
	"autoPallet/stacker"
)

// Transform maps every placed box to a BoxPlacement. It is a pure function
// of the plan.
//
// The rotated flag compares the box's rounded footprint with the SKU's
// (length, width), and rotation is the layer parity. The two are computed
// independently; Disagreements reports every box where they differ.
func Transform(plan models.Plan) []models.BoxPlacement {
	out := make([]models.BoxPlacement, 0, len(plan.Boxes))
	canonL, canonW := canonicalFootprint(plan)
	for i, b := range plan.Boxes {
		l, w, h := b.Dims.Length, b.Dims.Width, b.Dims.Height
		x, y, z := b.Position.X, b.Position.Y, b.Position.Z

		layerID := stacker.LayerOf(z, plan.LayerHeight)
		out = append(out, models.BoxPlacement{
			BoxID:       i,
			Dimensions:  models.Dims{Length: l, Width: w, Height: h},
			GraspOffset: models.GraspOffset{},
			GraspPoint:  models.GraspPoint{X: x + l/2, Y: y + w/2, Z: z + h/2},
			LayerID:     layerID,
			Rotated:     math.Round(l) != canonL || math.Round(w) != canonW,
			Rotation:    layerID % 2,
		})
	}
	return out
}

// Response builds the service response for a plan.
func Response(plan models.Plan) models.PalletizationResponse {
	return models.PalletizationResponse{
		PalletStack: Transform(plan),
		ItemCount:   plan.ItemCount(),
		Utilization: plan.Utilization(),
	}
}

// EmptyResponse is the answer when there is nothing to stack.
func EmptyResponse() models.PalletizationResponse {
	return models.PalletizationResponse{PalletStack: []models.BoxPlacement{}}
}

// Disagreements returns the box ids whose rotated flag does not match their
// rotation id.
func Disagreements(records []models.BoxPlacement) []int {
	var ids []int
	for _, r := range records {
		if r.Rotated != (r.Rotation == 1) {
			ids = append(ids, r.BoxID)
		}
	}
	return ids
}

// canonicalFootprint is the SKU's own (length, width), rounded.
func canonicalFootprint(plan models.Plan) (float64, float64) {
	s := plan.BoxType.Size
	return math.Round(s.Length), math.Round(s.Width)
}
