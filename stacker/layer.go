package stacker

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"autoPallet/engine"
	"autoPallet/models"
)

// DefaultMaxItemsPerLayer bounds probe attempts per layer. It is a tunable
// guard against a delayed infeasibility signal, not a derived limit.
const DefaultMaxItemsPerLayer = 500

// Probe describes one fill: a sub-container and the box to repeat in it.
type Probe struct {
	Name        string
	Space       models.Dims
	MaxWeight   float64
	Orientation models.Orientation
	UnitWeight  float64
	FirstIndex  int

	// Budget is the weight still available on the pallet.
	Budget float64
}

// StopReason records why a fill ended.
type StopReason string

const (
	StopUnfit       StopReason = "unfit"
	StopCapReached  StopReason = "cap_reached"
	StopWeight      StopReason = "weight_budget"
	StopEngineError StopReason = "engine_error"
)

// FillResult is the committed content of one fill, in local coordinates.
type FillResult struct {
	Boxes     []models.PlacedBox
	Count     int
	Weight    float64
	Reason    StopReason
	Gravity   models.Position
	EngineErr error
}

// Filler probes the engine one box at a time until it refuses.
type Filler struct {
	Engine   engine.Engine
	Config   engine.Config
	MaxItems int
	Logger   *log.Logger
}

// Fill stages one more box per probe and re-solves the whole set. The first
// rejection closes the fill; the rejected candidate is discarded.
func (f *Filler) Fill(ctx context.Context, p Probe) FillResult {
	logger := f.Logger
	if logger == nil {
		logger = log.Default()
	}
	maxItems := f.MaxItems
	if maxItems <= 0 {
		maxItems = DefaultMaxItemsPerLayer
	}

	bin := engine.NewBin(p.Name, toVec(p.Space), p.MaxWeight)
	var out FillResult
	out.Reason = StopCapReached

	for attempt := 0; attempt < maxItems; attempt++ {
		if out.Weight+p.UnitWeight > p.Budget {
			out.Reason = StopWeight
			break
		}

		index := p.FirstIndex + out.Count
		candidate := bin.Stage(engine.ItemSpec{
			Name:   boxName(index),
			Size:   toVec(p.Orientation.Dims),
			Weight: p.UnitWeight,
			Level:  1,
		})

		res, err := f.Engine.Solve(ctx, []engine.Bin{candidate}, f.Config)
		if err != nil {
			logger.Warn("packing error", "bin", p.Name, "item", index, "err", err)
			out.Reason = StopEngineError
			out.EngineErr = err
			break
		}
		if len(res.Unfit) > 0 {
			out.Reason = StopUnfit
			break
		}

		bin = candidate
		out.Count++
		out.Weight += p.UnitWeight
		out.Boxes, out.Gravity = committed(candidate, res, p.Orientation)
	}

	if out.Reason == StopCapReached {
		logger.Info("safety cap reached", "bin", p.Name, "cap", maxItems)
	}
	return out
}

// committed maps the engine's view of the staged set to PlacedBox values,
// in staging order.
func committed(bin engine.Bin, res engine.Result, o models.Orientation) ([]models.PlacedBox, models.Position) {
	placed := res.Placed()
	staged := bin.Staged()
	boxes := make([]models.PlacedBox, 0, len(staged))
	for i, it := range staged {
		pl, ok := placed[it.Name]
		if !ok {
			continue
		}
		boxes = append(boxes, models.PlacedBox{
			Index:      indexOf(it.Name, i),
			Name:       it.Name,
			Dims:       fromVec(pl.Dims),
			Position:   posFromVec(pl.Position),
			Weight:     it.Weight,
			RotationID: o.ID,
		})
	}
	var g models.Position
	if len(res.Bins) > 0 {
		g = posFromVec(res.Bins[0].Gravity)
	}
	return boxes, g
}

func boxName(index int) string {
	return fmt.Sprintf("Box-%d", index)
}

func indexOf(name string, fallback int) int {
	var i int
	if _, err := fmt.Sscanf(name, "Box-%d", &i); err != nil {
		return fallback
	}
	return i
}

func toVec(d models.Dims) v3.Vec {
	return v3.Vec{X: d.Length, Y: d.Width, Z: d.Height}
}

func fromVec(v v3.Vec) models.Dims {
	return models.Dims{Length: v.X, Width: v.Y, Height: v.Z}
}

func posFromVec(v v3.Vec) models.Position {
	return models.Position{X: v.X, Y: v.Y, Z: v.Z}
}
