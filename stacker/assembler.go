// Package stacker builds cross-layer stacking plans for a single SKU.
//
// The run is a greedy, strictly sequential loop: the Scheduler picks the
// orientation for layer i by parity, a Filler probes the placement engine
// one box at a time inside a one-layer sub-container, and the Assembler
// lifts each closed layer by the stacked height before a final validation
// solve over the whole pallet.
//
// Engine failures never abort a run. A failed probe closes its layer with
// what was already committed; a failed final solve leaves the assembled
// layers unvalidated. The worst case is an empty Plan.
package stacker

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"autoPallet/engine"
	"autoPallet/models"
)

// Options configures an Assembler.
type Options struct {
	Engine           engine.Engine
	EngineConfig     engine.Config
	MaxItemsPerLayer int
	Logger           *log.Logger
}

// DefaultOptions uses the in-process packer with the palletizer profile.
func DefaultOptions() Options {
	return Options{
		Engine:           engine.NewPacker(),
		EngineConfig:     engine.DefaultConfig(),
		MaxItemsPerLayer: DefaultMaxItemsPerLayer,
	}
}

// Assembler owns one run's in-progress plan.
type Assembler struct {
	opts   Options
	filler *Filler
	logger *log.Logger
}

func NewAssembler(opts Options) *Assembler {
	if opts.Engine == nil {
		opts.Engine = engine.NewPacker()
	}
	if opts.MaxItemsPerLayer <= 0 {
		opts.MaxItemsPerLayer = DefaultMaxItemsPerLayer
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Assembler{
		opts:   opts,
		logger: logger,
		filler: &Filler{
			Engine:   opts.Engine,
			Config:   opts.EngineConfig,
			MaxItems: opts.MaxItemsPerLayer,
			Logger:   logger,
		},
	}
}

// Palletize validates its inputs and runs one assembly. Only precondition
// violations are returned as errors.
func Palletize(ctx context.Context, c models.Container, bt models.BoxType, opts Options) (models.Plan, error) {
	if err := c.Validate(); err != nil {
		return models.Plan{}, err
	}
	if err := bt.Validate(); err != nil {
		return models.Plan{}, err
	}
	if err := checkRounded(c, bt, opts.EngineConfig.NumberOfDecimals); err != nil {
		return models.Plan{}, err
	}
	return NewAssembler(opts).Assemble(ctx, c, bt), nil
}

// Assemble stacks layers while another full layer fits under the pallet
// height, stopping at the first layer that takes no box.
func (a *Assembler) Assemble(ctx context.Context, c models.Container, bt models.BoxType) models.Plan {
	start := time.Now()
	sched := NewScheduler(models.BoxType{Size: roundDims(bt.Size, a.opts.EngineConfig.NumberOfDecimals)})
	layerHeight := sched.LayerHeight()

	plan := models.Plan{
		Container:    c,
		BoxType:      bt,
		LayerHeight:  layerHeight,
		Orientations: sched.Orientations(),
	}
	if c.MaxWeight <= 0 {
		a.logger.Info("pallet has no weight capacity", "max_weight", c.MaxWeight)
		return plan
	}

	var boxes []models.PlacedBox
	var weight float64
	for layer := 0; float64(layer+1)*layerHeight <= c.Height+1e-9; layer++ {
		o := sched.ForLayer(layer)
		fill := a.filler.Fill(ctx, Probe{
			Name:        layerName(layer),
			Space:       models.Dims{Length: c.Length, Width: c.Width, Height: layerHeight},
			MaxWeight:   c.MaxWeight,
			Orientation: o,
			UnitWeight:  bt.Weight,
			Budget:      c.MaxWeight - weight,
			FirstIndex:  len(boxes),
		})
		if fill.Count == 0 {
			a.logger.Debug("layer took no box", "layer", layer, "reason", fill.Reason)
			break
		}

		// Offsets are exact multiples of one layer height.
		cumulative := float64(layer) * layerHeight
		for _, b := range fill.Boxes {
			b.Position.Z += cumulative
			b.LayerID = layer
			boxes = append(boxes, b)
		}
		weight += fill.Weight
		a.logger.Debug("layer closed", "layer", layer, "rotation", o.ID, "boxes", fill.Count, "reason", fill.Reason)
	}

	plan.Boxes = boxes
	a.validate(ctx, &plan)

	a.logger.Info("palletized",
		"items", plan.ItemCount(),
		"layers", len(plan.LayerCounts()),
		"utilization", plan.Utilization(),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return plan
}

// validate re-solves the whole stack against the full pallet. Boxes the
// engine rejects, or moves off their layer, are dropped from the plan.
func (a *Assembler) validate(ctx context.Context, plan *models.Plan) {
	if len(plan.Boxes) == 0 {
		return
	}
	c := plan.Container
	bin := engine.NewBin("Pallet-CrossLayer", toVec(c.Dims), c.MaxWeight)
	for _, b := range plan.Boxes {
		hint := v3.Vec{X: b.Position.X, Y: b.Position.Y, Z: b.Position.Z}
		bin = bin.Stage(engine.ItemSpec{
			Name:   b.Name,
			Size:   toVec(b.Dims),
			Weight: b.Weight,
			Level:  1,
			Hint:   &hint,
		})
	}

	res, err := a.opts.Engine.Solve(ctx, []engine.Bin{bin}, a.opts.EngineConfig)
	if err != nil {
		a.logger.Error("final packing error", "err", err)
		return
	}

	placed := res.Placed()
	kept := make([]models.PlacedBox, 0, len(plan.Boxes))
	for _, b := range plan.Boxes {
		p, ok := placed[b.Name]
		if !ok {
			plan.Unfit = append(plan.Unfit, b)
			continue
		}
		b.Position = posFromVec(p.Position)
		b.Dims = fromVec(p.Dims)
		if LayerOf(b.Position.Z, plan.LayerHeight) != b.LayerID || b.Top() > c.Height+1e-9 {
			a.logger.Warn("box moved off its layer", "box", b.Name, "layer", b.LayerID, "z", b.Position.Z)
			plan.Unfit = append(plan.Unfit, b)
			continue
		}
		kept = append(kept, b)
	}
	if len(plan.Unfit) > 0 {
		a.logger.Warn("final pass rejected boxes", "count", len(plan.Unfit))
	}

	plan.Boxes = kept
	plan.Validated = true
	if len(res.Bins) > 0 {
		plan.GravityCenter = posFromVec(res.Bins[0].Gravity)
	}
}

// LayerOf returns floor(z / layerHeight), tolerant of float noise.
func LayerOf(z, layerHeight float64) int {
	if layerHeight <= 0 {
		return 0
	}
	return int(math.Floor(z/layerHeight + 1e-9))
}

func layerName(i int) string {
	return "Layer-" + strconv.Itoa(i)
}
