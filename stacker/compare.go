package stacker

import (
	"context"
	"strconv"
	"time"

	"autoPallet/models"
)

// DefaultCompareAttempts bounds probes when a single orientation fills the
// whole pallet.
const DefaultCompareAttempts = 1000

// OrientationReport is the outcome of filling the pallet with one
// orientation only.
type OrientationReport struct {
	Orientation models.Orientation `json:"orientation"`
	Count       int                `json:"count"`
	Utilization float64            `json:"utilization"`
	Elapsed     time.Duration      `json:"elapsed"`
	Reason      StopReason         `json:"reason"`
}

// CompareOrientations fills the full pallet with each planar orientation in
// turn and reports how many boxes each one takes. The best report is the
// one with the highest count; ties keep the first orientation.
func CompareOrientations(ctx context.Context, c models.Container, bt models.BoxType, opts Options, maxAttempts int) ([]OrientationReport, OrientationReport, error) {
	if err := c.Validate(); err != nil {
		return nil, OrientationReport{}, err
	}
	if err := bt.Validate(); err != nil {
		return nil, OrientationReport{}, err
	}
	if err := checkRounded(c, bt, opts.EngineConfig.NumberOfDecimals); err != nil {
		return nil, OrientationReport{}, err
	}

	if maxAttempts <= 0 {
		maxAttempts = DefaultCompareAttempts
	}
	a := NewAssembler(opts)
	filler := &Filler{Engine: a.opts.Engine, Config: a.opts.EngineConfig, MaxItems: maxAttempts, Logger: a.logger}

	var reports []OrientationReport
	var best OrientationReport
	for _, o := range CrossLayerOrientations(roundDims(bt.Size, a.opts.EngineConfig.NumberOfDecimals)) {
		start := time.Now()
		fill := filler.Fill(ctx, Probe{
			Name:        "Pallet-Rotation-" + strconv.Itoa(o.ID),
			Space:       c.Dims,
			MaxWeight:   c.MaxWeight,
			Orientation: o,
			UnitWeight:  bt.Weight,
			Budget:      c.MaxWeight,
		})

		var util float64
		if cv := c.Volume(); cv > 0 {
			util = models.Round(float64(fill.Count)*o.Dims.Volume()/cv*100, 2)
		}
		r := OrientationReport{
			Orientation: o,
			Count:       fill.Count,
			Utilization: util,
			Elapsed:     time.Since(start).Round(time.Millisecond),
			Reason:      fill.Reason,
		}
		a.logger.Info("orientation filled", "rotation", o.ID, "dims", o.Dims, "items", r.Count, "utilization", r.Utilization)

		if len(reports) == 0 || r.Count > best.Count {
			best = r
		}
		reports = append(reports, r)
	}
	return reports, best, nil
}
