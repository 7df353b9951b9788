package stacker

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"autoPallet/engine"
)

const finalBin = "Pallet-CrossLayer"

// stubEngine accepts the first capacity(bin) staged items of a bin and
// rejects the rest. Final solves echo each item's hint.
type stubEngine struct {
	capacity    func(b engine.Bin) int
	failOn      map[int]error
	finalErr    error
	finalReject map[string]bool

	calls  int
	staged []int
}

func (s *stubEngine) Solve(_ context.Context, bins []engine.Bin, _ engine.Config) (engine.Result, error) {
	s.calls++
	if err, ok := s.failOn[s.calls]; ok {
		return engine.Result{}, err
	}
	b := bins[0]
	items := b.Staged()
	s.staged = append(s.staged, len(items))
	res := engine.Result{Bins: []engine.BinResult{{Name: b.Name}}}

	if b.Name == finalBin {
		if s.finalErr != nil {
			return engine.Result{}, s.finalErr
		}
		for _, it := range items {
			if s.finalReject[it.Name] {
				res.Unfit = append(res.Unfit, it)
				continue
			}
			res.Bins[0].Placed = append(res.Bins[0].Placed, engine.Placement{Item: it, Position: *it.Hint, Dims: it.Size})
		}
		return res, nil
	}

	limit := s.capacity(b)
	for i, it := range items {
		if i >= limit {
			res.Unfit = append(res.Unfit, it)
			continue
		}
		pos := v3.Vec{X: float64(i) * it.Size.X}
		res.Bins[0].Placed = append(res.Bins[0].Placed, engine.Placement{Item: it, Position: pos, Dims: it.Size})
	}
	return res, nil
}

func fixedCapacity(n int) func(engine.Bin) int {
	return func(engine.Bin) int { return n }
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}
