package stacker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoPallet/engine"
	"autoPallet/models"
)

func layerProbe() Probe {
	return Probe{
		Name:        "Layer-0",
		Space:       models.Dims{Length: 1000, Width: 1200, Height: 200},
		MaxWeight:   5000,
		Orientation: models.Orientation{ID: 1, Dims: models.Dims{Length: 150, Width: 300, Height: 200}},
		UnitWeight:  5,
		Budget:      5000,
		FirstIndex:  10,
	}
}

func TestCrossLayerOrientations(t *testing.T) {
	o := CrossLayerOrientations(models.Dims{Length: 300, Width: 200, Height: 150})

	assert.Equal(t, models.Dims{Length: 300, Width: 150, Height: 200}, o[0].Dims)
	assert.Equal(t, models.Dims{Length: 150, Width: 300, Height: 200}, o[1].Dims)
	assert.Equal(t, 0, o[0].ID)
	assert.Equal(t, 1, o[1].ID)
}

func TestScheduler_AlternatesByParity(t *testing.T) {
	s := NewScheduler(models.BoxType{Size: models.Dims{Length: 300, Width: 200, Height: 150}})

	assert.Equal(t, 200.0, s.LayerHeight())
	for i := 0; i < 6; i++ {
		o := s.ForLayer(i)
		assert.Equal(t, i%2, o.ID)
		assert.Equal(t, s.LayerHeight(), o.Dims.Height)
	}
}

func TestFiller_StopsAtFirstRejection(t *testing.T) {
	stub := &stubEngine{capacity: fixedCapacity(3)}
	f := &Filler{Engine: stub, Config: engine.DefaultConfig(), MaxItems: 500, Logger: quietLogger()}

	res := f.Fill(context.Background(), layerProbe())

	assert.Equal(t, 3, res.Count)
	assert.Equal(t, StopUnfit, res.Reason)
	assert.Equal(t, 4, stub.calls)
	// Every probe re-solves the whole candidate set.
	assert.Equal(t, []int{1, 2, 3, 4}, stub.staged)

	require.Len(t, res.Boxes, 3)
	for i, b := range res.Boxes {
		assert.Equal(t, 10+i, b.Index)
		assert.Equal(t, 1, b.RotationID)
		assert.Equal(t, models.Dims{Length: 150, Width: 300, Height: 200}, b.Dims)
	}
	assert.InDelta(t, 15.0, res.Weight, 1e-9)
}

func TestFiller_SafetyCap(t *testing.T) {
	stub := &stubEngine{capacity: fixedCapacity(1000)}
	f := &Filler{Engine: stub, Config: engine.DefaultConfig(), MaxItems: 5, Logger: quietLogger()}

	res := f.Fill(context.Background(), layerProbe())

	assert.Equal(t, 5, res.Count)
	assert.Equal(t, StopCapReached, res.Reason)
	assert.Equal(t, 5, stub.calls)
}

func TestFiller_WeightBudgetCheckedBeforeSolve(t *testing.T) {
	stub := &stubEngine{capacity: fixedCapacity(1000)}
	f := &Filler{Engine: stub, Config: engine.DefaultConfig(), MaxItems: 500, Logger: quietLogger()}
	p := layerProbe()
	p.Budget = 12

	res := f.Fill(context.Background(), p)

	assert.Equal(t, 2, res.Count)
	assert.Equal(t, StopWeight, res.Reason)
	assert.Equal(t, 2, stub.calls)
}

func TestFiller_EngineErrorKeepsCommitted(t *testing.T) {
	boom := errors.New("boom")
	stub := &stubEngine{capacity: fixedCapacity(1000), failOn: map[int]error{3: boom}}
	f := &Filler{Engine: stub, Config: engine.DefaultConfig(), MaxItems: 500, Logger: quietLogger()}

	res := f.Fill(context.Background(), layerProbe())

	assert.Equal(t, 2, res.Count)
	assert.Len(t, res.Boxes, 2)
	assert.Equal(t, StopEngineError, res.Reason)
	assert.ErrorIs(t, res.EngineErr, boom)
}

func TestFiller_EmptyLayer(t *testing.T) {
	stub := &stubEngine{capacity: fixedCapacity(0)}
	f := &Filler{Engine: stub, Config: engine.DefaultConfig(), Logger: quietLogger()}

	res := f.Fill(context.Background(), layerProbe())

	assert.Zero(t, res.Count)
	assert.Empty(t, res.Boxes)
	assert.Equal(t, StopUnfit, res.Reason)
}

func TestFiller_WithPacker(t *testing.T) {
	f := &Filler{Engine: engine.NewPacker(), Config: engine.DefaultConfig(), MaxItems: 500, Logger: quietLogger()}
	p := layerProbe()
	p.Orientation = models.Orientation{ID: 0, Dims: models.Dims{Length: 300, Width: 150, Height: 200}}

	res := f.Fill(context.Background(), p)

	assert.Equal(t, 24, res.Count)
	assert.Equal(t, StopUnfit, res.Reason)
	for _, b := range res.Boxes {
		assert.Zero(t, b.Position.Z)
		assert.LessOrEqual(t, b.Position.X+b.Dims.Length, 1000.0)
		assert.LessOrEqual(t, b.Position.Y+b.Dims.Width, 1200.0)
	}
}
