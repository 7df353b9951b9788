package stacker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoPallet/engine"
	"autoPallet/errs"
	"autoPallet/models"
)

func examplePallet(t *testing.T) (models.Container, models.BoxType) {
	t.Helper()
	c, err := models.NewContainer(1000, 1200, 1800, 5000)
	require.NoError(t, err)
	bt, err := models.NewBoxType("Box", 300, 200, 150, 5)
	require.NoError(t, err)
	return c, bt
}

func stubOptions(e engine.Engine) Options {
	return Options{Engine: e, EngineConfig: engine.DefaultConfig(), MaxItemsPerLayer: 500, Logger: quietLogger()}
}

func TestAssemble_StopsAtFirstEmptyLayer(t *testing.T) {
	c, bt := examplePallet(t)
	stub := &stubEngine{capacity: func(b engine.Bin) int {
		if b.Name == "Layer-2" {
			return 0
		}
		return 3
	}}

	plan := NewAssembler(stubOptions(stub)).Assemble(context.Background(), c, bt)

	require.Len(t, plan.Boxes, 6)
	assert.True(t, plan.Validated)
	assert.Equal(t, []int{3, 3}, plan.LayerCounts())
	for i, b := range plan.Boxes {
		layer := i / 3
		assert.Equal(t, i, b.Index)
		assert.Equal(t, layer, b.LayerID)
		assert.Equal(t, layer%2, b.RotationID)
		assert.Equal(t, float64(layer)*200, b.Position.Z)
	}
}

func TestAssemble_LayerCountBoundedByHeight(t *testing.T) {
	c, bt := examplePallet(t)
	stub := &stubEngine{capacity: fixedCapacity(1)}

	plan := NewAssembler(stubOptions(stub)).Assemble(context.Background(), c, bt)

	assert.Len(t, plan.Boxes, 9)
	for _, b := range plan.Boxes {
		assert.LessOrEqual(t, b.Top(), c.Height)
	}
}

func TestAssemble_FinalPassFailureKeepsLayers(t *testing.T) {
	c, bt := examplePallet(t)
	stub := &stubEngine{capacity: fixedCapacity(2), finalErr: errors.New("solver crashed")}

	plan := NewAssembler(stubOptions(stub)).Assemble(context.Background(), c, bt)

	assert.Len(t, plan.Boxes, 18)
	assert.False(t, plan.Validated)
}

func TestAssemble_FinalPassUnfitExcluded(t *testing.T) {
	c, bt := examplePallet(t)
	stub := &stubEngine{capacity: fixedCapacity(2), finalReject: map[string]bool{"Box-0": true, "Box-5": true}}

	plan := NewAssembler(stubOptions(stub)).Assemble(context.Background(), c, bt)

	assert.Len(t, plan.Boxes, 16)
	require.Len(t, plan.Unfit, 2)
	assert.Equal(t, "Box-0", plan.Unfit[0].Name)
	for _, b := range plan.Boxes {
		assert.NotEqual(t, "Box-5", b.Name)
	}
}

func TestAssemble_EngineAlwaysFails(t *testing.T) {
	c, bt := examplePallet(t)
	stub := &stubEngine{capacity: fixedCapacity(2), failOn: map[int]error{1: errors.New("down")}}

	plan := NewAssembler(stubOptions(stub)).Assemble(context.Background(), c, bt)

	assert.Empty(t, plan.Boxes)
	assert.Zero(t, plan.Utilization())
}

func TestAssemble_WeightBudgetAcrossLayers(t *testing.T) {
	c, bt := examplePallet(t)
	c.MaxWeight = 23
	stub := &stubEngine{capacity: fixedCapacity(2)}

	plan := NewAssembler(stubOptions(stub)).Assemble(context.Background(), c, bt)

	// 4 boxes of 5 fit under 23; the third layer has no budget left for one more.
	assert.Len(t, plan.Boxes, 4)
	assert.LessOrEqual(t, plan.TotalWeight(), c.MaxWeight)
}

func TestPalletize_CrossLayerExample(t *testing.T) {
	c, bt := examplePallet(t)
	opts := DefaultOptions()
	opts.Logger = quietLogger()

	plan, err := Palletize(context.Background(), c, bt, opts)
	require.NoError(t, err)

	require.NotEmpty(t, plan.Boxes)
	assert.True(t, plan.Validated)
	assert.Empty(t, plan.Unfit)
	assert.Equal(t, 200.0, plan.LayerHeight)

	counts := plan.LayerCounts()
	require.Len(t, counts, 9)
	assert.Equal(t, 24, counts[0])
	assert.Equal(t, 24, counts[1])
	assert.Equal(t, 216, plan.ItemCount())

	for _, b := range plan.Boxes {
		want := plan.Orientations[b.LayerID%2].Dims
		assert.Equal(t, want, b.Dims, "box %s", b.Name)
		assert.Equal(t, LayerOf(b.Position.Z, plan.LayerHeight)%2, b.RotationID)
		assert.GreaterOrEqual(t, b.Position.Z, 0.0)
		assert.LessOrEqual(t, b.Top(), c.Height)
	}
	assert.Equal(t, models.Dims{Length: 300, Width: 150, Height: 200}, plan.Boxes[0].Dims)
	assert.Equal(t, models.Dims{Length: 150, Width: 300, Height: 200}, plan.Boxes[counts[0]].Dims)

	assertDisjoint(t, plan.Boxes)
	assert.LessOrEqual(t, plan.TotalWeight(), c.MaxWeight)

	boxVolume := bt.Size.Volume()
	assert.InDelta(t, models.Round(float64(plan.ItemCount())*boxVolume/c.Volume()*100, 2), plan.Utilization(), 1e-9)
	assert.InDelta(t, 90.0, plan.Utilization(), 1e-9)
}

func TestPalletize_FractionalBoxSize(t *testing.T) {
	tests := []struct {
		name        string
		size        models.Dims
		layerHeight float64
		layers      int
	}{
		{"rounds down", models.Dims{Length: 300.4, Width: 200, Height: 150.4}, 200, 9},
		{"rounds up", models.Dims{Length: 300, Width: 200.5, Height: 150}, 201, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, bt := examplePallet(t)
			bt.Size = tt.size
			opts := DefaultOptions()
			opts.Logger = quietLogger()

			plan, err := Palletize(context.Background(), c, bt, opts)
			require.NoError(t, err)

			assert.True(t, plan.Validated)
			assert.Empty(t, plan.Unfit)
			assert.Equal(t, tt.layerHeight, plan.LayerHeight)
			counts := plan.LayerCounts()
			require.Len(t, counts, tt.layers)
			for i, n := range counts {
				assert.Equal(t, 24, n, "layer %d", i)
			}
			for _, b := range plan.Boxes {
				assert.Equal(t, plan.Orientations[b.LayerID%2].Dims, b.Dims, "box %s", b.Name)
			}
			assertDisjoint(t, plan.Boxes)
		})
	}
}

func TestCompareOrientations_FractionalBoxSize(t *testing.T) {
	c, err := models.NewContainer(600, 450, 200, 5000)
	require.NoError(t, err)
	bt, err := models.NewBoxType("Box", 300.3, 200.2, 150.1, 5)
	require.NoError(t, err)
	opts := DefaultOptions()
	opts.Logger = quietLogger()

	reports, _, err := CompareOrientations(context.Background(), c, bt, opts, 0)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, 6, reports[0].Count)
	assert.Equal(t, models.Dims{Length: 300, Width: 150, Height: 200}, reports[0].Orientation.Dims)
}

func TestPalletize_ContainerShorterThanLayer(t *testing.T) {
	c, bt := examplePallet(t)
	c.Height = 150
	opts := DefaultOptions()
	opts.Logger = quietLogger()

	plan, err := Palletize(context.Background(), c, bt, opts)
	require.NoError(t, err)
	assert.Empty(t, plan.Boxes)
	assert.Zero(t, plan.Utilization())
}

func TestPalletize_ZeroCapacity(t *testing.T) {
	c, bt := examplePallet(t)
	c.MaxWeight = 0
	stub := &stubEngine{capacity: fixedCapacity(5)}

	plan, err := Palletize(context.Background(), c, bt, stubOptions(stub))
	require.NoError(t, err)
	assert.Empty(t, plan.Boxes)
	assert.Zero(t, stub.calls)
}

func TestPalletize_Preconditions(t *testing.T) {
	good, box := examplePallet(t)
	tests := []struct {
		name string
		c    models.Container
		bt   models.BoxType
	}{
		{"zero pallet length", models.Container{Dims: models.Dims{Width: 1, Height: 1}, MaxWeight: 1}, box},
		{"negative capacity", models.Container{Dims: good.Dims, MaxWeight: -1}, box},
		{"zero box height", good, models.BoxType{Size: models.Dims{Length: 1, Width: 1}, Weight: 1}},
		{"negative box weight", good, models.BoxType{Size: box.Size, Weight: -2}},
		{"box length rounds to zero", good, models.BoxType{Size: models.Dims{Length: 0.4, Width: 200, Height: 150}, Weight: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubEngine{capacity: fixedCapacity(1)}
			_, err := Palletize(context.Background(), tt.c, tt.bt, stubOptions(stub))
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.CodeInvalidInput))
			assert.Zero(t, stub.calls)
		})
	}
}

func TestCompareOrientations(t *testing.T) {
	c, err := models.NewContainer(600, 450, 200, 5000)
	require.NoError(t, err)
	_, bt := examplePallet(t)
	opts := DefaultOptions()
	opts.Logger = quietLogger()

	reports, best, err := CompareOrientations(context.Background(), c, bt, opts, 0)
	require.NoError(t, err)

	require.Len(t, reports, 2)
	assert.Equal(t, 6, reports[0].Count)
	assert.Equal(t, 4, reports[1].Count)
	assert.InDelta(t, 100.0, reports[0].Utilization, 1e-9)
	assert.InDelta(t, 66.67, reports[1].Utilization, 1e-9)
	assert.Equal(t, 0, best.Orientation.ID)
}

func assertDisjoint(t *testing.T, boxes []models.PlacedBox) {
	t.Helper()
	for i := range boxes {
		for j := i + 1; j < len(boxes); j++ {
			a, b := boxes[i], boxes[j]
			overlap := a.Position.X < b.Position.X+b.Dims.Length && b.Position.X < a.Position.X+a.Dims.Length &&
				a.Position.Y < b.Position.Y+b.Dims.Width && b.Position.Y < a.Position.Y+a.Dims.Width &&
				a.Position.Z < b.Top() && b.Position.Z < a.Top()
			assert.False(t, overlap, "%s overlaps %s", a.Name, b.Name)
		}
	}
}
