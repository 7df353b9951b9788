package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoPallet/errs"
)

func TestNewContainer(t *testing.T) {
	c, err := NewContainer(1000, 1200, 1800, 0)
	require.NoError(t, err)
	assert.Equal(t, 1000*1200*1800.0, c.Volume())

	tests := []struct {
		name              string
		l, w, h, capacity float64
		field             string
	}{
		{"zero length", 0, 1, 1, 1, "pallet.length"},
		{"negative height", 1, 1, -1, 1, "pallet.height"},
		{"nan width", 1, math.NaN(), 1, 1, "pallet.width"},
		{"negative capacity", 1, 1, 1, -5, "pallet.max_weight"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewContainer(tt.l, tt.w, tt.h, tt.capacity)
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.CodeInvalidInput))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestNewBoxType_ReportsEveryField(t *testing.T) {
	_, err := NewBoxType("Box", 0, 0, 10, -1)

	require.Error(t, err)
	msg := errs.UserMessage(err)
	assert.Contains(t, msg, "box.length")
	assert.Contains(t, msg, "box.width")
	assert.Contains(t, msg, "box.weight")
	assert.NotContains(t, msg, "box.height")
}

func TestPlanAggregates(t *testing.T) {
	d := Dims{Length: 300, Width: 150, Height: 200}
	plan := Plan{
		Container: Container{Dims: Dims{Length: 1000, Width: 1200, Height: 1800}},
		Boxes: []PlacedBox{
			{Dims: d, Weight: 5},
			{Dims: d, Weight: 5, LayerID: 2},
			{Dims: d, Weight: 5, LayerID: 2},
		},
	}

	assert.Equal(t, 3, plan.ItemCount())
	assert.Equal(t, 15.0, plan.TotalWeight())
	assert.Equal(t, 3*d.Volume(), plan.PackedVolume())
	assert.Equal(t, 1.25, plan.Utilization())
	assert.Equal(t, []int{1, 0, 2}, plan.LayerCounts())
}

func TestPlanUtilization_Empty(t *testing.T) {
	assert.Zero(t, Plan{}.Utilization())
	assert.Zero(t, Plan{Container: Container{Dims: Dims{Length: 1, Width: 1, Height: 1}}}.Utilization())
}

func TestRound(t *testing.T) {
	assert.Equal(t, 66.67, Round(200.0/3, 2))
	assert.Equal(t, 3.0, Round(2.5, 0))
}

func TestPalletizationRequest_Parse(t *testing.T) {
	req := PalletizationRequest{
		Box:    &BoxSpec{Length: 300, Width: 200, Height: 150, Weight: 5},
		Pallet: PalletSpec{Length: 1000, Width: 1200, Height: 1800, MaxWeight: 5000},
	}

	c, bt, err := req.Parse()
	require.NoError(t, err)
	require.NotNil(t, bt)
	assert.Equal(t, Dims{Length: 300, Width: 200, Height: 150}, bt.Size)
	assert.Equal(t, 5000.0, c.MaxWeight)

	req.Box = nil
	_, bt, err = req.Parse()
	require.NoError(t, err)
	assert.Nil(t, bt)
}
