package export

import (
	"io"

	"github.com/xuri/excelize/v2"

	"autoPallet/errs"
	"autoPallet/models"
)

const (
	StackSheet   = "PalletStack"
	SummarySheet = "Summary"
)

var stackHeader = []interface{}{
	"box_id", "length", "width", "height",
	"grasp_x", "grasp_y", "grasp_z",
	"layer_id", "rotated", "rotation",
}

// ====== Excel 导出 ======

// WriteSheet writes the placement records and a per-layer summary as an
// xlsx workbook.
func WriteSheet(w io.Writer, plan models.Plan, records []models.BoxPlacement) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", StackSheet); err != nil {
		return errs.Wrap(errs.CodeInternal, err, "rename sheet")
	}
	if err := f.SetSheetRow(StackSheet, "A1", &stackHeader); err != nil {
		return errs.Wrap(errs.CodeInternal, err, "write header")
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errs.Wrap(errs.CodeInternal, err, "cell name")
		}
		row := []interface{}{
			r.BoxID, r.Dimensions.Length, r.Dimensions.Width, r.Dimensions.Height,
			r.GraspPoint.X, r.GraspPoint.Y, r.GraspPoint.Z,
			r.LayerID, r.Rotated, r.Rotation,
		}
		if err := f.SetSheetRow(StackSheet, cell, &row); err != nil {
			return errs.Wrap(errs.CodeInternal, err, "write row %d", i)
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return errs.Wrap(errs.CodeInternal, err, "create summary sheet")
	}
	summary := [][]interface{}{
		{"item_count", plan.ItemCount()},
		{"utilization", plan.Utilization()},
		{"total_weight", plan.TotalWeight()},
		{"layer_height", plan.LayerHeight},
		{"validated", plan.Validated},
		{},
		{"layer", "boxes"},
	}
	for layer, n := range plan.LayerCounts() {
		summary = append(summary, []interface{}{layer, n})
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return errs.Wrap(errs.CodeInternal, err, "write summary row %d", i)
		}
	}

	if err := f.Write(w); err != nil {
		return errs.Wrap(errs.CodeStorage, err, "write workbook")
	}
	return nil
}
