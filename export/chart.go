package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"autoPallet/errs"
	"autoPallet/models"
)

// ====== 图表报告 ======

// RenderReport writes an HTML page with the boxes per layer and a top view
// of the grasp points of the first two layers.
func RenderReport(w io.Writer, title string, plan models.Plan, records []models.BoxPlacement) error {
	counts := plan.LayerCounts()
	x := make([]string, 0, len(counts))
	y := make([]opts.BarData, 0, len(counts))
	for layer, n := range counts {
		x = append(x, "L"+strconv.Itoa(layer))
		y = append(y, opts.BarData{Value: n})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Boxes per layer",
			Subtitle: fmt.Sprintf("items=%d utilization=%.2f%%", plan.ItemCount(), plan.Utilization()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("boxes", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Grasp points (top view)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: plan.Container.Length, Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: plan.Container.Width, Name: "Y", NameLocation: "middle", NameGap: 30}),
	)
	layers := [2][]opts.ScatterData{}
	for _, r := range records {
		if r.LayerID > 1 {
			continue
		}
		layers[r.LayerID] = append(layers[r.LayerID], opts.ScatterData{Value: []interface{}{r.GraspPoint.X, r.GraspPoint.Y, r.BoxID}})
	}
	for i, data := range layers {
		scatter.AddSeries("layer "+strconv.Itoa(i), data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	}

	page := components.NewPage()
	page.AddCharts(bar, scatter)
	if err := page.Render(w); err != nil {
		return errs.Wrap(errs.CodeInternal, err, "render report")
	}
	return nil
}
