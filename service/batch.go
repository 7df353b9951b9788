package service

import (
	"context"

	"autoPallet/errs"
	"autoPallet/utils"
)

// BatchResult is one row of a batch run.
type BatchResult struct {
	Row         int     `json:"row"`
	SKU         string  `json:"sku"`
	RunID       string  `json:"run_id,omitempty"`
	ItemCount   int     `json:"item_count"`
	Utilization float64 `json:"utilization"`
	Error       string  `json:"error,omitempty"`
}

// RunBatch plans every job in order. A failing job is reported in its
// result and does not stop the batch; rowErrs from the sheet reader come
// first.
func (r *Runner) RunBatch(ctx context.Context, jobs []utils.Job, rowErrs []utils.RowError) []BatchResult {
	results := make([]BatchResult, 0, len(jobs)+len(rowErrs))
	for _, re := range rowErrs {
		results = append(results, BatchResult{Row: re.Row, Error: re.Err.Error()})
	}

	for _, job := range jobs {
		if ctx.Err() != nil {
			results = append(results, BatchResult{Row: job.Row, SKU: job.SKU, Error: ctx.Err().Error()})
			continue
		}
		out, err := r.Run(ctx, job.SKU, job.Request)
		res := BatchResult{
			Row:         job.Row,
			SKU:         job.SKU,
			RunID:       out.RunID,
			ItemCount:   out.Response.ItemCount,
			Utilization: out.Response.Utilization,
		}
		if err != nil {
			res.Error = errs.UserMessage(err)
			r.logger().Warn("batch job failed", "row", job.Row, "sku", job.SKU, "err", err)
		}
		results = append(results, res)
	}
	return results
}
