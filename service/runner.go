// Package service runs palletization requests end to end: validate, stack,
// transform, then persist the artifact and run history.
package service

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"autoPallet/errs"
	"autoPallet/export"
	"autoPallet/models"
	"autoPallet/stacker"
	"autoPallet/store"
)

// Outcome is the result of one request.
type Outcome struct {
	RunID        string
	Plan         models.Plan
	Response     models.PalletizationResponse
	ArtifactPath string
}

// Runner holds what a run needs. Store and OutputDir are optional; without
// them nothing is persisted.
type Runner struct {
	Options   stacker.Options
	Store     *store.Store
	OutputDir string
	Logger    *log.Logger
}

func (r *Runner) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}

// Run plans one request. Invalid input is returned with INVALID_INPUT
// before any engine call; a request without a box yields an empty stack.
func (r *Runner) Run(ctx context.Context, sku string, req models.PalletizationRequest) (Outcome, error) {
	c, bt, err := req.Parse()
	if err != nil {
		return Outcome{}, err
	}
	if bt == nil {
		return Outcome{Response: export.EmptyResponse()}, nil
	}
	if sku != "" {
		bt.Name = sku
	}

	opts := r.Options
	if opts.Logger == nil {
		opts.Logger = r.logger()
	}
	plan, err := stacker.Palletize(ctx, c, *bt, opts)
	if err != nil {
		return Outcome{}, err
	}

	records := export.Transform(plan)
	if ids := export.Disagreements(records); len(ids) > 0 {
		r.logger().Warn("rotated flag disagrees with rotation id", "sku", sku, "count", len(ids), "first", ids[0])
	}
	out := Outcome{
		RunID: uuid.NewString(),
		Plan:  plan,
		Response: models.PalletizationResponse{
			PalletStack: records,
			ItemCount:   plan.ItemCount(),
			Utilization: plan.Utilization(),
		},
	}

	run := store.NewRun(sku, req, plan)
	run.ID = out.RunID
	if r.OutputDir != "" {
		path, err := export.WriteArtifact(r.OutputDir, out.RunID, records)
		if err != nil {
			return out, err
		}
		out.ArtifactPath = path
		run.ArtifactPath = path
	}
	if r.Store != nil {
		if err := r.Store.SaveRun(ctx, &run); err != nil {
			return out, err
		}
	}
	r.logger().Debug("run stored", "run", out.RunID, "artifact", out.ArtifactPath)
	return out, nil
}

// Lookup loads a stored run.
func (r *Runner) Lookup(ctx context.Context, id string) (store.Run, error) {
	if r.Store == nil {
		return store.Run{}, errs.New(errs.CodeNotFound, "run history is disabled")
	}
	return r.Store.GetRun(ctx, id)
}

// List returns the most recent runs.
func (r *Runner) List(ctx context.Context, limit int) ([]store.Run, error) {
	if r.Store == nil {
		return []store.Run{}, nil
	}
	return r.Store.ListRuns(ctx, limit)
}

// Report renders the HTML layer report of a stored run.
func (r *Runner) Report(ctx context.Context, id string, w io.Writer) error {
	run, err := r.Lookup(ctx, id)
	if err != nil {
		return err
	}
	plan := *run.Plan
	return export.RenderReport(w, "Run "+run.ID, plan, export.Transform(plan))
}

// Sheet writes the Excel export of a stored run.
func (r *Runner) Sheet(ctx context.Context, id string, w io.Writer) error {
	run, err := r.Lookup(ctx, id)
	if err != nil {
		return err
	}
	plan := *run.Plan
	return export.WriteSheet(w, plan, export.Transform(plan))
}
