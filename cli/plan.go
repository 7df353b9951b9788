package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"autoPallet/errs"
	"autoPallet/export"
	"autoPallet/models"
	"autoPallet/stacker"
	"autoPallet/utils"
)

type planFlags struct {
	box       string
	weight    float64
	pallet    string
	maxWeight float64
	sku       string
	maxItems  int
	compare   bool
	save      bool
	sheet     string
	report    string
}

func newPlanCmd(a *app) *cobra.Command {
	var f planFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan one pallet and print the placement records as JSON",
		Example: `  autopallet plan --box 300x200x150 --weight 5 --pallet 1000x1200x1800 --max-weight 5000
  autopallet plan --box 300x200x150 --pallet 1000x1200x1800 --compare`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := f.request()
			if err != nil {
				return err
			}
			if f.maxItems > 0 {
				a.cfg.MaxItemsPerLayer = f.maxItems
			}
			if f.compare {
				return a.compare(cmd, req)
			}

			r, closeStore, err := a.runner(f.save)
			if err != nil {
				return err
			}
			defer closeStore()

			out, err := r.Run(cmd.Context(), f.sku, req)
			if err != nil {
				return err
			}
			if out.RunID != "" {
				a.logger.Info("plan ready", "run", out.RunID, "items", out.Response.ItemCount, "utilization", out.Response.Utilization)
			}
			if f.sheet != "" {
				if err := writeFile(f.sheet, func(w io.Writer) error {
					return export.WriteSheet(w, out.Plan, out.Response.PalletStack)
				}); err != nil {
					return err
				}
			}
			if f.report != "" {
				if err := writeFile(f.report, func(w io.Writer) error {
					return export.RenderReport(w, "autopallet "+f.sku, out.Plan, out.Response.PalletStack)
				}); err != nil {
					return err
				}
			}
			return printJSON(a.out, out.Response)
		},
	}

	cmd.Flags().StringVar(&f.box, "box", "", "box size as LxWxH")
	cmd.Flags().Float64Var(&f.weight, "weight", 0, "box weight")
	cmd.Flags().StringVar(&f.pallet, "pallet", "1000x1200x1800", "pallet size as LxWxH")
	cmd.Flags().Float64Var(&f.maxWeight, "max-weight", 5000, "pallet weight capacity")
	cmd.Flags().StringVar(&f.sku, "sku", "", "SKU name stored with the run")
	cmd.Flags().IntVar(&f.maxItems, "max-items", 0, "per-layer probe cap (overrides max_items_per_layer)")
	cmd.Flags().BoolVar(&f.compare, "compare", false, "compare single-orientation fills instead of planning")
	cmd.Flags().BoolVar(&f.save, "save", false, "store the run and write its artifact")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "also write the records to this .xlsx file")
	cmd.Flags().StringVar(&f.report, "report", "", "also write the HTML layer report to this file")
	_ = cmd.MarkFlagRequired("box")
	return cmd
}

func (f planFlags) request() (models.PalletizationRequest, error) {
	bl, bw, bh, ok := utils.ParseSize(f.box)
	if !ok {
		return models.PalletizationRequest{}, errs.Invalid("--box", "%q is not LxWxH", f.box)
	}
	pl, pw, ph, ok := utils.ParseSize(f.pallet)
	if !ok {
		return models.PalletizationRequest{}, errs.Invalid("--pallet", "%q is not LxWxH", f.pallet)
	}
	return models.PalletizationRequest{
		Box:    &models.BoxSpec{Length: bl, Width: bw, Height: bh, Weight: f.weight},
		Pallet: models.PalletSpec{Length: pl, Width: pw, Height: ph, MaxWeight: f.maxWeight},
	}, nil
}

type compareOutput struct {
	Orientations []stacker.OrientationReport `json:"orientations"`
	Best         int                         `json:"best"`
}

func (a *app) compare(cmd *cobra.Command, req models.PalletizationRequest) error {
	c, bt, err := req.Parse()
	if err != nil {
		return err
	}
	opts := a.cfg.StackerOptions()
	opts.Logger = a.logger
	reports, best, err := stacker.CompareOrientations(cmd.Context(), c, *bt, opts, stacker.DefaultCompareAttempts)
	if err != nil {
		return err
	}
	return printJSON(a.out, compareOutput{Orientations: reports, Best: best.Orientation.ID})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.CodeStorage, err, "create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
