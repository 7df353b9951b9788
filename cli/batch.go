package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"autoPallet/utils"
)

func newBatchCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "batch <jobs.xlsx>",
		Short: "Plan every row of an Excel sheet and store the runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, rowErrs, err := utils.ReadJobs(args[0])
			if err != nil {
				return err
			}
			a.logger.Info("jobs loaded", "file", args[0], "jobs", len(jobs), "bad_rows", len(rowErrs))

			r, closeStore, err := a.runner(true)
			if err != nil {
				return err
			}
			defer closeStore()

			results := r.RunBatch(cmd.Context(), jobs, rowErrs)
			if asJSON {
				return printJSON(a.out, results)
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ROW\tSKU\tRUN\tITEMS\tUTIL%\tERROR")
			for _, res := range results {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%.2f\t%s\n", res.Row, res.SKU, res.RunID, res.ItemCount, res.Utilization, res.Error)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}
