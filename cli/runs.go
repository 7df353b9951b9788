package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newRunsCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeStore, err := a.runner(true)
			if err != nil {
				return err
			}
			defer closeStore()

			runs, err := r.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSKU\tCREATED\tITEMS\tUTIL%\tVALIDATED")
			for _, run := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.2f\t%t\n",
					run.ID, run.SKU, run.CreatedAt.Local().Format(time.DateTime), run.ItemCount, run.Utilization, run.Validated)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeStore, err := a.runner(true)
			if err != nil {
				return err
			}
			defer closeStore()

			run, err := r.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(a.out, run)
		},
	})
	return cmd
}
