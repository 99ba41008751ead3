package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fetchShowDrops bool

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the county table and report what the cleaning pipeline kept",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		res, err := a.table(cmd.Context())
		if err != nil {
			return err
		}
		t := res.Table
		out := cmd.OutOrStdout()
		q := a.sess.Query()
		fmt.Fprintf(out, "✓ Fetched %s %d (fetch %s)\n", q.Dataset, q.Year, res.SnapshotID)
		fmt.Fprintf(out, "Counties: %d\n", len(t.Records))
		fmt.Fprintf(out, "Excluded territories: %d\n", t.Excluded)
		fmt.Fprintf(out, "Dropped (unavailable estimates): %d\n", len(t.Dropped))
		fmt.Fprintf(out, "Income quartile edges: %.0f / %.0f / %.0f / %.0f / %.0f\n",
			t.QuartileEdges[0], t.QuartileEdges[1], t.QuartileEdges[2], t.QuartileEdges[3], t.QuartileEdges[4])
		for _, w := range t.Warnings {
			fmt.Fprintf(out, "⚠ %s\n", w)
		}
		if fetchShowDrops {
			for _, d := range t.Dropped {
				fmt.Fprintf(out, "  - %s: %s\n", d.Location, d.Reason)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().BoolVar(&fetchShowDrops, "show-drops", false, "list every dropped county and the reason")
}
