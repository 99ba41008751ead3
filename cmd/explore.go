package cmd

import (
	"fmt"

	"github.com/KaramelBytes/census-explorer/internal/analysis"
	"github.com/KaramelBytes/census-explorer/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	exploreX string
	exploreY string
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Regress one variable on another within each income quartile",
	Long: `explore fits an ordinary least squares line of --y on --x separately for each income
quartile (1=lowest, 4=highest). Valid variables: Gini Index, Vacant Housing, Percent Unemployed,
Median Family Income. Choosing the same variable twice prints a warning instead of a fit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := exploreRegression(cmd, exploreX, exploreY)
		if err != nil {
			return err
		}
		if reg.Skipped() {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %s\n", reg.Warning)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), reg.Markdown())
		return nil
	},
}

// exploreRegression validates the axes before touching the network.
func exploreRegression(cmd *cobra.Command, x, y string) (*analysis.Regression, error) {
	if x == y {
		return analysis.Explore(pipeline.Frame{}, x, y)
	}
	for _, n := range []string{x, y} {
		if !pipeline.IsDisplayColumn(n) {
			return analysis.Explore(pipeline.Frame{}, x, y)
		}
	}
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	res, err := a.table(cmd.Context())
	if err != nil {
		return nil, err
	}
	f, err := res.Table.DisplayWithQuartile()
	if err != nil {
		return nil, err
	}
	return analysis.Explore(f, x, y)
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	exploreCmd.Flags().StringVar(&exploreX, "x", pipeline.GiniIndex, "X-axis variable")
	exploreCmd.Flags().StringVar(&exploreY, "y", pipeline.PercentUnemployed, "Y-axis variable")
}
