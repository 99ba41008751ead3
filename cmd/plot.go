package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/census-explorer/internal/analysis"
	"github.com/KaramelBytes/census-explorer/internal/pipeline"
	"github.com/KaramelBytes/census-explorer/internal/plot"
	"github.com/spf13/cobra"
)

var (
	plotOutDir string
	plotX      string
	plotY      string
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Write the income histogram, the quartile scatter and the regression facets as HTML",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		dir := plotOutDir
		if dir == "" {
			dir = cfg.OutputDir
		}
		res, err := a.table(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		hist, err := plot.IncomeHistogram(res.Table)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, "income_histogram.html")
		if err := hist.Save(path); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ %s\n", path)

		scatter, err := plot.IncomeVsUnemployment(res.Table)
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "income_vs_unemployment.html")
		if err := scatter.Save(path); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ %s\n", path)

		f, err := res.Table.DisplayWithQuartile()
		if err != nil {
			return err
		}
		reg, err := analysis.Explore(f, plotX, plotY)
		if err != nil {
			return err
		}
		if reg.Skipped() {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %s\n", reg.Warning)
			return nil
		}
		panels, err := plot.RegressionFacets(reg)
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "regression_by_quartile.html")
		page := plot.Page{
			Title:   fmt.Sprintf("%s vs %s by Income Quartile", reg.X, reg.Y),
			Notes:   []string{"Each panel represents a different income quartile (1=lowest, 4=highest)"},
			Columns: 2,
			Plots:   panels,
		}
		if err := page.Save(path); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.Flags().StringVar(&plotOutDir, "out-dir", "", "directory for the HTML files (default output_dir from config)")
	plotCmd.Flags().StringVar(&plotX, "x", pipeline.GiniIndex, "X-axis variable of the regression facets")
	plotCmd.Flags().StringVar(&plotY, "y", pipeline.PercentUnemployed, "Y-axis variable of the regression facets")
}
