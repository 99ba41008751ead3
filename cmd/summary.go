package cmd

import (
	"fmt"

	"github.com/KaramelBytes/census-explorer/internal/analysis"
	"github.com/KaramelBytes/census-explorer/internal/utils"
	"github.com/spf13/cobra"
)

var summaryOutputPath string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Descriptive statistics for Median Family Income and per-quartile summaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		res, err := a.table(cmd.Context())
		if err != nil {
			return err
		}
		q := a.sess.Query()
		rep, err := analysis.Analyze(fmt.Sprintf("%s %d", q.Dataset, q.Year), res.Table)
		if err != nil {
			return err
		}
		md := rep.Markdown()
		if summaryOutputPath != "" {
			if err := utils.SafeWriteFile(summaryOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Summary written to %s\n", summaryOutputPath)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringVarP(&summaryOutputPath, "output", "o", "", "write the Markdown summary to a file")
}
