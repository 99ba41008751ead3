package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/census-explorer/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the four analysis columns as " + export.DefaultFileName,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		a, err := newApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		path := exportOutput
		if path == "" {
			name := export.DefaultFileName
			if format == export.FormatXLSX {
				name = strings.TrimSuffix(name, ".csv") + ".xlsx"
			}
			path = filepath.Join(cfg.OutputDir, name)
		}
		res, err := a.table(cmd.Context())
		if err != nil {
			return err
		}
		if err := export.Save(path, res.Table, format); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d counties to %s\n", len(res.Table.Records), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output path (default <output_dir>/"+export.DefaultFileName+")")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "csv|xlsx")
}
