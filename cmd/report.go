package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spencerj41/droidmark-cli/internal/report"
)

// newReportCmd creates and configures the `report` command.
func newReportCmd() *cobra.Command {
	var resultsFile string
	var outputPath string

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a summary report from a persisted result record",
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := report.LoadRecord(resultsFile)
			if err != nil {
				return err
			}
			analyzer := report.NewAnalyzer(record)

			out := os.Stdout
			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("failed to create report file: %w", err)
				}
				defer f.Close()
				out = f
			}

			return analyzer.WriteSummary(out)
		},
	}

	reportCmd.Flags().StringVar(&resultsFile, "results-file", "", "path to a persisted result record (JSON)")
	reportCmd.Flags().StringVar(&outputPath, "output", "", "write the summary to a file instead of stdout")
	_ = reportCmd.MarkFlagRequired("results-file")

	return reportCmd
}
