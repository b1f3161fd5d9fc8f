package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/mangoconv/internal/batch"
	"github.com/MikeSquared-Agency/mangoconv/internal/config"
	"github.com/MikeSquared-Agency/mangoconv/internal/export"
)

var (
	convertIn        string
	convertOut       string
	convertRecursive bool
	convertWorkers   int
	convertView      string
	convertCharset   string
	convertReport    string
)

func newConvertCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a directory of call exports into one CSV",
		Long: `Parse every *.html call export in --in (index.html is skipped) and write
a single CSV to --out, one row per utterance by default. A JSON run report
is written next to the CSV.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := export.ParseView(convertView, export.ViewMerged)
			if err != nil {
				return err
			}

			s, err := openSinks(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			svc, err := newService(cfg, convertCharset, s)
			if err != nil {
				return err
			}

			runner := batch.NewRunner(batch.Config{
				Input:      convertIn,
				Output:     convertOut,
				Recursive:  convertRecursive,
				Workers:    convertWorkers,
				View:       view,
				ReportPath: convertReport,
			}, svc, slog.Default())

			report, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if report.FilesParsed == 0 {
				fmt.Fprintln(out, "No data to save")
				return nil
			}
			fmt.Fprintf(out, "Parsed %d of %d files (%d turns), saved %s\n",
				report.FilesParsed, report.FilesFound, report.Turns, report.Output)
			for _, f := range report.Failed {
				fmt.Fprintf(out, "  failed %s: %s\n", f.Path, f.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&convertIn, "in", ".", "Directory (or single file) with HTML call exports")
	cmd.Flags().StringVar(&convertOut, "out", "conversations.csv", "CSV file to write")
	cmd.Flags().BoolVarP(&convertRecursive, "recursive", "r", false, "Search subdirectories")
	cmd.Flags().IntVar(&convertWorkers, "workers", cfg.Workers, "Number of files parsed in parallel")
	cmd.Flags().StringVar(&convertView, "view", string(export.ViewMerged), "Table shape: merged, headers, turns, wide")
	cmd.Flags().StringVar(&convertCharset, "charset", cfg.InputCharset, "Input charset (empty: detect)")
	cmd.Flags().StringVar(&convertReport, "report", "", "Run report path (default: next to --out)")

	return cmd
}
