package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/mangoconv/internal/config"
	"github.com/MikeSquared-Agency/mangoconv/internal/export"
	"github.com/MikeSquared-Agency/mangoconv/internal/ingest"
)

var (
	parseFormat  string
	parseView    string
	parseCharset string
)

func newParseCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse one call export and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cfg, parseCharset, nil)
			if err != nil {
				return err
			}

			call, err := svc.ParseFile(cmd.Context(), ingest.SurfaceCLI, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch parseFormat {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"header": call.Result.Header,
					"turns":  call.Result.Turns,
					"stats":  call.Result.Stats,
				})
			case "csv":
				view, err := export.ParseView(parseView, export.ViewTurns)
				if err != nil {
					return err
				}
				return export.Write(out, view, []export.Call{{Name: call.Name, Result: call.Result}})
			default:
				return fmt.Errorf("unknown format %q: expected json or csv", parseFormat)
			}
		},
	}

	cmd.Flags().StringVarP(&parseFormat, "format", "f", "json", "Output format: json, csv")
	cmd.Flags().StringVar(&parseView, "view", string(export.ViewTurns), "CSV table shape: merged, headers, turns, wide")
	cmd.Flags().StringVar(&parseCharset, "charset", cfg.InputCharset, "Input charset (empty: detect)")

	return cmd
}
