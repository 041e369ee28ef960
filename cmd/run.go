package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/collect"
	"github.com/sells-group/leadgen-cli/internal/model"
)

var runExportPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect sources and run the full lead pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		collectors := buildCollectors()
		if len(collectors) == 0 {
			return eris.New("no collectors enabled, set a serpapi key or configure feeds")
		}

		records, err := collect.All(ctx, collectors)
		if err != nil {
			return eris.Wrap(err, "collect")
		}

		run, leads, err := env.Pipeline.Run(ctx, records)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		if runExportPath != "" {
			if err := exportLeadsToFile(runExportPath, leadValues(leads)); err != nil {
				return err
			}
			zap.L().Info("leads exported", zap.String("path", runExportPath), zap.Int("leads", len(leads)))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

func leadValues(leads []*model.Lead) []model.Lead {
	out := make([]model.Lead, len(leads))
	for i, l := range leads {
		out[i] = *l
	}
	return out
}

func init() {
	runCmd.Flags().StringVar(&runExportPath, "export", "", "write leads to CSV or XLSX file after the run")
	rootCmd.AddCommand(runCmd)
}
