package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/store"
)

var (
	exportOut      string
	exportModel    string
	exportMinScore int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored leads to CSV or XLSX",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		out := exportOut
		if out == "" {
			if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
				return eris.Wrapf(err, "create export dir %s", cfg.Export.Dir)
			}
			out = filepath.Join(cfg.Export.Dir, cfg.Export.Filename)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		leads, err := st.ListLeads(ctx, store.LeadFilter{
			BusinessModel: model.BusinessModel(exportModel),
			MinScore:      exportMinScore,
			Limit:         10000,
		})
		if err != nil {
			return eris.Wrap(err, "list leads")
		}

		if err := exportLeadsToFile(out, leads); err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("path", out),
			zap.Int("leads", len(leads)),
		)
		return nil
	},
}

// exportLeadsToFile picks the format from the file extension.
func exportLeadsToFile(path string, leads []model.Lead) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "create %s", path)
		}
		defer f.Close()
		return store.WriteCSV(f, leads)
	case ".xlsx":
		return store.WriteXLSX(path, leads)
	default:
		return eris.Errorf("unsupported export format: %s (use .csv or .xlsx)", path)
	}
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file, .csv or .xlsx (default from export config)")
	exportCmd.Flags().StringVar(&exportModel, "model", "", "filter by business model")
	exportCmd.Flags().IntVar(&exportMinScore, "min-score", 0, "filter by minimum outsourcing score")
	rootCmd.AddCommand(exportCmd)
}
