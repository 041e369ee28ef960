package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/collect"
	"github.com/sells-group/leadgen-cli/internal/fetcher"
	"github.com/sells-group/leadgen-cli/internal/model"
)

var (
	importFile   string
	importSource string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Run the pipeline on records from a file instead of live collection",
	Long:  "Reads source records from a JSON array, a CSV or XLSX with a header row, or a saved directory listing page (.html), then runs merge, classify, score, enrich, and persist.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		records, err := loadRecords(importFile, importSource)
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		run, _, err := env.Pipeline.Run(ctx, records)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

func loadRecords(path, source string) ([]model.SourceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var records []model.SourceRecord
		if err := json.NewDecoder(f).Decode(&records); err != nil {
			return nil, eris.Wrapf(err, "parse %s", path)
		}
		return applySource(records, source), nil
	case ".csv":
		records, err := parseRecordsCSV(f)
		if err != nil {
			return nil, eris.Wrapf(err, "parse %s", path)
		}
		return applySource(records, source), nil
	case ".xlsx":
		rows, err := fetcher.ReadXLSX(path)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, eris.Errorf("%s has no rows", path)
		}
		return applySource(recordsFromRows(rows[0], rows[1:]), source), nil
	case ".html":
		if source == "" {
			source = "import"
		}
		return collect.ParseListing(f, source)
	default:
		return nil, eris.Errorf("unsupported import format: %s (use .json, .csv, .xlsx, or .html)", path)
	}
}

// parseRecordsCSV maps CSV columns onto record fields by header name.
func parseRecordsCSV(r io.Reader) ([]model.SourceRecord, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrap(err, "read header")
	}

	var rows [][]string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "read row")
		}
		rows = append(rows, row)
	}
	return recordsFromRows(header, rows), nil
}

// recordsFromRows maps tabular rows onto record fields by header name.
func recordsFromRows(header []string, rows [][]string) []model.SourceRecord {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	field := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []model.SourceRecord
	for _, row := range rows {
		records = append(records, model.SourceRecord{
			Source:       field(row, "source"),
			CompanyName:  field(row, "company_name"),
			Website:      field(row, "website"),
			RawText:      field(row, "raw_text"),
			LocationHint: field(row, "location"),
			Keyword:      field(row, "keyword"),
		})
	}
	return records
}

func applySource(records []model.SourceRecord, source string) []model.SourceRecord {
	if source == "" {
		return records
	}
	for i := range records {
		if records[i].Source == "" {
			records[i].Source = source
		}
	}
	return records
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "records file, .json, .csv, .xlsx, or .html (required)")
	importCmd.Flags().StringVar(&importSource, "source", "", "source label for records without one")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
