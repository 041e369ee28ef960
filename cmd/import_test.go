package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func TestParseRecordsCSV(t *testing.T) {
	input := `company_name,website,raw_text,location,keyword,source
Acme Pharma,https://acmepharma.com,Third party manufacturing,Baddi,pharma,indiamart
Beta Remedies,,PCD franchise,,,
`
	records, err := parseRecordsCSV(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, model.SourceRecord{
		Source:       "indiamart",
		CompanyName:  "Acme Pharma",
		Website:      "https://acmepharma.com",
		RawText:      "Third party manufacturing",
		LocationHint: "Baddi",
		Keyword:      "pharma",
	}, records[0])
	assert.Equal(t, "Beta Remedies", records[1].CompanyName)
	assert.Empty(t, records[1].Source)
}

func TestRecordsFromRows_HeaderOrderIndependent(t *testing.T) {
	header := []string{"Website", "COMPANY_NAME"}
	rows := [][]string{{"https://acme.com", "Acme"}}

	records := recordsFromRows(header, rows)
	require.Len(t, records, 1)
	assert.Equal(t, "Acme", records[0].CompanyName)
	assert.Equal(t, "https://acme.com", records[0].Website)
}

func TestRecordsFromRows_ShortRow(t *testing.T) {
	header := []string{"company_name", "website"}
	rows := [][]string{{"Acme"}}

	records := recordsFromRows(header, rows)
	require.Len(t, records, 1)
	assert.Equal(t, "Acme", records[0].CompanyName)
	assert.Empty(t, records[0].Website)
}

func TestApplySource(t *testing.T) {
	records := []model.SourceRecord{
		{Source: "indiamart", CompanyName: "A"},
		{CompanyName: "B"},
	}

	out := applySource(records, "import")
	assert.Equal(t, "indiamart", out[0].Source, "existing source kept")
	assert.Equal(t, "import", out[1].Source)

	same := applySource(records, "")
	assert.Equal(t, records, same)
}

func TestLoadRecords_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	content := `[{"source": "google", "company_name": "Acme", "website": "acme.com"}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := loadRecords(path, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Acme", records[0].CompanyName)
}

func TestLoadRecords_HTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listing.html")
	content := `<html><body><h2><a href="https://acme.com">Acme Pharma</a></h2></body></html>`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := loadRecords(path, "saved-listing")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "saved-listing", records[0].Source)
	assert.Equal(t, "https://acme.com", records[0].Website)
}

func TestLoadRecords_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := loadRecords(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported import format")
}

func TestLoadRecords_MissingFile(t *testing.T) {
	_, err := loadRecords(filepath.Join(t.TempDir(), "nope.json"), "")
	assert.Error(t, err)
}
