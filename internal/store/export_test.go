package store

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/fetcher"
	"github.com/sells-group/leadgen-cli/internal/model"
)

func exportLeads() []model.Lead {
	return []model.Lead{
		{
			CanonicalDomain:    "acmepharma.com",
			CompanyName:        "Acme Pharma",
			Website:            "https://acmepharma.com",
			LinkedInURL:        "https://linkedin.com/company/acme-pharma",
			Location:           "Baddi",
			BusinessModel:      model.BusinessModelMarketing,
			OutsourcingScore:   8,
			ContactFound:       true,
			Emails:             []string{"info@acmepharma.com", "sales@acmepharma.com"},
			Phones:             []string{"+919876543210"},
			NextAction:         "High Priority - Contact immediately",
			Notes:              "classified via keyword fallback",
		},
		{
			CanonicalDomain: "beta.com",
			CompanyName:     "Beta Remedies",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, exportLeads()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"Company Name", "Website", "LinkedIn", "Location",
		"Business Model", "Outsourcing Score (1-10)", "Contact Found",
		"Emails", "Phone Numbers", "Next Action", "Notes",
	}, rows[0])

	assert.Equal(t, []string{
		"Acme Pharma", "https://acmepharma.com",
		"https://linkedin.com/company/acme-pharma", "Baddi",
		"marketing", "8", "Yes",
		"info@acmepharma.com; sales@acmepharma.com", "+919876543210",
		"High Priority - Contact immediately", "classified via keyword fallback",
	}, rows[1])

	// Unscored lead: empty score cell, No for contact.
	assert.Equal(t, "Beta Remedies", rows[2][0])
	assert.Equal(t, "", rows[2][5])
	assert.Equal(t, "No", rows[2][6])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	require.NoError(t, WriteXLSX(path, exportLeads()))

	rows, err := fetcher.ReadXLSX(path)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, exportColumns, rows[0])
	assert.Equal(t, "Acme Pharma", rows[1][0])
	assert.Equal(t, "8", rows[1][5])
	assert.Equal(t, "Yes", rows[1][6])
}
