package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func TestMerge_DedupByDomain(t *testing.T) {
	r := New(Config{NameKeyFallback: true})

	records := []model.SourceRecord{
		{
			Source:      "google",
			CompanyName: "Acme Pharma Pvt Ltd",
			Website:     "https://www.acmepharma.com/about",
			RawText:     "Third party manufacturing services.",
		},
		{
			Source:       "indiamart",
			CompanyName:  "Acme Pharma",
			Website:      "acmepharma.com",
			RawText:      "Loan license available.",
			LocationHint: "Baddi",
		},
	}

	leads, dropped := r.Merge(records)
	require.Len(t, leads, 1)
	assert.Zero(t, dropped)

	lead := leads[0]
	assert.Equal(t, "acmepharma.com", lead.CanonicalDomain)
	assert.Equal(t, "Acme Pharma Pvt Ltd", lead.CompanyName, "first-seen name wins")
	assert.Equal(t, "https://www.acmepharma.com/about", lead.Website)
	assert.Equal(t, "Baddi", lead.Location, "unset field filled by later record")
	assert.Equal(t, []string{"google", "indiamart"}, lead.Sources)
	assert.Contains(t, lead.RawTextCorpus, "Third party manufacturing services.")
	assert.Contains(t, lead.RawTextCorpus, "Loan license available.")
}

func TestMerge_FirstSightingOrder(t *testing.T) {
	r := New(Config{})

	records := []model.SourceRecord{
		{Source: "google", CompanyName: "Beta", Website: "beta.com"},
		{Source: "google", CompanyName: "Alpha", Website: "alpha.com"},
		{Source: "news", CompanyName: "Beta Again", Website: "www.beta.com"},
	}

	leads, dropped := r.Merge(records)
	require.Len(t, leads, 2)
	assert.Zero(t, dropped)
	assert.Equal(t, "beta.com", leads[0].CanonicalDomain)
	assert.Equal(t, "alpha.com", leads[1].CanonicalDomain)
}

func TestMerge_NameKeyFallback(t *testing.T) {
	records := []model.SourceRecord{
		{Source: "news", CompanyName: "Sunrise Remedies Pvt Ltd", RawText: "expansion news"},
		{Source: "google", CompanyName: "Sunrise Remedies", RawText: "pcd franchise"},
	}

	t.Run("enabled merges by normalized name", func(t *testing.T) {
		leads, dropped := New(Config{NameKeyFallback: true}).Merge(records)
		require.Len(t, leads, 1)
		assert.Zero(t, dropped)
		assert.Equal(t, NameKeyPrefix+"sunrise remedies", leads[0].CanonicalDomain)
		assert.Equal(t, []string{"news", "google"}, leads[0].Sources)
	})

	t.Run("disabled drops website-less records", func(t *testing.T) {
		leads, dropped := New(Config{NameKeyFallback: false}).Merge(records)
		assert.Empty(t, leads)
		assert.Equal(t, 2, dropped)
	})
}

func TestMerge_DropsUnidentifiable(t *testing.T) {
	r := New(Config{NameKeyFallback: true})

	records := []model.SourceRecord{
		{Source: "google", RawText: "no name, no website"},
		{Source: "google", CompanyName: "Pvt Ltd"},
		{Source: "google", CompanyName: "Real Co", Website: "realco.com"},
	}

	leads, dropped := r.Merge(records)
	require.Len(t, leads, 1)
	assert.Equal(t, 2, dropped)
	assert.Equal(t, "realco.com", leads[0].CanonicalDomain)
}

func TestMerge_Idempotent(t *testing.T) {
	r := New(Config{NameKeyFallback: true})

	records := []model.SourceRecord{
		{Source: "google", CompanyName: "Acme Pharma", Website: "acmepharma.com", RawText: "snippet"},
	}
	doubled := append(append([]model.SourceRecord{}, records...), records...)

	once, _ := r.Merge(records)
	twice, _ := r.Merge(doubled)
	require.Len(t, twice, 1)
	assert.Equal(t, once[0], twice[0], "re-merging identical records changes nothing")
}

func TestMerge_CorpusDedup(t *testing.T) {
	r := New(Config{})

	records := []model.SourceRecord{
		{Source: "google", Website: "acme.com", RawText: "same snippet"},
		{Source: "indiamart", Website: "acme.com", RawText: "same snippet"},
	}

	leads, _ := r.Merge(records)
	require.Len(t, leads, 1)
	assert.Equal(t, "same snippet", leads[0].RawTextCorpus)
}

func TestMerge_Empty(t *testing.T) {
	leads, dropped := New(Config{}).Merge(nil)
	assert.Empty(t, leads)
	assert.Zero(t, dropped)
}
