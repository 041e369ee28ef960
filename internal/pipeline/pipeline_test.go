package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/classify"
	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/contact"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/registry"
	"github.com/sells-group/leadgen-cli/internal/resolver"
	"github.com/sells-group/leadgen-cli/internal/score"
	"github.com/sells-group/leadgen-cli/internal/store"
)

// fakeStore records every call in memory.
type fakeStore struct {
	nextID     int
	statuses   []model.RunStatus
	completed  []completedRun
	upserted   []*model.Lead
	failUpsert bool
}

type completedRun struct {
	runID  string
	status model.RunStatus
	stats  model.RunStats
	errMsg string
}

func (s *fakeStore) CreateRun(context.Context) (*model.Run, error) {
	s.nextID++
	return &model.Run{ID: fmt.Sprintf("run-%d", s.nextID), Status: model.RunStatusQueued}, nil
}

func (s *fakeStore) UpdateRunStatus(_ context.Context, _ string, status model.RunStatus) error {
	s.statuses = append(s.statuses, status)
	return nil
}

func (s *fakeStore) CompleteRun(_ context.Context, runID string, status model.RunStatus, stats model.RunStats, errMsg string) error {
	s.completed = append(s.completed, completedRun{runID, status, stats, errMsg})
	return nil
}

func (s *fakeStore) GetRun(context.Context, string) (*model.Run, error) { return nil, nil }

func (s *fakeStore) ListRuns(context.Context, store.RunFilter) ([]model.Run, error) {
	return nil, nil
}

func (s *fakeStore) UpsertLeads(_ context.Context, leads []*model.Lead) error {
	if s.failUpsert {
		return eris.New("disk full")
	}
	s.upserted = append(s.upserted, leads...)
	return nil
}

func (s *fakeStore) GetLead(context.Context, string) (*model.Lead, error) { return nil, nil }

func (s *fakeStore) ListLeads(context.Context, store.LeadFilter) ([]model.Lead, error) {
	return nil, nil
}

func (s *fakeStore) Migrate(context.Context) error { return nil }
func (s *fakeStore) Close() error                  { return nil }

func newTestPipeline(st store.Store) *Pipeline {
	cfg := &config.Config{
		Pipeline: config.PipelineConfig{MaxConcurrent: 2, NameKeyFallback: true, GuessEmails: true},
	}
	reg := registry.Default()
	return New(
		cfg,
		st,
		resolver.New(resolver.Config{NameKeyFallback: true}),
		classify.New(nil, cfg.Anthropic, reg),
		score.New(reg),
		contact.New(contact.Config{GuessEmails: true}),
	)
}

func TestRun_EndToEnd(t *testing.T) {
	st := &fakeStore{}
	p := newTestPipeline(st)

	records := []model.SourceRecord{
		{
			Source:      "google",
			CompanyName: "Acme Pharma",
			Website:     "https://www.acmepharma.com",
			RawText:     "Offering contract manufacturing services for tablets.",
		},
		{
			Source:      "indiamart",
			CompanyName: "Acme Pharma Pvt Ltd",
			Website:     "acmepharma.com",
			RawText:     "Leading supplier in Baddi, Himachal Pradesh. Email info@acmepharma.com",
		},
		{
			Source:  "google",
			RawText: "no name, no website",
		},
	}

	run, leads, err := p.Run(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.Equal(t, 3, run.Stats.RecordsIn)
	assert.Equal(t, 1, run.Stats.RecordsDropped)
	assert.Equal(t, 1, run.Stats.Leads)
	assert.Equal(t, 0, run.Stats.ClassifiedAI)
	assert.Equal(t, 1, run.Stats.ClassifiedFallback)
	assert.Equal(t, 1, run.Stats.ContactFound)

	require.Len(t, leads, 1)
	lead := leads[0]
	assert.Equal(t, "acmepharma.com", lead.CanonicalDomain)
	assert.Equal(t, "Acme Pharma", lead.CompanyName)
	assert.Equal(t, []string{"google", "indiamart"}, lead.Sources)
	assert.Equal(t, model.BusinessModelManufacturing, lead.BusinessModel)
	assert.Equal(t, 5, lead.OutsourcingScore)
	assert.Contains(t, lead.ScoreJustification, "base 3 (manufacturing)")
	assert.Contains(t, lead.ScoreJustification, "Contract manufacturing (+2)")
	assert.Equal(t, "Low Priority - Add to nurture campaign", lead.NextAction)
	assert.Equal(t, []string{"info@acmepharma.com"}, lead.Emails)
	assert.Equal(t, "Himachal Pradesh", lead.Location)
	assert.True(t, lead.ContactFound)
	assert.Contains(t, lead.Notes, "keyword fallback")

	// Stage order and persistence.
	assert.Equal(t, []model.RunStatus{
		model.RunStatusMerging,
		model.RunStatusClassifying,
		model.RunStatusScoring,
		model.RunStatusEnriching,
	}, st.statuses)
	require.Len(t, st.completed, 1)
	assert.Equal(t, model.RunStatusComplete, st.completed[0].status)
	assert.Empty(t, st.completed[0].errMsg)
	require.Len(t, st.upserted, 1)
	assert.Same(t, lead, st.upserted[0])
}

func TestRun_NoRecords(t *testing.T) {
	st := &fakeStore{}
	p := newTestPipeline(st)

	_, _, err := p.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoSourceRecords)
	assert.Zero(t, st.nextID, "no run is created for an empty collection")
}

func TestRun_AllRecordsUnidentifiable(t *testing.T) {
	st := &fakeStore{}
	p := newTestPipeline(st)

	records := []model.SourceRecord{
		{Source: "google", RawText: "nothing usable"},
	}

	run, _, err := p.Run(context.Background(), records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no identifiable records")

	assert.Equal(t, model.RunStatusFailed, run.Status)
	require.Len(t, st.completed, 1)
	assert.Equal(t, model.RunStatusFailed, st.completed[0].status)
	assert.NotEmpty(t, st.completed[0].errMsg)
	assert.Equal(t, 1, st.completed[0].stats.RecordsDropped)
}

func TestRun_UpsertFailureFailsRun(t *testing.T) {
	st := &fakeStore{failUpsert: true}
	p := newTestPipeline(st)

	records := []model.SourceRecord{
		{Source: "google", CompanyName: "Acme", Website: "acme.com", RawText: "pharma"},
	}

	run, _, err := p.Run(context.Background(), records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert leads")
	assert.Equal(t, model.RunStatusFailed, run.Status)
	require.Len(t, st.completed, 1)
	assert.Equal(t, model.RunStatusFailed, st.completed[0].status)
}
