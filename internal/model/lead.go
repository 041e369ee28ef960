package model

import "time"

// BusinessModel is the classified business model of a lead.
type BusinessModel string

const (
	BusinessModelUnset         BusinessModel = ""
	BusinessModelManufacturing BusinessModel = "manufacturing"
	BusinessModelMarketing     BusinessModel = "marketing"
	BusinessModelHybrid        BusinessModel = "hybrid"
)

// AllBusinessModels returns the set of assignable business models.
func AllBusinessModels() []BusinessModel {
	return []BusinessModel{
		BusinessModelManufacturing,
		BusinessModelMarketing,
		BusinessModelHybrid,
	}
}

// Lead is the merged, evolving record for one company as it moves
// through the pipeline. Created at first sighting of its canonical
// domain, mutated in place by each stage, terminal after contact
// enrichment.
type Lead struct {
	CanonicalDomain string   `json:"canonical_domain"`
	CompanyName     string   `json:"company_name"`
	Website         string   `json:"website,omitempty"`
	LinkedInURL     string   `json:"linkedin_url,omitempty"`
	Location        string   `json:"location,omitempty"`
	Sources         []string `json:"sources"` // first-sighting order, set semantics

	// RawTextCorpus concatenates contributing records' text for
	// downstream classification and contact mining.
	RawTextCorpus string `json:"raw_text_corpus,omitempty"`

	BusinessModel      BusinessModel `json:"business_model,omitempty"`
	OutsourcingScore   int           `json:"outsourcing_score,omitempty"` // 0 = unset, else 1-10
	ScoreJustification string        `json:"score_justification,omitempty"`

	Emails       []string `json:"emails,omitempty"`
	Phones       []string `json:"phones,omitempty"`
	ContactFound bool     `json:"contact_found"`

	NextAction string `json:"next_action,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// HasSource reports whether the lead already records the given source.
func (l *Lead) HasSource(source string) bool {
	for _, s := range l.Sources {
		if s == source {
			return true
		}
	}
	return false
}

// AddNote appends a note, separated from existing notes with "; ".
func (l *Lead) AddNote(note string) {
	if note == "" {
		return
	}
	if l.Notes == "" {
		l.Notes = note
		return
	}
	l.Notes += "; " + note
}

// RunStatus represents the state of a pipeline run.
type RunStatus string

const (
	RunStatusQueued      RunStatus = "queued"
	RunStatusCollecting  RunStatus = "collecting"
	RunStatusMerging     RunStatus = "merging"
	RunStatusClassifying RunStatus = "classifying"
	RunStatusScoring     RunStatus = "scoring"
	RunStatusEnriching   RunStatus = "enriching"
	RunStatusComplete    RunStatus = "complete"
	RunStatusFailed      RunStatus = "failed"
)

// RunStats is the aggregate observability contract of a run. Every
// per-lead failure surfaces here as a count, never as an error escaping
// the orchestrator.
type RunStats struct {
	RecordsIn          int   `json:"records_in"`
	RecordsDropped     int   `json:"records_dropped"` // no derivable identity key
	Leads              int   `json:"leads"`
	ClassifiedAI       int   `json:"classified_ai"`
	ClassifiedFallback int   `json:"classified_fallback"`
	ContactFound       int   `json:"contact_found"`
	DurationMillis     int64 `json:"duration_ms"`
}

// Run represents one pipeline execution.
type Run struct {
	ID        string    `json:"id"`
	Status    RunStatus `json:"status"`
	Stats     RunStats  `json:"stats"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
