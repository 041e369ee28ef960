// Package store persists leads and pipeline runs. Two backends are
// provided: SQLite for single-operator use and PostgreSQL for shared
// deployments. Leads upsert by canonical domain so reruns refresh
// rather than duplicate.
package store

import (
	"context"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	BusinessModel model.BusinessModel `json:"business_model,omitempty"`
	MinScore      int                 `json:"min_score,omitempty"`
	ContactFound  *bool               `json:"contact_found,omitempty"`
	Source        string              `json:"source,omitempty"`
	Limit         int                 `json:"limit,omitempty"`
	Offset        int                 `json:"offset,omitempty"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the lead pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, status model.RunStatus, stats model.RunStats, errMsg string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Leads
	UpsertLeads(ctx context.Context, leads []*model.Lead) error
	GetLead(ctx context.Context, canonicalDomain string) (*model.Lead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
