// Package pipeline orchestrates the lead generation stages: merge,
// classify, score, enrich, persist. Stage order is fixed and each
// stage finishes over the whole entity set before the next begins.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadgen-cli/internal/classify"
	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/contact"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/resolver"
	"github.com/sells-group/leadgen-cli/internal/score"
	"github.com/sells-group/leadgen-cli/internal/store"
)

// ErrNoSourceRecords is returned when a run starts with zero records.
// An empty run would silently produce an empty export, so it is fatal.
var ErrNoSourceRecords = eris.New("pipeline: no source records collected")

// Pipeline wires the stages together.
type Pipeline struct {
	cfg        *config.Config
	store      store.Store
	resolver   *resolver.Resolver
	classifier *classify.Classifier
	scorer     *score.Scorer
	enricher   *contact.Enricher
}

// New creates a pipeline with all stage dependencies.
func New(
	cfg *config.Config,
	st store.Store,
	res *resolver.Resolver,
	cls *classify.Classifier,
	sc *score.Scorer,
	enr *contact.Enricher,
) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		store:      st,
		resolver:   res,
		classifier: cls,
		scorer:     sc,
		enricher:   enr,
	}
}

// Run processes records through every stage and persists the resulting
// leads. Per-lead stage failures are logged with the lead's domain and
// leave that field unset; they never drop the lead or abort the run.
// Returns the completed run and the final leads.
func (p *Pipeline) Run(ctx context.Context, records []model.SourceRecord) (*model.Run, []*model.Lead, error) {
	if len(records) == 0 {
		return nil, nil, ErrNoSourceRecords
	}

	start := time.Now()
	log := zap.L().With(zap.Int("records", len(records)))
	log.Info("pipeline: starting run")

	run, err := p.store.CreateRun(ctx)
	if err != nil {
		return nil, nil, eris.Wrap(err, "pipeline: create run")
	}

	setStatus := func(status model.RunStatus) {
		run.Status = status
		if statusErr := p.store.UpdateRunStatus(ctx, run.ID, status); statusErr != nil {
			log.Warn("pipeline: failed to update status",
				zap.String("status", string(status)),
				zap.Error(statusErr),
			)
		}
	}

	fail := func(stage string, failErr error) (*model.Run, []*model.Lead, error) {
		run.Stats.DurationMillis = time.Since(start).Milliseconds()
		run.Error = failErr.Error()
		if completeErr := p.store.CompleteRun(ctx, run.ID, model.RunStatusFailed, run.Stats, run.Error); completeErr != nil {
			log.Warn("pipeline: failed to record run failure", zap.Error(completeErr))
		}
		run.Status = model.RunStatusFailed
		return run, nil, eris.Wrap(failErr, "pipeline: "+stage)
	}

	// Merge.
	setStatus(model.RunStatusMerging)
	leads, dropped := p.resolver.Merge(records)
	run.Stats.RecordsIn = len(records)
	run.Stats.RecordsDropped = dropped
	run.Stats.Leads = len(leads)
	if len(leads) == 0 {
		return fail("merge", eris.New("no identifiable records"))
	}

	// Classify, bounded concurrency.
	setStatus(model.RunStatusClassifying)
	if err := p.classifyAll(ctx, leads, &run.Stats); err != nil {
		return fail("classify", err)
	}

	// Score. Pure per lead.
	setStatus(model.RunStatusScoring)
	for _, lead := range leads {
		p.scorer.Score(lead)
	}

	// Enrich contacts.
	setStatus(model.RunStatusEnriching)
	for _, lead := range leads {
		p.enricher.Enrich(lead)
		if lead.ContactFound {
			run.Stats.ContactFound++
		}
	}

	// Persist.
	if err := p.store.UpsertLeads(ctx, leads); err != nil {
		return fail("upsert leads", err)
	}

	run.Stats.DurationMillis = time.Since(start).Milliseconds()
	if err := p.store.CompleteRun(ctx, run.ID, model.RunStatusComplete, run.Stats, ""); err != nil {
		log.Warn("pipeline: failed to complete run", zap.Error(err))
	}
	run.Status = model.RunStatusComplete

	log.Info("pipeline: run complete",
		zap.String("run_id", run.ID),
		zap.Int("leads", run.Stats.Leads),
		zap.Int("dropped", run.Stats.RecordsDropped),
		zap.Int("classified_ai", run.Stats.ClassifiedAI),
		zap.Int("classified_fallback", run.Stats.ClassifiedFallback),
		zap.Int("contact_found", run.Stats.ContactFound),
		zap.Int64("duration_ms", run.Stats.DurationMillis),
	)

	return run, leads, nil
}

// classifyAll classifies every lead with bounded concurrency. Backend
// failures degrade to the keyword fallback inside the classifier, so
// only context cancellation can abort the stage.
func (p *Pipeline) classifyAll(ctx context.Context, leads []*model.Lead, stats *model.RunStats) error {
	maxConcurrent := p.cfg.Pipeline.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for _, lead := range leads {
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			method := p.classifier.Classify(ctx, lead)
			mu.Lock()
			switch method {
			case classify.MethodAI:
				stats.ClassifiedAI++
			case classify.MethodFallback:
				stats.ClassifiedFallback++
			}
			mu.Unlock()
			return nil
		})
	}

	return g.Wait()
}
