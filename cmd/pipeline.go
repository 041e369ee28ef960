package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/classify"
	"github.com/sells-group/leadgen-cli/internal/collect"
	"github.com/sells-group/leadgen-cli/internal/contact"
	"github.com/sells-group/leadgen-cli/internal/fetcher"
	"github.com/sells-group/leadgen-cli/internal/pipeline"
	"github.com/sells-group/leadgen-cli/internal/registry"
	"github.com/sells-group/leadgen-cli/internal/resolver"
	"github.com/sells-group/leadgen-cli/internal/score"
	"github.com/sells-group/leadgen-cli/internal/store"
	anthropicpkg "github.com/sells-group/leadgen-cli/pkg/anthropic"
	"github.com/sells-group/leadgen-cli/pkg/serpapi"
)

// pipelineEnv bundles the store and pipeline built from config.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

func (e *pipelineEnv) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}

func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	reg, err := registry.Load(cfg.Signals.Path)
	if err != nil {
		st.Close()
		return nil, eris.Wrap(err, "load signal registry")
	}

	var backend anthropicpkg.Client
	if cfg.Anthropic.Key != "" {
		backend = anthropicpkg.NewClient(cfg.Anthropic.Key)
	} else {
		zap.L().Warn("no anthropic key set, classification uses keyword fallback only")
	}

	p := pipeline.New(
		cfg,
		st,
		resolver.New(resolver.Config{NameKeyFallback: cfg.Pipeline.NameKeyFallback}),
		classify.New(backend, cfg.Anthropic, reg),
		score.New(reg),
		contact.New(contact.Config{GuessEmails: cfg.Pipeline.GuessEmails}),
	)

	return &pipelineEnv{Store: st, Pipeline: p}, nil
}

// buildCollectors assembles the collectors the config enables. No
// SerpAPI key disables search and directory collection.
func buildCollectors() []collect.Collector {
	var collectors []collect.Collector

	if cfg.Serp.Key != "" {
		var opts []serpapi.Option
		if cfg.Serp.BaseURL != "" {
			opts = append(opts, serpapi.WithBaseURL(cfg.Serp.BaseURL))
		}
		serp := serpapi.NewClient(cfg.Serp.Key, opts...)
		collectors = append(collectors,
			collect.NewSearchCollector(serp, &cfg.Collect, &cfg.Serp),
			collect.NewDirectoryCollector(serp, &cfg.Collect, &cfg.Serp),
		)
	} else {
		zap.L().Warn("no serpapi key set, skipping search and directory collection")
	}

	if len(cfg.Collect.Feeds) > 0 {
		collectors = append(collectors, collect.NewNewsCollector(&cfg.Collect))
	}

	if len(cfg.Collect.ListingURLs) > 0 {
		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
		collectors = append(collectors, collect.NewListingCollector(f, cfg.Collect.ListingURLs))
	}

	return collectors
}
