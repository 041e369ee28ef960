// Package collect gathers raw source records from search, directory,
// and news sources. Collectors run in parallel and fail independently:
// a dead source costs its own records, never the run.
package collect

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Collector produces raw records from one source.
type Collector interface {
	// Name identifies the collector in logs and run stats.
	Name() string
	// Collect fetches all records the source currently offers.
	Collect(ctx context.Context) ([]model.SourceRecord, error)
}

// All runs every collector concurrently and returns the combined
// records in collector order. A collector error skips that source and
// is logged; only context cancellation aborts the whole collection.
func All(ctx context.Context, collectors []Collector) ([]model.SourceRecord, error) {
	results := make([][]model.SourceRecord, len(collectors))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for i, c := range collectors {
		g.Go(func() error {
			records, err := c.Collect(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				zap.L().Warn("collect: source failed, skipping",
					zap.String("collector", c.Name()),
					zap.Error(err),
				)
				return nil
			}
			zap.L().Info("collect: source done",
				zap.String("collector", c.Name()),
				zap.Int("records", len(records)),
			)
			mu.Lock()
			results[i] = records
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []model.SourceRecord
	for _, records := range results {
		out = append(out, records...)
	}
	return out, nil
}

// companyNameFromTitle strips the trailing qualifiers search engines
// append to page titles ("Acme Pharma - Supplier | IndiaMART").
func companyNameFromTitle(title string) string {
	name := title
	if i := strings.IndexAny(name, "-|"); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}
