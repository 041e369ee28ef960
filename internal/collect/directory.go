package collect

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/serpapi"
)

// DirectoryCollector mines B2B directories (IndiaMART and friends)
// through Google site: queries, one query set per directory.
type DirectoryCollector struct {
	serp    serpapi.Client
	limiter *rate.Limiter
	cfg     *config.CollectConfig
	serpCfg *config.SerpConfig
}

// NewDirectoryCollector creates a directory collector.
func NewDirectoryCollector(serp serpapi.Client, cfg *config.CollectConfig, serpCfg *config.SerpConfig) *DirectoryCollector {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &DirectoryCollector{
		serp:    serp,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		cfg:     cfg,
		serpCfg: serpCfg,
	}
}

func (c *DirectoryCollector) Name() string { return "directory" }

// Collect runs every directory query against every directory site. A
// failed query is logged and skipped.
func (c *DirectoryCollector) Collect(ctx context.Context) ([]model.SourceRecord, error) {
	var records []model.SourceRecord

	for _, site := range c.cfg.DirectorySites {
		source := sourceFromSite(site)

		for _, query := range c.cfg.DirectoryQueries {
			if err := c.limiter.Wait(ctx); err != nil {
				return records, eris.Wrap(err, "collect: rate limit wait")
			}

			fullQuery := fmt.Sprintf("site:%s %s", site, query)
			resp, err := c.serp.Search(ctx, fullQuery,
				serpapi.WithNum(c.cfg.MaxPerDirectory),
				serpapi.WithCountry(c.serpCfg.Country),
				serpapi.WithLanguage(c.serpCfg.Language),
			)
			if err != nil {
				if ctx.Err() != nil {
					return records, ctx.Err()
				}
				zap.L().Warn("collect: directory query failed",
					zap.String("site", site),
					zap.String("query", query),
					zap.Error(err),
				)
				continue
			}

			for _, hit := range resp.OrganicResults {
				if hit.Link == "" && hit.Title == "" {
					continue
				}
				records = append(records, model.SourceRecord{
					Source:      source,
					CompanyName: companyNameFromTitle(hit.Title),
					Website:     hit.Link,
					RawText:     hit.Snippet,
					Keyword:     fullQuery,
				})
			}
		}
	}

	return records, nil
}

// sourceFromSite derives the source label from a directory hostname:
// "www.indiamart.com" becomes "indiamart".
func sourceFromSite(site string) string {
	s := strings.TrimPrefix(site, "www.")
	return strings.TrimSuffix(s, ".com")
}
