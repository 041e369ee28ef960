package collect

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/serpapi"
)

// SearchCollector runs the configured keyword queries through Google
// search and turns each organic result into a source record.
type SearchCollector struct {
	serp    serpapi.Client
	limiter *rate.Limiter
	cfg     *config.CollectConfig
	serpCfg *config.SerpConfig
}

// NewSearchCollector creates a search collector.
func NewSearchCollector(serp serpapi.Client, cfg *config.CollectConfig, serpCfg *config.SerpConfig) *SearchCollector {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &SearchCollector{
		serp:    serp,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		cfg:     cfg,
		serpCfg: serpCfg,
	}
}

func (c *SearchCollector) Name() string { return "search" }

// Collect searches every configured keyword. A failed keyword is
// logged and skipped; the remaining keywords still run.
func (c *SearchCollector) Collect(ctx context.Context) ([]model.SourceRecord, error) {
	var records []model.SourceRecord

	for _, keyword := range c.cfg.Keywords {
		if err := c.limiter.Wait(ctx); err != nil {
			return records, eris.Wrap(err, "collect: rate limit wait")
		}

		resp, err := c.serp.Search(ctx, keyword,
			serpapi.WithNum(c.cfg.MaxPerKeyword),
			serpapi.WithCountry(c.serpCfg.Country),
			serpapi.WithLanguage(c.serpCfg.Language),
		)
		if err != nil {
			if ctx.Err() != nil {
				return records, ctx.Err()
			}
			zap.L().Warn("collect: keyword search failed",
				zap.String("keyword", keyword),
				zap.Error(err),
			)
			continue
		}

		for _, hit := range resp.OrganicResults {
			if hit.Link == "" && hit.Title == "" {
				continue
			}
			records = append(records, model.SourceRecord{
				Source:      "google",
				CompanyName: companyNameFromTitle(hit.Title),
				Website:     hit.Link,
				RawText:     hit.Snippet,
				Keyword:     keyword,
			})
		}
	}

	return records, nil
}
