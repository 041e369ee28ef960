package collect

import (
	"context"

	"github.com/mmcdole/gofeed"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// NewsCollector pulls industry RSS feeds and emits one record per
// item. News items carry no company website, so they only merge into
// existing leads through the name key.
type NewsCollector struct {
	parser  *gofeed.Parser
	limiter *rate.Limiter
	cfg     *config.CollectConfig
}

// NewNewsCollector creates a news collector.
func NewNewsCollector(cfg *config.CollectConfig) *NewsCollector {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &NewsCollector{
		parser:  gofeed.NewParser(),
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		cfg:     cfg,
	}
}

func (c *NewsCollector) Name() string { return "news" }

// Collect parses every configured feed. A failed feed is logged and
// skipped.
func (c *NewsCollector) Collect(ctx context.Context) ([]model.SourceRecord, error) {
	var records []model.SourceRecord

	for _, feedURL := range c.cfg.Feeds {
		if err := c.limiter.Wait(ctx); err != nil {
			return records, eris.Wrap(err, "collect: rate limit wait")
		}

		feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			if ctx.Err() != nil {
				return records, ctx.Err()
			}
			zap.L().Warn("collect: feed parse failed",
				zap.String("feed", feedURL),
				zap.Error(err),
			)
			continue
		}

		for _, item := range feed.Items {
			name := companyNameFromTitle(item.Title)
			if name == "" {
				continue
			}
			records = append(records, model.SourceRecord{
				Source:      "news",
				CompanyName: name,
				RawText:     item.Title + " " + item.Description,
			})
		}
	}

	return records, nil
}
