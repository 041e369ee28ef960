package collect

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/fetcher"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// ListingCollector downloads configured directory listing pages and
// parses supplier entries out of the HTML. Complements the site:
// search path for directories whose listing pages are directly
// reachable.
type ListingCollector struct {
	fetcher *fetcher.HTTPFetcher
	urls    []string
}

// NewListingCollector creates a listing collector.
func NewListingCollector(f *fetcher.HTTPFetcher, urls []string) *ListingCollector {
	return &ListingCollector{fetcher: f, urls: urls}
}

func (c *ListingCollector) Name() string { return "listing" }

// Collect downloads and parses every configured listing URL. A failed
// page is logged and skipped.
func (c *ListingCollector) Collect(ctx context.Context) ([]model.SourceRecord, error) {
	var records []model.SourceRecord

	for _, listingURL := range c.urls {
		body, err := c.fetcher.Download(ctx, listingURL)
		if err != nil {
			if ctx.Err() != nil {
				return records, ctx.Err()
			}
			zap.L().Warn("collect: listing download failed",
				zap.String("url", listingURL),
				zap.Error(err),
			)
			continue
		}

		parsed, err := ParseListing(body, sourceFromListingURL(listingURL))
		body.Close()
		if err != nil {
			zap.L().Warn("collect: listing parse failed",
				zap.String("url", listingURL),
				zap.Error(err),
			)
			continue
		}
		records = append(records, parsed...)
	}

	return records, nil
}

// sourceFromListingURL derives the source label from the listing URL's
// host.
func sourceFromListingURL(listingURL string) string {
	u, err := url.Parse(listingURL)
	if err != nil || u.Host == "" {
		return "listing"
	}
	return sourceFromSite(u.Host)
}
