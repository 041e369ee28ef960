package collect

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// ParseListing extracts source records from a saved directory listing
// page. Two shapes are recognized: schema.org Organization microdata,
// and the common card layout where each entry is an h2/h3 heading
// anchor with surrounding description text. Used by the import path
// for listing pages fetched outside the pipeline.
func ParseListing(r io.Reader, source string) ([]model.SourceRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "collect: parse listing html")
	}

	var records []model.SourceRecord

	doc.Find(`[itemtype$="schema.org/Organization"]`).Each(func(_ int, org *goquery.Selection) {
		name := strings.TrimSpace(org.Find(`[itemprop="name"]`).First().Text())
		website, _ := org.Find(`[itemprop="url"]`).First().Attr("href")
		if name == "" && website == "" {
			return
		}
		records = append(records, model.SourceRecord{
			Source:      source,
			CompanyName: name,
			Website:     website,
			RawText:     collapseSpace(org.Text()),
		})
	})
	if len(records) > 0 {
		return records, nil
	}

	doc.Find("h2 a[href], h3 a[href]").Each(func(_ int, a *goquery.Selection) {
		name := strings.TrimSpace(a.Text())
		if name == "" {
			return
		}
		website, _ := a.Attr("href")
		records = append(records, model.SourceRecord{
			Source:      source,
			CompanyName: companyNameFromTitle(name),
			Website:     website,
			RawText:     collapseSpace(a.Closest("li, article, div").Text()),
		})
	})

	return records, nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
