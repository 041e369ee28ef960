package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// SourceRecord is one raw observation of a company from a single
// collector, before identity resolution. Records are immutable; the
// resolver folds them into Leads.
type SourceRecord struct {
	Source       string `json:"source"`
	CompanyName  string `json:"company_name"`
	Website      string `json:"website,omitempty"`
	RawText      string `json:"raw_text,omitempty"`
	LocationHint string `json:"location_hint,omitempty"`
	Keyword      string `json:"keyword,omitempty"` // query or feed that produced this record
}

// Validate checks the record at the merge boundary. A record with no
// website and a blank company name carries no identity key and cannot
// be merged.
func (r SourceRecord) Validate() error {
	if r.Source == "" {
		return eris.New("record: source is required")
	}
	if strings.TrimSpace(r.Website) == "" && strings.TrimSpace(r.CompanyName) == "" {
		return eris.New("record: no identity key (website and company name both empty)")
	}
	return nil
}
