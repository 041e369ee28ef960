// Package resolver merges raw source records into deduplicated leads
// keyed by canonical domain.
package resolver

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// NameKeyPrefix marks identity keys derived from a normalized company
// name rather than a canonical domain.
const NameKeyPrefix = "name:"

// Config tunes identity resolution.
type Config struct {
	// NameKeyFallback enables the normalized-company-name identity key
	// for records without a website. The name key is weaker than the
	// domain key: it can merge two distinct companies with the same
	// normalized name and will not merge the same company under
	// different name formattings. Disabling it drops website-less
	// records instead.
	NameKeyFallback bool
}

// Resolver folds source records into leads.
type Resolver struct {
	cfg Config
}

// New creates a resolver.
func New(cfg Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// Merge folds records into leads in arrival order. Records that yield
// no identity key are dropped and counted, never fatal. Leads are
// returned in first-sighting order of their key; merging is
// additive-only (first-writer-wins per scalar field, union for
// collections). Deterministic for a fixed input ordering.
func (r *Resolver) Merge(records []model.SourceRecord) ([]*model.Lead, int) {
	byKey := make(map[string]*model.Lead)
	var order []string
	dropped := 0

	for _, rec := range records {
		key := r.identityKey(rec)
		if key == "" {
			dropped++
			zap.L().Debug("resolver: dropped record with no identity key",
				zap.String("source", rec.Source),
				zap.String("company_name", rec.CompanyName),
			)
			continue
		}

		lead, ok := byKey[key]
		if !ok {
			lead = seedLead(key, rec)
			byKey[key] = lead
			order = append(order, key)
			continue
		}
		mergeRecord(lead, rec)
	}

	leads := make([]*model.Lead, 0, len(order))
	for _, key := range order {
		leads = append(leads, byKey[key])
	}

	if dropped > 0 {
		zap.L().Info("resolver: dropped unidentifiable records",
			zap.Int("dropped", dropped),
			zap.Int("merged", len(leads)),
		)
	}

	return leads, dropped
}

// identityKey returns the dedup key for a record, preferring the
// canonical domain and falling back to the normalized name when
// enabled. Empty means the record is unidentifiable.
func (r *Resolver) identityKey(rec model.SourceRecord) string {
	if d := CanonicalDomain(rec.Website); d != "" {
		return d
	}
	if !r.cfg.NameKeyFallback {
		return ""
	}
	if k := NameKey(rec.CompanyName); k != "" {
		return NameKeyPrefix + k
	}
	return ""
}

// seedLead creates a lead from the first record sighted for a key.
func seedLead(key string, rec model.SourceRecord) *model.Lead {
	lead := &model.Lead{
		CanonicalDomain: key,
		CompanyName:     strings.TrimSpace(rec.CompanyName),
		Website:         strings.TrimSpace(rec.Website),
		Location:        strings.TrimSpace(rec.LocationHint),
		RawTextCorpus:   strings.TrimSpace(rec.RawText),
	}
	if rec.Source != "" {
		lead.Sources = []string{rec.Source}
	}
	return lead
}

// mergeRecord applies the additive-only merge rule: fill unset scalar
// fields, union collections, append to the text corpus. An already-set
// field is never overwritten by a different non-empty value.
func mergeRecord(lead *model.Lead, rec model.SourceRecord) {
	if lead.CompanyName == "" {
		lead.CompanyName = strings.TrimSpace(rec.CompanyName)
	}
	if lead.Website == "" {
		lead.Website = strings.TrimSpace(rec.Website)
	}
	if lead.Location == "" {
		lead.Location = strings.TrimSpace(rec.LocationHint)
	}
	if rec.Source != "" && !lead.HasSource(rec.Source) {
		lead.Sources = append(lead.Sources, rec.Source)
	}
	if text := strings.TrimSpace(rec.RawText); text != "" {
		if lead.RawTextCorpus == "" {
			lead.RawTextCorpus = text
		} else if !strings.Contains(lead.RawTextCorpus, text) {
			lead.RawTextCorpus += "\n" + text
		}
	}
}
