// Package score computes the 1-10 outsourcing likelihood score for a
// classified lead. Scoring is a pure function of the lead's own fields,
// so every score is reconstructible from the stored lead.
package score

import (
	"fmt"
	"strings"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/registry"
)

// Base scores by business model. Marketing companies are the most
// likely to outsource manufacturing; in-house manufacturers the least.
const (
	baseManufacturing = 3
	baseMarketing     = 8
	baseHybrid        = 5
)

// Scorer applies registry signals on top of the business-model base.
type Scorer struct {
	reg *registry.Registry
}

// New creates a scorer.
func New(reg *registry.Registry) *Scorer {
	return &Scorer{reg: reg}
}

// Score sets the lead's OutsourcingScore, ScoreJustification, and
// NextAction. The score starts from the business-model base, applies
// each matched registry signal, and clamps into [1,10]. The
// justification names the base and every fired signal with its
// direction.
func (s *Scorer) Score(lead *model.Lead) {
	base, baseReason := baseFor(lead.BusinessModel)
	text := strings.ToLower(lead.CompanyName + " " + lead.RawTextCorpus)

	score := base
	reasons := []string{baseReason}

	manufacturingTies := false
	for _, kw := range s.reg.ManufacturingKeywords {
		if strings.Contains(text, kw) {
			manufacturingTies = true
			break
		}
	}

	for _, sig := range s.reg.Signals {
		if !strings.Contains(text, sig.Phrase) {
			continue
		}
		score += sig.Adjustment
		reasons = append(reasons, fmt.Sprintf("%s (%+d)", sig.Reason, sig.Adjustment))
	}

	// A pure marketing shell with no manufacturing ties at all is a
	// weaker lead than its label suggests: nothing in its text anchors
	// it to actual production needs.
	if !manufacturingTies {
		for _, phrase := range []string{"marketing company", "franchise"} {
			if strings.Contains(text, phrase) {
				score--
				reasons = append(reasons, fmt.Sprintf("%s, no manufacturing ties (-1)", phrase))
				break
			}
		}
	}

	lead.OutsourcingScore = clamp(score)
	lead.ScoreJustification = strings.Join(reasons, "; ")
	lead.NextAction = NextAction(lead.OutsourcingScore)
}

// baseFor returns the base score and its justification fragment for a
// business model. An unset model scores like hybrid.
func baseFor(bm model.BusinessModel) (int, string) {
	switch bm {
	case model.BusinessModelManufacturing:
		return baseManufacturing, fmt.Sprintf("base %d (manufacturing)", baseManufacturing)
	case model.BusinessModelMarketing:
		return baseMarketing, fmt.Sprintf("base %d (marketing)", baseMarketing)
	case model.BusinessModelHybrid:
		return baseHybrid, fmt.Sprintf("base %d (hybrid)", baseHybrid)
	default:
		return baseHybrid, fmt.Sprintf("base %d (unclassified)", baseHybrid)
	}
}

// NextAction maps a final score onto the fixed outreach thresholds.
func NextAction(score int) string {
	switch {
	case score >= 8:
		return "High Priority - Contact immediately"
	case score >= 6:
		return "Medium Priority - Research and contact"
	case score >= 4:
		return "Low Priority - Add to nurture campaign"
	default:
		return "Monitor - May not be a good fit"
	}
}

func clamp(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}
