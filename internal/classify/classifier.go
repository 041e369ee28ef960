// Package classify assigns a business-model category to each lead,
// preferring the completion backend and falling back to deterministic
// keyword scoring when the backend is absent or fails.
package classify

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/registry"
	"github.com/sells-group/leadgen-cli/pkg/anthropic"
)

const systemPrompt = `You are a pharmaceutical industry analyst. Classify the company's business model into exactly one category:
- "manufacturing": owns manufacturing facilities and produces pharma products
- "marketing": focuses on marketing/distribution, likely outsources manufacturing (loan license, third party)
- "hybrid": does both manufacturing and marketing

Respond with ONLY the category word: manufacturing, marketing, or hybrid`

const userPrompt = `Company: %s
Website: %s
Description: %s

Classify this company's business model:`

// corpusLimit caps the text sent to the backend per lead.
const corpusLimit = 2000

// Method records how a lead was classified.
type Method string

const (
	MethodAI       Method = "ai"
	MethodFallback Method = "fallback"
)

// Classifier assigns business models to leads.
type Classifier struct {
	backend anthropic.Client // nil disables the AI path
	cfg     config.AnthropicConfig
	reg     *registry.Registry
}

// New creates a classifier. A nil backend routes every lead through the
// keyword fallback.
func New(backend anthropic.Client, cfg config.AnthropicConfig, reg *registry.Registry) *Classifier {
	return &Classifier{backend: backend, cfg: cfg, reg: reg}
}

// Classify sets lead.BusinessModel and returns the method used. Backend
// errors are never propagated: any failure (timeout, quota, malformed
// response) falls back to keyword scoring for that lead, and the
// fallback is recorded in the lead's notes so downstream consumers can
// tell AI-derived from heuristic-derived labels.
func (c *Classifier) Classify(ctx context.Context, lead *model.Lead) Method {
	if c.backend != nil {
		label, err := c.classifyAI(ctx, lead)
		if err == nil {
			lead.BusinessModel = label
			return MethodAI
		}
		zap.L().Warn("classify: backend failed, using keyword fallback",
			zap.String("domain", lead.CanonicalDomain),
			zap.Error(err),
		)
	}

	lead.BusinessModel = c.keywordClassify(lead)
	lead.AddNote("classified via keyword fallback")
	return MethodFallback
}

// classifyAI sends the classification prompt to the backend, bounded by
// the configured timeout.
func (c *Classifier) classifyAI(ctx context.Context, lead *model.Lead) (model.BusinessModel, error) {
	timeout := time.Duration(c.cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	corpus := truncateCorpus(lead.RawTextCorpus)

	temp := c.cfg.Temperature
	resp, err := c.backend.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		System:      systemPrompt,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(userPrompt, lead.CompanyName, lead.Website, corpus)},
		},
	})
	if err != nil {
		return model.BusinessModelUnset, err
	}

	return parseLabel(resp.Text()), nil
}

// truncateCorpus caps the corpus at corpusLimit bytes, backing up to a
// rune boundary so the backend never receives invalid UTF-8.
func truncateCorpus(corpus string) string {
	if len(corpus) <= corpusLimit {
		return corpus
	}
	cut := corpusLimit
	for cut > 0 && !utf8.RuneStart(corpus[cut]) {
		cut--
	}
	return corpus[:cut]
}

// parseLabel maps a raw backend response onto the allow-list. Exact
// match wins; otherwise the first allow-listed label found anywhere in
// the response wins; anything else defaults to hybrid. Case-insensitive.
func parseLabel(raw string) model.BusinessModel {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.Trim(s, `."'`)

	for _, bm := range model.AllBusinessModels() {
		if s == string(bm) {
			return bm
		}
	}
	for _, bm := range model.AllBusinessModels() {
		if strings.Contains(s, string(bm)) {
			return bm
		}
	}
	return model.BusinessModelHybrid
}

// keywordClassify counts manufacturing-indicating vs marketing-indicating
// keyword occurrences in the lead's name and corpus and classifies by
// majority, hybrid on a tie or when nothing matches. Fully deterministic.
func (c *Classifier) keywordClassify(lead *model.Lead) model.BusinessModel {
	text := strings.ToLower(lead.CompanyName + " " + lead.RawTextCorpus)

	var marketing, manufacturing int
	for _, kw := range c.reg.MarketingKeywords {
		marketing += strings.Count(text, kw)
	}
	for _, kw := range c.reg.ManufacturingKeywords {
		manufacturing += strings.Count(text, kw)
	}

	switch {
	case marketing > manufacturing:
		return model.BusinessModelMarketing
	case manufacturing > marketing:
		return model.BusinessModelManufacturing
	default:
		return model.BusinessModelHybrid
	}
}
