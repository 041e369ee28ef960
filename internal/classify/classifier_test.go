package classify

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/registry"
	"github.com/sells-group/leadgen-cli/pkg/anthropic"
)

// mockBackend returns a canned response or error.
type mockBackend struct {
	text  string
	err   error
	calls int
	last  anthropic.MessageRequest
}

func (m *mockBackend) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	m.calls++
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: m.text}},
	}, nil
}

func testConfig() config.AnthropicConfig {
	return config.AnthropicConfig{
		Model:       "claude-haiku-4-5-20251001",
		MaxTokens:   64,
		Temperature: 0.1,
		TimeoutSecs: 5,
	}
}

func TestClassify_AIPath(t *testing.T) {
	backend := &mockBackend{text: "manufacturing"}
	c := New(backend, testConfig(), registry.Default())

	lead := &model.Lead{
		CompanyName:   "Acme Pharma",
		Website:       "acmepharma.com",
		RawTextCorpus: "WHO-GMP certified plant in Baddi.",
	}
	method := c.Classify(context.Background(), lead)

	assert.Equal(t, MethodAI, method)
	assert.Equal(t, model.BusinessModelManufacturing, lead.BusinessModel)
	assert.Empty(t, lead.Notes)
	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, "claude-haiku-4-5-20251001", backend.last.Model)
	assert.Contains(t, backend.last.Messages[0].Content, "Acme Pharma")
}

func TestClassify_BackendErrorFallsBack(t *testing.T) {
	backend := &mockBackend{err: eris.New("quota exceeded")}
	c := New(backend, testConfig(), registry.Default())

	lead := &model.Lead{
		CompanyName:   "Zenith Marketing",
		RawTextCorpus: "Loan license and third party distribution.",
	}
	method := c.Classify(context.Background(), lead)

	assert.Equal(t, MethodFallback, method)
	assert.Equal(t, model.BusinessModelMarketing, lead.BusinessModel)
	assert.Contains(t, lead.Notes, "keyword fallback")
}

func TestClassify_NilBackendUsesFallback(t *testing.T) {
	c := New(nil, testConfig(), registry.Default())

	lead := &model.Lead{
		CompanyName:   "Acme Labs",
		RawTextCorpus: "Manufacturing unit with WHO-GMP certified factory.",
	}
	method := c.Classify(context.Background(), lead)

	assert.Equal(t, MethodFallback, method)
	assert.Equal(t, model.BusinessModelManufacturing, lead.BusinessModel)
}

func TestClassify_TruncatesLongCorpus(t *testing.T) {
	backend := &mockBackend{text: "hybrid"}
	c := New(backend, testConfig(), registry.Default())

	long := make([]byte, corpusLimit*2)
	for i := range long {
		long[i] = 'x'
	}
	lead := &model.Lead{CompanyName: "Long Co", RawTextCorpus: string(long)}
	c.Classify(context.Background(), lead)

	assert.LessOrEqual(t, len(backend.last.Messages[0].Content), corpusLimit+200)
}

func TestTruncateCorpus_RuneBoundary(t *testing.T) {
	short := "plant in दिल्ली"
	assert.Equal(t, short, truncateCorpus(short))

	long := strings.Repeat("औ", corpusLimit)
	got := truncateCorpus(long)
	assert.LessOrEqual(t, len(got), corpusLimit)
	assert.True(t, utf8.ValidString(got), "truncation must not split a rune")
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want model.BusinessModel
	}{
		{"exact", "manufacturing", model.BusinessModelManufacturing},
		{"uppercase", "MARKETING", model.BusinessModelMarketing},
		{"trailing period", "hybrid.", model.BusinessModelHybrid},
		{"quoted", `"marketing"`, model.BusinessModelMarketing},
		{"whitespace", "  manufacturing  ", model.BusinessModelManufacturing},
		{"embedded", "The company is a marketing company.", model.BusinessModelMarketing},
		{"unknown defaults to hybrid", "pharmaceutical", model.BusinessModelHybrid},
		{"empty defaults to hybrid", "", model.BusinessModelHybrid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLabel(tt.raw))
		})
	}
}

func TestKeywordClassify(t *testing.T) {
	c := New(nil, testConfig(), registry.Default())

	tests := []struct {
		name string
		lead model.Lead
		want model.BusinessModel
	}{
		{
			"marketing majority",
			model.Lead{RawTextCorpus: "loan license pcd franchise distribution"},
			model.BusinessModelMarketing,
		},
		{
			"manufacturing majority",
			model.Lead{RawTextCorpus: "manufacturing unit factory gmp certified"},
			model.BusinessModelManufacturing,
		},
		{
			"tie is hybrid",
			model.Lead{RawTextCorpus: "loan license company with a manufacturing unit"},
			model.BusinessModelHybrid,
		},
		{
			"no matches is hybrid",
			model.Lead{RawTextCorpus: "generic corporate boilerplate"},
			model.BusinessModelHybrid,
		},
		{
			"company name counts",
			model.Lead{CompanyName: "Acme PCD Pharma", RawTextCorpus: ""},
			model.BusinessModelMarketing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := tt.lead
			assert.Equal(t, tt.want, c.keywordClassify(&lead))
		})
	}
}
