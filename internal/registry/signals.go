// Package registry holds the keyword and signal registry that drives
// fallback classification and scoring. Defaults are compiled in;
// operators can override them with a YAML file so signal tuning does
// not require a rebuild.
package registry

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// maxAdjustment bounds a single signal's score contribution.
const maxAdjustment = 2

// Signal is one scoring signal: a phrase mined from a lead's name or
// text corpus, the score adjustment it applies, and the human-readable
// reason recorded in the justification.
type Signal struct {
	Phrase     string `yaml:"phrase"`
	Adjustment int    `yaml:"adjustment"`
	Reason     string `yaml:"reason"`
}

// Registry holds the classification keyword lists and scoring signals.
type Registry struct {
	MarketingKeywords     []string `yaml:"marketing_keywords"`
	ManufacturingKeywords []string `yaml:"manufacturing_keywords"`
	Signals               []Signal `yaml:"signals"`
}

// Default returns the compiled-in registry.
func Default() *Registry {
	return &Registry{
		MarketingKeywords: []string{
			"loan license", "third party", "franchise", "distribution",
			"marketing company", "propaganda", "virtual pharma", "pcd",
			"pharma franchise", "marketing and distribution", "loan licensee",
		},
		ManufacturingKeywords: []string{
			"manufacturing unit", "who-gmp", "gmp certified", "plant",
			"manufacturing facility", "fda approved", "production unit",
			"manufacturer", "factory", "api manufacturer",
			"contract manufacturing",
		},
		Signals: []Signal{
			{Phrase: "loan license", Adjustment: 2, Reason: "Loan license company"},
			{Phrase: "third party manufacturing", Adjustment: 2, Reason: "Third party manufacturing"},
			{Phrase: "contract manufacturing", Adjustment: 2, Reason: "Contract manufacturing"},
			{Phrase: "propaganda", Adjustment: 1, Reason: "Distribution focused"},
			{Phrase: "pcd", Adjustment: 1, Reason: "PCD pharma"},
			{Phrase: "manufacturing unit", Adjustment: -2, Reason: "Has manufacturing"},
			{Phrase: "who-gmp", Adjustment: -1, Reason: "GMP facility"},
			{Phrase: "factory", Adjustment: -2, Reason: "Owns factory"},
		},
	}
}

// Load returns the registry from the given YAML path, falling back to
// the compiled-in defaults when path is empty. Sections left empty in
// the file keep their defaults.
func Load(path string) (*Registry, error) {
	reg := Default()
	if path == "" {
		return reg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: read %s", path)
	}

	var override Registry
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, eris.Wrapf(err, "registry: parse %s", path)
	}

	if len(override.MarketingKeywords) > 0 {
		reg.MarketingKeywords = override.MarketingKeywords
	}
	if len(override.ManufacturingKeywords) > 0 {
		reg.ManufacturingKeywords = override.ManufacturingKeywords
	}
	if len(override.Signals) > 0 {
		reg.Signals = override.Signals
	}

	if err := reg.Validate(); err != nil {
		return nil, err
	}

	zap.L().Info("registry: loaded signal overrides",
		zap.String("path", path),
		zap.Int("marketing_keywords", len(reg.MarketingKeywords)),
		zap.Int("manufacturing_keywords", len(reg.ManufacturingKeywords)),
		zap.Int("signals", len(reg.Signals)),
	)

	return reg, nil
}

// Validate rejects signals with empty phrases or adjustments outside
// the ±2 bound that keeps the final score reconstructible and clamped.
func (r *Registry) Validate() error {
	for _, s := range r.Signals {
		if s.Phrase == "" {
			return eris.New("registry: signal with empty phrase")
		}
		if s.Adjustment == 0 {
			return eris.Errorf("registry: signal %q has zero adjustment", s.Phrase)
		}
		if s.Adjustment > maxAdjustment || s.Adjustment < -maxAdjustment {
			return eris.Errorf("registry: signal %q adjustment %d exceeds ±%d", s.Phrase, s.Adjustment, maxAdjustment)
		}
	}
	return nil
}
