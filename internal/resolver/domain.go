package resolver

import (
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// legalSuffixes are trailing tokens stripped when deriving a name-based
// identity key. Order does not matter; stripping repeats until no
// suffix remains ("Acme Pharma Pvt Ltd" → "acme pharma").
var legalSuffixes = map[string]bool{
	"pvt":          true,
	"ltd":          true,
	"llp":          true,
	"llc":          true,
	"inc":          true,
	"co":           true,
	"corp":         true,
	"plc":          true,
	"private":      true,
	"limited":      true,
	"incorporated": true,
	"corporation":  true,
	"company":      true,
}

// CanonicalDomain derives the deduplication identity key from a website
// URL: lowercase host with scheme, leading www, port, path and query
// stripped. Returns "" when no host can be derived.
func CanonicalDomain(website string) string {
	s := strings.TrimSpace(website)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimSuffix(host, ".")
	if !strings.Contains(host, ".") {
		// Not a plausible domain (bare word, empty).
		return ""
	}
	return host
}

// NameKey derives the weaker fallback identity key from a company name:
// NFKC-folded, lowercased, punctuation removed, legal suffixes
// stripped. The key is exact-match only, which under-merges wildly
// different formattings of the same company rather than guessing.
func NameKey(name string) string {
	s := norm.NFKC.String(strings.TrimSpace(name))
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t':
			b.WriteByte(' ')
		default:
			// Punctuation becomes a separator so "A.B.C. Pharma"
			// and "ABC Pharma" stay distinct keys.
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	for len(fields) > 0 && legalSuffixes[fields[len(fields)-1]] {
		fields = fields[:len(fields)-1]
	}
	// A name that was nothing but legal boilerplate yields no key, so
	// the record is dropped rather than merged with every other "Ltd".
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, " ")
}
