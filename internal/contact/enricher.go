// Package contact extracts contact details (emails, phone numbers,
// LinkedIn URLs, locations) from a lead's accumulated text. Extraction
// is deterministic and makes no network calls.
package contact

import (
	"regexp"
	"strings"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/resolver"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	// Indian formats: bare 10 digits, 5-5 or 4-6 split, optional +91.
	phonePattern = regexp.MustCompile(`(?:\+91[-\s]?)?(?:[0-9]{10}|[0-9]{5}[-\s][0-9]{5}|[0-9]{4}[-\s][0-9]{6})`)

	linkedinPattern = regexp.MustCompile(`(?:https?://)?(?:www\.)?linkedin\.com/company/[a-zA-Z0-9\-]+/?`)

	phoneSeparators = strings.NewReplacer(" ", "", "-", "")
)

// placeholderDomains are filtered out of extracted emails.
var placeholderDomains = []string{"example.com", "test.com", "domain.com"}

// guessPrefixes are the mailbox names tried when no real email was
// found, most common first.
var guessPrefixes = []string{"info", "contact", "sales"}

// pharmaHubs lists Indian cities and states with significant pharma
// activity, scanned longest-phrase-first so "himachal pradesh" wins
// over "himachal".
var pharmaHubs = []string{
	"himachal pradesh", "tamil nadu", "uttarakhand", "maharashtra",
	"gujarat", "karnataka", "telangana", "rajasthan", "haryana",
	"himachal", "bengaluru", "bangalore", "ahmedabad", "hyderabad",
	"chandigarh", "panchkula", "vadodara", "chennai", "kolkata",
	"lucknow", "mumbai", "indore", "nagpur", "bhopal", "jaipur",
	"mohali", "sikkim", "baddi", "delhi", "surat", "pune", "goa",
}

// Config tunes contact enrichment.
type Config struct {
	// GuessEmails enables pattern-guessed addresses (info@domain and
	// friends) when extraction finds nothing. Guessed addresses are
	// unverified and always flagged in the lead's notes.
	GuessEmails bool
}

// Enricher fills a lead's contact fields from its text corpus.
type Enricher struct {
	cfg Config
}

// New creates an enricher.
func New(cfg Config) *Enricher {
	return &Enricher{cfg: cfg}
}

// Enrich extracts emails, phones, a LinkedIn company URL, and a
// location hint from the lead's name, website, and corpus, then sets
// ContactFound. Already-set fields are kept; enrichment only fills
// gaps and appends.
func (e *Enricher) Enrich(lead *model.Lead) {
	combined := lead.CompanyName + " " + lead.Website + " " + lead.RawTextCorpus

	emails := ExtractEmails(lead.RawTextCorpus)
	if len(emails) == 0 && e.cfg.GuessEmails {
		if guessed := guessEmails(lead.CanonicalDomain); len(guessed) > 0 {
			emails = guessed
			lead.AddNote("emails are pattern-guessed, unverified")
		}
	}
	lead.Emails = mergeUnique(lead.Emails, emails)

	lead.Phones = mergeUnique(lead.Phones, ExtractPhones(lead.RawTextCorpus))

	if lead.LinkedInURL == "" {
		lead.LinkedInURL = ExtractLinkedIn(combined)
	}
	if lead.Location == "" {
		lead.Location = ExtractLocation(combined)
	}

	lead.ContactFound = len(lead.Emails) > 0 || len(lead.Phones) > 0 || lead.LinkedInURL != ""
}

// ExtractEmails returns the lowercased, deduplicated email addresses
// found in text, in first-occurrence order. Placeholder domains are
// dropped.
func ExtractEmails(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range emailPattern.FindAllString(text, -1) {
		email := strings.ToLower(m)
		if seen[email] || isPlaceholder(email) {
			continue
		}
		seen[email] = true
		out = append(out, email)
	}
	return out
}

func isPlaceholder(email string) bool {
	for _, d := range placeholderDomains {
		if strings.Contains(email, d) {
			return true
		}
	}
	return false
}

// ExtractPhones returns normalized phone numbers found in text, in
// first-occurrence order. Separators are stripped so "+91-98765 43210"
// becomes "+919876543210"; matches shorter than 10 digits are dropped.
func ExtractPhones(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range phonePattern.FindAllString(text, -1) {
		phone := phoneSeparators.Replace(m)
		if len(phone) < 10 || seen[phone] {
			continue
		}
		seen[phone] = true
		out = append(out, phone)
	}
	return out
}

// ExtractLinkedIn returns the first LinkedIn company URL in text,
// normalized to https, or "" when none is present. URLs are never
// fabricated from the company name.
func ExtractLinkedIn(text string) string {
	m := linkedinPattern.FindString(text)
	if m == "" {
		return ""
	}
	if !strings.HasPrefix(m, "http") {
		m = "https://" + m
	}
	return m
}

// ExtractLocation returns the first Indian pharma-hub city or state
// mentioned in text, title-cased, or "" when none is present.
func ExtractLocation(text string) string {
	lower := strings.ToLower(text)
	for _, hub := range pharmaHubs {
		if strings.Contains(lower, hub) {
			return titleCase(hub)
		}
	}
	return ""
}

// guessEmails builds common mailbox addresses for a domain. Name-keyed
// leads have no real domain to guess against.
func guessEmails(domain string) []string {
	if domain == "" || strings.HasPrefix(domain, resolver.NameKeyPrefix) {
		return nil
	}
	out := make([]string, 0, len(guessPrefixes))
	for _, prefix := range guessPrefixes {
		out = append(out, prefix+"@"+domain)
	}
	return out
}

func mergeUnique(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[v] = true
	}
	for _, v := range extra {
		if !seen[v] {
			seen[v] = true
			existing = append(existing, v)
		}
	}
	return existing
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
