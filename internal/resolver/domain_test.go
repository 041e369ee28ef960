package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalDomain(t *testing.T) {
	tests := []struct {
		name    string
		website string
		want    string
	}{
		{"full url", "https://www.acmepharma.com/about", "acmepharma.com"},
		{"no scheme", "acmepharma.com", "acmepharma.com"},
		{"no scheme with www", "www.acmepharma.com", "acmepharma.com"},
		{"http scheme", "http://acmepharma.com", "acmepharma.com"},
		{"uppercase host", "HTTPS://WWW.AcmePharma.COM", "acmepharma.com"},
		{"subdomain kept", "https://shop.acmepharma.com", "shop.acmepharma.com"},
		{"port stripped", "https://acmepharma.com:8443/x", "acmepharma.com"},
		{"query and fragment", "https://acmepharma.com/?q=1#top", "acmepharma.com"},
		{"empty", "", ""},
		{"whitespace", "   ", ""},
		{"no dot", "localhost", ""},
		{"garbage", "://///", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalDomain(tt.website))
		})
	}
}

func TestCanonicalDomain_EquivalentForms(t *testing.T) {
	forms := []string{
		"https://www.acmepharma.com",
		"http://acmepharma.com/",
		"www.acmepharma.com",
		"acmepharma.com/products",
		"HTTPS://ACMEPHARMA.COM",
	}
	for _, f := range forms {
		assert.Equal(t, "acmepharma.com", CanonicalDomain(f), "form %q", f)
	}
}

func TestNameKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Acme Pharma", "acme pharma"},
		{"legal suffix pvt ltd", "Acme Pharma Pvt. Ltd.", "acme pharma"},
		{"legal suffix private limited", "Acme Pharma Private Limited", "acme pharma"},
		{"punctuation", "Acme-Pharma, Inc.", "acme pharma"},
		{"extra spaces", "  Acme   Pharma  ", "acme pharma"},
		{"empty", "", ""},
		{"only suffix", "Ltd", ""},
		{"only suffixes", "Pvt. Ltd.", ""},
		{"only suffixes long form", "Private Limited Company", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NameKey(tt.input))
		})
	}
}

func TestNameKey_EquivalentForms(t *testing.T) {
	forms := []string{
		"Sunrise Remedies Pvt Ltd",
		"SUNRISE REMEDIES PVT. LTD.",
		"sunrise remedies",
		"Sunrise  Remedies, Private Limited",
	}
	for _, f := range forms {
		assert.Equal(t, "sunrise remedies", NameKey(f), "form %q", f)
	}
}
