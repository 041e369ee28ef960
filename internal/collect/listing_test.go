package collect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/fetcher"
)

func TestListingCollector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(cardListing))
	}))
	defer srv.Close()

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
	c := NewListingCollector(f, []string{srv.URL + "/suppliers"})

	assert.Equal(t, "listing", c.Name())

	records, err := c.Collect(context.Background())
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "Acme Pharma", records[0].CompanyName)
	assert.Equal(t, "https://acmepharma.com", records[0].Website)
}

func TestListingCollector_DeadPageSkipped(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer dead.Close()

	alive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(microdataListing))
	}))
	defer alive.Close()

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
	c := NewListingCollector(f, []string{dead.URL, alive.URL})

	records, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSourceFromListingURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.indiamart.com/suppliers", "indiamart"},
		{"https://pharmabiz.com/list", "pharmabiz"},
		{"not a url", "listing"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sourceFromListingURL(tt.url), "url %q", tt.url)
	}
}
