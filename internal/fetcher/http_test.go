package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "leadgen-cli/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte("<html>listing</html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{})
	body, err := f.Download(context.Background(), srv.URL)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "<html>listing</html>", string(data))
}

func TestDownload_RetriesOn500(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxRetries: 3})
	body, err := f.Download(context.Background(), srv.URL)
	require.NoError(t, err)
	body.Close()
	assert.Equal(t, int32(2), calls.Load())
}

func TestDownload_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{})
	_, err := f.Download(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestDownload_ExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxRetries: 2})
	_, err := f.Download(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retries exhausted")
}

func TestDownload_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewHTTPFetcher(HTTPOptions{})
	_, err := f.Download(ctx, srv.URL)
	assert.Error(t, err)
}

func TestAdaptiveLimiter(t *testing.T) {
	lim := NewAdaptiveLimiter(2, 2)
	assert.Equal(t, rate.Limit(2), lim.Limit())

	lim.OnSuccess()
	assert.InDelta(t, 2.4, float64(lim.Limit()), 0.001)

	// Rate caps at 2x initial.
	for range 10 {
		lim.OnSuccess()
	}
	assert.Equal(t, rate.Limit(4), lim.Limit())

	lim.OnRateLimit()
	assert.Equal(t, rate.Limit(2), lim.Limit())

	// Rate floors at initial/4.
	for range 10 {
		lim.OnRateLimit()
	}
	assert.Equal(t, rate.Limit(0.5), lim.Limit())
}

func TestLimiterForReusesPerHost(t *testing.T) {
	f := NewHTTPFetcher(HTTPOptions{Timeout: time.Second})

	a := f.limiterFor("https://indiamart.com/suppliers")
	b := f.limiterFor("https://indiamart.com/other")
	c := f.limiterFor("https://tradeindia.com/x")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}
