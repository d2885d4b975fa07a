package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_BrowserHeadersSent(t *testing.T) {
	t.Parallel()

	var got http.Header
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer upstream.Close()

	c := NewClient(upstream.URL)
	_, err := c.FetchDocument(context.Background(), upstream.URL+"/")
	require.NoError(t, err)

	assert.Contains(t, got.Get("User-Agent"), "Mozilla/5.0")
	assert.Contains(t, got.Get("Accept"), "text/html")
	assert.Equal(t, "en-US,en;q=0.9", got.Get("Accept-Language"))
	assert.Equal(t, upstream.URL+"/", got.Get("Referer"))
}

func TestClient_StatusClassification(t *testing.T) {
	t.Parallel()

	status := http.StatusOK
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer upstream.Close()

	c := NewClient(upstream.URL)

	status = http.StatusNotFound
	_, err := c.FetchDocument(context.Background(), upstream.URL)
	assert.True(t, errors.Is(err, ErrNotFound))

	status = http.StatusForbidden
	_, err = c.FetchDocument(context.Background(), upstream.URL)
	assert.True(t, errors.Is(err, ErrAccessDenied))
	assert.Contains(t, err.Error(), "403", "callers pattern-match on the literal status")

	status = http.StatusBadGateway
	_, err = c.FetchDocument(context.Background(), upstream.URL)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrAccessDenied))
}

func TestClient_TimeoutClassified(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer upstream.Close()

	c := &Client{
		client:    &http.Client{Timeout: 50 * time.Millisecond},
		probe:     &http.Client{Timeout: 50 * time.Millisecond},
		baseURL:   upstream.URL,
		userAgent: defaultUserAgent,
	}

	_, err := c.FetchDocument(context.Background(), upstream.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamTimeout))
}

func TestClient_ContextDeadlineClassifiedAsTimeout(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer upstream.Close()

	c := NewClient(upstream.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.ProbeDocument(ctx, upstream.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamTimeout))
}
