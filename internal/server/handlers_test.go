package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anistream/internal/cache"
	"anistream/internal/config"
	"anistream/internal/scraper"
)

func newTestServer(t *testing.T, upstream http.HandlerFunc) *Server {
	t.Helper()

	up := httptest.NewServer(upstream)
	t.Cleanup(up.Close)

	cfg := &config.Config{
		BaseURL:      up.URL,
		Languages:    []string{"Hindi", "English"},
		BlockedHosts: []string{"blockedprov"},
	}
	store := cache.New()
	t.Cleanup(store.Close)

	return New(cfg, scraper.New(cfg, store), store)
}

func doRequest(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleContent_NotFoundEnvelope(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	rec := doRequest(t, s, "/api/content/ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
}

func TestHandleContent_Success(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/series/naruto/" {
			_, _ = w.Write([]byte(`<html><body><h1>Naruto</h1></body></html>`))
			return
		}
		http.NotFound(w, r)
	})

	rec := doRequest(t, s, "/api/content/naruto")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	content, ok := body["content"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "naruto", content["id"])
	assert.Equal(t, "series", content["type"])
	assert.Equal(t, "Naruto", content["title"])
}

func TestHandleSearch_RequiresQuery(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	rec := doRequest(t, s, "/api/search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["success"])
}

func TestHandleSearch_Success(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("s") == "naruto" {
			_, _ = w.Write([]byte(`<html><body><div class="items">
				<article class="item"><a href="/series/naruto/"><img alt="Naruto" src="/n.jpg"></a></article>
			</div></body></html>`))
			return
		}
		http.NotFound(w, r)
	})

	rec := doRequest(t, s, "/api/search?q=naruto")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	results, ok := body["results"].([]interface{})
	require.True(t, ok)
	require.Len(t, results, 1)

	pagination, ok := body["pagination"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 1, pagination["currentPage"])
}

func TestHandleEmbed_NotFoundServesHTML(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	rec := doRequest(t, s, "/embed/ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Content Not Found")
	assert.NotContains(t, rec.Body.String(), `"success"`)
}

func TestHandleEmbed_Success(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/episode/show-1x1/" {
			_, _ = w.Write([]byte(`<html><body><h1>Show 1x1</h1>
				<iframe src="https://player.example/e/1"></iframe></body></html>`))
			return
		}
		http.NotFound(w, r)
	})

	rec := doRequest(t, s, "/embed/show-1x1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `src="https://player.example/e/1"`)
	assert.Contains(t, rec.Body.String(), "window.open = function() { return null; }")
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	rec := doRequest(t, s, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["uptime"])
}

func TestCORSHeadersPresent(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	rec := doRequest(t, s, "/health")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
