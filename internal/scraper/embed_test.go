package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anistream/internal/models"
)

// embedUpstream serves an episode page whose iframes are the given
// candidate URLs, plus trembed redirect pages under /trembed/.
func embedUpstream(t *testing.T, redirects map[string]string, candidates func(base string) []string) *httptest.Server {
	t.Helper()

	var upstream *httptest.Server
	upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/episode/show-1x1/":
			page := "<html><body><h1>Show 1x1</h1>"
			for _, c := range candidates(upstream.URL) {
				page += fmt.Sprintf(`<iframe src=%q></iframe>`, c)
			}
			page += "</body></html>"
			_, _ = w.Write([]byte(page))
		case r.URL.Query().Get("trembed") != "":
			body, ok := redirects[r.URL.Query().Get("trembed")]
			if !ok {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(body))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(upstream.Close)
	return upstream
}

func TestResolveEmbedURL_RaceFirstSuccessWins(t *testing.T) {
	t.Parallel()

	redirects := map[string]string{
		// Candidate 2 extracts a blocked provider domain.
		"2": `<iframe class="metaframe" src="https://blockedprov.example/e/9"></iframe>`,
	}
	upstream := embedUpstream(t, redirects, func(base string) []string {
		return []string{
			// Candidate 1: trembed page on a dead port, fails fast.
			"http://127.0.0.1:1/?trembed=1",
			base + "/?trembed=2",
			"https://player.example/e/3",
		}
	})

	s := newTestScraper(t, upstream.URL)

	embedURL, err := s.ResolveEmbedURL(context.Background(), "show-1x1", models.TypeUnknown)
	require.NoError(t, err)
	assert.Equal(t, "https://player.example/e/3", embedURL)

	cached, ok := s.cache.Get("embed:show-1x1:auto")
	require.True(t, ok, "winning URL cached under the embed key")
	assert.Equal(t, embedURL, cached)
}

func TestResolveEmbedURL_CacheConsultedBeforeNetwork(t *testing.T) {
	t.Parallel()

	var fetches atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		http.NotFound(w, r)
	}))
	defer upstream.Close()

	s := newTestScraper(t, upstream.URL)
	s.cache.Set("embed:show-1x1:auto", "https://player.example/cached", embedTTL)

	embedURL, err := s.ResolveEmbedURL(context.Background(), "show-1x1", models.TypeUnknown)
	require.NoError(t, err)
	assert.Equal(t, "https://player.example/cached", embedURL)
	assert.Zero(t, fetches.Load())
}

func TestResolveEmbedURL_AllCandidatesFail(t *testing.T) {
	t.Parallel()

	upstream := embedUpstream(t, nil, func(base string) []string {
		return []string{
			"http://127.0.0.1:1/?trembed=1",
			base + "/?trembed=9", // redirect page answers 500
			"https://blockedprov.example/direct",
		}
	})

	s := newTestScraper(t, upstream.URL)

	_, err := s.ResolveEmbedURL(context.Background(), "show-1x1", models.TypeUnknown)
	require.Error(t, err)

	var raceErr *RaceError
	require.True(t, errors.As(err, &raceErr))
	assert.Len(t, raceErr.Errs, 3)

	_, ok := s.cache.Get("embed:show-1x1:auto")
	assert.False(t, ok, "failures are never cached")
}

func TestResolveEmbedURL_DirectBlockedHostRejected(t *testing.T) {
	t.Parallel()

	s := newTestScraper(t, "http://unused.invalid")

	_, err := s.resolveCandidate(context.Background(), "https://cdn.blockedprov.to/e/1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked provider")
}

func TestExtractRedirectIframe_EntityDecodingAndScheme(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<IFRAME width="100%" data-src="//ok.example/e/5?a=1&amp;b=2" frameborder="0"></IFRAME>
		</body></html>`))
	}))
	defer upstream.Close()

	s := newTestScraper(t, upstream.URL)

	final, err := s.extractRedirectIframe(context.Background(), upstream.URL+"/?trembed=1")
	require.NoError(t, err)
	assert.Equal(t, "https://ok.example/e/5?a=1&b=2", final)
}

func TestEmbedCandidates_IframesFirstCappedAtFive(t *testing.T) {
	t.Parallel()

	mime := "video/mp4"
	var sources []models.StreamingSource
	for i := 0; i < 4; i++ {
		sources = append(sources, models.StreamingSource{
			Type: models.SourceVideo, URL: fmt.Sprintf("https://v/%d", i), MimeType: &mime,
		})
	}
	for i := 0; i < 3; i++ {
		sources = append(sources, models.StreamingSource{
			Type: models.SourceIframe, URL: fmt.Sprintf("https://f/%d", i),
		})
	}

	candidates := embedCandidates(sources)
	require.Len(t, candidates, maxRaceCandidates)
	assert.Equal(t, []string{"https://f/0", "https://f/1", "https://f/2", "https://v/0", "https://v/1"}, candidates)
}

func TestIsRedirectPage(t *testing.T) {
	t.Parallel()

	assert.True(t, isRedirectPage("https://site.tld/?trembed=1&trid=2"))
	assert.False(t, isRedirectPage("https://player.example/e/3"))
}
