package scraper

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"anistream/internal/models"
	"anistream/internal/util"
)

// maxRaceCandidates bounds in-flight embed candidates. Losers are
// abandoned, not cancelled; their results drain into a buffered channel.
const maxRaceCandidates = 5

var embedIframePattern = regexp.MustCompile(`(?is)<iframe[^>]+(?:data-src|src)\s*=\s*["']([^"']+)["']`)

// ResolveEmbedURL resolves the final player iframe URL for the ad-free
// embed: it races the episode's candidate sources, following
// trembed-style redirect pages through a second extraction hop, and
// accepts the first usable URL. Results are cached under the embed key.
func (s *Scraper) ResolveEmbedURL(ctx context.Context, id string, typ models.ContentType) (string, error) {
	key := embedCacheKey(id, typ)
	if v, ok := s.cache.Get(key); ok {
		return v.(string), nil
	}

	streaming, err := s.ResolveEpisodeStreaming(ctx, id)
	if err != nil {
		return "", err
	}

	candidates := embedCandidates(streaming.Sources)
	if len(candidates) == 0 {
		return "", errors.Wrapf(ErrNoSources, "embed %q", id)
	}

	resolved, err := s.raceCandidates(ctx, candidates)
	if err != nil {
		return "", err
	}

	s.cache.Set(key, resolved, embedTTL)
	return resolved, nil
}

func embedCacheKey(id string, typ models.ContentType) string {
	t := "auto"
	if typ != "" && typ != models.TypeUnknown {
		t = string(typ)
	}
	return fmt.Sprintf("embed:%s:%s", id, t)
}

// embedCandidates orders iframe sources before direct video sources and
// caps the list at the race bound.
func embedCandidates(sources []models.StreamingSource) []string {
	var candidates []string
	for _, src := range sources {
		if src.Type == models.SourceIframe {
			candidates = append(candidates, src.URL)
		}
	}
	for _, src := range sources {
		if src.Type == models.SourceVideo {
			candidates = append(candidates, src.URL)
		}
	}
	if len(candidates) > maxRaceCandidates {
		candidates = candidates[:maxRaceCandidates]
	}
	return candidates
}

type raceResult struct {
	url string
	err error
}

// raceCandidates attempts every candidate concurrently and returns the
// first success. Losing goroutines keep running until their own fetch
// finishes; the buffered channel swallows their results so nothing
// blocks or crashes after a winner is picked.
func (s *Scraper) raceCandidates(ctx context.Context, candidates []string) (string, error) {
	results := make(chan raceResult, len(candidates))

	for _, candidate := range candidates {
		go func(c string) {
			u, err := s.resolveCandidate(ctx, c)
			results <- raceResult{url: u, err: err}
		}(candidate)
	}

	var failures []error
	for range candidates {
		res := <-results
		if res.err == nil {
			return res.url, nil
		}
		util.Debug("embed candidate failed", "error", res.err)
		failures = append(failures, res.err)
	}
	return "", &RaceError{Errs: failures}
}

// resolveCandidate turns one candidate source URL into a final player
// URL. Direct URLs resolve immediately; trembed-style redirect pages are
// fetched and their embedded iframe extracted.
func (s *Scraper) resolveCandidate(ctx context.Context, candidate string) (string, error) {
	if s.isBlockedHost(candidate) {
		return "", errors.Errorf("blocked provider %q", candidate)
	}

	if !isRedirectPage(candidate) {
		return candidate, nil
	}

	final, err := s.extractRedirectIframe(ctx, candidate)
	if err != nil {
		return "", err
	}
	if s.isBlockedHost(final) {
		return "", errors.Errorf("blocked provider %q", final)
	}
	return final, nil
}

// isRedirectPage detects trembed-style pages whose only purpose is to
// embed the real player in an iframe.
func isRedirectPage(rawURL string) bool {
	return strings.Contains(rawURL, "trembed") || strings.Contains(rawURL, "trdbmembed")
}

func (s *Scraper) isBlockedHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, blocked := range s.cfg.BlockedHosts {
		if strings.Contains(host, blocked) {
			return true
		}
	}
	return false
}

// extractRedirectIframe fetches a redirect page and pulls the embedded
// iframe URL out of its raw HTML, decoding entities and normalizing the
// scheme.
func (s *Scraper) extractRedirectIframe(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}
	s.client.decorateRequest(req)

	resp, err := s.client.probe.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", errors.Wrapf(ErrUpstreamTimeout, "%s", pageURL)
		}
		return "", errors.Wrap(err, "failed to fetch redirect page")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return "", errors.Errorf("redirect page returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errors.Wrap(err, "failed to read redirect page")
	}

	m := embedIframePattern.FindSubmatch(body)
	if len(m) < 2 {
		return "", errors.Errorf("no iframe found in redirect page %s", pageURL)
	}

	final := html.UnescapeString(strings.TrimSpace(string(m[1])))
	if strings.HasPrefix(final, "//") {
		final = "https:" + final
	}
	if final == "" {
		return "", errors.Errorf("empty iframe URL in redirect page %s", pageURL)
	}
	return NormalizeURL(s.cfg.BaseURL, final), nil
}
