package scraper

import (
	"context"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"anistream/internal/util"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Client issues upstream fetches with browser-mimicking headers, cookie
// persistence and bounded redirects, and classifies HTTP status into the
// package error taxonomy.
type Client struct {
	client    *http.Client
	probe     *http.Client
	baseURL   string
	userAgent string
}

// NewClient builds a client against the given site origin. The probe
// client carries a short timeout for URL-shape probing and race
// candidates; the main client is used for primary page scrapes.
func NewClient(baseURL string) *Client {
	return &Client{
		client:    util.GetSharedClient(),
		probe:     util.GetFastClient(),
		baseURL:   baseURL,
		userAgent: defaultUserAgent,
	}
}

func (c *Client) decorateRequest(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", c.baseURL+"/")
}

// FetchDocument fetches pageURL with the primary client and parses the
// body into a goquery document.
func (c *Client) FetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	return c.fetch(ctx, c.client, pageURL)
}

// ProbeDocument is FetchDocument with the short-timeout probe client,
// used for speculative URL-shape attempts and embed race candidates.
func (c *Client) ProbeDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	return c.fetch(ctx, c.probe, pageURL)
}

func (c *Client) fetch(ctx context.Context, hc *http.Client, pageURL string) (*goquery.Document, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	c.decorateRequest(req)

	resp, err := hc.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, errors.Wrapf(ErrUpstreamTimeout, "%s", pageURL)
		}
		return nil, errors.Wrap(err, "failed to make request")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.Wrapf(ErrNotFound, "%s", pageURL)
	case resp.StatusCode == http.StatusForbidden:
		return nil, errors.Wrapf(ErrAccessDenied, "%s", pageURL)
	case resp.StatusCode >= 400:
		return nil, errors.Errorf("upstream returned %s for %s", resp.Status, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse HTML")
	}

	util.Debug("fetched upstream page", "url", pageURL, "status", resp.StatusCode, "took", time.Since(start))
	return doc, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
