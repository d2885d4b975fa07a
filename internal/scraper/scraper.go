// Package scraper turns the upstream site's semi-structured HTML into the
// normalized data model: listings, content details, episodes and
// streaming sources. All extraction is best-effort pattern matching
// against the site's observed markup shapes; malformed nodes degrade to
// skipped entries or empty fields rather than errors.
package scraper

import (
	"time"

	"anistream/internal/browser"
	"anistream/internal/cache"
	"anistream/internal/config"
)

// Cache TTLs per result family.
const (
	homeTTL       = 30 * time.Minute
	detailTTL     = time.Hour
	searchTTL     = 10 * time.Minute
	categoryTTL   = 30 * time.Minute
	categoriesTTL = 2 * time.Hour
	episodeTTL    = 30 * time.Minute
	embedTTL      = 30 * time.Minute
)

// Scraper orchestrates fetching and extraction. The cache and the
// optional browser session are injected collaborators owned by the
// hosting layer.
type Scraper struct {
	client  *Client
	cache   *cache.Cache
	cfg     *config.Config
	browser browser.Session
}

// Option customizes a Scraper.
type Option func(*Scraper)

// WithBrowser attaches a serialized browser session used as the slow
// fallback extraction path for streaming sources.
func WithBrowser(session browser.Session) Option {
	return func(s *Scraper) { s.browser = session }
}

// WithClient replaces the fetch client, mainly for tests.
func WithClient(c *Client) Option {
	return func(s *Scraper) { s.client = c }
}

// New builds a Scraper against cfg.BaseURL.
func New(cfg *config.Config, store *cache.Cache, opts ...Option) *Scraper {
	s := &Scraper{
		client: NewClient(cfg.BaseURL),
		cache:  store,
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BaseURL reports the configured upstream origin.
func (s *Scraper) BaseURL() string {
	return s.cfg.BaseURL
}
