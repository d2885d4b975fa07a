package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"anistream/internal/models"
	"anistream/internal/util"
)

var (
	// Episode slugs end in -<season>x<episode>.
	episodeSlugPattern = regexp.MustCompile(`-\d+x\d+$`)

	downloadQualityPattern = regexp.MustCompile(`\d+p`)

	streamTitleSelectors = []string{"h1", ".epih1", ".entry-title", "h2.epih1"}

	languageSelectors = []string{".language", ".lang", "[data-language]"}

	serverSelectors = []string{".server", ".player-option", "[data-server]", "li.dooplay_player_option"}
)

// ResolveEpisodeStreaming resolves all playable sources for one episode
// using the static-fetch strategy: URL-shape probing, then iframe, video,
// download, language and server extraction. A page with zero sources is a
// failure and is never cached.
func (s *Scraper) ResolveEpisodeStreaming(ctx context.Context, episodeID string) (*models.EpisodeStreaming, error) {
	key := "episode:" + episodeID
	if v, ok := s.cache.Get(key); ok {
		return v.(*models.EpisodeStreaming), nil
	}

	doc, err := s.probeEpisode(ctx, episodeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "scrape failed")
	}

	streaming := s.parseStreaming(doc, episodeID)

	if len(streaming.Sources) == 0 && s.browser != nil && s.cfg.BrowserFallback {
		if src := s.browserExtract(ctx, episodeID); src != nil {
			streaming.Sources = append(streaming.Sources, *src)
		}
	}

	if len(streaming.Sources) == 0 {
		return nil, errors.Wrapf(ErrNoSources, "episode %q", episodeID)
	}

	s.cache.Set(key, streaming, episodeTTL)
	return streaming, nil
}

// episodeProbePaths orders the URL shapes by id shape: episode-slug ids
// try /episode/ first, everything else tries /series/ first.
func episodeProbePaths(episodeID string) []string {
	if episodeSlugPattern.MatchString(episodeID) {
		return []string{"episode", "series", "movies"}
	}
	return []string{"series", "episode", "movies"}
}

func (s *Scraper) probeEpisode(ctx context.Context, episodeID string) (*goquery.Document, error) {
	for _, path := range episodeProbePaths(episodeID) {
		probeURL := fmt.Sprintf("%s/%s/%s/", s.cfg.BaseURL, path, episodeID)
		util.Debug("probing episode shape", "url", probeURL)

		doc, err := s.client.ProbeDocument(ctx, probeURL)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "no URL shape matched episode %q", episodeID)
}

func (s *Scraper) parseStreaming(doc *goquery.Document, episodeID string) *models.EpisodeStreaming {
	base := s.cfg.BaseURL

	streaming := &models.EpisodeStreaming{
		EpisodeID: episodeID,
		Sources:   []models.StreamingSource{},
		Downloads: []models.Download{},
		Languages: []string{},
		Servers:   []models.Server{},
	}

	streaming.Title = firstText(doc.Selection, streamTitleSelectors)

	streaming.Season, streaming.Episode = ParseSeasonEpisode(streaming.Title)
	if streaming.Season == nil {
		streaming.Season, streaming.Episode = ParseSeasonEpisode(episodeID)
	}

	streaming.Sources = extractSources(doc, base)
	streaming.Downloads = extractDownloads(doc, base, s.cfg.Languages)
	streaming.Languages = extractLanguages(doc, s.cfg.Languages)
	streaming.Servers = extractServers(doc)

	return streaming
}

// extractSources collects iframe embeds and direct video elements.
func extractSources(doc *goquery.Document, base string) []models.StreamingSource {
	sources := []models.StreamingSource{}
	seen := make(map[string]bool)

	doc.Find("iframe").Each(func(i int, frame *goquery.Selection) {
		for _, attr := range []string{"src", "data-src", "data-lazy-src"} {
			raw := strings.TrimSpace(frame.AttrOr(attr, ""))
			if raw == "" {
				continue
			}
			u := NormalizeURL(base, raw)
			if u == "" || seen[u] {
				break
			}
			seen[u] = true
			sources = append(sources, models.StreamingSource{
				Type:    models.SourceIframe,
				URL:     u,
				Quality: "default",
			})
			break
		}
	})

	doc.Find("video, video source, source").Each(func(i int, v *goquery.Selection) {
		raw := strings.TrimSpace(v.AttrOr("src", ""))
		if raw == "" {
			raw = strings.TrimSpace(v.AttrOr("data-src", ""))
		}
		if raw == "" {
			return
		}
		u := NormalizeURL(base, raw)
		if u == "" || seen[u] {
			return
		}
		seen[u] = true

		quality := strings.TrimSpace(v.AttrOr("label", ""))
		if quality == "" {
			quality = strings.TrimSpace(v.AttrOr("data-quality", ""))
		}
		if quality == "" {
			quality = "default"
		}

		mime := strings.TrimSpace(v.AttrOr("type", ""))
		if mime == "" {
			mime = "video/mp4"
		}

		sources = append(sources, models.StreamingSource{
			Type:     models.SourceVideo,
			URL:      u,
			Quality:  quality,
			MimeType: &mime,
		})
	})

	return sources
}

func extractDownloads(doc *goquery.Document, base string, vocabulary []string) []models.Download {
	downloads := []models.Download{}
	seen := make(map[string]bool)

	doc.Find("a[href*='download'], a.download, .download a, a.btn-download").Each(func(i int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if len(href) <= 10 {
			return
		}
		u := NormalizeURL(base, href)
		if u == "" || seen[u] {
			return
		}
		seen[u] = true

		text := a.Text() + " " + a.AttrOr("title", "")

		quality := downloadQualityPattern.FindString(text)
		if quality == "" {
			quality = "default"
		}

		language := "Unknown"
		if langs := ScanLanguages(text, vocabulary); len(langs) > 0 {
			language = langs[0]
		}

		downloads = append(downloads, models.Download{
			URL:      u,
			Quality:  quality,
			Language: language,
		})
	})

	return downloads
}

// extractLanguages tries dedicated language elements first and falls back
// to a whole-page vocabulary scan.
func extractLanguages(doc *goquery.Document, vocabulary []string) []string {
	var texts []string
	for _, sel := range languageSelectors {
		doc.Find(sel).Each(func(i int, el *goquery.Selection) {
			texts = append(texts, el.Text(), el.AttrOr("data-language", ""))
		})
	}
	if langs := ScanLanguages(strings.Join(texts, " "), vocabulary); len(langs) > 0 {
		return langs
	}
	return ScanLanguages(doc.Text(), vocabulary)
}

func extractServers(doc *goquery.Document) []models.Server {
	servers := []models.Server{}
	seen := make(map[string]bool)

	for _, sel := range serverSelectors {
		doc.Find(sel).Each(func(i int, el *goquery.Selection) {
			name := CollapseWhitespace(el.AttrOr("data-server", ""))
			if name == "" {
				name = CollapseWhitespace(el.AttrOr("title", ""))
			}
			if name == "" {
				name = CollapseWhitespace(el.Find(".server-name, span.title").First().Text())
			}
			if name == "" {
				name = CollapseWhitespace(el.Text())
			}
			if name == "" || len(name) > maxTagLength {
				return
			}

			id := strings.TrimSpace(el.AttrOr("data-id", ""))
			if id == "" {
				id = Slugify(name)
			}
			if seen[id] {
				return
			}
			seen[id] = true
			servers = append(servers, models.Server{Name: name, ID: id})
		})
	}
	return servers
}

// browserExtract is the slow fallback path: drive a real browser through
// the exclusive session and pull the player iframe out of the rendered
// page. Failures degrade to nil, never to an error.
func (s *Scraper) browserExtract(ctx context.Context, episodeID string) *models.StreamingSource {
	pageURL := fmt.Sprintf("%s/%s/%s/", s.cfg.BaseURL, episodeProbePaths(episodeID)[0], episodeID)

	src, err := s.browser.ExtractIframeURL(ctx, pageURL)
	if err != nil {
		util.Warn("browser fallback failed", "episode", episodeID, "error", err)
		return nil
	}

	return &models.StreamingSource{
		Type:    models.SourceIframe,
		URL:     NormalizeURL(s.cfg.BaseURL, src),
		Quality: "default",
	}
}
