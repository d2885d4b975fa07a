package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"anistream/internal/models"
	"anistream/internal/util"
)

// Detail probe order: first non-404 URL shape wins the type.
var detailShapes = []struct {
	typ  models.ContentType
	path string
}{
	{models.TypeSeries, "series"},
	{models.TypeMovie, "movies"},
	{models.TypeCartoon, "cartoons"},
}

// maxTagLength caps genre/cast entries; longer strings are menu noise,
// not taxonomy values.
const maxTagLength = 50

var (
	detailTitleSelectors = []string{
		".data h1",
		"h1.entry-title",
		"h1",
		".sheader .data .head h1",
	}
	detailPosterSelectors = []string{
		".poster img",
		".sheader .poster img",
		"article img",
	}
	detailDescriptionSelectors = []string{
		".wp-content p",
		"[itemprop='description'] p",
		".description p",
		".contenido p",
	}
	detailQualitySelectors = []string{".quality", "span.quality", ".qualityx"}
	detailRuntimeSelectors = []string{".runtime", "span.runtime", ".duration"}

	genreSelectors = []string{
		".sgeneros a",
		"a[href*='/genre/']",
		"[itemprop='genre'] a",
	}
	castSelectors = []string{
		"a[href*='/cast_tv/']",
		".person .data .name a",
		"[itemprop='actor'] a",
	}

	seasonContainerSelectors = []string{".se-c", ".season", ".seasons .se-c"}
	seasonHeadingSelectors   = []string{".se-t", ".se-q .se-t", ".title", "h3"}
	episodeItemSelectors     = []string{"ul.episodios li", ".episodiotitle", "li"}

	relatedSelectors = []string{".srelacionados", "#single_relacionados", ".related"}
)

// ScrapeDetail fetches and parses a full content detail. A type hint
// probes that shape first; a 404 there falls through to the full
// series → movies → cartoons sequence, while any other fetch error fails
// fast. Results are cached; cache hits skip the network entirely.
func (s *Scraper) ScrapeDetail(ctx context.Context, id string, hint models.ContentType) (*models.ContentDetail, error) {
	key := detailCacheKey(id, hint)
	if v, ok := s.cache.Get(key); ok {
		return v.(*models.ContentDetail), nil
	}

	doc, resolved, err := s.probeDetail(ctx, id, hint)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "scrape failed")
	}

	detail := s.parseDetail(doc, id, resolved)
	s.cache.Set(key, detail, detailTTL)
	return detail, nil
}

func detailCacheKey(id string, hint models.ContentType) string {
	t := "auto"
	if hint != "" && hint != models.TypeUnknown {
		t = string(hint)
	}
	return fmt.Sprintf("content:%s:%s", id, t)
}

// probeDetail walks the URL shapes in order and returns the first
// document that is not a 404, along with the type that shape implies.
func (s *Scraper) probeDetail(ctx context.Context, id string, hint models.ContentType) (*goquery.Document, models.ContentType, error) {
	tried := make(map[models.ContentType]bool)

	probeOne := func(typ models.ContentType, path string) (*goquery.Document, error) {
		tried[typ] = true
		probeURL := fmt.Sprintf("%s/%s/%s/", s.cfg.BaseURL, path, id)
		util.Debug("probing detail shape", "type", typ, "url", probeURL)
		return s.client.ProbeDocument(ctx, probeURL)
	}

	if hint != "" && hint != models.TypeUnknown {
		for _, shape := range detailShapes {
			if shape.typ != hint {
				continue
			}
			doc, err := probeOne(shape.typ, shape.path)
			if err == nil {
				return doc, shape.typ, nil
			}
			if !errors.Is(err, ErrNotFound) {
				return nil, "", err
			}
		}
	}

	for _, shape := range detailShapes {
		if tried[shape.typ] {
			continue
		}
		doc, err := probeOne(shape.typ, shape.path)
		if err == nil {
			return doc, shape.typ, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, "", err
		}
	}
	return nil, "", errors.Wrapf(ErrNotFound, "no URL shape matched %q", id)
}

func (s *Scraper) parseDetail(doc *goquery.Document, id string, typ models.ContentType) *models.ContentDetail {
	base := s.cfg.BaseURL

	detail := &models.ContentDetail{
		ID:        id,
		Type:      typ,
		Genres:    []string{},
		Languages: []string{},
		Cast:      []string{},
		Seasons:   map[int][]models.Episode{},
		Related:   []models.ContentCard{},
	}

	detail.Title = firstText(doc.Selection, detailTitleSelectors)
	detail.Description = extractDescription(doc)

	if poster := resolveDetailPoster(doc, base); poster != "" {
		detail.Poster = &poster
	}
	if rating := firstDecimal(doc.Selection, cardRatingSelectors); rating != nil {
		detail.Rating = rating
	}
	if quality := firstText(doc.Selection, detailQualitySelectors); quality != "" {
		detail.Quality = &quality
	}
	if runtime := firstText(doc.Selection, detailRuntimeSelectors); runtime != "" {
		detail.Runtime = &runtime
	}

	detail.Genres = collectTags(doc.Selection, genreSelectors)
	detail.Cast = collectTags(doc.Selection, castSelectors)
	detail.Languages = ScanLanguages(doc.Text(), s.cfg.Languages)

	if typ == models.TypeSeries || typ == models.TypeCartoon {
		detail.Seasons = s.extractSeasons(doc, base)
		for _, eps := range detail.Seasons {
			detail.TotalEpisodes += len(eps)
		}
	}

	for _, sel := range relatedSelectors {
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}
		if cards := ExtractCards(container, base); len(cards) > 0 {
			detail.Related = cards
			break
		}
	}

	return detail
}

// extractSeasons groups episodes by season container. When no container
// yields episodes it falls back to a document-wide scan of episode-shaped
// anchors grouped by each episode's own parsed season.
func (s *Scraper) extractSeasons(doc *goquery.Document, base string) map[int][]models.Episode {
	seasons := make(map[int][]models.Episode)

	for _, containerSel := range seasonContainerSelectors {
		containers := doc.Find(containerSel)
		if containers.Length() == 0 {
			continue
		}

		containers.Each(func(i int, container *goquery.Selection) {
			num := 1
			for _, headSel := range seasonHeadingSelectors {
				if head := container.Find(headSel).First(); head.Length() > 0 {
					num = ParseSeasonHeading(head.Text())
					break
				}
			}
			for _, epSel := range episodeItemSelectors {
				items := container.Find(epSel)
				if items.Length() == 0 {
					continue
				}
				items.Each(func(j int, item *goquery.Selection) {
					if ep := ExtractEpisode(item, base); ep != nil {
						seasons[num] = append(seasons[num], *ep)
					}
				})
				break
			}
		})

		if len(seasons) > 0 {
			return seasons
		}
	}

	// Document-wide fallback: any anchor that parses as an episode link.
	doc.Find("a[href*='/episode/'], a[href*='episodes']").Each(func(i int, a *goquery.Selection) {
		ep := ExtractEpisode(a.Parent(), base)
		if ep == nil {
			return
		}
		num := 1
		if ep.Season != nil {
			num = *ep.Season
		}
		for _, existing := range seasons[num] {
			if existing.ID == ep.ID {
				return
			}
		}
		seasons[num] = append(seasons[num], *ep)
	})

	return seasons
}

func extractDescription(doc *goquery.Document) string {
	for _, sel := range detailDescriptionSelectors {
		paragraphs := doc.Find(sel)
		if paragraphs.Length() == 0 {
			continue
		}
		var parts []string
		paragraphs.Each(func(i int, p *goquery.Selection) {
			text := CollapseWhitespace(p.Text())
			if len(text) > 20 {
				parts = append(parts, text)
			}
		})
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}
	return ""
}

func resolveDetailPoster(doc *goquery.Document, base string) string {
	for _, sel := range detailPosterSelectors {
		img := doc.Find(sel).First()
		if img.Length() == 0 {
			continue
		}
		for _, attr := range cardImageAttrs {
			if v := strings.TrimSpace(img.AttrOr(attr, "")); v != "" {
				return NormalizeImageURL(base, v)
			}
		}
	}
	return ""
}

// collectTags gathers anchor texts across the selector chain,
// de-duplicating while keeping first-seen order and dropping over-long
// values.
func collectTags(root *goquery.Selection, selectors []string) []string {
	tags := []string{}
	seen := make(map[string]bool)

	for _, sel := range selectors {
		root.Find(sel).Each(func(i int, a *goquery.Selection) {
			tag := CollapseWhitespace(a.Text())
			if tag == "" || len(tag) > maxTagLength || seen[tag] {
				return
			}
			seen[tag] = true
			tags = append(tags, tag)
		})
	}
	return tags
}

// ScanLanguages finds recognized language names anywhere in text,
// case-insensitively, normalized to the vocabulary's casing and
// de-duplicated in vocabulary order.
func ScanLanguages(text string, vocabulary []string) []string {
	found := []string{}
	for _, lang := range vocabulary {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(lang) + `\b`)
		if re.MatchString(text) {
			found = append(found, titleCase(lang))
		}
	}
	return found
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func firstText(root *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if text := CollapseWhitespace(root.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func firstDecimal(root *goquery.Selection, selectors []string) *float64 {
	for _, sel := range selectors {
		text := root.Find(sel).First().Text()
		if m := decimalPattern.FindString(text); m != "" {
			if v, err := strconv.ParseFloat(m, 64); err == nil {
				return &v
			}
		}
	}
	return nil
}
