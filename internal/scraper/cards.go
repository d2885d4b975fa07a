package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"anistream/internal/models"
)

// Taxonomy links pose as content links inside listing items; anchors with
// these path prefixes are never cards.
var excludedPathPrefixes = []string{"/category/", "/tag/", "/cast_tv/", "/genre/"}

// Ordered fallback chains for the markup variants the site has shipped.
var (
	cardItemSelectors = []string{
		"article.item",
		".items article",
		".item",
		"li",
	}
	cardImageSelectors = []string{
		".poster img",
		".image img",
		"img",
	}
	cardImageAttrs = []string{"data-src", "data-lazy-src", "src", "data-original"}

	cardTitleSelectors = []string{".title", "h3", "h2", ".data h3"}

	cardRatingSelectors = []string{".rating", ".imdb", ".vote", ".dt_rating_vgs"}

	decimalPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
)

// ExtractCards extracts all content cards under root, trying the item
// selector chain until one yields results. Cards are de-duplicated by id;
// the first occurrence wins.
func ExtractCards(root *goquery.Selection, base string) []models.ContentCard {
	for _, sel := range cardItemSelectors {
		items := root.Find(sel)
		if items.Length() == 0 {
			continue
		}

		cards := collectCards(items, base)
		if len(cards) > 0 {
			return cards
		}
	}
	return nil
}

func collectCards(items *goquery.Selection, base string) []models.ContentCard {
	var cards []models.ContentCard
	seen := make(map[string]bool)

	items.Each(func(i int, item *goquery.Selection) {
		card := ExtractCard(item, base)
		if card == nil || seen[card.ID] {
			return
		}
		seen[card.ID] = true
		cards = append(cards, *card)
	})
	return cards
}

// ExtractCard extracts one content card from a listing item node, or nil
// when the node is not a content card. Pure function over the DOM.
func ExtractCard(item *goquery.Selection, base string) *models.ContentCard {
	anchor := findContentAnchor(item)
	if anchor == nil {
		return nil
	}

	href, _ := anchor.Attr("href")
	pageURL := NormalizeURL(base, href)
	id := ExtractContentID(pageURL)
	if id == "" {
		return nil
	}

	title := resolveCardTitle(item, anchor)
	if title == "" {
		return nil
	}

	card := &models.ContentCard{
		ID:    id,
		Title: title,
		URL:   pageURL,
		Type:  ExtractType(pageURL, item.AttrOr("class", "")),
	}

	if poster := resolveCardPoster(item, base); poster != "" {
		card.Poster = &poster
	}
	if rating := resolveCardRating(item); rating != nil {
		card.Rating = rating
	}
	return card
}

// findContentAnchor returns the first anchor whose href looks like a
// content link, skipping taxonomy links.
func findContentAnchor(item *goquery.Selection) *goquery.Selection {
	var anchor *goquery.Selection

	item.Find("a[href]").EachWithBreak(func(i int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if isExcludedPath(href) {
			return true
		}
		if ExtractContentID(href) == "" {
			return true
		}
		anchor = a
		return false
	})
	return anchor
}

func isExcludedPath(href string) bool {
	for _, prefix := range excludedPathPrefixes {
		if strings.Contains(href, prefix) {
			return true
		}
	}
	return false
}

func resolveCardPoster(item *goquery.Selection, base string) string {
	for _, sel := range cardImageSelectors {
		img := item.Find(sel).First()
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

func resolveCardTitle(item, anchor *goquery.Selection) string {
	img := item.Find("img").First()

	candidates := []string{
		img.AttrOr("alt", ""),
		img.AttrOr("title", ""),
	}
	for _, sel := range cardTitleSelectors {
		candidates = append(candidates, item.Find(sel).First().Text())
	}
	candidates = append(candidates, anchor.AttrOr("title", ""), anchor.Text())

	for _, raw := range candidates {
		if title := cleanTitle(raw); title != "" {
			return title
		}
	}
	return ""
}

// cleanTitle strips the site's "Image <name>" alt-text prefix and folds
// whitespace.
func cleanTitle(raw string) string {
	title := CollapseWhitespace(raw)
	if len(title) >= 6 && strings.EqualFold(title[:6], "image ") {
		title = strings.TrimSpace(title[6:])
	}
	return title
}

func resolveCardRating(item *goquery.Selection) *float64 {
	for _, sel := range cardRatingSelectors {
		text := item.Find(sel).First().Text()
		if m := decimalPattern.FindString(text); m != "" {
			if v, err := strconv.ParseFloat(m, 64); err == nil {
				return &v
			}
		}
	}
	return nil
}
