package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"anistream/internal/models"
)

const maxSuggestions = 8

var homeSectionSelectors = map[string][]string{
	"featured": {"#featured-titles", ".slider", ".featured"},
	"series":   {"#dt-tvshows", ".tvshows-list", "#archive-content"},
	"movies":   {"#dt-movies", ".movies-list"},
}

// ScrapeHome scrapes the upstream front page into its card sections.
func (s *Scraper) ScrapeHome(ctx context.Context) (*models.Home, error) {
	if v, ok := s.cache.Get("home"); ok {
		return v.(*models.Home), nil
	}

	doc, err := s.client.FetchDocument(ctx, s.cfg.BaseURL+"/")
	if err != nil {
		return nil, errors.Wrap(err, "scrape failed")
	}

	home := &models.Home{
		Featured: firstSectionCards(doc, homeSectionSelectors["featured"], s.cfg.BaseURL),
		Series:   firstSectionCards(doc, homeSectionSelectors["series"], s.cfg.BaseURL),
		Movies:   firstSectionCards(doc, homeSectionSelectors["movies"], s.cfg.BaseURL),
	}

	// A home page with no recognizable section still usually carries
	// cards somewhere; use the whole document as a last resort.
	if len(home.Featured) == 0 && len(home.Series) == 0 && len(home.Movies) == 0 {
		home.Featured = ExtractCards(doc.Selection, s.cfg.BaseURL)
	}

	s.cache.Set("home", home, homeTTL)
	return home, nil
}

func firstSectionCards(doc *goquery.Document, selectors []string, base string) []models.ContentCard {
	for _, sel := range selectors {
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}
		if cards := ExtractCards(container, base); len(cards) > 0 {
			return cards
		}
	}
	return []models.ContentCard{}
}

// ScrapeSearch runs the upstream keyword search and extracts one page of
// results.
func (s *Scraper) ScrapeSearch(ctx context.Context, keyword string, page int) (*models.Listing, error) {
	if page < 1 {
		page = 1
	}
	key := fmt.Sprintf("search:%s:%d", strings.ToLower(strings.TrimSpace(keyword)), page)
	if v, ok := s.cache.Get(key); ok {
		return v.(*models.Listing), nil
	}

	searchURL := fmt.Sprintf("%s/?s=%s", s.cfg.BaseURL, url.QueryEscape(keyword))
	if page > 1 {
		searchURL = fmt.Sprintf("%s/page/%d/?s=%s", s.cfg.BaseURL, page, url.QueryEscape(keyword))
	}

	doc, err := s.client.FetchDocument(ctx, searchURL)
	if err != nil {
		return nil, errors.Wrap(err, "scrape failed")
	}

	listing := &models.Listing{
		Cards:      ExtractCards(doc.Selection, s.cfg.BaseURL),
		Pagination: ExtractPagination(doc),
	}
	if listing.Cards == nil {
		listing.Cards = []models.ContentCard{}
	}

	s.cache.Set(key, listing, searchTTL)
	return listing, nil
}

// ScrapeSuggestions returns up to 8 lightweight cards for typeahead.
func (s *Scraper) ScrapeSuggestions(ctx context.Context, keyword string) ([]models.ContentCard, error) {
	key := "suggestions:" + strings.ToLower(strings.TrimSpace(keyword))
	if v, ok := s.cache.Get(key); ok {
		return v.([]models.ContentCard), nil
	}

	listing, err := s.ScrapeSearch(ctx, keyword, 1)
	if err != nil {
		return nil, err
	}

	cards := listing.Cards
	if len(cards) > maxSuggestions {
		cards = cards[:maxSuggestions]
	}

	s.cache.Set(key, cards, searchTTL)
	return cards, nil
}

// ScrapeCategory scrapes one page of a category/genre listing.
func (s *Scraper) ScrapeCategory(ctx context.Context, slug string, page int) (*models.Listing, error) {
	if page < 1 {
		page = 1
	}
	key := fmt.Sprintf("category:%s:%d", slug, page)
	if v, ok := s.cache.Get(key); ok {
		return v.(*models.Listing), nil
	}

	categoryURL := fmt.Sprintf("%s/genre/%s/", s.cfg.BaseURL, url.PathEscape(slug))
	if page > 1 {
		categoryURL = fmt.Sprintf("%s/genre/%s/page/%d/", s.cfg.BaseURL, url.PathEscape(slug), page)
	}

	doc, err := s.client.FetchDocument(ctx, categoryURL)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "scrape failed")
	}

	listing := &models.Listing{
		Cards:      ExtractCards(doc.Selection, s.cfg.BaseURL),
		Pagination: ExtractPagination(doc),
	}
	if listing.Cards == nil {
		listing.Cards = []models.ContentCard{}
	}

	s.cache.Set(key, listing, categoryTTL)
	return listing, nil
}

// ScrapeCategories scrapes the taxonomy list from the site navigation.
func (s *Scraper) ScrapeCategories(ctx context.Context) ([]models.Category, error) {
	if v, ok := s.cache.Get("categories"); ok {
		return v.([]models.Category), nil
	}

	doc, err := s.client.FetchDocument(ctx, s.cfg.BaseURL+"/")
	if err != nil {
		return nil, errors.Wrap(err, "scrape failed")
	}

	categories := []models.Category{}
	seen := make(map[string]bool)

	doc.Find("a[href*='/genre/'], a[href*='/category/']").Each(func(i int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		name := CollapseWhitespace(a.Text())
		slug := LastPathSegment(href)
		if name == "" || slug == "" || len(name) > maxTagLength || seen[slug] {
			return
		}
		seen[slug] = true
		categories = append(categories, models.Category{
			Name: name,
			Slug: slug,
			URL:  NormalizeURL(s.cfg.BaseURL, href),
		})
	})

	s.cache.Set("categories", categories, categoriesTTL)
	return categories, nil
}
