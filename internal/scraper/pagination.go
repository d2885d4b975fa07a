package scraper

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"anistream/internal/models"
)

var paginationSelectors = []string{
	".pagination",
	".wp-pagenavi",
	"nav.navigation",
	".page-numbers",
}

// ExtractPagination reads page position from a listing document. It never
// fails: missing or unreadable markup yields the default single-page
// result.
func ExtractPagination(doc *goquery.Document) (p models.Pagination) {
	defer func() {
		if recover() != nil {
			p = models.DefaultPagination()
		}
	}()

	p = models.DefaultPagination()

	var container *goquery.Selection
	for _, sel := range paginationSelectors {
		if found := doc.Find(sel).First(); found.Length() > 0 {
			container = found
			break
		}
	}
	if container == nil {
		return p
	}

	current := container.Find(".current, .active, span.current").First()
	if n, err := strconv.Atoi(strings.TrimSpace(current.Text())); err == nil && n >= 1 {
		p.CurrentPage = n
	}

	total := p.CurrentPage
	container.Find("a, span").Each(func(i int, s *goquery.Selection) {
		if n, err := strconv.Atoi(strings.TrimSpace(s.Text())); err == nil && n > total {
			total = n
		}
	})
	p.TotalPages = total

	p.HasNextPage = container.Find(".next, a[rel='next'], .nextpostslink").Length() > 0
	p.HasPrevPage = container.Find(".prev, a[rel='prev'], .previouspostslink").Length() > 0

	return p
}
