package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"anistream/internal/models"
)

var (
	episodeDateSelectors = []string{".date", ".episode-date", "span.date", "time"}

	seasonHeadingPattern = regexp.MustCompile(`(?i)season\s*(\d+)`)
)

// ExtractEpisode extracts one episode from a node holding an episode
// link, or nil when the node has no usable anchor.
func ExtractEpisode(node *goquery.Selection, base string) *models.Episode {
	anchor := node.Find("a[href]").First()
	if anchor.Length() == 0 {
		return nil
	}

	href, _ := anchor.Attr("href")
	pageURL := NormalizeURL(base, href)

	id := ExtractContentID(pageURL)
	if id == "" {
		id = LastPathSegment(pageURL)
	}
	if id == "" || pageURL == "" {
		return nil
	}

	title := CollapseWhitespace(anchor.Text())
	if title == "" {
		title = CollapseWhitespace(anchor.AttrOr("title", ""))
	}
	if title == "" {
		title = strings.ReplaceAll(id, "-", " ")
	}

	ep := &models.Episode{
		ID:    id,
		Title: title,
		URL:   pageURL,
	}
	ep.Season, ep.Episode = ParseSeasonEpisode(title + " " + id)

	for _, sel := range episodeDateSelectors {
		if date := CollapseWhitespace(node.Find(sel).First().Text()); date != "" {
			ep.ReleaseDate = &date
			break
		}
	}
	return ep
}

// ParseSeasonHeading reads a season number from a heading like
// "Season 2" or a bare "2"; unparseable headings default to season 1.
func ParseSeasonHeading(text string) int {
	if m := seasonHeadingPattern.FindStringSubmatch(text); len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	if n, err := strconv.Atoi(strings.TrimSpace(text)); err == nil && n > 0 {
		return n
	}
	return 1
}
