package scraper

import (
	"regexp"
	"strings"

	"anistream/internal/models"
)

var (
	contentIDPattern = regexp.MustCompile(`/(?:series|movies|movie|cartoons)/([^/]+)`)
	seasonEpPattern  = regexp.MustCompile(`(\d+)x(\d+)`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
)

// NormalizeImageURL canonicalizes a poster/image URL against base.
// Empty input stays empty; absolute URLs pass through; protocol-relative
// URLs get https; root-relative ones are joined onto base. Opaque
// relative paths are left untouched.
func NormalizeImageURL(base, raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return ""
	case strings.HasPrefix(raw, "http"):
		return raw
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	case strings.HasPrefix(raw, "/"):
		return strings.TrimRight(base, "/") + raw
	default:
		return raw
	}
}

// NormalizeURL canonicalizes a content URL against base, joining bare
// relative paths with a single slash.
func NormalizeURL(base, raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return ""
	case strings.HasPrefix(raw, "http"):
		return raw
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	case strings.HasPrefix(raw, "/"):
		return strings.TrimRight(base, "/") + raw
	default:
		return strings.TrimRight(base, "/") + "/" + raw
	}
}

// ExtractContentID returns the slug following /series/, /movies/, /movie/
// or /cartoons/ in a URL path, or "" when the URL is not a content link.
// Callers must treat "" as "not a content link" and skip.
func ExtractContentID(rawURL string) string {
	m := contentIDPattern.FindStringSubmatch(rawURL)
	if len(m) < 2 {
		return ""
	}
	return strings.Trim(m[1], "/")
}

// LastPathSegment returns the final non-empty path segment of a URL,
// query and fragment stripped.
func LastPathSegment(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}
	rawURL = strings.TrimRight(rawURL, "/")
	if i := strings.LastIndex(rawURL, "/"); i >= 0 {
		rawURL = rawURL[i+1:]
	}
	return rawURL
}

// ExtractType classifies a content link. Explicit container class markers
// win over URL substring inference; anything still ambiguous is Unknown.
func ExtractType(rawURL string, containerClass string) models.ContentType {
	classes := " " + containerClass + " "
	switch {
	case strings.Contains(classes, " type-series "):
		return models.TypeSeries
	case strings.Contains(classes, " type-movies "):
		return models.TypeMovie
	}
	switch {
	case strings.Contains(rawURL, "/series/"):
		return models.TypeSeries
	case strings.Contains(rawURL, "/cartoons/"):
		return models.TypeCartoon
	case strings.Contains(rawURL, "/movie"):
		return models.TypeMovie
	}
	return models.TypeUnknown
}

// ParseSeasonEpisode scans text for the first `<season>x<episode>`
// pattern. Both values are nil when no pattern is present.
func ParseSeasonEpisode(text string) (season, episode *int) {
	m := seasonEpPattern.FindStringSubmatch(text)
	if len(m) < 3 {
		return nil, nil
	}
	s := atoiSafe(m[1])
	e := atoiSafe(m[2])
	if s == nil || e == nil {
		return nil, nil
	}
	return s, e
}

// Slugify lowercases a name and collapses internal whitespace into single
// hyphens, producing stable server ids.
func Slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return whitespaceRuns.ReplaceAllString(name, "-")
}

// CollapseWhitespace trims text and folds whitespace runs into single
// spaces.
func CollapseWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(text, " "))
}

func atoiSafe(s string) *int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil
		}
		n = n*10 + int(r-'0')
		if n > 1<<30 {
			return nil
		}
	}
	return &n
}
