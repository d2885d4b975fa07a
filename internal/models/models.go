// Package models holds the value objects exchanged between the scraper
// layer and the HTTP handlers. Everything here is immutable after
// construction; responses own their values outright.
package models

// ContentType classifies a content item by how the upstream site hosts it.
type ContentType string

const (
	TypeSeries  ContentType = "series"
	TypeMovie   ContentType = "movie"
	TypeCartoon ContentType = "cartoon"
	TypeUnknown ContentType = "unknown"
)

// ContentCard is a lightweight listing entry. ID is derived from the last
// non-empty path segment of URL and is unique within one listing page.
type ContentCard struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	URL    string      `json:"url"`
	Poster *string     `json:"poster"`
	Type   ContentType `json:"type"`
	Rating *float64    `json:"rating"`
}

// Episode is one episode link found on a detail page. Season and Episode
// come from a "SxE" pattern in the title or id and are nil when absent.
type Episode struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Season      *int    `json:"season"`
	Episode     *int    `json:"episode"`
	ReleaseDate *string `json:"releaseDate"`
}

// ContentDetail is the full detail-page scrape result.
type ContentDetail struct {
	ID            string            `json:"id"`
	Type          ContentType       `json:"type"`
	Title         string            `json:"title"`
	Poster        *string           `json:"poster"`
	Description   string            `json:"description"`
	Rating        *float64          `json:"rating"`
	Quality       *string           `json:"quality"`
	Runtime       *string           `json:"runtime"`
	Genres        []string          `json:"genres"`
	Languages     []string          `json:"languages"`
	Cast          []string          `json:"cast"`
	Seasons       map[int][]Episode `json:"seasons"`
	TotalEpisodes int               `json:"totalEpisodes"`
	Related       []ContentCard     `json:"related"`
}

// SourceType distinguishes iframe embeds from direct video elements.
type SourceType string

const (
	SourceIframe SourceType = "iframe"
	SourceVideo  SourceType = "video"
)

// StreamingSource is one playable source found on an episode page.
type StreamingSource struct {
	Type     SourceType `json:"type"`
	URL      string     `json:"url"`
	Quality  string     `json:"quality"`
	MimeType *string    `json:"mimeType"`
}

// Download is one download link. Quality matches `\d+p` or is "default";
// Language is drawn from the recognized vocabulary or "Unknown".
type Download struct {
	URL      string `json:"url"`
	Quality  string `json:"quality"`
	Language string `json:"language"`
}

// Server is a named streaming server option; ID is the slugified name.
type Server struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// EpisodeStreaming is the full streaming resolution for one episode.
type EpisodeStreaming struct {
	EpisodeID string            `json:"episodeId"`
	Title     string            `json:"title"`
	Season    *int              `json:"season"`
	Episode   *int              `json:"episode"`
	Sources   []StreamingSource `json:"sources"`
	Downloads []Download        `json:"downloads"`
	Languages []string          `json:"languages"`
	Servers   []Server          `json:"servers"`
}

// Pagination describes listing page position. The zero value is not valid;
// use DefaultPagination for the extraction-failure fallback.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// DefaultPagination is returned whenever pagination markup is missing or
// unreadable.
func DefaultPagination() Pagination {
	return Pagination{CurrentPage: 1, TotalPages: 1}
}

// Category is one taxonomy entry scraped from the site navigation.
type Category struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

// Listing is a page of cards plus its pagination, used by search and
// category endpoints.
type Listing struct {
	Cards      []ContentCard `json:"results"`
	Pagination Pagination    `json:"pagination"`
}

// Home is the scraped front page, one card slice per section.
type Home struct {
	Featured []ContentCard `json:"featured"`
	Series   []ContentCard `json:"recentSeries"`
	Movies   []ContentCard `json:"recentMovies"`
}
