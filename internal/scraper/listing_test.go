package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const homeHTML = `<!DOCTYPE html>
<html><body>
<nav>
	<a href="/genre/action/">Action</a>
	<a href="/genre/romance/">Romance</a>
	<a href="/genre/action/">Action again</a>
</nav>
<div id="featured-titles">
	<article class="item"><a href="/series/top-show/"><img alt="Top Show" src="/t.jpg"></a></article>
</div>
<div id="dt-tvshows">
	<article class="item"><a href="/series/new-show/"><img alt="New Show" src="/n.jpg"></a></article>
</div>
<div id="dt-movies">
	<article class="item"><a href="/movies/new-movie/"><img alt="New Movie" src="/m.jpg"></a></article>
</div>
</body></html>`

func TestScrapeHome_Sections(t *testing.T) {
	t.Parallel()

	var fetches atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		_, _ = w.Write([]byte(homeHTML))
	}))
	defer upstream.Close()

	s := newTestScraper(t, upstream.URL)

	home, err := s.ScrapeHome(context.Background())
	require.NoError(t, err)

	require.Len(t, home.Featured, 1)
	assert.Equal(t, "top-show", home.Featured[0].ID)
	require.Len(t, home.Series, 1)
	assert.Equal(t, "new-show", home.Series[0].ID)
	require.Len(t, home.Movies, 1)
	assert.Equal(t, "new-movie", home.Movies[0].ID)

	// Cached on second call.
	_, err = s.ScrapeHome(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, fetches.Load())
}

func TestScrapeSearch_PageURLAndResults(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("s")
		_, _ = w.Write([]byte(`<html><body>
			<article class="item"><a href="/series/naruto/"><img alt="Naruto" src="/n.jpg"></a></article>
			<div class="pagination"><span class="current">2</span><a href="#">7</a><a class="next" href="#">Next</a></div>
		</body></html>`))
	}))
	defer upstream.Close()

	s := newTestScraper(t, upstream.URL)

	listing, err := s.ScrapeSearch(context.Background(), "naruto shippuden", 2)
	require.NoError(t, err)

	assert.Equal(t, "/page/2/", gotPath)
	assert.Equal(t, "naruto shippuden", gotQuery)

	require.Len(t, listing.Cards, 1)
	assert.Equal(t, 2, listing.Pagination.CurrentPage)
	assert.Equal(t, 7, listing.Pagination.TotalPages)
	assert.True(t, listing.Pagination.HasNextPage)
}

func TestScrapeSuggestions_Capped(t *testing.T) {
	t.Parallel()

	page := `<html><body><div class="items">`
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		page += `<article class="item"><a href="/series/show-` + id + `/"><img alt="Show ` + id + `" src="/x.jpg"></a></article>`
	}
	page += `</div></body></html>`

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer upstream.Close()

	s := newTestScraper(t, upstream.URL)

	cards, err := s.ScrapeSuggestions(context.Background(), "show")
	require.NoError(t, err)
	assert.Len(t, cards, maxSuggestions)
}

func TestScrapeCategory_URLShape(t *testing.T) {
	t.Parallel()

	var gotPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`<html><body>
			<article class="item"><a href="/movies/flick/"><img alt="Flick" src="/f.jpg"></a></article>
		</body></html>`))
	}))
	defer upstream.Close()

	s := newTestScraper(t, upstream.URL)

	listing, err := s.ScrapeCategory(context.Background(), "action", 3)
	require.NoError(t, err)
	assert.Equal(t, "/genre/action/page/3/", gotPath)
	require.Len(t, listing.Cards, 1)
}

func TestScrapeCategories_DedupBySlug(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(homeHTML))
	}))
	defer upstream.Close()

	s := newTestScraper(t, upstream.URL)

	categories, err := s.ScrapeCategories(context.Background())
	require.NoError(t, err)

	require.Len(t, categories, 2)
	assert.Equal(t, "Action", categories[0].Name)
	assert.Equal(t, "action", categories[0].Slug)
	assert.Equal(t, "romance", categories[1].Slug)
}
