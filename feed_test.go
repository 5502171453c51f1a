package razorblog

import (
	"context"
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*App, *Store) {
	t.Helper()
	b, s := newTestBlog(t)
	return &App{Echo: echo.New(), Store: s, Blog: b}, s
}

// seedFeedPosts stores two published posts with distinct modification
// times, one draft, and one scheduled past the test clock.
func seedFeedPosts(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	older := testTime(1)
	first := makePost("First Post", &older)
	first.LastModified = testTime(5)
	first.Tags = []Tag{{ID: uuid.New(), PostID: first.ID, Title: "Go", Slug: "go"}}
	require.NoError(t, s.UpsertPost(ctx, first))

	newer := testTime(2)
	second := makePost("Second Post", &newer)
	second.LastModified = testTime(3)
	require.NoError(t, s.UpsertPost(ctx, second))

	require.NoError(t, s.UpsertPost(ctx, makePost("Draft Post", nil)))

	future := testTime(20)
	require.NoError(t, s.UpsertPost(ctx, makePost("Future Post", &future)))
}

func serveFeed(t *testing.T, a *App, format string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/feed/"+format, nil)
	req.Host = "example.com"
	rec := httptest.NewRecorder()
	c := a.Echo.NewContext(req, rec)
	c.SetParamNames("format")
	c.SetParamValues(format)
	require.NoError(t, a.handleFeed(c))
	return rec
}

func TestFeedRSS(t *testing.T) {
	a, s := newTestApp(t)
	seedFeedPosts(t, s)

	rec := serveFeed(t, a, "rss")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/rss+xml; charset=utf-8", rec.Header().Get(echo.HeaderContentType))

	var feed rssXML
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &feed))
	require.Equal(t, "2.0", feed.Version)
	require.Equal(t, "RazorBlog", feed.Channel.Title)
	require.Equal(t, "http://example.com", feed.Channel.Link)

	require.Len(t, feed.Channel.Items, 2, "drafts and scheduled posts stay out")
	require.Equal(t, "First Post", feed.Channel.Items[0].Title, "ordered by last modification, newest first")
	require.Equal(t, "Second Post", feed.Channel.Items[1].Title)

	item := feed.Channel.Items[0]
	require.Equal(t, "http://example.com/first-post", item.Link)
	require.Equal(t, item.Link, item.GUID)
	require.Equal(t, "author@example.com (Test Author)", item.Author)
	require.Equal(t, []string{"Go"}, item.Categories)
	require.Equal(t, testTime(1).Format(time.RFC1123Z), item.PubDate)
	require.Contains(t, item.Description, "<strong>world</strong>", "body is rendered to HTML")
}

func TestFeedAtom(t *testing.T) {
	a, s := newTestApp(t)
	seedFeedPosts(t, s)

	rec := serveFeed(t, a, "atom")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/atom+xml; charset=utf-8", rec.Header().Get(echo.HeaderContentType))

	var feed atomFeed
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &feed))
	require.Equal(t, "RazorBlog", feed.Title)
	require.Equal(t, "http://example.com", feed.ID)
	require.Equal(t, testTime(2).Format(time.RFC3339), feed.Updated, "feed timestamp follows the latest publication")

	require.Len(t, feed.Entries, 2)
	entry := feed.Entries[0]
	require.Equal(t, "First Post", entry.Title)
	require.Equal(t, "http://example.com/first-post", entry.ID)
	require.Equal(t, testTime(1).Format(time.RFC3339), entry.Published)
	require.Equal(t, testTime(5).Format(time.RFC3339), entry.Updated)
	require.Equal(t, "Test Author", entry.Author.Name)
	require.Equal(t, "html", entry.Content.Type)
}

func TestFeedUnknownFormat(t *testing.T) {
	a, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/feed/json", nil)
	rec := httptest.NewRecorder()
	c := a.Echo.NewContext(req, rec)
	c.SetParamNames("format")
	c.SetParamValues("json")
	require.ErrorIs(t, a.handleFeed(c), echo.ErrNotFound)
}

func TestSitemap(t *testing.T) {
	a, s := newTestApp(t)
	seedFeedPosts(t, s)

	req := httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil)
	req.Host = "example.com"
	rec := httptest.NewRecorder()
	c := a.Echo.NewContext(req, rec)
	require.NoError(t, a.handleSitemap(c))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Body.String(), xml.Header))

	var sitemap sitemapURLSet
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &sitemap))
	require.Equal(t, "http://www.sitemaps.org/schemas/sitemap/0.9", sitemap.XMLNS)
	require.Len(t, sitemap.URLs, 2)

	require.Equal(t, "http://example.com/first-post", sitemap.URLs[0].Loc)
	require.Equal(t, testTime(5).Format(time.RFC3339), sitemap.URLs[0].LastMod,
		"lastmod is the later of publication and modification")

	require.Equal(t, "http://example.com/second-post", sitemap.URLs[1].Loc)
	require.Equal(t, testTime(3).Format(time.RFC3339), sitemap.URLs[1].LastMod)
}
