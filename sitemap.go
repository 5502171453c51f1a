package razorblog

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// handleSitemap serves /sitemap.xml with every publicly eligible post.
// lastmod is whichever of the publish and last-modified timestamps is
// later.
func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Store.ListPublishedPosts(c.Request().Context(), a.Blog.now().UTC())
	if err != nil {
		return err
	}

	host := c.Scheme() + "://" + c.Request().Host
	urls := make([]sitemapURL, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		lastMod := p.LastModified
		if p.Published.After(lastMod) {
			lastMod = *p.Published
		}
		urls = append(urls, sitemapURL{
			Loc:     host + "/" + p.Slug,
			LastMod: lastMod.Format(time.RFC3339),
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
