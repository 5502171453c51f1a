package razorblog

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tidyui/razorblog/markdown"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Generator   string    `xml:"generator"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
}

type atomFeed struct {
	XMLName  xml.Name    `xml:"feed"`
	XMLNS    string      `xml:"xmlns,attr"`
	Title    string      `xml:"title"`
	ID       string      `xml:"id"`
	Subtitle string      `xml:"subtitle"`
	Updated  string      `xml:"updated"`
	Entries  []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title      string         `xml:"title"`
	ID         string         `xml:"id"`
	Published  string         `xml:"published"`
	Updated    string         `xml:"updated"`
	Link       atomLink       `xml:"link"`
	Author     atomPerson     `xml:"author"`
	Categories []atomCategory `xml:"category"`
	Content    atomContent    `xml:"content"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
}

type atomPerson struct {
	Name  string `xml:"name"`
	Email string `xml:"email,omitempty"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

type atomContent struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

// handleFeed serves /feed/rss and /feed/atom. Feeds read the repository
// directly: every publicly eligible post, last-modified first.
func (a *App) handleFeed(c echo.Context) error {
	format := c.Param("format")
	if format != "rss" && format != "atom" {
		return echo.ErrNotFound
	}

	ctx := c.Request().Context()
	posts, err := a.Store.ListPublishedPosts(ctx, a.Blog.now().UTC())
	if err != nil {
		return err
	}
	title, err := a.Blog.Settings().Title(ctx)
	if err != nil {
		return err
	}
	description, err := a.Blog.Settings().Description(ctx)
	if err != nil {
		return err
	}

	host := c.Scheme() + "://" + c.Request().Host
	if format == "rss" {
		return renderRSS(c, posts, title, description, host)
	}
	return renderAtom(c, posts, title, description, host)
}

// feedCategories lists the post's category title followed by its tag
// titles.
func feedCategories(p *Post) []string {
	var cats []string
	if p.Category != nil {
		cats = append(cats, p.Category.Title)
	}
	for _, t := range p.Tags {
		cats = append(cats, t.Title)
	}
	return cats
}

func renderRSS(c echo.Context, posts []Post, title, description, host string) error {
	items := make([]rssItem, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		body, err := markdown.ToHTML(p.Body)
		if err != nil {
			return err
		}
		postURL := host + "/" + p.Slug
		author := ""
		if p.Author.Email != "" {
			author = p.Author.Email + " (" + p.Author.Name + ")"
		}
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: body,
			Author:      author,
			Categories:  feedCategories(p),
			PubDate:     p.Published.Format(time.RFC1123Z),
			GUID:        postURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       title,
			Link:        host,
			Description: description,
			Generator:   "RazorBlog",
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}

func renderAtom(c echo.Context, posts []Post, title, description, host string) error {
	var latest time.Time
	entries := make([]atomEntry, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		body, err := markdown.ToHTML(p.Body)
		if err != nil {
			return err
		}
		if p.Published.After(latest) {
			latest = *p.Published
		}
		postURL := host + "/" + p.Slug
		var cats []atomCategory
		for _, term := range feedCategories(p) {
			cats = append(cats, atomCategory{Term: term})
		}
		entries = append(entries, atomEntry{
			Title:      p.Title,
			ID:         postURL,
			Published:  p.Published.Format(time.RFC3339),
			Updated:    p.LastModified.Format(time.RFC3339),
			Link:       atomLink{Href: postURL},
			Author:     atomPerson{Name: p.Author.Name, Email: p.Author.Email},
			Categories: cats,
			Content:    atomContent{Type: "html", Value: body},
		})
	}
	feed := atomFeed{
		XMLNS:    "http://www.w3.org/2005/Atom",
		Title:    title,
		ID:       host,
		Subtitle: description,
		Updated:  latest.Format(time.RFC3339),
		Entries:  entries,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/atom+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
