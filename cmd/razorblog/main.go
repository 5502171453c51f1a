// Command razorblog runs a blog with plain built-in views. Real sites are
// expected to import the library and supply their own templ components.
package main

import (
	"context"
	"fmt"
	"html"
	"io"
	"log"

	"github.com/a-h/templ"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/tidyui/razorblog"
	"github.com/tidyui/razorblog/markdown"
)

func main() {
	_ = godotenv.Load()

	cfg := razorblog.SiteConfig{
		Addr:         razorblog.EnvOr("RAZORBLOG_ADDR", ":3000"),
		DatabasePath: razorblog.EnvOr("RAZORBLOG_DB", "data/blog.db"),
		CacheEnabled: razorblog.EnvOr("RAZORBLOG_CACHE", "1") == "1",
	}

	app := razorblog.New(cfg, defaultViews())
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

func defaultViews() razorblog.ViewFuncs {
	return razorblog.ViewFuncs{
		Archive: func(list *razorblog.PostList) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				fmt.Fprintf(w, "<ul>")
				for i := range list.Items {
					p := &list.Items[i]
					fmt.Fprintf(w, `<li><a href="/%s">%s</a> (%d comments)</li>`,
						p.Slug, html.EscapeString(p.Title), p.CommentCount)
				}
				fmt.Fprintf(w, "</ul><p>page %d of %d</p>", list.Page, list.PageCount)
				return nil
			})
		},
		Post: func(post *razorblog.Post) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				fmt.Fprintf(w, "<h1>%s</h1>", html.EscapeString(post.Title))
				return markdown.Component(post.Body).Render(ctx, w)
			})
		},
		Comments: func(list *razorblog.CommentList) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				fmt.Fprintf(w, "<ol>")
				for _, c := range list.Items {
					fmt.Fprintf(w, "<li><strong>%s</strong>: %s</li>",
						html.EscapeString(c.AuthorName), html.EscapeString(c.Body))
				}
				_, err := fmt.Fprintf(w, "</ol>")
				return err
			})
		},
		NotFound: func() templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				_, err := io.WriteString(w, "<h1>Not found</h1>")
				return err
			})
		},
		ServerError: func() templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				_, err := io.WriteString(w, "<h1>Something went wrong</h1>")
				return err
			})
		},
	}
}
