package razorblog

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// handleContent classifies the request path and dispatches to the archive
// resolver, the comment lookup, or the single-post lookup. A request that
// resolves to nothing falls through to the NotFound view.
func (a *App) handleContent(c echo.Context) error {
	ctx := c.Request().Context()
	settings := a.Blog.Settings()

	blogPrefix, err := settings.BlogPrefix(ctx)
	if err != nil {
		return err
	}
	archiveSlug, err := settings.ArchiveSlug(ctx)
	if err != nil {
		return err
	}

	r := classify(c.Request().URL.Path, blogPrefix, archiveSlug,
		a.Config.AssetPrefix, a.Blog.now())

	switch r.kind {
	case routeHome, routeArchive:
		archive, err := a.Blog.GetArchive(ctx, r.filter)
		if err != nil {
			return err
		}
		return Render(c, a.Views.Archive(archive))

	case routeComments:
		comments, err := a.Blog.GetComments(ctx, r.postID, r.page)
		if err != nil {
			return err
		}
		return Render(c, a.Views.Comments(comments))

	case routePost:
		post, err := a.Blog.GetPost(ctx, r.slug)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if post != nil {
			return Render(c, a.Views.Post(post))
		}
	}
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
}

// handleSaveComment accepts a comment form posted against a post id and
// redirects back to the referring page.
func (a *App) handleSaveComment(c echo.Context) error {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed post id")
	}

	comment := &Comment{
		PostID:      postID,
		AuthorName:  c.FormValue("author_name"),
		AuthorEmail: c.FormValue("author_email"),
		Body:        c.FormValue("body"),
	}
	if _, err := a.Blog.SaveComment(c.Request().Context(), comment); err != nil {
		if errors.Is(err, ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}

	target := c.Request().Referer()
	if target == "" {
		target = "/"
	}
	return c.Redirect(http.StatusSeeOther, target)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
