package razorblog

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// ViewFuncs holds user-provided templ components that the engine calls
// when a request resolves. This is the rendering boundary: the engine
// classifies and resolves content, the host owns every template.
type ViewFuncs struct {
	Archive     func(list *PostList) templ.Component
	Post        func(post *Post) templ.Component
	Comments    func(list *CommentList) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}
