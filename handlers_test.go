package razorblog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

// testViews render plain-text markers so tests can assert which view a
// request resolved to.
func testViews() ViewFuncs {
	text := func(s string) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := io.WriteString(w, s)
			return err
		})
	}
	return ViewFuncs{
		Archive: func(list *PostList) templ.Component {
			return text(fmt.Sprintf("archive page %d of %d", list.Page, list.PageCount))
		},
		Post: func(post *Post) templ.Component {
			return text("post " + post.Slug)
		},
		Comments: func(list *CommentList) templ.Component {
			return text(fmt.Sprintf("comments page %d", list.Page))
		},
		NotFound:    func() templ.Component { return text("not found") },
		ServerError: func() templ.Component { return text("server error") },
	}
}

func newHandlerApp(t *testing.T) (*App, *Store) {
	t.Helper()
	b, s := newTestBlog(t)
	a := &App{
		Config: SiteConfig{AssetPrefix: "/assets/"},
		Echo:   echo.New(),
		Store:  s,
		Blog:   b,
		Views:  testViews(),
	}
	return a, s
}

func getContent(t *testing.T, a *App, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	require.NoError(t, a.handleContent(a.Echo.NewContext(req, rec)))
	return rec
}

func TestHandleContentHome(t *testing.T) {
	a, _ := newHandlerApp(t)

	rec := getContent(t, a, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "archive page 1 of 1", rec.Body.String())
}

func TestHandleContentPost(t *testing.T) {
	a, _ := newHandlerApp(t)
	published := testTime(2)
	_, err := a.Blog.SavePost(context.Background(), &Post{Title: "My Post", Published: &published})
	require.NoError(t, err)

	rec := getContent(t, a, "/my-post")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "post my-post", rec.Body.String())
}

func TestHandleContentArchivePaging(t *testing.T) {
	a, s := newHandlerApp(t)
	seedPosts(t, s, 7)

	rec := getContent(t, a, "/blog/page/2")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "archive page 2 of 2", rec.Body.String())
}

func TestHandleContentComments(t *testing.T) {
	a, _ := newHandlerApp(t)
	postID, err := a.Blog.SavePost(context.Background(), &Post{Title: "Commented"})
	require.NoError(t, err)

	rec := getContent(t, a, "/comments/"+postID.String()+"/3")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "comments page 3", rec.Body.String())
}

func TestHandleContentNotFound(t *testing.T) {
	a, _ := newHandlerApp(t)

	for _, path := range []string{"/no-such-post", "/blog", "/comments/not-a-uuid"} {
		rec := getContent(t, a, path)
		require.Equal(t, http.StatusNotFound, rec.Code, path)
		require.Equal(t, "not found", rec.Body.String(), path)
	}
}

func postComment(t *testing.T, a *App, postID string, form url.Values, referer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/comments/"+postID,
		strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	rec := httptest.NewRecorder()
	c := a.Echo.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(postID)
	err := a.handleSaveComment(c)
	if err != nil {
		a.Echo.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestHandleSaveComment(t *testing.T) {
	a, s := newHandlerApp(t)
	postID, err := a.Blog.SavePost(context.Background(), &Post{Title: "Commented"})
	require.NoError(t, err)

	form := url.Values{
		"author_name":  {"Anna"},
		"author_email": {"anna@example.com"},
		"body":         {"Nice post"},
	}
	rec := postComment(t, a, postID.String(), form, "/commented")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/commented", rec.Header().Get(echo.HeaderLocation))

	n, err := s.CountApprovedComments(context.Background(), postID)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestHandleSaveCommentRedirectsHomeWithoutReferer(t *testing.T) {
	a, _ := newHandlerApp(t)
	postID, err := a.Blog.SavePost(context.Background(), &Post{Title: "Commented"})
	require.NoError(t, err)

	form := url.Values{
		"author_name":  {"Anna"},
		"author_email": {"anna@example.com"},
		"body":         {"Nice post"},
	}
	rec := postComment(t, a, postID.String(), form, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
}

func TestHandleSaveCommentRejectsInvalidInput(t *testing.T) {
	a, s := newHandlerApp(t)
	postID, err := a.Blog.SavePost(context.Background(), &Post{Title: "Commented"})
	require.NoError(t, err)

	rec := postComment(t, a, postID.String(), url.Values{"body": {"anonymous"}}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postComment(t, a, uuid.Nil.String()[:10], nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	n, err := s.CountApprovedComments(context.Background(), postID)
	require.NoError(t, err)
	require.Zero(t, n)
}
