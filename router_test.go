package razorblog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var routerNow = time.Date(2023, time.August, 10, 12, 0, 0, 0, time.UTC)

func classifyPath(path string) route {
	return classify(path, "/", "/blog", "/assets/", routerNow)
}

func TestClassifyHome(t *testing.T) {
	for _, path := range []string{"", "/"} {
		r := classifyPath(path)
		require.Equal(t, routeHome, r.kind, "path %q", path)
		require.Equal(t, 1, r.filter.Page)
	}
}

func TestClassifyStaticAsset(t *testing.T) {
	r := classifyPath("/assets/css/site.css")
	require.Equal(t, routeStatic, r.kind)
}

func TestClassifyArchive(t *testing.T) {
	cases := []struct {
		name string
		path string
		want ArchiveFilter
	}{
		{"category", "/blog/category/tech", ArchiveFilter{Category: "tech", Page: 1}},
		{"tag", "/blog/tag/go", ArchiveFilter{Tag: "go", Page: 1}},
		{"tag with page", "/blog/tag/go/page/3", ArchiveFilter{Tag: "go", Page: 3}},
		{"year", "/blog/2022", ArchiveFilter{Year: 2022, Page: 1}},
		{"year and month", "/blog/2022/5", ArchiveFilter{Year: 2022, Month: 5, Page: 1}},
		{"future year clamps", "/blog/2999", ArchiveFilter{Year: 2023, Page: 1}},
		{"month clamps high", "/blog/2022/13", ArchiveFilter{Year: 2022, Month: 12, Page: 1}},
		{"month clamps low", "/blog/2022/0", ArchiveFilter{Year: 2022, Month: 1, Page: 1}},
		{"malformed page ignored", "/blog/page/x", ArchiveFilter{Page: 1}},
		{"malformed year ignored", "/blog/then/2022", ArchiveFilter{Year: 2022, Page: 1}},
		{"category and page", "/blog/category/tech/page/2", ArchiveFilter{Category: "tech", Page: 2}},
		{"page terminates parsing", "/blog/page/2/tag/go", ArchiveFilter{Page: 2}},
		{"upper case folds", "/Blog/Tag/Go", ArchiveFilter{Tag: "go", Page: 1}},
		// A numeric category slug is also captured as the year; the grammar
		// deliberately lets filter segments fall through to period parsing.
		{"numeric category doubles as year", "/blog/category/2020",
			ArchiveFilter{Category: "2020", Year: 2020, Page: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := classifyPath(tc.path)
			require.Equal(t, routeArchive, r.kind)
			require.Equal(t, tc.want, r.filter)
		})
	}
}

func TestClassifyBareArchiveSlugIsNoMatch(t *testing.T) {
	r := classifyPath("/blog")
	require.Equal(t, routeNone, r.kind)
}

func TestClassifyComments(t *testing.T) {
	id := uuid.New()

	r := classifyPath("/comments/" + id.String())
	require.Equal(t, routeComments, r.kind)
	require.Equal(t, id, r.postID)
	require.Equal(t, 0, r.page)

	r = classifyPath("/comments/" + id.String() + "/3")
	require.Equal(t, routeComments, r.kind)
	require.Equal(t, 3, r.page)

	// A malformed page degrades to the first page instead of failing.
	r = classifyPath("/comments/" + id.String() + "/x")
	require.Equal(t, routeComments, r.kind)
	require.Equal(t, 0, r.page)
}

func TestClassifyCommentsMalformedID(t *testing.T) {
	r := classifyPath("/comments/not-a-uuid")
	require.Equal(t, routeNone, r.kind)
	require.ErrorIs(t, r.err, ErrMalformedID)
}

func TestClassifySinglePost(t *testing.T) {
	r := classifyPath("/my-first-post")
	require.Equal(t, routePost, r.kind)
	require.Equal(t, "my-first-post", r.slug)
}
