package razorblog

import (
	"time"

	"github.com/google/uuid"
)

// Post is the core content type stored in SQLite and handed to templates.
// Excerpt and Body hold markdown source; the markdown package renders them.
type Post struct {
	ID              uuid.UUID
	CategoryID      uuid.UUID // uuid.Nil when the post has no category
	Title           string
	Slug            string
	MetaKeywords    string
	MetaDescription string
	Excerpt         string
	Body            string
	Author          Author
	CommentCount    int
	Published       *time.Time // nil means draft
	LastModified    time.Time
	Category        *Category
	Tags            []Tag
}

// IsPublished reports whether the post is publicly visible at the given time.
func (p *Post) IsPublished(now time.Time) bool {
	return p.Published != nil && !p.Published.After(now)
}

// Author holds the name and email of a post author.
type Author struct {
	Name  string
	Email string
}

// Category groups posts. Categories are created lazily when a post
// references a title that does not yet exist, and are never deleted
// automatically.
type Category struct {
	ID    uuid.UUID
	Title string
	Slug  string
}

// NewCategory wraps a bare title into a category. The id and slug are
// assigned when the owning post is saved.
func NewCategory(title string) *Category {
	return &Category{Title: title}
}

// Tag is owned by a single post. The same title may exist under different
// posts as distinct rows; uniqueness is scoped to (post id, slug).
type Tag struct {
	ID     uuid.UUID
	PostID uuid.UUID
	Title  string
	Slug   string
}

// NewTag wraps a bare title into a tag. The id, owning post, and slug are
// assigned when the owning post is saved.
func NewTag(title string) Tag {
	return Tag{Title: title}
}

// Comment belongs to a post. Only approved comments appear in listings and
// count toward the post's CommentCount.
type Comment struct {
	ID          uuid.UUID
	PostID      uuid.UUID
	AuthorName  string
	AuthorEmail string
	Body        string
	IsApproved  bool
	Published   time.Time
}

// Setting is a persisted key/value pair backing blog-wide configuration.
// The value is a JSON-serialized scalar.
type Setting struct {
	ID    uuid.UUID
	Key   string
	Value string
}

// ArchiveFilter describes a single archive request. It is built by the
// router from the request path and consumed once by GetArchive.
type ArchiveFilter struct {
	Category string // category slug, empty when absent
	Tag      string // tag slug, empty when absent
	Year     int    // 0 when absent
	Month    int    // 0 when absent
	Page     int    // 1-based requested page
}

// Pagination holds the prev/next links for an archive page.
type Pagination struct {
	HasPrev  bool
	HasNext  bool
	PrevLink string
	NextLink string
}

// PostList is a resolved, paginated archive page.
type PostList struct {
	Items      []Post
	Category   *Category // resolved category, nil when unfiltered or unknown
	Tag        *Tag      // resolved tag, nil when unfiltered or unknown
	Year       int
	Month      int
	Page       int
	PageCount  int
	Pagination Pagination
}

// CommentList is a page of approved comments for a single post.
type CommentList struct {
	Items []Comment
	Page  int // 0-based
}
