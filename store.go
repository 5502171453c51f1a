package razorblog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PostQuery filters QueryPosts. Zero-valued fields are inactive.
type PostQuery struct {
	CategoryID uuid.UUID // narrow to a category
	TagSlug    string    // narrow to posts carrying a tag with this slug
	From, To   time.Time // publish-date window [From, To)
	Now        time.Time // eligibility snapshot; posts published after Now are excluded
	Page       int       // 1-based
	PageSize   int
}

// Repository is the persistence surface the blog service consumes. All
// calls honor the request context for cancellation. Lookups return
// ErrNotFound when no row matches; transient failures propagate unchanged.
type Repository interface {
	FindPostBySlug(ctx context.Context, slug string) (*Post, error)
	FindPostByID(ctx context.Context, id uuid.UUID) (*Post, error)
	QueryPosts(ctx context.Context, q PostQuery) (items []Post, total int, err error)
	ListPublishedPosts(ctx context.Context, now time.Time) ([]Post, error)
	FindCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	FindTagBySlug(ctx context.Context, slug string) (*Tag, error)
	FindCommentByID(ctx context.Context, id uuid.UUID) (*Comment, error)
	CountApprovedComments(ctx context.Context, postID uuid.UUID) (int, error)
	ListApprovedComments(ctx context.Context, postID uuid.UUID, page, pageSize int) ([]Comment, error)
	UpsertPost(ctx context.Context, post *Post) error
	UpsertCategory(ctx context.Context, category *Category) error
	UpsertComment(ctx context.Context, comment *Comment) error
	GetSetting(ctx context.Context, key string) (value string, found bool, err error)
	SetSetting(ctx context.Context, key, value string) error
}

// Stored timestamps are UTC in a fixed-width layout so that string
// comparison in SQL matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// Store implements Repository on top of a SQLite database.
type Store struct {
	db *sql.DB
}

// The schema migration runs exactly once per database across concurrently
// constructed stores.
var (
	migrateMu sync.Mutex
	migrated  = make(map[string]bool)
)

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL allows concurrent readers during writes; the busy timeout makes
	// writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA foreign_keys=ON;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.migrate(path); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(path string) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()
	if migrated[path] {
		return nil
	}
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("razorblog: migrate: %w", err)
	}
	migrated[path] = true
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS categories (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    category_id TEXT,
    title TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    meta_keywords TEXT NOT NULL DEFAULT '',
    meta_description TEXT NOT NULL DEFAULT '',
    excerpt TEXT NOT NULL DEFAULT '',
    body TEXT NOT NULL DEFAULT '',
    author_name TEXT NOT NULL DEFAULT '',
    author_email TEXT NOT NULL DEFAULT '',
    published TEXT,
    last_modified TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tags (
    id TEXT PRIMARY KEY,
    post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    slug TEXT NOT NULL,
    UNIQUE (post_id, slug)
);
CREATE TABLE IF NOT EXISTS comments (
    id TEXT PRIMARY KEY,
    post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    author_name TEXT NOT NULL,
    author_email TEXT NOT NULL,
    body TEXT NOT NULL,
    is_approved INTEGER NOT NULL DEFAULT 0,
    published TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS settings (
    id TEXT PRIMARY KEY,
    key TEXT NOT NULL UNIQUE,
    value TEXT
);
CREATE INDEX IF NOT EXISTS idx_posts_published ON posts(published);
CREATE INDEX IF NOT EXISTS idx_posts_category ON posts(category_id);
CREATE INDEX IF NOT EXISTS idx_tags_slug ON tags(slug);
CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post_id, is_approved);
`

const postColumns = `p.id, p.category_id, p.title, p.slug, p.meta_keywords,
p.meta_description, p.excerpt, p.body, p.author_name, p.author_email,
p.published, p.last_modified,
c.title, c.slug,
(SELECT COUNT(*) FROM comments WHERE post_id = p.id AND is_approved = 1)`

const postFrom = ` FROM posts p LEFT JOIN categories c ON c.id = p.category_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	var (
		p                 Post
		id                string
		categoryID        sql.NullString
		published         sql.NullString
		lastModified      string
		catTitle, catSlug sql.NullString
	)
	err := row.Scan(&id, &categoryID, &p.Title, &p.Slug, &p.MetaKeywords,
		&p.MetaDescription, &p.Excerpt, &p.Body, &p.Author.Name, &p.Author.Email,
		&published, &lastModified, &catTitle, &catSlug, &p.CommentCount)
	if err != nil {
		return nil, err
	}
	if p.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if categoryID.Valid && categoryID.String != "" {
		if p.CategoryID, err = uuid.Parse(categoryID.String); err != nil {
			return nil, err
		}
		if catTitle.Valid {
			p.Category = &Category{ID: p.CategoryID, Title: catTitle.String, Slug: catSlug.String}
		}
	}
	if published.Valid {
		t, err := parseTime(published.String)
		if err != nil {
			return nil, err
		}
		p.Published = &t
	}
	if p.LastModified, err = parseTime(lastModified); err != nil {
		return nil, err
	}
	return &p, nil
}

// loadTags fetches a post's tags ordered by title ascending.
func (s *Store) loadTags(ctx context.Context, postID uuid.UUID) ([]Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, post_id, title, slug FROM tags WHERE post_id = ? ORDER BY title ASC`,
		postID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		var id, pid string
		if err := rows.Scan(&id, &pid, &t.Title, &t.Slug); err != nil {
			return nil, err
		}
		if t.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if t.PostID, err = uuid.Parse(pid); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (s *Store) findPost(ctx context.Context, where string, arg any) (*Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+postFrom+` WHERE `+where, arg)
	post, err := scanPost(row)
	if err != nil {
		return nil, err
	}
	if post.Tags, err = s.loadTags(ctx, post.ID); err != nil {
		return nil, err
	}
	return post, nil
}

// FindPostBySlug returns the post with the given slug regardless of publish
// state, with its category, ordered tags, and approved comment count.
func (s *Store) FindPostBySlug(ctx context.Context, slug string) (*Post, error) {
	return s.findPost(ctx, `p.slug = ?`, slug)
}

// FindPostByID returns the post with the given id.
func (s *Store) FindPostByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	return s.findPost(ctx, `p.id = ?`, id.String())
}

// QueryPosts returns one page of publicly eligible posts matching q,
// ordered by publish date descending, together with the total match count.
func (s *Store) QueryPosts(ctx context.Context, q PostQuery) ([]Post, int, error) {
	where := `p.published IS NOT NULL AND p.published <= ?`
	args := []any{fmtTime(q.Now)}
	if q.CategoryID != uuid.Nil {
		where += ` AND p.category_id = ?`
		args = append(args, q.CategoryID.String())
	}
	if q.TagSlug != "" {
		where += ` AND p.id IN (SELECT post_id FROM tags WHERE slug = ?)`
		args = append(args, q.TagSlug)
	}
	if !q.From.IsZero() {
		where += ` AND p.published >= ? AND p.published < ?`
		args = append(args, fmtTime(q.From), fmtTime(q.To))
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts p WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitArgs := append(args, q.PageSize, (q.Page-1)*q.PageSize)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postColumns+postFrom+` WHERE `+where+
			` ORDER BY p.published DESC LIMIT ? OFFSET ?`, limitArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range items {
		if items[i].Tags, err = s.loadTags(ctx, items[i].ID); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

// ListPublishedPosts returns every publicly eligible post ordered by
// last-modified descending, then publish date ascending. Feed and sitemap
// generators consume this directly.
func (s *Store) ListPublishedPosts(ctx context.Context, now time.Time) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postColumns+postFrom+
			` WHERE p.published IS NOT NULL AND p.published <= ?`+
			` ORDER BY p.last_modified DESC, p.published ASC`, fmtTime(now))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].Tags, err = s.loadTags(ctx, posts[i].ID); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

// FindCategoryBySlug returns the category with the given slug.
func (s *Store) FindCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	var c Category
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, slug FROM categories WHERE slug = ?`, slug).
		Scan(&id, &c.Title, &c.Slug)
	if err != nil {
		return nil, err
	}
	if c.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindTagBySlug returns the first tag with the given slug. Tag slugs repeat
// across posts; any row is representative for archive filtering.
func (s *Store) FindTagBySlug(ctx context.Context, slug string) (*Tag, error) {
	var t Tag
	var id, postID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, post_id, title, slug FROM tags WHERE slug = ? LIMIT 1`, slug).
		Scan(&id, &postID, &t.Title, &t.Slug)
	if err != nil {
		return nil, err
	}
	if t.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if t.PostID, err = uuid.Parse(postID); err != nil {
		return nil, err
	}
	return &t, nil
}

// FindCommentByID returns the comment with the given id.
func (s *Store) FindCommentByID(ctx context.Context, id uuid.UUID) (*Comment, error) {
	var c Comment
	var cid, postID, published string
	var approved int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, post_id, author_name, author_email, body, is_approved, published
		 FROM comments WHERE id = ?`, id.String()).
		Scan(&cid, &postID, &c.AuthorName, &c.AuthorEmail, &c.Body, &approved, &published)
	if err != nil {
		return nil, err
	}
	if c.ID, err = uuid.Parse(cid); err != nil {
		return nil, err
	}
	if c.PostID, err = uuid.Parse(postID); err != nil {
		return nil, err
	}
	c.IsApproved = approved == 1
	if c.Published, err = parseTime(published); err != nil {
		return nil, err
	}
	return &c, nil
}

// CountApprovedComments returns the number of approved comments on a post.
func (s *Store) CountApprovedComments(ctx context.Context, postID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE post_id = ? AND is_approved = 1`,
		postID.String()).Scan(&n)
	return n, err
}

// ListApprovedComments returns one 0-based page of approved comments for a
// post, newest first.
func (s *Store) ListApprovedComments(ctx context.Context, postID uuid.UUID, page, pageSize int) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, post_id, author_name, author_email, body, is_approved, published
		 FROM comments WHERE post_id = ? AND is_approved = 1
		 ORDER BY published DESC LIMIT ? OFFSET ?`,
		postID.String(), pageSize, page*pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		var id, pid, published string
		var approved int
		if err := rows.Scan(&id, &pid, &c.AuthorName, &c.AuthorEmail, &c.Body,
			&approved, &published); err != nil {
			return nil, err
		}
		if c.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if c.PostID, err = uuid.Parse(pid); err != nil {
			return nil, err
		}
		c.IsApproved = approved == 1
		if c.Published, err = parseTime(published); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// UpsertPost writes the post row and replaces its tag set with post.Tags.
// Tags keep the ids the caller assigned; rows for tags no longer present
// are deleted.
func (s *Store) UpsertPost(ctx context.Context, post *Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var published any
	if post.Published != nil {
		published = fmtTime(*post.Published)
	}
	var categoryID any
	if post.CategoryID != uuid.Nil {
		categoryID = post.CategoryID.String()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO posts (id, category_id, title, slug, meta_keywords,
			meta_description, excerpt, body, author_name, author_email,
			published, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			category_id = excluded.category_id,
			title = excluded.title,
			slug = excluded.slug,
			meta_keywords = excluded.meta_keywords,
			meta_description = excluded.meta_description,
			excerpt = excluded.excerpt,
			body = excluded.body,
			author_name = excluded.author_name,
			author_email = excluded.author_email,
			published = excluded.published,
			last_modified = excluded.last_modified`,
		post.ID.String(), categoryID, post.Title, post.Slug, post.MetaKeywords,
		post.MetaDescription, post.Excerpt, post.Body, post.Author.Name,
		post.Author.Email, published, fmtTime(post.LastModified))
	if err != nil {
		return err
	}

	keep := make([]string, 0, len(post.Tags))
	for _, t := range post.Tags {
		keep = append(keep, t.ID.String())
	}
	if len(keep) == 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM tags WHERE post_id = ?`, post.ID.String()); err != nil {
			return err
		}
	} else {
		placeholders := strings.Repeat("?,", len(keep))
		args := []any{post.ID.String()}
		for _, id := range keep {
			args = append(args, id)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM tags WHERE post_id = ? AND id NOT IN (`+
				placeholders[:len(placeholders)-1]+`)`, args...); err != nil {
			return err
		}
	}
	for _, t := range post.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tags (id, post_id, title, slug) VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO NOTHING`,
			t.ID.String(), t.PostID.String(), t.Title, t.Slug); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UpsertCategory writes the category row.
func (s *Store) UpsertCategory(ctx context.Context, category *Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, title, slug) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, slug = excluded.slug`,
		category.ID.String(), category.Title, category.Slug)
	return err
}

// UpsertComment writes the comment row. The owning post reference is never
// changed on update.
func (s *Store) UpsertComment(ctx context.Context, comment *Comment) error {
	approved := 0
	if comment.IsApproved {
		approved = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, post_id, author_name, author_email, body,
			is_approved, published)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			author_name = excluded.author_name,
			author_email = excluded.author_email,
			body = excluded.body,
			is_approved = excluded.is_approved,
			published = excluded.published`,
		comment.ID.String(), comment.PostID.String(), comment.AuthorName,
		comment.AuthorEmail, comment.Body, approved, fmtTime(comment.Published))
	return err
}

// GetSetting returns the raw serialized value stored under key.
func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value.String, true, nil
}

// SetSetting stores the raw serialized value under key.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (id, key, value) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		uuid.NewString(), key, value)
	return err
}
