package razorblog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const maxAuthorFieldLen = 128

// Blog is the content service. It owns no request state; every method is
// safe for concurrent use.
type Blog struct {
	repo     Repository
	settings *Settings
	cache    Cache
	hook     CommentHook
	moderate bool
	now      func() time.Time
}

// BlogOption configures a Blog.
type BlogOption func(*Blog)

// WithCache enables the read-through post cache. Without it every cache
// call is a no-op.
func WithCache(c Cache) BlogOption {
	return func(b *Blog) { b.cache = c }
}

// WithCommentHook installs a hook invoked before each comment is persisted.
func WithCommentHook(h CommentHook) BlogOption {
	return func(b *Blog) { b.hook = h }
}

// WithModeration makes new comments default to unapproved.
func WithModeration() BlogOption {
	return func(b *Blog) { b.moderate = true }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) BlogOption {
	return func(b *Blog) { b.now = now }
}

// NewBlog creates the content service.
func NewBlog(repo Repository, settings *Settings, opts ...BlogOption) *Blog {
	b := &Blog{
		repo:     repo,
		settings: settings,
		hook:     noopCommentHook{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Settings returns the settings service.
func (b *Blog) Settings() *Settings {
	return b.settings
}

// GetPost returns the post with the given slug. With a cache configured
// the lookup is read-through: the cache is checked first and populated
// after a successful repository fetch.
func (b *Blog) GetPost(ctx context.Context, slug string) (*Post, error) {
	if b.cache != nil {
		if post := b.cache.Get(slug); post != nil {
			return post, nil
		}
	}
	post, err := b.repo.FindPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if b.cache != nil {
		b.cache.Set(slug, post)
	}
	return post, nil
}

// GetComments returns one 0-based page of approved comments for a post.
func (b *Blog) GetComments(ctx context.Context, postID uuid.UUID, page int) (*CommentList, error) {
	pageSize, err := b.settings.PageSize(ctx)
	if err != nil {
		return nil, err
	}
	items, err := b.repo.ListApprovedComments(ctx, postID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &CommentList{Items: items, Page: page}, nil
}

// SavePost upserts the post by identity and returns its id. A missing id
// or slug is assigned, the category is created lazily when its slug is
// unknown, tags are merged against the stored set, and LastModified is
// refreshed. Any cached entry for the slug is invalidated.
func (b *Blog) SavePost(ctx context.Context, model *Post) (uuid.UUID, error) {
	if model.ID == uuid.Nil {
		model.ID = uuid.New()
	}
	if model.Slug == "" {
		model.Slug = GenerateSlug(model.Title)
	}
	if model.Slug == "" {
		return uuid.Nil, fmt.Errorf("%w: post title yields an empty slug", ErrValidation)
	}

	post, err := b.repo.FindPostByID(ctx, model.ID)
	if errors.Is(err, ErrNotFound) {
		post = &Post{ID: model.ID}
	} else if err != nil {
		return uuid.Nil, err
	}

	mergePost(model, post)

	if model.Category != nil {
		if model.Category.Slug == "" {
			model.Category.Slug = GenerateSlug(model.Category.Title)
		}
		category, err := b.repo.FindCategoryBySlug(ctx, model.Category.Slug)
		if errors.Is(err, ErrNotFound) {
			model.Category.ID = uuid.New()
			if err := b.repo.UpsertCategory(ctx, model.Category); err != nil {
				return uuid.Nil, err
			}
			post.CategoryID = model.Category.ID
		} else if err != nil {
			return uuid.Nil, err
		} else {
			post.CategoryID = category.ID
		}
	}

	post.Tags = mergeTags(post, model.Tags)
	post.LastModified = b.now().UTC()
	if post.Published != nil {
		utc := post.Published.UTC()
		post.Published = &utc
	}

	if err := b.repo.UpsertPost(ctx, post); err != nil {
		return uuid.Nil, err
	}
	if b.cache != nil {
		b.cache.Invalidate(post.Slug)
	}
	return post.ID, nil
}

// mergePost copies every updatable field from src onto dst. Identity,
// category linkage, and tags are merged separately by SavePost; listing
// each field here keeps the copy explicit if the entity grows.
func mergePost(src, dst *Post) {
	dst.Title = src.Title
	dst.Slug = src.Slug
	dst.MetaKeywords = src.MetaKeywords
	dst.MetaDescription = src.MetaDescription
	dst.Excerpt = src.Excerpt
	dst.Body = src.Body
	dst.Author = src.Author
	dst.Published = src.Published
}

// mergeTags applies the incoming tag set against the post's stored tags:
// stored tags missing from incoming are dropped, incoming tags not yet on
// the post get a fresh id, owner, and slug, and stored tags keep their
// existing slug untouched.
func mergeTags(post *Post, incoming []Tag) []Tag {
	wanted := make(map[uuid.UUID]bool, len(incoming))
	for _, t := range incoming {
		wanted[t.ID] = true
	}
	kept := make(map[uuid.UUID]bool)
	var merged []Tag
	for _, t := range post.Tags {
		if wanted[t.ID] {
			merged = append(merged, t)
			kept[t.ID] = true
		}
	}
	for _, t := range incoming {
		if kept[t.ID] {
			continue
		}
		t.ID = uuid.New()
		t.PostID = post.ID
		t.Slug = GenerateSlug(t.Title)
		merged = append(merged, t)
	}
	return merged
}

// SaveComment upserts the comment by identity and returns its id. Author
// name and email are required and limited to 128 characters; validation
// failure writes nothing. New comments are stamped with the current time
// and the configured default approval, and invalidate the owning post's
// cache entry since its comment count changed. The comment hook runs after
// population, before persistence.
func (b *Blog) SaveComment(ctx context.Context, model *Comment) (uuid.UUID, error) {
	if model.ID == uuid.Nil {
		model.ID = uuid.New()
	}
	if model.AuthorName == "" || len(model.AuthorName) > maxAuthorFieldLen {
		return uuid.Nil, fmt.Errorf("%w: author name is required and has a max length of %d characters",
			ErrValidation, maxAuthorFieldLen)
	}
	if model.AuthorEmail == "" || len(model.AuthorEmail) > maxAuthorFieldLen {
		return uuid.Nil, fmt.Errorf("%w: author email is required and has a max length of %d characters",
			ErrValidation, maxAuthorFieldLen)
	}

	comment, err := b.repo.FindCommentByID(ctx, model.ID)
	created := false
	if errors.Is(err, ErrNotFound) {
		created = true
		model.IsApproved = !b.moderate
		model.Published = b.now()
		comment = &Comment{ID: model.ID, PostID: model.PostID}
	} else if err != nil {
		return uuid.Nil, err
	}

	mergeComment(model, comment)
	comment.Published = comment.Published.UTC()

	if err := b.hook.OnSaveComment(comment); err != nil {
		return uuid.Nil, err
	}
	if err := b.repo.UpsertComment(ctx, comment); err != nil {
		return uuid.Nil, err
	}

	if created && b.cache != nil {
		// The post embeds a denormalized approved-comment count.
		post, err := b.repo.FindPostByID(ctx, comment.PostID)
		if err == nil {
			b.cache.Invalidate(post.Slug)
		} else if !errors.Is(err, ErrNotFound) {
			return uuid.Nil, err
		}
	}
	return comment.ID, nil
}

// mergeComment copies every updatable field from src onto dst. Identity
// and the owning post reference are preserved.
func mergeComment(src, dst *Comment) {
	dst.AuthorName = src.AuthorName
	dst.AuthorEmail = src.AuthorEmail
	dst.Body = src.Body
	dst.IsApproved = src.IsApproved
	dst.Published = src.Published
}
