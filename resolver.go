package razorblog

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// GetArchive resolves an archive filter into a paginated page of published
// posts. It never fails on absent matches: unknown category or tag slugs
// apply no narrowing and surface as nil entities, and zero matching posts
// still yield a valid single empty page. The whole resolution is evaluated
// against one "now" snapshot so the count and the items agree.
func (b *Blog) GetArchive(ctx context.Context, filter ArchiveFilter) (*PostList, error) {
	now := b.now().UTC()
	pageSize, err := b.settings.PageSize(ctx)
	if err != nil {
		return nil, err
	}

	model := &PostList{}
	q := PostQuery{Now: now, PageSize: pageSize}

	if filter.Category != "" {
		category, err := b.repo.FindCategoryBySlug(ctx, filter.Category)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if category != nil {
			model.Category = category
			q.CategoryID = category.ID
		}
	}

	if filter.Tag != "" {
		tag, err := b.repo.FindTagBySlug(ctx, filter.Tag)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if tag != nil {
			model.Tag = tag
			q.TagSlug = filter.Tag
		}
	}

	// A year beyond the current one is ignored entirely, matching the
	// router's clamp. Months arrive already clamped to [1,12].
	if filter.Year > 0 && filter.Year <= now.Year() {
		model.Year = filter.Year
		model.Month = filter.Month

		month := time.January
		if filter.Month > 0 {
			month = time.Month(filter.Month)
		}
		from := time.Date(filter.Year, month, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(1, 0, 0)
		if filter.Month > 0 {
			to = from.AddDate(0, 1, 0)
		}
		q.From, q.To = from, to
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	q.Page = page

	items, total, err := b.repo.QueryPosts(ctx, q)
	if err != nil {
		return nil, err
	}

	pageCount := (total + pageSize - 1) / pageSize
	if pageCount < 1 {
		pageCount = 1
	}
	if page > pageCount {
		// The requested page is past the end; refetch the last one.
		page = pageCount
		q.Page = page
		if items, _, err = b.repo.QueryPosts(ctx, q); err != nil {
			return nil, err
		}
	}

	model.Items = items
	model.Page = page
	model.PageCount = pageCount

	if pageCount > 1 {
		archiveSlug, err := b.settings.ArchiveSlug(ctx)
		if err != nil {
			return nil, err
		}
		base := archiveSlug
		if model.Category != nil {
			base += "/category/" + model.Category.Slug
		}
		if model.Tag != nil {
			base += "/tag/" + model.Tag.Slug
		}
		if page > 1 {
			model.Pagination.HasPrev = true
			model.Pagination.PrevLink = fmt.Sprintf("%s/page/%d", base, page-1)
		}
		if page < pageCount {
			model.Pagination.HasNext = true
			model.Pagination.NextLink = fmt.Sprintf("%s/page/%d", base, page+1)
		}
	}
	return model, nil
}
