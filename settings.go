package razorblog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Setting keys. Values are stored JSON-serialized.
const (
	settingTitle       = "razorblog_title"
	settingDescription = "razorblog_description"
	settingBlogPrefix  = "razorblog_blogprefix"
	settingArchiveSlug = "razorblog_archiveslug"
	settingPageSize    = "razorblog_pagesize"
	settingTheme       = "razorblog_theme"
)

// Settings provides typed access to blog-wide configuration persisted in
// the repository. Each value is computed at most once per process: the
// first read either loads the stored value or writes the default, then
// serves it from memory. Construct one Settings per process and share it.
type Settings struct {
	repo Repository

	mu     sync.Mutex
	values map[string]string // raw serialized value per key
}

// NewSettings creates a Settings service backed by repo.
func NewSettings(repo Repository) *Settings {
	return &Settings{repo: repo, values: make(map[string]string)}
}

// get loads the raw value for key, writing the default on first ever read.
// The mutex covers the whole load-or-initialize step so concurrent first
// reads converge on a single stored default.
func (s *Settings) get(ctx context.Context, key string, def any, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.values[key]
	if !ok {
		stored, found, err := s.repo.GetSetting(ctx, key)
		if err != nil {
			return fmt.Errorf("razorblog: setting %s: %w", key, err)
		}
		if !found {
			b, err := json.Marshal(def)
			if err != nil {
				return err
			}
			stored = string(b)
			if err := s.repo.SetSetting(ctx, key, stored); err != nil {
				return fmt.Errorf("razorblog: setting %s: %w", key, err)
			}
		}
		s.values[key] = stored
		raw = stored
	}
	return json.Unmarshal([]byte(raw), out)
}

func (s *Settings) set(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.SetSetting(ctx, key, string(b)); err != nil {
		return fmt.Errorf("razorblog: setting %s: %w", key, err)
	}
	s.values[key] = string(b)
	return nil
}

// Title returns the main blog title.
func (s *Settings) Title(ctx context.Context) (string, error) {
	var v string
	err := s.get(ctx, settingTitle, "RazorBlog", &v)
	return v, err
}

// SetTitle updates the main blog title.
func (s *Settings) SetTitle(ctx context.Context, v string) error {
	return s.set(ctx, settingTitle, v)
}

// Description returns the main blog description.
func (s *Settings) Description(ctx context.Context) (string, error) {
	var v string
	err := s.get(ctx, settingDescription, "Minimal & Fast Blogging", &v)
	return v, err
}

// SetDescription updates the main blog description.
func (s *Settings) SetDescription(ctx context.Context, v string) error {
	return s.set(ctx, settingDescription, v)
}

// BlogPrefix returns the URL prefix for the entire blog.
func (s *Settings) BlogPrefix(ctx context.Context) (string, error) {
	var v string
	err := s.get(ctx, settingBlogPrefix, "/", &v)
	return v, err
}

// SetBlogPrefix updates the URL prefix for the entire blog.
func (s *Settings) SetBlogPrefix(ctx context.Context, v string) error {
	return s.set(ctx, settingBlogPrefix, v)
}

// ArchiveSlug returns the URL slug for the blog archive.
func (s *Settings) ArchiveSlug(ctx context.Context) (string, error) {
	var v string
	err := s.get(ctx, settingArchiveSlug, "/blog", &v)
	return v, err
}

// SetArchiveSlug updates the URL slug for the blog archive.
func (s *Settings) SetArchiveSlug(ctx context.Context, v string) error {
	return s.set(ctx, settingArchiveSlug, v)
}

// PageSize returns the page size for post and comment listings.
func (s *Settings) PageSize(ctx context.Context) (int, error) {
	var v int
	err := s.get(ctx, settingPageSize, 5, &v)
	return v, err
}

// SetPageSize updates the page size for post and comment listings.
func (s *Settings) SetPageSize(ctx context.Context, v int) error {
	return s.set(ctx, settingPageSize, v)
}

// Theme returns the currently active theme.
func (s *Settings) Theme(ctx context.Context) (string, error) {
	var v string
	err := s.get(ctx, settingTheme, "Persona", &v)
	return v, err
}

// SetTheme updates the currently active theme.
func (s *Settings) SetTheme(ctx context.Context, v string) error {
	return s.set(ctx, settingTheme, v)
}
