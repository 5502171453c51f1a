package razorblog

// SiteConfig holds process-level configuration for a razorblog site.
// Blog-wide presentation values (title, prefixes, page size, theme) live in
// the persisted settings instead.
type SiteConfig struct {
	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/blog.db")
	AssetPrefix  string // URL prefix for static assets (default "/assets/")

	CacheEnabled     bool // Enable the in-memory post cache
	ModerateComments bool // New comments start unapproved
}

func (c *SiteConfig) setDefaults() {
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.AssetPrefix == "" {
		c.AssetPrefix = "/assets/"
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithHook installs a comment save hook, invoked synchronously before each
// comment is persisted.
func WithHook(h CommentHook) Option {
	return func(a *App) {
		a.hook = h
	}
}
