// Package razorblog is a self-hosted blogging engine. It stores posts,
// categories, tags, comments, and settings in SQLite and serves them
// through URL-based content resolution, a paginated archive, RSS/Atom
// feeds, and a sitemap.
//
// Users provide their own templ components via the ViewFuncs struct, and
// razorblog handles the routing, resolution, caching, and database
// operations.
package razorblog

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
)

// App is the central razorblog application. It wires together the store,
// settings, blog service, middleware, and user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Blog   *Blog
	Views  ViewFuncs

	hook         CommentHook
	customRoutes []func(*App)
	staticDir    string
}

// New creates a new razorblog App with the given configuration and view
// functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the database, settings, cache, middleware, and routes,
// and starts the server.
func (a *App) Start() error {
	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("razorblog: init store: %w", err)
	}
	a.Store = store

	var blogOpts []BlogOption
	if a.Config.CacheEnabled {
		blogOpts = append(blogOpts, WithCache(NewMemoryCache()))
	}
	if a.Config.ModerateComments {
		blogOpts = append(blogOpts, WithModeration())
	}
	if a.hook != nil {
		blogOpts = append(blogOpts, WithCommentHook(a.hook))
	}
	a.Blog = NewBlog(store, NewSettings(store), blogOpts...)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static(strings.TrimSuffix(a.Config.AssetPrefix, "/"), a.staticDir)

	// Feeds and the sitemap bypass the content router and read the
	// repository directly.
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed/:format", a.handleFeed)

	e.POST("/comments/:id", a.handleSaveComment)

	// Everything else goes through the path classifier.
	e.GET("/*", a.handleContent)
	e.GET("/", a.handleContent)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if
// empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally
// exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("razorblog: required environment variable %s is not set", key)
	}
	return v
}
