// Package stanza is a static site generator built with Go, Echo, and
// goldmark. It turns a directory of front-mattered markdown into a
// deploy-ready site: a post index ordered newest first, tag listings, an RSS
// feed, and a sitemap, with a live-reloading dev server and an optional
// in-browser editor on top.
//
// Users own their layouts as plain html/template files; stanza handles
// loading, rendering, caching, and serving.
package stanza

import (
	"log"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	_ "modernc.org/sqlite"
)

// Engine ties together the loader, render cache, layouts, and writers for a
// single site root.
type Engine struct {
	Config SiteConfig

	root   string
	logger *log.Logger

	store *Store
	cache *RenderCache

	drafts       bool
	noCache      bool
	edit         bool
	customRoutes []func(*echo.Echo)

	loginLimiter *LoginLimiter
}

// New creates an Engine for the site at root. site.yaml is read when
// present; options override what it loaded.
func New(root string, opts ...Option) (*Engine, error) {
	cfg, err := LoadConfig(root)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		Config: cfg,
		root:   root,
		logger: log.New(os.Stderr, "stanza ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.Config.EditPassword == "" {
		e.Config.EditPassword = os.Getenv("STANZA_EDIT_PASSWORD")
	}
	if e.Config.SessionSecret == "" {
		e.Config.SessionSecret = os.Getenv("STANZA_SESSION_SECRET")
	}

	if !e.noCache {
		store, err := NewStore(filepath.Join(root, e.Config.CacheDir, "render.db"))
		if err != nil {
			// A broken cache never blocks a build.
			e.logger.Printf("render cache unavailable: %v", err)
		} else {
			e.store = store
			e.cache = NewRenderCache(store)
		}
	}
	return e, nil
}

// Load reads the content tree into memory as an ordered Site.
func (e *Engine) Load() (*Site, error) {
	return LoadSite(e.root, e.Config, e.drafts)
}

// Root returns the site root directory the engine was created for.
func (e *Engine) Root() string {
	return e.root
}

// Close releases the render cache database. Call it when shutting down.
func (e *Engine) Close() error {
	if e.store != nil {
		return e.store.Close()
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
		log.Fatalf("stanza: required environment variable %s is not set", key)
	}
	return v
}
