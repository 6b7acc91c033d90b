package stanza

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v2"
)

// SiteConfig holds all configuration for a stanza site. It is read from
// site.yaml at the site root; every field has a usable default so an empty
// file (or no file at all) still builds.
type SiteConfig struct {
	Title       string `yaml:"title"`       // Site title (default "A Stanza Site")
	URL         string `yaml:"url"`         // Canonical URL for feeds and absolute links
	Description string `yaml:"description"` // Site description for the feed and meta tags
	Author      string `yaml:"author"`      // Author name for the feed and JSON-LD
	Language    string `yaml:"language"`    // Feed language code (default "en-us")

	ContentDir string `yaml:"content_dir"` // Posts and pages (default "content")
	LayoutsDir string `yaml:"layouts_dir"` // HTML layouts (default "layouts")
	StaticDir  string `yaml:"static_dir"`  // Copied verbatim into the output (default "static")
	OutputDir  string `yaml:"output_dir"`  // Build target, recreated on every build (default "public")
	CacheDir   string `yaml:"cache_dir"`   // Render cache home (default ".stanza")

	FeedSize int `yaml:"feed_size"` // Max posts in feed.xml (default 20)

	Addr         string `yaml:"addr"`          // Dev server listen address (default ":8080")
	CookieSecure bool   `yaml:"cookie_secure"` // Set true when serving the editor over HTTPS

	// Editor credentials come from the environment, never from site.yaml.
	EditPassword  string `yaml:"-"`
	SessionSecret string `yaml:"-"`
}

func (c *SiteConfig) setDefaults() {
	if c.Title == "" {
		c.Title = "A Stanza Site"
	}
	if c.URL == "" {
		c.URL = "http://localhost:8080"
	}
	if c.Language == "" {
		c.Language = "en-us"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.LayoutsDir == "" {
		c.LayoutsDir = "layouts"
	}
	if c.StaticDir == "" {
		c.StaticDir = "static"
	}
	if c.OutputDir == "" {
		c.OutputDir = "public"
	}
	if c.CacheDir == "" {
		c.CacheDir = ".stanza"
	}
	if c.FeedSize == 0 {
		c.FeedSize = 20
	}
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// LoadConfig reads site.yaml from the site root. A missing file is not an
// error; the site just runs on defaults.
func LoadConfig(root string) (SiteConfig, error) {
	var cfg SiteConfig
	data, err := os.ReadFile(filepath.Join(root, "site.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			cfg.setDefaults()
			return cfg, nil
		}
		return cfg, fmt.Errorf("stanza: read site.yaml: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("stanza: parse site.yaml: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// Option configures additional Engine behavior.
type Option func(*Engine)

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithDrafts includes unpublished posts in builds and the dev server.
func WithDrafts() Option {
	return func(e *Engine) {
		e.drafts = true
	}
}

// WithNoCache disables the render cache; every build renders from scratch.
func WithNoCache() Option {
	return func(e *Engine) {
		e.noCache = true
	}
}

// WithEditor enables the in-browser editor on the dev server. Requires
// STANZA_EDIT_PASSWORD to be set.
func WithEditor() Option {
	return func(e *Engine) {
		e.edit = true
	}
}

// WithConfig overrides fields loaded from site.yaml. Zero-valued fields keep
// their loaded (or default) values.
func WithConfig(fn func(*SiteConfig)) Option {
	return func(e *Engine) {
		fn(&e.Config)
	}
}

// WithCustomRoutes registers additional routes on the dev server's Echo
// instance before it starts.
func WithCustomRoutes(fn func(*echo.Echo)) Option {
	return func(e *Engine) {
		e.customRoutes = append(e.customRoutes, fn)
	}
}
