package stanza

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const sessionName = "stanza_editor"

// Serve builds the site, then serves the output with live reload: content
// changes rebuild and notify every open tab. With the editor enabled, the
// admin UI is mounted under /_stanza/admin/.
func (e *Engine) Serve() error {
	if e.edit {
		if e.Config.EditPassword == "" {
			return fmt.Errorf("stanza: editor requires STANZA_EDIT_PASSWORD")
		}
		if e.Config.SessionSecret == "" {
			// Ephemeral secret: sessions just reset when the server does.
			buf := make([]byte, 32)
			if _, err := rand.Read(buf); err != nil {
				return fmt.Errorf("stanza: generate session secret: %w", err)
			}
			e.Config.SessionSecret = hex.EncodeToString(buf)
		}
		e.loginLimiter = NewLoginLimiter(5, time.Minute)
	}

	site, err := e.Load()
	if err != nil {
		return err
	}
	if _, err := e.BuildSite(site); err != nil {
		return err
	}

	search, err := NewSearchIndex(site)
	if err != nil {
		return err
	}
	defer search.Close()

	reloader := NewReloader()
	watcher, err := NewWatcher(e, func(s *Site) {
		if err := search.Reindex(s); err != nil {
			e.logger.Printf("reindex failed: %v", err)
		}
		reloader.Notify()
	})
	if err != nil {
		return err
	}
	watcher.Start()
	defer watcher.Close()

	srv := echo.New()
	srv.HideBanner = true
	e.setupMiddleware(srv)
	e.setupRoutes(srv, reloader, search)
	for _, fn := range e.customRoutes {
		fn(srv)
	}

	e.logger.Printf("serving %s on %s", e.root, e.Config.Addr)
	if err := srv.Start(e.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (e *Engine) setupMiddleware(srv *echo.Echo) {
	srv.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	srv.HTTPErrorHandler = e.httpErrorHandler(srv)

	srv.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	srv.Use(middleware.Recover())

	srv.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			// The reload stream must flush event by event.
			return c.Request().URL.Path == "/_stanza/reload"
		},
	}))

	srv.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' https: data:; font-src 'self'; connect-src 'self'",
	}))

	if e.edit {
		srv.Use(session.Middleware(e.newSessionStore()))
		srv.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
			ContextKey:     middleware.DefaultCSRFConfig.ContextKey,
			TokenLookup:    "header:X-CSRF-Token,form:_csrf",
			CookieName:     "_csrf",
			CookiePath:     "/",
			CookieSameSite: http.SameSiteLaxMode,
			CookieSecure:   e.Config.CookieSecure,
			Skipper: func(c echo.Context) bool {
				return !strings.HasPrefix(c.Request().URL.Path, "/_stanza/admin")
			},
			ErrorHandler: func(err error, c echo.Context) error {
				return c.String(http.StatusForbidden, "Forbidden")
			},
		}))
	}

	srv.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return strings.HasPrefix(p, "/_stanza") || strings.Contains(path.Base(p), ".")
		},
	}))

	// Everything the dev server hands out is rebuilt at will; caching would
	// only hide edits.
	srv.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("Cache-Control", "no-store")
			return next(c)
		}
	})
}

func (e *Engine) setupRoutes(srv *echo.Echo, reloader *Reloader, search *SearchIndex) {
	srv.GET("/_stanza/reload", reloader.handleSSE)
	srv.GET("/_stanza/livereload.js", handleEmbedded("livereload.js", "application/javascript"))
	srv.GET("/_stanza/admin.css", handleEmbedded("admin.css", "text/css"))
	srv.GET("/_stanza/search", e.handleSearch(search))

	if e.edit {
		srv.GET("/_stanza/admin/", e.handleAdmin)
		srv.POST("/_stanza/admin/login/", e.handleAdminLogin)
		srv.POST("/_stanza/admin/logout/", handleAdminLogout)
		srv.GET("/_stanza/admin/edit/", e.handleAdminEdit)
		srv.POST("/_stanza/admin/save/", e.handleAdminSave)
		srv.POST("/_stanza/admin/delete/", e.handleAdminDelete)
		srv.POST("/_stanza/admin/preview/", e.handleAdminPreview)
		srv.GET("/_stanza/admin/images/", e.handleImageList)
		srv.POST("/_stanza/admin/images/upload/", e.handleImageUpload)
		srv.POST("/_stanza/admin/images/delete/", e.handleImageDelete)
	}

	srv.GET("/*", e.handleSite)
}

// handleSite serves the built output. HTML files get the live reload client
// injected on the way out.
func (e *Engine) handleSite(c echo.Context) error {
	outDir := filepath.Join(e.root, e.Config.OutputDir)
	rel := path.Clean("/" + c.Request().URL.Path)
	target := filepath.Join(outDir, filepath.FromSlash(rel))

	info, err := os.Stat(target)
	if err == nil && info.IsDir() {
		target = filepath.Join(target, "index.html")
		info, err = os.Stat(target)
	}
	if err != nil || info.IsDir() {
		return echo.NewHTTPError(http.StatusNotFound)
	}

	if strings.HasSuffix(target, ".html") {
		html, err := os.ReadFile(target)
		if err != nil {
			return err
		}
		return c.HTMLBlob(http.StatusOK, InjectReloadScript(html))
	}
	return c.File(target)
}

func (e *Engine) handleSearch(search *SearchIndex) echo.HandlerFunc {
	return func(c echo.Context) error {
		hits, err := search.Search(c.QueryParam("q"), 20)
		if err != nil {
			return err
		}
		if hits == nil {
			hits = []SearchHit{}
		}
		return c.JSON(http.StatusOK, hits)
	}
}

func handleEmbedded(name, contentType string) echo.HandlerFunc {
	return func(c echo.Context) error {
		data, err := fs.ReadFile(EmbeddedAssets, "embedded/"+name)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return c.Blob(http.StatusOK, contentType, data)
	}
}

// httpErrorHandler serves the site's own 404.html when it has one.
func (e *Engine) httpErrorHandler(srv *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if he, ok := err.(*echo.HTTPError); ok && he.Code == http.StatusNotFound {
			notFound := filepath.Join(e.root, e.Config.OutputDir, "404.html")
			if html, readErr := os.ReadFile(notFound); readErr == nil {
				_ = c.HTMLBlob(http.StatusNotFound, InjectReloadScript(html))
				return
			}
		}
		if he, ok := err.(*echo.HTTPError); ok && he.Code >= 500 {
			c.Logger().Errorf("server error: %v", err)
		}
		srv.DefaultHTTPErrorHandler(err, c)
	}
}

func (e *Engine) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(e.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60 * 12,
		SameSite: http.SameSiteLaxMode,
		Secure:   e.Config.CookieSecure,
	}
	return store
}

// IsEditor checks if the current session is authenticated.
func IsEditor(c echo.Context) bool {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return false
	}
	auth, ok := sess.Values["authenticated"].(bool)
	return ok && auth
}

func setEditorSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values["authenticated"] = true
	return sess.Save(c.Request(), c.Response())
}

func clearEditorSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
