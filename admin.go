package stanza

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v2"

	"github.com/tripraptomo/stanza/views"
)

// The editor writes straight to the content files. It never renders output
// itself: the watcher sees every save and rebuilds, same as an edit made in
// a text editor.

func (e *Engine) handleAdmin(c echo.Context) error {
	if !IsEditor(c) {
		return Render(c, views.Login(false, CsrfToken(c)))
	}
	return e.renderDashboard(c, c.QueryParam("msg"))
}

func (e *Engine) handleAdminLogin(c echo.Context) error {
	if !e.loginLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(e.Config.EditPassword)) == 1 {
		if err := setEditorSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/_stanza/admin/")
	}
	return Render(c, views.Login(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearEditorSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/_stanza/admin/")
}

func (e *Engine) handleAdminEdit(c echo.Context) error {
	if !IsEditor(c) {
		return c.Redirect(http.StatusSeeOther, "/_stanza/admin/")
	}
	rel := c.QueryParam("path")
	if rel == "" {
		doc := views.Doc{Date: time.Now().Format("2006-01-02")}
		return Render(c, views.Editor(doc, CsrfToken(c)))
	}
	abs, err := e.resolvePostPath(rel)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	post, err := ReadPost(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return RenderStatus(c, http.StatusNotFound, views.NotFound())
		}
		return err
	}
	doc := views.Doc{
		Path:    rel,
		Slug:    post.Slug,
		Title:   post.Title,
		Date:    post.Date.Format("2006-01-02"),
		Tags:    JoinTags(post.Tags),
		Summary: post.Summary,
		Body:    string(post.Body),
		Draft:   !post.Published,
	}
	return Render(c, views.Editor(doc, CsrfToken(c)))
}

func (e *Engine) handleAdminSave(c echo.Context) error {
	if !IsEditor(c) {
		return c.Redirect(http.StatusSeeOther, "/_stanza/admin/")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}
	title := strings.TrimSpace(c.FormValue("title"))
	slug := strings.TrimSpace(c.FormValue("slug"))
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return c.Redirect(http.StatusSeeOther, "/_stanza/admin/?msg=Slug+is+required.+Add+a+title+or+slug.")
	}
	date := strings.TrimSpace(c.FormValue("date"))
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.Redirect(http.StatusSeeOther, "/_stanza/admin/?msg=Invalid+date+format.+Use+YYYY-MM-DD.")
	}
	tags := NormalizeTags(strings.Split(c.FormValue("tags"), ","))
	body := strings.ReplaceAll(c.FormValue("body"), "\r\n", "\n")

	data, err := composePostFile(title, tags, c.FormValue("summary"), c.FormValue("draft") != "", body)
	if err != nil {
		return err
	}

	newRel := path.Join("posts", date+"-"+slug+".md")
	abs, err := e.resolvePostPath(newRel)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := writeFileAtomic(abs, data); err != nil {
		return err
	}

	// A changed date or slug means a new filename; drop the old file so the
	// post does not build twice.
	oldRel := c.FormValue("path")
	if oldRel != "" && oldRel != newRel {
		if oldAbs, err := e.resolvePostPath(oldRel); err == nil {
			if err := os.Remove(oldAbs); err != nil && !os.IsNotExist(err) {
				return err
			}
			if e.cache != nil {
				e.cache.Invalidate(e.cacheKey(oldAbs))
			}
		}
	}
	return c.Redirect(http.StatusSeeOther, "/_stanza/admin/?msg=Saved.")
}

func (e *Engine) handleAdminDelete(c echo.Context) error {
	if !IsEditor(c) {
		return c.Redirect(http.StatusSeeOther, "/_stanza/admin/")
	}
	rel := c.FormValue("path")
	abs, err := e.resolvePostPath(rel)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return err
	}
	if e.cache != nil {
		e.cache.Invalidate(e.cacheKey(abs))
	}
	return c.Redirect(http.StatusSeeOther, "/_stanza/admin/?msg=Deleted.")
}

func (e *Engine) handleAdminPreview(c echo.Context) error {
	if !IsEditor(c) {
		return c.Redirect(http.StatusSeeOther, "/_stanza/admin/")
	}
	rel := c.FormValue("path")
	abs, err := e.resolvePostPath(rel)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	post, err := ReadPost(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return RenderStatus(c, http.StatusNotFound, views.NotFound())
		}
		return err
	}
	return Render(c, views.Preview(post.Title, string(post.Body)))
}

func (e *Engine) renderDashboard(c echo.Context, msg string) error {
	site, err := LoadSite(e.root, e.Config, true)
	if err != nil {
		return err
	}
	contentDir := filepath.Join(e.root, e.Config.ContentDir)
	rows := make([]views.PostRow, 0, len(site.Posts))
	for _, p := range site.Posts {
		rel, err := filepath.Rel(contentDir, p.SourcePath)
		if err != nil {
			rel = p.SourcePath
		}
		rows = append(rows, views.PostRow{
			Title: p.Title,
			Date:  p.Date.Format("2006-01-02"),
			URL:   p.URL,
			Path:  filepath.ToSlash(rel),
			Draft: !p.Published,
		})
	}
	return Render(c, views.Dashboard(rows, msg, CsrfToken(c)))
}

// resolvePostPath maps a content-relative form path like
// "posts/2024-01-05-hello.md" onto the filesystem, rejecting anything that
// escapes the posts directory.
func (e *Engine) resolvePostPath(rel string) (string, error) {
	cleaned := strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(rel)), "/")
	if !strings.HasPrefix(cleaned, "posts/") || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("stanza: path %q is outside the posts directory", rel)
	}
	return filepath.Join(e.root, e.Config.ContentDir, filepath.FromSlash(cleaned)), nil
}

type savedMatter struct {
	Layout  string   `yaml:"layout,omitempty"`
	Title   string   `yaml:"title"`
	Tags    []string `yaml:"tags,omitempty"`
	Summary string   `yaml:"summary,omitempty"`
	Draft   bool     `yaml:"draft,omitempty"`
}

// composePostFile assembles the on-disk form of a post: a YAML front matter
// block followed by the markdown body.
func composePostFile(title string, tags []string, summary string, draft bool, body string) ([]byte, error) {
	meta, err := yaml.Marshal(savedMatter{
		Title:   title,
		Tags:    tags,
		Summary: strings.TrimSpace(summary),
		Draft:   draft,
	})
	if err != nil {
		return nil, fmt.Errorf("stanza: marshal front matter: %w", err)
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(meta)
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimRight(body, "\n"))
	b.WriteString("\n")
	return []byte(b.String()), nil
}

// writeFileAtomic writes via a temp file and rename so a crashed save never
// leaves a half-written post behind.
func writeFileAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("stanza: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".stanza-save-*")
	if err != nil {
		return fmt.Errorf("stanza: temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("stanza: write %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("stanza: write %s: %w", dest, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("stanza: replace %s: %w", dest, err)
	}
	return nil
}
