package stanza

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RenderData is the data context handed to every layout.
type RenderData struct {
	Site    *Site
	Page    PageData
	Content template.HTML
}

// PageData describes the item currently being rendered, whether it came from
// a post, a page, or a generated tag listing.
type PageData struct {
	Title   string
	Date    time.Time
	Tags    []string
	Summary string
	URL     string
	IsPost  bool
	Tag     string // set on tag pages
	Posts   []Post // posts under the current tag
}

// Layouts holds the parsed layout templates for a site. Each named layout is
// a clone of base.html plus the partials plus the layout file itself, so
// every layout fills base.html's content block independently.
type Layouts struct {
	sets map[string]*template.Template
}

// LoadLayouts parses the layouts directory: base.html (required), optional
// partials/*.html, and one named layout per remaining .html file.
func LoadLayouts(dir string, funcs template.FuncMap) (*Layouts, error) {
	basePath := filepath.Join(dir, "base.html")
	if _, err := os.Stat(basePath); err != nil {
		return nil, fmt.Errorf("stanza: layouts: base.html: %w", err)
	}
	base, err := template.New("base.html").Funcs(funcs).ParseFiles(basePath)
	if err != nil {
		return nil, fmt.Errorf("stanza: parse base.html: %w", err)
	}
	partials, err := filepath.Glob(filepath.Join(dir, "partials", "*.html"))
	if err == nil && len(partials) > 0 {
		if base, err = base.ParseFiles(partials...); err != nil {
			return nil, fmt.Errorf("stanza: parse partials: %w", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("stanza: read layouts dir: %w", err)
	}
	sets := make(map[string]*template.Template)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".html") || name == "base.html" {
			continue
		}
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("stanza: clone base layout: %w", err)
		}
		set, err := clone.ParseFiles(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("stanza: parse layout %s: %w", name, err)
		}
		sets[strings.TrimSuffix(name, ".html")] = set
	}
	return &Layouts{sets: sets}, nil
}

// Has reports whether a layout with the given name was loaded.
func (l *Layouts) Has(name string) bool {
	_, ok := l.sets[name]
	return ok
}

// Render executes the named layout with data. Asking for a layout that does
// not exist is a build error, not a silent fallback.
func (l *Layouts) Render(w io.Writer, name string, data RenderData) error {
	set, ok := l.sets[name]
	if !ok {
		return fmt.Errorf("stanza: unknown layout %q", name)
	}
	if err := set.ExecuteTemplate(w, "base.html", data); err != nil {
		return fmt.Errorf("stanza: render layout %s: %w", name, err)
	}
	return nil
}

// FuncMap returns the helper functions available inside layouts.
func FuncMap(cfg SiteConfig) template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string { return t.Format("Jan 2, 2006") },
		"isoDate":    func(t time.Time) string { return t.Format("2006-01-02") },
		"slugify":    Slugify,
		"joinTags":   JoinTags,
		"absURL":     func(p string) string { return BuildURL(cfg.URL, p) },
		"tagURL":     func(tag string) string { return "/tags/" + Slugify(tag) + "/" },
		"siteJSONLD": func() template.JS { return template.JS(WebsiteJsonLD(cfg)) },
		"postJSONLD": func(p PageData) template.JS {
			post := Post{Title: p.Title, Date: p.Date, Tags: p.Tags, Summary: p.Summary, URL: p.URL}
			return template.JS(BlogPostingJsonLD(post, cfg))
		},
	}
}
