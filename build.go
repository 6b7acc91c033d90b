package stanza

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tripraptomo/stanza/markdown"
)

// BuildResult summarizes one build pass.
type BuildResult struct {
	Posts    int
	Pages    int
	TagPages int
	Pruned   int
	Duration time.Duration
}

// Build loads the content tree and renders the whole site into the output
// directory. The output is recreated from scratch on every run; building the
// same content twice produces byte-identical files.
func (e *Engine) Build() (*BuildResult, error) {
	site, err := e.Load()
	if err != nil {
		return nil, err
	}
	return e.BuildSite(site)
}

// BuildSite renders an already loaded site. The dev server uses this to
// rebuild after an edit without reparsing twice.
func (e *Engine) BuildSite(site *Site) (*BuildResult, error) {
	start := time.Now()
	cfg := site.Config

	layouts, err := LoadLayouts(filepath.Join(e.root, cfg.LayoutsDir), FuncMap(cfg))
	if err != nil {
		return nil, err
	}

	live := make(map[string]struct{}, len(site.Posts)+len(site.Pages))
	for i := range site.Posts {
		p := &site.Posts[i]
		live[e.cacheKey(p.SourcePath)] = struct{}{}
		content, err := e.renderBody(p.SourcePath, p.Body)
		if err != nil {
			return nil, err
		}
		p.Content = content
	}

	outDir := filepath.Join(e.root, cfg.OutputDir)
	if err := os.RemoveAll(outDir); err != nil {
		return nil, fmt.Errorf("stanza: clean output dir: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("stanza: create output dir: %w", err)
	}

	staticDir := filepath.Join(e.root, cfg.StaticDir)
	if _, err := os.Stat(staticDir); err == nil {
		if err := copyDirContents(staticDir, outDir); err != nil {
			return nil, fmt.Errorf("stanza: copy static assets: %w", err)
		}
	}

	result := &BuildResult{}

	for _, p := range site.Posts {
		data := RenderData{Site: site, Page: postData(p), Content: p.Content}
		if err := e.writeRendered(outDir, p.URL, layouts, p.Layout, data); err != nil {
			return nil, err
		}
		result.Posts++
	}

	for i := range site.Pages {
		p := &site.Pages[i]
		if !p.Templated {
			live[e.cacheKey(p.SourcePath)] = struct{}{}
		}
		content, err := e.renderPageContent(site, *p)
		if err != nil {
			return nil, err
		}
		p.Content = content
		data := RenderData{Site: site, Page: pageData(*p), Content: content}
		if err := e.writeRendered(outDir, p.URL, layouts, p.Layout, data); err != nil {
			return nil, err
		}
		result.Pages++
	}

	// Tag listings render only when the site ships a tag layout.
	withTags := layouts.Has("tag")
	if withTags {
		for _, tag := range site.Tags {
			url := "/tags/" + Slugify(tag) + "/"
			data := RenderData{Site: site, Page: PageData{
				Title: "Tagged " + tag,
				URL:   url,
				Tag:   tag,
				Posts: site.PostsByTag(tag),
			}}
			if err := e.writeRendered(outDir, url, layouts, "tag", data); err != nil {
				return nil, err
			}
			result.TagPages++
		}
	}

	if err := writeOutputFile(filepath.Join(outDir, "feed.xml"), func(w io.Writer) error {
		return WriteFeed(w, site)
	}); err != nil {
		return nil, err
	}
	if err := writeOutputFile(filepath.Join(outDir, "sitemap.xml"), func(w io.Writer) error {
		return WriteSitemap(w, site, withTags)
	}); err != nil {
		return nil, err
	}
	if err := writeOutputFile(filepath.Join(outDir, "robots.txt"), func(w io.Writer) error {
		return WriteRobots(w, site)
	}); err != nil {
		return nil, err
	}

	if e.cache != nil {
		result.Pruned = e.cache.Prune(live)
	}

	result.Duration = time.Since(start)
	e.logger.Printf("built %d posts, %d pages, %d tag pages in %s",
		result.Posts, result.Pages, result.TagPages, result.Duration.Round(time.Millisecond))
	return result, nil
}

// renderBody converts a markdown body to HTML, consulting the render cache
// when one is configured.
func (e *Engine) renderBody(source string, body []byte) (template.HTML, error) {
	key := e.cacheKey(source)
	if e.cache != nil {
		if html, ok := e.cache.Get(key, body); ok {
			return template.HTML(html), nil
		}
	}
	out, err := markdown.Render(body)
	if err != nil {
		return "", fmt.Errorf("stanza: render %s: %w", source, err)
	}
	if e.cache != nil {
		e.cache.Put(key, body, string(out))
	}
	return template.HTML(out), nil
}

// renderPageContent produces the inner HTML for a page. HTML pages are
// executed as templates against the loaded site, which is how the home page
// iterates the post collection; markdown pages render like post bodies.
// Templated output depends on site state, so it is never cached.
func (e *Engine) renderPageContent(site *Site, page Page) (template.HTML, error) {
	if !page.Templated {
		return e.renderBody(page.SourcePath, page.Body)
	}
	tmpl, err := template.New(filepath.Base(page.SourcePath)).
		Funcs(FuncMap(site.Config)).
		Parse(string(page.Body))
	if err != nil {
		return "", fmt.Errorf("stanza: parse page template %s: %w", page.SourcePath, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, RenderData{Site: site, Page: pageData(page)}); err != nil {
		return "", fmt.Errorf("stanza: execute page template %s: %w", page.SourcePath, err)
	}
	return template.HTML(buf.String()), nil
}

// writeRendered renders data through the named layout into <url>/index.html
// under outDir.
func (e *Engine) writeRendered(outDir, url string, layouts *Layouts, layout string, data RenderData) error {
	var buf bytes.Buffer
	if err := layouts.Render(&buf, layout, data); err != nil {
		return err
	}
	dir := filepath.Join(outDir, filepath.FromSlash(strings.Trim(url, "/")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("stanza: create %s: %w", dir, err)
	}
	path := filepath.Join(dir, "index.html")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("stanza: write %s: %w", path, err)
	}
	return nil
}

// cacheKey converts a source path to a root-relative, slash-separated key so
// cache rows survive the site directory moving.
func (e *Engine) cacheKey(source string) string {
	rel, err := filepath.Rel(e.root, source)
	if err != nil {
		return filepath.ToSlash(source)
	}
	return filepath.ToSlash(rel)
}

func postData(p Post) PageData {
	return PageData{
		Title:   p.Title,
		Date:    p.Date,
		Tags:    p.Tags,
		Summary: p.Summary,
		URL:     p.URL,
		IsPost:  true,
	}
}

func pageData(p Page) PageData {
	return PageData{
		Title: p.Title,
		URL:   p.URL,
	}
}

func writeOutputFile(path string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("stanza: write %s: %w", path, err)
	}
	return nil
}

// copyDirContents copies everything under src into dst, preserving the
// directory structure.
func copyDirContents(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := os.Create(target)
		if err != nil {
			return err
		}
		defer out.Close()
		if _, err := io.Copy(out, in); err != nil {
			return err
		}
		return out.Close()
	})
}
