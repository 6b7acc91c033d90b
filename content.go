package stanza

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
)

// postNameRe matches the YYYY-MM-DD-slug naming convention for post files.
var postNameRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)$`)

// matter is the metadata block at the top of a content file. Tags stay
// untyped because authors write them both as YAML lists and as a single
// space-separated string.
type matter struct {
	Layout    string      `yaml:"layout"`
	Title     string      `yaml:"title"`
	Summary   string      `yaml:"summary"`
	Tags      interface{} `yaml:"tags"`
	Date      string      `yaml:"date"`
	Published *bool       `yaml:"published"`
	Draft     bool        `yaml:"draft"`
}

// ParsePostName splits a post filename like "2013-08-14-hello-world.md" into
// its publication date and slug.
func ParsePostName(name string) (time.Time, string, error) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	m := postNameRe.FindStringSubmatch(base)
	if m == nil {
		return time.Time{}, "", fmt.Errorf("stanza: post %q: name must look like YYYY-MM-DD-slug", name)
	}
	date, err := time.Parse("2006-01-02", m[1])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("stanza: post %q: %w", name, err)
	}
	return date, m[2], nil
}

// ReadPost parses a single post file. The filename supplies date and slug; a
// date key in the front matter overrides the filename date.
func ReadPost(path string) (Post, error) {
	f, err := os.Open(path)
	if err != nil {
		return Post{}, fmt.Errorf("stanza: open post: %w", err)
	}
	defer f.Close()

	var m matter
	body, err := frontmatter.Parse(f, &m)
	if err != nil {
		return Post{}, fmt.Errorf("stanza: front matter in %s: %w", path, err)
	}

	date, slug, err := ParsePostName(filepath.Base(path))
	if err != nil {
		return Post{}, err
	}
	if m.Date != "" {
		d, err := parseDate(m.Date)
		if err != nil {
			return Post{}, fmt.Errorf("stanza: post %s: %w", path, err)
		}
		date = d
	}

	title := strings.TrimSpace(m.Title)
	if title == "" {
		title = TitleFromSlug(slug)
	}
	layout := m.Layout
	if layout == "" {
		layout = "post"
	}

	post := Post{
		Title:      title,
		Date:       date,
		Tags:       parseTags(m.Tags),
		Summary:    strings.TrimSpace(m.Summary),
		Layout:     layout,
		Slug:       slug,
		URL:        "/posts/" + slug + "/",
		SourcePath: path,
		Body:       body,
		Published:  m.Published == nil || *m.Published,
	}
	if m.Draft {
		post.Published = false
	}
	if post.Summary == "" {
		post.Summary = Excerpt(body, 200)
	}
	return post, nil
}

// ReadPage parses a page file. The URL mirrors the file's location under the
// content dir: content/about.md becomes /about/, content/index.html becomes /.
func ReadPage(contentDir, path string) (Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return Page{}, fmt.Errorf("stanza: open page: %w", err)
	}
	defer f.Close()

	var m matter
	body, err := frontmatter.Parse(f, &m)
	if err != nil {
		return Page{}, fmt.Errorf("stanza: front matter in %s: %w", path, err)
	}

	rel, err := filepath.Rel(contentDir, path)
	if err != nil {
		return Page{}, fmt.Errorf("stanza: page path %s: %w", path, err)
	}
	rel = filepath.ToSlash(rel)
	ext := filepath.Ext(rel)
	trimmed := strings.TrimSuffix(rel, ext)

	var pageURL string
	switch {
	case trimmed == "index":
		pageURL = "/"
	case strings.HasSuffix(trimmed, "/index"):
		pageURL = "/" + strings.TrimSuffix(trimmed, "/index") + "/"
	default:
		pageURL = "/" + trimmed + "/"
	}

	title := strings.TrimSpace(m.Title)
	if title == "" {
		title = TitleFromSlug(filepath.Base(trimmed))
	}
	layout := m.Layout
	if layout == "" {
		layout = "page"
	}

	return Page{
		Title:      title,
		Layout:     layout,
		URL:        pageURL,
		SourcePath: path,
		Body:       body,
		Templated:  ext == ".html",
	}, nil
}

// parseDate accepts the date formats that show up in front matter.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", "2006-01-02T15:04:05", time.RFC3339} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseTags normalizes the untyped tags value from the front matter.
func parseTags(v interface{}) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return NormalizeTags(strings.FieldsFunc(t, func(r rune) bool {
			return r == ' ' || r == ',' || r == '\t'
		}))
	case []interface{}:
		tags := make([]string, 0, len(t))
		for _, item := range t {
			tags = append(tags, fmt.Sprintf("%v", item))
		}
		return NormalizeTags(tags)
	case []string:
		return NormalizeTags(t)
	default:
		return nil
	}
}

// Excerpt derives a plain-text summary from a markdown body: the first
// paragraph that is not a heading or code fence, truncated to max runes.
func Excerpt(body []byte, max int) string {
	for _, block := range strings.Split(string(body), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" || strings.HasPrefix(block, "#") || strings.HasPrefix(block, "```") {
			continue
		}
		text := strings.Join(strings.Fields(block), " ")
		runes := []rune(text)
		if len(runes) > max {
			return string(runes[:max]) + "…"
		}
		return text
	}
	return ""
}
