package stanza

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// IndexEntry is one line of the post index: the date, title, link triple the
// home page renders for every post.
type IndexEntry struct {
	Date  time.Time
	Title string
	URL   string
}

// LoadSite reads every content file under the site root and assembles the
// ordered collection. Unpublished posts are dropped unless drafts is set.
func LoadSite(root string, cfg SiteConfig, drafts bool) (*Site, error) {
	contentDir := filepath.Join(root, cfg.ContentDir)
	info, err := os.Stat(contentDir)
	if err != nil {
		return nil, fmt.Errorf("stanza: content dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("stanza: content dir %s is not a directory", contentDir)
	}

	site := &Site{Config: cfg}
	postsDir := filepath.Join(contentDir, "posts")

	err = filepath.WalkDir(contentDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != contentDir && (strings.HasPrefix(d.Name(), ".") || strings.HasPrefix(d.Name(), "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		inPosts := strings.HasPrefix(path, postsDir+string(filepath.Separator))
		switch {
		case inPosts && (ext == ".md" || ext == ".markdown"):
			post, err := ReadPost(path)
			if err != nil {
				return err
			}
			site.Posts = append(site.Posts, post)
		case !inPosts && (ext == ".md" || ext == ".markdown" || ext == ".html"):
			page, err := ReadPage(contentDir, path)
			if err != nil {
				return err
			}
			site.Pages = append(site.Pages, page)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("stanza: load content: %w", err)
	}

	if !drafts {
		published := site.Posts[:0]
		for _, p := range site.Posts {
			if p.Published {
				published = append(published, p)
			}
		}
		site.Posts = published
	}

	if err := checkUniqueURLs(site); err != nil {
		return nil, err
	}

	SortPosts(site.Posts)
	sort.Slice(site.Pages, func(i, j int) bool {
		return site.Pages[i].URL < site.Pages[j].URL
	})
	site.Tags = collectTags(site.Posts)
	return site, nil
}

// SortPosts orders posts newest first. The slug breaks date ties so repeated
// builds of the same collection emit identical output.
func SortPosts(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Date.After(posts[j].Date)
		}
		return posts[i].Slug < posts[j].Slug
	})
}

// Index produces the home page listing: a (date, title, link) triple per
// post, newest first. An empty collection yields an empty slice, not an
// error.
func (s *Site) Index() []IndexEntry {
	entries := make([]IndexEntry, 0, len(s.Posts))
	for _, p := range s.Posts {
		entries = append(entries, IndexEntry{Date: p.Date, Title: p.Title, URL: p.URL})
	}
	return entries
}

// PostsByTag returns the posts carrying tag, preserving index order.
func (s *Site) PostsByTag(tag string) []Post {
	tag = strings.ToLower(strings.TrimSpace(tag))
	var out []Post
	for _, p := range s.Posts {
		for _, t := range p.Tags {
			if t == tag {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// PostByURL finds a loaded post by its site-relative URL.
func (s *Site) PostByURL(url string) (Post, bool) {
	for _, p := range s.Posts {
		if p.URL == url {
			return p, true
		}
	}
	return Post{}, false
}

func checkUniqueURLs(site *Site) error {
	seen := make(map[string]string, len(site.Posts)+len(site.Pages))
	claim := func(url, source string) error {
		if prev, ok := seen[url]; ok {
			return fmt.Errorf("stanza: duplicate url %s from %s and %s", url, prev, source)
		}
		seen[url] = source
		return nil
	}
	for _, p := range site.Posts {
		if err := claim(p.URL, p.SourcePath); err != nil {
			return err
		}
	}
	for _, p := range site.Pages {
		if err := claim(p.URL, p.SourcePath); err != nil {
			return err
		}
	}
	return nil
}

func collectTags(posts []Post) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, p := range posts {
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return tags
}
