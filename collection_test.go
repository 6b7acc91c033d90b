package stanza

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func defaultTestConfig() SiteConfig {
	var cfg SiteConfig
	cfg.setDefaults()
	cfg.URL = "https://example.com"
	return cfg
}

// setupContent creates a site root whose content dir holds the given files.
func setupContent(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		writeTestFile(t, filepath.Join(root, "content"), name, content)
	}
	return root
}

func TestLoadSiteOrdersNewestFirst(t *testing.T) {
	root := setupContent(t, map[string]string{
		"posts/2013-08-01-post-b.md": "---\ntitle: Post B\n---\nb\n",
		"posts/2013-08-14-post-a.md": "---\ntitle: Post A\n---\na\n",
	})

	site, err := LoadSite(root, defaultTestConfig(), false)
	if err != nil {
		t.Fatalf("LoadSite failed: %v", err)
	}
	if len(site.Posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(site.Posts))
	}
	if site.Posts[0].Title != "Post A" || site.Posts[1].Title != "Post B" {
		t.Errorf("order = [%s, %s], want [Post A, Post B]",
			site.Posts[0].Title, site.Posts[1].Title)
	}

	index := site.Index()
	if len(index) != 2 {
		t.Fatalf("expected 2 index entries, got %d", len(index))
	}
	if index[0].Title != "Post A" || index[1].Title != "Post B" {
		t.Errorf("index order = [%s, %s], want [Post A, Post B]",
			index[0].Title, index[1].Title)
	}
	if index[0].URL != "/posts/post-a/" {
		t.Errorf("index link = %q, want /posts/post-a/", index[0].URL)
	}
	if !index[0].Date.After(index[1].Date) {
		t.Error("index dates are not descending")
	}
}

func TestLoadSiteSlugBreaksDateTies(t *testing.T) {
	root := setupContent(t, map[string]string{
		"posts/2020-05-05-banana.md": "b\n",
		"posts/2020-05-05-apple.md":  "a\n",
	})

	site, err := LoadSite(root, defaultTestConfig(), false)
	if err != nil {
		t.Fatalf("LoadSite failed: %v", err)
	}
	if site.Posts[0].Slug != "apple" || site.Posts[1].Slug != "banana" {
		t.Errorf("tie order = [%s, %s], want [apple, banana]",
			site.Posts[0].Slug, site.Posts[1].Slug)
	}
}

func TestLoadSiteEmptyContent(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "content"), 0o755); err != nil {
		t.Fatalf("failed to create content dir: %v", err)
	}

	site, err := LoadSite(root, defaultTestConfig(), false)
	if err != nil {
		t.Fatalf("empty content dir should load: %v", err)
	}
	if len(site.Posts) != 0 || len(site.Pages) != 0 {
		t.Errorf("expected empty site, got %d posts, %d pages", len(site.Posts), len(site.Pages))
	}
	if index := site.Index(); len(index) != 0 {
		t.Errorf("empty site index should be empty, got %d entries", len(index))
	}
}

func TestLoadSiteMissingContentDir(t *testing.T) {
	if _, err := LoadSite(t.TempDir(), defaultTestConfig(), false); err == nil {
		t.Error("missing content dir should fail")
	}
}

func TestLoadSiteDuplicateURL(t *testing.T) {
	root := setupContent(t, map[string]string{
		"posts/2020-01-01-same.md": "a\n",
		"posts/2021-01-01-same.md": "b\n",
	})

	_, err := LoadSite(root, defaultTestConfig(), false)
	if err == nil {
		t.Fatal("duplicate post URLs should fail the load")
	}
	if !strings.Contains(err.Error(), "duplicate url") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadSiteDrafts(t *testing.T) {
	root := setupContent(t, map[string]string{
		"posts/2020-01-01-live.md":  "live\n",
		"posts/2020-01-02-draft.md": "---\ndraft: true\n---\nwip\n",
	})

	site, err := LoadSite(root, defaultTestConfig(), false)
	if err != nil {
		t.Fatalf("LoadSite failed: %v", err)
	}
	if len(site.Posts) != 1 || site.Posts[0].Slug != "live" {
		t.Fatalf("drafts should be dropped by default, got %d posts", len(site.Posts))
	}

	site, err = LoadSite(root, defaultTestConfig(), true)
	if err != nil {
		t.Fatalf("LoadSite with drafts failed: %v", err)
	}
	if len(site.Posts) != 2 {
		t.Errorf("drafts mode should keep both posts, got %d", len(site.Posts))
	}
}

func TestLoadSiteSkipsHiddenDirs(t *testing.T) {
	root := setupContent(t, map[string]string{
		"posts/2020-01-01-real.md":    "x\n",
		"_ideas/2020-01-02-hidden.md": "x\n",
		".notes/scratch.md":           "x\n",
	})

	site, err := LoadSite(root, defaultTestConfig(), false)
	if err != nil {
		t.Fatalf("LoadSite failed: %v", err)
	}
	if len(site.Posts) != 1 {
		t.Errorf("expected 1 post, got %d", len(site.Posts))
	}
	if len(site.Pages) != 0 {
		t.Errorf("hidden dirs should not contribute pages, got %d", len(site.Pages))
	}
}

func TestLoadSiteCollectsPagesAndTags(t *testing.T) {
	root := setupContent(t, map[string]string{
		"index.html":               "---\ntitle: Home\n---\n<p>hi</p>\n",
		"about.md":                 "---\ntitle: About\n---\nabout\n",
		"posts/2020-01-01-one.md":  "---\ntags: go web\n---\nx\n",
		"posts/2020-01-02-two.md":  "---\ntags: [Go, cli]\n---\nx\n",
		"posts/2020-01-03-none.md": "x\n",
	})

	site, err := LoadSite(root, defaultTestConfig(), false)
	if err != nil {
		t.Fatalf("LoadSite failed: %v", err)
	}
	if len(site.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(site.Pages))
	}
	// Pages sort by URL, so "/" comes first.
	if site.Pages[0].URL != "/" || site.Pages[1].URL != "/about/" {
		t.Errorf("page order = [%s, %s]", site.Pages[0].URL, site.Pages[1].URL)
	}

	wantTags := []string{"cli", "go", "web"}
	if len(site.Tags) != len(wantTags) {
		t.Fatalf("tags = %v, want %v", site.Tags, wantTags)
	}
	for i, tag := range wantTags {
		if site.Tags[i] != tag {
			t.Errorf("tags[%d] = %q, want %q", i, site.Tags[i], tag)
		}
	}

	goPosts := site.PostsByTag("go")
	if len(goPosts) != 2 {
		t.Errorf("expected 2 posts tagged go, got %d", len(goPosts))
	}
	if post, ok := site.PostByURL("/posts/one/"); !ok || post.Slug != "one" {
		t.Errorf("PostByURL lookup failed: %v %v", post, ok)
	}
}
