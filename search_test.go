package stanza

import (
	"testing"
)

func searchTestSite() *Site {
	return &Site{
		Config: SiteConfig{},
		Posts: []Post{
			{Title: "Deploying with systemd", URL: "/posts/systemd/", Body: []byte("unit files and services"), Tags: []string{"linux"}},
			{Title: "Go concurrency patterns", URL: "/posts/concurrency/", Body: []byte("channels and goroutines"), Tags: []string{"go"}},
		},
		Pages: []Page{
			{Title: "About", URL: "/about/", Body: []byte("who writes this site")},
		},
	}
}

func TestSearchFindsPostsByTitle(t *testing.T) {
	idx, err := NewSearchIndex(searchTestSite())
	if err != nil {
		t.Fatalf("failed to build index: %v", err)
	}
	defer idx.Close()

	hits, err := idx.Search("systemd", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected a hit for systemd")
	}
	if hits[0].URL != "/posts/systemd/" {
		t.Errorf("top hit = %q, want /posts/systemd/", hits[0].URL)
	}
	if hits[0].Title != "Deploying with systemd" {
		t.Errorf("hit title = %q", hits[0].Title)
	}
	if hits[0].Score <= 0 {
		t.Errorf("hit score = %f, want > 0", hits[0].Score)
	}
}

func TestSearchFindsBodyAndPages(t *testing.T) {
	idx, err := NewSearchIndex(searchTestSite())
	if err != nil {
		t.Fatalf("failed to build index: %v", err)
	}
	defer idx.Close()

	hits, err := idx.Search("goroutines", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) == 0 || hits[0].URL != "/posts/concurrency/" {
		t.Errorf("body search hits = %v", hits)
	}

	hits, err = idx.Search("writes", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) == 0 || hits[0].URL != "/about/" {
		t.Errorf("page search hits = %v", hits)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	idx, err := NewSearchIndex(searchTestSite())
	if err != nil {
		t.Fatalf("failed to build index: %v", err)
	}
	defer idx.Close()

	for _, q := range []string{"", "   "} {
		hits, err := idx.Search(q, 10)
		if err != nil {
			t.Fatalf("empty query should not error: %v", err)
		}
		if len(hits) != 0 {
			t.Errorf("empty query returned %d hits", len(hits))
		}
	}
}

func TestSearchReindexReplacesDocuments(t *testing.T) {
	site := searchTestSite()
	idx, err := NewSearchIndex(site)
	if err != nil {
		t.Fatalf("failed to build index: %v", err)
	}
	defer idx.Close()

	site.Posts = site.Posts[1:]
	if err := idx.Reindex(site); err != nil {
		t.Fatalf("failed to reindex: %v", err)
	}

	hits, err := idx.Search("systemd", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("removed post still indexed: %v", hits)
	}
}

func TestSearchLimit(t *testing.T) {
	site := &Site{Config: SiteConfig{}}
	for _, slug := range []string{"a", "b", "c", "d"} {
		site.Posts = append(site.Posts, Post{
			Title: "shared keyword " + slug,
			URL:   "/posts/" + slug + "/",
			Body:  []byte("shared keyword body"),
		})
	}
	idx, err := NewSearchIndex(site)
	if err != nil {
		t.Fatalf("failed to build index: %v", err)
	}
	defer idx.Close()

	hits, err := idx.Search("shared", 2)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("limit ignored, got %d hits", len(hits))
	}
}
