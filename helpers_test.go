package stanza

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func contains(s, sub string) bool { return strings.Contains(s, sub) }

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"Go 1.22 Released!", "go-1-22-released"},
		{"  spaces   everywhere  ", "spaces-everywhere"},
		{"already-a-slug", "already-a-slug"},
		{"MiXeD CaSe", "mixed-case"},
		{"trailing---", "trailing"},
		{"--leading", "leading"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.input); got != tt.expected {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestTitleFromSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello-world", "Hello World"},
		{"writing-a-static-site", "Writing A Static Site"},
		{"single", "Single"},
	}
	for _, tt := range tests {
		if got := TitleFromSlug(tt.input); got != tt.expected {
			t.Errorf("TitleFromSlug(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		expected string
	}{
		{"https://example.com", []string{"posts", "hello"}, "https://example.com/posts/hello/"},
		{"https://example.com/", []string{"/posts/hello/"}, "https://example.com/posts/hello/"},
		{"https://example.com/blog", []string{"feed"}, "https://example.com/blog/feed/"},
		{"https://example.com", nil, "https://example.com"},
		{"https://example.com/", nil, "https://example.com/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.expected {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.expected)
		}
	}
}

func TestFilterEmpty(t *testing.T) {
	got := FilterEmpty([]string{"a", "", "  ", "b", "\t"})
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("FilterEmpty = %v, want [a b]", got)
	}
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		input    []string
		expected []string
	}{
		{[]string{"Go", "go", "GO"}, []string{"go"}},
		{[]string{" Web ", "", "API"}, []string{"web", "api"}},
		{[]string{"b", "a", "b"}, []string{"b", "a"}},
		{nil, nil},
	}
	for _, tt := range tests {
		if got := NormalizeTags(tt.input); !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("NormalizeTags(%v) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestRelatedPosts(t *testing.T) {
	current := Post{URL: "/posts/a/", Tags: []string{"go", "web"}}
	posts := []Post{
		current,
		{URL: "/posts/b/", Tags: []string{"go"}},
		{URL: "/posts/c/", Tags: []string{"rust"}},
		{URL: "/posts/d/", Tags: []string{"web", "go"}},
	}
	related := RelatedPosts(current, posts)
	if len(related) != 2 {
		t.Fatalf("expected 2 related posts, got %d", len(related))
	}
	if related[0].URL != "/posts/b/" || related[1].URL != "/posts/d/" {
		t.Errorf("unexpected related posts: %v, %v", related[0].URL, related[1].URL)
	}
}

func TestJoinTags(t *testing.T) {
	if got := JoinTags([]string{"go", "web"}); got != "go, web" {
		t.Errorf("JoinTags = %q, want %q", got, "go, web")
	}
	if got := JoinTags(nil); got != "" {
		t.Errorf("JoinTags(nil) = %q, want empty", got)
	}
}

func TestWebsiteJsonLD(t *testing.T) {
	cfg := SiteConfig{Title: "My Site", URL: "https://example.com", Description: "stuff", Author: "Jo"}
	got := WebsiteJsonLD(cfg)
	for _, want := range []string{`"@type":"WebSite"`, `"name":"My Site"`, `"Jo"`} {
		if !contains(got, want) {
			t.Errorf("WebsiteJsonLD missing %q: %s", want, got)
		}
	}
}

func TestBlogPostingJsonLD(t *testing.T) {
	cfg := SiteConfig{Title: "My Site", URL: "https://example.com", Author: "Jo"}
	post := Post{Title: "Hello", Summary: "hi", URL: "/posts/hello/", Date: mustDate(t, "2013-08-14")}
	got := BlogPostingJsonLD(post, cfg)
	for _, want := range []string{
		`"@type":"BlogPosting"`,
		`"headline":"Hello"`,
		`"datePublished":"2013-08-14"`,
		`"url":"https://example.com/posts/hello/"`,
	} {
		if !contains(got, want) {
			t.Errorf("BlogPostingJsonLD missing %q: %s", want, got)
		}
	}
}
