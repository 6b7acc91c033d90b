package stanza

import (
	"bytes"
	"strings"
	"testing"
)

func feedTestSite(t *testing.T) *Site {
	t.Helper()
	cfg := defaultTestConfig()
	cfg.Title = "Test Site"
	cfg.Description = "Testing"
	return &Site{
		Config: cfg,
		Posts: []Post{
			{Title: "Post A", URL: "/posts/post-a/", Summary: "alpha", Date: mustDate(t, "2013-08-14")},
			{Title: "Post B", URL: "/posts/post-b/", Summary: "beta", Date: mustDate(t, "2013-08-01")},
		},
	}
}

func TestWriteFeed(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFeed(&buf, feedTestSite(t)); err != nil {
		t.Fatalf("failed to write feed: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Errorf("feed missing xml header: %s", out[:60])
	}
	if !strings.Contains(out, `<rss version="2.0">`) {
		t.Errorf("feed missing rss element: %s", out)
	}
	if !strings.Contains(out, "<title>Test Site</title>") {
		t.Errorf("feed missing channel title: %s", out)
	}
	if !strings.Contains(out, "<language>en-us</language>") {
		t.Errorf("feed missing language: %s", out)
	}

	link := "<link>https://example.com/posts/post-a/</link>"
	guid := "<guid>https://example.com/posts/post-a/</guid>"
	if !strings.Contains(out, link) {
		t.Errorf("feed item link should be the absolute post url: %s", out)
	}
	if !strings.Contains(out, guid) {
		t.Errorf("feed guid should match the link: %s", out)
	}
	if !strings.Contains(out, "<pubDate>Wed, 14 Aug 2013 00:00:00 +0000</pubDate>") {
		t.Errorf("feed pubDate not RFC1123Z: %s", out)
	}

	if strings.Index(out, "Post A") > strings.Index(out, "Post B") {
		t.Error("feed items should run newest first")
	}
}

func TestWriteFeedHonorsFeedSize(t *testing.T) {
	site := feedTestSite(t)
	site.Posts = append(site.Posts, Post{
		Title: "Post C", URL: "/posts/post-c/", Date: mustDate(t, "2012-01-01"),
	})
	site.Config.FeedSize = 2

	var buf bytes.Buffer
	if err := WriteFeed(&buf, site); err != nil {
		t.Fatalf("failed to write feed: %v", err)
	}
	out := buf.String()
	if got := strings.Count(out, "<item>"); got != 2 {
		t.Errorf("feed has %d items, want 2", got)
	}
	if strings.Contains(out, "Post C") {
		t.Error("oldest post should fall off a capped feed")
	}
}

func TestWriteFeedEmptySite(t *testing.T) {
	site := &Site{Config: defaultTestConfig()}
	var buf bytes.Buffer
	if err := WriteFeed(&buf, site); err != nil {
		t.Fatalf("empty site should still produce a feed: %v", err)
	}
	if strings.Contains(buf.String(), "<item>") {
		t.Error("empty site feed should have no items")
	}
}

func TestWriteFeedDeterministic(t *testing.T) {
	site := feedTestSite(t)
	var first, second bytes.Buffer
	if err := WriteFeed(&first, site); err != nil {
		t.Fatalf("failed to write feed: %v", err)
	}
	if err := WriteFeed(&second, site); err != nil {
		t.Fatalf("failed to write feed: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("same site produced different feed bytes")
	}
}
