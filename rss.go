package stanza

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language,omitempty"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

// WriteFeed writes an RSS 2.0 feed of the newest posts to w. The feed
// carries no build timestamp, so rebuilding unchanged content produces
// byte-identical output.
func WriteFeed(w io.Writer, site *Site) error {
	cfg := site.Config
	posts := site.Posts
	if len(posts) > cfg.FeedSize {
		posts = posts[:cfg.FeedSize]
	}
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		postURL := BuildURL(cfg.URL, p.URL)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: p.Summary,
			PubDate:     p.Date.Format(time.RFC1123Z),
			GUID:        postURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.Title,
			Link:        cfg.URL,
			Description: cfg.Description,
			Language:    cfg.Language,
			Items:       items,
		},
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("stanza: write feed: %w", err)
	}
	if err := xml.NewEncoder(w).Encode(feed); err != nil {
		return fmt.Errorf("stanza: encode feed: %w", err)
	}
	return nil
}
