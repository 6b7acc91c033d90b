package stanza

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// WriteSitemap writes a sitemap covering pages, posts, and (when the site
// renders them) tag listings.
func WriteSitemap(w io.Writer, site *Site, withTags bool) error {
	base := site.Config.URL
	var urls []sitemapURL
	for _, p := range site.Pages {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, p.URL)})
	}
	for _, p := range site.Posts {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, p.URL),
			LastMod: p.Date.Format("2006-01-02"),
		})
	}
	if withTags {
		for _, tag := range site.Tags {
			urls = append(urls, sitemapURL{Loc: BuildURL(base, "tags", Slugify(tag))})
		}
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("stanza: write sitemap: %w", err)
	}
	if err := xml.NewEncoder(w).Encode(sitemap); err != nil {
		return fmt.Errorf("stanza: encode sitemap: %w", err)
	}
	return nil
}

// WriteRobots writes a robots.txt pointing crawlers at the sitemap.
func WriteRobots(w io.Writer, site *Site) error {
	sitemapURL := strings.TrimSuffix(site.Config.URL, "/") + "/sitemap.xml"
	_, err := fmt.Fprintf(w, "User-agent: *\nAllow: /\n\nSitemap: %s\n", sitemapURL)
	if err != nil {
		return fmt.Errorf("stanza: write robots.txt: %w", err)
	}
	return nil
}
