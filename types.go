package stanza

import (
	"html/template"
	"time"
)

// Post is a dated piece of content from content/posts. The date comes from
// the filename prefix, everything else from the front matter block.
type Post struct {
	Title      string
	Date       time.Time
	Tags       []string
	Summary    string
	Layout     string
	Slug       string
	URL        string
	SourcePath string
	Body       []byte
	Content    template.HTML
	Published  bool
}

// Page is undated content: the site index, about pages, anything under
// content/ outside posts. HTML pages are executed as templates against the
// loaded site so they can iterate over posts; markdown pages render like
// post bodies.
type Page struct {
	Title      string
	Layout     string
	URL        string
	SourcePath string
	Body       []byte
	Content    template.HTML
	Templated  bool
}

// Site is the fully loaded content tree handed to layouts and writers.
type Site struct {
	Config SiteConfig
	Posts  []Post // newest first; slug breaks date ties
	Pages  []Page
	Tags   []string // sorted, lowercased, deduplicated
}
