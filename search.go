package stanza

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// SearchHit is one match from the dev server's search endpoint.
type SearchHit struct {
	URL   string  `json:"url"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// SearchIndex is an in-memory full-text index over the loaded posts and
// pages. It exists only while the dev server runs; nothing is persisted.
type SearchIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	titles map[string]string
}

type searchDoc struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tags  string `json:"tags"`
}

// NewSearchIndex indexes the site's posts and pages.
func NewSearchIndex(site *Site) (*SearchIndex, error) {
	s := &SearchIndex{}
	if err := s.Reindex(site); err != nil {
		return nil, err
	}
	return s, nil
}

// Reindex replaces the index contents with the given site's documents. The
// dev server calls this after every rebuild; a fresh index is cheaper than
// diffing deletions out of the old one.
func (s *SearchIndex) Reindex(site *Site) error {
	mapping := bleve.NewIndexMapping()
	index, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return fmt.Errorf("stanza: create search index: %w", err)
	}
	titles := make(map[string]string, len(site.Posts)+len(site.Pages))
	for _, p := range site.Posts {
		doc := searchDoc{Title: p.Title, Body: string(p.Body), Tags: JoinTags(p.Tags)}
		if err := index.Index(p.URL, doc); err != nil {
			return fmt.Errorf("stanza: index %s: %w", p.URL, err)
		}
		titles[p.URL] = p.Title
	}
	for _, p := range site.Pages {
		doc := searchDoc{Title: p.Title, Body: string(p.Body)}
		if err := index.Index(p.URL, doc); err != nil {
			return fmt.Errorf("stanza: index %s: %w", p.URL, err)
		}
		titles[p.URL] = p.Title
	}

	s.mu.Lock()
	old := s.index
	s.index = index
	s.titles = titles
	s.mu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// Search runs a query-string query and returns up to limit hits, best score
// first. An empty query yields no hits.
func (s *SearchIndex) Search(query string, limit int) ([]SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	s.mu.RLock()
	index := s.index
	titles := s.titles
	s.mu.RUnlock()
	if index == nil {
		return nil, nil
	}

	req := bleve.NewSearchRequest(bleve.NewQueryStringQuery(query))
	req.Size = limit
	res, err := index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("stanza: search: %w", err)
	}
	hits := make([]SearchHit, 0, len(res.Hits))
	for _, hit := range res.Hits {
		hits = append(hits, SearchHit{URL: hit.ID, Title: titles[hit.ID], Score: hit.Score})
	}
	return hits, nil
}

// Close releases the index.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil
	}
	err := s.index.Close()
	s.index = nil
	return err
}
