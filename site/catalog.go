// Package site holds what the portfolio shows around the background: the
// page catalog, the navigator switching between pages and the
// notification toast.
package site

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// package errors
var (
	ErrUnknownPage   = errors.New("unknown page")
	ErrEmptyCatalog  = errors.New("catalog has no pages")
	ErrDuplicatePage = errors.New("duplicate page id")
	ErrEmptyID       = errors.New("page without id")
)

// Home is the page carrying the animated background
const Home = "home"

// Page is one section of the site
type Page struct {
	ID      string `yaml:"id"`
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
}

// Catalog is the ordered list of pages
type Catalog struct {
	Pages []Page `yaml:"pages"`
}

// LoadCatalog reads a YAML catalog and validates it
func LoadCatalog(r io.Reader) (Catalog, error) {
	var c Catalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Validate checks that the catalog has pages with unique, non empty ids
func (c Catalog) Validate() error {
	if len(c.Pages) == 0 {
		return ErrEmptyCatalog
	}
	seen := make(map[string]bool, len(c.Pages))
	for i, p := range c.Pages {
		if p.ID == "" {
			return fmt.Errorf("page %d: %w", i, ErrEmptyID)
		}
		if seen[p.ID] {
			return fmt.Errorf("%s: %w", p.ID, ErrDuplicatePage)
		}
		seen[p.ID] = true
	}
	return nil
}

// Page looks a page up by id
func (c Catalog) Page(id string) (Page, bool) {
	for _, p := range c.Pages {
		if p.ID == id {
			return p, true
		}
	}
	return Page{}, false
}

// DefaultCatalog is used when no catalog file is configured
func DefaultCatalog() Catalog {
	return Catalog{Pages: []Page{
		{ID: Home, Title: "Home"},
		{ID: "about", Title: "About", Content: "Quality. Design. Unique. Details."},
		{ID: "apps", Title: "Apps"},
	}}
}
