package scraper

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document wraps a parsed quote page. Extraction strategies only ever read
// from it, so a single instance can be shared across field lookups.
type Document struct {
	doc *goquery.Document
}

// NewDocument parses HTML from r.
func NewDocument(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Document{doc: doc}, nil
}

// Find exposes the underlying selection for strategies that need to walk the
// tree themselves.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Text returns the trimmed text of the first element matching selector.
func (d *Document) Text(selector string) (string, bool) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(sel.Text())
	if text == "" {
		return "", false
	}
	return text, true
}

// Attr returns the named attribute of the first element matching selector.
func (d *Document) Attr(selector, attr string) (string, bool) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	value, ok := sel.Attr(attr)
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// FullText returns the visible text of the whole page. Used by the pattern
// fallback strategies.
func (d *Document) FullText() string {
	return d.doc.Text()
}
