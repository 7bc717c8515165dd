package layout

import (
	"context"
	"strings"
)

// Token is one positioned word on a page. Coordinates are in points with the
// origin at the top-left corner of the page.
type Token struct {
	Text     string  `json:"text"`
	X0       float64 `json:"x0"`
	Top      float64 `json:"top"`
	X1       float64 `json:"x1"`
	Bottom   float64 `json:"bottom"`
	FontName string  `json:"fontname"`
	FontSize float64 `json:"size"`
}

// Page is the layout of a single page.
type Page struct {
	Number int     `json:"number"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Text   string  `json:"text"`
	Tokens []Token `json:"tokens"`
}

// Document is a read-only handle to the layout of one input file.
type Document struct {
	ID    string `json:"id"`
	Path  string `json:"path,omitempty"`
	Pages []Page `json:"pages"`
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	if d == nil {
		return 0
	}
	return len(d.Pages)
}

// Texts returns the raw text of every page, in page order.
func (d *Document) Texts() []string {
	if d == nil {
		return nil
	}
	out := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		out = append(out, p.Text)
	}
	return out
}

// FullText joins the page texts with a newline.
func (d *Document) FullText() string {
	return strings.Join(d.Texts(), "\n")
}

// IsEmpty reports whether no page carries any text or tokens.
func (d *Document) IsEmpty() bool {
	if d == nil {
		return true
	}
	for _, p := range d.Pages {
		if strings.TrimSpace(p.Text) != "" || len(p.Tokens) > 0 {
			return false
		}
	}
	return true
}

// Provider yields the layout of a document stored at path.
// Pages without extractable text come back with empty token lists, not errors.
type Provider interface {
	Load(ctx context.Context, path string) (*Document, error)
}
