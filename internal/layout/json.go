package layout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// JSONProvider loads layouts that were extracted ahead of time and saved as
// JSON (the Document shape). Useful for fixtures and for layouts produced by
// an external extractor.
type JSONProvider struct {
	LineTolerance float64
}

func (p JSONProvider) Load(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open layout: %w", err)
	}
	defer f.Close()

	doc, err := p.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode layout %s: %w", path, err)
	}
	doc.Path = path
	if doc.ID == "" {
		doc.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}

// Decode reads one Document. Pages that carry tokens but no text get their
// text rebuilt from the tokens.
func (p JSONProvider) Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	for i := range doc.Pages {
		pg := &doc.Pages[i]
		if pg.Number == 0 {
			pg.Number = i + 1
		}
		if pg.Text == "" && len(pg.Tokens) > 0 {
			pg.Text = LinesText(GroupLines(pg.Tokens, p.LineTolerance))
		}
	}
	return &doc, nil
}

// MultiProvider dispatches on file extension.
type MultiProvider struct {
	ByExt map[string]Provider
}

func (m MultiProvider) Load(ctx context.Context, path string) (*Document, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	p, ok := m.ByExt[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported extension: %q", ext)
	}
	return p.Load(ctx, path)
}
