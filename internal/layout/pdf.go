package layout

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

type PDFConfig struct {
	WordGapRatio  float64 // gap, as a fraction of font size, that splits two glyphs into separate words; default 0.3
	LineTolerance float64 // vertical tolerance when building page text; default DefaultLineTolerance
	MaxPages      int     // 0 = no limit
}

// PDFProvider reads embedded text and glyph positions from PDF files.
type PDFProvider struct {
	cfg    PDFConfig
	logger *slog.Logger
}

func NewPDFProvider(cfg PDFConfig, logger *slog.Logger) *PDFProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.WordGapRatio <= 0 {
		cfg.WordGapRatio = 0.3
	}
	if cfg.LineTolerance <= 0 {
		cfg.LineTolerance = DefaultLineTolerance
	}
	return &PDFProvider{cfg: cfg, logger: logger}
}

// Load opens path and extracts one Page per PDF page. A page whose content
// stream cannot be decoded yields an empty page.
func (p *PDFProvider) Load(ctx context.Context, path string) (*Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		p.logger.Error("layout.pdf.open_failed", "path", path, "error", err)
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			p.logger.Warn("layout.pdf.close_failed", "path", path, "error", cerr)
		}
	}()

	n := r.NumPage()
	if p.cfg.MaxPages > 0 && n > p.cfg.MaxPages {
		n = p.cfg.MaxPages
	}
	doc := &Document{
		ID:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path:  path,
		Pages: make([]Page, 0, n),
	}
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			doc.Pages = append(doc.Pages, Page{Number: i})
			continue
		}
		doc.Pages = append(doc.Pages, p.readPage(page, i))
	}
	p.logger.Debug("layout.pdf.ok", "path", path, "pages", len(doc.Pages))
	return doc, nil
}

func (p *PDFProvider) readPage(page pdf.Page, number int) Page {
	w, h := mediaBox(page)
	out := Page{Number: number, Width: w, Height: h}

	glyphs, ok := p.content(page, number)
	if !ok || len(glyphs) == 0 {
		return out
	}
	out.Tokens = p.mergeGlyphs(glyphs, h)
	out.Text = LinesText(GroupLines(out.Tokens, p.cfg.LineTolerance))
	return out
}

// content recovers from decoder panics on malformed streams.
func (p *PDFProvider) content(page pdf.Page, number int) (texts []pdf.Text, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("layout.pdf.page_unreadable", "page", number, "panic", fmt.Sprint(r))
			texts, ok = nil, false
		}
	}()
	return page.Content().Text, true
}

// mergeGlyphs joins consecutive glyphs that share a baseline and sit close
// together into word tokens.
func (p *PDFProvider) mergeGlyphs(glyphs []pdf.Text, pageHeight float64) []Token {
	var (
		tokens []Token
		cur    *Token
		lastY  float64
		lastX1 float64
	)
	flush := func() {
		if cur != nil && strings.TrimSpace(cur.Text) != "" {
			tokens = append(tokens, *cur)
		}
		cur = nil
	}
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		if strings.TrimFunc(g.S, unicode.IsSpace) == "" {
			flush()
			continue
		}
		size := g.FontSize
		gap := p.cfg.WordGapRatio * size
		if cur != nil && (math.Abs(g.Y-lastY) > 0.5 || g.X-lastX1 > gap || g.X < cur.X0) {
			flush()
		}
		top := pageHeight - g.Y - size
		bottom := pageHeight - g.Y
		if cur == nil {
			cur = &Token{
				X0:       g.X,
				Top:      top,
				Bottom:   bottom,
				FontName: g.Font,
				FontSize: size,
			}
		}
		cur.Text += g.S
		cur.X1 = g.X + g.W
		if top < cur.Top {
			cur.Top = top
		}
		if bottom > cur.Bottom {
			cur.Bottom = bottom
		}
		lastY = g.Y
		lastX1 = g.X + g.W
	}
	flush()
	return tokens
}

// mediaBox returns page width and height, following inherited MediaBox
// entries up the page tree. Falls back to US Letter.
func mediaBox(page pdf.Page) (float64, float64) {
	v := page.V
	for depth := 0; depth < 16 && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() == 4 {
			x0, y0 := box.Index(0).Float64(), box.Index(1).Float64()
			x1, y1 := box.Index(2).Float64(), box.Index(3).Float64()
			return math.Abs(x1 - x0), math.Abs(y1 - y0)
		}
		v = v.Key("Parent")
	}
	return 612, 792
}
