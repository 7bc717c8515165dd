// Package fingerprint turns a document layout into a fixed-length numeric
// feature vector used for template classification.
package fingerprint

import (
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/docparse/internal/layout"
)

// Fingerprint is the feature vector of one document plus its most frequent
// font names.
type Fingerprint struct {
	Values   []float64
	TopFonts []string
}

// Equal reports exact equality of values and fonts.
func (f Fingerprint) Equal(o Fingerprint) bool {
	return slices.Equal(f.Values, o.Values) && slices.Equal(f.TopFonts, o.TopFonts)
}

// PrimaryFont returns the most frequent font, or "".
func (f Fingerprint) PrimaryFont() string {
	if len(f.TopFonts) == 0 {
		return ""
	}
	return f.TopFonts[0]
}

type Config struct {
	HeaderBand float64 // fraction of page height counted as header; default 0.2
	FooterBand float64 // fraction of page height counted as footer; default 0.2
	TopFonts   int     // default 3
	Keywords   []KeywordGroup
}

// Extractor computes fingerprints. It holds no per-document state and is
// safe for concurrent use.
type Extractor struct {
	cfg    Config
	schema Schema
	lower  [][]string
}

func NewExtractor(cfg Config) *Extractor {
	if cfg.HeaderBand <= 0 || cfg.HeaderBand >= 1 {
		cfg.HeaderBand = 0.2
	}
	if cfg.FooterBand <= 0 || cfg.FooterBand >= 1 {
		cfg.FooterBand = 0.2
	}
	if cfg.TopFonts <= 0 {
		cfg.TopFonts = 3
	}
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = DefaultKeywordGroups()
	}
	lower := make([][]string, len(cfg.Keywords))
	for i, g := range cfg.Keywords {
		for _, p := range g.Phrases {
			if p = strings.ToLower(p); p != "" {
				lower[i] = append(lower[i], p)
			}
		}
	}
	return &Extractor{cfg: cfg, schema: NewSchema(cfg.Keywords), lower: lower}
}

// Schema returns the slot layout of the vectors this extractor produces.
func (e *Extractor) Schema() Schema { return e.schema }

// Compute returns the fingerprint of doc. Missing data yields zero slots.
func (e *Extractor) Compute(doc *layout.Document) Fingerprint {
	values := make([]float64, e.schema.Len())
	if doc == nil || len(doc.Pages) == 0 {
		return Fingerprint{Values: values, TopFonts: []string{}}
	}

	var (
		sumW, sumH           float64
		total                int
		header, footer, body int
		sizeSum              float64
		fontCount            = map[string]int{}
		fontOrder            []string
		texts                = make([]string, 0, len(doc.Pages))
	)
	for _, p := range doc.Pages {
		sumW += p.Width
		sumH += p.Height
		headerY := p.Height * e.cfg.HeaderBand
		footerY := p.Height * (1 - e.cfg.FooterBand)

		for _, t := range p.Tokens {
			n := charCount(t.Text)
			if n == 0 {
				continue
			}
			total += n
			sizeSum += t.FontSize * float64(n)

			font := t.FontName
			if font == "" {
				font = "unknown"
			}
			if _, ok := fontCount[font]; !ok {
				fontOrder = append(fontOrder, font)
			}
			fontCount[font] += n

			switch {
			case p.Height > 0 && t.Bottom <= headerY:
				header += n
			case p.Height > 0 && t.Bottom >= footerY:
				footer += n
			default:
				body += n
			}
		}
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}

	pages := float64(len(doc.Pages))
	values[0] = pages
	values[1] = sumW / pages
	values[2] = sumH / pages
	if total > 0 {
		values[3] = float64(header) / float64(total)
		values[4] = float64(footer) / float64(total)
		values[5] = float64(body) / float64(total)
		values[6] = sizeSum / float64(total)
	}

	full := strings.ToLower(strings.Join(texts, "\n"))
	for i, phrases := range e.lower {
		count := 0
		for _, p := range phrases {
			count += strings.Count(full, p)
		}
		values[len(baseSlots)+i] = float64(count)
	}

	return Fingerprint{Values: values, TopFonts: topFonts(fontOrder, fontCount, e.cfg.TopFonts)}
}

// topFonts ranks fonts by count; ties keep first-encountered order.
func topFonts(order []string, counts map[string]int, k int) []string {
	ranked := slices.Clone(order)
	sort.SliceStable(ranked, func(i, j int) bool { return counts[ranked[i]] > counts[ranked[j]] })
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	if ranked == nil {
		ranked = []string{}
	}
	return ranked
}

func charCount(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
