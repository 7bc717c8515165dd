package extract

import (
	"math"
	"strings"

	"github.com/joseph-ayodele/docparse/internal/layout"
)

// columnSlack widens a label's column to the left, in points.
const columnSlack = 5.0

type labelHit struct {
	lines    []layout.Line
	line     int
	first    int // index of the first label token
	last     int // index of the last label token
	colStart float64
	colEnd   float64
}

// findLabel locates the first occurrence of label (whitespace separated
// words, compared case-insensitively) on the visual lines of the pages.
func findLabel(pages []layout.Page, label string) (labelHit, bool) {
	words := strings.Fields(label)
	if len(words) == 0 {
		return labelHit{}, false
	}
	for _, p := range pages {
		lines := layout.GroupLines(p.Tokens, layout.DefaultLineTolerance)
		for li, line := range lines {
			toks := line.Tokens
			for ti := 0; ti+len(words) <= len(toks); ti++ {
				if !tokensMatch(toks[ti:ti+len(words)], words) {
					continue
				}
				last := ti + len(words) - 1
				colEnd := math.Inf(1)
				if last+1 < len(toks) {
					colEnd = toks[last+1].X0
				}
				return labelHit{
					lines:    lines,
					line:     li,
					first:    ti,
					last:     last,
					colStart: toks[ti].X0 - columnSlack,
					colEnd:   colEnd,
				}, true
			}
		}
	}
	return labelHit{}, false
}

func tokensMatch(toks []layout.Token, words []string) bool {
	for i, w := range words {
		if !strings.EqualFold(toks[i].Text, w) {
			return false
		}
	}
	return true
}

func (h labelHit) column(li int) string {
	if li < 0 || li >= len(h.lines) {
		return ""
	}
	var parts []string
	for _, t := range h.lines[li].Tokens {
		if t.X0 >= h.colStart && t.X0 < h.colEnd {
			parts = append(parts, t.Text)
		}
	}
	return strings.Join(parts, " ")
}

// RightOf reads the tokens right of label on its visual line, up to the next
// token that looks like a label (ends with ':').
func RightOf(label string) Strategy {
	return func(in Input) any {
		h, ok := findLabel(in.Pages, label)
		if !ok {
			return nil
		}
		var parts []string
		for _, t := range h.lines[h.line].Tokens[h.last+1:] {
			if strings.HasSuffix(t.Text, ":") {
				break
			}
			parts = append(parts, t.Text)
		}
		if len(parts) == 0 {
			return nil
		}
		return strings.Join(parts, " ")
	}
}

// Below reads the tokens of the next visual line that fall in label's column.
func Below(label string) Strategy {
	return func(in Input) any {
		h, ok := findLabel(in.Pages, label)
		if !ok {
			return nil
		}
		if v := h.column(h.line + 1); v != "" {
			return v
		}
		return nil
	}
}

// AroundLabel handles a value split around its label: the first part on the
// line above and the rest on the line below, both within the label's column.
// The parts are joined with ", ".
func AroundLabel(label string) Strategy {
	return func(in Input) any {
		h, ok := findLabel(in.Pages, label)
		if !ok {
			return nil
		}
		var parts []string
		for _, li := range []int{h.line - 1, h.line + 1} {
			if v := strings.TrimSpace(h.column(li)); v != "" {
				parts = append(parts, v)
			}
		}
		if len(parts) == 0 {
			return nil
		}
		return strings.Join(parts, ", ")
	}
}
