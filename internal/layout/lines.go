package layout

import (
	"math"
	"sort"
	"strings"
)

// DefaultLineTolerance is the vertical distance (points) within which two
// tokens are considered to sit on the same visual line.
const DefaultLineTolerance = 3.0

// Line is a visual line: tokens sharing roughly the same vertical position,
// ordered left to right.
type Line struct {
	Top    float64
	Bottom float64
	Tokens []Token
}

// Text joins the line's tokens with single spaces.
func (l Line) Text() string {
	parts := make([]string, 0, len(l.Tokens))
	for _, t := range l.Tokens {
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, " ")
}

// After returns the tokens of the line that start at or right of x.
func (l Line) After(x float64) []Token {
	var out []Token
	for _, t := range l.Tokens {
		if t.X0 >= x {
			out = append(out, t)
		}
	}
	return out
}

// GroupLines groups tokens into visual lines by vertical coordinate. Lines
// come back top to bottom; the input slice is not modified.
func GroupLines(tokens []Token, tolerance float64) []Line {
	if len(tokens) == 0 {
		return nil
	}
	if tolerance <= 0 {
		tolerance = DefaultLineTolerance
	}
	sorted := make([]Token, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Top != sorted[j].Top {
			return sorted[i].Top < sorted[j].Top
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var lines []Line
	for _, t := range sorted {
		n := len(lines)
		if n > 0 && math.Abs(t.Top-lines[n-1].Top) <= tolerance {
			lines[n-1].Tokens = append(lines[n-1].Tokens, t)
			if t.Bottom > lines[n-1].Bottom {
				lines[n-1].Bottom = t.Bottom
			}
			continue
		}
		lines = append(lines, Line{Top: t.Top, Bottom: t.Bottom, Tokens: []Token{t}})
	}
	for i := range lines {
		toks := lines[i].Tokens
		sort.SliceStable(toks, func(a, b int) bool { return toks[a].X0 < toks[b].X0 })
	}
	return lines
}

// LinesText renders lines as newline separated text.
func LinesText(lines []Line) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Text())
	}
	return strings.Join(out, "\n")
}
