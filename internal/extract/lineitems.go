package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/joseph-ayodele/docparse/internal/layout"
)

// LineItem is one raw billed row. Code may be empty.
type LineItem struct {
	Code        string `json:"code,omitempty"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

var (
	summaryRe     = regexp.MustCompile(`(?i)^\s*(?:sub\s*-?\s*total|discount|total(?:\s+(?:due|amount|charges))?|(?:sales\s+)?tax|balance(?:\s+due)?|amount\s+due)\s*:?\s*$`)
	trailingAmtRe = regexp.MustCompile(`\s*\$?\s*` + money + `\s*$`)
	moneyCellRe   = regexp.MustCompile(`^\$?` + money + `$`)
	codeFirstRe   = regexp.MustCompile(`^([A-Z0-9]{2,})\s+(.+?)\s+\$(` + money + `)$`)
	codeSecondRe  = regexp.MustCompile(`^(.+?)\s+([A-Z0-9]{2,})\s+\$(` + money + `)$`)
	blankAmountRe = regexp.MustCompile(`[$\s]`)
)

// isSummary reports whether a label is exactly a subtotal, discount, total
// or tax label. "Total Knee Replacement" is not.
func isSummary(s string) bool {
	return summaryRe.MatchString(s)
}

// isSummaryRow is isSummary for a whole row whose amount may follow the label.
func isSummaryRow(s string) bool {
	return isSummary(trailingAmtRe.ReplaceAllString(s, ""))
}

func cleanAmount(s string) string {
	return blankAmountRe.ReplaceAllString(s, "")
}

type cellKind int

const (
	colCode cellKind = iota
	colDesc
	colAmount
)

var headerWords = map[string]cellKind{
	"code":        colCode,
	"cpt":         colCode,
	"description": colDesc,
	"service":     colDesc,
	"item":        colDesc,
	"amount":      colAmount,
	"total":       colAmount,
	"charge":      colAmount,
	"price":       colAmount,
}

type headerCell struct {
	col cellKind
	x0  float64
}

// TableItems reads rows aligned under a header line that names at least a
// description and an amount column. Row tokens go to the nearest header cell
// at or left of them; rows end at the first summary line.
func TableItems() Strategy {
	return func(in Input) any {
		var items []LineItem
		for _, p := range in.Pages {
			items = append(items, tableOnPage(layout.GroupLines(p.Tokens, layout.DefaultLineTolerance))...)
		}
		if len(items) == 0 {
			return nil
		}
		return items
	}
}

func tableOnPage(lines []layout.Line) []LineItem {
	for i, line := range lines {
		cells, ok := headerCells(line)
		if !ok {
			continue
		}
		var items []LineItem
		for _, row := range lines[i+1:] {
			text := row.Text()
			if isSummaryRow(text) {
				break
			}
			it, ok := rowItem(row, cells)
			if ok {
				items = append(items, it)
			}
		}
		return items
	}
	return nil
}

func headerCells(line layout.Line) ([]headerCell, bool) {
	var cells []headerCell
	seen := map[cellKind]bool{}
	for _, t := range line.Tokens {
		c, ok := headerWords[strings.ToLower(strings.TrimSuffix(t.Text, ":"))]
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		cells = append(cells, headerCell{col: c, x0: t.X0})
	}
	if !seen[colDesc] || !seen[colAmount] || len(cells) != len(line.Tokens) {
		return nil, false
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].x0 < cells[j].x0 })
	return cells, true
}

func rowItem(row layout.Line, cells []headerCell) (LineItem, bool) {
	parts := map[cellKind][]string{}
	for _, t := range row.Tokens {
		c := cells[0].col
		for _, h := range cells {
			if t.X0+columnSlack >= h.x0 {
				c = h.col
			}
		}
		parts[c] = append(parts[c], t.Text)
	}
	desc := strings.Join(parts[colDesc], " ")
	amount := strings.Join(parts[colAmount], "")
	if desc == "" || !moneyCellRe.MatchString(amount) || isSummary(desc) {
		return LineItem{}, false
	}
	return LineItem{
		Code:        strings.Join(parts[colCode], " "),
		Description: desc,
		Amount:      cleanAmount(amount),
	}, true
}

// Section selects the text between a header and the first summary label.
type Section struct {
	re *regexp.Regexp
}

// NewSection compiles a pattern whose first group captures the item rows.
func NewSection(pattern string) Section {
	return Section{re: regexp.MustCompile(pattern)}
}

func (s Section) find(text string) (string, bool) {
	m := s.re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// SectionItems parses each line of a section with row, whose groups are
// mapped by the code, desc and amount indexes (code 0 means no code).
func SectionItems(sec Section, row string, code, desc, amount int) Strategy {
	rowRe := regexp.MustCompile(row)
	return func(in Input) any {
		body, ok := sec.find(in.Text)
		if !ok {
			return nil
		}
		var items []LineItem
		for _, l := range strings.Split(body, "\n") {
			m := rowRe.FindStringSubmatch(strings.TrimSpace(l))
			if m == nil {
				continue
			}
			it := LineItem{Description: strings.TrimSpace(m[desc]), Amount: cleanAmount(m[amount])}
			if code > 0 {
				it.Code = strings.TrimSpace(m[code])
			}
			if it.Description == "" || isSummary(it.Description) {
				continue
			}
			items = append(items, it)
		}
		if len(items) == 0 {
			return nil
		}
		return items
	}
}

// LinePatternItems matches single lines shaped "CODE description $amount",
// then "description CODE $amount", skipping summary rows.
func LinePatternItems() Strategy {
	return func(in Input) any {
		var items []LineItem
		for _, l := range in.Lines {
			l = strings.TrimSpace(l)
			if l == "" || isSummaryRow(l) {
				continue
			}
			var it LineItem
			if m := codeFirstRe.FindStringSubmatch(l); m != nil {
				it = LineItem{Code: m[1], Description: strings.TrimSpace(m[2]), Amount: cleanAmount(m[3])}
			} else if m := codeSecondRe.FindStringSubmatch(l); m != nil {
				it = LineItem{Code: m[2], Description: strings.TrimSpace(m[1]), Amount: cleanAmount(m[3])}
			} else {
				continue
			}
			if isSummary(it.Description) || isSummary(it.Code) {
				continue
			}
			items = append(items, it)
		}
		if len(items) == 0 {
			return nil
		}
		return items
	}
}
