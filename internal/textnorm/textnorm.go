// Package textnorm cleans extracted document text before field extraction:
// wrapped amounts and labels are rejoined, label spellings unified and
// whitespace collapsed, while line structure is kept.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// maxPasses bounds the fixpoint loop in Normalize.
const maxPasses = 8

// Rule is one regexp rewrite: either a $1-style template or a function of
// the whole match.
type Rule struct {
	re       *regexp.Regexp
	template string
	fn       func(string) string
}

// Apply runs the rule over text.
func (r Rule) Apply(text string) string {
	if r.fn != nil {
		return r.re.ReplaceAllStringFunc(text, r.fn)
	}
	return r.re.ReplaceAllString(text, r.template)
}

// Replace builds a rule that expands template for every match of pattern.
func Replace(pattern, template string) Rule {
	return Rule{re: regexp.MustCompile(pattern), template: template}
}

var wrapRe = regexp.MustCompile(`[ \t]*\n[ \t]*`)

// Join builds a rule that rejoins a multi-word label broken across a line
// wrap. Matching is case-insensitive and the original spelling is kept.
func Join(words ...string) Rule {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = regexp.QuoteMeta(w)
	}
	pattern := `(?i)` + strings.Join(parts, `(?:[ \t]*\n[ \t]*|[ \t]+)`)
	if isWordByte(words[0][0]) {
		pattern = `\b` + pattern
	}
	last := words[len(words)-1]
	if isWordByte(last[len(last)-1]) {
		pattern += `\b`
	}
	return Rule{re: regexp.MustCompile(pattern), fn: func(m string) string {
		return wrapRe.ReplaceAllString(m, " ")
	}}
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

var (
	currencyRules = []Rule{
		Replace(`\$[ \t]*\n[ \t]*(\d)`, `$$${1}`),
		Replace(`(\d)\.[ \t]*\n[ \t]*(\d{2})\b`, `${1}.${2}`),
		Replace(`(\d),[ \t]*\n[ \t]*(\d{3})\b`, `${1},${2}`),
	}

	labelJoins = []Rule{
		Join("Date", "of", "Birth"),
		Join("Date", "of", "Issue"),
		Join("Date", "of", "Signature"),
		Join("Due", "Date"),
		Join("Invoice", "Date"),
		Join("Invoice", "No"),
		Join("Invoice", "Number"),
		Join("Issue", "Date"),
		Join("Patient", "Name"),
		Join("Admission", "Date"),
		Join("Discharge", "Date"),
		Join("BILLED", "TO:"),
		Join("Sub", "Total"),
		Join("Phone", "Number"),
		Join("Cell", "Phone"),
		Join("Referring", "Physician"),
		Join("Primary", "Care", "Physician"),
		Join("Reference", "N°"),
		Join("Telephone", "N°"),
	}

	canonical = []Rule{
		Replace(`(?i)\bsub[ \t-]*total\b`, `Subtotal`),
		Replace(`(?i)\b(?:date[ \t]+of[ \t]+issue|issue[ \t]+date)\b`, `Invoice Date`),
		Replace(`(?i)\binvoice[ \t]+(?:number\b|no\b\.?)`, `Invoice No`),
		Replace(`(?i)\be-mail\b`, `Email`),
		Replace(`(?i)\b(reference|telephone)[ \t]*(?:n°|no\b\.?|number\b)`, `${1} No`),
		Replace(`(?i)\bd\.[ \t]*o\.[ \t]*b\b\.?`, `DOB`),
	}

	hspaceRe    = regexp.MustCompile(`[ \t\f\v]+`)
	blankRunsRe = regexp.MustCompile(`\n{3,}`)
)

// Normalizer applies the generic rules plus optional template-specific
// joins and canonical spellings. It is immutable and safe for concurrent use.
type Normalizer struct {
	joins     []Rule
	canonical []Rule
}

// New returns the generic normalizer.
func New() *Normalizer {
	return &Normalizer{}
}

// With returns a copy of n that also applies the given joins and canonical
// rules, after the generic ones of the same kind.
func (n *Normalizer) With(joins, canon []Rule) *Normalizer {
	out := &Normalizer{
		joins:     make([]Rule, 0, len(n.joins)+len(joins)),
		canonical: make([]Rule, 0, len(n.canonical)+len(canon)),
	}
	out.joins = append(append(out.joins, n.joins...), joins...)
	out.canonical = append(append(out.canonical, n.canonical...), canon...)
	return out
}

// Normalize rewrites text. The result is a fixpoint: normalizing it again
// returns it unchanged.
func (n *Normalizer) Normalize(text string) string {
	out := prepass(text)
	for i := 0; i < maxPasses; i++ {
		next := n.pass(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

// NormalizePages joins page texts with a newline and normalizes the result.
func (n *Normalizer) NormalizePages(pages []string) string {
	return n.Normalize(strings.Join(pages, "\n"))
}

func prepass(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

func (n *Normalizer) pass(text string) string {
	for _, r := range currencyRules {
		text = r.Apply(text)
	}
	for _, r := range labelJoins {
		text = r.Apply(text)
	}
	for _, r := range n.joins {
		text = r.Apply(text)
	}
	for _, r := range canonical {
		text = r.Apply(text)
	}
	for _, r := range n.canonical {
		text = r.Apply(text)
	}

	text = hspaceRe.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	text = strings.Join(lines, "\n")
	text = blankRunsRe.ReplaceAllString(text, "\n\n")
	// rewrites can leave a combining mark after new base text
	return norm.NFKC.String(strings.TrimSpace(text))
}

var defaultNormalizer = New()

// Normalize applies the generic normalizer.
func Normalize(text string) string {
	return defaultNormalizer.Normalize(text)
}
