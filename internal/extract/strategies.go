package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Value shapes shared by rule sets.
const (
	isoDate = `\d{4}-\d{2}-\d{2}`
	anyDate = `\d{4}-\d{2}-\d{2}|\d{4}/\d{1,2}/\d{1,2}|\d{1,2}/\d{1,2}/\d{2,4}|(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.? \d{1,2}, \d{4}`
	money   = `[\d,]+\.\d{2}`
)

// Match returns the trimmed capture group of the first match of pattern.
func Match(pattern string, group int) Strategy {
	re := regexp.MustCompile(pattern)
	return func(in Input) any {
		m := re.FindStringSubmatch(in.Text)
		if m == nil || group >= len(m) {
			return nil
		}
		return strings.TrimSpace(m[group])
	}
}

// MatchLast returns the trimmed capture group of the last match of pattern.
func MatchLast(pattern string, group int) Strategy {
	re := regexp.MustCompile(pattern)
	return func(in Input) any {
		all := re.FindAllStringSubmatch(in.Text, -1)
		if len(all) == 0 || group >= len(all[0]) {
			return nil
		}
		return strings.TrimSpace(all[len(all)-1][group])
	}
}

// MatchGroups joins the trimmed, non-empty capture groups of the first match
// of pattern with sep.
func MatchGroups(pattern, sep string, groups ...int) Strategy {
	re := regexp.MustCompile(pattern)
	return func(in Input) any {
		m := re.FindStringSubmatch(in.Text)
		if m == nil {
			return nil
		}
		var parts []string
		for _, g := range groups {
			if g < len(m) {
				if v := strings.TrimSpace(m[g]); v != "" {
					parts = append(parts, v)
				}
			}
		}
		if len(parts) == 0 {
			return nil
		}
		return strings.Join(parts, sep)
	}
}

// MatchAll joins the trimmed whole matches of pattern with sep.
func MatchAll(pattern, sep string) Strategy {
	re := regexp.MustCompile(pattern)
	return func(in Input) any {
		all := re.FindAllString(in.Text, -1)
		if len(all) == 0 {
			return nil
		}
		for i := range all {
			all[i] = strings.TrimSpace(all[i])
		}
		return strings.Join(all, sep)
	}
}

// MatchNotAfter is Match restricted to matches whose preceding text does not
// end with the word prefix followed by one whitespace character (compared
// case-insensitively).
func MatchNotAfter(pattern string, group int, prefix string) Strategy {
	re := regexp.MustCompile(pattern)
	return func(in Input) any {
		for _, loc := range re.FindAllStringSubmatchIndex(in.Text, -1) {
			if precededBy(in.Text[:loc[0]], prefix) {
				continue
			}
			if 2*group+1 >= len(loc) || loc[2*group] < 0 {
				return nil
			}
			return strings.TrimSpace(in.Text[loc[2*group]:loc[2*group+1]])
		}
		return nil
	}
}

func precededBy(before, word string) bool {
	r, size := utf8.DecodeLastRuneInString(before)
	if size == 0 || !unicode.IsSpace(r) {
		return false
	}
	before = before[:len(before)-size]
	if len(before) < len(word) {
		return false
	}
	return strings.EqualFold(before[len(before)-len(word):], word)
}

// Map post-processes the string result of s. fn may return nil to turn a
// hit into a miss.
func Map(s Strategy, fn func(string) any) Strategy {
	return func(in Input) any {
		v, ok := s(in).(string)
		if !ok || v == "" {
			return nil
		}
		return fn(v)
	}
}

// NotNA turns "N/A" results into misses.
func NotNA(s Strategy) Strategy {
	return Map(s, func(v string) any {
		if strings.EqualFold(strings.TrimSpace(v), "N/A") {
			return nil
		}
		return v
	})
}

var leadingLabelRe = regexp.MustCompile(`^[A-Za-z][A-Za-z .'/#]{0,30}:`)

// NotLabel rejects results that start with another label, which is what a
// label-anchored pattern reads when the value itself is blank.
func NotLabel(s Strategy) Strategy {
	return Map(s, func(v string) any {
		if leadingLabelRe.MatchString(v) {
			return nil
		}
		return v
	})
}

// CutAt truncates the result of s at the first match of any pattern.
func CutAt(s Strategy, patterns ...string) Strategy {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(p)
	}
	return Map(s, func(v string) any {
		for _, re := range res {
			if loc := re.FindStringIndex(v); loc != nil {
				v = v[:loc[0]]
			}
		}
		return strings.TrimSpace(v)
	})
}

// Strip removes every match of pattern from the result of s.
func Strip(s Strategy, pattern string) Strategy {
	re := regexp.MustCompile(pattern)
	return Map(s, func(v string) any {
		return strings.TrimSpace(re.ReplaceAllString(v, ""))
	})
}

// ConstIfText returns v for any document with text. Empty documents stay
// empty.
func ConstIfText(v string) Strategy {
	return func(in Input) any {
		if strings.TrimSpace(in.Text) == "" {
			return nil
		}
		return v
	}
}

// LineAfter returns the line offset lines below the first line containing
// marker (case-insensitive).
func LineAfter(marker string, offset int) Strategy {
	upper := strings.ToUpper(marker)
	return func(in Input) any {
		for i, l := range in.Lines {
			if !strings.Contains(strings.ToUpper(l), upper) {
				continue
			}
			if j := i + offset; j >= 0 && j < len(in.Lines) {
				return strings.TrimSpace(in.Lines[j])
			}
			return nil
		}
		return nil
	}
}

// LinesAfter joins the n lines following the first match of pattern.
func LinesAfter(pattern string, n int, sep string) Strategy {
	re := regexp.MustCompile(pattern)
	return func(in Input) any {
		for i, l := range in.Lines {
			if !re.MatchString(l) {
				continue
			}
			if i+n >= len(in.Lines) {
				return nil
			}
			parts := make([]string, 0, n)
			for _, next := range in.Lines[i+1 : i+1+n] {
				parts = append(parts, strings.TrimSpace(next))
			}
			return strings.Join(parts, sep)
		}
		return nil
	}
}

// Within runs s on the part of the text selected by section. An empty
// section is a miss.
func Within(section func(text string) string, s Strategy) Strategy {
	return func(in Input) any {
		sub := section(in.Text)
		if sub == "" {
			return nil
		}
		return s(Input{Text: sub, Lines: strings.Split(sub, "\n"), Pages: in.Pages, Fields: in.Fields})
	}
}

// Part splits the result of s on sep and returns part idx when the result
// has exactly n parts.
func Part(s Strategy, sep string, n, idx int) Strategy {
	return Map(s, func(v string) any {
		parts := strings.Split(v, sep)
		if len(parts) != n {
			return nil
		}
		return strings.TrimSpace(parts[idx])
	})
}

// Word returns word idx of the result of s; negative idx counts from the end.
func Word(s Strategy, idx int) Strategy {
	return Map(s, func(v string) any {
		words := strings.Fields(v)
		i := idx
		if i < 0 {
			i += len(words)
		}
		if i < 0 || i >= len(words) {
			return nil
		}
		return words[i]
	})
}

// FromField reads an already resolved string field.
func FromField(name string) Strategy {
	return func(in Input) any {
		v, ok := in.Fields.String(name)
		if !ok {
			return nil
		}
		return v
	}
}

// JoinFields joins the resolved string fields that are present.
func JoinFields(sep string, names ...string) Strategy {
	return func(in Input) any {
		var parts []string
		for _, n := range names {
			if v, ok := in.Fields.String(n); ok {
				parts = append(parts, v)
			}
		}
		if len(parts) == 0 {
			return nil
		}
		return strings.Join(parts, sep)
	}
}
