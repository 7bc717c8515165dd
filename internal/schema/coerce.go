package schema

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/docparse/internal/dates"
)

// Date coerces v to YYYY-MM-DD. Recognized shapes that name no real calendar
// day become nil; unrecognized strings are returned trimmed and unchanged.
func Date(v any) any {
	s, ok := text(v)
	if !ok {
		return nil
	}
	t, err := dates.Parse(s)
	switch {
	case err == nil:
		return t.Format(time.DateOnly)
	case errors.Is(err, dates.ErrUnrecognized):
		return s
	default:
		return nil
	}
}

var moneyJunkRe = regexp.MustCompile(`(?i)[$,\s]|usd`)

// Money coerces v to a non-negative amount rounded to cents.
func Money(v any) any {
	var d decimal.Decimal
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		d = decimal.NewFromFloat(x)
	case int:
		d = decimal.NewFromInt(int64(x))
	case decimal.Decimal:
		d = x
	case string:
		s := moneyJunkRe.ReplaceAllString(x, "")
		if s == "" {
			return nil
		}
		var err error
		if d, err = decimal.NewFromString(s); err != nil {
			return nil
		}
	default:
		return nil
	}
	if d.IsNegative() {
		return nil
	}
	f := d.Round(2).InexactFloat64()
	if math.IsInf(f, 0) {
		return nil
	}
	return f
}

// Integer coerces v to an int.
func Integer(v any) any {
	switch x := v.(type) {
	case int:
		return x
	case float64:
		if x != float64(int(x)) {
			return nil
		}
		return int(x)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return nil
		}
		return n
	default:
		return nil
	}
}

// Phone coerces v to NNN-NNN-NNNN, dropping the leading 1 of an 11 digit
// number.
func Phone(v any) any {
	s, ok := text(v)
	if !ok {
		return nil
	}
	digits := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return nil
	}
	return fmt.Sprintf("%s-%s-%s", digits[:3], digits[3:6], digits[6:])
}

var (
	addressSplitRe = regexp.MustCompile(`[\n,]`)
	stateZipRe     = regexp.MustCompile(`^(.*?)\s*\b([A-Za-z]{2})\.?\s+(\d{5}(?:-\d{4})?)$`)
	spacesRe       = regexp.MustCompile(`\s+`)
)

// Address flattens a line or comma broken address into
// "Street, City, ST ZIP". Addresses without a state and ZIP are joined with
// ", " as they are.
func Address(v any) any {
	s, ok := text(v)
	if !ok {
		return nil
	}
	var parts []string
	for _, p := range addressSplitRe.Split(s, -1) {
		if p = strings.TrimSpace(spacesRe.ReplaceAllString(p, " ")); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	m := stateZipRe.FindStringSubmatch(parts[len(parts)-1])
	if m == nil {
		return strings.Join(parts, ", ")
	}
	stateZip := strings.ToUpper(m[2]) + " " + m[3]
	body := parts[:len(parts)-1]
	if city := strings.TrimSpace(m[1]); city != "" {
		body = append(body, city)
	}
	switch len(body) {
	case 0:
		return stateZip
	case 1:
		return body[0] + ", " + stateZip
	default:
		street := strings.Join(body[:len(body)-1], " ")
		return street + ", " + body[len(body)-1] + ", " + stateZip
	}
}

// String trims v; blank strings become nil. Numbers are formatted.
func String(v any) any {
	switch x := v.(type) {
	case string:
		if s := strings.TrimSpace(x); s != "" {
			return s
		}
		return nil
	case int, int64, float64:
		return fmt.Sprint(x)
	default:
		return nil
	}
}

func text(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}
