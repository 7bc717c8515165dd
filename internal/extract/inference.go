package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/docparse/internal/dates"
)

var (
	isoDateRe = regexp.MustCompile(isoDate)
	netTermRe = regexp.MustCompile(`(?i)\bnet\s*(\d{1,3})\b`)
)

// DueDateSecondISO returns the second ISO date appearing before the first
// match of boundary (or in the whole text when boundary does not match).
// Header blocks that print "issue date, due date" side by side read this way.
func DueDateSecondISO(boundary string) Strategy {
	re := regexp.MustCompile(boundary)
	return func(in Input) any {
		head := in.Text
		if loc := re.FindStringIndex(head); loc != nil {
			head = head[:loc[0]]
		}
		dates := isoDateRe.FindAllString(head, 2)
		if len(dates) < 2 {
			return nil
		}
		return dates[1]
	}
}

// DueDateFromTerms adds the "net N" payment term to invoice_date, in any of
// the shapes dates.Parse reads.
func DueDateFromTerms() Strategy {
	return func(in Input) any {
		issued, ok := in.Fields.String("invoice_date")
		if !ok {
			return nil
		}
		t, err := dates.Parse(issued)
		if err != nil {
			return nil
		}
		m := netTermRe.FindStringSubmatch(in.Text)
		if m == nil {
			return nil
		}
		days, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		return t.AddDate(0, 0, days).Format(time.DateOnly)
	}
}

// TotalFromSubtotal derives total_amount as subtotal minus discount (a
// missing discount counts as zero). A negative result is a miss.
func TotalFromSubtotal() Strategy {
	return func(in Input) any {
		sub, ok := fieldDecimal(in.Fields, "subtotal_amount")
		if !ok {
			return nil
		}
		disc, ok := fieldDecimal(in.Fields, "discount_amount")
		if !ok {
			disc = decimal.Zero
		}
		total := sub.Sub(disc)
		if total.IsNegative() {
			return nil
		}
		return total.StringFixed(2)
	}
}

func fieldDecimal(f Fields, name string) (decimal.Decimal, bool) {
	s, ok := f.String(name)
	if !ok {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(cleanAmount(s), ",", ""))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
