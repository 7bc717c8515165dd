// Package dates parses the date shapes found on billing and consent forms.
package dates

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// PivotYear splits two-digit years: below it is 20xx, at or above 19xx.
const PivotYear = 69

var (
	// ErrUnrecognized means the text has none of the known date shapes.
	ErrUnrecognized = errors.New("unrecognized date")
	// ErrInvalid means the shape is known but names no calendar day.
	ErrInvalid = errors.New("invalid calendar date")
)

var (
	ymdRe    = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)
	mdyRe    = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
	mdyShort = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2})$`)

	monthLayouts = []string{"January 2, 2006", "Jan 2, 2006", "Jan. 2, 2006"}
)

// Parse reads YYYY-MM-DD, YYYY/M/D, MM/DD/YYYY (DD/MM/YYYY when the first
// number cannot be a month), M/D/YY and "March 30, 2020" style dates.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if m := ymdRe.FindStringSubmatch(s); m != nil {
		return calendar(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := mdyRe.FindStringSubmatch(s); m != nil {
		a, b := atoi(m[1]), atoi(m[2])
		if a > 12 {
			a, b = b, a
		}
		return calendar(atoi(m[3]), a, b)
	}
	if m := mdyShort.FindStringSubmatch(s); m != nil {
		y := atoi(m[3])
		if y < PivotYear {
			y += 2000
		} else {
			y += 1900
		}
		return calendar(y, atoi(m[1]), atoi(m[2]))
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrUnrecognized
}

func calendar(y, m, d int) (time.Time, error) {
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, ErrInvalid
	}
	return t, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
