// Package normalize canonicalizes the raw text the scheduling platform
// exposes: phone numbers, dates, times and visit-state labels. All
// functions are pure; reconciliation compares fields only through the
// equality helpers here.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical booking date format.
const DateLayout = "02.01.2006"

var (
	digitsRe   = regexp.MustCompile(`\D`)
	timeRe     = regexp.MustCompile(`(\d{1,2}:\d{2})`)
	dmyRe      = regexp.MustCompile(`^(\d{1,2})[./](\d{1,2})[./](\d{2,4})`)
	isoRe      = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})`)
	bareTimeRe = regexp.MustCompile(`\d{1,2}:\d{2}`)
	dmSepRe    = regexp.MustCompile(`\d{1,2}[./]\d{1,2}[./]`)
)

// Phone reduces a raw phone string to +7XXXXXXXXXX form: non-digits are
// stripped, a leading 8 becomes 7, and a missing country code is
// prepended. Total: any input yields a best-effort result.
func Phone(raw string) string {
	digits := digitsRe.ReplaceAllString(raw, "")
	if strings.HasPrefix(digits, "8") {
		digits = "7" + digits[1:]
	}
	if !strings.HasPrefix(digits, "7") {
		digits = "7" + digits
	}
	return "+" + digits
}

// Date extracts a DD.MM.YYYY date from raw. Accepts D.M.Y and D/M/Y with
// a 2- or 4-digit year, and ISO YYYY-MM-DD. A bare time token like
// "11:00" is not a date. Returns "" when nothing recognizable is found.
func Date(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || !strings.ContainsAny(s, "0123456789") {
		return ""
	}
	if bareTimeRe.MatchString(s) && !dmSepRe.MatchString(s) {
		return ""
	}
	if m := dmyRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := m[3]
		if len(year) == 2 {
			year = "20" + year
		}
		return fmt.Sprintf("%02d.%02d.%s", day, month, year)
	}
	if m := isoRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[3])
		month, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%02d.%02d.%s", day, month, m[1])
	}
	return ""
}

// Clock extracts an HH:MM token from raw, or "".
func Clock(raw string) string {
	if m := timeRe.FindStringSubmatch(strings.TrimSpace(raw)); m != nil {
		return m[1]
	}
	return ""
}

// SameText compares two free-text fields, treating empty and
// whitespace-only values as equal.
func SameText(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

// SameDate compares two possibly differently formatted dates by their
// canonical form. Unrecognizable values fall back to text comparison.
func SameDate(a, b string) bool {
	na, nb := strings.TrimSpace(a), strings.TrimSpace(b)
	if d := Date(na); d != "" {
		na = d
	}
	if d := Date(nb); d != "" {
		nb = d
	}
	return na == nb
}

// VisitTime combines a canonical date and time into one instant in loc.
func VisitTime(date, clock string, loc *time.Location) (time.Time, error) {
	d := Date(date)
	if d == "" {
		return time.Time{}, fmt.Errorf("unrecognized date %q", date)
	}
	c := Clock(clock)
	if c == "" {
		return time.Time{}, fmt.Errorf("unrecognized time %q", clock)
	}
	t, err := time.ParseInLocation(DateLayout+" 15:04", d+" "+c, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse visit time: %w", err)
	}
	return t, nil
}
