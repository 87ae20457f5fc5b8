package ingest

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

// Slashed numeric dates are day-first, as UK bank exports write them.
const (
	statementDateFormat      = "2/1/2006"
	statementShortDateFormat = "2/1/06"
)

var (
	dayFirstDate = regexp.MustCompile(`^\d{1,2}/\d{1,2}/(\d{2}|\d{4})$`)
	// Thousands separators, whitespace, currency signs and the stray byte left
	// when a Latin-1 pound sign is read as UTF-8.
	amountNoise = regexp.MustCompile(`[,\s£$€Â]`)
	plainNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)
)

// ParseDate reads slashed numeric dates as DD/MM/YYYY (or DD/MM/YY) only, so
// "12/13/2024" is rejected rather than read month-first. Any other format goes
// to a generic parser. The result is a calendar date at UTC midnight.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if dayFirstDate.MatchString(s) {
		layout := statementDateFormat
		if len(s)-strings.LastIndex(s, "/") == 3 {
			layout = statementShortDateFormat
		}
		t, err := time.Parse(layout, s)
		if err != nil {
			return time.Time{}, false
		}
		return dateOnly(t), true
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return dateOnly(t), true
}

// ParseAmount strips separators and currency symbols and reads a signed
// decimal. Accounting negatives such as "(45.00)" are accepted.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = amountNoise.ReplaceAllString(strings.TrimSpace(s), "")
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	if !plainNumber.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
