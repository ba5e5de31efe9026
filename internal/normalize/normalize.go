// Package normalize coerces vendor-supplied scalar fields into typed values.
// Vendors disagree on everything: "3" vs "3.0", "$1,234.50" vs "1234.5",
// totals present but unit prices missing. Every function here tolerates
// malformed input and reports absence explicitly instead of inventing zeros.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var packRE = regexp.MustCompile(`(?i)\bpacks?\s+of\s+(\d+)\b`)

// Int coerces a count field. Parses through float first so "3.0" survives,
// then truncates. Returns nil for empty or unparseable input; zero is a
// real quantity and must never stand in for missing.
func Int(raw string) *int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	n := int(f)
	return &n
}

// Money coerces a currency field, stripping the dollar sign and thousands
// separators. Invalid NullDecimal means the vendor supplied no value.
func Money(raw string) decimal.NullDecimal {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// PackQty scans a free-text description for a "pack of N" phrase.
// Absent or unparseable means a pack of one.
func PackQty(description string) int {
	m := packRE.FindStringSubmatch(description)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// UnitsReceived converts a shipped count into individual units using the
// pack multiplier. A missing shipped count contributes zero units here,
// the only place where missing collapses to zero.
func UnitsReceived(shipped *int, packQty int) float64 {
	if shipped == nil {
		return 0
	}
	return float64(*shipped) * float64(packQty)
}

// BackfillLineTotal fills a missing line total from ordered x unit price.
// An existing total is never overwritten.
func BackfillLineTotal(total decimal.NullDecimal, ordered *int, unitPrice decimal.NullDecimal) decimal.NullDecimal {
	if total.Valid {
		return total
	}
	if ordered == nil || !unitPrice.Valid {
		return total
	}
	return decimal.NullDecimal{
		Decimal: unitPrice.Decimal.Mul(decimal.NewFromInt(int64(*ordered))),
		Valid:   true,
	}
}

// BackfillUnitPrice fills a missing unit price from the line total. With a
// positive ordered count it divides; otherwise it treats the line as a
// single unit. Must run after BackfillLineTotal, each exactly once per row.
func BackfillUnitPrice(price, total decimal.NullDecimal, ordered *int) decimal.NullDecimal {
	if price.Valid {
		return price
	}
	if !total.Valid {
		return price
	}
	if ordered != nil && *ordered > 0 {
		return decimal.NullDecimal{
			Decimal: total.Decimal.Div(decimal.NewFromInt(int64(*ordered))),
			Valid:   true,
		}
	}
	return decimal.NullDecimal{Decimal: total.Decimal, Valid: true}
}
