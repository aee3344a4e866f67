package core

// amounts.go handles the monetary strings stored in orders and the ledger.
//
// Amounts arrive as user-typed text and are kept as text. Arithmetic goes
// through shopspring/decimal so 0.1 + 0.2 stays 0.3. Computed amounts are
// always rendered with a fractional part ("5" becomes "5.0") so stored
// ledger values read the same regardless of input precision.

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FeeRate is the share of an order's cost recorded as fees.
var FeeRate = decimal.RequireFromString("0.10")

// ParseAmount parses a user-provided amount. Leading currency symbols and
// thousand separators are ignored.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("invalid number %q", s)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", s)
	}
	return d, nil
}

// FormatAmount renders d in plain decimal notation with at least one
// fractional digit.
func FormatAmount(d decimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		return s + ".0"
	}
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}

// ledgerFigures derives profit and fees for an order.
func ledgerFigures(totalCost, salesPrice string) (profit, fees string, err error) {
	cost, err := ParseAmount(totalCost)
	if err != nil {
		return "", "", &ValidationError{Field: "total_cost", Value: totalCost, Message: err.Error()}
	}
	sales, err := ParseAmount(salesPrice)
	if err != nil {
		return "", "", &ValidationError{Field: "sales_price", Value: salesPrice, Message: err.Error()}
	}
	return FormatAmount(sales.Sub(cost)), FormatAmount(cost.Mul(FeeRate)), nil
}

// sameAmount reports whether a and b parse to equal values. Unparseable
// input never compares equal.
func sameAmount(a, b string) bool {
	da, err := ParseAmount(a)
	if err != nil {
		return false
	}
	db, err := ParseAmount(b)
	if err != nil {
		return false
	}
	return da.Equal(db)
}
