// Package currencyutils converts amount text in Spanish regional format into decimals.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	currencyMarkers = regexp.MustCompile(`(?i)eur|€|[\s\x{00a0}\x{202f}']`)
	threeDigitTail  = regexp.MustCompile(`^-?\d{1,3}\.\d{3}$`)
)

// StandardizeAmount rewrites regional amount text ("1.250,50 €") into the
// canonical form accepted by decimal.NewFromString ("1250.50").
//
// When a comma is present it is the decimal separator and every period is a
// thousands separator. Without a comma, periods are thousands separators if
// there are several of them or exactly three digits follow a single one
// ("1.250" is 1250); otherwise the single period is a decimal point.
func StandardizeAmount(amountStr string) string {
	s := currencyMarkers.ReplaceAllString(amountStr, "")
	s = strings.TrimPrefix(s, "+")

	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case strings.Count(s, ".") > 1, threeDigitTail.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	}
	return s
}

// ParseRegionalAmount parses amount text in regional format.
// "1.250,50" is 1250.50 and "-45,00" is -45.00.
func ParseRegionalAmount(amountStr string) (decimal.Decimal, error) {
	if strings.TrimSpace(amountStr) == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	amount, err := decimal.NewFromString(StandardizeAmount(amountStr))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return amount, nil
}

// DigitsOnly renders the absolute amount with two decimals and no separator,
// so 1250.5 and -1250.50 both become "125050".
func DigitsOnly(amount decimal.Decimal) string {
	return strings.ReplaceAll(amount.Abs().StringFixed(2), ".", "")
}
