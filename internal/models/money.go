package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency of every supported source.
const DefaultCurrency = "EUR"

// Money is a decimal amount in a currency.
type Money struct {
	Amount   decimal.Decimal `json:"amount" yaml:"amount"`
	Currency string          `json:"currency" yaml:"currency"`
}

// NewMoney creates a Money value rounded half away from zero to cents.
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount.Round(2), Currency: currency}
}

func (m Money) IsPositive() bool { return m.Amount.IsPositive() }

// Fixed renders the amount with two decimals and a period separator.
func (m Money) Fixed() string {
	return m.Amount.StringFixed(2)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Fixed(), m.Currency)
}
