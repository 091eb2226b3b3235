// Package models holds the canonical transaction record produced by every source.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the OFX classification of a movement.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"
)

// Transaction is one normalized account movement.
//
// The type (credit or debit) is not stored; Type derives it from the sign of
// Amount so the two can never disagree.
type Transaction struct {
	Date   time.Time `json:"date"`
	Amount Money     `json:"amount"`
	Memo   string    `json:"memo"`
	ID     string    `json:"id"`
}

// NewTransaction builds a Transaction; an empty currency means DefaultCurrency.
func NewTransaction(date time.Time, amount decimal.Decimal, currency, memo, id string) Transaction {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Transaction{
		Date:   date,
		Amount: NewMoney(amount, currency),
		Memo:   memo,
		ID:     id,
	}
}

// Type is CREDIT for a positive amount and DEBIT otherwise, zero included.
func (t Transaction) Type() TransactionType {
	if t.Amount.IsPositive() {
		return TransactionTypeCredit
	}
	return TransactionTypeDebit
}

// IsCredit reports whether the movement adds money to the account.
func (t Transaction) IsCredit() bool {
	return t.Type() == TransactionTypeCredit
}
