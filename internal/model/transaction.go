package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tags a balance-affecting event.
type TransactionType string

const (
	TransactionIncome      TransactionType = "income"
	TransactionExpense     TransactionType = "expense"
	TransactionTransferIn  TransactionType = "transferIn"
	TransactionTransferOut TransactionType = "transferOut"
)

// TransactionTypes returns every transaction type.
func TransactionTypes() []TransactionType {
	return []TransactionType{
		TransactionIncome,
		TransactionExpense,
		TransactionTransferIn,
		TransactionTransferOut,
	}
}

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionIncome, TransactionExpense, TransactionTransferIn, TransactionTransferOut:
		return true
	}
	return false
}

// Sign is +1 for money entering the account and -1 for money leaving it.
func (t TransactionType) Sign() int {
	switch t {
	case TransactionExpense, TransactionTransferOut:
		return -1
	default:
		return 1
	}
}

// Transaction is an immutable record of one balance-affecting event.
type Transaction struct {
	ID     string
	Date   time.Time
	Amount decimal.Decimal // positive magnitude; direction comes from Type
	Note   string
	Type   TransactionType
}

// Signed returns Amount with the sign implied by Type.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type.Sign() < 0 {
		return t.Amount.Neg()
	}
	return t.Amount
}

// IsTransfer reports whether t is one leg of a transfer.
func (t Transaction) IsTransfer() bool {
	return t.Type == TransactionTransferIn || t.Type == TransactionTransferOut
}
