// Package display maps ledger values to the labels and money strings shown
// to users. Nothing in the ledger core depends on it.
package display

import (
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/model"
)

var accountTypeLabels = map[model.AccountType]string{
	model.AccountTypeCredit:     "Credit",
	model.AccountTypeDebit:      "Debit",
	model.AccountTypeCash:       "Cash",
	model.AccountTypeRewards:    "Rewards",
	model.AccountTypeInvestment: "Investment",
	model.AccountTypeLoan:       "Loan",
	model.AccountTypeOther:      "Other",
}

var transactionTypeLabels = map[model.TransactionType]string{
	model.TransactionIncome:      "Income",
	model.TransactionExpense:     "Expense",
	model.TransactionTransferIn:  "Transfer In",
	model.TransactionTransferOut: "Transfer Out",
}

// AccountType returns the display label for t.
func AccountType(t model.AccountType) string {
	if label, ok := accountTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// TransactionType returns the display label for t.
func TransactionType(t model.TransactionType) string {
	if label, ok := transactionTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// Money formats decimal amounts in one currency.
type Money struct {
	currency *money.Currency
}

// NewMoney returns a formatter for an ISO 4217 currency code.
func NewMoney(code string) (*Money, error) {
	cur := money.GetCurrency(strings.ToUpper(strings.TrimSpace(code)))
	if cur == nil {
		return nil, fmt.Errorf("unknown currency %q", code)
	}
	return &Money{currency: cur}, nil
}

// Code returns the currency code.
func (m *Money) Code() string {
	return m.currency.Code
}

var (
	maxMinorUnits = decimal.NewFromInt(math.MaxInt64)
	minMinorUnits = decimal.NewFromInt(-math.MaxInt64)
)

// Format renders amount with the currency's symbol and minor units,
// e.g. "$150.00" or "-$150.00". Amounts whose minor units do not fit in an
// int64 fall back to plain digits and the currency code.
func (m *Money) Format(amount decimal.Decimal) string {
	minor := amount.Shift(int32(m.currency.Fraction)).Round(0)
	if minor.GreaterThan(maxMinorUnits) || minor.LessThan(minMinorUnits) {
		return amount.StringFixed(int32(m.currency.Fraction)) + " " + m.currency.Code
	}
	return money.New(minor.IntPart(), m.currency.Code).Display()
}

// Signed renders a transaction amount with the direction implied by its type.
func (m *Money) Signed(txn model.Transaction) string {
	if txn.Type.Sign() < 0 {
		return "-" + m.Format(txn.Amount.Abs())
	}
	return "+" + m.Format(txn.Amount.Abs())
}
