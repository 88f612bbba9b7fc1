package model

import "github.com/shopspring/decimal"

// AccountType classifies a tracked account.
type AccountType string

const (
	AccountTypeCredit     AccountType = "credit"
	AccountTypeDebit      AccountType = "debit"
	AccountTypeCash       AccountType = "cash"
	AccountTypeRewards    AccountType = "rewards"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeLoan       AccountType = "loan"
	AccountTypeOther      AccountType = "other"
)

// AccountTypes returns every account type in display order.
func AccountTypes() []AccountType {
	return []AccountType{
		AccountTypeCredit,
		AccountTypeDebit,
		AccountTypeCash,
		AccountTypeRewards,
		AccountTypeInvestment,
		AccountTypeLoan,
		AccountTypeOther,
	}
}

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeCredit, AccountTypeDebit, AccountTypeCash, AccountTypeRewards,
		AccountTypeInvestment, AccountTypeLoan, AccountTypeOther:
		return true
	}
	return false
}

// Account is a tracked financial holding ("card") with its history.
type Account struct {
	ID              string
	InstitutionName string
	Balance         decimal.Decimal
	LastFourDigits  string
	Type            AccountType
	Transactions    []Transaction // newest first
}

// Clone returns a copy of a that shares no history storage with it.
func (a Account) Clone() Account {
	c := a
	if a.Transactions != nil {
		c.Transactions = make([]Transaction, len(a.Transactions))
		copy(c.Transactions, a.Transactions)
	}
	return c
}

// OpeningBalance is the balance the account had before any recorded
// transaction: Balance minus the signed sum of its history.
func (a Account) OpeningBalance() decimal.Decimal {
	return a.Balance.Sub(a.Net())
}

// Net returns the signed sum of all recorded transactions.
func (a Account) Net() decimal.Decimal {
	sum := decimal.Zero
	for _, txn := range a.Transactions {
		sum = sum.Add(txn.Signed())
	}
	return sum
}

// Record prepends txn to the history and applies its signed amount.
func (a *Account) Record(txn Transaction) {
	a.Transactions = append([]Transaction{txn}, a.Transactions...)
	a.Balance = a.Balance.Add(txn.Signed())
}
