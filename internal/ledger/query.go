package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/model"
)

// Accounts returns every account in display order.
func (s *Store) Accounts() []model.Account {
	return s.snapshot()
}

// Len returns the number of accounts.
func (s *Store) Len() int {
	return len(s.accounts)
}

// IDs returns the account ids in display order.
func (s *Store) IDs() []string {
	ids := make([]string, len(s.accounts))
	for i, a := range s.accounts {
		ids[i] = a.ID
	}
	return ids
}

// Get returns an account by id.
func (s *Store) Get(accountID string) (model.Account, bool) {
	i := s.indexOf(accountID)
	if i < 0 {
		return model.Account{}, false
	}
	return s.accounts[i].Clone(), true
}

// Index returns the display position of an account, or -1.
func (s *Store) Index(accountID string) int {
	return s.indexOf(accountID)
}

// ByType returns all accounts of the given type.
func (s *Store) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Type == accountType {
			result = append(result, a.Clone())
		}
	}
	return result
}

// Total returns the sum of all account balances.
func (s *Store) Total() decimal.Decimal {
	total := decimal.Zero
	for _, a := range s.accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// Transactions pages through an account's history, newest first.
// A limit of zero or less returns everything after offset.
func (s *Store) Transactions(accountID string, limit, offset int) ([]model.Transaction, error) {
	i := s.indexOf(accountID)
	if i < 0 {
		return nil, &NotFoundError{ID: accountID}
	}

	history := s.accounts[i].Transactions
	if offset < 0 {
		offset = 0
	}
	if offset >= len(history) {
		return []model.Transaction{}, nil
	}
	end := len(history)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}

	page := make([]model.Transaction, end-offset)
	copy(page, history[offset:end])
	return page, nil
}

// Recent returns at most n of the newest transactions for display.
func (s *Store) Recent(accountID string, n int) ([]model.Transaction, error) {
	if n <= 0 {
		return []model.Transaction{}, nil
	}
	return s.Transactions(accountID, n, 0)
}
