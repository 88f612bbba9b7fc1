package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/tallyhq/tally/internal/model"
)

// Deposit records income on an account and raises its balance.
func (s *Store) Deposit(ctx context.Context, accountID string, amount decimal.Decimal, note string) (model.Transaction, error) {
	return s.record(ctx, accountID, amount, note, model.TransactionIncome)
}

// Withdraw records an expense and lowers the balance. Unlike Transfer, it
// allows the balance to go negative.
func (s *Store) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, note string) (model.Transaction, error) {
	return s.record(ctx, accountID, amount, note, model.TransactionExpense)
}

func (s *Store) record(ctx context.Context, accountID string, amount decimal.Decimal, note string, typ model.TransactionType) (model.Transaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return model.Transaction{}, err
	}
	i := s.indexOf(accountID)
	if i < 0 {
		return model.Transaction{}, &NotFoundError{ID: accountID}
	}

	txn := s.newTransaction(typ, amount, note)
	s.accounts[i].Record(txn)

	s.log.WithFields(logrus.Fields{
		"account_id": accountID,
		"type":       typ,
		"amount":     amount.String(),
	}).Debug("transaction recorded")
	s.commit(ctx, string(typ))
	return txn, nil
}

// Transfer moves amount from one account to another as a pair of linked
// legs: transferOut on the source and transferIn on the destination. The
// amount may not exceed the source balance. Either both legs are recorded
// or, on any failed precondition, neither account changes.
func (s *Store) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal, note string) (out, in model.Transaction, err error) {
	if err := ValidateAmount(amount); err != nil {
		return model.Transaction{}, model.Transaction{}, err
	}
	if fromID == toID {
		return model.Transaction{}, model.Transaction{}, invalid("destination", ErrSameAccount)
	}
	src := s.indexOf(fromID)
	if src < 0 {
		return model.Transaction{}, model.Transaction{}, &NotFoundError{ID: fromID}
	}
	dst := s.indexOf(toID)
	if dst < 0 {
		return model.Transaction{}, model.Transaction{}, &NotFoundError{ID: toID}
	}
	if balance := s.accounts[src].Balance; amount.GreaterThan(balance) {
		return model.Transaction{}, model.Transaction{}, invalid("amount",
			fmt.Errorf("%w: %s requested, %s available", ErrInsufficientFunds, amount, balance))
	}

	out = s.newTransaction(model.TransactionTransferOut, amount, note)
	s.accounts[src].Record(out)
	in = s.newTransaction(model.TransactionTransferIn, amount, note)
	s.accounts[dst].Record(in)

	s.log.WithFields(logrus.Fields{
		"from":   fromID,
		"to":     toID,
		"amount": amount.String(),
	}).Debug("transfer recorded")
	s.commit(ctx, "transfer")
	return out, in, nil
}

func (s *Store) newTransaction(typ model.TransactionType, amount decimal.Decimal, note string) model.Transaction {
	return model.Transaction{
		ID:     s.newID(),
		Date:   s.now(),
		Amount: amount,
		Note:   note,
		Type:   typ,
	}
}
