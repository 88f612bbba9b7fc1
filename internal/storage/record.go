package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/model"
)

const dateFormat = time.RFC3339Nano

// Amount encodes a decimal as a bare JSON number using its exact string form.
type Amount struct {
	decimal.Decimal
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("parsing amount %s: %w", b, err)
	}
	a.Decimal = d
	return nil
}

// AccountRecord is the persisted form of an account.
type AccountRecord struct {
	ID              string              `json:"id"`
	InstitutionName string              `json:"institutionName"`
	Balance         Amount              `json:"balance"`
	LastFourDigits  string              `json:"lastFourDigits"`
	AccountType     string              `json:"accountType"`
	Transactions    []TransactionRecord `json:"transactions"`
}

// TransactionRecord is the persisted form of a transaction.
type TransactionRecord struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Amount Amount `json:"amount"`
	Note   string `json:"note"`
	Type   string `json:"type"`
}

// MarshalAccount converts an Account to its record.
func MarshalAccount(acct model.Account) AccountRecord {
	rec := AccountRecord{
		ID:              acct.ID,
		InstitutionName: acct.InstitutionName,
		Balance:         Amount{acct.Balance},
		LastFourDigits:  acct.LastFourDigits,
		AccountType:     string(acct.Type),
		Transactions:    make([]TransactionRecord, len(acct.Transactions)),
	}
	for i, txn := range acct.Transactions {
		rec.Transactions[i] = MarshalTransaction(txn)
	}
	return rec
}

// MarshalTransaction converts a Transaction to its record.
func MarshalTransaction(txn model.Transaction) TransactionRecord {
	return TransactionRecord{
		ID:     txn.ID,
		Date:   txn.Date.Format(dateFormat),
		Amount: Amount{txn.Amount},
		Note:   txn.Note,
		Type:   string(txn.Type),
	}
}

// UnmarshalAccount converts a record to an Account.
func UnmarshalAccount(rec AccountRecord) (model.Account, error) {
	if rec.ID == "" {
		return model.Account{}, fmt.Errorf("account record has no id")
	}
	accountType := model.AccountType(rec.AccountType)
	if !accountType.Valid() {
		return model.Account{}, fmt.Errorf("account %s: unknown account type %q", rec.ID, rec.AccountType)
	}

	acct := model.Account{
		ID:              rec.ID,
		InstitutionName: rec.InstitutionName,
		Balance:         rec.Balance.Decimal,
		LastFourDigits:  rec.LastFourDigits,
		Type:            accountType,
	}
	if len(rec.Transactions) > 0 {
		acct.Transactions = make([]model.Transaction, len(rec.Transactions))
	}
	for i, tr := range rec.Transactions {
		txn, err := UnmarshalTransaction(tr)
		if err != nil {
			return model.Account{}, fmt.Errorf("account %s transaction %d: %w", rec.ID, i, err)
		}
		acct.Transactions[i] = txn
	}
	return acct, nil
}

// UnmarshalTransaction converts a record to a Transaction.
func UnmarshalTransaction(rec TransactionRecord) (model.Transaction, error) {
	date, err := time.Parse(dateFormat, rec.Date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", rec.Date, err)
	}
	typ := model.TransactionType(rec.Type)
	if !typ.Valid() {
		return model.Transaction{}, fmt.Errorf("unknown transaction type %q", rec.Type)
	}
	return model.Transaction{
		ID:     rec.ID,
		Date:   date,
		Amount: rec.Amount.Decimal,
		Note:   rec.Note,
		Type:   typ,
	}, nil
}

// EncodeAccounts renders accounts as an indented JSON array.
func EncodeAccounts(accounts []model.Account) ([]byte, error) {
	recs := make([]AccountRecord, len(accounts))
	for i, a := range accounts {
		recs[i] = MarshalAccount(a)
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding accounts: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeAccounts parses a JSON array produced by EncodeAccounts.
func DecodeAccounts(data []byte) ([]model.Account, error) {
	var recs []AccountRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decoding accounts: %w", err)
	}
	accounts := make([]model.Account, 0, len(recs))
	for i, rec := range recs {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}
