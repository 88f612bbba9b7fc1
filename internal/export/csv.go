package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/model"
)

// Header is the CSV header for exported transaction histories.
const Header = "transaction_id,date,type,amount,signed_amount,note"

const (
	numFields    = 6
	colID        = 0
	colDate      = 1
	colType      = 2
	colAmount    = 3
	colSigned    = 4
	colNote      = 5
	dateFormat   = time.RFC3339
	amountPlaces = 2
)

// WriteTransactions writes a transaction history, newest first, as CSV.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, txn := range txns {
		if err := cw.Write(MarshalTransaction(txn)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTransactions reads a CSV produced by WriteTransactions.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		txn, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// CheckFile reads back an exported file and confirms it holds exactly want,
// in order.
func CheckFile(path string, want []model.Transaction) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	got, err := ReadTransactions(f)
	if err != nil {
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if len(got) != len(want) {
		return fmt.Errorf("checking %s: %d rows, expected %d", path, len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || !got[i].Amount.Equal(want[i].Amount) {
			return fmt.Errorf("checking %s: row %d is %s, expected %s", path, i+2, got[i].ID, want[i].ID)
		}
	}
	return nil
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(txn model.Transaction) []string {
	row := make([]string, numFields)
	row[colID] = txn.ID
	row[colDate] = txn.Date.Format(dateFormat)
	row[colType] = string(txn.Type)
	row[colAmount] = txn.Amount.StringFixed(amountPlaces)
	row[colSigned] = txn.Signed().StringFixed(amountPlaces)
	row[colNote] = txn.Note
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction. The signed
// column is derived data and only checked for consistency.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	typ := model.TransactionType(record[colType])
	if !typ.Valid() {
		return model.Transaction{}, fmt.Errorf("unknown transaction type %q", record[colType])
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	txn := model.Transaction{
		ID:     record[colID],
		Date:   date,
		Amount: amount,
		Note:   record[colNote],
		Type:   typ,
	}

	signed, err := decimal.NewFromString(record[colSigned])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing signed_amount %q: %w", record[colSigned], err)
	}
	if !signed.Equal(txn.Signed()) {
		return model.Transaction{}, fmt.Errorf("signed_amount %s does not match %s %s", signed, typ, amount)
	}
	return txn, nil
}
