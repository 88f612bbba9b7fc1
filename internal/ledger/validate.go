package ledger

import (
	"fmt"
	"strings"

	"github.com/gookit/validate"
	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/model"
)

var hundred = decimal.NewFromInt(100)

// ParseAmount parses user input into an amount accepted by Deposit,
// Withdraw and Transfer.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalid("amount", fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s))
	}
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// ValidateAmount rejects zero, negative, and sub-cent amounts.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return invalid("amount", fmt.Errorf("%w: got %s", ErrInvalidAmount, amount))
	}
	scaled := amount.Mul(hundred)
	if !scaled.Equal(scaled.Floor()) {
		return invalid("amount", fmt.Errorf("%w: %s has more than 2 decimal places", ErrInvalidAmount, amount))
	}
	return nil
}

// Rule keys double as the field names reported in ValidationError.
var accountRules = []struct {
	field string
	rule  string
}{
	{"institutionName", "required"},
	{"lastFourDigits", "required|len:4|isNumber"},
	{"accountType", "required|in:credit,debit,cash,rewards,investment,loan,other"},
}

// ValidateAccount checks the user-editable fields of an account.
func ValidateAccount(acct model.Account) error {
	if strings.TrimSpace(acct.ID) == "" {
		return invalid("id", fmt.Errorf("%w: id is empty", ErrInvalidField))
	}

	v := validate.Map(map[string]any{
		"institutionName": strings.TrimSpace(acct.InstitutionName),
		"lastFourDigits":  acct.LastFourDigits,
		"accountType":     string(acct.Type),
	})
	for _, r := range accountRules {
		v.StringRule(r.field, r.rule)
	}
	if !v.Validate() {
		for _, r := range accountRules {
			if msgs, ok := v.Errors[r.field]; ok && len(msgs) > 0 {
				return invalid(r.field, fmt.Errorf("%w: %s", ErrInvalidField, v.Errors.FieldOne(r.field)))
			}
		}
		return invalid("", fmt.Errorf("%w: %s", ErrInvalidField, v.Errors.One()))
	}

	// isNumber accepts any digit run; the field must be ASCII 0-9 only.
	for _, r := range acct.LastFourDigits {
		if r < '0' || r > '9' {
			return invalid("lastFourDigits", fmt.Errorf("%w: %q is not four digits", ErrInvalidField, acct.LastFourDigits))
		}
	}

	for i, txn := range acct.Transactions {
		if !txn.Type.Valid() {
			return invalid(fmt.Sprintf("transactions[%d].type", i), fmt.Errorf("%w: unknown type %q", ErrInvalidField, txn.Type))
		}
		if !txn.Amount.IsPositive() {
			return invalid(fmt.Sprintf("transactions[%d].amount", i), fmt.Errorf("%w: got %s", ErrInvalidAmount, txn.Amount))
		}
	}
	return nil
}
