package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/model"
)

// memGateway records every save and serves a fixed collection on load.
type memGateway struct {
	initial []model.Account
	saves   [][]model.Account
	saveErr error
}

func (g *memGateway) Load(_ context.Context) []model.Account {
	return g.initial
}

func (g *memGateway) Save(_ context.Context, accounts []model.Account) error {
	if g.saveErr != nil {
		return g.saveErr
	}
	g.saves = append(g.saves, accounts)
	return nil
}

func (g *memGateway) last() []model.Account {
	if len(g.saves) == 0 {
		return nil
	}
	return g.saves[len(g.saves)-1]
}

var testTime = time.Date(2025, 7, 18, 9, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestStore(t *testing.T, gw *memGateway) *Store {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	s := NewStore(gw,
		WithLogger(logger),
		WithClock(func() time.Time { return testTime }),
		WithIDGenerator(seqIDs()),
	)
	s.LoadAll(context.Background())
	return s
}

func account(id, balance string) model.Account {
	return model.Account{
		ID:              id,
		InstitutionName: "Bank " + id,
		Balance:         dec(balance),
		LastFourDigits:  "1234",
		Type:            model.AccountTypeDebit,
	}
}

func TestLoadAll_Hydrates(t *testing.T) {
	gw := &memGateway{initial: []model.Account{account("a", "10"), account("b", "20")}}
	s := newTestStore(t, gw)

	got := s.Accounts()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Empty(t, gw.saves, "loading must not write")
}

func TestLoadAll_SkipsDuplicateIDs(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	gw := &memGateway{initial: []model.Account{account("a", "10"), account("a", "99"), account("b", "20")}}
	s := NewStore(gw, WithLogger(logger))

	got := s.LoadAll(context.Background())
	require.Len(t, got, 2)
	assert.True(t, dec("10").Equal(got[0].Balance), "first occurrence wins")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestLoadAll_EmptyGateway(t *testing.T) {
	s := newTestStore(t, &memGateway{})
	assert.Empty(t, s.Accounts())
	assert.Equal(t, 0, s.Len())
}

func TestCreate(t *testing.T) {
	gw := &memGateway{}
	s := newTestStore(t, gw)

	acct, err := s.Create(context.Background(), NewAccountParams{
		InstitutionName: "  Chase ",
		Balance:         dec("50"),
		LastFourDigits:  "4821",
		Type:            model.AccountTypeCredit,
	})
	require.NoError(t, err)
	assert.Equal(t, "id-1", acct.ID)
	assert.Equal(t, "Chase", acct.InstitutionName)
	assert.Empty(t, acct.Transactions)

	require.Len(t, gw.saves, 1, "one write per mutation")
	require.Len(t, gw.last(), 1)
	assert.Equal(t, "id-1", gw.last()[0].ID)
}

func TestAdd_AppendsInOrder(t *testing.T) {
	gw := &memGateway{}
	s := newTestStore(t, gw)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, account("a", "1")))
	require.NoError(t, s.Add(ctx, account("b", "2")))
	require.NoError(t, s.Add(ctx, account("c", "3")))

	assert.Equal(t, []string{"a", "b", "c"}, s.IDs())
	assert.Len(t, gw.saves, 3)
}

func TestAdd_RejectsDuplicateID(t *testing.T) {
	gw := &memGateway{}
	s := newTestStore(t, gw)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, account("a", "1")))
	err := s.Add(ctx, account("a", "5"))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "id", verr.Field)
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 1, s.Len())
	assert.Len(t, gw.saves, 1, "rejected add must not write")
}

func TestAdd_ValidatesFields(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*model.Account)
		field string
	}{
		{"empty id", func(a *model.Account) { a.ID = "" }, "id"},
		{"empty institution", func(a *model.Account) { a.InstitutionName = "  " }, "institutionName"},
		{"three digits", func(a *model.Account) { a.LastFourDigits = "123" }, "lastFourDigits"},
		{"five digits", func(a *model.Account) { a.LastFourDigits = "12345" }, "lastFourDigits"},
		{"letters", func(a *model.Account) { a.LastFourDigits = "12a4" }, "lastFourDigits"},
		{"unknown type", func(a *model.Account) { a.Type = "savings" }, "accountType"},
		{"bad history", func(a *model.Account) {
			a.Transactions = []model.Transaction{{ID: "t", Amount: dec("-1"), Type: model.TransactionIncome}}
		}, "transactions[0].amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &memGateway{}
			s := newTestStore(t, gw)
			acct := account("a", "1")
			tt.edit(&acct)

			err := s.Add(context.Background(), acct)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, 0, s.Len())
			assert.Empty(t, gw.saves)
		})
	}
}

func TestAdd_MessageMatchesReportedField(t *testing.T) {
	s := newTestStore(t, &memGateway{})
	acct := account("a", "1")
	acct.InstitutionName = ""
	acct.LastFourDigits = "12"
	acct.Type = "savings"

	err := s.Add(context.Background(), acct)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "institutionName", verr.Field)
	assert.Contains(t, verr.Err.Error(), "institutionName")
	assert.NotContains(t, verr.Err.Error(), "lastFourDigits")
	assert.NotContains(t, verr.Err.Error(), "accountType")
}

func TestRemove(t *testing.T) {
	gw := &memGateway{initial: []model.Account{account("a", "1"), account("b", "2"), account("c", "3"), account("d", "4")}}
	s := newTestStore(t, gw)

	require.NoError(t, s.Remove(context.Background(), 3, 1, 1))
	assert.Equal(t, []string{"a", "c"}, s.IDs())
	require.Len(t, gw.saves, 1)
	assert.Len(t, gw.last(), 2)
}

// Scenario 5: an index past the end fails and leaves the collection unchanged.
func TestRemove_IndexOutOfRange(t *testing.T) {
	gw := &memGateway{initial: []model.Account{account("a", "1"), account("b", "2"), account("c", "3")}}
	s := newTestStore(t, gw)

	err := s.Remove(context.Background(), 0, 5)
	var ierr *IndexError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, 5, ierr.Index)
	assert.Equal(t, 3, ierr.Len)
	assert.Equal(t, []string{"a", "b", "c"}, s.IDs())
	assert.Empty(t, gw.saves)

	require.ErrorAs(t, s.Remove(context.Background(), -1), &ierr)
	assert.Equal(t, 3, s.Len())
}

func TestRemove_NoIndices(t *testing.T) {
	gw := &memGateway{initial: []model.Account{account("a", "1")}}
	s := newTestStore(t, gw)

	require.NoError(t, s.Remove(context.Background()))
	assert.Equal(t, 1, s.Len())
	assert.Empty(t, gw.saves)
}

func TestUpdate(t *testing.T) {
	gw := &memGateway{initial: []model.Account{account("a", "1"), account("b", "2")}}
	s := newTestStore(t, gw)

	acct, ok := s.Get("b")
	require.True(t, ok)
	acct.InstitutionName = "Renamed"
	acct.Type = model.AccountTypeRewards
	require.NoError(t, s.Update(context.Background(), acct))

	got, ok := s.Get("b")
	require.True(t, ok)
	assert.Equal(t, "Renamed", got.InstitutionName)
	assert.Equal(t, model.AccountTypeRewards, got.Type)
	assert.Equal(t, 1, s.Index("b"), "update keeps position")
	assert.Len(t, gw.saves, 1)
}

func TestUpdate_NotFound(t *testing.T) {
	gw := &memGateway{initial: []model.Account{account("a", "1")}}
	s := newTestStore(t, gw)

	err := s.Update(context.Background(), account("zzz", "1"))
	var nerr *NotFoundError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "zzz", nerr.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, gw.saves)
}

func TestUpdate_InvalidFieldsRejected(t *testing.T) {
	gw := &memGateway{initial: []model.Account{account("a", "1")}}
	s := newTestStore(t, gw)

	acct, _ := s.Get("a")
	acct.LastFourDigits = "12"
	err := s.Update(context.Background(), acct)
	assert.ErrorIs(t, err, ErrInvalidField)

	got, _ := s.Get("a")
	assert.Equal(t, "1234", got.LastFourDigits)
}

func TestAccessorsReturnCopies(t *testing.T) {
	gw := &memGateway{initial: []model.Account{account("a", "1")}}
	s := newTestStore(t, gw)
	_, err := s.Deposit(context.Background(), "a", dec("5"), "")
	require.NoError(t, err)

	got, _ := s.Get("a")
	got.Balance = dec("1000")
	got.Transactions[0].Note = "tampered"

	again, _ := s.Get("a")
	assert.True(t, dec("6").Equal(again.Balance))
	assert.Empty(t, again.Transactions[0].Note)

	// Saved snapshots are detached from the store as well.
	gw.last()[0].Transactions[0].Note = "tampered"
	again, _ = s.Get("a")
	assert.Empty(t, again.Transactions[0].Note)
}

func TestCommitFailure_LoggedNotRolledBack(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	gw := &memGateway{initial: []model.Account{account("a", "50")}}
	s := NewStore(gw, WithLogger(logger), WithIDGenerator(seqIDs()))
	s.LoadAll(context.Background())

	gw.saveErr = errors.New("disk full")
	_, err := s.Deposit(context.Background(), "a", dec("100"), "")
	require.NoError(t, err, "persistence failure is not a caller error")

	got, _ := s.Get("a")
	assert.True(t, dec("150").Equal(got.Balance), "in-memory state stays authoritative")
	require.Error(t, s.LastCommitError())
	assert.ErrorContains(t, s.LastCommitError(), "disk full")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "income", entry.Data["op"])

	gw.saveErr = nil
	_, err = s.Withdraw(context.Background(), "a", dec("1"), "")
	require.NoError(t, err)
	assert.NoError(t, s.LastCommitError())
	assert.True(t, dec("149").Equal(gw.last()[0].Balance))
}

func TestByTypeAndTotal(t *testing.T) {
	cash := account("c", "7.25")
	cash.Type = model.AccountTypeCash
	gw := &memGateway{initial: []model.Account{account("a", "10"), cash, account("b", "-2")}}
	s := newTestStore(t, gw)

	debit := s.ByType(model.AccountTypeDebit)
	require.Len(t, debit, 2)
	assert.Equal(t, "a", debit[0].ID)
	assert.Equal(t, "b", debit[1].ID)
	assert.Len(t, s.ByType(model.AccountTypeCash), 1)
	assert.Empty(t, s.ByType(model.AccountTypeLoan))

	assert.True(t, dec("15.25").Equal(s.Total()))
}
