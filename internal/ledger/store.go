package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/tallyhq/tally/internal/id"
	"github.com/tallyhq/tally/internal/model"
)

// Gateway is the durable store the ledger hydrates from and writes through.
type Gateway interface {
	// Load returns the persisted accounts, or an empty collection when the
	// store is absent or unreadable.
	Load(ctx context.Context) []model.Account
	// Save replaces the persisted state with accounts.
	Save(ctx context.Context, accounts []model.Account) error
}

// Store is the in-memory authoritative collection of accounts. Every
// successful mutation is written through to the gateway before returning.
//
// Store is not safe for concurrent use.
type Store struct {
	gateway  Gateway
	log      logrus.FieldLogger
	now      func() time.Time
	newID    func() string
	accounts []model.Account

	lastCommitErr error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the sink for persistence failures and mutation traces.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock overrides the clock used to date new transactions.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the generator for account and transaction ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// NewStore creates an empty Store backed by gateway. Call LoadAll to hydrate it.
func NewStore(gateway Gateway, opts ...Option) *Store {
	s := &Store{
		gateway: gateway,
		log:     logrus.StandardLogger(),
		now:     time.Now,
		newID:   id.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadAll replaces the in-memory collection with the gateway's persisted
// state and returns it. It never fails: an unreadable store yields an empty
// ledger.
func (s *Store) LoadAll(ctx context.Context) []model.Account {
	loaded := s.gateway.Load(ctx)

	seen := make(map[string]bool, len(loaded))
	accounts := make([]model.Account, 0, len(loaded))
	for _, a := range loaded {
		if seen[a.ID] {
			s.log.WithField("account_id", a.ID).Warn("skipping duplicate account in persisted ledger")
			continue
		}
		seen[a.ID] = true
		accounts = append(accounts, a.Clone())
	}
	s.accounts = accounts

	s.log.WithField("accounts", len(accounts)).Debug("ledger loaded")
	return s.Accounts()
}

// NewAccountParams holds the fields of an account being opened.
type NewAccountParams struct {
	InstitutionName string
	Balance         decimal.Decimal
	LastFourDigits  string
	Type            model.AccountType
}

// Create assigns a fresh id to a new account and adds it to the ledger.
func (s *Store) Create(ctx context.Context, params NewAccountParams) (model.Account, error) {
	acct := model.Account{
		ID:              s.newID(),
		InstitutionName: strings.TrimSpace(params.InstitutionName),
		Balance:         params.Balance,
		LastFourDigits:  strings.TrimSpace(params.LastFourDigits),
		Type:            params.Type,
	}
	if err := s.Add(ctx, acct); err != nil {
		return model.Account{}, err
	}
	return acct.Clone(), nil
}

// Add appends acct to the end of the collection.
func (s *Store) Add(ctx context.Context, acct model.Account) error {
	if err := ValidateAccount(acct); err != nil {
		return err
	}
	if s.indexOf(acct.ID) >= 0 {
		return invalid("id", fmt.Errorf("%w: %s", ErrDuplicateID, acct.ID))
	}

	s.accounts = append(s.accounts, acct.Clone())
	s.log.WithField("account_id", acct.ID).Debug("account added")
	s.commit(ctx, "add")
	return nil
}

// Remove deletes the accounts at the given positions. Every position must be
// within the current collection or nothing is removed.
func (s *Store) Remove(ctx context.Context, indices ...int) error {
	if len(indices) == 0 {
		return nil
	}

	drop := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(s.accounts) {
			return &IndexError{Index: i, Len: len(s.accounts)}
		}
		drop[i] = true
	}

	kept := make([]model.Account, 0, len(s.accounts)-len(drop))
	for i, a := range s.accounts {
		if drop[i] {
			s.log.WithField("account_id", a.ID).Debug("account removed")
			continue
		}
		kept = append(kept, a)
	}
	s.accounts = kept
	s.commit(ctx, "remove")
	return nil
}

// Update replaces the account with the same id wholesale.
func (s *Store) Update(ctx context.Context, acct model.Account) error {
	if err := ValidateAccount(acct); err != nil {
		return err
	}
	i := s.indexOf(acct.ID)
	if i < 0 {
		return &NotFoundError{ID: acct.ID}
	}

	s.accounts[i] = acct.Clone()
	s.log.WithField("account_id", acct.ID).Debug("account updated")
	s.commit(ctx, "update")
	return nil
}

// LastCommitError returns the error from the most recent write-through, or
// nil if it succeeded.
func (s *Store) LastCommitError() error {
	return s.lastCommitErr
}

// commit writes the whole collection through to the gateway. A failed write
// is logged and remembered; the in-memory state stays authoritative.
func (s *Store) commit(ctx context.Context, op string) {
	err := s.gateway.Save(ctx, s.snapshot())
	s.lastCommitErr = err
	if err != nil {
		s.log.WithError(err).WithField("op", op).Error("persisting ledger failed")
	}
}

func (s *Store) snapshot() []model.Account {
	out := make([]model.Account, len(s.accounts))
	for i, a := range s.accounts {
		out[i] = a.Clone()
	}
	return out
}

func (s *Store) indexOf(accountID string) int {
	for i, a := range s.accounts {
		if a.ID == accountID {
			return i
		}
	}
	return -1
}
