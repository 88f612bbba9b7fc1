package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/tallyhq/tally/internal/model"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id               TEXT PRIMARY KEY,
		position         INTEGER NOT NULL,
		institution_name TEXT NOT NULL,
		balance          NUMERIC NOT NULL,
		last_four_digits TEXT NOT NULL,
		account_type     TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id         TEXT NOT NULL,
		account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		position   INTEGER NOT NULL,
		date       TIMESTAMPTZ NOT NULL,
		amount     NUMERIC NOT NULL,
		note       TEXT NOT NULL,
		type       TEXT NOT NULL,
		PRIMARY KEY (account_id, id)
	)`,
}

// PostgresGateway persists the ledger in two tables, replacing their
// contents inside one database transaction on every save.
type PostgresGateway struct {
	pool   *pgxpool.Pool
	target string
	log    logrus.FieldLogger
}

// OpenPostgres connects to databaseURL and makes sure the schema exists.
func OpenPostgres(ctx context.Context, databaseURL string, log logrus.FieldLogger) (*PostgresGateway, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, &PersistenceError{Op: "connect", Path: "postgres", Err: err}
	}
	cfg.MaxConns = 2
	cfg.MinConns = 1
	cfg.MaxConnIdleTime = 2 * time.Minute
	target := fmt.Sprintf("postgres://%s/%s", cfg.ConnConfig.Host, cfg.ConnConfig.Database)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, &PersistenceError{Op: "connect", Path: target, Err: err}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &PersistenceError{Op: "connect", Path: target, Err: err}
	}

	g := &PostgresGateway{pool: pool, target: target, log: log}
	if err := g.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return g, nil
}

// EnsureSchema creates the ledger tables if they do not exist.
func (g *PostgresGateway) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := g.pool.Exec(ctx, stmt); err != nil {
			return &PersistenceError{Op: "migrate", Path: g.target, Err: err}
		}
	}
	return nil
}

// Load reads every account and its history in display order. Any failure
// yields an empty ledger.
func (g *PostgresGateway) Load(ctx context.Context) []model.Account {
	accounts, err := g.Read(ctx)
	if err != nil {
		g.log.WithError(err).WithField("path", g.target).Warn("ledger database unreadable, starting empty")
		return []model.Account{}
	}
	return accounts
}

// Read loads the ledger and reports any failure.
func (g *PostgresGateway) Read(ctx context.Context) ([]model.Account, error) {
	rows, err := g.pool.Query(ctx,
		`SELECT id, institution_name, balance::text, last_four_digits, account_type
		   FROM accounts ORDER BY position`)
	if err != nil {
		return nil, &PersistenceError{Op: "read", Path: g.target, Err: err}
	}
	defer rows.Close()

	var accounts []model.Account
	byID := make(map[string]int)
	for rows.Next() {
		var a model.Account
		var bal, typ string
		if err := rows.Scan(&a.ID, &a.InstitutionName, &bal, &a.LastFourDigits, &typ); err != nil {
			return nil, &PersistenceError{Op: "read", Path: g.target, Err: err}
		}
		if a.Balance, err = decimal.NewFromString(bal); err != nil {
			return nil, &PersistenceError{Op: "decode", Path: g.target, Err: fmt.Errorf("account %s balance: %w", a.ID, err)}
		}
		a.Type = model.AccountType(typ)
		if !a.Type.Valid() {
			return nil, &PersistenceError{Op: "decode", Path: g.target, Err: fmt.Errorf("account %s: unknown account type %q", a.ID, typ)}
		}
		byID[a.ID] = len(accounts)
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "read", Path: g.target, Err: err}
	}

	if err := g.readTransactions(ctx, accounts, byID); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (g *PostgresGateway) readTransactions(ctx context.Context, accounts []model.Account, byID map[string]int) error {
	rows, err := g.pool.Query(ctx,
		`SELECT account_id, id, date, amount::text, note, type
		   FROM transactions ORDER BY account_id, position`)
	if err != nil {
		return &PersistenceError{Op: "read", Path: g.target, Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var accountID, amt, typ string
		var txn model.Transaction
		if err := rows.Scan(&accountID, &txn.ID, &txn.Date, &amt, &txn.Note, &typ); err != nil {
			return &PersistenceError{Op: "read", Path: g.target, Err: err}
		}
		if txn.Amount, err = decimal.NewFromString(amt); err != nil {
			return &PersistenceError{Op: "decode", Path: g.target, Err: fmt.Errorf("transaction %s amount: %w", txn.ID, err)}
		}
		txn.Type = model.TransactionType(typ)
		if !txn.Type.Valid() {
			return &PersistenceError{Op: "decode", Path: g.target, Err: fmt.Errorf("transaction %s: unknown type %q", txn.ID, typ)}
		}
		i, ok := byID[accountID]
		if !ok {
			continue
		}
		accounts[i].Transactions = append(accounts[i].Transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return &PersistenceError{Op: "read", Path: g.target, Err: err}
	}
	return nil
}

// Save replaces all persisted accounts and transactions with accounts.
func (g *PostgresGateway) Save(ctx context.Context, accounts []model.Account) error {
	tx, err := g.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return &PersistenceError{Op: "write", Path: g.target, Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, stmt := range []string{`DELETE FROM transactions`, `DELETE FROM accounts`} {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return &PersistenceError{Op: "write", Path: g.target, Err: err}
		}
	}

	batch := &pgx.Batch{}
	for i, a := range accounts {
		batch.Queue(
			`INSERT INTO accounts(id, position, institution_name, balance, last_four_digits, account_type)
			 VALUES($1, $2, $3, $4, $5, $6)`,
			a.ID, i, a.InstitutionName, a.Balance.String(), a.LastFourDigits, string(a.Type),
		)
		for j, txn := range a.Transactions {
			batch.Queue(
				`INSERT INTO transactions(id, account_id, position, date, amount, note, type)
				 VALUES($1, $2, $3, $4, $5, $6, $7)`,
				txn.ID, a.ID, j, txn.Date, txn.Amount.String(), txn.Note, string(txn.Type),
			)
		}
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return &PersistenceError{Op: "write", Path: g.target, Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return &PersistenceError{Op: "commit", Path: g.target, Err: err}
	}
	return nil
}

// Close releases the connection pool.
func (g *PostgresGateway) Close() error {
	g.pool.Close()
	return nil
}
