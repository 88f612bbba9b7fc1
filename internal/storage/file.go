package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/tallyhq/tally/internal/model"
)

// DefaultFileName is the ledger file created by `tally init`.
const DefaultFileName = "cards.json"

// FileGateway persists the ledger as a single JSON file.
type FileGateway struct {
	path string
	log  logrus.FieldLogger
}

// NewFileGateway creates a gateway writing to path.
func NewFileGateway(path string, log logrus.FieldLogger) *FileGateway {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FileGateway{path: path, log: log}
}

// Path returns the ledger file location.
func (g *FileGateway) Path() string {
	return g.path
}

// Load reads the ledger file. A missing, unreadable, or corrupt file yields
// an empty ledger.
func (g *FileGateway) Load(_ context.Context) []model.Account {
	accounts, err := g.Read()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			g.log.WithField("path", g.path).Info("no ledger file yet, starting empty")
		} else {
			g.log.WithError(err).WithField("path", g.path).Warn("ledger file unreadable, starting empty")
		}
		return []model.Account{}
	}
	return accounts
}

// Read loads the ledger file and reports any failure.
func (g *FileGateway) Read() ([]model.Account, error) {
	data, err := os.ReadFile(g.path)
	if err != nil {
		return nil, &PersistenceError{Op: "read", Path: g.path, Err: err}
	}
	accounts, err := DecodeAccounts(data)
	if err != nil {
		return nil, &PersistenceError{Op: "decode", Path: g.path, Err: err}
	}
	return accounts, nil
}

// Save atomically replaces the ledger file with accounts: the data is written
// to a temporary file in the same directory, synced, then renamed over the
// previous file.
func (g *FileGateway) Save(ctx context.Context, accounts []model.Account) error {
	if err := ctx.Err(); err != nil {
		return &PersistenceError{Op: "write", Path: g.path, Err: err}
	}

	data, err := EncodeAccounts(accounts)
	if err != nil {
		return &PersistenceError{Op: "encode", Path: g.path, Err: err}
	}

	if err := writeFileAtomic(g.path, data); err != nil {
		return &PersistenceError{Op: "write", Path: g.path, Err: err}
	}
	return nil
}

// Close is a no-op; the file is not held open between calls.
func (g *FileGateway) Close() error {
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing ledger file: %w", err)
	}
	committed = true
	return nil
}
