package commands_test

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/commands"
	"github.com/tallyhq/tally/internal/config"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/storage"
)

// runTally executes the CLI in-process and returns what it wrote to stdout.
func runTally(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// newProject initializes an empty file-backed ledger in a temp dir.
func newProject(t *testing.T) string {
	t.Helper()
	t.Setenv(config.DatabaseURLEnv, "")
	dir := t.TempDir()
	_, err := runTally(t, "init", dir)
	require.NoError(t, err)
	return dir
}

// ledgerOnDisk reads the persisted accounts directly from the ledger file.
func ledgerOnDisk(t *testing.T, dir string) []model.Account {
	t.Helper()
	accounts, err := storage.NewFileGateway(filepath.Join(dir, storage.DefaultFileName), nil).Read()
	require.NoError(t, err)
	return accounts
}

func addAccount(t *testing.T, dir, institution, balance, lastFour, accountType string) model.Account {
	t.Helper()
	_, err := runTally(t, "--dir", dir, "account", "add",
		"--institution", institution, "--balance", balance, "--last4", lastFour, "--type", accountType)
	require.NoError(t, err)
	accounts := ledgerOnDisk(t, dir)
	return accounts[len(accounts)-1]
}
