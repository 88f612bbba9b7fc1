package commands

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/app"
	"github.com/tallyhq/tally/internal/id"
	"github.com/tallyhq/tally/internal/ledger"
	"github.com/tallyhq/tally/internal/model"
)

type rootOptions struct {
	dir string
}

// open starts a ledger session for the project directory.
func (o *rootOptions) open(cmd *cobra.Command) (*app.App, error) {
	absDir, err := filepath.Abs(o.dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	a, err := app.Build(cmd.Context(), app.Options{Dir: absDir, LogOutput: cmd.ErrOrStderr()})
	if err != nil {
		return nil, fmt.Errorf("opening ledger in %s: %w", absDir, err)
	}
	return a, nil
}

// withSession runs fn against an open session and closes it afterwards.
func (o *rootOptions) withSession(cmd *cobra.Command, fn func(*app.App) error) error {
	a, err := o.open(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// resolveAccount looks up an account by full id or unique id prefix.
func resolveAccount(store *ledger.Store, ref string) (model.Account, error) {
	accountID, err := id.MatchPrefix(ref, store.IDs())
	if err != nil {
		return model.Account{}, err
	}
	acct, ok := store.Get(accountID)
	if !ok {
		return model.Account{}, &ledger.NotFoundError{ID: accountID}
	}
	return acct, nil
}

// describe renders an account the way it is referred to in messages,
// e.g. "Chase ••4821".
func describe(acct model.Account) string {
	return fmt.Sprintf("%s ••%s", acct.InstitutionName, acct.LastFourDigits)
}

func parsePositions(args []string) ([]int, error) {
	indices := make([]int, 0, len(args))
	for _, arg := range args {
		pos, err := strconv.Atoi(arg)
		if err != nil || pos < 1 {
			return nil, fmt.Errorf("invalid position %q: must be a number from the account list", arg)
		}
		indices = append(indices, pos-1)
	}
	return indices, nil
}
