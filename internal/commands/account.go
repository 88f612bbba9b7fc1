package commands

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/app"
	"github.com/tallyhq/tally/internal/display"
	"github.com/tallyhq/tally/internal/id"
	"github.com/tallyhq/tally/internal/ledger"
	"github.com/tallyhq/tally/internal/model"
)

func newAccountCommand(root *rootOptions) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:     "account",
		Aliases: []string{"accounts"},
		Short:   "Manage accounts",
	}
	accountCmd.AddCommand(
		newAccountAddCommand(root),
		newAccountListCommand(root),
		newAccountShowCommand(root),
		newAccountEditCommand(root),
		newAccountRemoveCommand(root),
	)
	return accountCmd
}

func newAccountAddCommand(root *rootOptions) *cobra.Command {
	var institution, balance, lastFour, accountType string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account with an opening balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opening, err := decimal.NewFromString(balance)
			if err != nil {
				return fmt.Errorf("invalid balance %q: %w", balance, err)
			}
			params := ledger.NewAccountParams{
				InstitutionName: institution,
				Balance:         opening,
				LastFourDigits:  lastFour,
				Type:            model.AccountType(accountType),
			}
			return root.withSession(cmd, func(a *app.App) error {
				return runAccountAdd(cmd, a, params)
			})
		},
	}

	cmd.Flags().StringVar(&institution, "institution", "", "institution name (required)")
	cmd.Flags().StringVar(&balance, "balance", "0", "opening balance")
	cmd.Flags().StringVar(&lastFour, "last4", "", "last four digits of the card or account number (required)")
	cmd.Flags().StringVar(&accountType, "type", string(model.AccountTypeDebit), "account type")
	_ = cmd.MarkFlagRequired("institution")
	_ = cmd.MarkFlagRequired("last4")

	return cmd
}

func runAccountAdd(cmd *cobra.Command, a *app.App, params ledger.NewAccountParams) error {
	acct, err := a.Store.Create(cmd.Context(), params)
	if err != nil {
		return err
	}
	if err := a.Commit(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s (%s) with balance %s\n",
		display.AccountType(acct.Type), describe(acct), id.Short(acct.ID), a.Money.Format(acct.Balance))
	return nil
}

func newAccountListCommand(root *rootOptions) *cobra.Command {
	var accountType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts with their balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withSession(cmd, func(a *app.App) error {
				return runAccountList(cmd.OutOrStdout(), a, model.AccountType(accountType))
			})
		},
	}

	cmd.Flags().StringVar(&accountType, "type", "", "only list accounts of this type")

	return cmd
}

func runAccountList(out io.Writer, a *app.App, accountType model.AccountType) error {
	accounts := a.Store.Accounts()
	if accountType != "" {
		if !accountType.Valid() {
			return fmt.Errorf("unknown account type %q", accountType)
		}
		accounts = a.Store.ByType(accountType)
	}
	if len(accounts) == 0 {
		fmt.Fprintln(out, "No accounts.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tINSTITUTION\tLAST4\tTYPE\tBALANCE")
	total := decimal.Zero
	for _, acct := range accounts {
		total = total.Add(acct.Balance)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			a.Store.Index(acct.ID)+1, id.Short(acct.ID), acct.InstitutionName,
			acct.LastFourDigits, display.AccountType(acct.Type), a.Money.Format(acct.Balance))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Total: %s\n", a.Money.Format(total))
	return nil
}

func newAccountShowCommand(root *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "show <account>",
		Short: "Show an account and its recent transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withSession(cmd, func(a *app.App) error {
				if !cmd.Flags().Changed("limit") {
					limit = a.Config.Display.HistoryLimit
				}
				return runAccountShow(cmd.OutOrStdout(), a, args[0], limit)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "number of recent transactions to show")

	return cmd
}

func runAccountShow(out io.Writer, a *app.App, ref string, limit int) error {
	acct, err := resolveAccount(a.Store, ref)
	if err != nil {
		return err
	}
	recent, err := a.Store.Recent(acct.ID, limit)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s\n", describe(acct))
	fmt.Fprintf(out, "ID:       %s\n", acct.ID)
	fmt.Fprintf(out, "Type:     %s\n", display.AccountType(acct.Type))
	fmt.Fprintf(out, "Balance:  %s\n", a.Money.Format(acct.Balance))
	fmt.Fprintf(out, "Opening:  %s\n", a.Money.Format(acct.OpeningBalance()))

	if len(acct.Transactions) == 0 {
		fmt.Fprintln(out, "\nNo transactions.")
		return nil
	}
	fmt.Fprintf(out, "\nRecent transactions (%d of %d):\n", len(recent), len(acct.Transactions))
	return writeTransactions(out, a.Money, recent)
}

func newAccountEditCommand(root *rootOptions) *cobra.Command {
	var institution, lastFour, accountType string

	cmd := &cobra.Command{
		Use:   "edit <account>",
		Short: "Change an account's institution, last four digits, or type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("institution") && !flags.Changed("last4") && !flags.Changed("type") {
				return errors.New("nothing to change: pass --institution, --last4, or --type")
			}
			return root.withSession(cmd, func(a *app.App) error {
				acct, err := resolveAccount(a.Store, args[0])
				if err != nil {
					return err
				}
				if flags.Changed("institution") {
					acct.InstitutionName = institution
				}
				if flags.Changed("last4") {
					acct.LastFourDigits = lastFour
				}
				if flags.Changed("type") {
					acct.Type = model.AccountType(accountType)
				}
				return runAccountEdit(cmd, a, acct)
			})
		},
	}

	cmd.Flags().StringVar(&institution, "institution", "", "new institution name")
	cmd.Flags().StringVar(&lastFour, "last4", "", "new last four digits")
	cmd.Flags().StringVar(&accountType, "type", "", "new account type")

	return cmd
}

func runAccountEdit(cmd *cobra.Command, a *app.App, acct model.Account) error {
	if err := a.Store.Update(cmd.Context(), acct); err != nil {
		return err
	}
	if err := a.Commit(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%s)\n", describe(acct), id.Short(acct.ID))
	return nil
}

func newAccountRemoveCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <position>...",
		Short: "Remove accounts by their position in `account list`",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			indices, err := parsePositions(args)
			if err != nil {
				return err
			}
			return root.withSession(cmd, func(a *app.App) error {
				return runAccountRemove(cmd, a, indices)
			})
		},
	}
	return cmd
}

func runAccountRemove(cmd *cobra.Command, a *app.App, indices []int) error {
	before := a.Store.Len()
	if err := a.Store.Remove(cmd.Context(), indices...); err != nil {
		var ie *ledger.IndexError
		if errors.As(err, &ie) {
			return fmt.Errorf("no account at position %d (%d accounts)", ie.Index+1, ie.Len)
		}
		return err
	}
	if err := a.Commit(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d account(s)\n", before-a.Store.Len())
	return nil
}
