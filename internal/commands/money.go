package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/app"
	"github.com/tallyhq/tally/internal/ledger"
)

func newDepositCommand(root *rootOptions) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "deposit <account> <amount>",
		Short: "Record income into an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withSession(cmd, func(a *app.App) error {
				return runDeposit(cmd, a, args[0], args[1], note)
			})
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "transaction note")

	return cmd
}

func runDeposit(cmd *cobra.Command, a *app.App, ref, rawAmount, note string) error {
	amount, err := ledger.ParseAmount(rawAmount)
	if err != nil {
		return err
	}
	acct, err := resolveAccount(a.Store, ref)
	if err != nil {
		return err
	}
	if _, err := a.Store.Deposit(cmd.Context(), acct.ID, amount, note); err != nil {
		return err
	}
	if err := a.Commit(); err != nil {
		return err
	}

	updated, _ := a.Store.Get(acct.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "Deposited %s to %s; balance %s\n",
		a.Money.Format(amount), describe(updated), a.Money.Format(updated.Balance))
	return nil
}

func newWithdrawCommand(root *rootOptions) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "withdraw <account> <amount>",
		Short: "Record an expense from an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withSession(cmd, func(a *app.App) error {
				return runWithdraw(cmd, a, args[0], args[1], note)
			})
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "transaction note")

	return cmd
}

func runWithdraw(cmd *cobra.Command, a *app.App, ref, rawAmount, note string) error {
	amount, err := ledger.ParseAmount(rawAmount)
	if err != nil {
		return err
	}
	acct, err := resolveAccount(a.Store, ref)
	if err != nil {
		return err
	}
	if _, err := a.Store.Withdraw(cmd.Context(), acct.ID, amount, note); err != nil {
		return err
	}
	if err := a.Commit(); err != nil {
		return err
	}

	updated, _ := a.Store.Get(acct.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "Withdrew %s from %s; balance %s\n",
		a.Money.Format(amount), describe(updated), a.Money.Format(updated.Balance))
	return nil
}

func newTransferCommand(root *rootOptions) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "transfer <from> <to> <amount>",
		Short: "Move money between two accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withSession(cmd, func(a *app.App) error {
				return runTransfer(cmd, a, args[0], args[1], args[2], note)
			})
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "note recorded on both sides")

	return cmd
}

func runTransfer(cmd *cobra.Command, a *app.App, fromRef, toRef, rawAmount, note string) error {
	amount, err := ledger.ParseAmount(rawAmount)
	if err != nil {
		return err
	}
	from, err := resolveAccount(a.Store, fromRef)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	to, err := resolveAccount(a.Store, toRef)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if _, _, err := a.Store.Transfer(cmd.Context(), from.ID, to.ID, amount, note); err != nil {
		return err
	}
	if err := a.Commit(); err != nil {
		return err
	}

	from, _ = a.Store.Get(from.ID)
	to, _ = a.Store.Get(to.ID)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Transferred %s from %s to %s\n", a.Money.Format(amount), describe(from), describe(to))
	fmt.Fprintf(out, "  %s: %s\n", describe(from), a.Money.Format(from.Balance))
	fmt.Fprintf(out, "  %s: %s\n", describe(to), a.Money.Format(to.Balance))
	return nil
}
