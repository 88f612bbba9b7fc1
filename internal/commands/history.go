package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/app"
	"github.com/tallyhq/tally/internal/display"
	"github.com/tallyhq/tally/internal/export"
	"github.com/tallyhq/tally/internal/model"
)

const historyDateFormat = "2006-01-02 15:04"

func newHistoryCommand(root *rootOptions) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "history <account>",
		Short: "Page through an account's transactions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withSession(cmd, func(a *app.App) error {
				if !cmd.Flags().Changed("limit") {
					limit = a.Config.Display.HistoryLimit
				}
				return runHistory(cmd.OutOrStdout(), a, args[0], limit, offset)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "maximum transactions to show (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of newest transactions to skip")

	return cmd
}

func runHistory(out io.Writer, a *app.App, ref string, limit, offset int) error {
	acct, err := resolveAccount(a.Store, ref)
	if err != nil {
		return err
	}
	page, err := a.Store.Transactions(acct.ID, limit, offset)
	if err != nil {
		return err
	}
	if len(page) == 0 {
		fmt.Fprintf(out, "No transactions for %s.\n", describe(acct))
		return nil
	}
	return writeTransactions(out, a.Money, page)
}

func writeTransactions(out io.Writer, m *display.Money, txns []model.Transaction) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tAMOUNT\tNOTE")
	for _, txn := range txns {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			txn.Date.Local().Format(historyDateFormat), display.TransactionType(txn.Type), m.Signed(txn), txn.Note)
	}
	return tw.Flush()
}

func newExportCommand(root *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <account>",
		Short: "Export an account's full transaction history as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withSession(cmd, func(a *app.App) error {
				return runExport(cmd, a, args[0], output)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")

	return cmd
}

func runExport(cmd *cobra.Command, a *app.App, ref, output string) error {
	acct, err := resolveAccount(a.Store, ref)
	if err != nil {
		return err
	}
	txns, err := a.Store.Transactions(acct.ID, 0, 0)
	if err != nil {
		return err
	}

	if output == "" {
		return export.WriteTransactions(cmd.OutOrStdout(), txns)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", output, err)
	}
	if err := export.WriteTransactions(f, txns); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", output, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", output, err)
	}
	if err := export.CheckFile(output, txns); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transaction(s) from %s to %s\n", len(txns), describe(acct), output)
	return nil
}
