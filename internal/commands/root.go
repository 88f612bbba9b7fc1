package commands

import (
	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Track balances and transactions across your cards and accounts",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.dir, "dir", ".", "project directory containing tally.yaml")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newAccountCommand(opts),
		newDepositCommand(opts),
		newWithdrawCommand(opts),
		newTransferCommand(opts),
		newHistoryCommand(opts),
		newExportCommand(opts),
	)

	return rootCmd
}
