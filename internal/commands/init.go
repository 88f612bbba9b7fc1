package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/app"
	"github.com/tallyhq/tally/internal/config"
	"github.com/tallyhq/tally/internal/display"
	"github.com/tallyhq/tally/internal/logging"
	"github.com/tallyhq/tally/internal/model"
)

type initOptions struct {
	currency    string
	driver      string
	databaseURL string
}

func newInitCommand(root *rootOptions) *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := root.dir
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, opts)
		},
	}

	cmd.Flags().StringVar(&opts.currency, "currency", "USD", "ISO 4217 currency used to display amounts")
	cmd.Flags().StringVar(&opts.driver, "driver", config.DriverFile, "storage driver (file or postgres)")
	cmd.Flags().StringVar(&opts.databaseURL, "database-url", "", "Postgres connection string for the postgres driver")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, opts initOptions) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	m, err := display.NewMoney(opts.currency)
	if err != nil {
		return err
	}

	cfg := config.Default()
	cfg.Display.Currency = m.Code()
	cfg.Storage.Driver = opts.driver
	if opts.driver != config.DriverFile {
		cfg.Storage.Path = ""
	}
	cfg.Storage.DatabaseURL = opts.databaseURL
	if cfg.Storage.DatabaseURL == "" {
		cfg.Storage.DatabaseURL = os.Getenv(config.DatabaseURLEnv)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	// Open the backend before writing config so a bad database URL leaves
	// nothing behind.
	log, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	backend, err := app.OpenBackend(cmd.Context(), cfg, dir, log)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer backend.Close()

	if cfg.Storage.Driver == config.DriverFile {
		ledgerPath := cfg.LedgerPath(dir)
		if _, err := os.Stat(ledgerPath); errors.Is(err, fs.ErrNotExist) {
			if err := backend.Save(cmd.Context(), []model.Account{}); err != nil {
				return fmt.Errorf("writing empty ledger: %w", err)
			}
		}
	}

	// The env override is applied at load time, never persisted.
	if opts.databaseURL == "" {
		cfg.Storage.DatabaseURL = ""
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized tally ledger at %s (%s storage, %s)\n", dir, cfg.Storage.Driver, cfg.Display.Currency)
	return nil
}
