package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/pricepilot/dynamic-pricing/internal/adapter"
	"github.com/pricepilot/dynamic-pricing/internal/config"
	"github.com/pricepilot/dynamic-pricing/internal/logger"
	"github.com/pricepilot/dynamic-pricing/internal/store"
)

// app holds the dependencies shared by every command
type app struct {
	configFile string
	envPath    string

	cfg   *config.CLIConfig
	db    *gorm.DB
	store store.Store
	clock adapter.Clock
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "dpctl",
		Short:         "Dynamic pricing management commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			logger.Flush(2 * time.Second)
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&a.envPath, "env", "config/", "Path to environment files")

	rootCmd.AddCommand(
		a.migrateCmd(),
		a.seedIncrementsCmd(),
		a.backfillOverwritesCmd(),
		a.seedDemoCmd(),
		a.recalculatePricesCmd(),
		a.checkCoverageCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) setup(ctx context.Context) error {
	config.ChdirRepoRoot()
	cfg, err := config.LoadCLIConfig(a.configFile, a.envPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		Environment:     cfg.Environment,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "dpctl",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := store.Open(cfg.Database.DSN(), "", cfg.Debug)
	if err != nil {
		return err
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("dbname", cfg.Database.DBName),
	)

	a.db = db
	a.store = store.NewPGStore(db)
	a.clock = adapter.NewClock()
	return nil
}

// printJSON writes a command report to stdout
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
