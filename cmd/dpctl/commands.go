package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pricepilot/dynamic-pricing/internal/email"
	"github.com/pricepilot/dynamic-pricing/internal/logger"
	"github.com/pricepilot/dynamic-pricing/internal/maintenance"
	"github.com/pricepilot/dynamic-pricing/internal/notification"
	"github.com/pricepilot/dynamic-pricing/internal/pricing"
	"github.com/pricepilot/dynamic-pricing/internal/store"
)

func (a *app) migrateCmd() *cobra.Command {
	var includeExternal bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the managed tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := store.Migrate(a.db, includeExternal); err != nil {
				return err
			}
			logger.InfoCtx(cmd.Context(), "Migration completed", zap.Bool("include_external", includeExternal))
			return nil
		},
	}
	cmd.Flags().BoolVar(&includeExternal, "include-external", false, "Also create the external read-only tables (local development only)")
	return cmd
}

func (a *app) seedIncrementsCmd() *cobra.Command {
	var (
		propertyID     string
		deleteExisting bool
		dryRun         bool
	)
	cmd := &cobra.Command{
		Use:   "seed-increments",
		Short: "Seed the default dynamic increment grid",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := parsePropertyID(propertyID)
			if err != nil {
				return err
			}
			report, err := maintenance.SeedIncrements(cmd.Context(), a.store, maintenance.SeedIncrementsOptions{
				PropertyID:     id,
				DeleteExisting: deleteExisting,
				DryRun:         dryRun,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, report)
		},
	}
	cmd.Flags().StringVar(&propertyID, "property-id", "", "Seed a single property")
	cmd.Flags().BoolVar(&deleteExisting, "delete-existing", false, "Replace existing cells with the defaults")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be written")
	return cmd
}

func (a *app) backfillOverwritesCmd() *cobra.Command {
	var opts maintenance.BackfillOptions
	cmd := &cobra.Command{
		Use:   "backfill-overwrites",
		Short: "Copy legacy price overwrites into overwrite_price_history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := maintenance.BackfillOverwrites(cmd.Context(), a.store, opts)
			if err != nil {
				return err
			}
			return printJSON(cmd, report)
		},
	}
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", maintenance.DEFAULT_BACKFILL_BATCH_SIZE, "Rows per transaction")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum legacy rows to read (0 reads everything)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Read and convert without writing")
	return cmd
}

func (a *app) seedDemoCmd() *cobra.Command {
	var deleteExisting bool
	cmd := &cobra.Command{
		Use:   "seed-demo",
		Short: "Create a demo account with a priced property",
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := maintenance.SeedDemo(cmd.Context(), a.store, a.clock, deleteExisting)
			if err != nil {
				return err
			}
			return printJSON(cmd, report)
		},
	}
	cmd.Flags().BoolVar(&deleteExisting, "delete-existing", false, "Replace the existing demo property")
	return cmd
}

func (a *app) recalculatePricesCmd() *cobra.Command {
	var (
		propertyID string
		days       int
	)
	cmd := &cobra.Command{
		Use:   "recalculate-prices",
		Short: "Recalculate recommended prices",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := parsePropertyID(propertyID)
			if err != nil {
				return err
			}
			if days <= 0 {
				days = a.cfg.Pricing.HorizonDays
			}
			engine := pricing.NewEngine(a.store, a.clock, pricing.NewHolidayCalendar())
			report, err := maintenance.RecalculatePrices(cmd.Context(), a.store, engine, id, days)
			if err != nil {
				return err
			}
			return printJSON(cmd, report)
		},
	}
	cmd.Flags().StringVar(&propertyID, "property-id", "", "Recalculate a single property")
	cmd.Flags().IntVar(&days, "days", 0, "Days ahead to price (defaults to pricing.horizon_days)")
	return cmd
}

func (a *app) checkCoverageCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "check-coverage",
		Short: "Raise notifications for missing rule coverage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mailer, err := email.New(a.cfg.Email)
			if err != nil {
				return err
			}
			service := notification.NewService(a.store, mailer, a.clock, a.cfg.Notifications, a.cfg.Email.Templates.CoverageAlert)
			if days <= 0 {
				days = service.HorizonDays()
			}
			report, err := maintenance.CheckCoverage(cmd.Context(), a.store, service, days)
			if err != nil {
				return err
			}
			return printJSON(cmd, report)
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Days ahead to check (defaults to notifications.horizon_days)")
	return cmd
}

func parsePropertyID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --property-id %q: %w", s, err)
	}
	return &id, nil
}
