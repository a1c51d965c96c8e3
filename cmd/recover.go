package cmd

import (
	"fmt"

	"github.com/antonk9218/skinflip/internal/marketplace"
	"github.com/antonk9218/skinflip/internal/notify"
	"github.com/antonk9218/skinflip/internal/storage"
	"github.com/antonk9218/skinflip/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Reconcile pending trades against the live inventory",
	Long: `Runs one reconciliation pass: loads all non-terminal pending trades,
fetches the marketplace inventory, and classifies each trade as needing a
listing, needing a price check, or sold while the engine was offline. Trades
sold offline are marked sold. No new listings are created; run the engine to
act on the report.`,
	RunE: runRecover,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(recoverCmd)
}

func runRecover(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	store, err := storage.NewPostgresStore(&storage.PostgresConfig{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPass,
		Database: cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSL,
		Logger:   logger.Named("storage"),
	})
	if err != nil {
		return fmt.Errorf("create trade store: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	client := marketplace.NewHTTPClient(&marketplace.HTTPConfig{
		BaseURL:           cfg.MarketplaceBaseURL,
		APIKey:            cfg.MarketplaceAPIKey,
		RequestTimeout:    cfg.MarketplaceTimeout,
		RequestsPerSecond: cfg.MarketplaceRPS,
		Logger:            logger.Named("marketplace"),
	})

	reconciler := storage.NewReconciler(store, client, notify.NewLogNotifier(logger.Named("notify")), logger.Named("recovery"))

	report, err := reconciler.Recover(cmd.Context())
	if err != nil {
		return fmt.Errorf("recover: %w", err)
	}

	fmt.Printf("Recovery complete: %d pending trades examined\n", len(report.Items))
	fmt.Printf("  needs listing:     %d\n", report.NeedsListing)
	fmt.Printf("  needs price check: %d\n", report.NeedsPriceCheck)
	fmt.Printf("  sold offline:      %d\n", report.SoldOffline)

	for _, item := range report.Items {
		fmt.Printf("  [%s] %s (%s)\n", item.Action, item.Trade.Title, item.Trade.AssetID)
	}

	return nil
}
