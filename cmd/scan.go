package cmd

import (
	"fmt"

	"github.com/antonk9218/skinflip/internal/marketplace"
	"github.com/antonk9218/skinflip/internal/scanner"
	"github.com/antonk9218/skinflip/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a single scan cycle and print opportunities",
	Long: `Fetches current listings for the configured games, ranks profitable
buy/re-list pairs by expected net profit, and prints them. No trades are
executed and nothing is persisted.`,
	RunE: runScan,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().Float64P("min-profit", "p", 0, "Override MIN_PROFIT_PERCENT for this scan")
}

func runScan(cmd *cobra.Command, args []string) error {
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

	minProfit := cfg.MinProfitPercent
	if cmd.Flags().Changed("min-profit") {
		minProfit, _ = cmd.Flags().GetFloat64("min-profit")
	}

	client := marketplace.NewHTTPClient(&marketplace.HTTPConfig{
		BaseURL:           cfg.MarketplaceBaseURL,
		APIKey:            cfg.MarketplaceAPIKey,
		RequestTimeout:    cfg.MarketplaceTimeout,
		RequestsPerSecond: cfg.MarketplaceRPS,
		Logger:            logger.Named("marketplace"),
	})

	scn := scanner.New(scanner.Config{
		Marketplace:      cfg.MarketplaceName,
		MaxOpportunities: cfg.MaxOpportunities,
		Logger:           logger.Named("scanner"),
	})

	ctx := cmd.Context()
	total := 0

	for _, game := range cfg.Games {
		listings, err := client.ListItems(ctx, marketplace.ListQuery{
			Game:      game,
			PriceFrom: cfg.ScanPriceFrom,
			PriceTo:   cfg.ScanPriceTo,
			Limit:     cfg.ScanListingsLimit,
		})
		if err != nil {
			return fmt.Errorf("list items for %s: %w", game, err)
		}

		opportunities := scn.Scan(game, listings, minProfit)
		total += len(opportunities)

		fmt.Printf("\n=== %s: %d opportunities (from %d listings) ===\n", game, len(opportunities), len(listings))
		for i, opp := range opportunities {
			fmt.Printf("%3d. %s\n", i+1, opp)
		}
	}

	if total == 0 {
		fmt.Printf("\nNo opportunities above %.1f%% profit.\n", minProfit)
	}

	return nil
}
