package cmd

import (
	"fmt"

	"github.com/antonk9218/skinflip/internal/marketplace"
	"github.com/antonk9218/skinflip/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the marketplace account balance",
	RunE:  runBalance,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(balanceCmd)
}

func runBalance(cmd *cobra.Command, args []string) error {
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

	client := marketplace.NewHTTPClient(&marketplace.HTTPConfig{
		BaseURL:           cfg.MarketplaceBaseURL,
		APIKey:            cfg.MarketplaceAPIKey,
		RequestTimeout:    cfg.MarketplaceTimeout,
		RequestsPerSecond: cfg.MarketplaceRPS,
		Logger:            logger.Named("marketplace"),
	})

	balanceCents, err := client.Balance(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetch balance: %w", err)
	}

	fmt.Printf("%s balance: $%.2f\n", cfg.MarketplaceName, float64(balanceCents)/100)

	return nil
}
