package cmd

import (
	"fmt"

	"github.com/antonk9218/skinflip/internal/storage"
	"github.com/antonk9218/skinflip/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var tradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "List pending trades",
	Long: `Prints pending trades from the trade store. By default only
non-terminal trades (bought, listed, adjusting, failed) are shown; pass
--status to query a specific state, including terminal ones.`,
	RunE: runTrades,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(tradesCmd)
	tradesCmd.Flags().StringP("status", "s", "", "Filter by status (bought, listed, adjusting, sold, cancelled, stop_loss, failed)")
	tradesCmd.Flags().StringP("game", "g", "", "Filter by game")
}

func runTrades(cmd *cobra.Command, args []string) error {
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

	var filter storage.TradeFilter
	filter.Game, _ = cmd.Flags().GetString("game")

	statusFlag, _ := cmd.Flags().GetString("status")
	if statusFlag != "" {
		status := storage.TradeStatus(statusFlag)
		if !status.Valid() {
			return fmt.Errorf("unknown status %q", statusFlag)
		}
		filter.Status = &status
	}

	trades, err := store.GetPendingTrades(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("get pending trades: %w", err)
	}

	if len(trades) == 0 {
		fmt.Println("No trades match.")
		return nil
	}

	fmt.Printf("%-36s %-10s %-8s %10s %10s  %s\n", "ASSET", "STATUS", "GAME", "BUY", "MIN SELL", "TITLE")
	for _, t := range trades {
		fmt.Printf("%-36s %-10s %-8s %10.2f %10.2f  %s\n",
			t.AssetID, t.Status, t.Game, t.BuyPrice, t.MinSellPrice, t.Title)
	}
	fmt.Printf("\n%d trade(s)\n", len(trades))

	return nil
}
