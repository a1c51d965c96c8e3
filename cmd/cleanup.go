package cmd

import (
	"fmt"

	"github.com/antonk9218/skinflip/internal/storage"
	"github.com/antonk9218/skinflip/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete old terminal trades",
	Long: `Deletes sold, cancelled and stop-loss trades whose last update is
older than the retention horizon. Non-terminal trades are never touched.`,
	RunE: runCleanup,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().IntP("days", "d", 0, "Override RETENTION_DAYS for this sweep")
}

func runCleanup(cmd *cobra.Command, args []string) error {
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

	days := cfg.RetentionDays
	if cmd.Flags().Changed("days") {
		days, _ = cmd.Flags().GetInt("days")
		if days <= 0 {
			return fmt.Errorf("--days must be positive, got %d", days)
		}
	}

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

	deleted, err := store.Cleanup(cmd.Context(), days)
	if err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}

	fmt.Printf("Deleted %d trade(s) older than %d day(s)\n", deleted, days)

	return nil
}
