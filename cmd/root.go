package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "skinflip",
	Short: "Skins marketplace arbitrage engine",
	Long: `skinflip scans a skins marketplace for underpriced items, ranks them by
expected net profit after fees, and executes bounded-risk buy/re-list cycles.

Every purchase is durably recorded before any sell attempt; on startup the
engine reconciles pending trades against the live inventory so a crash
mid-trade never loses track of money already spent.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
