package cmd

import (
	"fmt"

	"github.com/antonk9218/skinflip/internal/app"
	"github.com/antonk9218/skinflip/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the arbitrage engine",
	Long: `Starts the skinflip engine, which will:
1. Reconcile pending trades against the live marketplace inventory
2. Scan configured games for underpriced listings on an interval
3. In trade mode, buy the best opportunities within the risk tier limits
4. Record every purchase durably before attempting to re-list it

Set ENGINE_MODE=trade to enable auto-trading; the default (scan) only
detects and ranks opportunities.`,
	RunE: runEngine,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
}

func runEngine(cmd *cobra.Command, args []string) error {
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

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
