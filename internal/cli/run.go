package cli

import (
	"fmt"

	"github.com/samvad-hq/dblclient/internal/app"
	"github.com/samvad-hq/dblclient/internal/config"
	"github.com/samvad-hq/dblclient/internal/logger"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the stats reporter and vote watcher",
	Long: `Run the long-lived daemon.

The stats reporter posts the server count found in stats_file whenever it
changes. The vote watcher polls voters for every bot in targets_file and
publishes new votes to the sinks in publishers_file. Prometheus metrics are
served on metrics_addr when set.`,
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sugar, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()
	log := logger.NewZap(sugar)

	log.InfoObj("dblctl daemon starting", "config", cfg.Redacted())

	ctx := cmd.Context()
	daemon, err := app.NewDaemon(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize daemon", "error", err.Error())
		return err
	}

	if err := daemon.Run(ctx); err != nil {
		return fmt.Errorf("daemon run: %w", err)
	}
	return nil
}
