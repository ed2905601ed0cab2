package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reviewpulse/internal/app"
	"reviewpulse/internal/config"
	"reviewpulse/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "reviewpulse",
	Short: "Review sentiment tester, noun-level tester and event logger",
	Long: `reviewpulse loads a review dataset, sends reviews to a Hugging Face
inference endpoint for sentiment or noun-level classification, and logs
CTA/heartbeat events to a Google Apps Script web app.

Configuration is read from config.yaml (optional) and REVIEWPULSE_* env vars,
e.g. REVIEWPULSE_CLASSIFIER__TOKEN.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	analyzeCmd.Flags().StringVar(&inputText, "text", "", "classify this text instead of a random review")
	nounsCmd.Flags().StringVar(&inputText, "text", "", "classify this text instead of a random review")
	heartbeatCmd.Flags().DurationVar(&heartbeatInterval, "interval", 0, "heartbeat interval (default from config)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveHeartbeat, "heartbeat", false, "send heartbeat events while serving")

	webhookCmd.AddCommand(webhookSetCmd, webhookShowCmd)
	rootCmd.AddCommand(
		analyzeCmd,
		nounsCmd,
		webhookCmd,
		logCmd,
		heartbeatCmd,
		clientIDCmd,
		serveCmd,
	)
}

// buildApp wires the application from the loaded config.
func buildApp() (*app.App, func() error, error) {
	a, closeFn, err := app.Build(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build app: %w", err)
	}
	return a, closeFn, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
