// cmd/assistant/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"estate-assistant/internal/common/config"
	"estate-assistant/internal/common/logger"
)

var (
	configPath string
	logLevel   string

	cfg *config.Config
	log logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "assistant",
	Short: "Estate assistant reply service",
	Long: `Answers free-text questions about a user's estate assets.

Replies come from the selected generation provider. When the provider is
unavailable the built-in rule engine answers from the asset context.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.LoadFromFile(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		log = logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config file (default configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")

	rootCmd.AddCommand(serveCmd, workerCmd, askCmd, providersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
