package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/oralrisk/internal/config"
	"github.com/turtacn/oralrisk/internal/infrastructure/monitoring"
	"github.com/turtacn/oralrisk/pkg/logger"
)

var (
	configFile string
	logLevel   string
)

// rootCmd represents the base command when the `oralrisk-admin` binary is called without any subcommands.
// rootCmd 代表在没有任何子命令的情况下调用 `oralrisk-admin` 二进制文件时的基本命令。
var rootCmd = &cobra.Command{
	Use:   "oralrisk-admin",
	Short: "Administer the oral cancer risk screening service.",
	Long: `oralrisk-admin performs offline tasks for the screening service:
training the classifier artifact, migrating the prediction log and seeding accounts.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (default ./config.yaml or /etc/oralrisk/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level for admin commands")
}

// Execute is the main entry point for the CLI application.
// It parses the command-line arguments and runs the matching command, exiting non-zero on error.
// Execute 是 CLI 应用程序的主入口点。
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig builds the console logger and reads the shared service configuration.
func loadConfig() (*config.Config, logger.Logger, error) {
	log, err := monitoring.NewZapLogger(&config.LogConfig{Level: logLevel, Format: "console"})
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.NewLoader(configFile, log).Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
