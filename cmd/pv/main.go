// Package main implements the pv CLI tool.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/amonks/pv/internal/logging"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "pv",
	Short:             "pv - a personal task list",
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

var (
	configPath string
	logLevel   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/pv/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	_, err = logging.Setup(cmd.ErrOrStderr(), level)
	return err
}
