package cmd

import (
	"fmt"
	"os"

	"calendar-mirror/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "calendar-mirror",
	Short: "One-way calendar mirror",
	Long: `Calendar Mirror keeps a Google calendar identical to a source calendar
(Exchange or a published ICS feed) over a rolling window of upcoming days.
Past mirror events are never removed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with development timestamps for CLI readability
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
