package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"calendar-mirror/core/config"
	"calendar-mirror/core/logger"
	"calendar-mirror/feature/gcal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var authNoBrowser bool

// authCmd groups credential commands.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage calendar credentials",
}

// authGoogleCmd runs the interactive Google consent flow and caches the token.
var authGoogleCmd = &cobra.Command{
	Use:   "google",
	Short: "Authorize access to the Google calendar",
	Long: `Opens the Google consent page and stores the resulting token.

Requires GOOGLE_CREDENTIALS_FILE (OAuth client of type "Desktop app").
The token is written to GOOGLE_TOKEN_FILE, or under the XDG data directory,
and is refreshed automatically by later passes.`,
	RunE: runAuthGoogle,
}

func init() {
	authGoogleCmd.Flags().BoolVar(&authNoBrowser, "no-browser", false, "Print the consent URL instead of opening a browser")
	authCmd.AddCommand(authGoogleCmd)
	RootCmd.AddCommand(authCmd)
}

func runAuthGoogle(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Google.ServiceAccountFile != "" {
		return fmt.Errorf("GOOGLE_SERVICE_ACCOUNT_FILE is set, no user consent is needed")
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	path, err := gcal.Authorize(ctx, cfg.Google, l, !authNoBrowser)
	if err != nil {
		return err
	}
	l.Info("Google authorization saved", zap.String("token", path))
	return nil
}
