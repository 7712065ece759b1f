package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"calendar-mirror/core/config"
	"calendar-mirror/core/database"
	"calendar-mirror/core/logger"
	"calendar-mirror/core/storage"
	"calendar-mirror/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	fixFlag  bool
	jsonFlag bool
)

// integrityCmd checks what a pass depends on.
var integrityCmd = &cobra.Command{
	Use:     "integrity",
	Aliases: []string{"check"},
	Short:   "Check credentials, report archive and run history",
	Long: `Verifies the Google credential files, the report archive bucket and the
run history schema. Use --fix to create a missing archive bucket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context())
	},
}

func init() {
	integrityCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the archive bucket when missing")
	integrityCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the full report as JSON")
	RootCmd.AddCommand(integrityCmd)
}

func runIntegrityChecks(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logg.Sync()

	var client storage.Client
	if cfg.Storage.Enabled {
		if client, err = storage.NewClient(cfg.Storage); err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}
	}

	var db *gorm.DB
	if cfg.Database.Enabled {
		if db, err = database.Connect(cfg.Database); err != nil {
			logg.Warn("Database connection failed", zap.Error(err))
		}
	}

	svc := integrity.NewService(client, cfg.Storage, db, cfg.Google, logg)
	failed := false

	creds := svc.CheckCredentials()
	if len(creds.Missing) > 0 || !creds.TokenValid {
		failed = true
		logg.Error("Google credentials incomplete",
			zap.String("mode", creds.Mode),
			zap.Strings("missing", creds.Missing),
			zap.Bool("token_valid", creds.TokenValid))
	} else {
		logg.Info("Google credentials OK", zap.String("mode", creds.Mode))
	}

	if client != nil {
		report, err := svc.CheckStorage(ctx)
		switch {
		case err != nil:
			failed = true
			logg.Error("Storage check failed", zap.Error(err))
		case !report.Exists && fixFlag:
			if err := svc.FixStorage(ctx); err != nil {
				failed = true
			}
		case !report.Exists:
			failed = true
			logg.Error("Archive bucket missing, run with --fix to create it", zap.String("bucket", report.Bucket))
		default:
			logg.Info("Report archive OK", zap.String("bucket", report.Bucket), zap.Int("reports", report.Reports))
		}
	}

	if db != nil {
		report, err := svc.CheckSchema()
		switch {
		case err != nil:
			failed = true
			logg.Error("Schema check failed", zap.Error(err))
		case !report.Matched:
			failed = true
			logg.Error("Run history schema mismatch",
				zap.Strings("missing", report.MissingColumns),
				zap.Strings("mismatches", report.TypeMismatches),
				zap.String("errors", strings.Join(report.Errors, "; ")))
		default:
			logg.Info("Run history schema OK", zap.String("table", report.Table))
		}
	}

	if jsonFlag {
		data, err := json.MarshalIndent(svc.Report(ctx), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	}

	if failed {
		return fmt.Errorf("integrity checks failed")
	}
	return nil
}
