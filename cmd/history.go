package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"calendar-mirror/core/config"
	"calendar-mirror/core/database"
	"calendar-mirror/feature/history"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd prints the latest recorded passes.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent synchronization passes",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", history.DefaultLimit, "Number of passes to show")
	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.Database.Enabled {
		return fmt.Errorf("run history is disabled (DATABASE_ENABLED=false)")
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	store := history.NewStore(db)
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	runs, err := store.List(ctx, historyLimit)
	if err != nil {
		return err
	}
	renderRuns(cmd.OutOrStdout(), runs, cfg.Sync.Timezone)
	return nil
}

// renderRuns writes the runs as a table, times shown in the given timezone.
func renderRuns(w io.Writer, runs []history.SyncRun, timezone string) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Started", "Source", "Status", "Created", "Updated", "Deleted", "Duration", "Error"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, r := range runs {
		status := r.Status
		if r.DryRun {
			status += " (dry run)"
		}
		errText := r.Error
		if r.Phase != "" && errText != "" {
			errText = r.Phase + ": " + errText
		}
		table.Append([]string{
			r.StartedAt.In(loc).Format("2006-01-02 15:04:05"),
			r.Source,
			status,
			strconv.Itoa(r.Created),
			strconv.Itoa(r.Updated),
			strconv.Itoa(r.Deleted),
			r.Duration().Round(time.Millisecond).String(),
			truncate(errText, 60),
		})
	}
	table.Render()

	if len(runs) == 0 {
		fmt.Fprintln(w, "No pass recorded yet.")
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

