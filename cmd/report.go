package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/aaka8h/face-attend/internal/config"
	"github.com/aaka8h/face-attend/internal/ledger"
	"github.com/aaka8h/face-attend/internal/report"
	"github.com/aaka8h/face-attend/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "View an attendance report",
	Long: `Render the attendance report for today, or for another date with --date.
The report lists time, id, name and confidence for every event of the day,
plus the present/registered ratio.`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().String("date", "", "Report date as YYYY-MM-DD (defaults to today)")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return reportFlow(cfg, mustGetString(cmd, "date"), cmd.OutOrStdout())
}

func reportFlow(cfg *config.Config, dateKey string, out io.Writer) error {
	led, err := ledger.New(cfg.Storage.AttendanceDir, nil)
	if err != nil {
		return err
	}

	if dateKey == "" {
		dateKey = led.TodayKey()
	} else if _, err := time.Parse("2006-01-02", dateKey); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", dateKey)
	}

	events, err := led.ReadDate(dateKey)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Storage.UsersFile())
	if err != nil {
		return err
	}

	report.Render(out, dateKey, events, st.Count())
	return nil
}
