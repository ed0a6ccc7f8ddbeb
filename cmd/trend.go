package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/lol-wrapped/internal/aggregator"
	"github.com/pable/lol-wrapped/internal/report"
)

var trendDays int

var trendCmd = &cobra.Command{
	Use:   "trend <Name#TAG|puuid>",
	Short: "Month-by-month performance trend for a player",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrend,
}

func init() {
	trendCmd.Flags().IntVar(&trendDays, "days", 365, "only use matches from the last N days (0 = all)")
}

func runTrend(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	acc, err := resolvePlayer(cmd.Context(), db, args[0])
	if err != nil {
		return err
	}
	matches, err := db.MatchesForPlayer(acc.PUUID, windowStart(trendDays))
	if err != nil {
		return fmt.Errorf("load matches: %w", err)
	}
	if len(matches) == 0 {
		fmt.Println("no matches found")
		return nil
	}

	fmt.Printf("\nTrend for %s\n\n", displayName(acc))
	report.PrintTrendTable(os.Stdout, aggregator.MonthlyTrend(matches, acc.PUUID, time.Local))
	return nil
}
