package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pable/lol-wrapped/internal/model"
)

var summaryPlayer string

// summaryCmd is the cobra command for displaying a high-level database overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display aggregate statistics about everything stored in the database:
match count, date range, queue breakdown, tracked players, and recent
fetch runs. With --player, also list that player's champion totals.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryPlayer, "player", "", "also show champion totals for this player (Name#TAG or PUUID)")
}

func newTable() *tablewriter.Table {
	return tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ov, err := db.GetDBOverview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	if ov.Matches == 0 {
		fmt.Fprintln(os.Stdout, "No matches stored yet. Run 'lolwrapped fetch <Name#TAG>' to add some.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n=== Database Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Matches stored : %d\n", ov.Matches)
	fmt.Fprintf(os.Stdout, "  Date range     : %s → %s\n", formatDate(ov.EarliestMatch), formatDate(ov.LatestMatch))
	fmt.Fprintf(os.Stdout, "  Players seen   : %d\n", ov.UniquePlayers)
	fmt.Fprintf(os.Stdout, "  Tracked        : %d\n", ov.Accounts)
	fmt.Fprintf(os.Stdout, "  Fetch runs     : %d\n", ov.FetchRuns)
	fmt.Fprintf(os.Stdout, "  Cached Wrapped : %d\n", ov.CacheEntries)

	queues, err := db.QueueBreakdown()
	if err != nil {
		return fmt.Errorf("get queues: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\n--- Queues ---\n\n")
	qt := newTable()
	qt.Header("QUEUE", "ID", "MATCHES")
	for _, q := range queues {
		qt.Append(model.QueueName(q.QueueID), fmt.Sprintf("%d", q.QueueID), fmt.Sprintf("%d", q.Matches))
	}
	qt.Render()

	accounts, err := db.ListAccounts()
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	puuids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		puuids = append(puuids, a.PUUID)
	}
	totals, err := db.RosterTotals(puuids, 0)
	if err != nil {
		return fmt.Errorf("get player totals: %w", err)
	}
	if len(totals) > 0 {
		fmt.Fprintf(os.Stdout, "\n--- Tracked Players ---\n\n")
		pt := newTable()
		pt.Header("NAME", "MATCHES", "WIN%", "AVG KDA", "AVG DMG")
		for _, p := range totals {
			pt.Append(
				p.Name,
				fmt.Sprintf("%d", p.Games),
				fmt.Sprintf("%.0f%%", pct(p.Wins, p.Games)),
				fmt.Sprintf("%.2f", model.KDARatio(p.Kills, p.Deaths, p.Assists)),
				fmt.Sprintf("%.0f", float64(p.Damage)/float64(max(p.Games, 1))),
			)
		}
		pt.Render()
	}

	if summaryPlayer != "" {
		acc, err := resolvePlayer(cmd.Context(), db, summaryPlayer)
		if err != nil {
			return err
		}
		champs, err := db.ChampionTotals(acc.PUUID, 0, 15)
		if err != nil {
			return fmt.Errorf("get champion totals: %w", err)
		}
		fmt.Fprintf(os.Stdout, "\n--- Champions: %s ---\n\n", displayName(acc))
		ct := newTable()
		ct.Header("CHAMPION", "GAMES", "WIN%", "K", "D", "A", "KDA")
		for _, c := range champs {
			ct.Append(
				c.Champion,
				fmt.Sprintf("%d", c.Games),
				fmt.Sprintf("%.0f%%", pct(c.Wins, c.Games)),
				fmt.Sprintf("%d", c.Kills),
				fmt.Sprintf("%d", c.Deaths),
				fmt.Sprintf("%d", c.Assists),
				fmt.Sprintf("%.2f", model.KDARatio(c.Kills, c.Deaths, c.Assists)),
			)
		}
		ct.Render()
	}

	runs, err := db.ListFetchRuns("", 5)
	if err != nil {
		return fmt.Errorf("list fetch runs: %w", err)
	}
	if len(runs) > 0 {
		fmt.Fprintf(os.Stdout, "\n--- Recent Fetch Runs ---\n\n")
		rt := newTable()
		rt.Header("RUN", "STARTED", "REGION", "IDS", "NEW", "KNOWN", "FAILED", "STATUS")
		for _, r := range runs {
			rt.Append(
				r.RunID[:8],
				time.UnixMilli(r.StartedAt).Format("2006-01-02 15:04"),
				r.Region,
				fmt.Sprintf("%d", r.IDsFound),
				fmt.Sprintf("%d", r.MatchesFetched),
				fmt.Sprintf("%d", r.MatchesKnown),
				fmt.Sprintf("%d", r.MatchesFailed),
				r.Status,
			)
		}
		rt.Render()
	}
	return nil
}

func formatDate(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Format("2006-01-02")
}

func pct(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return 100 * float64(n) / float64(of)
}
