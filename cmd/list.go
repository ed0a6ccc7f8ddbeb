package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/lol-wrapped/internal/model"
	"github.com/pable/lol-wrapped/internal/storage"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list [Name#TAG|puuid]",
	Short: "List stored players, or one player's stored matches",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "maximum matches to list (0 = all)")
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if len(args) == 0 {
		return listAccounts(db)
	}
	acc, err := resolvePlayer(cmd.Context(), db, args[0])
	if err != nil {
		return err
	}
	return listPlayerMatches(db, acc)
}

func listAccounts(db *storage.DB) error {
	accounts, err := db.ListAccounts()
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	if len(accounts) == 0 {
		fmt.Fprintln(os.Stdout, "No players stored yet. Run 'lolwrapped fetch <Name#TAG>' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-24s  %-6s  %5s  %7s  %-10s  %s\n",
		"RIOT ID", "REGION", "LEVEL", "MATCHES", "LAST GAME", "PUUID")
	fmt.Fprintf(os.Stdout, "%-24s  %-6s  %5s  %7s  %-10s  %s\n",
		"────────────────────────", "──────", "─────", "───────", "──────────", "────────────")
	for _, a := range accounts {
		last := "-"
		if a.LastPlayed > 0 {
			last = time.UnixMilli(a.LastPlayed).Format("2006-01-02")
		}
		fmt.Fprintf(os.Stdout, "%-24s  %-6s  %5d  %7d  %-10s  %s\n",
			a.RiotID(), a.Region, a.SummonerLevel, a.Matches, last, shortID(a.PUUID))
	}
	return nil
}

func listPlayerMatches(db *storage.DB, acc *model.Account) error {
	refs, err := db.ListMatches(acc.PUUID, listLimit)
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	if len(refs) == 0 {
		fmt.Fprintf(os.Stdout, "No matches stored for %s.\n", displayName(acc))
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-16s  %-16s  %-14s  %s\n", "MATCH", "DATE", "QUEUE", "LENGTH")
	fmt.Fprintf(os.Stdout, "%-16s  %-16s  %-14s  %s\n",
		"────────────────", "────────────────", "──────────────", "──────")
	for _, r := range refs {
		fmt.Fprintf(os.Stdout, "%-16s  %-16s  %-14s  %2d:%02d\n",
			r.MatchID,
			time.UnixMilli(r.GameCreation).Format("2006-01-02 15:04"),
			model.QueueName(r.QueueID),
			r.GameDuration/60, r.GameDuration%60)
	}
	return nil
}

// shortID truncates a PUUID for display.
func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}
