package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/lol-wrapped/internal/cache"
	"github.com/pable/lol-wrapped/internal/fetch"
	"github.com/pable/lol-wrapped/internal/riot"
)

// fetch command flags.
var (
	// fetchMax caps how many match ids are listed.
	fetchMax int
	// fetchDays is the history window; older matches end the run.
	fetchDays int
	// fetchBatch is the number of match details downloaded concurrently.
	fetchBatch int
	// fetchQueue restricts the id listing to one queue (0 = all).
	fetchQueue int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <Name#TAG>",
	Short: "Download a player's recent matches from the Riot API",
	Long: `Resolves a Riot ID, lists the player's match ids, and downloads every
match not already stored. Downloads run in small concurrent batches and stop
at the first batch that reaches past the history window.

The Riot API key is read from RIOT_API_KEY, LOLWRAPPED_RIOT_API_KEY, or
~/.lolwrapped/riot_api_key.

Examples:
  lolwrapped fetch "Faker#KR1" --region KR
  lolwrapped fetch "Caps#EUW" --days 90 --queue 420`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().IntVar(&fetchMax, "max", fetch.DefaultMaxIDs, "maximum number of match ids to list")
	fetchCmd.Flags().IntVar(&fetchDays, "days", 365, "history window in days")
	fetchCmd.Flags().IntVar(&fetchBatch, "batch", fetch.DefaultBatchSize, "concurrent match downloads per batch")
	fetchCmd.Flags().IntVar(&fetchQueue, "queue", 0, "only list matches from this queue id (e.g. 420)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name, tag, err := riot.ParseRiotID(args[0])
	if err != nil {
		return err
	}

	client, err := newRiotClient()
	if err != nil {
		return err
	}
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	acc, err := lookupAccount(ctx, db, client, name, tag)
	if err != nil {
		return err
	}
	fmt.Printf("Player: %s  level=%d  region=%s\n", acc.RiotID(), acc.SummonerLevel, acc.Region)

	fc := fetch.DefaultConfig()
	fc.MaxIDs = fetchMax
	fc.BatchSize = fetchBatch
	fc.Queue = fetchQueue
	fc.Window = time.Duration(fetchDays) * 24 * time.Hour

	f := fetch.New(client, db, fc, fetch.WithProgress(func(p fetch.Progress) {
		fmt.Fprintf(os.Stderr, "\r[%3d%%] %-60s", p.Percent, p.Status)
	}))
	res, err := f.Run(ctx, acc.PUUID, acc.Region)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	fmt.Printf("Run %s: %d ids, %d new, %d already stored, %d failed\n",
		res.RunID[:8], res.IDsFound, res.Fetched, res.Known, res.Failed)
	if res.ReachedWindow {
		fmt.Printf("Stopped at matches older than %d days.\n", fetchDays)
	}

	if res.Fetched > 0 {
		c, closeCache, err := openCache(ctx, db)
		if err != nil {
			return err
		}
		defer closeCache()
		if err := c.Clear(ctx, acc.PUUID); err != nil {
			return fmt.Errorf("invalidate %s: %w", cache.Key(acc.PUUID), err)
		}
	}
	fmt.Printf("\nRun 'lolwrapped wrapped \"%s\"' to see the summary.\n", acc.RiotID())
	return nil
}
