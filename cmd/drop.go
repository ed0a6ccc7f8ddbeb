package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/lol-wrapped/internal/storage"
)

var (
	dropForce     bool
	dropCacheOnly bool
)

var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the match database or just its cached Wrapped summaries",
	Long: `Delete the local store. Without flags it lists what would be lost:
tracked Riot accounts, downloaded match payloads, fetch history and cached
Wrapped summaries. Matches older than the fetch window cannot be downloaded
again once dropped.

--cache-only keeps accounts and matches and only clears the cached
summaries, so the next 'wrapped' recomputes from stored matches.`,
	Args: cobra.NoArgs,
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
	dropCmd.Flags().BoolVar(&dropCacheOnly, "cache-only", false, "clear cached Wrapped summaries and keep matches")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
		return nil
	}
	db, err := openDB()
	if err != nil {
		return err
	}

	if !dropForce {
		defer db.Close()
		ov, err := db.GetDBOverview()
		if err != nil {
			return fmt.Errorf("read database: %w", err)
		}
		printDropPlan(os.Stderr, ov, dropCacheOnly)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}

	if dropCacheOnly {
		defer db.Close()
		n, err := db.ClearCacheEntries()
		if err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Cleared %d cached Wrapped summaries from %s\n", n, dbPath)
		if redisURL != "" {
			fmt.Fprintln(os.Stdout, "Entries in Redis are untouched; use 'lolwrapped cache clear <player>'.")
		}
		return nil
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	if err := os.Remove(dbPath); err != nil {
		return fmt.Errorf("remove database: %w", err)
	}
	// WAL side files; absent when the database was closed cleanly.
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(dbPath + suffix)
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", dbPath)
	return nil
}

func printDropPlan(w io.Writer, ov storage.Overview, cacheOnly bool) {
	if cacheOnly {
		fmt.Fprintf(w, "This will clear %d cached Wrapped summaries in %s\n", ov.CacheEntries, dbPath)
		return
	}
	fmt.Fprintf(w, "This will permanently delete: %s\n", dbPath)
	fmt.Fprintf(w, "  accounts        : %d\n", ov.Accounts)
	fmt.Fprintf(w, "  matches         : %d\n", ov.Matches)
	fmt.Fprintf(w, "  fetch runs      : %d\n", ov.FetchRuns)
	fmt.Fprintf(w, "  cached summaries: %d\n", ov.CacheEntries)
}
