package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/lol-wrapped/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear cached Wrapped summaries",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info <Name#TAG|puuid>",
	Short: "Show the cached entry header for a player",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheInfo,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear <Name#TAG|puuid>",
	Short: "Delete the cached entry for a player",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	acc, err := resolvePlayer(ctx, db, args[0])
	if err != nil {
		return err
	}
	c, closeCache, err := openCache(ctx, db)
	if err != nil {
		return err
	}
	defer closeCache()

	e, err := c.Load(ctx, acc.PUUID)
	switch {
	case errors.Is(err, cache.ErrMiss):
		fmt.Printf("No cached summary for %s.\n", displayName(acc))
		return nil
	case errors.Is(err, cache.ErrStale):
		fmt.Printf("Cached summary for %s was from an older version and has been removed.\n", displayName(acc))
		return nil
	case err != nil:
		return fmt.Errorf("load cache: %w", err)
	}

	fmt.Printf("Key       : %s\n", cache.Key(e.PUUID))
	fmt.Printf("Version   : %s\n", e.Version)
	fmt.Printf("Saved     : %s\n", time.UnixMilli(e.Timestamp).Format("2006-01-02 15:04:05"))
	switch {
	case e.WindowDays == nil:
		fmt.Printf("Window    : unknown\n")
	case *e.WindowDays == 0:
		fmt.Printf("Window    : all stored matches\n")
	default:
		fmt.Printf("Window    : last %d days\n", *e.WindowDays)
	}
	fmt.Printf("Games     : %d\n", e.Stats.TotalGames)
	if len(e.Matches) == 0 {
		fmt.Printf("Matches   : not stored (stats only)\n")
	} else {
		fmt.Printf("Matches   : %d\n", len(e.Matches))
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	acc, err := resolvePlayer(ctx, db, args[0])
	if err != nil {
		return err
	}
	c, closeCache, err := openCache(ctx, db)
	if err != nil {
		return err
	}
	defer closeCache()

	if err := c.Clear(ctx, acc.PUUID); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	fmt.Printf("Cleared %s\n", cache.Key(acc.PUUID))
	return nil
}
