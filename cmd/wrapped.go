package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/lol-wrapped/internal/aggregator"
	"github.com/pable/lol-wrapped/internal/cache"
	"github.com/pable/lol-wrapped/internal/logging"
	"github.com/pable/lol-wrapped/internal/model"
	"github.com/pable/lol-wrapped/internal/report"
	"github.com/pable/lol-wrapped/internal/storage"
)

var (
	wrappedRefresh bool
	wrappedSlide   string
	wrappedJSON    bool
	wrappedDays    int
)

var wrappedCmd = &cobra.Command{
	Use:   "wrapped <Name#TAG|puuid>",
	Short: "Show a player's year-in-review from stored matches",
	Long: `Aggregates the player's stored matches into a Wrapped summary and renders
it as a slideshow. The result is cached per player; use --refresh after
fetching to recompute it.

Slides: ` + strings.Join(report.SlideNames(), ", "),
	Args: cobra.ExactArgs(1),
	RunE: runWrapped,
}

func init() {
	wrappedCmd.Flags().BoolVar(&wrappedRefresh, "refresh", false, "ignore the cached summary and recompute")
	wrappedCmd.Flags().StringVar(&wrappedSlide, "slide", "", "render only this slide")
	wrappedCmd.Flags().BoolVar(&wrappedJSON, "json", false, "print the raw stats as JSON")
	wrappedCmd.Flags().IntVar(&wrappedDays, "days", 365, "only aggregate matches from the last N days (0 = all)")
}

func runWrapped(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var slide report.Slide
	if wrappedSlide != "" {
		s, ok := report.FindSlide(wrappedSlide)
		if !ok {
			return fmt.Errorf("unknown slide %q (valid: %s)", wrappedSlide, strings.Join(report.SlideNames(), ", "))
		}
		slide = s
	}

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

	stats, err := loadWrapped(ctx, db, c, acc.PUUID, wrappedDays, wrappedRefresh)
	if err != nil {
		return err
	}

	if wrappedJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Fprintf(os.Stdout, "\nWrapped for %s\n", displayName(acc))
	if wrappedSlide != "" {
		report.PrintSlide(os.Stdout, slide, stats)
		return nil
	}
	report.PrintSlideshow(os.Stdout, stats)
	return nil
}

// loadWrapped returns cached stats for puuid over the last days days, or
// aggregates stored matches and caches the result. A stale or missing entry,
// or one computed over another window, triggers a recompute.
func loadWrapped(ctx context.Context, db *storage.DB, c *cache.Cache, puuid string, days int, refresh bool) (*model.AggregateStats, error) {
	log := logging.Logger()
	if !refresh {
		e, err := c.LoadWindow(ctx, puuid, days)
		switch {
		case err == nil:
			log.Debugf("cache hit for %s (version %s)", puuid, e.Version)
			return &e.Stats, nil
		case errors.Is(err, cache.ErrStale):
			log.Infof("cached summary for %s is from an older version, recomputing", puuid)
		case errors.Is(err, cache.ErrMiss):
			log.Debugf("cache miss for %s: %v", puuid, err)
		default:
			return nil, fmt.Errorf("load cache: %w", err)
		}
	}

	matches, err := db.MatchesForPlayer(puuid, windowStart(days))
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no stored matches for %s: run 'lolwrapped fetch' first", puuid)
	}

	stats := aggregator.ProcessMatches(matches, puuid)
	statsOnly, err := c.Save(ctx, puuid, days, stats, matches)
	if err != nil {
		log.Warnf("cache save for %s failed: %v", puuid, err)
	} else if statsOnly {
		log.Warnf("cached stats for %s without match history (entry too large)", puuid)
	}
	return &stats, nil
}
