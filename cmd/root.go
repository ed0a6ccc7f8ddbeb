package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/lol-wrapped/internal/cache"
	"github.com/pable/lol-wrapped/internal/config"
	"github.com/pable/lol-wrapped/internal/logging"
	"github.com/pable/lol-wrapped/internal/model"
	"github.com/pable/lol-wrapped/internal/riot"
	"github.com/pable/lol-wrapped/internal/storage"
)

var (
	dbPath     string
	regionName string
	logLevel   string
	redisURL   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "lolwrapped",
	Short: "League of Legends year-in-review",
	Long: `Fetch a player's League of Legends match history from the Riot API,
store it locally, and render a "Wrapped" summary of their year.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dbPath, "db", config.DefaultDBPath(), "path to SQLite database")
	pf.StringVar(&regionName, "region", "EUW", "Riot region ("+strings.Join(riot.RegionNames(), ", ")+")")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&redisURL, "redis", "", "redis URL for the Wrapped cache (default: store it in the database)")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(wrappedCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(dropCmd)
}

// loadConfig merges .env, the config file, env vars, and flags, then applies
// the result to the package-level flag variables.
func loadConfig(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	v := config.New()
	pf := cmd.Root().PersistentFlags()
	for key, flag := range map[string]string{
		"db":        "db",
		"region":    "region",
		"log_level": "log-level",
		"redis_url": "redis",
	} {
		if err := v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	c, err := config.Load(v)
	if err != nil {
		return err
	}
	if err := logging.SetLevel(c.LogLevel); err != nil {
		return err
	}
	cfg = c
	dbPath = c.DBPath
	regionName = c.Region
	redisURL = c.RedisURL
	return nil
}

func openDB() (*storage.DB, error) {
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

func newRiotClient() (*riot.Client, error) {
	key, err := cfg.RequireRiotKey()
	if err != nil {
		return nil, err
	}
	region, err := riot.LookupRegion(regionName)
	if err != nil {
		return nil, err
	}
	return riot.NewClient(key, region), nil
}

// openCache returns the Wrapped cache backed by Redis when configured, else
// by the database. The returned func releases the backend.
func openCache(ctx context.Context, db *storage.DB) (*cache.Cache, func(), error) {
	if redisURL == "" {
		return cache.New(cache.NewSQLStore(db)), func() {}, nil
	}
	rs, err := cache.NewRedisStore(ctx, redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return cache.New(rs), func() { rs.Close() }, nil
}

// resolvePlayer turns "Name#TAG" or a PUUID into an account. Riot IDs are
// looked up locally first and then through the API, which also stores them.
func resolvePlayer(ctx context.Context, db *storage.DB, arg string) (*model.Account, error) {
	if !strings.Contains(arg, "#") {
		acc, err := db.GetAccount(arg)
		if err != nil {
			return nil, fmt.Errorf("get account: %w", err)
		}
		if acc == nil {
			acc = &model.Account{PUUID: arg}
		}
		return acc, nil
	}

	name, tag, err := riot.ParseRiotID(arg)
	if err != nil {
		return nil, err
	}
	acc, err := db.FindAccountByRiotID(name, tag)
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if acc != nil {
		return acc, nil
	}

	client, err := newRiotClient()
	if err != nil {
		return nil, fmt.Errorf("%s is not stored locally: %w", arg, err)
	}
	return lookupAccount(ctx, db, client, name, tag)
}

// lookupAccount resolves a Riot ID through the API and upserts it.
func lookupAccount(ctx context.Context, db *storage.DB, client *riot.Client, name, tag string) (*model.Account, error) {
	ar, err := client.GetAccountByRiotID(ctx, name, tag)
	if err != nil {
		return nil, fmt.Errorf("lookup %s#%s: %w", name, tag, err)
	}
	acc := model.Account{
		PUUID:     ar.PUUID,
		GameName:  ar.GameName,
		TagLine:   ar.TagLine,
		Region:    client.Region().Name,
		UpdatedAt: time.Now().UnixMilli(),
	}
	if sr, err := client.GetSummonerByPUUID(ctx, ar.PUUID); err != nil {
		logging.Logger().Warnf("summoner lookup for %s: %v", acc.RiotID(), err)
	} else {
		acc.SummonerLevel = sr.SummonerLevel
		acc.ProfileIconID = sr.ProfileIconID
	}
	if err := db.UpsertAccount(acc); err != nil {
		return nil, fmt.Errorf("store account: %w", err)
	}
	return &acc, nil
}

// displayName prefers the Riot ID and falls back to the PUUID.
func displayName(a *model.Account) string {
	if a.GameName == "" {
		return a.PUUID
	}
	return a.RiotID()
}

// windowStart returns the epoch-millis cutoff for the last days days, or 0
// when days <= 0.
func windowStart(days int) int64 {
	if days <= 0 {
		return 0
	}
	return time.Now().Add(-time.Duration(days) * 24 * time.Hour).UnixMilli()
}
