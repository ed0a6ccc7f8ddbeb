package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/lol-wrapped/internal/model"
	"github.com/pable/lol-wrapped/internal/storage"
)

var (
	exportOut        string
	exportDays       int
	exportRoster     string
	exportMatchesDir string
)

// rosterFile is the schema for --roster JSON files.
type rosterFile struct {
	Team    string   `json:"team"`
	Players []string `json:"players"` // Riot IDs or PUUIDs
}

// rosterExport is the JSON document written for a roster.
type rosterExport struct {
	Team        string         `json:"team"`
	GeneratedAt string         `json:"generated_at"`
	WindowDays  int            `json:"window_days"`
	Players     []rosterPlayer `json:"players"`
}

type rosterPlayer struct {
	PUUID     string  `json:"puuid"`
	Name      string  `json:"name"`
	Games     int     `json:"games"`
	Wins      int     `json:"wins"`
	WinPct    float64 `json:"win_pct"`
	KDA       float64 `json:"kda"`
	AvgDamage float64 `json:"avg_damage"`
}

var exportCmd = &cobra.Command{
	Use:   "export [Name#TAG|puuid]",
	Short: "Export a Wrapped cache entry, raw matches, or roster totals as JSON",
	Long: `With a player argument, writes the player's versioned Wrapped cache entry
(stats plus match history) so it can be loaded elsewhere with 'import'.
The entry is computed first if it is not cached.

With --matches-dir, also writes every stored match for the player as raw
match-v5 JSON, one file per match.

With --roster, writes summed stats for a group of players instead:

  {"team": "Flex 5", "players": ["Name#TAG", "<puuid>", ...]}

Examples:
  lolwrapped export "Caps#EUW" --out caps.json
  lolwrapped export "Caps#EUW" --matches-dir ./caps-matches
  lolwrapped export --roster flex.json --days 90 --out flex-stats.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default stdout)")
	exportCmd.Flags().IntVar(&exportDays, "days", 365, "window in days (0 = all)")
	exportCmd.Flags().StringVar(&exportRoster, "roster", "", "path to a roster JSON file")
	exportCmd.Flags().StringVar(&exportMatchesDir, "matches-dir", "", "also write raw match JSON files to this directory")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportRoster == "" && len(args) == 0 {
		return fmt.Errorf("specify a player or --roster")
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	w := io.Writer(os.Stdout)
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		defer f.Close()
		w = f
	}

	if exportRoster != "" {
		return exportRosterTotals(cmd, db, w)
	}

	ctx := cmd.Context()
	acc, err := resolvePlayer(ctx, db, args[0])
	if err != nil {
		return err
	}
	c, closeCache, err := openCache(ctx, db)
	if err != nil {
		return err
	}
	defer closeCache()

	if _, err := loadWrapped(ctx, db, c, acc.PUUID, exportDays, false); err != nil {
		return err
	}
	e, err := c.Export(ctx, acc.PUUID, exportDays, w)
	if err != nil {
		return fmt.Errorf("export cache entry: %w", err)
	}
	if exportOut != "" {
		fmt.Fprintf(os.Stderr, "Wrote %s (%d games, %d matches, version %s)\n",
			exportOut, e.Stats.TotalGames, len(e.Matches), e.Version)
	}

	if exportMatchesDir != "" {
		n, err := exportRawMatches(db, acc.PUUID, exportMatchesDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %d match files to %s\n", n, exportMatchesDir)
	}
	return nil
}

func exportRosterTotals(cmd *cobra.Command, db *storage.DB, w io.Writer) error {
	data, err := os.ReadFile(exportRoster)
	if err != nil {
		return fmt.Errorf("read roster: %w", err)
	}
	var rf rosterFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return fmt.Errorf("parse roster: %w", err)
	}
	if len(rf.Players) == 0 {
		return fmt.Errorf("roster %s lists no players", exportRoster)
	}

	puuids := make([]string, 0, len(rf.Players))
	for _, p := range rf.Players {
		acc, err := resolvePlayer(cmd.Context(), db, p)
		if err != nil {
			return err
		}
		puuids = append(puuids, acc.PUUID)
	}

	totals, err := db.RosterTotals(puuids, windowStart(exportDays))
	if err != nil {
		return fmt.Errorf("roster totals: %w", err)
	}
	out := rosterExport{
		Team:        rf.Team,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		WindowDays:  exportDays,
		Players:     make([]rosterPlayer, 0, len(totals)),
	}
	for _, t := range totals {
		out.Players = append(out.Players, rosterPlayer{
			PUUID:     t.PUUID,
			Name:      t.Name,
			Games:     t.Games,
			Wins:      t.Wins,
			WinPct:    round2(pct(t.Wins, t.Games)),
			KDA:       round2(model.KDARatio(t.Kills, t.Deaths, t.Assists)),
			AvgDamage: round2(float64(t.Damage) / float64(max(t.Games, 1))),
		})
	}
	if missing := len(puuids) - len(totals); missing > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d roster player(s) have no stored matches in the window\n", missing)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// exportRawMatches writes each stored match for puuid to dir/<match_id>.json.
func exportRawMatches(db *storage.DB, puuid, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("create %s: %w", dir, err)
	}
	refs, err := db.ListMatches(puuid, 0)
	if err != nil {
		return 0, fmt.Errorf("list matches: %w", err)
	}
	for _, r := range refs {
		raw, err := db.GetMatchRaw(r.MatchID)
		if err != nil {
			return 0, fmt.Errorf("read match %s: %w", r.MatchID, err)
		}
		if err := os.WriteFile(filepath.Join(dir, r.MatchID+".json"), raw, 0644); err != nil {
			return 0, fmt.Errorf("write match %s: %w", r.MatchID, err)
		}
	}
	return len(refs), nil
}
