package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the database",
	Long: `Run an arbitrary SQL query against the database and print results as a table.

Schema overview:
  accounts(puuid, game_name, tag_line, region, summoner_level, profile_icon_id, updated_at)
  matches(match_id, game_creation, game_duration, queue_id, game_version, payload)
  match_participants(match_id, slot, puuid, name, champion_name, team_id, position,
    win, kills, deaths, assists, cs, gold, damage, vision_score)
  wrapped_cache(cache_key, payload, updated_at)
  fetch_runs(run_id, puuid, region, started_at, finished_at, ids_found,
    matches_fetched, matches_known, matches_failed, status, error)

Note: game_creation is epoch milliseconds; payload columns are zstd-compressed.
  lolwrapped sql "SELECT champion_name, COUNT(*) FROM match_participants GROUP BY 1 ORDER BY 2 DESC LIMIT 10"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}

	table := newTable()

	colsAny := make([]any, len(cols))
	for i, c := range cols {
		colsAny[i] = c
	}
	table.Header(colsAny...)

	for _, row := range rows {
		rowAny := make([]any, len(row))
		for i, v := range row {
			rowAny[i] = v
		}
		table.Append(rowAny...)
	}
	table.Render()
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}

