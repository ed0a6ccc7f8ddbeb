package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/lol-wrapped/internal/report"
)

var showPlayer string

var showCmd = &cobra.Command{
	Use:   "show <match-id-prefix>",
	Short: "Show a stored match scoreboard by match id prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showPlayer, "player", "", "highlight player (Name#TAG or PUUID)")
}

func runShow(cmd *cobra.Command, args []string) error {
	prefix := args[0]

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := db.GetMatchByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("query match: %w", err)
	}
	if m == nil {
		fmt.Fprintf(os.Stderr, "No match found with id prefix %q\n", prefix)
		return nil
	}

	var focus string
	if showPlayer != "" {
		acc, err := resolvePlayer(cmd.Context(), db, showPlayer)
		if err != nil {
			return err
		}
		focus = acc.PUUID
	}

	report.PrintMatchSummary(os.Stdout, m)
	report.PrintScoreboard(os.Stdout, m, focus)
	return nil
}
