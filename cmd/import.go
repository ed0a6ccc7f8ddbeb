package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/lol-wrapped/internal/model"
	"github.com/pable/lol-wrapped/internal/storage"
)

var importCmd = &cobra.Command{
	Use:   "import <entry.json|matches-dir>",
	Short: "Import a Wrapped cache entry or a directory of raw match JSON",
	Long: `Given a file, loads a cache entry written by 'export'. Entries from another
version are rejected.

Given a directory, stores every *.json file in it as a raw match-v5
payload. Matches already stored are replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if info.IsDir() {
		return importMatchDir(db, path)
	}

	ctx := cmd.Context()
	c, closeCache, err := openCache(ctx, db)
	if err != nil {
		return err
	}
	defer closeCache()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	e, err := c.Import(ctx, f)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	fmt.Printf("Imported Wrapped entry for %s: %d games (version %s)\n", e.PUUID, e.Stats.TotalGames, e.Version)
	return nil
}

// importMatchDir stores every match JSON file in dir. Files that fail to
// decode are reported and skipped.
func importMatchDir(db *storage.DB, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var stored, skipped int
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var m model.Match
		if err := json.Unmarshal(raw, &m); err != nil || m.Metadata.MatchID == "" {
			fmt.Fprintf(os.Stderr, "  skip %s: not a match payload\n", e.Name())
			skipped++
			continue
		}
		if err := db.InsertMatch(raw, &m); err != nil {
			return fmt.Errorf("store %s: %w", m.Metadata.MatchID, err)
		}
		stored++
	}
	fmt.Printf("Imported %d matches from %s (%d skipped)\n", stored, dir, skipped)
	return nil
}
