package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/lol-wrapped/internal/cache"
	"github.com/pable/lol-wrapped/internal/report"
	"github.com/pable/lol-wrapped/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

// shellSession holds what the REPL keeps open between commands.
type shellSession struct {
	ctx   context.Context
	db    *storage.DB
	cache *cache.Cache
}

func runShell(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	c, closeCache, err := openCache(ctx, db)
	if err != nil {
		return err
	}
	defer closeCache()

	sess := &shellSession{ctx: ctx, db: db, cache: c}

	cGreeting.Println("lolwrapped shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("lolwrapped")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		name, args := tokens[0], tokens[1:]

		switch name {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "list":
			sess.list(args)
		case "show":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: show <match-id-prefix>")
				continue
			}
			sess.show(args[0])
		case "wrapped":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: wrapped <Name#TAG|puuid> [slide]")
				continue
			}
			sess.wrapped(args)
		case "slides":
			fmt.Println(strings.Join(report.SlideNames(), ", "))
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", name)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list", "list stored players"},
		{"list <player>", "list a player's stored matches"},
		{"show <match-id-prefix>", "show a match scoreboard"},
		{"wrapped <player>", "show the full Wrapped slideshow"},
		{"wrapped <player> <slide>", "show a single slide"},
		{"slides", "list slide names"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-38s", r.cmd)
		fmt.Println(r.desc)
	}
	cMuted.Println("\n  <player> is Name#TAG or a PUUID.")
	fmt.Println()
}

// joinPlayer rebuilds a Riot ID that contained spaces from the tokens
// before an optional trailing slide name.
func joinPlayer(args []string) (player, slide string) {
	if len(args) > 1 {
		if _, ok := report.FindSlide(args[len(args)-1]); ok {
			return strings.Join(args[:len(args)-1], " "), args[len(args)-1]
		}
	}
	return strings.Join(args, " "), ""
}

func (s *shellSession) list(args []string) {
	if len(args) == 0 {
		if err := listAccounts(s.db); err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
		}
		return
	}
	player, _ := joinPlayer(args)
	acc, err := resolvePlayer(s.ctx, s.db, player)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if err := listPlayerMatches(s.db, acc); err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
	}
}

func (s *shellSession) show(prefix string) {
	m, err := s.db.GetMatchByPrefix(prefix)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if m == nil {
		fmt.Fprintf(os.Stderr, "no match found with prefix %q\n", prefix)
		return
	}
	report.PrintMatchSummary(os.Stdout, m)
	report.PrintScoreboard(os.Stdout, m, "")
}

func (s *shellSession) wrapped(args []string) {
	player, slideName := joinPlayer(args)
	acc, err := resolvePlayer(s.ctx, s.db, player)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	stats, err := loadWrapped(s.ctx, s.db, s.cache, acc.PUUID, 365, false)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if slideName != "" {
		sl, _ := report.FindSlide(slideName)
		report.PrintSlide(os.Stdout, sl, stats)
		return
	}
	report.PrintSlideshow(os.Stdout, stats)
}
