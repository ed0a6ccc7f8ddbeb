package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"

	"github.com/pable/lol-wrapped/internal/model"
)

const analyzeSystemPrompt = `You are a League of Legends performance analyst. You are given a player's
aggregated season stats from a match-history tool and a question from the player.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise and actionable. Focus on what the player can actually change.
- Avoid generic League advice unless it directly explains a pattern in the data.

Metrics glossary:
- KDA: (kills + assists) / max(1, deaths). Around 3 is solid for most roles.
- Winrate: wins / games * 100.
- CS: lane minions + neutral monsters. Per-game averages depend heavily on role.
- Vision score: Riot's composite of wards placed, cleared, and vision denied.
- Objectives: team totals in the player's games, not personal takedowns.
- best_champ / worst_champ: highest / lowest winrate among champions with 3+ games.
- best_item / worst_item: highest / lowest winrate among items built 5+ times.
- nemesis: the enemy who beat the player most often; stomped: the enemy the player beat most.
- activity.hourly: games started per local hour (0-23); activity.daily: per weekday, 0 = Sunday.`

var (
	analyzeModel  string
	analyzeAPIKey string
	analyzeDays   int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <Name#TAG|puuid> <question>",
	Short: "AI-powered grounded analysis of a player's Wrapped stats (requires ANTHROPIC_API_KEY)",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "claude-haiku-4-5-20251001", "Anthropic model to use")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
	analyzeCmd.Flags().IntVar(&analyzeDays, "days", 365, "only use matches from the last N days (0 = all)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	question := args[1]

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

	stats, err := loadWrapped(ctx, db, c, acc.PUUID, analyzeDays, false)
	if err != nil {
		return err
	}

	contextJSON, err := buildWrappedContext(displayName(acc), stats)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}

	key := analyzeAPIKey
	if key == "" {
		key = cfg.AnthropicAPIKey
	}
	return callAnthropic(ctx, key, analyzeModel, contextJSON, question)
}

// buildWrappedContext serialises the stats into compact JSON, keeping only
// the top entries of the large per-champion and per-item maps.
func buildWrappedContext(player string, s *model.AggregateStats) (string, error) {
	type champEntry struct {
		Name   string  `json:"name"`
		Games  int     `json:"games"`
		WinPct float64 `json:"win_pct"`
		KDA    float64 `json:"kda"`
		AvgCS  float64 `json:"avg_cs"`
		AvgDmg float64 `json:"avg_damage"`
	}
	champs := make([]champEntry, 0, len(s.Champions))
	for _, c := range s.Champions {
		champs = append(champs, champEntry{
			Name:   c.Name,
			Games:  c.Games,
			WinPct: round2(c.Winrate()),
			KDA:    round2(c.KDA()),
			AvgCS:  round2(float64(c.CS) / float64(max(c.Games, 1))),
			AvgDmg: round2(float64(c.DamageDealt) / float64(max(c.Games, 1))),
		})
	}
	sort.Slice(champs, func(i, j int) bool {
		if champs[i].Games != champs[j].Games {
			return champs[i].Games > champs[j].Games
		}
		return champs[i].Name < champs[j].Name
	})
	if len(champs) > 15 {
		champs = champs[:15]
	}

	modes := make(map[string]interface{}, len(s.GameModes))
	for _, g := range s.GameModes {
		modes[g.Name] = map[string]interface{}{
			"games":   g.Games,
			"win_pct": round2(pct(g.Wins, g.Games)),
		}
	}

	doc := map[string]interface{}{
		"subject": "player",
		"player":  player,
		"overview": map[string]interface{}{
			"games":            s.TotalGames,
			"wins":             s.Wins,
			"losses":           s.Losses,
			"win_pct":          round2(s.Winrate),
			"kda":              round2(s.KDA),
			"kills":            s.TotalKills,
			"deaths":           s.TotalDeaths,
			"assists":          s.TotalAssists,
			"avg_game_minutes": round2(s.AverageGameDuration / 60),
			"avg_cs":           round2(s.AverageCS),
			"avg_gold":         round2(s.AverageGold),
			"avg_vision":       round2(s.AverageVisionScore),
			"avg_seconds_dead": round2(s.AverageTimeSpentDead),
			"control_wards":    s.ControlWardsPlaced,
		},
		"combat":      s.Combat,
		"multikills":  s.TotalMultiKills,
		"objectives":  s.Objectives,
		"streaks":     s.Streaks,
		"sides":       s.SideSelection,
		"pings":       s.Pings,
		"activity":    s.Activity,
		"modes":       modes,
		"champions":   champs,
		"best_champ":  s.Best.BestChamp,
		"worst_champ": s.Best.WorstChamp,
		"best_item":   s.Best.BestItem,
		"worst_item":  s.Best.WorstItem,
		"friends":     s.Social.Friends,
		"nemesis":     s.Nemesis.WorstEnemy,
		"stomped":     s.Nemesis.StompedEnemy,
	}

	b, err := json.Marshal(doc)
	return string(b), err
}

// round2 rounds a float64 to 2 decimal places.
func round2(v float64) float64 {
	// Use integer arithmetic to avoid floating-point drift.
	return float64(int(v*100+0.5)) / 100
}

// callAnthropic streams a response from the Anthropic API and prints it to stdout.
func callAnthropic(ctx context.Context, apiKey, modelID, dataJSON, question string) error {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)

	fmt.Fprintln(os.Stdout, "\n─── AI Analysis ─────────────────────────────────────")

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: analyzeSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				fmt.Fprint(os.Stdout, delta.Delta.AsTextDelta().Text)
			}
		}
	}
	fmt.Fprintln(os.Stdout, "\n─────────────────────────────────────────────────────")

	if err := stream.Err(); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed: check your API key")
		}
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}
