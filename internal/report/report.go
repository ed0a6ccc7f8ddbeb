package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/pable/lol-wrapped/internal/model"
)

const noData = "no data"

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	goodColor  = color.New(color.FgGreen)
	badColor   = color.New(color.FgRed)
	dimColor   = color.New(color.Faint)
)

// Slide is one screen of the Wrapped slideshow.
type Slide struct {
	Name   string
	Title  string
	Render func(w io.Writer, s *model.AggregateStats)
}

// Slides returns the slideshow in presentation order.
func Slides() []Slide {
	return []Slide{
		{"intro", "Your Year on the Rift", PrintIntro},
		{"stats", "The Numbers", PrintStats},
		{"combat", "Combat", PrintCombat},
		{"objectives", "Objectives", PrintObjectives},
		{"champions", "Champions", PrintChampions},
		{"items", "Items", PrintItems},
		{"social", "Friends and Foes", PrintSocial},
		{"activity", "When You Play", PrintActivity},
		{"modes", "Game Modes", PrintModes},
		{"summary", "Summary", PrintSummary},
	}
}

// SlideNames lists the valid slide names in order.
func SlideNames() []string {
	var out []string
	for _, s := range Slides() {
		out = append(out, s.Name)
	}
	return out
}

// FindSlide looks a slide up by case-insensitive name.
func FindSlide(name string) (Slide, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range Slides() {
		if s.Name == name {
			return s, true
		}
	}
	return Slide{}, false
}

// PrintSlideshow renders every slide with a title banner between them.
func PrintSlideshow(w io.Writer, s *model.AggregateStats) {
	for _, sl := range Slides() {
		PrintSlide(w, sl, s)
	}
}

// PrintSlide renders one slide under its banner.
func PrintSlide(w io.Writer, sl Slide, s *model.AggregateStats) {
	titleColor.Fprintf(w, "\n=== %s ===\n\n", sl.Title)
	sl.Render(w, s)
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
}

// PrintIntro prints the headline record.
func PrintIntro(w io.Writer, s *model.AggregateStats) {
	if s.TotalGames == 0 {
		fmt.Fprintln(w, "No games in this period.")
		return
	}
	fmt.Fprintf(w, "You played %d games and spent %s in the Rift.\n",
		s.TotalGames, formatDuration(s.TotalTimePlayed))
	fmt.Fprintf(w, "Record: %s / %s  (%.1f%% winrate)\n",
		goodColor.Sprintf("%dW", s.Wins), badColor.Sprintf("%dL", s.Losses), s.Winrate)
	fmt.Fprintf(w, "Longest win streak: %d  |  Longest loss streak: %d\n",
		s.Streaks.LongestWin, s.Streaks.LongestLoss)
	if s.Streaks.CurrentWin > 0 {
		fmt.Fprintf(w, "Currently on a %d game win streak.\n", s.Streaks.CurrentWin)
	} else if s.Streaks.CurrentLoss > 0 {
		fmt.Fprintf(w, "Currently on a %d game loss streak.\n", s.Streaks.CurrentLoss)
	}
}

// PrintStats prints the per-game averages and totals.
func PrintStats(w io.Writer, s *model.AggregateStats) {
	table := newTable(w)
	table.Header("STAT", "TOTAL", "PER GAME")
	table.Append("KDA", fmt.Sprintf("%d/%d/%d", s.TotalKills, s.TotalDeaths, s.TotalAssists), fmt.Sprintf("%.2f", s.KDA))
	table.Append("Gold", strconv.Itoa(s.TotalGold), fmt.Sprintf("%.0f", s.AverageGold))
	table.Append("CS", strconv.Itoa(s.TotalCS), fmt.Sprintf("%.1f", s.AverageCS))
	table.Append("Vision score", strconv.Itoa(s.VisionScore), fmt.Sprintf("%.1f", s.AverageVisionScore))
	table.Append("Champion level", strconv.Itoa(s.TotalLevels), fmt.Sprintf("%.1f", s.AverageLevel))
	table.Append("Time dead", formatDuration(s.TotalTimeSpentDead), formatDuration(int(s.AverageTimeSpentDead)))
	table.Append("Game length", formatDuration(s.TotalTimePlayed), formatDuration(int(s.AverageGameDuration)))
	table.Render()

	fmt.Fprintf(w, "\nWards placed %d, killed %d, control wards %d\n",
		s.WardsPlaced, s.WardsKilled, s.ControlWardsPlaced)
	fmt.Fprintf(w, "Pings: %d total (%d on my way, %d enemy missing, %d danger)\n",
		s.Pings.Total, s.Pings.OnMyWay, s.Pings.Missing, s.Pings.Danger)
}

// PrintCombat prints damage, multikills, and ability casts.
func PrintCombat(w io.Writer, s *model.AggregateStats) {
	c := s.Combat
	table := newTable(w)
	table.Header("COMBAT", "VALUE")
	table.Append("Damage dealt", strconv.Itoa(c.TotalDamageDealt))
	table.Append("Damage taken", strconv.Itoa(c.TotalDamageTaken))
	table.Append("Damage mitigated", strconv.Itoa(c.TotalMitigated))
	table.Append("Healing", strconv.Itoa(c.TotalHealing))
	table.Append("CC score", strconv.Itoa(c.TotalCCScore))
	table.Append("First bloods", strconv.Itoa(c.FirstBloods))
	table.Render()

	m := s.TotalMultiKills
	fmt.Fprintf(w, "\nMultikills: %d double, %d triple, %d quadra, %s\n",
		m.Double, m.Triple, m.Quadra, goodColor.Sprintf("%d penta", m.Penta))
	a := s.AbilityCasts
	fmt.Fprintf(w, "Ability casts: Q %d  W %d  E %d  R %d\n", a.Q, a.W, a.E, a.R)
}

// PrintObjectives prints team objective totals.
func PrintObjectives(w io.Writer, s *model.AggregateStats) {
	o := s.Objectives
	table := newTable(w)
	table.Header("OBJECTIVE", "TAKEN")
	table.Append("Dragons", strconv.Itoa(o.Dragons))
	table.Append("Barons", strconv.Itoa(o.Barons))
	table.Append("Rift Heralds", strconv.Itoa(o.Heralds))
	table.Append("Towers", strconv.Itoa(o.Towers))
	table.Append("Scuttle crabs", strconv.Itoa(o.Scuttles))
	table.Append("Early takedowns", strconv.Itoa(o.EarlyTakedowns))
	table.Render()
}

// PrintChampions prints the top champions by games and the champion superlatives.
func PrintChampions(w io.Writer, s *model.AggregateStats) {
	champs := make([]*model.ChampionStats, 0, len(s.Champions))
	for _, c := range s.Champions {
		champs = append(champs, c)
	}
	sort.SliceStable(champs, func(i, j int) bool {
		if champs[i].Games != champs[j].Games {
			return champs[i].Games > champs[j].Games
		}
		return champs[i].Name < champs[j].Name
	})
	if len(champs) > 10 {
		champs = champs[:10]
	}

	if len(champs) == 0 {
		fmt.Fprintln(w, noData)
	} else {
		table := newTable(w)
		table.Header("CHAMPION", "GAMES", "WIN%", "KDA", "CS", "DMG")
		for _, c := range champs {
			table.Append(
				c.Name,
				strconv.Itoa(c.Games),
				fmt.Sprintf("%.0f%%", c.Winrate()),
				fmt.Sprintf("%.2f", c.KDA()),
				strconv.Itoa(c.CS),
				strconv.Itoa(c.DamageDealt),
			)
		}
		table.Render()
	}

	fmt.Fprintf(w, "\nBest champion:  %s\n", champLine(s.Best.BestChamp))
	fmt.Fprintf(w, "Worst champion: %s\n", champLine(s.Best.WorstChamp))
}

func champLine(c model.ChampionSummary) string {
	if c.Name == "" {
		return dimColor.Sprint(noData)
	}
	return fmt.Sprintf("%s (%.1f%% over %d games)", c.Name, c.Winrate, c.Games)
}

// PrintItems prints the most built items and the item superlatives.
func PrintItems(w io.Writer, s *model.AggregateStats) {
	items := make([]*model.ItemStats, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, it)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].ID < items[j].ID
	})
	if len(items) > 10 {
		items = items[:10]
	}

	if len(items) == 0 {
		fmt.Fprintln(w, noData)
	} else {
		table := newTable(w)
		table.Header("ITEM", "BUILT", "WIN%", "BUILT NEXT")
		for _, it := range items {
			table.Append(
				strconv.Itoa(it.ID),
				strconv.Itoa(it.Count),
				fmt.Sprintf("%.0f%%", it.Winrate()),
				nextItem(s.ItemEdges[it.ID]),
			)
		}
		table.Render()
	}

	fmt.Fprintf(w, "\nBest item:  %s\n", itemLine(s.Best.BestItem))
	fmt.Fprintf(w, "Worst item: %s\n", itemLine(s.Best.WorstItem))
}

// nextItem returns the most frequent follow-up item, lowest id on ties.
func nextItem(edges []int) string {
	if len(edges) == 0 {
		return "-"
	}
	counts := make(map[int]int)
	for _, id := range edges {
		counts[id]++
	}
	best, bestN := 0, 0
	for id, n := range counts {
		if n > bestN || (n == bestN && id < best) {
			best, bestN = id, n
		}
	}
	return fmt.Sprintf("%d (x%d)", best, bestN)
}

func itemLine(it model.ItemSummary) string {
	if it.ID == 0 {
		return dimColor.Sprint(noData)
	}
	return fmt.Sprintf("%d (%.1f%% over %d builds)", it.ID, it.Winrate, it.Count)
}

// PrintSocial prints duo partners and the nemesis pair.
func PrintSocial(w io.Writer, s *model.AggregateStats) {
	fmt.Fprintf(w, "You played with %d different teammates and against %d enemies.\n\n",
		s.Social.UniqueTeammates, s.Social.UniqueEnemies)

	if len(s.Social.Friends) == 0 {
		fmt.Fprintf(w, "Friends: %s\n", dimColor.Sprint(noData))
	} else {
		table := newTable(w)
		table.Header("FRIEND", "GAMES", "WINS", "WIN%", "AVG KDA")
		for _, f := range s.Social.Friends {
			wr := 0.0
			if f.Games > 0 {
				wr = float64(f.Wins) / float64(f.Games) * 100
			}
			table.Append(
				f.Name,
				strconv.Itoa(f.Games),
				strconv.Itoa(f.Wins),
				fmt.Sprintf("%.0f%%", wr),
				fmt.Sprintf("%.2f", f.AverageKDA),
			)
		}
		table.Render()
	}

	bf := s.Best.BestFriend
	if bf.Name == "" {
		fmt.Fprintf(w, "\nBest friend: %s\n", dimColor.Sprint(noData))
	} else {
		fmt.Fprintf(w, "\nBest friend: %s (%d wins in %d games)\n", bf.Name, bf.Wins, bf.Games)
	}

	we := s.Nemesis.WorstEnemy
	if we.Name == "" {
		fmt.Fprintf(w, "Nemesis: %s\n", dimColor.Sprint(noData))
	} else {
		fmt.Fprintf(w, "Nemesis: %s (beat you %s in %d games)\n", we.Name, badColor.Sprintf("%d times", we.Losses), we.Games)
	}
	se := s.Nemesis.StompedEnemy
	if se.Name == "" {
		fmt.Fprintf(w, "Most stomped: %s\n", dimColor.Sprint(noData))
	} else {
		fmt.Fprintf(w, "Most stomped: %s (you won %s in %d games)\n", se.Name, goodColor.Sprintf("%d times", se.Wins), se.Games)
	}
}

const barWidth = 30

// PrintActivity prints hour-of-day and day-of-week histograms as bars.
func PrintActivity(w io.Writer, s *model.AggregateStats) {
	if s.TotalGames == 0 {
		fmt.Fprintln(w, noData)
		return
	}

	fmt.Fprintln(w, "By hour:")
	hourly := s.Activity.Hourly[:]
	maxH := maxOf(hourly)
	for h, n := range hourly {
		fmt.Fprintf(w, "  %02d:00 %-*s %d\n", h, barWidth, bar(n, maxH), n)
	}

	fmt.Fprintln(w, "\nBy day:")
	daily := s.Activity.Daily[:]
	maxD := maxOf(daily)
	for d, n := range daily {
		fmt.Fprintf(w, "  %-3s %-*s %d\n", time.Weekday(d).String()[:3], barWidth, bar(n, maxD), n)
	}

	fmt.Fprintf(w, "\nBusiest hour: %02d:00  |  Busiest day: %s\n",
		argmax(hourly), time.Weekday(argmax(daily)))
}

func bar(n, max int) string {
	if max == 0 || n == 0 {
		return ""
	}
	width := n * barWidth / max
	if width == 0 {
		width = 1
	}
	return strings.Repeat("#", width)
}

func maxOf(xs []int) int {
	m := 0
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	return m
}

// argmax returns the first index holding the maximum.
func argmax(xs []int) int {
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}

// PrintModes prints per-queue records, side selection, and ARAM / Arena detail.
func PrintModes(w io.Writer, s *model.AggregateStats) {
	ids := make([]int, 0, len(s.GameModes))
	for id := range s.GameModes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		gi, gj := s.GameModes[ids[i]], s.GameModes[ids[j]]
		if gi.Games != gj.Games {
			return gi.Games > gj.Games
		}
		return ids[i] < ids[j]
	})

	if len(ids) == 0 {
		fmt.Fprintln(w, noData)
		return
	}
	table := newTable(w)
	table.Header("MODE", "QUEUE", "GAMES", "WIN%", "TIME")
	for _, id := range ids {
		g := s.GameModes[id]
		wr := 0.0
		if g.Games > 0 {
			wr = float64(g.Wins) / float64(g.Games) * 100
		}
		table.Append(g.Name, strconv.Itoa(id), strconv.Itoa(g.Games), fmt.Sprintf("%.0f%%", wr), formatDuration(g.TimePlayed))
	}
	table.Render()

	ss := s.SideSelection
	fmt.Fprintf(w, "\nBlue side: %d games, %d wins  |  Red side: %d games, %d wins\n",
		ss.Blue.Games, ss.Blue.Wins, ss.Red.Games, ss.Red.Wins)
	if s.ARAM.Games > 0 {
		fmt.Fprintf(w, "ARAM: %d games, %d wins, %d snowballs hit\n", s.ARAM.Games, s.ARAM.Wins, s.ARAM.SnowballsHit)
	}
	if s.Arena.Games > 0 {
		fmt.Fprintf(w, "Arena: %d games, %d wins", s.Arena.Games, s.Arena.Wins)
		places := make([]int, 0, len(s.Arena.Placements))
		for p := range s.Arena.Placements {
			places = append(places, p)
		}
		sort.Ints(places)
		for _, p := range places {
			fmt.Fprintf(w, "  #%d x%d", p, s.Arena.Placements[p])
		}
		fmt.Fprintln(w)
	}
}

// PrintSummary prints the one-screen recap.
func PrintSummary(w io.Writer, s *model.AggregateStats) {
	table := newTable(w)
	table.Header("RECAP", "VALUE")
	table.Append("Games", strconv.Itoa(s.TotalGames))
	table.Append("Winrate", fmt.Sprintf("%.1f%%", s.Winrate))
	table.Append("KDA", fmt.Sprintf("%.2f", s.KDA))
	table.Append("Hours played", fmt.Sprintf("%.1f", float64(s.TotalTimePlayed)/3600))
	table.Append("Top champion", topChampion(s))
	table.Append("Best champion", orNoData(s.Best.BestChamp.Name))
	table.Append("Best friend", orNoData(s.Best.BestFriend.Name))
	table.Append("Nemesis", orNoData(s.Nemesis.WorstEnemy.Name))
	table.Append("Pentakills", strconv.Itoa(s.TotalMultiKills.Penta))
	table.Render()
}

// topChampion returns the most played champion, alphabetical on ties.
func topChampion(s *model.AggregateStats) string {
	var top *model.ChampionStats
	for _, c := range s.Champions {
		if top == nil || c.Games > top.Games || (c.Games == top.Games && c.Name < top.Name) {
			top = c
		}
	}
	if top == nil {
		return noData
	}
	return fmt.Sprintf("%s (%d)", top.Name, top.Games)
}

func orNoData(s string) string {
	if s == "" {
		return noData
	}
	return s
}

// formatDuration renders seconds as "12h 03m" or "4m 05s".
func formatDuration(secs int) string {
	if secs < 0 {
		secs = 0
	}
	h, m, sec := secs/3600, (secs%3600)/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm", h, m)
	}
	return fmt.Sprintf("%dm %02ds", m, sec)
}

// PrintMatchSummary prints a one-line header for a stored match.
func PrintMatchSummary(w io.Writer, m *model.Match) {
	winner := "-"
	for _, t := range m.Info.Teams {
		if t.Win {
			winner = t.TeamID.String()
		}
	}
	d := m.Info.GameDuration
	fmt.Fprintf(w, "\nMatch: %s  |  Date: %s  |  Queue: %s  |  Length: %d:%02d  |  Winner: %s\n\n",
		m.Metadata.MatchID,
		time.UnixMilli(m.Info.GameCreation).Format("2006-01-02 15:04"),
		model.QueueName(m.Info.QueueID), d/60, d%60, winner)
}

// PrintScoreboard prints every participant of a match grouped by side.
// If focusPUUID is non-empty, that player's row is marked with ">".
func PrintScoreboard(w io.Writer, m *model.Match, focusPUUID string) {
	table := newTable(w)
	table.Header(" ", "NAME", "TEAM", "CHAMPION", "K", "D", "A", "KDA", "CS", "GOLD", "DMG", "VISION", "WIN")

	parts := make([]model.Participant, len(m.Info.Participants))
	copy(parts, m.Info.Participants)
	sort.SliceStable(parts, func(i, j int) bool { return parts[i].TeamID < parts[j].TeamID })

	for _, p := range parts {
		marker := " "
		if focusPUUID != "" && p.PUUID == focusPUUID {
			marker = ">"
		}
		win := ""
		if p.Win {
			win = "W"
		}
		table.Append(
			marker,
			p.DisplayName(),
			p.TeamID.String(),
			p.ChampionName,
			strconv.Itoa(p.Kills),
			strconv.Itoa(p.Deaths),
			strconv.Itoa(p.Assists),
			fmt.Sprintf("%.2f", p.KDA()),
			strconv.Itoa(p.CS()),
			strconv.Itoa(p.GoldEarned),
			strconv.Itoa(p.TotalDamageDealtToChampions),
			strconv.Itoa(p.VisionScore),
			win,
		)
	}
	table.Render()
}

// PrintTrendTable prints one row per month, oldest first.
func PrintTrendTable(w io.Writer, points []model.TrendPoint) {
	table := newTable(w)
	table.Header("MONTH", "GAMES", "W", "L", "WIN%", "KDA", "CS/MIN", "VISION/G")
	for i := range points {
		p := &points[i]
		table.Append(
			p.Month,
			strconv.Itoa(p.Games),
			strconv.Itoa(p.Wins),
			strconv.Itoa(p.Games-p.Wins),
			fmt.Sprintf("%.0f%%", p.Winrate()),
			fmt.Sprintf("%.2f", p.KDA()),
			fmt.Sprintf("%.1f", p.CSPerMinute()),
			fmt.Sprintf("%.1f", float64(p.VisionScore)/float64(max(p.Games, 1))),
		)
	}
	table.Render()
}
