package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/pable/lol-wrapped/internal/model"
)

func init() {
	color.NoColor = true
}

func sampleStats() *model.AggregateStats {
	s := &model.AggregateStats{
		TotalGames: 3, Wins: 2, Losses: 1, Winrate: 66.67,
		TotalTimePlayed: 5400, AverageGameDuration: 1800,
		KDA: 3.5, TotalKills: 20, TotalDeaths: 8, TotalAssists: 8,
		Champions: map[string]*model.ChampionStats{
			"Ahri": {Name: "Ahri", Games: 2, Wins: 2, Kills: 15, Deaths: 4, Assists: 6},
			"Lux":  {Name: "Lux", Games: 1, Wins: 0, Kills: 5, Deaths: 4, Assists: 2},
		},
		Items: map[int]*model.ItemStats{
			3020: {ID: 3020, Count: 3, Wins: 2},
			3157: {ID: 3157, Count: 2, Wins: 1},
		},
		ItemEdges: map[int][]int{3020: {3157, 3157, 6655}},
		GameModes: map[int]*model.GameModeStats{
			420: {Name: "Ranked Solo", Games: 2, Wins: 1, TimePlayed: 3600},
			450: {Name: "ARAM", Games: 1, Wins: 1, TimePlayed: 1800},
		},
	}
	s.TotalMultiKills.Penta = 1
	s.Activity.Hourly[18] = 3
	s.Activity.Daily[0] = 2
	s.Activity.Daily[3] = 1
	s.Best.BestChamp = model.ChampionSummary{Name: "Ahri", Games: 2, Wins: 2, Winrate: 100}
	s.Best.BestFriend = model.TeammateSummary{Name: "Duo", Games: 3, Wins: 2}
	s.Social.Friends = []model.Friend{{Name: "Duo", Games: 3, Wins: 2, AverageKDA: 2.5}}
	s.Nemesis.WorstEnemy = model.EnemySummary{Name: "Rival", Games: 2, Losses: 1}
	return s
}

func TestFindSlide(t *testing.T) {
	for _, name := range SlideNames() {
		if _, ok := FindSlide(strings.ToUpper(name)); !ok {
			t.Errorf("FindSlide(%q) not found", name)
		}
	}
	if _, ok := FindSlide("nope"); ok {
		t.Error("unknown slide should not be found")
	}
	if n := len(SlideNames()); n != 10 {
		t.Errorf("slide count: got %d, want 10", n)
	}
}

func TestSlideshowRendersEverySlide(t *testing.T) {
	var buf bytes.Buffer
	PrintSlideshow(&buf, sampleStats())
	out := buf.String()
	for _, sl := range Slides() {
		if !strings.Contains(out, "=== "+sl.Title+" ===") {
			t.Errorf("missing banner for %s", sl.Name)
		}
	}
	for _, want := range []string{"Ahri", "3020", "Duo", "Rival", "Ranked Solo", "1h 30m"} {
		if !strings.Contains(out, want) {
			t.Errorf("slideshow output missing %q", want)
		}
	}
}

func TestEmptySuperlativesSayNoData(t *testing.T) {
	var buf bytes.Buffer
	PrintItems(&buf, sampleStats())
	if !strings.Contains(buf.String(), "Best item:  no data") {
		t.Errorf("items slide:\n%s", buf.String())
	}

	buf.Reset()
	PrintSocial(&buf, sampleStats())
	if !strings.Contains(buf.String(), "Most stomped: no data") {
		t.Errorf("social slide:\n%s", buf.String())
	}
}

func TestEmptyStats(t *testing.T) {
	empty := &model.AggregateStats{}
	var buf bytes.Buffer
	PrintSlideshow(&buf, empty)
	if !strings.Contains(buf.String(), "No games in this period.") {
		t.Errorf("intro for empty stats:\n%s", buf.String())
	}
}

func TestActivityBars(t *testing.T) {
	var buf bytes.Buffer
	PrintActivity(&buf, sampleStats())
	out := buf.String()
	if !strings.Contains(out, "18:00 "+strings.Repeat("#", barWidth)) {
		t.Errorf("peak hour should have a full bar:\n%s", out)
	}
	if !strings.Contains(out, "Busiest hour: 18:00  |  Busiest day: Sunday") {
		t.Errorf("busiest line missing:\n%s", out)
	}
}

func TestNextItem(t *testing.T) {
	if got := nextItem([]int{3157, 6655, 3157}); got != "3157 (x2)" {
		t.Errorf("nextItem: got %q", got)
	}
	if got := nextItem([]int{6655, 3157}); got != "3157 (x1)" {
		t.Errorf("nextItem tie: got %q", got)
	}
	if got := nextItem(nil); got != "-" {
		t.Errorf("nextItem empty: got %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[int]string{0: "0m 00s", 65: "1m 05s", 3600: "1h 00m", 5430: "1h 30m"}
	for in, want := range cases {
		if got := formatDuration(in); got != want {
			t.Errorf("formatDuration(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestScoreboardMarksFocus(t *testing.T) {
	m := &model.Match{
		Metadata: model.MatchMetadata{MatchID: "EUW1_42"},
		Info: model.MatchInfo{
			GameDuration: 1865,
			QueueID:      model.QueueRankedSolo,
			Participants: []model.Participant{
				{PUUID: "b", RiotIDGameName: "Bob", TeamID: model.SideRed, ChampionName: "Zed"},
				{PUUID: "a", RiotIDGameName: "Ann", TeamID: model.SideBlue, ChampionName: "Ahri", Win: true},
			},
			Teams: []model.Team{{TeamID: model.SideBlue, Win: true}, {TeamID: model.SideRed}},
		},
	}

	var buf bytes.Buffer
	PrintMatchSummary(&buf, m)
	if !strings.Contains(buf.String(), "Queue: Ranked Solo  |  Length: 31:05  |  Winner: Blue") {
		t.Errorf("summary line:\n%s", buf.String())
	}

	buf.Reset()
	PrintScoreboard(&buf, m, "a")
	out := buf.String()
	if strings.Index(out, "Ann") > strings.Index(out, "Bob") {
		t.Errorf("blue side should be listed first:\n%s", out)
	}
	if !strings.Contains(out, ">") {
		t.Errorf("focus marker missing:\n%s", out)
	}
}

func TestTrendTable(t *testing.T) {
	var buf bytes.Buffer
	PrintTrendTable(&buf, []model.TrendPoint{
		{Month: "2025-02", Games: 4, Wins: 3, Kills: 20, Deaths: 5, Assists: 10, CS: 600, Minutes: 120},
	})
	out := buf.String()
	for _, want := range []string{"2025-02", "75%", "6.00", "5.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("trend table missing %q:\n%s", want, out)
		}
	}
}
