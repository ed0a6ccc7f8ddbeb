package aggregator

import (
	"sort"
	"time"

	"github.com/pable/lol-wrapped/internal/model"
)

// MonthlyTrend buckets the player's games by calendar month in loc, oldest
// month first. Months without games are omitted.
func MonthlyTrend(matches []model.Match, puuid string, loc *time.Location) []model.TrendPoint {
	if loc == nil {
		loc = time.UTC
	}
	byMonth := make(map[string]*model.TrendPoint)
	var order []string
	for i := range matches {
		m := &matches[i]
		me := m.Participant(puuid)
		if me == nil {
			continue
		}
		key := time.UnixMilli(m.Info.GameCreation).In(loc).Format("2006-01")
		tp, ok := byMonth[key]
		if !ok {
			tp = &model.TrendPoint{Month: key}
			byMonth[key] = tp
			order = append(order, key)
		}
		tp.Games++
		if me.Win {
			tp.Wins++
		}
		tp.Kills += me.Kills
		tp.Deaths += me.Deaths
		tp.Assists += me.Assists
		tp.CS += me.CS()
		tp.VisionScore += me.VisionScore
		tp.Minutes += float64(m.Info.GameDuration) / 60
	}

	// "2006-01" keys sort chronologically as strings.
	sort.Strings(order)
	out := make([]model.TrendPoint, 0, len(order))
	for _, k := range order {
		out = append(out, *byMonth[k])
	}
	return out
}
