// Package aggregator folds a player's match history into a single Wrapped
// summary. It does no I/O and keeps no package state, so concurrent calls
// are safe and identical inputs always produce identical output.
package aggregator

import (
	"sort"
	"time"

	"github.com/pable/lol-wrapped/internal/model"
)

const (
	// Minimum games on a champion before it can be best/worst champion.
	minChampionGames = 3
	// Minimum completed-build appearances before an item can be best/worst item.
	minItemCount = 5
	// Teammates with strictly more shared games than this are friends.
	friendGamesThreshold = 2
)

// accumulator is the fold state for one ProcessMatches call. The *Order
// slices record first-seen key order so superlative scans are deterministic.
type accumulator struct {
	stats *model.AggregateStats

	currentWin, currentLoss int

	champOrder []string
	mateOrder  []string
	enemyOrder []string
}

// ProcessMatches aggregates matches for the player identified by puuid,
// bucketing activity in the local time zone.
func ProcessMatches(matches []model.Match, puuid string) model.AggregateStats {
	return ProcessMatchesIn(matches, puuid, time.Local)
}

// ProcessMatchesIn is ProcessMatches with an explicit time zone for the
// hour-of-day and day-of-week histograms. Matches without the player are
// skipped. The input slice is not modified.
func ProcessMatchesIn(matches []model.Match, puuid string, loc *time.Location) model.AggregateStats {
	if loc == nil {
		loc = time.UTC
	}
	acc := &accumulator{stats: newStats()}

	// Streaks are order-sensitive; fold a sorted copy, oldest first, with the
	// match id breaking creation-time ties.
	sorted := make([]*model.Match, len(matches))
	for i := range matches {
		sorted[i] = &matches[i]
	}
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Info.GameCreation != b.Info.GameCreation {
			return a.Info.GameCreation < b.Info.GameCreation
		}
		return a.Metadata.MatchID < b.Metadata.MatchID
	})

	for _, m := range sorted {
		me := m.Participant(puuid)
		if me == nil {
			continue
		}
		acc.addMatch(m, me, loc)
	}

	acc.finish()
	return *acc.stats
}

func newStats() *model.AggregateStats {
	return &model.AggregateStats{
		Arena: model.ArenaStats{
			Placements: make(map[int]int),
			Augments:   make(map[int]int),
		},
		GameModes: make(map[int]*model.GameModeStats),
		Champions: make(map[string]*model.ChampionStats),
		Items:     make(map[int]*model.ItemStats),
		ItemEdges: make(map[int][]int),
		Spells:    make(map[int]*model.SpellStats),
		Teammates: make(map[string]*model.TeammateStats),
		Enemies:   make(map[string]*model.EnemyStats),
		Social:    model.SocialStats{Friends: []model.Friend{}},
	}
}

// addMatch applies one match in which me is the target participant.
func (a *accumulator) addMatch(m *model.Match, me *model.Participant, loc *time.Location) {
	s := a.stats
	win := me.Win

	s.TotalGames++
	s.TotalTimePlayed += m.Info.GameDuration

	// ---- Win/loss and streaks ----
	if win {
		s.Wins++
		a.currentWin++
		a.currentLoss = 0
		if a.currentWin > s.Streaks.LongestWin {
			s.Streaks.LongestWin = a.currentWin
		}
	} else {
		s.Losses++
		a.currentLoss++
		a.currentWin = 0
		if a.currentLoss > s.Streaks.LongestLoss {
			s.Streaks.LongestLoss = a.currentLoss
		}
	}

	// ---- Scalar totals ----
	s.TotalKills += me.Kills
	s.TotalDeaths += me.Deaths
	s.TotalAssists += me.Assists

	s.Combat.TotalDamageDealt += me.TotalDamageDealtToChampions
	s.Combat.TotalDamageTaken += me.TotalDamageTaken
	s.Combat.TotalMitigated += me.DamageSelfMitigated
	s.Combat.TotalHealing += me.TotalHeal
	s.Combat.TotalCCScore += me.TimeCCingOthers
	if me.FirstBloodKill || me.FirstBloodAssist {
		s.Combat.FirstBloods++
	}

	s.TotalMultiKills.Penta += me.PentaKills
	s.TotalMultiKills.Quadra += me.QuadraKills
	s.TotalMultiKills.Triple += me.TripleKills
	s.TotalMultiKills.Double += me.DoubleKills

	s.TotalTimeSpentDead += me.TotalTimeSpentDead
	s.TotalGold += me.GoldEarned
	s.TotalCS += me.CS()
	s.VisionScore += me.VisionScore
	s.WardsPlaced += me.WardsPlaced
	s.WardsKilled += me.WardsKilled
	s.ControlWardsPlaced += me.DetectorWardsPlaced
	s.TotalLevels += me.ChampLevel

	s.AbilityCasts.Q += me.Spell1Casts
	s.AbilityCasts.W += me.Spell2Casts
	s.AbilityCasts.E += me.Spell3Casts
	s.AbilityCasts.R += me.Spell4Casts

	// ---- Team objectives: whole-team totals, once per match ----
	if team := m.Team(me.TeamID); team != nil {
		s.Objectives.Dragons += team.Objectives.Dragon.Kills
		s.Objectives.Barons += team.Objectives.Baron.Kills
		s.Objectives.Towers += team.Objectives.Tower.Kills
		s.Objectives.Heralds += team.Objectives.RiftHerald.Kills
	}

	queueID := m.Info.QueueID
	if ch := me.Challenges; ch != nil {
		s.Objectives.Scuttles += ch.ScuttleCrabKills
		s.Objectives.EarlyTakedowns += ch.TakedownsBeforeJungleMinionSpawn
		if queueID == model.QueueARAM {
			s.ARAM.SnowballsHit += ch.SnowballsHit
		}
	}

	a.addPings(me)

	// ---- Activity ----
	created := time.UnixMilli(m.Info.GameCreation).In(loc)
	s.Activity.Hourly[created.Hour()]++
	s.Activity.Daily[int(created.Weekday())]++

	// ---- Game modes ----
	mode := s.GameModes[queueID]
	if mode == nil {
		mode = &model.GameModeStats{Name: model.QueueName(queueID)}
		s.GameModes[queueID] = mode
	}
	mode.Games++
	mode.TimePlayed += m.Info.GameDuration
	if win {
		mode.Wins++
	}

	switch queueID {
	case model.QueueARAM:
		s.ARAM.Games++
		if win {
			s.ARAM.Wins++
		}
	case model.QueueArena:
		s.Arena.Games++
		if win {
			s.Arena.Wins++
		}
		placement := me.Placement
		if me.Challenges != nil && me.Challenges.Placement > 0 {
			placement = me.Challenges.Placement
		}
		if placement > 0 {
			s.Arena.Placements[placement]++
		}
		for _, aug := range me.Augments() {
			s.Arena.Augments[aug]++
		}
	}

	// ---- Side ----
	side := &s.SideSelection.Red
	if me.TeamID == model.SideBlue {
		side = &s.SideSelection.Blue
	}
	side.Games++
	if win {
		side.Wins++
	}

	a.addChampion(m, me)
	a.addItems(me)

	for _, spellID := range [2]int{me.Summoner1ID, me.Summoner2ID} {
		sp := s.Spells[spellID]
		if sp == nil {
			sp = &model.SpellStats{}
			s.Spells[spellID] = sp
		}
		sp.Count++
		if win {
			sp.Wins++
		}
	}

	a.addRelationships(m, me)
}

// addPings sums each category and recomputes Total from the categories.
func (a *accumulator) addPings(me *model.Participant) {
	p := &a.stats.Pings
	p.AllIn += me.AllInPings
	p.Assist += me.AssistMePings
	p.Bait += me.BaitPings
	p.Basic += me.BasicPings
	p.Command += me.CommandPings
	p.Danger += me.DangerPings
	p.Missing += me.EnemyMissingPings
	p.EnemyVision += me.EnemyVisionPings
	p.GetBack += me.GetBackPings
	p.NeedVision += me.NeedVisionPings
	p.OnMyWay += me.OnMyWayPings
	p.Push += me.PushPings
	p.VisionCleared += me.VisionClearedPings
	p.Total = p.CategorySum()
}

func (a *accumulator) addChampion(m *model.Match, me *model.Participant) {
	c := a.stats.Champions[me.ChampionName]
	if c == nil {
		c = &model.ChampionStats{Name: me.ChampionName}
		a.stats.Champions[me.ChampionName] = c
		a.champOrder = append(a.champOrder, me.ChampionName)
	}
	c.Games++
	if me.Win {
		c.Wins++
	}
	c.Kills += me.Kills
	c.Deaths += me.Deaths
	c.Assists += me.Assists
	c.CS += me.CS()
	c.Gold += me.GoldEarned
	c.DamageDealt += me.TotalDamageDealtToChampions
	c.DamageTaken += me.TotalDamageTaken + me.DamageSelfMitigated
	c.TimePlayed += m.Info.GameDuration
}

// addItems counts every occupied slot and records a build edge between each
// pair of consecutive occupied slots. Empty slots are skipped, not breaks.
func (a *accumulator) addItems(me *model.Participant) {
	prev := 0
	for _, id := range me.Items() {
		if id == 0 {
			continue
		}
		it := a.stats.Items[id]
		if it == nil {
			it = &model.ItemStats{ID: id}
			a.stats.Items[id] = it
		}
		it.Count++
		if me.Win {
			it.Wins++
		}
		if prev != 0 {
			a.stats.ItemEdges[prev] = append(a.stats.ItemEdges[prev], id)
		}
		prev = id
	}
}

// addRelationships updates teammate and enemy roll-ups. Enemy records are
// kept from the enemy's side: a target loss is an enemy win.
func (a *accumulator) addRelationships(m *model.Match, me *model.Participant) {
	for i := range m.Info.Participants {
		p := &m.Info.Participants[i]
		if p.PUUID == me.PUUID {
			continue
		}
		name := p.DisplayName()

		if p.TeamID == me.TeamID {
			t := a.stats.Teammates[name]
			if t == nil {
				t = &model.TeammateStats{Name: name}
				a.stats.Teammates[name] = t
				a.mateOrder = append(a.mateOrder, name)
			}
			t.Games++
			if me.Win {
				t.Wins++
			}
			t.TotalKDA += p.KDA()
			continue
		}

		e := a.stats.Enemies[name]
		if e == nil {
			e = &model.EnemyStats{Name: name}
			a.stats.Enemies[name] = e
			a.enemyOrder = append(a.enemyOrder, name)
		}
		e.Games++
		if me.Win {
			e.Losses++
		} else {
			e.Wins++
		}
	}
}

// finish derives averages, social counts, and superlatives.
func (a *accumulator) finish() {
	s := a.stats
	s.Streaks.CurrentWin = a.currentWin
	s.Streaks.CurrentLoss = a.currentLoss

	if s.TotalGames > 0 {
		n := float64(s.TotalGames)
		s.Winrate = float64(s.Wins) / n * 100
		s.AverageGameDuration = float64(s.TotalTimePlayed) / n
		s.KDA = model.KDARatio(s.TotalKills, s.TotalDeaths, s.TotalAssists)
		s.AverageTimeSpentDead = float64(s.TotalTimeSpentDead) / n
		s.AverageGold = float64(s.TotalGold) / n
		s.AverageCS = float64(s.TotalCS) / n
		s.AverageVisionScore = float64(s.VisionScore) / n
		s.AverageLevel = float64(s.TotalLevels) / n
	}

	s.Social.UniqueTeammates = len(s.Teammates)
	s.Social.UniqueEnemies = len(s.Enemies)
	for _, name := range a.mateOrder {
		t := s.Teammates[name]
		if t.Games > friendGamesThreshold {
			s.Social.Friends = append(s.Social.Friends, model.Friend{
				Name:       t.Name,
				Games:      t.Games,
				Wins:       t.Wins,
				AverageKDA: t.AverageKDA(),
			})
		}
	}

	a.pickSocialSuperlatives()
	a.pickChampionSuperlatives()
	a.pickItemSuperlatives()
}

func (a *accumulator) pickSocialSuperlatives() {
	s := a.stats

	best := 0
	for _, name := range a.mateOrder {
		t := s.Teammates[name]
		if t.Games > best {
			best = t.Games
			s.Best.BestFriend = model.TeammateSummary{Name: t.Name, Games: t.Games, Wins: t.Wins}
		}
	}

	mostLosses, mostWins := 0, 0
	for _, name := range a.enemyOrder {
		e := s.Enemies[name]
		if e.Wins > mostLosses {
			mostLosses = e.Wins
			s.Nemesis.WorstEnemy = model.EnemySummary{Name: e.Name, Games: e.Games, Losses: e.Wins}
		}
		if e.Losses > mostWins {
			mostWins = e.Losses
			s.Nemesis.StompedEnemy = model.EnemySummary{Name: e.Name, Games: e.Games, Wins: e.Losses}
		}
	}
}

func (a *accumulator) pickChampionSuperlatives() {
	s := a.stats
	bestRate, worstRate := -1.0, 101.0
	for _, name := range a.champOrder {
		c := s.Champions[name]
		if c.Games < minChampionGames {
			continue
		}
		rate := c.Winrate()
		if rate > bestRate {
			bestRate = rate
			s.Best.BestChamp = model.ChampionSummary{Name: c.Name, Games: c.Games, Wins: c.Wins, Winrate: rate}
		}
		if rate < worstRate {
			worstRate = rate
			s.Best.WorstChamp = model.ChampionSummary{Name: c.Name, Games: c.Games, Wins: c.Wins, Winrate: rate}
		}
	}
}

// pickItemSuperlatives scans items in ascending id order.
func (a *accumulator) pickItemSuperlatives() {
	s := a.stats
	ids := make([]int, 0, len(s.Items))
	for id := range s.Items {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	bestRate, worstRate := -1.0, 101.0
	for _, id := range ids {
		it := s.Items[id]
		if it.Count < minItemCount {
			continue
		}
		rate := it.Winrate()
		if rate > bestRate {
			bestRate = rate
			s.Best.BestItem = model.ItemSummary{ID: it.ID, Count: it.Count, Wins: it.Wins, Winrate: rate}
		}
		if rate < worstRate {
			worstRate = rate
			s.Best.WorstItem = model.ItemSummary{ID: it.ID, Count: it.Count, Wins: it.Wins, Winrate: rate}
		}
	}
}
