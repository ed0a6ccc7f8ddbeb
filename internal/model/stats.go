package model

// ---- Aggregated Wrapped stats ----

// AggregateStats is one player's season across a match set. It is produced
// only by aggregator.ProcessMatches and is serialized as-is into the cache.
type AggregateStats struct {
	TotalGames          int     `json:"totalGames"`
	Wins                int     `json:"wins"`
	Losses              int     `json:"losses"`
	Winrate             float64 `json:"winrate"`
	TotalTimePlayed     int     `json:"totalTimePlayed"` // seconds
	AverageGameDuration float64 `json:"averageGameDuration"`

	KDA          float64 `json:"kda"`
	TotalKills   int     `json:"totalKills"`
	TotalDeaths  int     `json:"totalDeaths"`
	TotalAssists int     `json:"totalAssists"`

	Combat          CombatStats    `json:"combat"`
	Objectives      ObjectiveStats `json:"objectives"`
	Pings           PingStats      `json:"pings"`
	Streaks         StreakStats    `json:"streaks"`
	Activity        ActivityStats  `json:"activity"`
	AbilityCasts    AbilityCasts   `json:"abilityCasts"`
	TotalMultiKills MultiKillStats `json:"totalMultiKills"`
	SideSelection   SideSelection  `json:"sideSelection"`
	ARAM            ARAMStats      `json:"aram"`
	Arena           ArenaStats     `json:"arena"`

	GameModes map[int]*GameModeStats `json:"gameModes"`

	TotalTimeSpentDead   int     `json:"totalTimeSpentDead"`
	AverageTimeSpentDead float64 `json:"averageTimeSpentDead"`

	TotalGold   int     `json:"totalGold"`
	AverageGold float64 `json:"averageGold"`
	TotalCS     int     `json:"totalCS"`
	AverageCS   float64 `json:"averageCS"`

	VisionScore        int     `json:"visionScore"`
	AverageVisionScore float64 `json:"averageVisionScore"`
	WardsPlaced        int     `json:"wardsPlaced"`
	WardsKilled        int     `json:"wardsKilled"`
	ControlWardsPlaced int     `json:"controlWardsPlaced"`

	TotalLevels  int     `json:"totalLevels"`
	AverageLevel float64 `json:"averageLevel"`

	Champions map[string]*ChampionStats `json:"champions"`
	Items     map[int]*ItemStats        `json:"items"`
	ItemEdges map[int][]int             `json:"itemEdges"` // from -> next items, repeats kept
	Spells    map[int]*SpellStats       `json:"spells"`
	Teammates map[string]*TeammateStats `json:"teammates"`
	Enemies   map[string]*EnemyStats    `json:"enemies"`

	Social  SocialStats  `json:"social"`
	Best    BestStats    `json:"best"`
	Nemesis NemesisStats `json:"nemesis"`
}

type CombatStats struct {
	TotalDamageDealt int `json:"totalDamageDealt"`
	TotalDamageTaken int `json:"totalDamageTaken"`
	TotalMitigated   int `json:"totalMitigated"`
	TotalHealing     int `json:"totalHealing"`
	TotalCCScore     int `json:"totalCCScore"`
	FirstBloods      int `json:"firstBloods"`
}

// ObjectiveStats sums the player's team totals per match, not personal
// participation. Scuttles and early takedowns come from challenges.
type ObjectiveStats struct {
	Dragons        int `json:"dragons"`
	Barons         int `json:"barons"`
	Towers         int `json:"towers"`
	Heralds        int `json:"heralds"`
	Scuttles       int `json:"scuttles"`
	EarlyTakedowns int `json:"earlyTakedowns"`
}

type PingStats struct {
	AllIn         int `json:"allIn"`
	Assist        int `json:"assist"`
	Bait          int `json:"bait"`
	Basic         int `json:"basic"`
	Command       int `json:"command"`
	Danger        int `json:"danger"`
	Missing       int `json:"missing"`
	EnemyVision   int `json:"enemyVision"`
	GetBack       int `json:"getBack"`
	NeedVision    int `json:"needVision"`
	OnMyWay       int `json:"onMyWay"`
	Push          int `json:"push"`
	VisionCleared int `json:"visionCleared"`
	Total         int `json:"total"`
}

// CategorySum is the sum of the 13 named ping categories.
func (p *PingStats) CategorySum() int {
	return p.AllIn + p.Assist + p.Bait + p.Basic + p.Command + p.Danger + p.Missing +
		p.EnemyVision + p.GetBack + p.NeedVision + p.OnMyWay + p.Push + p.VisionCleared
}

type StreakStats struct {
	CurrentWin  int `json:"currentWin"`
	CurrentLoss int `json:"currentLoss"`
	LongestWin  int `json:"longestWin"`
	LongestLoss int `json:"longestLoss"`
}

// ActivityStats buckets games by local hour (0-23) and weekday (0 = Sunday).
type ActivityStats struct {
	Hourly [24]int `json:"hourly"`
	Daily  [7]int  `json:"daily"`
}

type AbilityCasts struct {
	Q int `json:"q"`
	W int `json:"w"`
	E int `json:"e"`
	R int `json:"r"`
}

type MultiKillStats struct {
	Penta  int `json:"penta"`
	Quadra int `json:"quadra"`
	Triple int `json:"triple"`
	Double int `json:"double"`
}

type SideRecord struct {
	Games int `json:"games"`
	Wins  int `json:"wins"`
}

type SideSelection struct {
	Blue SideRecord `json:"blue"`
	Red  SideRecord `json:"red"`
}

type ARAMStats struct {
	Games        int `json:"games"`
	Wins         int `json:"wins"`
	SnowballsHit int `json:"snowballsHit"`
}

type ArenaStats struct {
	Games      int         `json:"games"`
	Wins       int         `json:"wins"`
	Placements map[int]int `json:"placements"` // placement (1-8) -> games
	Augments   map[int]int `json:"augments"`   // augment id -> picks
}

type GameModeStats struct {
	Name       string `json:"name"`
	Games      int    `json:"games"`
	Wins       int    `json:"wins"`
	TimePlayed int    `json:"timePlayed"` // seconds
}

type ChampionStats struct {
	Name        string `json:"name"`
	Games       int    `json:"games"`
	Wins        int    `json:"wins"`
	Kills       int    `json:"kills"`
	Deaths      int    `json:"deaths"`
	Assists     int    `json:"assists"`
	CS          int    `json:"cs"`
	Gold        int    `json:"gold"`
	DamageDealt int    `json:"damageDealt"`
	DamageTaken int    `json:"damageTaken"` // taken + self-mitigated
	TimePlayed  int    `json:"timePlayed"`
}

func (c *ChampionStats) Winrate() float64 {
	return winrate(c.Wins, c.Games)
}

func (c *ChampionStats) KDA() float64 {
	return KDARatio(c.Kills, c.Deaths, c.Assists)
}

type ItemStats struct {
	ID    int `json:"id"`
	Count int `json:"count"`
	Wins  int `json:"wins"`
}

func (i *ItemStats) Winrate() float64 {
	return winrate(i.Wins, i.Count)
}

type SpellStats struct {
	Count int `json:"count"`
	Wins  int `json:"wins"`
}

type TeammateStats struct {
	Name     string  `json:"name"`
	Games    int     `json:"games"`
	Wins     int     `json:"wins"`
	TotalKDA float64 `json:"totalKDA"` // sum of per-match KDA, for averaging
}

func (t *TeammateStats) AverageKDA() float64 {
	if t.Games == 0 {
		return 0
	}
	return t.TotalKDA / float64(t.Games)
}

// EnemyStats is kept from the enemy's point of view: Wins counts games the
// enemy won against the target, Losses games they lost to the target.
type EnemyStats struct {
	Name   string `json:"name"`
	Games  int    `json:"games"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

type Friend struct {
	Name       string  `json:"name"`
	Games      int     `json:"games"`
	Wins       int     `json:"wins"`
	AverageKDA float64 `json:"averageKDA"`
}

type SocialStats struct {
	UniqueTeammates int      `json:"uniqueTeammates"`
	UniqueEnemies   int      `json:"uniqueEnemies"`
	Friends         []Friend `json:"friends"`
}

type TeammateSummary struct {
	Name  string `json:"name"`
	Games int    `json:"games"`
	Wins  int    `json:"wins"`
}

type ChampionSummary struct {
	Name    string  `json:"name"`
	Games   int     `json:"games"`
	Wins    int     `json:"wins"`
	Winrate float64 `json:"winrate"`
}

type ItemSummary struct {
	ID      int     `json:"id"`
	Count   int     `json:"count"`
	Wins    int     `json:"wins"`
	Winrate float64 `json:"winrate"`
}

// BestStats holds the superlatives. A zero Name / ID means no candidate
// met the sample threshold.
type BestStats struct {
	BestFriend TeammateSummary `json:"bestFriend"`
	BestChamp  ChampionSummary `json:"bestChamp"`
	WorstChamp ChampionSummary `json:"worstChamp"`
	BestItem   ItemSummary     `json:"bestItem"`
	WorstItem  ItemSummary     `json:"worstItem"`
}

type EnemySummary struct {
	Name  string `json:"name"`
	Games int    `json:"games"`
	// Losses is the target's losses against this enemy.
	Losses int `json:"losses,omitempty"`
	// Wins is the target's wins against this enemy.
	Wins int `json:"wins,omitempty"`
}

type NemesisStats struct {
	WorstEnemy   EnemySummary `json:"worstEnemy"`
	StompedEnemy EnemySummary `json:"stompedEnemy"`
}

func winrate(wins, games int) float64 {
	if games == 0 {
		return 0
	}
	return float64(wins) / float64(games) * 100
}

// TrendPoint is one calendar month of a player's games.
type TrendPoint struct {
	Month       string  `json:"month"` // "2006-01"
	Games       int     `json:"games"`
	Wins        int     `json:"wins"`
	Kills       int     `json:"kills"`
	Deaths      int     `json:"deaths"`
	Assists     int     `json:"assists"`
	CS          int     `json:"cs"`
	VisionScore int     `json:"visionScore"`
	Minutes     float64 `json:"minutes"`
}

func (t *TrendPoint) Winrate() float64 {
	return winrate(t.Wins, t.Games)
}

func (t *TrendPoint) KDA() float64 {
	return KDARatio(t.Kills, t.Deaths, t.Assists)
}

// CSPerMinute is 0 when no time was played.
func (t *TrendPoint) CSPerMinute() float64 {
	if t.Minutes == 0 {
		return 0
	}
	return float64(t.CS) / t.Minutes
}
