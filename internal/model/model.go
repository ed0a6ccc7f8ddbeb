package model

// Side is the team a participant plays on.
type Side int

const (
	SideBlue Side = 100
	SideRed  Side = 200
)

func (s Side) String() string {
	switch s {
	case SideBlue:
		return "Blue"
	case SideRed:
		return "Red"
	default:
		return "?"
	}
}

// Queue ids with special handling in the aggregator.
const (
	QueueNormalDraft = 400
	QueueRankedSolo  = 420
	QueueNormalBlind = 430
	QueueRankedFlex  = 440
	QueueARAM        = 450
	QueueQuickplay   = 490
	QueueARURF       = 900
	QueueArena       = 1700
	QueueURF         = 1900
)

var queueNames = map[int]string{
	0:                "Custom",
	QueueNormalDraft: "Normal Draft",
	QueueRankedSolo:  "Ranked Solo",
	QueueNormalBlind: "Normal Blind",
	QueueRankedFlex:  "Ranked Flex",
	QueueARAM:        "ARAM",
	QueueQuickplay:   "Quickplay",
	QueueARURF:       "ARURF",
	QueueArena:       "Arena",
	QueueURF:         "URF",
}

// QueueName returns the display label for a queue id, or "Unknown".
func QueueName(queueID int) string {
	if name, ok := queueNames[queueID]; ok {
		return name
	}
	return "Unknown"
}

// ---- Riot match-v5 payload ----

// Match is one completed game as returned by /lol/match/v5/matches/{id}.
type Match struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"` // PUUIDs
}

type MatchInfo struct {
	GameCreation int64         `json:"gameCreation"` // epoch millis
	GameDuration int           `json:"gameDuration"` // seconds
	GameMode     string        `json:"gameMode"`
	GameType     string        `json:"gameType"`
	GameVersion  string        `json:"gameVersion"`
	QueueID      int           `json:"queueId"`
	Participants []Participant `json:"participants"`
	Teams        []Team        `json:"teams"`
}

// Participant returns the record for puuid, or nil if the player is not in the match.
func (m *Match) Participant(puuid string) *Participant {
	for i := range m.Info.Participants {
		if m.Info.Participants[i].PUUID == puuid {
			return &m.Info.Participants[i]
		}
	}
	return nil
}

// Team returns the team record for side, or nil.
func (m *Match) Team(side Side) *Team {
	for i := range m.Info.Teams {
		if m.Info.Teams[i].TeamID == side {
			return &m.Info.Teams[i]
		}
	}
	return nil
}

type Participant struct {
	PUUID          string `json:"puuid"`
	SummonerName   string `json:"summonerName"`
	RiotIDGameName string `json:"riotIdGameName"`
	RiotIDTagline  string `json:"riotIdTagline"`
	ChampionName   string `json:"championName"`
	ChampionID     int    `json:"championId"`
	ChampLevel     int    `json:"champLevel"`
	TeamID         Side   `json:"teamId"`
	TeamPosition   string `json:"teamPosition"`
	Win            bool   `json:"win"`

	Kills   int `json:"kills"`
	Deaths  int `json:"deaths"`
	Assists int `json:"assists"`

	// Combat
	TotalDamageDealtToChampions int `json:"totalDamageDealtToChampions"`
	TotalDamageTaken            int `json:"totalDamageTaken"`
	DamageSelfMitigated         int `json:"damageSelfMitigated"`
	TotalHeal                   int `json:"totalHeal"`
	TimeCCingOthers             int `json:"timeCCingOthers"`

	FirstBloodKill   bool `json:"firstBloodKill"`
	FirstBloodAssist bool `json:"firstBloodAssist"`

	// Economy & farming
	GoldEarned           int `json:"goldEarned"`
	TotalMinionsKilled   int `json:"totalMinionsKilled"`
	NeutralMinionsKilled int `json:"neutralMinionsKilled"`

	// Vision
	VisionScore         int `json:"visionScore"`
	WardsPlaced         int `json:"wardsPlaced"`
	WardsKilled         int `json:"wardsKilled"`
	DetectorWardsPlaced int `json:"detectorWardsPlaced"`

	Item0 int `json:"item0"`
	Item1 int `json:"item1"`
	Item2 int `json:"item2"`
	Item3 int `json:"item3"`
	Item4 int `json:"item4"`
	Item5 int `json:"item5"`
	Item6 int `json:"item6"` // trinket

	Summoner1ID int `json:"summoner1Id"`
	Summoner2ID int `json:"summoner2Id"`

	// Ability casts per slot (Q, W, E, R).
	Spell1Casts int `json:"spell1Casts"`
	Spell2Casts int `json:"spell2Casts"`
	Spell3Casts int `json:"spell3Casts"`
	Spell4Casts int `json:"spell4Casts"`

	DoubleKills int `json:"doubleKills"`
	TripleKills int `json:"tripleKills"`
	QuadraKills int `json:"quadraKills"`
	PentaKills  int `json:"pentaKills"`

	TotalTimeSpentDead int `json:"totalTimeSpentDead"`

	// Arena
	Placement      int `json:"placement"`
	PlayerAugment1 int `json:"playerAugment1"`
	PlayerAugment2 int `json:"playerAugment2"`
	PlayerAugment3 int `json:"playerAugment3"`
	PlayerAugment4 int `json:"playerAugment4"`

	// Pings. Older payloads omit some of these; absent decodes to 0.
	AllInPings         int `json:"allInPings"`
	AssistMePings      int `json:"assistMePings"`
	BaitPings          int `json:"baitPings"`
	BasicPings         int `json:"basicPings"`
	CommandPings       int `json:"commandPings"`
	DangerPings        int `json:"dangerPings"`
	EnemyMissingPings  int `json:"enemyMissingPings"`
	EnemyVisionPings   int `json:"enemyVisionPings"`
	GetBackPings       int `json:"getBackPings"`
	NeedVisionPings    int `json:"needVisionPings"`
	OnMyWayPings       int `json:"onMyWayPings"`
	PushPings          int `json:"pushPings"`
	VisionClearedPings int `json:"visionClearedPings"`

	Challenges *Challenges `json:"challenges,omitempty"`
}

// Challenges holds the subset of derived counters the aggregator reads.
// The payload carries hundreds more; they are ignored on decode.
type Challenges struct {
	ScuttleCrabKills                 int     `json:"scuttleCrabKills"`
	TakedownsBeforeJungleMinionSpawn int     `json:"takedownsBeforeJungleMinionSpawn"`
	SnowballsHit                     int     `json:"snowballsHit"`
	Placement                        int     `json:"placement"`
	KDA                              float64 `json:"kda"`
	KillParticipation                float64 `json:"killParticipation"`
}

// DisplayName returns the Riot ID game name, falling back to the legacy
// summoner name, then "Unknown" (bots and customs can have neither).
func (p *Participant) DisplayName() string {
	switch {
	case p.RiotIDGameName != "":
		return p.RiotIDGameName
	case p.SummonerName != "":
		return p.SummonerName
	default:
		return "Unknown"
	}
}

// Items returns the seven item slots in slot order (0 = empty).
func (p *Participant) Items() [7]int {
	return [7]int{p.Item0, p.Item1, p.Item2, p.Item3, p.Item4, p.Item5, p.Item6}
}

// Augments returns the non-empty Arena augment ids.
func (p *Participant) Augments() []int {
	var out []int
	for _, a := range [4]int{p.PlayerAugment1, p.PlayerAugment2, p.PlayerAugment3, p.PlayerAugment4} {
		if a != 0 {
			out = append(out, a)
		}
	}
	return out
}

// CS is lane minions plus neutral monsters.
func (p *Participant) CS() int {
	return p.TotalMinionsKilled + p.NeutralMinionsKilled
}

// KDA returns (kills+assists)/max(1,deaths).
func (p *Participant) KDA() float64 {
	return KDARatio(p.Kills, p.Deaths, p.Assists)
}

// KDARatio returns (kills+assists)/max(1,deaths).
func KDARatio(kills, deaths, assists int) float64 {
	d := deaths
	if d < 1 {
		d = 1
	}
	return float64(kills+assists) / float64(d)
}

type Team struct {
	TeamID     Side           `json:"teamId"`
	Win        bool           `json:"win"`
	Objectives TeamObjectives `json:"objectives"`
}

type TeamObjectives struct {
	Baron      Objective `json:"baron"`
	Dragon     Objective `json:"dragon"`
	Tower      Objective `json:"tower"`
	RiftHerald Objective `json:"riftHerald"`
}

type Objective struct {
	First bool `json:"first"`
	Kills int  `json:"kills"`
}

// MatchRef is a lightweight record for list/show commands.
type MatchRef struct {
	MatchID      string
	GameCreation int64
	GameDuration int
	QueueID      int
}

// Account is a resolved Riot account stored locally.
type Account struct {
	PUUID         string
	GameName      string
	TagLine       string
	Region        string
	SummonerLevel int
	ProfileIconID int
	UpdatedAt     int64
}

// RiotID returns "GameName#TagLine".
func (a *Account) RiotID() string {
	return a.GameName + "#" + a.TagLine
}
