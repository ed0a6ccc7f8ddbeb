package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/pable/lol-wrapped/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// testMatch builds a two-player match and its raw JSON payload.
func testMatch(t *testing.T, id string, created int64, queue int, champ string, win bool) ([]byte, *model.Match) {
	t.Helper()
	m := &model.Match{
		Metadata: model.MatchMetadata{MatchID: id, Participants: []string{"p1", "p2"}},
		Info: model.MatchInfo{
			GameCreation: created,
			GameDuration: 1500,
			QueueID:      queue,
			Participants: []model.Participant{
				{PUUID: "p1", RiotIDGameName: "Alice", ChampionName: champ, TeamID: model.SideBlue, Win: win,
					Kills: 5, Deaths: 2, Assists: 7, TotalMinionsKilled: 150, GoldEarned: 11000},
				{PUUID: "p2", RiotIDGameName: "Bob", ChampionName: "Garen", TeamID: model.SideRed, Win: !win,
					Kills: 2, Deaths: 5, Assists: 1},
			},
		},
	}
	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	return raw, m
}

func insertMatch(t *testing.T, db *DB, id string, created int64, queue int, champ string, win bool) {
	t.Helper()
	raw, m := testMatch(t, id, created, queue, champ, win)
	if err := db.InsertMatch(raw, m); err != nil {
		t.Fatalf("InsertMatch %s: %v", id, err)
	}
}

func TestOpen_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wrapped.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	db.Close()

	// Re-opening applies the schema again without error.
	db, err = Open(path)
	if err != nil {
		t.Fatalf("re-Open: %v", err)
	}
	db.Close()
}

func TestAccountUpsertAndLookup(t *testing.T) {
	db := openMemDB(t)

	acc := model.Account{PUUID: "p1", GameName: "Alice", TagLine: "EUW", Region: "EUW", SummonerLevel: 120, UpdatedAt: 1}
	if err := db.UpsertAccount(acc); err != nil {
		t.Fatalf("UpsertAccount: %v", err)
	}
	acc.SummonerLevel = 121
	if err := db.UpsertAccount(acc); err != nil {
		t.Fatalf("second UpsertAccount should succeed (idempotent): %v", err)
	}

	got, err := db.GetAccount("p1")
	if err != nil || got == nil {
		t.Fatalf("GetAccount: %v, %v", got, err)
	}
	if got.SummonerLevel != 121 || got.RiotID() != "Alice#EUW" {
		t.Errorf("account: got %+v", got)
	}

	byID, err := db.FindAccountByRiotID("alice", "euw")
	if err != nil {
		t.Fatalf("FindAccountByRiotID: %v", err)
	}
	if byID == nil || byID.PUUID != "p1" {
		t.Errorf("case-insensitive lookup failed: %+v", byID)
	}

	missing, err := db.GetAccount("nobody")
	if err != nil || missing != nil {
		t.Errorf("expected nil for unknown account, got %+v, %v", missing, err)
	}
}

func TestMatchInsertAndExists(t *testing.T) {
	db := openMemDB(t)
	insertMatch(t, db, "EUW1_1", 1000, model.QueueRankedSolo, "Ahri", true)

	exists, err := db.MatchExists("EUW1_1")
	if err != nil {
		t.Fatalf("MatchExists: %v", err)
	}
	if !exists {
		t.Error("expected match to exist after insert")
	}
	exists2, _ := db.MatchExists("EUW1_404")
	if exists2 {
		t.Error("expected non-existent match to not exist")
	}

	// Re-inserting replaces rather than duplicating participants.
	insertMatch(t, db, "EUW1_1", 1000, model.QueueRankedSolo, "Ahri", true)
	refs, err := db.ListMatches("p1", 0)
	if err != nil {
		t.Fatalf("ListMatches: %v", err)
	}
	if len(refs) != 1 {
		t.Errorf("expected 1 match after re-insert, got %d", len(refs))
	}
}

func TestMatchPayloadRoundTrip(t *testing.T) {
	db := openMemDB(t)
	raw, m := testMatch(t, "EUW1_7", 5000, model.QueueARAM, "Lux", false)
	if err := db.InsertMatch(raw, m); err != nil {
		t.Fatalf("InsertMatch: %v", err)
	}

	gotRaw, err := db.GetMatchRaw("EUW1_7")
	if err != nil {
		t.Fatalf("GetMatchRaw: %v", err)
	}
	if !bytes.Equal(gotRaw, raw) {
		t.Error("raw payload changed through compression")
	}

	got, err := db.GetMatch("EUW1_7")
	if err != nil || got == nil {
		t.Fatalf("GetMatch: %v, %v", got, err)
	}
	p := got.Participant("p1")
	if p == nil || p.ChampionName != "Lux" || p.GoldEarned != 11000 {
		t.Errorf("decoded participant: %+v", p)
	}

	none, err := db.GetMatch("EUW1_0")
	if err != nil || none != nil {
		t.Errorf("expected nil for unknown match, got %v, %v", none, err)
	}
}

func TestGetMatchByPrefix(t *testing.T) {
	db := openMemDB(t)
	insertMatch(t, db, "EUW1_7001", 1000, model.QueueRankedSolo, "Ahri", true)
	insertMatch(t, db, "KR_123", 2000, model.QueueRankedSolo, "Ahri", true)

	m, err := db.GetMatchByPrefix("EUW1_70")
	if err != nil {
		t.Fatalf("GetMatchByPrefix: %v", err)
	}
	if m == nil || m.Metadata.MatchID != "EUW1_7001" {
		t.Fatalf("expected EUW1_7001, got %+v", m)
	}

	m2, err := db.GetMatchByPrefix("NA1_")
	if err != nil {
		t.Fatalf("GetMatchByPrefix no-match: %v", err)
	}
	if m2 != nil {
		t.Error("expected nil for unknown prefix")
	}
}

func TestMatchesForPlayer_WindowAndOrder(t *testing.T) {
	db := openMemDB(t)
	insertMatch(t, db, "M3", 3000, model.QueueRankedSolo, "Ahri", true)
	insertMatch(t, db, "M1", 1000, model.QueueRankedSolo, "Ahri", false)
	insertMatch(t, db, "M2", 2000, model.QueueARAM, "Lux", true)

	ms, err := db.MatchesForPlayer("p1", 1500)
	if err != nil {
		t.Fatalf("MatchesForPlayer: %v", err)
	}
	if len(ms) != 2 {
		t.Fatalf("expected 2 matches in window, got %d", len(ms))
	}
	if ms[0].Metadata.MatchID != "M2" || ms[1].Metadata.MatchID != "M3" {
		t.Errorf("expected oldest first, got %s, %s", ms[0].Metadata.MatchID, ms[1].Metadata.MatchID)
	}

	refs, err := db.ListMatches("p1", 2)
	if err != nil {
		t.Fatalf("ListMatches: %v", err)
	}
	if len(refs) != 2 || refs[0].MatchID != "M3" {
		t.Errorf("expected newest first with limit, got %+v", refs)
	}
}

func TestListAccountsCountsMatches(t *testing.T) {
	db := openMemDB(t)
	db.UpsertAccount(model.Account{PUUID: "p1", GameName: "Alice", TagLine: "EUW", Region: "EUW"})
	db.UpsertAccount(model.Account{PUUID: "p9", GameName: "Zed", TagLine: "EUW", Region: "EUW"})
	insertMatch(t, db, "M1", 1000, model.QueueRankedSolo, "Ahri", true)
	insertMatch(t, db, "M2", 4000, model.QueueRankedSolo, "Ahri", true)

	list, err := db.ListAccounts()
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(list))
	}
	if list[0].PUUID != "p1" || list[0].Matches != 2 || list[0].LastPlayed != 4000 {
		t.Errorf("first account: got %+v", list[0])
	}
	if list[1].Matches != 0 || list[1].LastPlayed != 0 {
		t.Errorf("account without matches: got %+v", list[1])
	}
}

func TestOverviewAndBreakdowns(t *testing.T) {
	db := openMemDB(t)
	db.UpsertAccount(model.Account{PUUID: "p1", GameName: "Alice", TagLine: "EUW", Region: "EUW"})
	for i := 0; i < 3; i++ {
		insertMatch(t, db, fmt.Sprintf("S%d", i), int64(1000+i), model.QueueRankedSolo, "Ahri", i != 1)
	}
	insertMatch(t, db, "A1", 900, model.QueueARAM, "Lux", true)

	ov, err := db.GetDBOverview()
	if err != nil {
		t.Fatalf("GetDBOverview: %v", err)
	}
	if ov.Accounts != 1 || ov.Matches != 4 || ov.UniquePlayers != 2 {
		t.Errorf("overview counts: %+v", ov)
	}
	if ov.EarliestMatch != 900 || ov.LatestMatch != 1002 {
		t.Errorf("overview range: %+v", ov)
	}

	queues, err := db.QueueBreakdown()
	if err != nil {
		t.Fatalf("QueueBreakdown: %v", err)
	}
	if len(queues) != 2 || queues[0].QueueID != model.QueueRankedSolo || queues[0].Matches != 3 {
		t.Errorf("queues: %+v", queues)
	}

	champs, err := db.ChampionTotals("p1", 0, 1)
	if err != nil {
		t.Fatalf("ChampionTotals: %v", err)
	}
	if len(champs) != 1 || champs[0].Champion != "Ahri" || champs[0].Games != 3 || champs[0].Wins != 2 {
		t.Errorf("champion totals: %+v", champs)
	}

	roster, err := db.RosterTotals([]string{"p1", "p2", "ghost"}, 950)
	if err != nil {
		t.Fatalf("RosterTotals: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("roster: expected 2 players, got %+v", roster)
	}
	if roster[0].Games != 3 || roster[0].Kills != 15 {
		t.Errorf("roster[0]: %+v", roster[0])
	}
	if empty, _ := db.RosterTotals(nil, 0); empty != nil {
		t.Error("expected nil roster for no puuids")
	}
}

func TestCacheEntryRoundTrip(t *testing.T) {
	db := openMemDB(t)

	got, err := db.GetCacheEntry("poro-wrapped-p1")
	if err != nil || got != nil {
		t.Fatalf("expected miss, got %q, %v", got, err)
	}

	payload := []byte(`{"version":"1.0.1","stats":{"totalGames":3}}`)
	if err := db.PutCacheEntry("poro-wrapped-p1", payload, 42); err != nil {
		t.Fatalf("PutCacheEntry: %v", err)
	}
	got, err = db.GetCacheEntry("poro-wrapped-p1")
	if err != nil || !bytes.Equal(got, payload) {
		t.Fatalf("GetCacheEntry: got %q, %v", got, err)
	}

	if err := db.DeleteCacheEntry("poro-wrapped-p1"); err != nil {
		t.Fatalf("DeleteCacheEntry: %v", err)
	}
	if got, _ := db.GetCacheEntry("poro-wrapped-p1"); got != nil {
		t.Error("entry still present after delete")
	}
}

func TestClearCacheEntries(t *testing.T) {
	db := openMemDB(t)
	for _, key := range []string{"poro-wrapped-p1", "poro-wrapped-p2"} {
		if err := db.PutCacheEntry(key, []byte(`{}`), 1); err != nil {
			t.Fatal(err)
		}
	}
	ov, err := db.GetDBOverview()
	if err != nil {
		t.Fatal(err)
	}
	if ov.CacheEntries != 2 {
		t.Errorf("overview cache entries: got %d, want 2", ov.CacheEntries)
	}

	n, err := db.ClearCacheEntries()
	if err != nil {
		t.Fatalf("ClearCacheEntries: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted: got %d, want 2", n)
	}
	if got, _ := db.GetCacheEntry("poro-wrapped-p1"); got != nil {
		t.Error("entry still present after clear")
	}
}

func TestFetchRuns(t *testing.T) {
	db := openMemDB(t)

	run := FetchRun{RunID: "r1", PUUID: "p1", Region: "EUW", StartedAt: 10, Status: RunRunning}
	if err := db.SaveFetchRun(run); err != nil {
		t.Fatalf("SaveFetchRun: %v", err)
	}
	run.Status = RunDone
	run.MatchesFetched = 12
	run.FinishedAt = 20
	if err := db.SaveFetchRun(run); err != nil {
		t.Fatalf("update SaveFetchRun: %v", err)
	}
	db.SaveFetchRun(FetchRun{RunID: "r2", PUUID: "p2", Region: "KR", StartedAt: 30, Status: RunFailed, Error: "boom"})

	runs, err := db.ListFetchRuns("p1", 10)
	if err != nil {
		t.Fatalf("ListFetchRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != RunDone || runs[0].MatchesFetched != 12 {
		t.Errorf("runs for p1: %+v", runs)
	}

	all, _ := db.ListFetchRuns("", 0)
	if len(all) != 2 || all[0].RunID != "r2" {
		t.Errorf("all runs: %+v", all)
	}

	if err := db.SaveFetchRun(FetchRun{}); err == nil {
		t.Error("expected error for empty run id")
	}
}

func TestQueryRaw(t *testing.T) {
	db := openMemDB(t)
	insertMatch(t, db, "M1", 1000, model.QueueRankedSolo, "Ahri", true)

	cols, rows, err := db.QueryRaw("SELECT name, kills FROM match_participants ORDER BY slot")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(cols) != 2 || cols[0] != "name" {
		t.Errorf("cols: %v", cols)
	}
	if len(rows) != 2 || rows[0][0] != "Alice" || rows[0][1] != "5" {
		t.Errorf("rows: %v", rows)
	}

	if _, _, err := db.QueryRaw("SELECT * FROM nope"); err == nil {
		t.Error("expected error for unknown table")
	}
}
