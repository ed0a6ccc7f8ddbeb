package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pable/lol-wrapped/internal/model"
)

// AccountSummary is an account with its stored match count.
type AccountSummary struct {
	model.Account
	Matches    int
	LastPlayed int64 // epoch millis of the newest stored match, 0 if none
}

// UpsertAccount inserts or refreshes an account record.
func (db *DB) UpsertAccount(a model.Account) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO accounts(puuid, game_name, tag_line, region, summoner_level, profile_icon_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.PUUID, a.GameName, a.TagLine, a.Region, a.SummonerLevel, a.ProfileIconID, a.UpdatedAt,
	)
	return err
}

const accountColumns = `puuid, game_name, tag_line, region, summoner_level, profile_icon_id, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (*model.Account, error) {
	var a model.Account
	err := row.Scan(&a.PUUID, &a.GameName, &a.TagLine, &a.Region, &a.SummonerLevel, &a.ProfileIconID, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAccount returns the stored account for puuid, or nil if unknown.
func (db *DB) GetAccount(puuid string) (*model.Account, error) {
	return scanAccount(db.conn.QueryRow(`SELECT `+accountColumns+` FROM accounts WHERE puuid = ?`, puuid))
}

// FindAccountByRiotID looks up an account by game name and tag, case-insensitively.
func (db *DB) FindAccountByRiotID(gameName, tagLine string) (*model.Account, error) {
	return scanAccount(db.conn.QueryRow(`
		SELECT `+accountColumns+` FROM accounts
		WHERE game_name = ? AND tag_line = ? LIMIT 1`, gameName, tagLine))
}

// ListAccounts returns all accounts with their stored match counts, most matches first.
func (db *DB) ListAccounts() ([]AccountSummary, error) {
	rows, err := db.conn.Query(`
		SELECT a.puuid, a.game_name, a.tag_line, a.region, a.summoner_level, a.profile_icon_id, a.updated_at,
		       COUNT(p.match_id), COALESCE(MAX(m.game_creation), 0)
		FROM accounts a
		LEFT JOIN match_participants p ON p.puuid = a.puuid
		LEFT JOIN matches m ON m.match_id = p.match_id
		GROUP BY a.puuid
		ORDER BY COUNT(p.match_id) DESC, a.game_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AccountSummary
	for rows.Next() {
		var s AccountSummary
		if err := rows.Scan(&s.PUUID, &s.GameName, &s.TagLine, &s.Region, &s.SummonerLevel,
			&s.ProfileIconID, &s.UpdatedAt, &s.Matches, &s.LastPlayed); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// MatchExists returns true if a match with the given id is already stored.
func (db *DB) MatchExists(matchID string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM matches WHERE match_id = ?", matchID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MatchIDs returns every stored match id.
func (db *DB) MatchIDs() ([]string, error) {
	rows, err := db.conn.Query(`SELECT match_id FROM matches`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// InsertMatch stores the raw payload of m (compressed) and its participant
// rows in one transaction. Uses INSERT OR REPLACE for idempotency.
func (db *DB) InsertMatch(raw []byte, m *model.Match) error {
	if m.Metadata.MatchID == "" {
		return fmt.Errorf("insert match: empty match id")
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Replacing a match row cascades to its participants.
	if _, err := tx.Exec(`DELETE FROM matches WHERE match_id = ?`, m.Metadata.MatchID); err != nil {
		return fmt.Errorf("clear match %s: %w", m.Metadata.MatchID, err)
	}
	_, err = tx.Exec(`
		INSERT INTO matches(match_id, game_creation, game_duration, queue_id, game_version, payload)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.Metadata.MatchID, m.Info.GameCreation, m.Info.GameDuration, m.Info.QueueID,
		m.Info.GameVersion, compress(raw),
	)
	if err != nil {
		return fmt.Errorf("insert match %s: %w", m.Metadata.MatchID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO match_participants(
			match_id, slot, puuid, name, champion_name, team_id, position, win,
			kills, deaths, assists, cs, gold, damage, vision_score
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range m.Info.Participants {
		p := &m.Info.Participants[i]
		_, err = stmt.Exec(
			m.Metadata.MatchID, i, p.PUUID, p.DisplayName(), p.ChampionName, int(p.TeamID), p.TeamPosition,
			boolInt(p.Win), p.Kills, p.Deaths, p.Assists, p.CS(), p.GoldEarned,
			p.TotalDamageDealtToChampions, p.VisionScore,
		)
		if err != nil {
			return fmt.Errorf("insert match_participants for %s/%d: %w", m.Metadata.MatchID, i, err)
		}
	}
	return tx.Commit()
}

// GetMatchRaw returns the decompressed JSON payload, or nil if not stored.
func (db *DB) GetMatchRaw(matchID string) ([]byte, error) {
	var blob []byte
	err := db.conn.QueryRow(`SELECT payload FROM matches WHERE match_id = ?`, matchID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decompress(blob)
}

// GetMatch returns the decoded match, or nil if not stored.
func (db *DB) GetMatch(matchID string) (*model.Match, error) {
	raw, err := db.GetMatchRaw(matchID)
	if err != nil || raw == nil {
		return nil, err
	}
	return decodeMatch(matchID, raw)
}

// GetMatchByPrefix finds the first match whose id starts with the given prefix.
func (db *DB) GetMatchByPrefix(prefix string) (*model.Match, error) {
	var id string
	err := db.conn.QueryRow(`
		SELECT match_id FROM matches WHERE match_id LIKE ?
		ORDER BY game_creation DESC LIMIT 1`, prefix+"%").Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return db.GetMatch(id)
}

// ListMatches returns match refs for puuid, newest first. limit <= 0 means all.
func (db *DB) ListMatches(puuid string, limit int) ([]model.MatchRef, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.Query(`
		SELECT m.match_id, m.game_creation, m.game_duration, m.queue_id
		FROM matches m
		JOIN match_participants p ON p.match_id = m.match_id
		WHERE p.puuid = ?
		ORDER BY m.game_creation DESC
		LIMIT ?`, puuid, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchRef
	for rows.Next() {
		var r model.MatchRef
		if err := rows.Scan(&r.MatchID, &r.GameCreation, &r.GameDuration, &r.QueueID); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MatchesForPlayer decodes every stored match that includes puuid and was
// created at or after since (epoch millis), oldest first.
func (db *DB) MatchesForPlayer(puuid string, since int64) ([]model.Match, error) {
	rows, err := db.conn.Query(`
		SELECT m.match_id, m.payload
		FROM matches m
		JOIN match_participants p ON p.match_id = m.match_id
		WHERE p.puuid = ? AND m.game_creation >= ?
		ORDER BY m.game_creation`, puuid, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Match
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, err
		}
		raw, err := decompress(blob)
		if err != nil {
			return nil, fmt.Errorf("match %s: %w", id, err)
		}
		m, err := decodeMatch(id, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func decodeMatch(id string, raw []byte) (*model.Match, error) {
	var m model.Match
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode match %s: %w", id, err)
	}
	return &m, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
