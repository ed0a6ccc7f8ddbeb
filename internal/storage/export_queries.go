package storage

import (
	"database/sql"
	"fmt"
	"strings"
)

// Overview holds database-wide counts for the summary command.
type Overview struct {
	Accounts      int
	Matches       int
	UniquePlayers int
	FetchRuns     int
	CacheEntries  int
	EarliestMatch int64 // epoch millis, 0 when empty
	LatestMatch   int64
}

// QueueCount is the number of stored matches in one queue.
type QueueCount struct {
	QueueID int
	Matches int
}

// ChampionTotal holds one player's summed stats on one champion.
type ChampionTotal struct {
	Champion string
	Games    int
	Wins     int
	Kills    int
	Deaths   int
	Assists  int
}

// PlayerTotals holds summed stats for one player across stored matches.
type PlayerTotals struct {
	PUUID   string
	Name    string
	Games   int
	Wins    int
	Kills   int
	Deaths  int
	Assists int
	Damage  int
}

// GetDBOverview returns counts across all tables.
func (db *DB) GetDBOverview() (Overview, error) {
	var ov Overview
	err := db.conn.QueryRow(`
		SELECT
			(SELECT COUNT(1) FROM accounts),
			(SELECT COUNT(1) FROM matches),
			(SELECT COUNT(DISTINCT puuid) FROM match_participants),
			(SELECT COUNT(1) FROM fetch_runs),
			(SELECT COUNT(1) FROM wrapped_cache),
			COALESCE((SELECT MIN(game_creation) FROM matches), 0),
			COALESCE((SELECT MAX(game_creation) FROM matches), 0)`).
		Scan(&ov.Accounts, &ov.Matches, &ov.UniquePlayers, &ov.FetchRuns, &ov.CacheEntries, &ov.EarliestMatch, &ov.LatestMatch)
	return ov, err
}

// QueueBreakdown returns match counts per queue, largest first.
func (db *DB) QueueBreakdown() ([]QueueCount, error) {
	rows, err := db.conn.Query(`
		SELECT queue_id, COUNT(1) FROM matches
		GROUP BY queue_id ORDER BY COUNT(1) DESC, queue_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []QueueCount
	for rows.Next() {
		var q QueueCount
		if err := rows.Scan(&q.QueueID, &q.Matches); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// ChampionTotals returns per-champion totals for puuid over matches created
// at or after since, most played first. limit <= 0 means all.
func (db *DB) ChampionTotals(puuid string, since int64, limit int) ([]ChampionTotal, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.Query(`
		SELECT p.champion_name, COUNT(1), SUM(p.win), SUM(p.kills), SUM(p.deaths), SUM(p.assists)
		FROM match_participants p
		JOIN matches m ON m.match_id = p.match_id
		WHERE p.puuid = ? AND m.game_creation >= ?
		GROUP BY p.champion_name
		ORDER BY COUNT(1) DESC, p.champion_name
		LIMIT ?`, puuid, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChampionTotal
	for rows.Next() {
		var c ChampionTotal
		if err := rows.Scan(&c.Champion, &c.Games, &c.Wins, &c.Kills, &c.Deaths, &c.Assists); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RosterTotals sums stored stats for each of puuids over matches created at
// or after since. Players with no stored matches are omitted. The name is
// the most recent display name seen.
func (db *DB) RosterTotals(puuids []string, since int64) ([]PlayerTotals, error) {
	if len(puuids) == 0 {
		return nil, nil
	}
	args := make([]interface{}, 0, len(puuids)+1)
	for _, id := range puuids {
		args = append(args, id)
	}
	args = append(args, since)

	query := fmt.Sprintf(`
		SELECT p.puuid,
		       (SELECT p2.name FROM match_participants p2
		        JOIN matches m2 ON m2.match_id = p2.match_id
		        WHERE p2.puuid = p.puuid ORDER BY m2.game_creation DESC LIMIT 1),
		       COUNT(1), SUM(p.win), SUM(p.kills), SUM(p.deaths), SUM(p.assists), SUM(p.damage)
		FROM match_participants p
		JOIN matches m ON m.match_id = p.match_id
		WHERE p.puuid IN (%s) AND m.game_creation >= ?
		GROUP BY p.puuid
		ORDER BY COUNT(1) DESC, p.puuid`, placeholders(len(puuids)))

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerTotals
	for rows.Next() {
		var p PlayerTotals
		if err := rows.Scan(&p.PUUID, &p.Name, &p.Games, &p.Wins, &p.Kills, &p.Deaths, &p.Assists, &p.Damage); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// QueryRaw runs an arbitrary query and returns column names and stringified rows.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]sql.RawBytes, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			if v == nil {
				row[i] = "NULL"
			} else {
				row[i] = string(v)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

// placeholders returns a comma-separated string of n "?" for SQL IN clauses,
// e.g. placeholders(3) → "?,?,?".
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
