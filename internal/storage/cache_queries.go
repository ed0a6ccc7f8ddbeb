package storage

import (
	"database/sql"
	"fmt"
	"strings"
)

// GetCacheEntry returns the decompressed payload stored under key, or nil if absent.
func (db *DB) GetCacheEntry(key string) ([]byte, error) {
	var blob []byte
	err := db.conn.QueryRow(`SELECT payload FROM wrapped_cache WHERE cache_key = ?`, key).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decompress(blob)
}

// PutCacheEntry stores payload under key, replacing any previous value.
func (db *DB) PutCacheEntry(key string, payload []byte, updatedAt int64) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO wrapped_cache(cache_key, payload, updated_at) VALUES (?, ?, ?)`,
		key, compress(payload), updatedAt)
	return err
}

// DeleteCacheEntry removes key. Deleting a missing key is not an error.
func (db *DB) DeleteCacheEntry(key string) error {
	_, err := db.conn.Exec(`DELETE FROM wrapped_cache WHERE cache_key = ?`, key)
	return err
}

// ClearCacheEntries removes every cached Wrapped summary and returns how
// many were deleted.
func (db *DB) ClearCacheEntries() (int64, error) {
	res, err := db.conn.Exec(`DELETE FROM wrapped_cache`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Fetch run states.
const (
	RunRunning = "running"
	RunDone    = "done"
	RunFailed  = "failed"
)

// FetchRun records one fetch invocation for a player.
type FetchRun struct {
	RunID          string
	PUUID          string
	Region         string
	StartedAt      int64
	FinishedAt     int64
	IDsFound       int
	MatchesFetched int
	MatchesKnown   int
	MatchesFailed  int
	Status         string
	Error          string
}

// SaveFetchRun inserts or updates a fetch run row.
func (db *DB) SaveFetchRun(r FetchRun) error {
	if r.RunID == "" {
		return fmt.Errorf("save fetch run: empty run id")
	}
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO fetch_runs(
			run_id, puuid, region, started_at, finished_at,
			ids_found, matches_fetched, matches_known, matches_failed, status, error
		) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		r.RunID, r.PUUID, r.Region, r.StartedAt, r.FinishedAt,
		r.IDsFound, r.MatchesFetched, r.MatchesKnown, r.MatchesFailed, r.Status, r.Error,
	)
	return err
}

// ListFetchRuns returns the most recent runs, newest first. An empty puuid
// lists runs for every player.
func (db *DB) ListFetchRuns(puuid string, limit int) ([]FetchRun, error) {
	if limit <= 0 {
		limit = -1
	}
	q := `
		SELECT run_id, puuid, region, started_at, finished_at,
		       ids_found, matches_fetched, matches_known, matches_failed, status, error
		FROM fetch_runs`
	var args []any
	if puuid != "" {
		q += ` WHERE puuid = ?`
		args = append(args, puuid)
	}
	q += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.Query(strings.TrimSpace(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FetchRun
	for rows.Next() {
		var r FetchRun
		if err := rows.Scan(&r.RunID, &r.PUUID, &r.Region, &r.StartedAt, &r.FinishedAt,
			&r.IDsFound, &r.MatchesFetched, &r.MatchesKnown, &r.MatchesFailed, &r.Status, &r.Error); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
