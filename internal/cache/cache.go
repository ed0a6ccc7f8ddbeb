// Package cache stores computed Wrapped results keyed by player, tagged with
// a format version so results from an older aggregator are never served.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pable/lol-wrapped/internal/logging"
	"github.com/pable/lol-wrapped/internal/model"
)

// Version is bumped whenever AggregateStats changes shape or meaning.
const Version = "1.0.1"

const keyPrefix = "poro-wrapped-"

// Entries larger than this are saved stats-only.
const defaultMaxEntrySize = 16 << 20

var (
	ErrMiss     = errors.New("cache: no entry")
	ErrStale    = errors.New("cache: entry written by a different version")
	ErrTooLarge = errors.New("cache: entry exceeds size limit")
)

// Entry is one cached Wrapped result.
type Entry struct {
	PUUID     string               `json:"puuid"`
	Stats     model.AggregateStats `json:"stats"`
	Matches   []model.Match        `json:"matches"`
	Timestamp int64                `json:"timestamp"` // epoch millis
	Version   string               `json:"version"`
	// WindowDays is the match window the stats were computed over; 0 means
	// all stored matches. Nil for entries written without one.
	WindowDays *int `json:"windowDays,omitempty"`
}

// requiredShape lists the fields a usable entry must carry beyond the version.
type requiredShape struct {
	Stats *struct {
		AbilityCasts *json.RawMessage `json:"abilityCasts"`
	} `json:"stats"`
	Matches *json.RawMessage `json:"matches"`
}

func (r requiredShape) complete() bool {
	return r.Stats != nil && r.Stats.AbilityCasts != nil && r.Matches != nil &&
		string(*r.Matches) != "null" && string(*r.Stats.AbilityCasts) != "null"
}

// Store is a byte-oriented key/value backend. Get returns (nil, nil) on a miss.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Key returns the storage key for puuid.
func Key(puuid string) string {
	return keyPrefix + puuid
}

// Cache wraps a Store with versioning and the stats-only fallback.
type Cache struct {
	store        Store
	maxEntrySize int
	now          func() time.Time
	log          logging.Interface
}

// Option configures a Cache.
type Option func(*Cache)

// WithMaxEntrySize sets the encoded size above which Save drops the match list.
func WithMaxEntrySize(n int) Option {
	return func(c *Cache) {
		c.maxEntrySize = n
	}
}

// WithLogger sets the logger used for fallback and eviction notices.
func WithLogger(l logging.Interface) Option {
	return func(c *Cache) {
		c.log = l
	}
}

// WithClock overrides time.Now for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New returns a Cache backed by store.
func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:        store,
		maxEntrySize: defaultMaxEntrySize,
		now:          time.Now,
		log:          logging.Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the entry for puuid. It returns ErrMiss when nothing usable is
// stored and ErrStale when the entry has another version or lacks required
// fields. Stale and corrupt entries are deleted.
func (c *Cache) Load(ctx context.Context, puuid string) (*Entry, error) {
	key := Key(puuid)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	if data == nil {
		return nil, ErrMiss
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.log.Warnf("dropping unreadable cache entry %s: %v", key, err)
		c.evict(ctx, key)
		return nil, ErrMiss
	}
	if e.Version != Version {
		c.log.Infof("cache entry %s has version %q, want %q; recomputing", key, e.Version, Version)
		c.evict(ctx, key)
		return nil, ErrStale
	}
	var shape requiredShape
	if err := json.Unmarshal(data, &shape); err != nil || !shape.complete() {
		c.log.Infof("cache entry %s is missing required fields; recomputing", key)
		c.evict(ctx, key)
		return nil, ErrStale
	}
	return &e, nil
}

// LoadWindow is Load restricted to entries computed over windowDays. An entry
// for another window is reported as ErrMiss and left for Save to replace.
func (c *Cache) LoadWindow(ctx context.Context, puuid string, windowDays int) (*Entry, error) {
	e, err := c.Load(ctx, puuid)
	if err != nil {
		return nil, err
	}
	if e.WindowDays == nil || *e.WindowDays != normalizeDays(windowDays) {
		return nil, fmt.Errorf("%w for a %d-day window", ErrMiss, normalizeDays(windowDays))
	}
	return e, nil
}

// normalizeDays folds every "no window" value to 0.
func normalizeDays(days int) int {
	if days < 0 {
		return 0
	}
	return days
}

func (c *Cache) evict(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, key); err != nil {
		c.log.Warnf("delete cache entry %s: %v", key, err)
	}
}

// Save stores stats computed over windowDays together with matches. If that
// write fails it retries with an empty match list; statsOnly reports whether
// the fallback was used.
func (c *Cache) Save(ctx context.Context, puuid string, windowDays int, stats model.AggregateStats, matches []model.Match) (statsOnly bool, err error) {
	days := normalizeDays(windowDays)
	e := Entry{
		PUUID:      puuid,
		Stats:      stats,
		Matches:    matches,
		Timestamp:  c.now().UnixMilli(),
		Version:    Version,
		WindowDays: &days,
	}
	if e.Matches == nil {
		e.Matches = []model.Match{}
	}

	fullErr := c.put(ctx, &e)
	if fullErr == nil {
		return false, nil
	}
	c.log.Warnf("saving %s with matches failed (%v); retrying with stats only", Key(puuid), fullErr)

	e.Matches = []model.Match{}
	if err := c.put(ctx, &e); err != nil {
		return false, fmt.Errorf("cache save %s: %w", Key(puuid), err)
	}
	return true, nil
}

func (c *Cache) put(ctx context.Context, e *Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if c.maxEntrySize > 0 && len(data) > c.maxEntrySize {
		return fmt.Errorf("%w (%d > %d bytes)", ErrTooLarge, len(data), c.maxEntrySize)
	}
	return c.store.Put(ctx, Key(e.PUUID), data)
}

// Clear deletes the entry for puuid.
func (c *Cache) Clear(ctx context.Context, puuid string) error {
	return c.store.Delete(ctx, Key(puuid))
}

// Export writes the entry for puuid computed over windowDays as indented JSON.
func (c *Cache) Export(ctx context.Context, puuid string, windowDays int, w io.Writer) (*Entry, error) {
	e, err := c.LoadWindow(ctx, puuid, windowDays)
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e); err != nil {
		return nil, fmt.Errorf("encode entry: %w", err)
	}
	return e, nil
}

// Import reads an exported entry and stores it. Entries from another version
// are rejected with ErrStale.
func (c *Cache) Import(ctx context.Context, r io.Reader) (*Entry, error) {
	var e Entry
	if err := json.NewDecoder(r).Decode(&e); err != nil {
		return nil, fmt.Errorf("decode entry: %w", err)
	}
	if e.PUUID == "" {
		return nil, fmt.Errorf("decode entry: missing puuid")
	}
	if e.Version != Version {
		return nil, fmt.Errorf("%w: file has %q, want %q", ErrStale, e.Version, Version)
	}
	if e.Matches == nil {
		e.Matches = []model.Match{}
	}
	if err := c.put(ctx, &e); err != nil {
		return nil, fmt.Errorf("cache import %s: %w", Key(e.PUUID), err)
	}
	return &e, nil
}
