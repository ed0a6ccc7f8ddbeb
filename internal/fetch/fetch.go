// Package fetch pulls a player's recent match history from the Riot API into
// the local store.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pable/lol-wrapped/internal/logging"
	"github.com/pable/lol-wrapped/internal/model"
	"github.com/pable/lol-wrapped/internal/storage"
)

const (
	DefaultPageSize   = 100
	DefaultMaxIDs     = 2000
	DefaultBatchSize  = 5
	DefaultWindow     = 365 * 24 * time.Hour
	DefaultPagePause  = 100 * time.Millisecond
	DefaultBatchPause = 500 * time.Millisecond
)

// API is the subset of the Riot client the fetcher uses.
type API interface {
	GetMatchIDs(ctx context.Context, puuid string, start, count, queue int) ([]string, error)
	GetMatchRaw(ctx context.Context, matchID string) ([]byte, error)
}

// Store is the subset of storage.DB the fetcher uses.
type Store interface {
	MatchIDs() ([]string, error)
	MatchExists(matchID string) (bool, error)
	InsertMatch(raw []byte, m *model.Match) error
	SaveFetchRun(r storage.FetchRun) error
}

// Config controls paging, batching, and the time window.
type Config struct {
	PageSize   int
	MaxIDs     int
	BatchSize  int
	Queue      int           // 0 = all queues
	Window     time.Duration // matches older than now-Window end the run
	PagePause  time.Duration
	BatchPause time.Duration
}

// DefaultConfig mirrors the pacing used against a development key.
func DefaultConfig() Config {
	return Config{
		PageSize:   DefaultPageSize,
		MaxIDs:     DefaultMaxIDs,
		BatchSize:  DefaultBatchSize,
		Window:     DefaultWindow,
		PagePause:  DefaultPagePause,
		BatchPause: DefaultBatchPause,
	}
}

// Progress is reported after each page and each batch.
type Progress struct {
	Percent int
	Status  string
}

// Result summarises one run.
type Result struct {
	RunID         string
	IDsFound      int
	Known         int
	Fetched       int
	Failed        int
	ReachedWindow bool
	Matches       []model.Match // newly stored, in id order (newest first)
}

// Fetcher orchestrates one player's fetch.
type Fetcher struct {
	api      API
	store    Store
	cfg      Config
	log      logging.Interface
	now      func() time.Time
	progress func(Progress)
	seen     *bloom.BloomFilter
}

// Option configures a Fetcher.
type Option func(*Fetcher)

func WithLogger(l logging.Interface) Option {
	return func(f *Fetcher) { f.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) { f.now = now }
}

// WithProgress registers a callback invoked from the Run goroutine.
func WithProgress(fn func(Progress)) Option {
	return func(f *Fetcher) { f.progress = fn }
}

// New returns a Fetcher. Zero Config fields take their defaults.
func New(api API, store Store, cfg Config, opts ...Option) *Fetcher {
	def := DefaultConfig()
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.MaxIDs <= 0 {
		cfg.MaxIDs = def.MaxIDs
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	f := &Fetcher{
		api:      api,
		store:    store,
		cfg:      cfg,
		log:      logging.Logger(),
		now:      time.Now,
		progress: func(Progress) {},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run fetches every match id for puuid (up to MaxIDs), then downloads the
// unknown ones in concurrent batches and stores them. A batch containing a
// match older than the window is the last one processed. A failed download
// skips that match; storage errors abort the run.
func (f *Fetcher) Run(ctx context.Context, puuid, region string) (*Result, error) {
	run := storage.FetchRun{
		RunID:     uuid.NewString(),
		PUUID:     puuid,
		Region:    region,
		StartedAt: f.now().UnixMilli(),
		Status:    storage.RunRunning,
	}
	if err := f.store.SaveFetchRun(run); err != nil {
		return nil, fmt.Errorf("record fetch run: %w", err)
	}

	res, err := f.run(ctx, puuid, run.RunID)
	run.FinishedAt = f.now().UnixMilli()
	if res != nil {
		run.IDsFound = res.IDsFound
		run.MatchesFetched = res.Fetched
		run.MatchesKnown = res.Known
		run.MatchesFailed = res.Failed
	}
	run.Status = storage.RunDone
	if err != nil {
		run.Status = storage.RunFailed
		run.Error = err.Error()
	}
	if serr := f.store.SaveFetchRun(run); serr != nil {
		f.log.Warnf("update fetch run %s: %v", run.RunID, serr)
	}
	return res, err
}

func (f *Fetcher) run(ctx context.Context, puuid, runID string) (*Result, error) {
	res := &Result{RunID: runID}

	if err := f.seedSeen(); err != nil {
		return res, err
	}

	ids, err := f.listIDs(ctx, puuid)
	if err != nil {
		return res, err
	}
	res.IDsFound = len(ids)
	if len(ids) == 0 {
		f.progress(Progress{Percent: 100, Status: "No matches found"})
		return res, nil
	}
	f.progress(Progress{Status: fmt.Sprintf("Fetching details for %d matches...", len(ids))})

	cutoff := f.now().Add(-f.cfg.Window).UnixMilli()
	for start := 0; start < len(ids); start += f.cfg.BatchSize {
		end := start + f.cfg.BatchSize
		if end > len(ids) {
			end = len(ids)
		}

		batch, err := f.fetchBatch(ctx, ids[start:end], res)
		if err != nil {
			return res, err
		}
		for _, b := range batch {
			if b.match.Info.GameCreation < cutoff {
				res.ReachedWindow = true
				continue
			}
			if err := f.store.InsertMatch(b.raw, b.match); err != nil {
				return res, fmt.Errorf("store match %s: %w", b.match.Metadata.MatchID, err)
			}
			f.seen.AddString(b.match.Metadata.MatchID)
			res.Fetched++
			res.Matches = append(res.Matches, *b.match)
		}

		pct := end * 100 / len(ids)
		f.progress(Progress{
			Percent: pct,
			Status:  fmt.Sprintf("Processed %d matches (last %d days)...", res.Fetched+res.Known, int(f.cfg.Window.Hours()/24)),
		})
		if res.ReachedWindow {
			f.log.Debugf("reached window cutoff after %d/%d ids", end, len(ids))
			break
		}
		if end < len(ids) {
			if err := sleep(ctx, f.cfg.BatchPause); err != nil {
				return res, err
			}
		}
	}
	return res, nil
}

// seedSeen builds the known-id filter from the store.
func (f *Fetcher) seedSeen() error {
	known, err := f.store.MatchIDs()
	if err != nil {
		return fmt.Errorf("load stored match ids: %w", err)
	}
	n := uint(len(known) + f.cfg.MaxIDs)
	f.seen = bloom.NewWithEstimates(n, 0.001)
	for _, id := range known {
		f.seen.AddString(id)
	}
	return nil
}

// listIDs pages through match ids until an empty page or MaxIDs.
func (f *Fetcher) listIDs(ctx context.Context, puuid string) ([]string, error) {
	var all []string
	for start := 0; len(all) < f.cfg.MaxIDs; start += f.cfg.PageSize {
		page, err := f.api.GetMatchIDs(ctx, puuid, start, f.cfg.PageSize, f.cfg.Queue)
		if err != nil {
			return nil, fmt.Errorf("list match ids (start=%d): %w", start, err)
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		f.progress(Progress{Status: fmt.Sprintf("Found %d matches...", len(all))})
		if err := sleep(ctx, f.cfg.PagePause); err != nil {
			return nil, err
		}
	}
	if len(all) > f.cfg.MaxIDs {
		all = all[:f.cfg.MaxIDs]
	}
	return all, nil
}

type fetched struct {
	raw   []byte
	match *model.Match
}

// fetchBatch downloads the unknown ids of one batch concurrently. The
// returned slice keeps id order and omits known and failed matches.
func (f *Fetcher) fetchBatch(ctx context.Context, ids []string, res *Result) ([]fetched, error) {
	slots := make([]*fetched, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	started := 0
	for i, id := range ids {
		known, err := f.isKnown(id)
		if err != nil {
			return nil, err
		}
		if known {
			res.Known++
			continue
		}
		started++
		g.Go(func() error {
			raw, err := f.api.GetMatchRaw(gctx, id)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				f.log.Warnf("skip match %s: %v", id, err)
				return nil
			}
			var m model.Match
			if err := json.Unmarshal(raw, &m); err != nil {
				f.log.Warnf("skip match %s: decode: %v", id, err)
				return nil
			}
			if m.Metadata.MatchID == "" {
				m.Metadata.MatchID = id
			}
			slots[i] = &fetched{raw: raw, match: &m}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]fetched, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			out = append(out, *s)
		}
	}
	res.Failed += started - len(out)
	return out, nil
}

// isKnown consults the bloom filter and confirms positives in the store.
func (f *Fetcher) isKnown(id string) (bool, error) {
	if !f.seen.TestString(id) {
		return false, nil
	}
	ok, err := f.store.MatchExists(id)
	if err != nil {
		return false, fmt.Errorf("check match %s: %w", id, err)
	}
	return ok, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
