package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/pable/lol-wrapped/internal/logging"
	"github.com/pable/lol-wrapped/internal/model"
	"github.com/pable/lol-wrapped/internal/storage"
)

var now = time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

type fakeAPI struct {
	mu       sync.Mutex
	ids      []string         // newest first
	created  map[string]int64 // match id -> gameCreation
	fail     map[string]bool
	pages    int
	detailed []string
}

func (a *fakeAPI) GetMatchIDs(_ context.Context, _ string, start, count, _ int) ([]string, error) {
	a.mu.Lock()
	a.pages++
	a.mu.Unlock()
	if start >= len(a.ids) {
		return nil, nil
	}
	end := start + count
	if end > len(a.ids) {
		end = len(a.ids)
	}
	return a.ids[start:end], nil
}

func (a *fakeAPI) GetMatchRaw(_ context.Context, id string) ([]byte, error) {
	a.mu.Lock()
	a.detailed = append(a.detailed, id)
	a.mu.Unlock()
	if a.fail[id] {
		return nil, errors.New("boom")
	}
	return []byte(fmt.Sprintf(`{"metadata":{"matchId":%q},"info":{"gameCreation":%d,"queueId":420}}`, id, a.created[id])), nil
}

type fakeStore struct {
	stored map[string]bool
	runs   []storage.FetchRun
	insErr error
}

func newFakeStore(ids ...string) *fakeStore {
	s := &fakeStore{stored: make(map[string]bool)}
	for _, id := range ids {
		s.stored[id] = true
	}
	return s
}

func (s *fakeStore) MatchIDs() ([]string, error) {
	var out []string
	for id := range s.stored {
		out = append(out, id)
	}
	return out, nil
}

func (s *fakeStore) MatchExists(id string) (bool, error) { return s.stored[id], nil }

func (s *fakeStore) InsertMatch(_ []byte, m *model.Match) error {
	if s.insErr != nil {
		return s.insErr
	}
	s.stored[m.Metadata.MatchID] = true
	return nil
}

func (s *fakeStore) SaveFetchRun(r storage.FetchRun) error {
	s.runs = append(s.runs, r)
	return nil
}

// history builds n ids, newest first, one day apart starting yesterday.
func history(n int) *fakeAPI {
	a := &fakeAPI{created: make(map[string]int64), fail: make(map[string]bool)}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("EUW1_%d", 1000-i)
		a.ids = append(a.ids, id)
		a.created[id] = now.Add(-time.Duration(i+1) * 24 * time.Hour).UnixMilli()
	}
	return a
}

func testConfig() Config {
	return Config{PageSize: 4, MaxIDs: 100, BatchSize: 5, Window: 365 * 24 * time.Hour}
}

func newTestFetcher(api API, store Store, cfg Config, opts ...Option) *Fetcher {
	opts = append([]Option{WithLogger(logging.Nop()), WithClock(func() time.Time { return now })}, opts...)
	return New(api, store, cfg, opts...)
}

func TestRun_FetchesAndStoresEverything(t *testing.T) {
	api := history(12)
	store := newFakeStore()
	var last Progress
	f := newTestFetcher(api, store, testConfig(), WithProgress(func(p Progress) { last = p }))

	res, err := f.Run(context.Background(), "puuid-1", "EUW")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.IDsFound != 12 || res.Fetched != 12 || res.Known != 0 || res.Failed != 0 {
		t.Errorf("result: %+v", res)
	}
	if len(store.stored) != 12 {
		t.Errorf("stored: got %d, want 12", len(store.stored))
	}
	// 12 ids at 4 per page: three full pages plus the empty terminator.
	if api.pages != 4 {
		t.Errorf("pages requested: got %d, want 4", api.pages)
	}
	if last.Percent != 100 {
		t.Errorf("final progress: %+v", last)
	}
	if res.Matches[0].Metadata.MatchID != "EUW1_1000" {
		t.Errorf("matches should keep id order, first=%s", res.Matches[0].Metadata.MatchID)
	}
}

func TestRun_SkipsKnownMatches(t *testing.T) {
	api := history(6)
	store := newFakeStore("EUW1_1000", "EUW1_999")
	f := newTestFetcher(api, store, testConfig())

	res, err := f.Run(context.Background(), "puuid-1", "EUW")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Known != 2 || res.Fetched != 4 {
		t.Errorf("known=%d fetched=%d", res.Known, res.Fetched)
	}
	for _, id := range api.detailed {
		if id == "EUW1_1000" || id == "EUW1_999" {
			t.Errorf("known match %s was downloaded again", id)
		}
	}
}

func TestRun_FailedDetailIsSkipped(t *testing.T) {
	api := history(5)
	api.fail["EUW1_998"] = true
	store := newFakeStore()
	f := newTestFetcher(api, store, testConfig())

	res, err := f.Run(context.Background(), "puuid-1", "EUW")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Failed != 1 || res.Fetched != 4 {
		t.Errorf("failed=%d fetched=%d", res.Failed, res.Fetched)
	}
	if store.stored["EUW1_998"] {
		t.Error("failed match should not be stored")
	}
}

func TestRun_StopsAfterBatchPastWindow(t *testing.T) {
	api := history(20)
	// Ids 7 and later are more than a year old.
	for i, id := range api.ids {
		if i >= 7 {
			api.created[id] = now.Add(-400 * 24 * time.Hour).UnixMilli()
		}
	}
	store := newFakeStore()
	f := newTestFetcher(api, store, testConfig())

	res, err := f.Run(context.Background(), "puuid-1", "EUW")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.ReachedWindow {
		t.Error("expected window cutoff")
	}
	// Batch two (ids 5..9) holds the first old match; its in-window ids 5 and 6 are kept.
	if res.Fetched != 7 {
		t.Errorf("fetched: got %d, want 7", res.Fetched)
	}
	if len(api.detailed) != 10 {
		t.Errorf("detail requests: got %d, want 10 (no batch after the cutoff)", len(api.detailed))
	}
}

func TestRun_MaxIDsCap(t *testing.T) {
	api := history(30)
	cfg := testConfig()
	cfg.MaxIDs = 10
	f := newTestFetcher(api, newFakeStore(), cfg)

	res, err := f.Run(context.Background(), "puuid-1", "EUW")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.IDsFound != 10 {
		t.Errorf("ids: got %d, want 10", res.IDsFound)
	}
}

func TestRun_NoMatches(t *testing.T) {
	store := newFakeStore()
	f := newTestFetcher(history(0), store, testConfig())

	res, err := f.Run(context.Background(), "puuid-1", "EUW")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.IDsFound != 0 || len(res.Matches) != 0 {
		t.Errorf("result: %+v", res)
	}
}

func TestRun_RecordsFetchRun(t *testing.T) {
	store := newFakeStore()
	f := newTestFetcher(history(3), store, testConfig())

	res, err := f.Run(context.Background(), "puuid-1", "EUW")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(store.runs) != 2 {
		t.Fatalf("run saves: got %d, want 2", len(store.runs))
	}
	first, final := store.runs[0], store.runs[1]
	if first.Status != storage.RunRunning || final.Status != storage.RunDone {
		t.Errorf("statuses: %s -> %s", first.Status, final.Status)
	}
	if first.RunID == "" || first.RunID != final.RunID || final.RunID != res.RunID {
		t.Errorf("run ids differ: %q %q %q", first.RunID, final.RunID, res.RunID)
	}
	if final.MatchesFetched != 3 || final.Region != "EUW" {
		t.Errorf("final run: %+v", final)
	}
}

func TestRun_StoreErrorFailsRun(t *testing.T) {
	store := newFakeStore()
	store.insErr = errors.New("disk full")
	f := newTestFetcher(history(3), store, testConfig())

	if _, err := f.Run(context.Background(), "puuid-1", "EUW"); err == nil {
		t.Fatal("expected error")
	}
	final := store.runs[len(store.runs)-1]
	if final.Status != storage.RunFailed || final.Error == "" {
		t.Errorf("final run: %+v", final)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := testConfig()
	cfg.PagePause = time.Second
	f := newTestFetcher(history(3), newFakeStore(), cfg)

	if _, err := f.Run(ctx, "puuid-1", "EUW"); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
