package riot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pable/lol-wrapped/internal/logging"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	euw, err := LookupRegion("euw")
	if err != nil {
		t.Fatal(err)
	}
	return NewClient("RGAPI-test", euw,
		WithBaseURL(server.URL),
		WithRateLimits(RateLimit{Requests: 1000, Per: time.Second}),
		WithLogger(logging.Nop()),
	)
}

func TestGetAccountByRiotID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Riot-Token"); got != "RGAPI-test" {
			t.Errorf("X-Riot-Token: got %q", got)
		}
		if r.URL.Path != "/riot/account/v1/accounts/by-riot-id/Hide on bush/KR1" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		w.Write([]byte(`{"puuid":"abc","gameName":"Hide on bush","tagLine":"KR1"}`))
	})

	acc, err := c.GetAccountByRiotID(context.Background(), "Hide on bush", "KR1")
	if err != nil {
		t.Fatalf("GetAccountByRiotID: %v", err)
	}
	if acc.PUUID != "abc" || acc.TagLine != "KR1" {
		t.Errorf("account: got %+v", acc)
	}
}

func TestGetMatchIDs_Query(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		q := r.URL.Query()
		if q.Get("start") != "100" || q.Get("count") != "50" {
			t.Errorf("query: got %v", q)
		}
		switch n {
		case 1:
			if q.Get("queue") != "420" {
				t.Errorf("queue: got %q, want 420", q.Get("queue"))
			}
		case 2:
			if _, ok := q["queue"]; ok {
				t.Error("queue 0 should be omitted")
			}
		}
		w.Write([]byte(`["EUW1_1","EUW1_2"]`))
	})

	ids, err := c.GetMatchIDs(context.Background(), "abc", 100, 50, 420)
	if err != nil {
		t.Fatalf("GetMatchIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != "EUW1_1" {
		t.Errorf("ids: got %v", ids)
	}
	if _, err := c.GetMatchIDs(context.Background(), "abc", 100, 50, 0); err != nil {
		t.Fatalf("GetMatchIDs (all queues): %v", err)
	}
}

func TestGetMatch_Decodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lol/match/v5/matches/EUW1_42" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		w.Write([]byte(`{
			"metadata":{"matchId":"EUW1_42","participants":["p1"]},
			"info":{"gameCreation":1700000000000,"gameDuration":1820,"queueId":420,
				"participants":[{"puuid":"p1","championName":"Ahri","teamId":100,"win":true,
					"kills":7,"deaths":2,"assists":9,"item0":3020,"dangerPings":4,
					"challenges":{"scuttleCrabKills":2,"kda":8}}],
				"teams":[{"teamId":100,"win":true,"objectives":{"dragon":{"first":true,"kills":3}}}]}
		}`))
	})

	m, err := c.GetMatch(context.Background(), "EUW1_42")
	if err != nil {
		t.Fatalf("GetMatch: %v", err)
	}
	p := m.Participant("p1")
	if p == nil {
		t.Fatal("participant p1 missing")
	}
	if p.ChampionName != "Ahri" || p.Kills != 7 || p.Item0 != 3020 || p.DangerPings != 4 {
		t.Errorf("participant: got %+v", p)
	}
	if p.Challenges == nil || p.Challenges.ScuttleCrabKills != 2 {
		t.Errorf("challenges: got %+v", p.Challenges)
	}
	if m.Info.Teams[0].Objectives.Dragon.Kills != 3 {
		t.Errorf("dragon kills: got %d", m.Info.Teams[0].Objectives.Dragon.Kills)
	}
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusUnauthorized, ErrForbidden},
	}
	for _, tt := range tests {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		})
		_, err := c.GetMatch(context.Background(), "X")
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: got %v, want %v", tt.status, err, tt.want)
		}
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := c.GetMatch(context.Background(), "X")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusServiceUnavailable {
		t.Errorf("503: got %v", err)
	}
}

func TestClient_RetriesAfter429(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[]`))
	})

	ids, err := c.GetMatchIDs(context.Background(), "abc", 0, 100, 0)
	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ids: got %v", ids)
	}
	if calls != 2 {
		t.Errorf("calls: got %d, want 2", calls)
	}
}

func TestClient_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.GetMatchRaw(context.Background(), "X")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("got %v, want ErrRateLimited", err)
	}
	if calls != defaultMaxAttempts {
		t.Errorf("calls: got %d, want %d", calls, defaultMaxAttempts)
	}
}

func TestRetryAfter(t *testing.T) {
	if got := retryAfter("3"); got != 3*time.Second {
		t.Errorf("retryAfter(3): got %s", got)
	}
	if got := retryAfter(""); got != defaultRetryAfter {
		t.Errorf("retryAfter(\"\"): got %s", got)
	}
	if got := retryAfter("soon"); got != defaultRetryAfter {
		t.Errorf("retryAfter(soon): got %s", got)
	}
}

func TestLimiter_EveryBucketMustAdmit(t *testing.T) {
	now := time.Unix(1000, 0)
	l := newLimiter([]RateLimit{{Requests: 2, Per: time.Second}, {Requests: 3, Per: time.Minute}})

	for i := 0; i < 2; i++ {
		if d, _, err := l.reserve(now); err != nil || d != 0 {
			t.Fatalf("reserve %d: wait %s, err %v", i, d, err)
		}
	}
	d, cancel, err := l.reserve(now)
	if err != nil {
		t.Fatal(err)
	}
	if d <= 0 || d > time.Second {
		t.Fatalf("third reserve inside one second: wait %s, want under a second", d)
	}
	cancel()

	now = now.Add(1100 * time.Millisecond)
	if d, _, err := l.reserve(now); err != nil || d != 0 {
		t.Fatalf("after the short bucket refills: wait %s, err %v", d, err)
	}
	now = now.Add(1100 * time.Millisecond)
	d, _, err = l.reserve(now)
	if err != nil {
		t.Fatal(err)
	}
	if d < 10*time.Second {
		t.Errorf("long bucket should block for most of its refill interval, got %s", d)
	}
}

func TestLimiter_IgnoresEmptyLimits(t *testing.T) {
	l := newLimiter([]RateLimit{{Requests: 0, Per: time.Second}, {Requests: 5, Per: 0}})
	if len(l.buckets) != 0 {
		t.Fatalf("buckets: got %d, want 0", len(l.buckets))
	}
	if err := l.wait(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	l := newLimiter([]RateLimit{{Requests: 1, Per: time.Hour}})
	if err := l.wait(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want context.DeadlineExceeded", err)
	}

	done, stop := context.WithCancel(context.Background())
	stop()
	if err := l.wait(done); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestParseRiotID(t *testing.T) {
	tests := []struct {
		in        string
		name, tag string
		wantErr   bool
	}{
		{"Faker#KR1", "Faker", "KR1", false},
		{"Hide on bush#KR1", "Hide on bush", "KR1", false},
		{" Spaced #EUW ", "Spaced", "EUW", false},
		{"NoTag", "", "", true},
		{"#TAG", "", "", true},
		{"Name#", "", "", true},
	}
	for _, tt := range tests {
		name, tag, err := ParseRiotID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRiotID(%q): err=%v, wantErr=%v", tt.in, err, tt.wantErr)
			continue
		}
		if name != tt.name || tag != tt.tag {
			t.Errorf("ParseRiotID(%q): got (%q, %q), want (%q, %q)", tt.in, name, tag, tt.name, tt.tag)
		}
	}
}

func TestLookupRegion(t *testing.T) {
	r, err := LookupRegion("kr")
	if err != nil {
		t.Fatal(err)
	}
	if r.Route != "asia" || r.Platform != "kr" {
		t.Errorf("KR: got %+v", r)
	}
	if r.RegionalHost() != "https://asia.api.riotgames.com" {
		t.Errorf("regional host: %s", r.RegionalHost())
	}
	if _, err := LookupRegion("mars"); err == nil {
		t.Error("expected error for unknown region")
	}
	if n := len(RegionNames()); n != 11 {
		t.Errorf("region count: got %d, want 11", n)
	}
}
