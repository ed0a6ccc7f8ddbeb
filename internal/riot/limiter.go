package riot

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimit is a budget of Requests calls per Per, refilled evenly.
type RateLimit struct {
	Requests int
	Per      time.Duration
}

// Development key limits.
var defaultLimits = []RateLimit{
	{Requests: 20, Per: time.Second},
	{Requests: 100, Per: 2 * time.Minute},
}

// limiter holds one token bucket per RateLimit. A request goes out only
// when every bucket has a token for it.
type limiter struct {
	buckets []*rate.Limiter
}

func newLimiter(limits []RateLimit) *limiter {
	l := &limiter{}
	for _, lim := range limits {
		if lim.Requests <= 0 || lim.Per <= 0 {
			continue
		}
		every := rate.Every(lim.Per / time.Duration(lim.Requests))
		l.buckets = append(l.buckets, rate.NewLimiter(every, lim.Requests))
	}
	return l
}

// wait blocks until a request may be sent.
func (l *limiter) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	delay, cancel, err := l.reserve(time.Now())
	if err != nil {
		return err
	}
	if delay <= 0 {
		return nil
	}
	t := time.NewTimer(delay)
	select {
	case <-ctx.Done():
		t.Stop()
		cancel()
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// reserve takes a token from every bucket at now and returns the longest
// delay among them. cancel hands the tokens back.
func (l *limiter) reserve(now time.Time) (delay time.Duration, cancel func(), err error) {
	rs := make([]*rate.Reservation, 0, len(l.buckets))
	cancel = func() {
		for _, r := range rs {
			r.CancelAt(now)
		}
	}
	for _, b := range l.buckets {
		r := b.ReserveN(now, 1)
		if !r.OK() {
			cancel()
			return 0, func() {}, fmt.Errorf("riot: limiter burst %d cannot admit a request", b.Burst())
		}
		rs = append(rs, r)
		if d := r.DelayFrom(now); d > delay {
			delay = d
		}
	}
	return delay, cancel, nil
}
