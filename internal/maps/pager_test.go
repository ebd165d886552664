package maps

import (
	"context"
	"errors"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
)

// stubPanel reports a fixed card count per number of scrolls performed,
// so growth stops exactly where the test says it does.
type stubPanel struct {
	countAfter []int
	scrolled   int
	scrollErr  error
}

func (p *stubPanel) Scroll() error {
	if p.scrollErr != nil {
		return p.scrollErr
	}
	if p.scrolled < len(p.countAfter)-1 {
		p.scrolled++
	}
	return nil
}

func (p *stubPanel) CardCount() (int, error) {
	return p.countAfter[p.scrolled], nil
}

func newTestPager(maxScrolls, target int) *Pager {
	logger, _ := logtest.NewNullLogger()
	p := NewPager(maxScrolls, 2*time.Second, 100*time.Millisecond, target, logger)
	// Fake clock: sleeping advances time, so wait windows elapse without
	// real delay.
	now := time.Now()
	p.now = func() time.Time { return now }
	p.sleep = func(d time.Duration) { now = now.Add(d) }
	return p
}

func TestPagerLoadAll(t *testing.T) {
	t.Run("stops one scroll after growth ends", func(t *testing.T) {
		// Growth stops after the 2nd scroll; the 3rd observes no growth
		// and must be the last, well under the budget of 10.
		panel := &stubPanel{countAfter: []int{3, 6, 9, 9, 9}}
		pager := newTestPager(10, 0)

		scrolls, err := pager.LoadAll(context.Background(), panel)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if scrolls != 3 {
			t.Errorf("got %d scrolls, want 3", scrolls)
		}
	})

	t.Run("consumes the whole budget while the panel keeps growing", func(t *testing.T) {
		panel := &stubPanel{countAfter: []int{1, 2, 3, 4, 5, 6, 7, 8}}
		pager := newTestPager(4, 0)

		scrolls, err := pager.LoadAll(context.Background(), panel)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if scrolls != 4 {
			t.Errorf("got %d scrolls, want 4", scrolls)
		}
	})

	t.Run("reports no results when the panel stays empty", func(t *testing.T) {
		panel := &stubPanel{countAfter: []int{0, 0}}
		pager := newTestPager(5, 0)

		scrolls, err := pager.LoadAll(context.Background(), panel)
		if !errors.Is(err, ErrNoResultsVisible) {
			t.Fatalf("got %v, want ErrNoResultsVisible", err)
		}
		if scrolls != 0 {
			t.Errorf("got %d scrolls, want 0", scrolls)
		}
	})

	t.Run("stops early once the target count is visible", func(t *testing.T) {
		panel := &stubPanel{countAfter: []int{3, 7, 12, 20}}
		pager := newTestPager(10, 5)

		scrolls, err := pager.LoadAll(context.Background(), panel)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if scrolls != 1 {
			t.Errorf("got %d scrolls, want 1", scrolls)
		}
	})

	t.Run("does not scroll when the target is already visible", func(t *testing.T) {
		panel := &stubPanel{countAfter: []int{8}}
		pager := newTestPager(10, 5)

		scrolls, err := pager.LoadAll(context.Background(), panel)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if scrolls != 0 {
			t.Errorf("got %d scrolls, want 0", scrolls)
		}
	})

	t.Run("surfaces scroll failures with the cycle count", func(t *testing.T) {
		panel := &stubPanel{countAfter: []int{3, 6}, scrollErr: errors.New("detached")}
		pager := newTestPager(5, 0)

		if _, err := pager.LoadAll(context.Background(), panel); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("stops between waits when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		panel := &stubPanel{countAfter: []int{3, 6, 9}}
		pager := newTestPager(5, 0)

		scrolls, err := pager.LoadAll(ctx, panel)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("got %v, want context.Canceled", err)
		}
		if scrolls != 0 {
			t.Errorf("got %d scrolls, want 0", scrolls)
		}
	})
}
