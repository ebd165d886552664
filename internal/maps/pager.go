package maps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNoResultsVisible means no card ever appeared in the panel within the
// first wait window. The enclosing category is aborted, not the run.
var ErrNoResultsVisible = errors.New("no results visible in the panel")

// Panel is the results panel the pager drives. The production
// implementation talks to the browser; tests stub it.
type Panel interface {
	// Scroll issues one scroll action against the panel.
	Scroll() error
	// CardCount returns the number of result cards currently visible.
	CardCount() (int, error)
}

// Pager reveals more result cards through scroll-and-wait cycles, bounded
// by MaxScrolls and a per-wait timeout. Once a wait window elapses without
// the card count growing the panel is treated as exhausted and the
// remaining scroll budget is not consumed.
type Pager struct {
	MaxScrolls   int
	WaitTimeout  time.Duration
	PollInterval time.Duration
	// Target stops scrolling early once at least this many cards are
	// visible. Zero means scroll until exhausted or out of budget.
	Target int
	Log    *logrus.Logger

	now   func() time.Time
	sleep func(time.Duration)
}

// NewPager builds a pager using the real clock.
func NewPager(maxScrolls int, wait, poll time.Duration, target int, log *logrus.Logger) *Pager {
	return &Pager{
		MaxScrolls:   maxScrolls,
		WaitTimeout:  wait,
		PollInterval: poll,
		Target:       target,
		Log:          log,
		now:          time.Now,
		sleep:        time.Sleep,
	}
}

// LoadAll runs the scroll loop and returns the number of scroll cycles
// performed.
func (p *Pager) LoadAll(ctx context.Context, panel Panel) (int, error) {
	lastCount, ok := p.waitForGrowth(ctx, panel, 0)
	if !ok || lastCount == 0 {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return 0, ErrNoResultsVisible
	}
	p.Log.WithField("cards", lastCount).Debug("initial cards visible")

	if p.Target > 0 && lastCount >= p.Target {
		return 0, nil
	}

	scrolls := 0
	for scrolls < p.MaxScrolls {
		if err := ctx.Err(); err != nil {
			return scrolls, err
		}
		if err := panel.Scroll(); err != nil {
			return scrolls, fmt.Errorf("scroll %d: %w", scrolls+1, err)
		}
		scrolls++

		count, grew := p.waitForGrowth(ctx, panel, lastCount)
		if !grew {
			p.Log.WithField("scroll", scrolls).Debug("no new cards, panel exhausted")
			break
		}
		lastCount = count
		p.Log.WithFields(logrus.Fields{"scroll": scrolls, "cards": count}).Debug("more cards loaded")

		if p.Target > 0 && lastCount >= p.Target {
			break
		}
	}

	p.Log.WithFields(logrus.Fields{"scrolls": scrolls, "cards": lastCount}).Info("paging complete")
	return scrolls, nil
}

// waitForGrowth polls the card count until it exceeds last or the wait
// window elapses.
func (p *Pager) waitForGrowth(ctx context.Context, panel Panel, last int) (int, bool) {
	deadline := p.now().Add(p.WaitTimeout)
	for {
		count, err := panel.CardCount()
		if err == nil && count > last {
			return count, true
		}
		if ctx.Err() != nil || !p.now().Before(deadline) {
			return last, false
		}
		p.sleep(p.PollInterval)
	}
}
