package maps

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// Results is the aggregate handed to the report writer: one capped,
// deduplicated record sequence per category, in the configured order.
type Results struct {
	Order   []Category
	Records map[Category][]Establishment
}

func newResults() *Results {
	return &Results{Records: map[Category][]Establishment{}}
}

func (r *Results) add(cat Category, recs []Establishment) {
	if _, ok := r.Records[cat]; !ok {
		r.Order = append(r.Order, cat)
	}
	if recs == nil {
		recs = []Establishment{}
	}
	r.Records[cat] = recs
}

// Total counts records across all categories.
func (r *Results) Total() int {
	n := 0
	for _, recs := range r.Records {
		n += len(recs)
	}
	return n
}

// Collector is the top-level driver: it owns the session lifetime,
// iterates the configured categories sequentially and aggregates their
// record sets. Session and navigation failures end the run; category
// failures are absorbed. On cancellation the partial aggregate is
// returned so already-collected records survive an interrupt.
type Collector struct {
	cfg    Config
	driver Driver
	log    *logrus.Logger
}

// NewCollector builds a collector over the given driver.
func NewCollector(cfg Config, driver Driver, log *logrus.Logger) *Collector {
	return &Collector{cfg: cfg, driver: driver, log: log}
}

// Run executes the whole collection. The returned Results is never nil.
func (c *Collector) Run(ctx context.Context) (*Results, error) {
	results := newResults()

	c.log.WithFields(logrus.Fields{
		"locality":   c.cfg.Locality,
		"categories": c.cfg.Categories,
		"cap":        c.cfg.MaxResultsPerCategory,
	}).Info("starting collection run")

	if err := c.driver.Open(ctx); err != nil {
		c.log.WithError(err).Error("browser session could not be started")
		return results, err
	}
	defer func() {
		if err := c.driver.Close(); err != nil {
			c.log.WithError(err).Warn("closing browser session")
		}
	}()

	if err := c.driver.Navigate(ctx, c.cfg.MapsURL); err != nil {
		c.log.WithError(err).Error("target surface unreachable, aborting run")
		return results, err
	}

	for _, cat := range c.cfg.Categories {
		if err := ctx.Err(); err != nil {
			c.log.Warn("run interrupted, keeping records collected so far")
			return results, err
		}

		recs, err := c.driver.Search(ctx, cat)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.log.Warn("run interrupted, keeping records collected so far")
				return results, err
			}
			// Category-recoverable: this category yields an empty set
			// and the run moves on.
			c.log.WithError(err).WithField("category", cat).Error("category aborted")
			results.add(cat, nil)
			continue
		}

		results.add(cat, recs)
		c.log.WithFields(logrus.Fields{"category": cat, "records": len(recs)}).Info("category complete")
	}

	c.log.WithField("total", results.Total()).Info("collection run finished")
	return results, nil
}
