package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/sirupsen/logrus"
)

// ErrSearchInputNotFound means the search box selector did not resolve
// within the configured wait. The category is aborted, not the run.
var ErrSearchInputNotFound = errors.New("search input not found")

// Searcher runs the full per-category protocol against an already-loaded
// maps page: submit the query, wait for the results feed, page through
// it, extract every visible card, dedup and cap.
type Searcher struct {
	cfg       Config
	page      *rod.Page
	log       *logrus.Logger
	extractor *Extractor
}

// NewSearcher builds a searcher bound to the session page.
func NewSearcher(cfg Config, page *rod.Page, log *logrus.Logger) *Searcher {
	return &Searcher{
		cfg:       cfg,
		page:      page,
		log:       log,
		extractor: &Extractor{Log: log},
	}
}

// Search collects the category's capped, deduplicated record set. An
// aborted category returns an error and no records.
func (s *Searcher) Search(ctx context.Context, cat Category) ([]Establishment, error) {
	query := cat.Query(s.cfg.Locality)
	s.log.WithFields(logrus.Fields{"category": cat, "query": query}).Info("searching category")

	if err := s.submitQuery(ctx, query); err != nil {
		return nil, err
	}

	panel := newFeedPanel(s.page.Context(ctx), s.cfg)
	pager := NewPager(s.cfg.MaxScrolls, s.cfg.ElementWait, s.cfg.PollInterval, s.cfg.MaxResultsPerCategory, s.log)
	if _, err := pager.LoadAll(ctx, panel); err != nil {
		return nil, err
	}

	cards, err := s.collectCards(ctx)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"category": cat, "cards": len(cards)}).Info("cards collected")

	set := NewResultSet(s.cfg.MaxResultsPerCategory)
	for _, card := range cards {
		if set.Full() {
			s.log.WithField("category", cat).Debug("per-category cap reached")
			break
		}
		rec := s.extractor.Extract(card, cat)
		if !set.Add(rec) {
			s.log.WithFields(logrus.Fields{"category": cat, "card": rec.Name}).Debug("duplicate card skipped")
		}
	}

	s.log.WithFields(logrus.Fields{"category": cat, "records": set.Len()}).Info("category extracted")
	return set.Items(), nil
}

// submitQuery locates the search box, replaces its contents with the
// query and submits it, then waits for the results feed to render.
func (s *Searcher) submitQuery(ctx context.Context, query string) error {
	page := s.page.Context(ctx)

	box, err := page.Timeout(s.cfg.ElementWait).Element(s.cfg.SearchInputSelector)
	if err != nil {
		return fmt.Errorf("%w: selector %q: %v", ErrSearchInputNotFound, s.cfg.SearchInputSelector, err)
	}
	s.log.Debug("search input located")

	// Select-all then type replaces whatever the previous category left
	// in the box.
	if err := box.SelectAllText(); err != nil {
		return fmt.Errorf("clearing search input: %w", err)
	}
	if err := box.Input(query); err != nil {
		return fmt.Errorf("typing query: %w", err)
	}
	if err := box.Type(input.Enter); err != nil {
		return fmt.Errorf("submitting query: %w", err)
	}
	s.log.WithField("query", query).Debug("query submitted")

	if _, err := page.Timeout(s.cfg.ElementWait).Element(s.cfg.FeedSelector); err != nil {
		return fmt.Errorf("%w: feed %q never appeared: %v", ErrNoResultsVisible, s.cfg.FeedSelector, err)
	}
	s.log.Debug("results feed rendered")
	return nil
}

// collectCards pulls every visible card in one JS evaluation: name from
// the place link's aria-label, plus the enclosing card container's HTML
// and text for field extraction.
func (s *Searcher) collectCards(ctx context.Context) ([]RawCard, error) {
	js := fmt.Sprintf(`() => {
		const links = document.querySelectorAll(%q);
		return Array.from(links).map(a => {
			const card = a.closest('div[jsaction*="mouseover"]') || a.parentElement || a;
			return {
				name: a.getAttribute('aria-label') || '',
				html: card.outerHTML || '',
				text: card.innerText || '',
			};
		});
	}`, s.cfg.CardLinkSelector)

	val, err := s.page.Context(ctx).Timeout(s.cfg.ElementWait).Eval(js)
	if err != nil {
		return nil, fmt.Errorf("collecting cards: %w", err)
	}

	raw, err := val.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("reading cards: %w", err)
	}
	var cards []RawCard
	if err := json.Unmarshal(raw, &cards); err != nil {
		return nil, fmt.Errorf("parsing cards: %w", err)
	}
	return cards, nil
}

// feedPanel adapts the results feed on the live page to the pager's
// Panel interface. Every lookup is bounded by the configured wait so a
// feed that vanishes mid-category fails the scroll instead of blocking.
type feedPanel struct {
	page         *rod.Page
	feedSelector string
	cardSelector string
	wait         time.Duration
}

func newFeedPanel(page *rod.Page, cfg Config) *feedPanel {
	return &feedPanel{
		page:         page,
		feedSelector: cfg.FeedSelector,
		cardSelector: cfg.CardLinkSelector,
		wait:         cfg.ElementWait,
	}
}

func (p *feedPanel) Scroll() error {
	feed, err := p.page.Timeout(p.wait).Element(p.feedSelector)
	if err != nil {
		return err
	}
	_, err = feed.Eval(`() => { this.scrollTop = this.scrollHeight }`)
	return err
}

func (p *feedPanel) CardCount() (int, error) {
	cards, err := p.page.Elements(p.cardSelector)
	if err != nil {
		return 0, err
	}
	return len(cards), nil
}
