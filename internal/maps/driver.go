package maps

import (
	"context"

	"github.com/sirupsen/logrus"

	"mapscout/internal/browser"
)

// Driver is the browser-facing surface the collector drives. Narrow on
// purpose so the orchestration and failure policy are testable without a
// browser.
type Driver interface {
	Open(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
	Search(ctx context.Context, cat Category) ([]Establishment, error)
	Close() error
}

// rodDriver is the production Driver: one browser session, one page, one
// searcher bound to it.
type rodDriver struct {
	cfg      Config
	log      *logrus.Logger
	session  *browser.Session
	searcher *Searcher
}

// NewDriver builds the rod-backed driver.
func NewDriver(cfg Config, log *logrus.Logger) Driver {
	return &rodDriver{cfg: cfg, log: log}
}

func (d *rodDriver) Open(ctx context.Context) error {
	session, err := browser.Open(browser.Config{
		Headless:       d.cfg.Headless,
		WindowWidth:    d.cfg.WindowWidth,
		WindowHeight:   d.cfg.WindowHeight,
		AcceptLanguage: "pt-BR,pt",
		Timeout:        d.cfg.ElementWait,
	}, d.log)
	if err != nil {
		return err
	}
	d.session = session
	d.searcher = NewSearcher(d.cfg, session.Page(), d.log)
	return nil
}

func (d *rodDriver) Navigate(ctx context.Context, url string) error {
	return d.session.Navigate(ctx, url)
}

func (d *rodDriver) Search(ctx context.Context, cat Category) ([]Establishment, error) {
	return d.searcher.Search(ctx, cat)
}

func (d *rodDriver) Close() error {
	if d.session == nil {
		return nil
	}
	return d.session.Close()
}
