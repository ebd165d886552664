package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"
)

var (
	// ErrSessionStart means the browser binary could not be launched or
	// connected to. Fatal to the whole run, no retry.
	ErrSessionStart = errors.New("browser session start failed")
	// ErrNavigation means the target page could not be loaded. Fatal to
	// the run containing it.
	ErrNavigation = errors.New("navigation failed")
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config holds the browser launch options.
type Config struct {
	Headless     bool
	WindowWidth  int
	WindowHeight int
	// AcceptLanguage forces the browser locale so rendered card text
	// matches the locale the extraction heuristics expect.
	AcceptLanguage string
	// Timeout bounds navigation and page-load waits.
	Timeout time.Duration
}

// Session wraps one launched browser and the single page the whole run
// shares. Close is idempotent and must be called exactly once per
// successful Open, on every exit path.
type Session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration
	log      *logrus.Logger
	closed   bool
}

// Open launches the browser and prepares a page for searching.
func Open(cfg Config, log *logrus.Logger) (*Session, error) {
	log.WithField("headless", cfg.Headless).Info("launching browser")

	l := launcher.New().
		Headless(cfg.Headless).
		Set("window-size", fmt.Sprintf("%d,%d", cfg.WindowWidth, cfg.WindowHeight)).
		Set("lang", cfg.AcceptLanguage).
		Set("disable-notifications").
		Set("disable-popup-blocking")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionStart, err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrSessionStart, err)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrSessionStart, err)
	}

	_ = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      userAgent,
		AcceptLanguage: cfg.AcceptLanguage,
	})
	_, _ = page.EvalOnNewDocument(`Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`)

	log.Info("browser session ready")
	return &Session{
		browser:  b,
		launcher: l,
		page:     page,
		timeout:  cfg.Timeout,
		log:      log,
	}, nil
}

// Page returns the session's shared page.
func (s *Session) Page() *rod.Page {
	return s.page
}

// Navigate loads url on the session page and waits for the load event.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.log.WithField("url", url).Info("navigating")

	page := s.page.Context(ctx).Timeout(s.timeout)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
	}
	return nil
}

// Close shuts the browser down and kills the launcher process.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.browser != nil {
		err = s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Kill()
	}
	if err != nil {
		return fmt.Errorf("closing browser: %w", err)
	}
	s.log.Info("browser closed")
	return nil
}
