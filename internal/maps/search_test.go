package maps

import (
	"testing"
	"time"
)

func TestFeedPanelBoundsItsWaits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ElementWait = 3 * time.Second

	panel := newFeedPanel(nil, cfg)
	if panel.wait != 3*time.Second {
		t.Errorf("got wait %v, want the configured element wait", panel.wait)
	}
	if panel.feedSelector != cfg.FeedSelector {
		t.Errorf("got feed selector %q, want %q", panel.feedSelector, cfg.FeedSelector)
	}
	if panel.cardSelector != cfg.CardLinkSelector {
		t.Errorf("got card selector %q, want %q", panel.cardSelector, cfg.CardLinkSelector)
	}
}
