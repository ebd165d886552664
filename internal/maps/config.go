package maps

import "time"

// Config is the immutable run configuration, constructed once at startup
// and passed by value into the collector.
type Config struct {
	// Locality is the city/region the category queries target.
	Locality string
	// Categories fixes which business types are searched and in what order.
	Categories []Category

	Headless     bool
	WindowWidth  int
	WindowHeight int

	// MaxResultsPerCategory caps each category's result set.
	MaxResultsPerCategory int
	// MaxScrolls bounds the scroll cycles per category.
	MaxScrolls int
	// ElementWait bounds each wait for a rendered condition (element
	// present, card count grown).
	ElementWait time.Duration
	// PollInterval is the fixed interval the pager re-checks the visible
	// card count at while waiting for growth.
	PollInterval time.Duration

	MapsURL             string
	SearchInputSelector string
	FeedSelector        string
	CardLinkSelector    string
}

// DefaultConfig returns the configuration the tool ships with.
func DefaultConfig() Config {
	return Config{
		Locality:   "São Paulo",
		Categories: []Category{CategoryGym, CategoryRestaurant, CategoryIceCreamShop},

		Headless:     true,
		WindowWidth:  1920,
		WindowHeight: 1080,

		MaxResultsPerCategory: 20,
		MaxScrolls:            5,
		ElementWait:           15 * time.Second,
		PollInterval:          500 * time.Millisecond,

		MapsURL:             "https://www.google.com/maps",
		SearchInputSelector: "input#searchboxinput",
		FeedSelector:        `div[role="feed"]`,
		CardLinkSelector:    `a[href*="/maps/place/"]`,
	}
}
