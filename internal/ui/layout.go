package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutExtraWideWidth is the threshold for the narrower list pane.
	LayoutExtraWideWidth = 160
)

// Rows taken by the header, command bar and search bar.
const chromeHeight = 3

// Activity log limits.
const (
	// ActivityLineLimit is how many log lines the activity view reads.
	ActivityLineLimit = 500

	// ActivityRefreshInterval is the minimum time between activity reloads.
	ActivityRefreshInterval = 2 * time.Second
)

// Timing constants.
const (
	// DefaultUIInterval is how often the UI re-reads the search state.
	DefaultUIInterval = 500 * time.Millisecond

	// ExpiryWarning is how close to exp the session badge turns yellow.
	ExpiryWarning = 10 * time.Minute
)
