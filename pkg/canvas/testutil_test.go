package canvas_test

import "time"

// Polling bounds for Eventually assertions.
const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)
