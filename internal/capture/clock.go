package capture

import "time"

// Clock accumulates the total program time covered by the segments
// handed to the pipeline, in playlist order. It advances for every new
// segment whether or not the filter kept it; this is what maps each
// segment's playlist position to an absolute program-time range.
//
// The poller is the clock's single owner. Filter and assembler receive
// its value as a plain parameter, which keeps them testable with
// injected values.
type Clock struct {
	elapsed time.Duration
}

// Now returns the program time at the next segment's start.
func (c *Clock) Now() time.Duration {
	return c.elapsed
}

// Advance moves the clock past a segment of the given declared duration.
func (c *Clock) Advance(d time.Duration) {
	c.elapsed += d
}
