package capture

import (
	"errors"
	"time"

	"github.com/pekman/yle-subtitle-dl/internal/subtitle"
)

// ErrWindowConfig reports an unusable capture window: a start time at or
// after the end time, or time inputs that could not be parsed. Fatal
// before polling starts.
var ErrWindowConfig = errors.New("capture window start must be before its end")

// Window is the [Start, End) program-time range to capture. A zero End
// means unbounded: capture until the stream ends. Computed once when the
// program-time origin is pinned, immutable afterwards.
type Window struct {
	Start time.Duration
	End   time.Duration
}

// Op classifies a segment against the window.
type Op int

const (
	// Reject drops the segment wholesale: it ends before the window
	// opens or starts after it closes.
	Reject Op = iota
	// Accept takes the whole segment; it lies inside the window.
	Accept
	// Trim takes only the cues intersecting Decision.Sub; the segment
	// straddles a window boundary.
	Trim
)

// Decision is the window verdict for one segment. Sub is set for Trim.
type Decision struct {
	Op  Op
	Sub subtitle.Span
}

// Decide classifies the segment covering [clock, clock+dur) using
// declared durations only. Segments must be downloaded before their cues
// are known, so this is a cheap pre-filter; cue-granularity filtering
// for Trim happens in the assembler.
func (w Window) Decide(clock, dur time.Duration) Decision {
	segEnd := clock + dur
	if segEnd <= w.Start {
		return Decision{Op: Reject}
	}
	if w.End > 0 && clock >= w.End {
		return Decision{Op: Reject}
	}
	if clock >= w.Start && (w.End == 0 || segEnd <= w.End) {
		return Decision{Op: Accept}
	}

	// always cap at the window end: cue timestamps may overrun the
	// declared segment duration
	sub := subtitle.Span{Start: max(clock, w.Start), End: w.End}
	return Decision{Op: Trim, Sub: sub}
}

// Span returns the whole window as a program-time span.
func (w Window) Span() subtitle.Span {
	return subtitle.Span{Start: w.Start, End: w.End}
}
