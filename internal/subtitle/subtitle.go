package subtitle

import (
	"time"
)

// Cue is a single subtitle unit positioned on the stream's program
// timeline.
type Cue struct {
	Start    time.Duration
	End      time.Duration
	Text     string
	Settings string // WebVTT cue settings, carried through verbatim
}

// TimestampMap is a WebVTT X-TIMESTAMP-MAP header: the mapping between a
// segment's local cue times and the stream's 90 kHz MPEG-TS clock.
type TimestampMap struct {
	Local  time.Duration
	MPEGTS int64
	OK     bool
}

// Span is an absolute program-time range. A zero End means unbounded.
type Span struct {
	Start time.Duration
	End   time.Duration
}

// Contains reports whether a cue covering [start, end) intersects the
// span.
func (s Span) Contains(start, end time.Duration) bool {
	if end <= s.Start {
		return false
	}
	return s.End == 0 || start < s.End
}

// ParseFunc turns one segment payload into cues with payload-local times.
type ParseFunc func(data []byte) ([]Cue, TimestampMap, error)

// DedupFunc reports whether next duplicates the previously emitted cue
// and should be dropped.
type DedupFunc func(prev, next Cue) bool

// CueWriter appends cues to an output sink.
type CueWriter interface {
	WriteCue(Cue) error
	Close() error
}

// Format identifies a supported output format.
type Format string

const (
	FormatVTT Format = "vtt"
	FormatSRT Format = "srt"
)

// GetExtensionForFormat returns the file extension for a format.
func GetExtensionForFormat(format Format) string {
	switch format {
	case FormatSRT:
		return ".srt"
	default:
		return ".vtt"
	}
}
