package subtitle

import (
	"fmt"
	"time"
)

// Assembler turns downloaded segment payloads into ordered, deduplicated
// cues on the output. One assembler serves one rendition; the poller is
// its single caller, so no locking.
type Assembler struct {
	Parse ParseFunc // defaults to ParseVTT
	Dedup DedupFunc // defaults to DropBoundaryDuplicate

	out  CueWriter
	base time.Duration
	tl   timeline

	last    Cue
	hasLast bool
}

// NewAssembler returns an assembler writing to out. Cue times are
// rebased so that program time base becomes 00:00:00 in the output.
func NewAssembler(out CueWriter, base time.Duration) *Assembler {
	return &Assembler{
		Parse: ParseVTT,
		Dedup: DropBoundaryDuplicate,
		out:   out,
		base:  base,
		tl:    newTimeline(),
	}
}

// DropBoundaryDuplicate is the default duplicate rule: live renditions
// repeat the cue that straddles a segment boundary, so a cue starting
// exactly where the previous one ended with identical text is dropped.
// Two genuinely distinct but textually identical adjacent cues are
// suppressed too; that is invisible when playing.
func DropBoundaryDuplicate(prev, next Cue) bool {
	return next.Start == prev.End && next.Text == prev.Text
}

// Push parses one segment payload and appends its cues to the output in
// non-decreasing start order. clock is the running program time at the
// segment's start; keep is the program-time range to retain, already
// intersected with the capture window by the caller. Returns the number
// of cues written.
//
// Parse failures are reported wrapped in ErrInvalidPayload so the caller
// can skip the segment; any other error is a sink failure and fatal.
func (a *Assembler) Push(data []byte, clock time.Duration, keep Span) (int, error) {
	cues, tsmap, err := a.Parse(data)
	if err != nil {
		return 0, err
	}

	offset := a.tl.offset(tsmap, clock)

	written := 0
	for _, cue := range cues {
		start := cue.Start + offset
		end := cue.End + offset
		if !keep.Contains(start, end) {
			continue
		}

		out := Cue{
			Start:    start - a.base,
			End:      end - a.base,
			Text:     cue.Text,
			Settings: cue.Settings,
		}
		if out.Start < 0 {
			// already being displayed at capture start; show it
			// right away
			out.Start = 0
		}

		if a.hasLast && a.Dedup(a.last, out) {
			continue
		}

		if err := a.out.WriteCue(out); err != nil {
			return written, fmt.Errorf("write cue: %w", err)
		}
		a.last = out
		a.hasLast = true
		written++
	}
	return written, nil
}

const ptsHz = 90000

// timeline maps payload-local cue times onto the running program clock.
// When segments carry X-TIMESTAMP-MAP, the MPEG-TS presentation clock is
// authoritative and segment boundaries stay sample accurate; without it
// the declared-duration clock is used as is.
type timeline struct {
	pinned  bool
	basePTS int64 // 90 kHz ticks at program time zero
	lastPTS int64
}

func newTimeline() timeline {
	return timeline{}
}

// offset returns the duration to add to a cue's payload-local time to
// place it on the program timeline.
func (tl *timeline) offset(m TimestampMap, clock time.Duration) time.Duration {
	if !m.OK {
		return clock
	}

	pts := m.MPEGTS
	if pts < tl.lastPTS {
		// 33-bit PTS rollover, RFC 8216 section 3.5
		pts |= tl.lastPTS &^ (1<<33 - 1)
		if pts < tl.lastPTS {
			pts += 1 << 33
		}
	}
	tl.lastPTS = pts

	if !tl.pinned {
		// pin the PTS clock so this segment lands at the running
		// clock value
		tl.basePTS = pts - durationToPTS(clock+m.Local)
		tl.pinned = true
	}

	return ptsToDuration(pts-tl.basePTS) - m.Local
}

func durationToPTS(d time.Duration) int64 {
	return d.Nanoseconds() * 9 / 100000
}

func ptsToDuration(pts int64) time.Duration {
	return time.Duration(pts * 100000 / 9)
}
