package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pekman/yle-subtitle-dl/internal/hls"
	"github.com/pekman/yle-subtitle-dl/internal/logging"
	"github.com/pekman/yle-subtitle-dl/internal/subtitle"
)

// State of a capture run.
type State int

const (
	Initializing State = iota
	Polling
	Draining
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Polling:
		return "polling"
	case Draining:
		return "draining"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Stats summarize a run. They are valid even when the run fails, so the
// extent of a partial output file is known.
type Stats struct {
	Segments int // segment payloads assembled into the output
	Cues     int // cues written
}

// Config carries the tunables of a capture run. Zero values select the
// documented defaults.
type Config struct {
	// StartTime is the wall-clock moment mapped to 00:00:00 in the
	// output. Segments older than this are rejected.
	StartTime time.Time
	// EndTime stops the capture once program time passes it. Zero
	// means capture until the stream ends.
	EndTime time.Time

	MinPollInterval time.Duration // default 1s
	MaxPollInterval time.Duration // default 30s
	// MaxFailures is the number of consecutive playlist fetch or
	// parse failures tolerated before the run fails. Default 5.
	MaxFailures int
	// Concurrency bounds parallel segment downloads within one poll
	// cycle. Default 3.
	Concurrency int

	// Parse and Dedup override the assembler's segment parser and
	// duplicate rule. Nil selects WebVTT parsing and the boundary
	// duplicate rule.
	Parse subtitle.ParseFunc
	Dedup subtitle.DedupFunc
}

func (c Config) withDefaults() Config {
	if c.MinPollInterval <= 0 {
		c.MinPollInterval = time.Second
	}
	if c.MaxPollInterval <= 0 {
		c.MaxPollInterval = 30 * time.Second
	}
	if c.MaxFailures <= 0 {
		c.MaxFailures = 5
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 3
	}
	return c
}

// Poller drives one rendition's capture: reload the playlist, download
// newly appeared segments, filter them against the capture window,
// assemble their cues onto the output, sleep, repeat.
//
// The pipeline is deliberately single threaded: every decision depends
// on the running clock, which only advances in playlist order. Segment
// downloads within one cycle are the lone exception; they run on a
// bounded worker pool but are committed strictly in playlist order.
type Poller struct {
	client *hls.Client
	url    string
	out    subtitle.CueWriter
	log    *logging.Logger
	cfg    Config

	state    State
	window   Window
	clock    Clock
	catalog  *hls.Catalog
	asm      *subtitle.Assembler
	failures int
	target   time.Duration
	stats    Stats
	err      error
}

// New returns a poller for one rendition, writing assembled cues to out.
func New(client *hls.Client, url string, out subtitle.CueWriter, log *logging.Logger, cfg Config) *Poller {
	if log == nil {
		log = logging.NewNop()
	}
	cfg = cfg.withDefaults()
	if cfg.StartTime.IsZero() {
		cfg.StartTime = time.Now()
	}
	return &Poller{
		client:  client,
		url:     url,
		out:     out,
		log:     log,
		cfg:     cfg,
		state:   Initializing,
		catalog: hls.NewCatalog(),
	}
}

// State returns the poller's current state.
func (p *Poller) State() State {
	return p.state
}

// Stats returns the run's counters. Valid at any time.
func (p *Poller) Stats() Stats {
	return p.stats
}

// Run executes the capture until the stream ends, the window closes, ctx
// is cancelled, or the failure budget is exhausted. Cancellation is a
// graceful stop and returns a nil error; a segment mid-download is
// allowed to complete so the output file is never cut mid-cue.
func (p *Poller) Run(ctx context.Context) (Stats, error) {
	if !p.cfg.EndTime.IsZero() && !p.cfg.EndTime.After(p.cfg.StartTime) {
		p.state = Failed
		p.err = ErrWindowConfig
		return p.stats, p.err
	}

	for p.state != Done && p.state != Failed {
		if ctx.Err() != nil && p.state != Draining {
			p.state = Draining
		}

		switch p.state {
		case Initializing, Polling:
			p.poll(ctx)
		case Draining:
			// nothing buffered; cues are flushed per segment
			p.state = Done
		}
	}

	if p.state == Failed {
		return p.stats, p.err
	}
	return p.stats, nil
}

// poll runs one cycle: fetch the playlist, process its new segments, and
// either transition or sleep until the next reload.
func (p *Poller) poll(ctx context.Context) {
	cycleStart := time.Now()

	pl, err := hls.FetchMediaPlaylist(ctx, p.client, p.url)
	if err != nil {
		if ctx.Err() != nil {
			p.state = Draining
			return
		}
		p.fetchFailed(ctx, err)
		return
	}
	p.failures = 0
	if pl.TargetDuration > 0 {
		p.target = pl.TargetDuration
	}

	if p.state == Initializing {
		p.pinOrigin(pl)
		if p.state != Polling {
			return
		}
	}

	fresh := p.newSegments(pl)
	p.processSegments(ctx, fresh)
	if p.state != Polling {
		return
	}

	if pl.Ended {
		p.log.Debugw("end marker in media playlist", "url", p.url)
		p.state = Draining
		return
	}
	if p.window.End > 0 && p.clock.Now() >= p.window.End {
		p.log.Debugw("capture window end reached", "url", p.url)
		p.state = Draining
		return
	}

	// time spent fetching and committing counts toward the reload
	// delay, so slow cycles do not fall behind the live edge
	p.sleep(ctx, p.interval(len(fresh) > 0)-time.Since(cycleStart))
}

// fetchFailed counts a playlist failure against the budget. A malformed
// manifest on the very first fetch is unrecoverable; transient failures
// retry after the poll interval.
func (p *Poller) fetchFailed(ctx context.Context, err error) {
	var perr *hls.ParseError
	if p.state == Initializing && errors.As(err, &perr) {
		p.state = Failed
		p.err = err
		return
	}

	p.failures++
	if p.failures >= p.cfg.MaxFailures {
		p.log.Errorw("giving up on playlist",
			"url", p.url,
			"consecutive_failures", p.failures,
			"error", err,
		)
		p.state = Failed
		p.err = fmt.Errorf("%d consecutive playlist failures: %w", p.failures, err)
		return
	}

	p.log.Warnw("playlist reload failed",
		"url", p.url,
		"consecutive_failures", p.failures,
		"error", err,
	)
	p.sleep(ctx, p.interval(false))
}

// pinOrigin establishes the program-time origin from the first snapshot
// and derives the capture window from the configured wall-clock bounds.
func (p *Poller) pinOrigin(pl *hls.Playlist) {
	origin := time.Now()
	if len(pl.Segments) > 0 && !pl.Segments[0].ProgramTime.IsZero() {
		origin = pl.Segments[0].ProgramTime
		p.log.Infow("earliest time available in playlist",
			"url", p.url,
			"program_time", origin,
		)
	}

	w := Window{Start: p.cfg.StartTime.Sub(origin)}
	if w.Start < 0 {
		w.Start = 0
	}
	if !p.cfg.EndTime.IsZero() {
		w.End = p.cfg.EndTime.Sub(origin)
		if w.End <= w.Start {
			p.log.Warnw("capture window already over at stream origin",
				"url", p.url,
			)
			p.state = Draining
			return
		}
	}

	p.window = w
	p.asm = subtitle.NewAssembler(p.out, w.Start)
	if p.cfg.Parse != nil {
		p.asm.Parse = p.cfg.Parse
	}
	if p.cfg.Dedup != nil {
		p.asm.Dedup = p.cfg.Dedup
	}
	p.state = Polling
}

// newSegments diffs the snapshot against the catalog, marking everything
// it returns as seen. Each segment identifier passes through here at
// most once per run, even though it stays in the playlist for several
// snapshots before scrolling out.
func (p *Poller) newSegments(pl *hls.Playlist) []hls.Segment {
	var fresh []hls.Segment
	for _, seg := range pl.Segments {
		if !p.catalog.IsNew(seg.URI) {
			continue
		}
		p.catalog.MarkSeen(seg.URI)
		fresh = append(fresh, seg)
	}
	return fresh
}

// processSegments downloads the cycle's new segments and commits them in
// playlist order: advance the clock, filter, assemble. A failed or
// malformed segment is skipped; the capture must keep pace with the live
// stream, so a single segment never aborts the run. Sink errors do.
func (p *Poller) processSegments(ctx context.Context, segs []hls.Segment) {
	if len(segs) == 0 {
		return
	}
	payloads := p.download(ctx, segs)

	for i, seg := range segs {
		clock := p.clock.Now()
		p.clock.Advance(seg.Duration)

		if payloads[i] == nil {
			continue // download failed, already logged
		}

		d := p.window.Decide(clock, seg.Duration)
		if d.Op == Reject {
			p.log.Debugw("segment outside capture window",
				"uri", seg.URI,
				"clock", clock,
			)
			continue
		}
		keep := p.window.Span()
		if d.Op == Trim {
			keep = d.Sub
		}

		n, err := p.asm.Push(payloads[i], clock, keep)
		p.stats.Cues += n
		if err != nil {
			if errors.Is(err, subtitle.ErrInvalidPayload) {
				p.log.Warnw("skipping malformed segment",
					"uri", seg.URI,
					"error", err,
				)
				continue
			}
			p.state = Failed
			p.err = err
			return
		}
		p.stats.Segments++

		if ctx.Err() != nil {
			p.state = Draining
			return
		}
	}
}

type downloadResult struct {
	index int
	data  []byte
	err   error
}

// download fetches segments on a bounded worker pool and returns their
// payloads in playlist order, nil where the fetch failed. Parallel
// fetches feed this ordered collection so the commit step stays serial.
func (p *Poller) download(ctx context.Context, segs []hls.Segment) [][]byte {
	workers := p.cfg.Concurrency
	if workers > len(segs) {
		workers = len(segs)
	}

	workChan := make(chan int, len(segs))
	resultChan := make(chan downloadResult, len(segs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range workChan {
				data, err := hls.DownloadSegment(ctx, p.client, segs[idx].URI)
				resultChan <- downloadResult{index: idx, data: data, err: err}
			}
		}()
	}

	for i := range segs {
		workChan <- i
	}
	close(workChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	payloads := make([][]byte, len(segs))
	for r := range resultChan {
		if r.err != nil {
			p.log.Warnw("skipping failed segment download",
				"uri", segs[r.index].URI,
				"error", r.err,
			)
			continue
		}
		payloads[r.index] = r.data
	}
	return payloads
}

// interval derives the reload delay from the playlist's target duration:
// the full target duration after a cycle that saw new segments, half
// when the playlist had not grown, per RFC 8216, clamped to the
// configured bounds.
func (p *Poller) interval(sawNew bool) time.Duration {
	d := p.target
	if !sawNew {
		d /= 2
	}
	if d < p.cfg.MinPollInterval {
		d = p.cfg.MinPollInterval
	}
	if d > p.cfg.MaxPollInterval {
		d = p.cfg.MaxPollInterval
	}
	return d
}

func (p *Poller) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
