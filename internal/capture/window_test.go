package capture

import (
	"testing"
	"time"

	"github.com/pekman/yle-subtitle-dl/internal/subtitle"
)

func TestWindowDecide(t *testing.T) {
	// the capture window covers [10s, 20s); segments are 6s each
	w := Window{Start: 10 * time.Second, End: 20 * time.Second}

	tests := []struct {
		name    string
		clock   time.Duration
		dur     time.Duration
		wantOp  Op
		wantSub subtitle.Span
	}{
		{
			name:   "wholly before window",
			clock:  0,
			dur:    6 * time.Second,
			wantOp: Reject,
		},
		{
			name:    "straddles window start",
			clock:   6 * time.Second,
			dur:     6 * time.Second,
			wantOp:  Trim,
			wantSub: subtitle.Span{Start: 10 * time.Second, End: 20 * time.Second},
		},
		{
			name:   "wholly inside",
			clock:  12 * time.Second,
			dur:    6 * time.Second,
			wantOp: Accept,
		},
		{
			name:    "straddles window end",
			clock:   18 * time.Second,
			dur:     6 * time.Second,
			wantOp:  Trim,
			wantSub: subtitle.Span{Start: 18 * time.Second, End: 20 * time.Second},
		},
		{
			name:   "wholly after window",
			clock:  20 * time.Second,
			dur:    6 * time.Second,
			wantOp: Reject,
		},
		{
			name:   "ends exactly at window start",
			clock:  4 * time.Second,
			dur:    6 * time.Second,
			wantOp: Reject,
		},
		{
			name:   "starts exactly at window start",
			clock:  10 * time.Second,
			dur:    6 * time.Second,
			wantOp: Accept,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := w.Decide(tt.clock, tt.dur)
			if d.Op != tt.wantOp {
				t.Fatalf("Decide(%v, %v).Op = %v, want %v",
					tt.clock, tt.dur, d.Op, tt.wantOp)
			}
			if d.Op == Trim && d.Sub != tt.wantSub {
				t.Errorf("Decide(%v, %v).Sub = %+v, want %+v",
					tt.clock, tt.dur, d.Sub, tt.wantSub)
			}
		})
	}
}

func TestWindowDecideUnbounded(t *testing.T) {
	w := Window{Start: 10 * time.Second}

	if d := w.Decide(time.Hour, 6*time.Second); d.Op != Accept {
		t.Errorf("late segment in unbounded window: got %v, want Accept", d.Op)
	}
	if d := w.Decide(0, 6*time.Second); d.Op != Reject {
		t.Errorf("early segment: got %v, want Reject", d.Op)
	}

	d := w.Decide(6*time.Second, 6*time.Second)
	if d.Op != Trim {
		t.Fatalf("straddling segment: got %v, want Trim", d.Op)
	}
	if d.Sub.End != 0 {
		t.Errorf("unbounded window must yield unbounded trim span, got %v", d.Sub.End)
	}
}

func TestWindowDecideTrimCappedAtEnd(t *testing.T) {
	// a segment straddling the window start whose declared duration ends
	// inside the window still gets a bounded trim span; live cues can
	// overrun the declared duration and must not leak past the end
	w := Window{Start: 10 * time.Second, End: 12 * time.Second}

	d := w.Decide(6*time.Second, 6*time.Second)
	if d.Op != Trim {
		t.Fatalf("Decide(6s, 6s).Op = %v, want Trim", d.Op)
	}
	want := subtitle.Span{Start: 10 * time.Second, End: 12 * time.Second}
	if d.Sub != want {
		t.Fatalf("Decide(6s, 6s).Sub = %+v, want %+v", d.Sub, want)
	}
	if d.Sub.Contains(12200*time.Millisecond, 13*time.Second) {
		t.Error("cue starting past the window end must not be contained")
	}
}

func TestWindowDecideZeroWindow(t *testing.T) {
	// an all-zero window is unbounded on both ends: everything accepted
	var w Window
	if d := w.Decide(0, 6*time.Second); d.Op != Accept {
		t.Errorf("got %v, want Accept", d.Op)
	}
}

func TestClockAdvancesMonotonically(t *testing.T) {
	var c Clock
	if c.Now() != 0 {
		t.Fatalf("new clock should read 0, got %v", c.Now())
	}
	c.Advance(6 * time.Second)
	c.Advance(5500 * time.Millisecond)
	if c.Now() != 11500*time.Millisecond {
		t.Errorf("expected 11.5s, got %v", c.Now())
	}
}
