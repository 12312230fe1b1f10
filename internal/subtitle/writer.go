package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"time"
)

// VTTWriter streams cues to a WebVTT file as they arrive, so an
// interrupted capture still leaves a playable file behind.
type VTTWriter struct {
	w          *bufio.Writer
	c          io.Closer
	headerDone bool
}

// SRTWriter streams cues to a SubRip file with a running 1-based index.
type SRTWriter struct {
	w     *bufio.Writer
	c     io.Closer
	index int
}

// NewWriter wraps out in a streaming writer for the given format.
func NewWriter(out io.WriteCloser, format Format) (CueWriter, error) {
	switch format {
	case FormatVTT:
		return &VTTWriter{w: bufio.NewWriter(out), c: out}, nil
	case FormatSRT:
		return &SRTWriter{w: bufio.NewWriter(out), c: out}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func (w *VTTWriter) WriteCue(c Cue) error {
	if !w.headerDone {
		if _, err := w.w.WriteString("WEBVTT\n"); err != nil {
			return err
		}
		w.headerDone = true
	}

	// timestamps: 00:00:00.000 --> 00:00:00.000
	timings := fmt.Sprintf("\n%s --> %s",
		formatVTTTime(c.Start), formatVTTTime(c.End))
	if c.Settings != "" {
		timings += " " + c.Settings
	}
	_, err := fmt.Fprintf(w.w, "%s\n%s\n", timings, c.Text)
	if err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *VTTWriter) Close() error {
	if err := w.w.Flush(); err != nil {
		_ = w.c.Close()
		return err
	}
	return w.c.Close()
}

func (w *SRTWriter) WriteCue(c Cue) error {
	w.index++

	// timestamps: 00:00:00,000 --> 00:00:00,000
	_, err := fmt.Fprintf(w.w, "%d\n%s --> %s\n%s\n\n",
		w.index,
		formatSRTTime(c.Start), formatSRTTime(c.End),
		c.Text)
	if err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *SRTWriter) Close() error {
	if err := w.w.Flush(); err != nil {
		_ = w.c.Close()
		return err
	}
	return w.c.Close()
}

func formatVTTTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
}

func formatSRTTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
