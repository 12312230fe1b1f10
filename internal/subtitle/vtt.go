package subtitle

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidPayload marks a segment body that could not be parsed as
// subtitles. The poller logs and skips such segments instead of aborting
// the run.
var ErrInvalidPayload = errors.New("invalid subtitle payload")

var (
	vttTimestampRegex = regexp.MustCompile(
		`^(?:(\d+):)?(\d{2}):(\d{2})\.(\d{3})$`,
	)
	vttCueTimingRegex = regexp.MustCompile(
		`^((?:\d+:)?\d{2}:\d{2}\.\d{3})[ \t]*-->[ \t]*((?:\d+:)?\d{2}:\d{2}\.\d{3})[ \t]*(.*)$`,
	)
	vttTimestampMapRegex = regexp.MustCompile(
		`^X-TIMESTAMP-MAP=(.*)$`,
	)
)

// ParseVTT decodes one WebVTT segment into cues with times exactly as
// written in the payload, plus the X-TIMESTAMP-MAP header when present.
// It is the default ParseFunc for live HLS subtitle renditions.
func ParseVTT(data []byte) ([]Cue, TimestampMap, error) {
	var tsmap TimestampMap

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return nil, tsmap, fmt.Errorf("%w: empty segment", ErrInvalidPayload)
	}
	first := strings.TrimPrefix(scanner.Text(), "\ufeff")
	if first != "WEBVTT" && !strings.HasPrefix(first, "WEBVTT ") &&
		!strings.HasPrefix(first, "WEBVTT\t") {
		return nil, tsmap, fmt.Errorf("%w: not a WebVTT file", ErrInvalidPayload)
	}

	// rest of the header, up to the first blank line
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			break
		}
		if m := vttTimestampMapRegex.FindStringSubmatch(line); m != nil {
			tsmap = parseTimestampMap(m[1])
		}
	}

	var cues []Cue
	var current *Cue
	var textLines []string

	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			cues = append(cues, *current)
		}
		current = nil
		textLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		// NOTE and STYLE blocks run until the next blank line
		if current == nil && (strings.HasPrefix(trimmed, "NOTE") ||
			strings.HasPrefix(trimmed, "STYLE")) {
			for scanner.Scan() {
				if strings.TrimSpace(scanner.Text()) == "" {
					break
				}
			}
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}

		if m := vttCueTimingRegex.FindStringSubmatch(line); m != nil {
			flush()
			start, err := parseVTTTimestamp(m[1])
			if err != nil {
				return nil, tsmap, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
			}
			end, err := parseVTTTimestamp(m[2])
			if err != nil {
				return nil, tsmap, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
			}
			current = &Cue{
				Start:    start,
				End:      end,
				Settings: strings.TrimSpace(m[3]),
			}
			continue
		}

		// anything else is either a cue identifier (ignored) or cue text
		if current != nil {
			textLines = append(textLines, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, tsmap, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return cues, tsmap, nil
}

// parseTimestampMap reads the attribute list of an X-TIMESTAMP-MAP
// header. Both LOCAL and MPEGTS must be present for the map to be usable.
func parseTimestampMap(attrs string) TimestampMap {
	var tsmap TimestampMap
	var haveLocal, haveMPEGTS bool

	for _, attr := range strings.Split(attrs, ",") {
		attr = strings.TrimSpace(attr)
		switch {
		case strings.HasPrefix(attr, "LOCAL:"):
			local, err := parseVTTTimestamp(strings.TrimPrefix(attr, "LOCAL:"))
			if err != nil {
				return TimestampMap{}
			}
			tsmap.Local = local
			haveLocal = true
		case strings.HasPrefix(attr, "MPEGTS:"):
			ts, err := strconv.ParseInt(strings.TrimPrefix(attr, "MPEGTS:"), 10, 64)
			if err != nil {
				return TimestampMap{}
			}
			tsmap.MPEGTS = ts
			haveMPEGTS = true
		}
	}

	tsmap.OK = haveLocal && haveMPEGTS
	if !tsmap.OK {
		return TimestampMap{}
	}
	return tsmap
}

// parseVTTTimestamp converts "[hh:]mm:ss.mmm" to a duration. The hour
// component is optional per the WebVTT spec.
func parseVTTTimestamp(s string) (time.Duration, error) {
	m := vttTimestampRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}

	h := 0
	if m[1] != "" {
		var err error
		h, err = strconv.Atoi(m[1])
		if err != nil {
			return 0, err
		}
	}
	minutes, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, err
	}
	seconds, err := strconv.Atoi(m[3])
	if err != nil {
		return 0, err
	}
	millis, err := strconv.Atoi(m[4])
	if err != nil {
		return 0, err
	}

	return time.Duration(h)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond, nil
}
